package main

import (
	"context"
	"errors"
	"testing"

	"github.com/ghost-attack/ghostsim/sim"
	"github.com/stretchr/testify/require"
)

func TestSweep(t *testing.T) {
	t.Parallel()
	opts := []sim.Option{sim.WithScenario("ghost-short"), sim.WithMaxTimeslot(50)}
	results, err := sweep(context.Background(), opts, 40, 6, 3)
	require.NoError(t, err)
	require.Len(t, results, 6)
	for i, r := range results {
		require.Equal(t, uint64(40+i), r.seed)
		if r.err == nil {
			require.NotNil(t, r.outcome)
			require.True(t, r.outcome.State.IsTerminal())
		}
	}
	summary := summarise(results)
	require.Equal(t, 6, summary.sustained+summary.failed+summary.aborted)
}

func TestSweep_Cancelled(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := sweep(ctx, []sim.Option{sim.WithScenario("ghost-short")}, 1, 4, 2)
	require.ErrorIs(t, err, context.Canceled)
}

func TestSweep_InvalidRuns(t *testing.T) {
	t.Parallel()
	_, err := sweep(context.Background(), nil, 1, -1, 2)
	require.ErrorIs(t, err, sim.ErrInvalidOption)

	results, err := sweep(context.Background(), nil, 1, 0, 2)
	require.NoError(t, err)
	require.Empty(t, results)
}

func TestSummarise(t *testing.T) {
	t.Parallel()
	results := []sweepResult{
		{outcome: &sim.Outcome{State: sim.Terminated, Timeslot: 100}},
		{outcome: &sim.Outcome{State: sim.Failed, Timeslot: 10}},
		{outcome: &sim.Outcome{State: sim.Failed, Timeslot: 30}},
		{err: errors.New("boom")},
	}
	require.Equal(t, sweepSummary{sustained: 1, failed: 2, aborted: 1, meanFailure: 20}, summarise(results))
}
