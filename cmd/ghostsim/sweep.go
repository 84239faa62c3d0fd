package main

import (
	"context"
	"fmt"
	"runtime"

	"github.com/ghost-attack/ghostsim/sim"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
	"golang.org/x/xerrors"
)

var sweepCmd = cli.Command{
	Name:  "sweep",
	Usage: "runs the attack over consecutive seeds and reports how often it is sustained",
	Flags: append([]cli.Flag{
		&cli.IntFlag{
			Name:  "runs",
			Value: 100,
			Usage: "number of seeds to simulate",
		},
		&cli.IntFlag{
			Name:  "concurrency",
			Value: runtime.NumCPU(),
			Usage: "maximum number of simulations running at once",
		},
	}, simulationFlags...),
	Action: func(c *cli.Context) error {
		opts, err := simulationOptions(c)
		if err != nil {
			return err
		}
		first := c.Uint64("seed")
		if !c.IsSet("seed") {
			first = 1
		}
		results, err := sweep(c.Context, opts, first, c.Int("runs"), c.Int("concurrency"))
		if err != nil {
			return err
		}
		summary := summarise(results)
		_, _ = fmt.Fprintf(c.App.Writer, "sustained %d/%d, failed %d, aborted %d", summary.sustained, len(results), summary.failed, summary.aborted)
		if summary.failed > 0 {
			_, _ = fmt.Fprintf(c.App.Writer, ", mean failure timeslot %.1f", summary.meanFailure)
		}
		_, _ = fmt.Fprintln(c.App.Writer)
		return nil
	},
}

type sweepResult struct {
	seed    uint64
	outcome *sim.Outcome
	err     error
}

// sweep runs one simulation per seed. A run that aborts with an error is
// recorded, not propagated; only cancellation stops the sweep.
func sweep(ctx context.Context, opts []sim.Option, first uint64, runs, concurrency int) ([]sweepResult, error) {
	if runs < 0 {
		return nil, xerrors.Errorf("negative number of runs %d: %w", runs, sim.ErrInvalidOption)
	}
	results := make([]sweepResult, runs)
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(max(concurrency, 1))
	for i := 0; i < runs; i++ {
		i := i
		seed := first + uint64(i)
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			runOpts := append(append([]sim.Option(nil), opts...), sim.WithSeed(seed))
			s, err := sim.NewSimulation(runOpts...)
			if err != nil {
				return err
			}
			outcome, err := s.Run(ctx)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			if err != nil {
				log.Warnw("Simulation aborted", "seed", seed, "err", err)
			}
			results[i] = sweepResult{seed: seed, outcome: outcome, err: err}
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

type sweepSummary struct {
	sustained, failed, aborted int
	meanFailure                float64
}

func summarise(results []sweepResult) sweepSummary {
	var s sweepSummary
	var failedAt float64
	for _, r := range results {
		switch {
		case r.err != nil:
			s.aborted++
		case r.outcome.AttackFailed():
			s.failed++
			failedAt += float64(r.outcome.Timeslot)
		default:
			s.sustained++
		}
	}
	if s.failed > 0 {
		s.meanFailure = failedAt / float64(s.failed)
	}
	return s
}
