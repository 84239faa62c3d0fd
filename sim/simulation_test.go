package sim_test

import (
	"context"
	"strings"
	"testing"

	"github.com/ghost-attack/ghostsim/ghost"
	"github.com/ghost-attack/ghostsim/sim"
	"github.com/ghost-attack/ghostsim/sim/adversary"
	"github.com/ghost-attack/ghostsim/sim/leader"
	"github.com/stretchr/testify/require"
)

// step records what a single timeslot did, along with the withholding queues
// just before it.
type step struct {
	timeslot ghost.Timeslot
	leader   leader.Leader
	before   adversary.Withheld
	after    adversary.Withheld
	move     adversary.Move
}

func runSteps(t *testing.T, subject *sim.Simulation) []step {
	t.Helper()
	var steps []step
	for !subject.State().IsTerminal() {
		before := subject.Adversary().Withheld()
		move, err := subject.Step()
		require.NoError(t, err)
		ts := subject.Timeslot()
		steps = append(steps, step{
			timeslot: ts,
			leader:   subject.Leaders().Get(ts),
			before:   before,
			after:    subject.Adversary().Withheld(),
			move:     move,
		})
		if move.Decision == adversary.Release {
			if !subject.State().IsTerminal() {
				require.Equal(t, sim.Releasing, subject.State())
			}
			requireReleaseTookOver(t, subject.Tree(), move.Release)
		}
	}
	return steps
}

// requireReleaseTookOver checks that once the timeslot of a release is over
// the released sub-tree is at least as heavy as every rival and the tip
// extends its level 2 block; the honest party builds on top of it in the same
// timeslot.
func requireReleaseTookOver(t *testing.T, tree *ghost.Tree, r *adversary.ReleaseReport) {
	t.Helper()
	for _, rival := range tree.Children(r.Target) {
		if rival != r.Level1 {
			require.GreaterOrEqual(t, tree.VoteTally(r.Level1), tree.VoteTally(rival), "release at %d", r.Timeslot)
		}
	}
	require.True(t, extends(tree, tree.Tip(), r.Level2), "tip does not extend release at %d", r.Timeslot)
}

// extends reports whether ancestor is d or one of its ancestors.
func extends(tree *ghost.Tree, d, ancestor ghost.Digest) bool {
	for {
		if d == ancestor {
			return true
		}
		b := tree.Block(d)
		if b.IsGenesis() {
			return false
		}
		d = b.Parent
	}
}

func releaseTimeslots(o *sim.Outcome) []ghost.Timeslot {
	var ts []ghost.Timeslot
	for _, r := range o.Releases {
		ts = append(ts, r.Timeslot)
	}
	return ts
}

func opportunities(o ...adversary.Opportunity) []adversary.Opportunity {
	return append([]adversary.Opportunity{}, o...)
}

func timeslots(ts ...ghost.Timeslot) []ghost.Timeslot {
	return append([]ghost.Timeslot{}, ts...)
}

func TestSimulation_UnitScenario(t *testing.T) {
	t.Parallel()
	subject, err := sim.NewSimulation(
		sim.WithProtocol(sim.ProtocolGhost),
		sim.WithSeed(42),
		sim.WithBeta(0.3),
		sim.WithHeadStart(5),
		sim.WithMaxTimeslot(100),
	)
	require.NoError(t, err)

	steps := runSteps(t, subject)
	require.Len(t, steps, 100)
	var leaders strings.Builder
	for _, s := range steps[:40] {
		leaders.WriteString(s.leader.String()[:1])
	}
	require.Equal(t, "AAAAAAHHAHHHHHHAHHHHAAAHHAHHHHHHAAAHHHHH", leaders.String())

	outcome := subject.Outcome()
	require.Equal(t, sim.Terminated, outcome.State)
	require.False(t, outcome.AttackFailed())
	require.Equal(t, ghost.Timeslot(100), outcome.Timeslot)
	require.Equal(t, []ghost.Timeslot{15, 30, 48, 75}, releaseTimeslots(outcome))
	require.Equal(t, 69, outcome.HonestBlocks)
	require.Equal(t, 119, outcome.Blocks)
	require.Equal(t, "69 [H]", string(subject.Tree().Block(subject.Tree().Tip()).Payload))

	var equivocations []int
	for _, r := range outcome.Releases {
		require.Equal(t, 2, r.BlocksSpent)
		require.Zero(t, r.VotesSpent)
		require.Len(t, r.Hints, 2)
		equivocations = append(equivocations, len(r.Equivocations))
	}
	require.Equal(t, []int{5, 8, 11, 17}, equivocations)
	require.Len(t, subject.Hints(), 8)

	t.Run("release matches exactly", func(t *testing.T) {
		for _, s := range steps {
			if s.move.Decision != adversary.Release {
				continue
			}
			require.Equal(t, leader.Honest, s.leader)
			require.Equal(t, s.move.ToMatch, s.move.Capacity)
		}
		require.Equal(t, ghost.Weight(7), steps[14].move.ToMatch)
	})
	t.Run("queues drain in order", func(t *testing.T) {
		for _, s := range steps {
			want := opportunities(s.before.Blocks...)
			if s.move.Decision == adversary.Release {
				want = opportunities(want[s.move.Release.BlocksSpent:]...)
			}
			if s.leader == leader.Adversarial {
				want = append(want, s.after.Blocks[len(s.after.Blocks)-1])
				require.Equal(t, s.timeslot, s.after.Blocks[len(s.after.Blocks)-1].Slot)
			}
			require.Equal(t, want, opportunities(s.after.Blocks...), "timeslot %d", s.timeslot)
			require.Empty(t, s.after.Votes)
		}
	})
}

func TestSimulation_UnitScenarioFails(t *testing.T) {
	t.Parallel()
	subject, err := sim.NewSimulation(sim.WithSeed(42), sim.WithBeta(0.3), sim.WithHeadStart(0), sim.WithMaxTimeslot(100))
	require.NoError(t, err)

	outcome, err := subject.Run(context.Background())
	require.NoError(t, err)
	require.Equal(t, sim.Failed, outcome.State)
	require.True(t, outcome.AttackFailed())
	require.Equal(t, ghost.Timeslot(4), outcome.Timeslot)
	require.Equal(t, 4, outcome.Blocks)
	require.Len(t, outcome.Releases, 1)
	require.Equal(t, "attack failed at timeslot 4 after 1 releases", outcome.String())

	single := outcome.Releases[0]
	require.Equal(t, ghost.Timeslot(3), single.Timeslot)
	require.Equal(t, 1, single.BlocksSpent)
	require.Equal(t, single.Level1, single.Level2)
	require.Empty(t, single.Equivocations)
	require.Len(t, single.Hints, 1)

	_, err = subject.Step()
	require.ErrorIs(t, err, sim.ErrTerminated)
}

func TestSimulation_CommitteeScenario(t *testing.T) {
	t.Parallel()
	subject, err := sim.NewSimulation(
		sim.WithProtocol(sim.ProtocolCommittee),
		sim.WithSeed(42),
		sim.WithCommitteeWeights(80, 20),
		sim.WithHeadStart(15),
		sim.WithMaxTimeslot(1000),
	)
	require.NoError(t, err)

	steps := runSteps(t, subject)
	outcome := subject.Outcome()
	require.Equal(t, sim.Terminated, outcome.State)
	require.Equal(t, ghost.Timeslot(1000), outcome.Timeslot)
	require.Equal(t, []ghost.Timeslot{22, 28, 35, 44, 55, 69, 87, 110, 140, 174, 216, 265, 326, 404, 508, 636, 805},
		releaseTimeslots(outcome))
	require.Equal(t, 788, outcome.HonestBlocks)
	require.Equal(t, 3871, outcome.Blocks)

	first := outcome.Releases[0]
	require.Equal(t, 20, first.VotesSpent)
	require.Len(t, first.Equivocations, 18)
	require.Equal(t, ghost.Weight(400), steps[21].move.ToMatch)
	require.Equal(t, ghost.Weight(420), steps[21].move.Capacity)
	tree := subject.Tree()
	require.Equal(t, ghost.Payload("1 tR=22 [A]"), tree.Block(first.Level1).Payload)
	require.Equal(t, ghost.Payload("2-00001 tR=22 [A]"), tree.Block(first.Level2).Payload)
	require.Equal(t, ghost.Payload("2-00019 tR=22 [A]"), tree.Block(first.Equivocations[17]).Payload)

	t.Run("release exactly when the honest rival enters the window", func(t *testing.T) {
		const honest, adv = 80, 20
		for _, s := range steps {
			// No rival yet, nothing to match.
			if s.move.ToMatch == 0 {
				require.Equal(t, adversary.Withhold, s.move.Decision)
				continue
			}
			require.Equal(t, ghost.Weight(adv*len(s.before.Votes)), s.move.Capacity)
			inWindow := s.move.ToMatch <= s.move.Capacity && s.move.Capacity < s.move.ToMatch+honest
			require.Equal(t, inWindow, s.move.Decision == adversary.Release, "timeslot %d", s.timeslot)
		}
	})
	t.Run("queues drain in order", func(t *testing.T) {
		for _, s := range steps {
			blocks := opportunities(s.before.Blocks...)
			votes := timeslots(s.before.Votes...)
			if s.move.Decision == adversary.Release {
				r := s.move.Release
				next := blocks[2].Slot
				blocks = opportunities(blocks[2:]...)
				var reused []ghost.Timeslot
				for _, v := range votes[:r.VotesSpent] {
					if v >= next {
						reused = append(reused, v)
					}
				}
				votes = timeslots(append(reused, votes[r.VotesSpent:]...)...)
			}
			if s.leader == leader.Adversarial {
				blocks = append(blocks, adversary.Opportunity{Slot: s.timeslot, Seq: s.after.Blocks[len(s.after.Blocks)-1].Seq})
			}
			votes = append(votes, s.timeslot)
			require.Equal(t, blocks, opportunities(s.after.Blocks...), "timeslot %d", s.timeslot)
			require.Equal(t, votes, timeslots(s.after.Votes...), "timeslot %d", s.timeslot)
		}
	})
}

func TestSimulation_CommitteeRunsOutOfBlocks(t *testing.T) {
	t.Parallel()
	subject, err := sim.NewSimulation(
		sim.WithProtocol(sim.ProtocolCommittee),
		sim.WithSeed(42),
		sim.WithHeadStart(3),
		sim.WithMaxTimeslot(100),
	)
	require.NoError(t, err)
	_, err = subject.Run(context.Background())
	require.ErrorIs(t, err, adversary.ErrInsufficientBlocks)
	require.Equal(t, ghost.Timeslot(6), subject.Timeslot())
	require.Equal(t, sim.Aborted, subject.State())
	require.True(t, subject.State().IsTerminal())
	blocks := subject.Tree().Len()

	_, err = subject.Step()
	require.ErrorIs(t, err, sim.ErrTerminated)
	require.Equal(t, ghost.Timeslot(6), subject.Timeslot())
	require.Equal(t, blocks, subject.Tree().Len())
	_, err = subject.Run(context.Background())
	require.ErrorIs(t, err, sim.ErrTerminated)
	require.Contains(t, subject.Outcome().String(), "simulation aborted after timeslot 6")
}

func TestSimulation_Scenarios(t *testing.T) {
	t.Parallel()
	tests := []struct {
		scenario     string
		wantReleases []ghost.Timeslot
		wantBlocks   int
	}{
		{scenario: "ghost-short", wantReleases: []ghost.Timeslot{13, 19, 30, 45, 59, 90}, wantBlocks: 130},
		{scenario: "committee-short", wantReleases: []ghost.Timeslot{18, 22, 27, 33, 42, 53, 66, 80, 93}, wantBlocks: 371},
	}
	for _, test := range tests {
		test := test
		t.Run(test.scenario, func(t *testing.T) {
			t.Parallel()
			subject, err := sim.NewSimulation(sim.WithScenario(test.scenario))
			require.NoError(t, err)
			outcome, err := subject.Run(context.Background())
			require.NoError(t, err)
			require.Equal(t, sim.Terminated, outcome.State)
			require.Equal(t, ghost.Timeslot(100), outcome.Timeslot)
			require.Equal(t, test.wantReleases, releaseTimeslots(outcome))
			require.Equal(t, test.wantBlocks, outcome.Blocks)
		})
	}
}

func TestSimulation_RunHonoursContext(t *testing.T) {
	t.Parallel()
	subject, err := sim.NewSimulation()
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = subject.Run(ctx)
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, subject.Timeslot())
}
