package adversary

import (
	"testing"

	"github.com/ghost-attack/ghostsim/ghost"
	"github.com/ghost-attack/ghostsim/sim/leader"
	"github.com/stretchr/testify/require"
)

// committeeFacingHonestBlock returns a committee adversary with the given
// withheld queues, facing one honest block at slot 4 that carries 80 votes.
func committeeFacingHonestBlock(t *testing.T, withheld Withheld) *Committee {
	t.Helper()
	tree := ghost.NewTree()
	h, err := tree.AddBlock(ghost.NewBlock(tree.Genesis(), ghost.NewPayload("1", ghost.Honest), 4))
	require.NoError(t, err)
	require.NoError(t, tree.AddVote(h, 4, 80, ghost.Honest))
	subject := NewCommittee(tree, Weights{Honest: 80, Adversarial: 20})
	subject.withheld = withheld
	return subject
}

func TestCommittee_ReleaseErrors(t *testing.T) {
	t.Parallel()
	blocks := []Opportunity{{Slot: 5, Seq: 1}, {Slot: 6, Seq: 2}, {Slot: 7, Seq: 3}}

	t.Run("vote older than level 1", func(t *testing.T) {
		subject := committeeFacingHonestBlock(t, Withheld{
			Blocks: append([]Opportunity(nil), blocks...),
			Votes:  []ghost.Timeslot{2, 3, 4, 5, 6},
		})
		_, err := subject.Act(8, leader.Honest)
		require.ErrorIs(t, err, ErrStaleVote)
	})
	t.Run("votes run out before the tip moves", func(t *testing.T) {
		// Repeated votes at one slot are tallied once, so five of them carry
		// the capacity of one.
		subject := committeeFacingHonestBlock(t, Withheld{
			Blocks: append([]Opportunity(nil), blocks...),
			Votes:  []ghost.Timeslot{5, 5, 5, 5, 5},
		})
		_, err := subject.Act(8, leader.Honest)
		require.ErrorIs(t, err, ErrVotesExhausted)
		require.Empty(t, subject.withheld.Votes)
		require.Equal(t, ghost.Weight(20), subject.tree.VoteTally(subject.tree.Children(subject.tree.Genesis())[1]))
	})
	t.Run("enough votes release", func(t *testing.T) {
		subject := committeeFacingHonestBlock(t, Withheld{
			Blocks: append([]Opportunity(nil), blocks...),
			Votes:  []ghost.Timeslot{5, 6, 7, 8},
		})
		move, err := subject.Act(8, leader.Honest)
		require.NoError(t, err)
		require.Equal(t, Release, move.Decision)
		require.Equal(t, move.Release.Level2, subject.tree.Tip())
	})
}
