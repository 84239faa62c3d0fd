package adversary

import (
	"github.com/ghost-attack/ghostsim/ghost"
	"golang.org/x/xerrors"
)

// honestVotesToMatch returns the tally of the sole child of target, or zero
// if target has no child yet.
func honestVotesToMatch(tree *ghost.Tree, target ghost.Digest) (ghost.Weight, error) {
	children := tree.Children(target)
	switch len(children) {
	case 0:
		return 0, nil
	case 1:
		return tree.VoteTally(children[0]), nil
	default:
		return 0, xerrors.Errorf("%d children below %s: %w", len(children), target, ErrMultipleRivals)
	}
}

func createBlock(tree *ghost.Tree, parent ghost.Digest, payload ghost.Payload, slot ghost.Timeslot) (ghost.Digest, error) {
	d, err := tree.AddBlock(ghost.NewBlock(parent, payload, slot))
	if err != nil {
		return ghost.Digest{}, xerrors.Errorf("creating adversarial block: %w", err)
	}
	return d, nil
}

// createAndVote creates a block and has its producer vote for it in the
// block's own timeslot.
func createAndVote(tree *ghost.Tree, parent ghost.Digest, payload ghost.Payload, slot ghost.Timeslot, w ghost.Weight, party ghost.Party) (ghost.Digest, error) {
	d, err := createBlock(tree, parent, payload, slot)
	if err != nil {
		return ghost.Digest{}, err
	}
	if err := tree.AddVote(d, slot, w, party); err != nil {
		return ghost.Digest{}, xerrors.Errorf("voting for own block: %w", err)
	}
	return d, nil
}

func checkTip(tree *ghost.Tree, want ghost.Digest) error {
	if tip := tree.Tip(); tip != want {
		return xerrors.Errorf("tip is %s, released %s: %w", tree.Block(tip), tree.Block(want), ErrTipMismatch)
	}
	return nil
}
