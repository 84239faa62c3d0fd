package adversary

import (
	"fmt"

	"github.com/ghost-attack/ghostsim/ghost"
	"github.com/ghost-attack/ghostsim/sim/leader"
	"golang.org/x/xerrors"
)

// minCommitteeRelease is the number of withheld block opportunities the
// committee adversary needs once an honest chain has started: two for the
// released levels and one to bound which spent votes can be reused.
const minCommitteeRelease = 3

// Weights are the per-timeslot committee vote weights of the two parties.
type Weights struct {
	Honest      ghost.Weight
	Adversarial ghost.Weight
}

// Beta returns the adversarial share of the committee.
func (w Weights) Beta() float64 {
	total := w.Honest + w.Adversarial
	if total == 0 {
		return 0
	}
	return float64(w.Adversarial) / float64(total)
}

var _ Strategy = (*Committee)(nil)

// Committee attacks Committee-GHOST, where every timeslot both parties vote
// with their committee weight, separately from block production. The
// adversary withholds block production opportunities and votes.
type Committee struct {
	tree     *ghost.Tree
	weights  Weights
	target   ghost.Digest
	withheld Withheld
	count    int
}

func NewCommittee(tree *ghost.Tree, weights Weights) *Committee {
	return &Committee{tree: tree, weights: weights, target: tree.Genesis()}
}

func (c *Committee) Target() ghost.Digest { return c.target }

func (c *Committee) Withheld() Withheld { return c.withheld.Clone() }

func (c *Committee) Act(t ghost.Timeslot, l leader.Leader) (Move, error) {
	if err := c.withheld.Validate(); err != nil {
		return Move{}, err
	}
	move := Move{Decision: Withhold}
	// Nothing to displace until an honest block lands below the target.
	if len(c.tree.Children(c.target)) > 0 {
		if len(c.withheld.Blocks) < minCommitteeRelease {
			return Move{}, xerrors.Errorf("%d withheld at timeslot %d: %w", len(c.withheld.Blocks), t, ErrInsufficientBlocks)
		}
		toMatch, err := honestVotesToMatch(c.tree, c.target)
		if err != nil {
			return Move{}, err
		}
		capacity := c.weights.Adversarial * ghost.Weight(len(c.withheld.Votes))
		move.ToMatch, move.Capacity = toMatch, capacity
		switch {
		case toMatch <= capacity && capacity < toMatch+c.weights.Honest:
			release, err := c.release(t)
			if err != nil {
				return Move{}, xerrors.Errorf("releasing at timeslot %d: %w", t, err)
			}
			move.Decision = Release
			move.Release = release
		case capacity < toMatch:
			log.Warnw("Honest block entered canonical chain permanently", "timeslot", t, "toMatch", toMatch, "withheld", capacity)
			move.Decision = Lose
			return move, nil
		}
	}
	if l == leader.Adversarial {
		c.count++
		c.withheld.PushBlock(Opportunity{Slot: t, Seq: c.count})
	}
	c.withheld.PushVote(t)
	return move, nil
}

func (c *Committee) release(t ghost.Timeslot) (*ReleaseReport, error) {
	report := &ReleaseReport{Timeslot: t, Target: c.target, BlocksSpent: 2}
	o1, err := c.withheld.PopBlock()
	if err != nil {
		return nil, err
	}
	o2, err := c.withheld.PopBlock()
	if err != nil {
		return nil, err
	}
	b1, err := createBlock(c.tree, c.target, c.level1Payload(o1, t), o1.Slot)
	if err != nil {
		return nil, err
	}
	b2, err := createBlock(c.tree, b1, c.level2Payload(o2, 1, t), o2.Slot)
	if err != nil {
		return nil, err
	}
	report.Level1, report.Level2 = b1, b2

	// Votes at or after the next withheld block's slot can be cast again on
	// the sub-tree released from it.
	next := c.withheld.Blocks[0].Slot
	var reuse []ghost.Timeslot
	var level2Votes int
	for c.tree.Tip() != b2 {
		v, err := c.withheld.PopVote()
		if err != nil {
			return nil, xerrors.Errorf("tip still %s: %w", c.tree.Block(c.tree.Tip()), err)
		}
		report.VotesSpent++
		switch {
		case v < o1.Slot:
			return nil, xerrors.Errorf("vote at %d below level 1 at %d: %w", v, o1.Slot, ErrStaleVote)
		case v < o2.Slot:
			err = c.vote(b1, v)
		case level2Votes == 0:
			err = c.vote(b2, v)
			level2Votes++
		default:
			level2Votes++
			var e ghost.Digest
			e, err = createBlock(c.tree, b1, c.level2Payload(o2, level2Votes, t), o2.Slot)
			if err == nil {
				report.Equivocations = append(report.Equivocations, e)
				err = c.vote(e, v)
			}
		}
		if err != nil {
			return nil, err
		}
		if next <= v {
			reuse = append(reuse, v)
		}
	}
	c.withheld.Votes = append(reuse, c.withheld.Votes...)

	report.Hints = [][]ghost.Digest{c.tree.Children(c.target), c.tree.Children(b1)}
	if err := checkTip(c.tree, b2); err != nil {
		return nil, err
	}
	c.target = b2
	log.Infow("Released withheld blocks and votes", "timeslot", t, "votes", report.VotesSpent,
		"reused", len(reuse), "equivocations", len(report.Equivocations), "target", c.tree.Block(c.target), "digest", c.tree.Name(c.target))
	return report, nil
}

func (c *Committee) vote(d ghost.Digest, t ghost.Timeslot) error {
	if err := c.tree.AddVote(d, t, c.weights.Adversarial, ghost.Adversarial); err != nil {
		return xerrors.Errorf("casting withheld vote: %w", err)
	}
	return nil
}

func (c *Committee) level1Payload(o Opportunity, released ghost.Timeslot) ghost.Payload {
	return ghost.NewPayload(fmt.Sprintf("%d tR=%d", o.Seq, released), ghost.Adversarial)
}

func (c *Committee) level2Payload(o Opportunity, n int, released ghost.Timeslot) ghost.Payload {
	return ghost.NewPayload(fmt.Sprintf("%d-%05d tR=%d", o.Seq, n, released), ghost.Adversarial)
}
