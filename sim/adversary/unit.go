package adversary

import (
	"strconv"

	"github.com/ghost-attack/ghostsim/ghost"
	"github.com/ghost-attack/ghostsim/sim/leader"
	"golang.org/x/xerrors"
)

// unitWeight is the vote every block carries for itself in the unit
// protocol, honest or not.
const unitWeight ghost.Weight = 1

var _ Strategy = (*Unit)(nil)

// Unit attacks plain PoS GHOST, where every block votes for itself with unit
// weight. The adversary withholds block production opportunities only.
type Unit struct {
	tree     *ghost.Tree
	target   ghost.Digest
	withheld Withheld
	count    int
}

func NewUnit(tree *ghost.Tree) *Unit {
	return &Unit{tree: tree, target: tree.Genesis()}
}

func (u *Unit) Target() ghost.Digest { return u.target }

func (u *Unit) Withheld() Withheld { return u.withheld.Clone() }

func (u *Unit) Act(t ghost.Timeslot, l leader.Leader) (Move, error) {
	if err := u.withheld.Validate(); err != nil {
		return Move{}, err
	}
	toMatch, err := honestVotesToMatch(u.tree, u.target)
	if err != nil {
		return Move{}, err
	}
	capacity := unitWeight * ghost.Weight(len(u.withheld.Blocks))
	// The honest block about to land in this slot, if any.
	var gain ghost.Weight
	if l == leader.Honest {
		gain = unitWeight
	}
	move := Move{Decision: Withhold, ToMatch: toMatch, Capacity: capacity}
	switch {
	case capacity > 0 && toMatch <= capacity && capacity < toMatch+gain:
		release, err := u.release(t)
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
	if l == leader.Adversarial {
		u.count++
		u.withheld.PushBlock(Opportunity{Slot: t, Seq: u.count})
	}
	return move, nil
}

func (u *Unit) release(t ghost.Timeslot) (*ReleaseReport, error) {
	report := &ReleaseReport{Timeslot: t, Target: u.target}
	o1, err := u.withheld.PopBlock()
	if err != nil {
		return nil, err
	}
	b1, err := createAndVote(u.tree, u.target, u.payload(o1), o1.Slot, unitWeight, ghost.Adversarial)
	if err != nil {
		return nil, err
	}
	report.Level1, report.Level2 = b1, b1
	report.BlocksSpent = 1
	report.Hints = append(report.Hints, u.tree.Children(u.target))

	if o2, err := u.withheld.PopBlock(); err == nil {
		b2, err := createAndVote(u.tree, b1, u.payload(o2), o2.Slot, unitWeight, ghost.Adversarial)
		if err != nil {
			return nil, err
		}
		report.Level2 = b2
		report.BlocksSpent++
		// Equivocate below level 1 with the remaining opportunities until the
		// released sub-tree takes over. The opportunities stay withheld: their
		// slots can still be used again in a later release.
		for _, o := range u.withheld.Blocks {
			if u.tree.Tip() == b2 {
				break
			}
			e, err := createAndVote(u.tree, b1, u.payload(o), o.Slot, unitWeight, ghost.Adversarial)
			if err != nil {
				return nil, err
			}
			report.Equivocations = append(report.Equivocations, e)
		}
		report.Hints = append(report.Hints, u.tree.Children(b1))
	}

	if err := checkTip(u.tree, report.Level2); err != nil {
		return nil, err
	}
	u.target = report.Level2
	log.Infow("Released withheld blocks", "timeslot", t, "blocks", report.BlocksSpent,
		"equivocations", len(report.Equivocations), "target", u.tree.Block(u.target), "digest", u.tree.Name(u.target))
	return report, nil
}

func (u *Unit) payload(o Opportunity) ghost.Payload {
	return ghost.NewPayload(strconv.Itoa(o.Seq), ghost.Adversarial)
}
