// Package adversary implements the withholding attack against GHOST: the
// adversary hoards its block production and voting opportunities and releases
// them in a burst that displaces the honest chain just before the honest chain
// becomes too heavy to displace.
package adversary

import (
	"fmt"

	"github.com/ghost-attack/ghostsim/ghost"
	"github.com/ghost-attack/ghostsim/sim/leader"
	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("ghostsim/adversary")

// Decision is the adversary's move in one timeslot.
type Decision int

const (
	// Withhold keeps hoarding; the honest chain can absorb another block.
	Withhold Decision = iota
	// Release reveals a displacing sub-tree below the release target.
	Release
	// Lose means the withheld opportunities can no longer match the honest
	// chain below the release target. It is terminal.
	Lose
)

func (d Decision) String() string {
	switch d {
	case Withhold:
		return "withhold"
	case Release:
		return "release"
	case Lose:
		return "lose"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Strategy is an adversary that acts once per timeslot, strictly before the
// honest party.
type Strategy interface {
	// Act decides, applies the decision to the tree and then withholds the
	// opportunities the adversary won in timeslot t. Errors are fatal.
	Act(t ghost.Timeslot, l leader.Leader) (Move, error)
	// Target returns the block below which the adversary builds its next
	// displacing sub-tree.
	Target() ghost.Digest
	// Withheld returns a copy of the withholding queues.
	Withheld() Withheld
}

// Move reports what the adversary did in a timeslot.
type Move struct {
	Decision Decision
	// ToMatch is the tally of the honest rival below the release target at
	// the time of the decision.
	ToMatch ghost.Weight
	// Capacity is the weight the withheld opportunities could match.
	Capacity ghost.Weight
	// Release is set only when Decision is Release.
	Release *ReleaseReport
}

// ReleaseReport describes a revealed sub-tree.
type ReleaseReport struct {
	Timeslot ghost.Timeslot
	Target   ghost.Digest
	// Level1 is the released child of Target. Level2 is the intended tip; it
	// equals Level1 when a single opportunity was released.
	Level1 ghost.Digest
	Level2 ghost.Digest
	// Equivocations are the extra siblings of Level2 revealed to gather
	// weight, in creation order.
	Equivocations []ghost.Digest
	BlocksSpent   int
	VotesSpent    int
	// Hints lists sibling groups that a renderer may place on the same rank,
	// each in insertion order.
	Hints [][]ghost.Digest
}
