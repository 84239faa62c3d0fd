package sim

import (
	"fmt"
	"strings"

	"golang.org/x/xerrors"
)

// Protocol selects the GHOST variant under attack.
type Protocol int

const (
	// ProtocolGhost is PoS GHOST: every block votes for itself with unit
	// weight and the adversary withholds blocks.
	ProtocolGhost Protocol = iota
	// ProtocolCommittee is Committee-GHOST: every timeslot each party votes
	// with its committee weight and the adversary withholds blocks and votes.
	ProtocolCommittee
)

func (p Protocol) String() string {
	switch p {
	case ProtocolGhost:
		return "ghost"
	case ProtocolCommittee:
		return "committee"
	default:
		return fmt.Sprintf("protocol(%d)", int(p))
	}
}

func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(s) {
	case "ghost":
		return ProtocolGhost, nil
	case "committee":
		return ProtocolCommittee, nil
	default:
		return 0, xerrors.Errorf("%q: %w", s, ErrUnknownProtocol)
	}
}
