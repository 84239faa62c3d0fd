package adversary

import "errors"

var (
	// ErrQueueOrder signals that a withholding queue is no longer sorted by
	// timeslot.
	ErrQueueOrder = errors.New("withheld opportunities out of order")
	// ErrStaleVote signals a withheld vote whose timeslot precedes the first
	// block of the sub-tree it would be spent on.
	ErrStaleVote = errors.New("withheld vote precedes released block")
	// ErrVotesExhausted signals that the withheld votes ran out before the
	// released sub-tree overtook the honest chain.
	ErrVotesExhausted = errors.New("withheld votes exhausted during release")
	// ErrMultipleRivals signals more than one block below the release target
	// while the adversary is withholding.
	ErrMultipleRivals = errors.New("more than one rival below release target")
	// ErrTipMismatch signals that a release did not move the tip to the
	// released block.
	ErrTipMismatch = errors.New("release did not take over the tip")
	// ErrInsufficientBlocks signals that too few block opportunities are
	// withheld to build a two-level sub-tree.
	ErrInsufficientBlocks = errors.New("too few withheld block opportunities")
	// ErrNothingWithheld signals a release attempt with no withheld block
	// opportunity.
	ErrNothingWithheld = errors.New("no withheld block opportunity")
)
