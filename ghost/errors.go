package ghost

import "errors"

var (
	// ErrUnknownBlock signals that a digest does not identify a block in the tree.
	ErrUnknownBlock = errors.New("block not found in tree")
	// ErrParentNotFound signals an attempt to insert a block whose parent is
	// not in the tree, including a second parentless block.
	ErrParentNotFound = errors.New("parent not found in tree")
	// ErrDuplicateBlock signals an attempt to insert a block that is already in
	// the tree. Equivocating blocks must differ in payload.
	ErrDuplicateBlock = errors.New("block already in tree")
	// ErrVoteBeforeBlock signals a vote whose timeslot precedes the slot of a
	// block it would count towards.
	ErrVoteBeforeBlock = errors.New("vote timeslot precedes block slot")
	// ErrVoteWeightMismatch signals a repeated (timeslot, party) vote carrying a
	// weight other than the one already tallied. Overriding votes is not
	// supported.
	ErrVoteWeightMismatch = errors.New("vote weight differs from previously tallied vote")
)
