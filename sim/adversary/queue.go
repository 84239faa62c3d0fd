package adversary

import (
	"fmt"

	"github.com/ghost-attack/ghostsim/ghost"
	"golang.org/x/xerrors"
)

// Opportunity is a block-production opportunity won by the adversary. Seq
// counts the adversary's opportunities from 1 and labels the blocks built
// from it.
type Opportunity struct {
	Slot ghost.Timeslot
	Seq  int
}

func (o Opportunity) String() string {
	return fmt.Sprintf("%d@%d", o.Seq, o.Slot)
}

// Withheld holds the opportunities the adversary has not revealed yet, both
// in FIFO order.
type Withheld struct {
	Blocks []Opportunity
	Votes  []ghost.Timeslot
}

func (w *Withheld) PushBlock(o Opportunity) {
	w.Blocks = append(w.Blocks, o)
}

func (w *Withheld) PushVote(t ghost.Timeslot) {
	w.Votes = append(w.Votes, t)
}

// PopBlock removes and returns the earliest withheld block opportunity.
func (w *Withheld) PopBlock() (Opportunity, error) {
	if len(w.Blocks) == 0 {
		return Opportunity{}, ErrNothingWithheld
	}
	o := w.Blocks[0]
	w.Blocks = w.Blocks[1:]
	return o, nil
}

// PopVote removes and returns the earliest withheld vote.
func (w *Withheld) PopVote() (ghost.Timeslot, error) {
	if len(w.Votes) == 0 {
		return 0, ErrVotesExhausted
	}
	t := w.Votes[0]
	w.Votes = w.Votes[1:]
	return t, nil
}

// Validate checks that both queues are sorted by timeslot.
func (w *Withheld) Validate() error {
	for i := 1; i < len(w.Blocks); i++ {
		if w.Blocks[i].Slot < w.Blocks[i-1].Slot || w.Blocks[i].Seq < w.Blocks[i-1].Seq {
			return xerrors.Errorf("block opportunity %s after %s: %w", w.Blocks[i], w.Blocks[i-1], ErrQueueOrder)
		}
	}
	for i := 1; i < len(w.Votes); i++ {
		if w.Votes[i] < w.Votes[i-1] {
			return xerrors.Errorf("vote at %d after vote at %d: %w", w.Votes[i], w.Votes[i-1], ErrQueueOrder)
		}
	}
	return nil
}

// Clone returns a deep copy.
func (w *Withheld) Clone() Withheld {
	return Withheld{
		Blocks: append([]Opportunity(nil), w.Blocks...),
		Votes:  append([]ghost.Timeslot(nil), w.Votes...),
	}
}
