// Package leader provides the block-production lottery: for every timeslot
// it decides whether the honest party or the adversary may produce a block.
package leader

import (
	"fmt"

	"github.com/ghost-attack/ghostsim/ghost"
)

// defaultSeed replaces a zero seed, which is a fixed point of xorshift.
const defaultSeed = 0x264803e715714f95 // Seed from Drand.

// Leader is the party entitled to produce a block in a timeslot.
type Leader int

const (
	Honest Leader = iota
	Adversarial
)

func (l Leader) String() string {
	switch l {
	case Honest:
		return "Honest"
	case Adversarial:
		return "Adversarial"
	default:
		return fmt.Sprintf("Leader(%d)", int(l))
	}
}

// Sequence is a lazily extended, seeded Bernoulli sequence of leaders. Each
// timeslot is adversarial with probability beta. A head start of k makes
// timeslots 1 to k adversarial regardless of the lottery.
//
// The sequence uses a fast xorshift PRNG so that it is reproducible across
// platforms and Go releases given the same seed. Its statistical properties are
// sufficient for simulation, not for anything else.
type Sequence struct {
	xorshiftState uint64
	beta          float64
	seq           []Leader
}

func NewSequence(seed uint64, beta float64) *Sequence {
	return NewSequenceWithHeadStart(seed, beta, 0)
}

func NewSequenceWithHeadStart(seed uint64, beta float64, headStart int) *Sequence {
	if seed == 0 {
		seed = defaultSeed
	}
	seq := make([]Leader, headStart)
	for i := range seq {
		seq[i] = Adversarial
	}
	return &Sequence{xorshiftState: seed, beta: beta, seq: seq}
}

// Get returns the leader of timeslot t, extending the sequence as needed.
// Panics if t is zero; timeslots are positive.
func (s *Sequence) Get(t ghost.Timeslot) Leader {
	if t == 0 {
		panic("timeslots are positive")
	}
	for uint64(len(s.seq)) < uint64(t) {
		if s.nextFloat64() < s.beta {
			s.seq = append(s.seq, Adversarial)
		} else {
			s.seq = append(s.seq, Honest)
		}
	}
	return s.seq[t-1]
}

// Len returns the number of timeslots determined so far.
func (s *Sequence) Len() int {
	return len(s.seq)
}

func (s *Sequence) Beta() float64 {
	return s.beta
}

// nextFloat64 returns a uniform sample in [0, 1) from the top 53 bits.
func (s *Sequence) nextFloat64() float64 {
	return float64(s.next()>>11) / (1 << 53)
}

func (s *Sequence) next() uint64 {
	x := s.xorshiftState
	x ^= x << 13
	x ^= x >> 7
	x ^= x << 17
	s.xorshiftState = x
	return x
}
