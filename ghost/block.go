package ghost

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"strings"

	"golang.org/x/crypto/blake2b"
)

const (
	// AdversarialTag marks the payload of a block produced by the adversary.
	AdversarialTag = "[A]"
	// HonestTag marks the payload of a block produced by the honest party.
	HonestTag = "[H]"

	genesisPayload   = "Genesis"
	parentPresent    = 1
	parentNotPresent = 0
)

// Timeslot is a discrete tick of the simulation. Genesis lives at slot 0.
type Timeslot uint64

// Weight is a non-negative amount of votes.
type Weight uint64

// Party identifies who casts a vote.
type Party uint8

const (
	Honest Party = iota
	Adversarial
)

func (p Party) String() string {
	switch p {
	case Honest:
		return "honest"
	case Adversarial:
		return "adversarial"
	default:
		return fmt.Sprintf("party(%d)", p)
	}
}

// Payload is the opaque content of a block. It carries a human readable label
// followed by a party tag.
type Payload string

// NewPayload appends the tag of the given party to label.
func NewPayload(label string, party Party) Payload {
	tag := HonestTag
	if party == Adversarial {
		tag = AdversarialTag
	}
	return Payload(label + " " + tag)
}

// IsAdversarial reports whether the payload carries the adversarial tag.
func (p Payload) IsAdversarial() bool {
	return strings.HasSuffix(string(p), AdversarialTag)
}

// Block is an immutable value. Its identity is the digest of its content, so
// two blocks with equal parent, payload and slot are the same block.
type Block struct {
	// Parent is the zero digest only for genesis.
	Parent  Digest
	Payload Payload
	Slot    Timeslot
}

func NewBlock(parent Digest, payload Payload, slot Timeslot) Block {
	return Block{Parent: parent, Payload: payload, Slot: slot}
}

// GenesisBlock returns the unique parentless block at slot 0.
func GenesisBlock() Block {
	return Block{Payload: genesisPayload}
}

func (b Block) IsGenesis() bool {
	return b.Parent.IsZero()
}

func (b Block) IsAdversarial() bool {
	return b.Payload.IsAdversarial()
}

// MarshalForHashing writes the canonical encoding of the block: a parent
// presence byte, the parent digest if present, the length-prefixed payload and
// the slot, all integers big endian.
func (b Block) MarshalForHashing(w io.Writer) {
	if b.IsGenesis() {
		_, _ = w.Write([]byte{parentNotPresent})
	} else {
		_, _ = w.Write([]byte{parentPresent})
		_, _ = w.Write(b.Parent[:])
	}
	_ = binary.Write(w, binary.BigEndian, uint64(len(b.Payload)))
	_, _ = io.WriteString(w, string(b.Payload))
	_ = binary.Write(w, binary.BigEndian, uint64(b.Slot))
}

// Digest returns the blake2b-256 hash of the canonical encoding.
func (b Block) Digest() Digest {
	var buf bytes.Buffer
	b.MarshalForHashing(&buf)
	return Digest(blake2b.Sum256(buf.Bytes()))
}

func (b Block) String() string {
	return fmt.Sprintf("%s@%d", b.Payload, b.Slot)
}
