package ghost

import (
	"bytes"

	"github.com/mr-tron/base58"
)

// DigestLength is the size of a block digest in bytes.
const DigestLength = 32

// Digest is the content identifier of a block.
// Digests are totally ordered by their bytes, which gives deterministic
// iteration and tie-breaking. The zero value is not a valid block digest and
// is used to represent the absent parent of genesis.
type Digest [DigestLength]byte

func (d Digest) IsZero() bool {
	return d == Digest{}
}

func (d Digest) Bytes() []byte {
	return d[:]
}

// Compare returns -1, 0 or +1 depending on whether d sorts before, equal to
// or after other.
func (d Digest) Compare(other Digest) int {
	return bytes.Compare(d[:], other[:])
}

// String returns the base58 encoding of the digest.
func (d Digest) String() string {
	return base58.Encode(d[:])
}

// Short returns a prefix of the string form, at most 10 characters long.
func (d Digest) Short() string {
	s := d.String()
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
