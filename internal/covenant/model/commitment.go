package model

import "encoding/hex"

// CommitmentSize is the length of a BIP-119 template hash.
const CommitmentSize = 32

// Commitment is the template hash a CTV locking script commits to.
type Commitment [CommitmentSize]byte

// String returns the commitment in natural byte order, as it appears inside scripts.
func (c Commitment) String() string {
	return hex.EncodeToString(c[:])
}

// Bytes returns a copy of the commitment.
func (c Commitment) Bytes() []byte {
	out := make([]byte, CommitmentSize)
	copy(out, c[:])
	return out
}
