// Package crypto provides the Keccak-256 digest used for transaction hashes
// and state roots.
package crypto

import (
	"hash"

	"github.com/eth2030/zkstf/core/types"
	"golang.org/x/crypto/sha3"
)

// Keccak256 calculates the Keccak-256 hash of the given data.
func Keccak256(data ...[]byte) []byte {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	return d.Sum(nil)
}

// Keccak256Hash calculates Keccak-256 and returns it as a types.Hash.
func Keccak256Hash(data ...[]byte) (h types.Hash) {
	d := sha3.NewLegacyKeccak256()
	for _, b := range data {
		d.Write(b)
	}
	d.Sum(h[:0])
	return h
}

// NewKeccak returns a streaming Keccak-256 hasher. Writing a sequence of
// slices yields the same digest as Keccak256 over their concatenation.
func NewKeccak() hash.Hash {
	return sha3.NewLegacyKeccak256()
}

// HashSum finalizes d into a types.Hash.
func HashSum(d hash.Hash) (h types.Hash) {
	d.Sum(h[:0])
	return h
}
