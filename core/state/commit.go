package state

import (
	"fmt"

	"github.com/eth2030/zkstf/core/types"
	"github.com/eth2030/zkstf/crypto"
)

// Committer reduces an ordered account sequence to a fixed-size digest.
// The same sequence must always produce the same digest.
type Committer interface {
	Commit(accounts []*types.Account) types.Hash
}

// Commitment scheme names accepted by NewCommitter.
const (
	SchemeFlat   = "flat"
	SchemeMerkle = "merkle"
)

// NewCommitter returns the committer registered under scheme. The empty
// string selects the flat commitment.
func NewCommitter(scheme string) (Committer, error) {
	switch scheme {
	case "", SchemeFlat:
		return FlatCommitter{}, nil
	case SchemeMerkle:
		return MerkleCommitter{}, nil
	default:
		return nil, fmt.Errorf("state: unknown commitment scheme %q", scheme)
	}
}

// FlatCommitter hashes the concatenation of the canonical encodings of all
// accounts, in order and without separators, with a single Keccak-256.
// Cost is linear in the encoded size and no membership proofs exist.
type FlatCommitter struct{}

// Commit implements Committer.
func (FlatCommitter) Commit(accounts []*types.Account) types.Hash {
	d := crypto.NewKeccak()
	buf := make([]byte, 0, 128)
	for _, acc := range accounts {
		buf = acc.AppendCanonical(buf[:0])
		d.Write(buf)
	}
	return crypto.HashSum(d)
}
