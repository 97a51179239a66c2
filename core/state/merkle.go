package state

import (
	"errors"
	"fmt"

	"github.com/spacemeshos/merkle-tree"

	"github.com/eth2030/zkstf/core/types"
	"github.com/eth2030/zkstf/crypto"
)

// ErrProofIndex is returned when a proof is requested for a missing leaf.
var ErrProofIndex = errors.New("state: proof index out of range")

// Domain separators for Merkle leaves and inner nodes.
var (
	merkleLeafPrefix = []byte{0x00}
	merkleNodePrefix = []byte{0x01}
)

// MerkleCommitter commits to the account sequence with a binary Keccak-256
// tree over per-account leaves. A node without a sibling is paired with a
// zero-valued padding node (merkle.PaddingValue), so the tree is always
// complete. A single account commits to its leaf hash. The empty sequence
// commits to Keccak-256 of nothing, matching FlatCommitter.
type MerkleCommitter struct{}

// Commit implements Committer.
func (MerkleCommitter) Commit(accounts []*types.Account) types.Hash {
	if len(accounts) == 0 {
		return crypto.Keccak256Hash()
	}
	tree, err := merkleTree(accounts, nil)
	if err != nil {
		// Only cache writers fail, and none is attached.
		panic(fmt.Sprintf("state: build merkle tree: %v", err))
	}
	return types.BytesToHash(tree.Root())
}

// Proof returns the sibling nodes proving accounts[i] is in the tree.
func (MerkleCommitter) Proof(accounts []*types.Account, i int) ([]types.Hash, error) {
	if i < 0 || i >= len(accounts) {
		return nil, ErrProofIndex
	}
	tree, err := merkleTree(accounts, map[uint64]bool{uint64(i): true})
	if err != nil {
		return nil, fmt.Errorf("state: build merkle tree: %w", err)
	}
	nodes := tree.Proof()
	proof := make([]types.Hash, len(nodes))
	for j, n := range nodes {
		proof[j] = types.BytesToHash(n)
	}
	return proof, nil
}

// VerifyProof checks that acc sits at index i of the tree committed to by root.
func VerifyProof(root types.Hash, acc *types.Account, i int, proof []types.Hash) (bool, error) {
	if i < 0 {
		return false, ErrProofIndex
	}
	nodes := make([][]byte, len(proof))
	for j := range proof {
		nodes[j] = proof[j].Bytes()
	}
	leaf := merkleLeaf(acc)
	return merkle.ValidatePartialTree(
		[]uint64{uint64(i)},
		[][]byte{leaf[:]},
		nodes,
		root.Bytes(),
		merkleNode,
	)
}

func merkleTree(accounts []*types.Account, prove map[uint64]bool) (*merkle.Tree, error) {
	builder := merkle.NewTreeBuilder().WithHashFunc(merkleNode)
	if prove != nil {
		builder = builder.WithLeavesToProve(prove)
	}
	tree, err := builder.Build()
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		leaf := merkleLeaf(acc)
		if err := tree.AddLeaf(leaf[:]); err != nil {
			return nil, err
		}
	}
	return tree, nil
}

func merkleLeaf(acc *types.Account) types.Hash {
	return crypto.Keccak256Hash(merkleLeafPrefix, acc.EncodeCanonical())
}

// merkleNode is the merkle.HashFunc for inner nodes. It never writes into buf.
func merkleNode(_, left, right []byte) []byte {
	return crypto.Keccak256(merkleNodePrefix, left, right)
}
