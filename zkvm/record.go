package zkvm

import "github.com/eth2030/zkstf/core/types"

// BuildRecord assembles the commitment record of an executed batch. The
// record keeps its own copies of hashes and failures.
func BuildRecord(oldRoot, newRoot types.Hash, batchIndex uint64, hashes []types.Hash, failures []types.TxFailure) *types.CommitmentRecord {
	rec := &types.CommitmentRecord{
		OldStateRoot:      oldRoot,
		NewStateRoot:      newRoot,
		BatchIndex:        batchIndex,
		TransactionCount:  uint64(len(hashes)),
		TransactionHashes: append([]types.Hash{}, hashes...),
	}
	if len(failures) > 0 {
		rec.Failures = append([]types.TxFailure(nil), failures...)
	}
	return rec
}
