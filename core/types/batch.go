package types

import (
	"encoding/json"
	"fmt"

	"github.com/eth2030/zkstf/rlp"
)

// Batch is the host-supplied input of one invocation: an ordered list of
// transactions plus claimed roots and the batch index. The claimed roots are
// advisory; the evaluator recomputes the real ones.
type Batch struct {
	Transactions []*Transaction
	OldStateRoot Hash
	NewStateRoot Hash
	BatchIndex   uint64
}

// TxHashes returns the hash of every transaction in input order.
func (b *Batch) TxHashes() []Hash {
	hashes := make([]Hash, len(b.Transactions))
	for i, tx := range b.Transactions {
		hashes[i] = tx.Hash()
	}
	return hashes
}

type batchJSON struct {
	Transactions *[]*Transaction `json:"transactions"`
	OldStateRoot *Hash           `json:"old_state_root"`
	NewStateRoot *Hash           `json:"new_state_root"`
	BatchIndex   *uint64         `json:"batch_index"`
}

// MarshalJSON implements json.Marshaler.
func (b *Batch) MarshalJSON() ([]byte, error) {
	txs := b.Transactions
	if txs == nil {
		txs = []*Transaction{}
	}
	return json.Marshal(&batchJSON{
		Transactions: &txs,
		OldStateRoot: &b.OldStateRoot,
		NewStateRoot: &b.NewStateRoot,
		BatchIndex:   &b.BatchIndex,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Every field is required and
// null transactions are rejected.
func (b *Batch) UnmarshalJSON(input []byte) error {
	var dec batchJSON
	if err := strictUnmarshal(input, &dec); err != nil {
		return decodeErr("batch", err)
	}
	switch {
	case dec.Transactions == nil:
		return decodeErr("batch", missing("transactions"))
	case dec.OldStateRoot == nil:
		return decodeErr("batch", missing("old_state_root"))
	case dec.NewStateRoot == nil:
		return decodeErr("batch", missing("new_state_root"))
	case dec.BatchIndex == nil:
		return decodeErr("batch", missing("batch_index"))
	}
	for i, tx := range *dec.Transactions {
		if tx == nil {
			return decodeErr("batch", fmt.Errorf("transaction %d: null", i))
		}
	}
	*b = Batch{
		Transactions: *dec.Transactions,
		OldStateRoot: *dec.OldStateRoot,
		NewStateRoot: *dec.NewStateRoot,
		BatchIndex:   *dec.BatchIndex,
	}
	return nil
}

// EncodeRLP returns the RLP wire form of the batch:
// [[tx, ...], old_state_root, new_state_root, batch_index] where each tx is
// a list of its canonical fields.
func (b *Batch) EncodeRLP() []byte {
	var txs []byte
	for _, tx := range b.Transactions {
		txs = append(txs, rlp.WrapList(tx.EncodeCanonical())...)
	}
	payload := rlp.AppendListHeader(nil, len(txs))
	payload = append(payload, txs...)
	payload = rlp.AppendBytes(payload, b.OldStateRoot[:])
	payload = rlp.AppendBytes(payload, b.NewStateRoot[:])
	payload = rlp.AppendUint64(payload, b.BatchIndex)
	return rlp.WrapList(payload)
}

// DecodeBatchRLP parses the RLP wire form produced by EncodeRLP.
func DecodeBatchRLP(input []byte) (*Batch, error) {
	b, err := readBatch(rlp.NewStream(input))
	if err != nil {
		return nil, decodeErr("batch", err)
	}
	return b, nil
}

func readBatch(s *rlp.Stream) (*Batch, error) {
	if _, err := s.List(); err != nil {
		return nil, err
	}
	if _, err := s.List(); err != nil {
		return nil, err
	}
	b := &Batch{Transactions: []*Transaction{}}
	for i := 0; !s.AtEnd(); i++ {
		if _, err := s.List(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		tx, err := readTxFields(s)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		if err := s.ListEnd(); err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		b.Transactions = append(b.Transactions, tx)
	}
	if err := s.ListEnd(); err != nil {
		return nil, err
	}
	if err := s.FixedBytes(b.OldStateRoot[:]); err != nil {
		return nil, fmt.Errorf("old_state_root: %w", err)
	}
	if err := s.FixedBytes(b.NewStateRoot[:]); err != nil {
		return nil, fmt.Errorf("new_state_root: %w", err)
	}
	var err error
	if b.BatchIndex, err = s.Uint64(); err != nil {
		return nil, fmt.Errorf("batch_index: %w", err)
	}
	if err := s.ListEnd(); err != nil {
		return nil, err
	}
	return b, s.Finish()
}
