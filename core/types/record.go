package types

import (
	"encoding/json"
	"fmt"

	"github.com/eth2030/zkstf/rlp"
)

// TxFailure records a transaction that was skipped under the
// skip-and-record policy.
type TxFailure struct {
	Index  uint64 `json:"index"`
	Kind   string `json:"kind"`
	Reason string `json:"reason"`
}

// CommitmentRecord is the output of one invocation. TransactionHashes has
// one entry per input transaction, in input order.
type CommitmentRecord struct {
	OldStateRoot      Hash        `json:"old_state_root"`
	NewStateRoot      Hash        `json:"new_state_root"`
	BatchIndex        uint64      `json:"batch_index"`
	TransactionCount  uint64      `json:"transaction_count"`
	TransactionHashes []Hash      `json:"transaction_hashes"`
	Failures          []TxFailure `json:"failures,omitempty"`
}

type recordJSON CommitmentRecord

// MarshalJSON implements json.Marshaler. An empty hash list is written as
// [] rather than null.
func (r *CommitmentRecord) MarshalJSON() ([]byte, error) {
	enc := recordJSON(*r)
	if enc.TransactionHashes == nil {
		enc.TransactionHashes = []Hash{}
	}
	return json.Marshal(&enc)
}

// UnmarshalJSON implements json.Unmarshaler and checks that the count
// matches the hash list.
func (r *CommitmentRecord) UnmarshalJSON(input []byte) error {
	var dec recordJSON
	if err := strictUnmarshal(input, &dec); err != nil {
		return decodeErr("record", err)
	}
	if dec.TransactionHashes == nil {
		return decodeErr("record", missing("transaction_hashes"))
	}
	if dec.TransactionCount != uint64(len(dec.TransactionHashes)) {
		return decodeErr("record", fmt.Errorf("transaction_count %d does not match %d hashes",
			dec.TransactionCount, len(dec.TransactionHashes)))
	}
	*r = CommitmentRecord(dec)
	return nil
}

// EncodeRLP returns the RLP wire form of the record:
// [old_root, new_root, batch_index, count, [hash, ...], [[index, kind, reason], ...]].
func (r *CommitmentRecord) EncodeRLP() []byte {
	var hashes []byte
	for _, h := range r.TransactionHashes {
		hashes = rlp.AppendBytes(hashes, h[:])
	}
	var failures []byte
	for _, f := range r.Failures {
		var item []byte
		item = rlp.AppendUint64(item, f.Index)
		item = rlp.AppendBytes(item, []byte(f.Kind))
		item = rlp.AppendBytes(item, []byte(f.Reason))
		failures = append(failures, rlp.WrapList(item)...)
	}
	var payload []byte
	payload = rlp.AppendBytes(payload, r.OldStateRoot[:])
	payload = rlp.AppendBytes(payload, r.NewStateRoot[:])
	payload = rlp.AppendUint64(payload, r.BatchIndex)
	payload = rlp.AppendUint64(payload, r.TransactionCount)
	payload = append(payload, rlp.WrapList(hashes)...)
	payload = append(payload, rlp.WrapList(failures)...)
	return rlp.WrapList(payload)
}

// DecodeRecordRLP parses the RLP wire form produced by EncodeRLP.
func DecodeRecordRLP(input []byte) (*CommitmentRecord, error) {
	r, err := readRecord(rlp.NewStream(input))
	if err != nil {
		return nil, decodeErr("record", err)
	}
	return r, nil
}

func readRecord(s *rlp.Stream) (*CommitmentRecord, error) {
	var (
		r   CommitmentRecord
		err error
	)
	if _, err = s.List(); err != nil {
		return nil, err
	}
	if err = s.FixedBytes(r.OldStateRoot[:]); err != nil {
		return nil, err
	}
	if err = s.FixedBytes(r.NewStateRoot[:]); err != nil {
		return nil, err
	}
	if r.BatchIndex, err = s.Uint64(); err != nil {
		return nil, err
	}
	if r.TransactionCount, err = s.Uint64(); err != nil {
		return nil, err
	}
	if _, err = s.List(); err != nil {
		return nil, err
	}
	r.TransactionHashes = []Hash{}
	for !s.AtEnd() {
		var h Hash
		if err = s.FixedBytes(h[:]); err != nil {
			return nil, err
		}
		r.TransactionHashes = append(r.TransactionHashes, h)
	}
	if err = s.ListEnd(); err != nil {
		return nil, err
	}
	if _, err = s.List(); err != nil {
		return nil, err
	}
	for !s.AtEnd() {
		f, err := readFailure(s)
		if err != nil {
			return nil, err
		}
		r.Failures = append(r.Failures, f)
	}
	if err = s.ListEnd(); err != nil {
		return nil, err
	}
	if err = s.ListEnd(); err != nil {
		return nil, err
	}
	if r.TransactionCount != uint64(len(r.TransactionHashes)) {
		return nil, fmt.Errorf("transaction_count %d does not match %d hashes",
			r.TransactionCount, len(r.TransactionHashes))
	}
	return &r, s.Finish()
}

func readFailure(s *rlp.Stream) (TxFailure, error) {
	var f TxFailure
	if _, err := s.List(); err != nil {
		return f, err
	}
	idx, err := s.Uint64()
	if err != nil {
		return f, err
	}
	kind, err := s.Bytes()
	if err != nil {
		return f, err
	}
	reason, err := s.Bytes()
	if err != nil {
		return f, err
	}
	f = TxFailure{Index: idx, Kind: string(kind), Reason: string(reason)}
	return f, s.ListEnd()
}
