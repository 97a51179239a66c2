package types

import (
	"encoding/json"
	"fmt"
)

// Codec selects the wire format used between the host and the evaluator.
type Codec string

const (
	// CodecJSON is the JSON object format of the original host.
	CodecJSON Codec = "json"
	// CodecRLP is the list-of-canonical-items format.
	CodecRLP Codec = "rlp"
)

// ParseCodec validates a codec name. The empty string selects JSON.
func ParseCodec(name string) (Codec, error) {
	switch Codec(name) {
	case "", CodecJSON:
		return CodecJSON, nil
	case CodecRLP:
		return CodecRLP, nil
	default:
		return "", fmt.Errorf("types: unknown codec %q", name)
	}
}

// DecodeBatch decodes a host-supplied batch. Any failure is a *DecodeError.
func (c Codec) DecodeBatch(input []byte) (*Batch, error) {
	switch c {
	case CodecRLP:
		return DecodeBatchRLP(input)
	default:
		var b Batch
		if err := b.UnmarshalJSON(input); err != nil {
			return nil, err
		}
		return &b, nil
	}
}

// EncodeBatch encodes a batch for delivery to the evaluator.
func (c Codec) EncodeBatch(b *Batch) ([]byte, error) {
	if c == CodecRLP {
		return b.EncodeRLP(), nil
	}
	return json.Marshal(b)
}

// EncodeRecord encodes a commitment record for the host output channel.
func (c Codec) EncodeRecord(r *CommitmentRecord) ([]byte, error) {
	if c == CodecRLP {
		return r.EncodeRLP(), nil
	}
	return json.Marshal(r)
}

// DecodeRecord decodes a committed record.
func (c Codec) DecodeRecord(input []byte) (*CommitmentRecord, error) {
	switch c {
	case CodecRLP:
		return DecodeRecordRLP(input)
	default:
		var r CommitmentRecord
		if err := r.UnmarshalJSON(input); err != nil {
			return nil, err
		}
		return &r, nil
	}
}
