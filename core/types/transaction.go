package types

import (
	"bytes"
	"encoding/json"

	"github.com/eth2030/zkstf/rlp"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
	"golang.org/x/crypto/sha3"
)

// Transaction is one intended balance transfer. Data is opaque and Nonce is
// carried without being interpreted by the encoder.
type Transaction struct {
	From     Address
	To       Address
	Value    *uint256.Int
	Data     []byte
	Nonce    uint64
	GasLimit uint64
	GasPrice uint64
}

// Fee returns GasLimit * GasPrice. It cannot overflow 256 bits.
func (tx *Transaction) Fee() *uint256.Int {
	return new(uint256.Int).Mul(uint256.NewInt(tx.GasLimit), uint256.NewInt(tx.GasPrice))
}

// AppendCanonical appends the canonical encoding of the transaction to dst:
// from, to, value, data, nonce, gas_limit, gas_price as consecutive RLP
// items with no enclosing list header.
func (tx *Transaction) AppendCanonical(dst []byte) []byte {
	dst = rlp.AppendBytes(dst, tx.From[:])
	dst = rlp.AppendBytes(dst, tx.To[:])
	dst = rlp.AppendUint256(dst, tx.Value)
	dst = rlp.AppendBytes(dst, tx.Data)
	dst = rlp.AppendUint64(dst, tx.Nonce)
	dst = rlp.AppendUint64(dst, tx.GasLimit)
	return rlp.AppendUint64(dst, tx.GasPrice)
}

// EncodeCanonical returns the canonical encoding of the transaction.
func (tx *Transaction) EncodeCanonical() []byte {
	return tx.AppendCanonical(make([]byte, 0, 80+len(tx.Data)))
}

// Hash returns keccak256 of the canonical encoding.
func (tx *Transaction) Hash() Hash {
	d := sha3.NewLegacyKeccak256()
	d.Write(tx.EncodeCanonical())
	var h Hash
	d.Sum(h[:0])
	return h
}

// DecodeTransaction parses a canonical transaction encoding. The input must
// contain exactly one transaction.
func DecodeTransaction(b []byte) (*Transaction, error) {
	s := rlp.NewStream(b)
	tx, err := readTxFields(s)
	if err != nil {
		return nil, decodeErr("transaction", err)
	}
	if err := s.Finish(); err != nil {
		return nil, decodeErr("transaction", err)
	}
	return tx, nil
}

func readTxFields(s *rlp.Stream) (*Transaction, error) {
	var (
		tx  Transaction
		err error
	)
	if err = s.FixedBytes(tx.From[:]); err != nil {
		return nil, err
	}
	if err = s.FixedBytes(tx.To[:]); err != nil {
		return nil, err
	}
	if tx.Value, err = s.Uint256(); err != nil {
		return nil, err
	}
	data, err := s.Bytes()
	if err != nil {
		return nil, err
	}
	tx.Data = bytes.Clone(data)
	if tx.Nonce, err = s.Uint64(); err != nil {
		return nil, err
	}
	if tx.GasLimit, err = s.Uint64(); err != nil {
		return nil, err
	}
	if tx.GasPrice, err = s.Uint64(); err != nil {
		return nil, err
	}
	return &tx, nil
}

type txJSON struct {
	From     *Address       `json:"from"`
	To       *Address       `json:"to"`
	Value    *quantity      `json:"value"`
	Data     *hexutil.Bytes `json:"data"`
	Nonce    *uint64        `json:"nonce"`
	GasLimit *uint64        `json:"gas_limit"`
	GasPrice *uint64        `json:"gas_price"`
}

// MarshalJSON implements json.Marshaler.
func (tx *Transaction) MarshalJSON() ([]byte, error) {
	value := new(uint256.Int)
	if tx.Value != nil {
		value.Set(tx.Value)
	}
	data := hexutil.Bytes(tx.Data)
	if data == nil {
		data = hexutil.Bytes{}
	}
	return json.Marshal(&txJSON{
		From:     &tx.From,
		To:       &tx.To,
		Value:    (*quantity)(value),
		Data:     &data,
		Nonce:    &tx.Nonce,
		GasLimit: &tx.GasLimit,
		GasPrice: &tx.GasPrice,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Every field is required.
func (tx *Transaction) UnmarshalJSON(input []byte) error {
	var dec txJSON
	if err := strictUnmarshal(input, &dec); err != nil {
		return decodeErr("transaction", err)
	}
	switch {
	case dec.From == nil:
		return decodeErr("transaction", missing("from"))
	case dec.To == nil:
		return decodeErr("transaction", missing("to"))
	case dec.Value == nil:
		return decodeErr("transaction", missing("value"))
	case dec.Data == nil:
		return decodeErr("transaction", missing("data"))
	case dec.Nonce == nil:
		return decodeErr("transaction", missing("nonce"))
	case dec.GasLimit == nil:
		return decodeErr("transaction", missing("gas_limit"))
	case dec.GasPrice == nil:
		return decodeErr("transaction", missing("gas_price"))
	}
	*tx = Transaction{
		From:     *dec.From,
		To:       *dec.To,
		Value:    new(uint256.Int).Set((*uint256.Int)(dec.Value)),
		Data:     []byte(*dec.Data),
		Nonce:    *dec.Nonce,
		GasLimit: *dec.GasLimit,
		GasPrice: *dec.GasPrice,
	}
	return nil
}
