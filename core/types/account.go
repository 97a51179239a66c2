package types

import (
	"bytes"
	"encoding/json"

	"github.com/eth2030/zkstf/rlp"
	"github.com/holiman/uint256"
)

// Account is one ledger participant. CodeHash and StorageRoot are carried
// and committed to but never interpreted.
type Account struct {
	Address     Address
	Balance     *uint256.Int
	Nonce       uint64
	CodeHash    Hash
	StorageRoot Hash
}

// NewAccount creates an account with the given balance and zero nonce and
// digests. A nil balance is treated as zero.
func NewAccount(addr Address, balance *uint256.Int) *Account {
	if balance == nil {
		balance = new(uint256.Int)
	}
	return &Account{Address: addr, Balance: new(uint256.Int).Set(balance)}
}

// Copy returns a deep copy of the account.
func (a *Account) Copy() *Account {
	cpy := *a
	cpy.Balance = new(uint256.Int)
	if a.Balance != nil {
		cpy.Balance.Set(a.Balance)
	}
	return &cpy
}

// Equal reports whether both accounts hold identical field values.
func (a *Account) Equal(b *Account) bool {
	return bytes.Equal(a.EncodeCanonical(), b.EncodeCanonical())
}

// AppendCanonical appends the canonical encoding of the account to dst:
// address, balance, nonce, code_hash, storage_root as consecutive RLP items
// with no enclosing list header.
func (a *Account) AppendCanonical(dst []byte) []byte {
	dst = rlp.AppendBytes(dst, a.Address[:])
	dst = rlp.AppendUint256(dst, a.Balance)
	dst = rlp.AppendUint64(dst, a.Nonce)
	dst = rlp.AppendBytes(dst, a.CodeHash[:])
	return rlp.AppendBytes(dst, a.StorageRoot[:])
}

// EncodeCanonical returns the canonical encoding of the account.
func (a *Account) EncodeCanonical() []byte {
	return a.AppendCanonical(make([]byte, 0, 96))
}

// DecodeAccount parses a canonical account encoding. The input must
// contain exactly one account.
func DecodeAccount(b []byte) (*Account, error) {
	s := rlp.NewStream(b)
	acc, err := readAccountFields(s)
	if err != nil {
		return nil, decodeErr("account", err)
	}
	if err := s.Finish(); err != nil {
		return nil, decodeErr("account", err)
	}
	return acc, nil
}

func readAccountFields(s *rlp.Stream) (*Account, error) {
	var (
		acc Account
		err error
	)
	if err = s.FixedBytes(acc.Address[:]); err != nil {
		return nil, err
	}
	if acc.Balance, err = s.Uint256(); err != nil {
		return nil, err
	}
	if acc.Nonce, err = s.Uint64(); err != nil {
		return nil, err
	}
	if err = s.FixedBytes(acc.CodeHash[:]); err != nil {
		return nil, err
	}
	if err = s.FixedBytes(acc.StorageRoot[:]); err != nil {
		return nil, err
	}
	return &acc, nil
}

type accountJSON struct {
	Address     *Address  `json:"address"`
	Balance     *quantity `json:"balance"`
	Nonce       *uint64   `json:"nonce"`
	CodeHash    *Hash     `json:"code_hash,omitempty"`
	StorageRoot *Hash     `json:"storage_root,omitempty"`
}

// MarshalJSON implements json.Marshaler.
func (a *Account) MarshalJSON() ([]byte, error) {
	bal := new(uint256.Int)
	if a.Balance != nil {
		bal.Set(a.Balance)
	}
	return json.Marshal(&accountJSON{
		Address:     &a.Address,
		Balance:     (*quantity)(bal),
		Nonce:       &a.Nonce,
		CodeHash:    &a.CodeHash,
		StorageRoot: &a.StorageRoot,
	})
}

// UnmarshalJSON implements json.Unmarshaler. Address, balance and nonce are
// required; the digests default to zero.
func (a *Account) UnmarshalJSON(input []byte) error {
	var dec accountJSON
	if err := strictUnmarshal(input, &dec); err != nil {
		return decodeErr("account", err)
	}
	switch {
	case dec.Address == nil:
		return decodeErr("account", missing("address"))
	case dec.Balance == nil:
		return decodeErr("account", missing("balance"))
	case dec.Nonce == nil:
		return decodeErr("account", missing("nonce"))
	}
	*a = Account{
		Address: *dec.Address,
		Balance: new(uint256.Int).Set((*uint256.Int)(dec.Balance)),
		Nonce:   *dec.Nonce,
	}
	if dec.CodeHash != nil {
		a.CodeHash = *dec.CodeHash
	}
	if dec.StorageRoot != nil {
		a.StorageRoot = *dec.StorageRoot
	}
	return nil
}
