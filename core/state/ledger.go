// Package state holds the ordered account snapshot of one invocation and the
// commitment functions that reduce it to a state root.
package state

import (
	"errors"
	"fmt"

	"github.com/eth2030/zkstf/core/types"
)

// ErrDuplicateAccount is returned when a snapshot would hold two accounts
// with the same address.
var ErrDuplicateAccount = errors.New("state: duplicate account address")

// Ledger is an ordered account snapshot. Order is insertion order and is
// part of the commitment. A Ledger is owned by a single executor and is not
// safe for concurrent use.
type Ledger struct {
	accounts []*types.Account
	index    map[types.Address]int
}

// NewLedger builds a snapshot holding copies of the given accounts in order.
func NewLedger(accounts ...*types.Account) (*Ledger, error) {
	l := &Ledger{
		accounts: make([]*types.Account, 0, len(accounts)),
		index:    make(map[types.Address]int, len(accounts)),
	}
	for _, acc := range accounts {
		if err := l.Insert(acc); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Insert appends a copy of acc to the end of the snapshot.
func (l *Ledger) Insert(acc *types.Account) error {
	if _, ok := l.index[acc.Address]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateAccount, acc.Address)
	}
	l.index[acc.Address] = len(l.accounts)
	l.accounts = append(l.accounts, acc.Copy())
	return nil
}

// Get returns the live account stored at addr, or nil. Mutating the result
// mutates the snapshot.
func (l *Ledger) Get(addr types.Address) *types.Account {
	if i, ok := l.index[addr]; ok {
		return l.accounts[i]
	}
	return nil
}

// Len returns the number of accounts.
func (l *Ledger) Len() int { return len(l.accounts) }

// Accounts returns the accounts in snapshot order. The slice is shared with
// the ledger; callers must not modify it.
func (l *Ledger) Accounts() []*types.Account { return l.accounts }

// Copy returns a deep copy of the snapshot.
func (l *Ledger) Copy() *Ledger {
	cpy := &Ledger{
		accounts: make([]*types.Account, len(l.accounts)),
		index:    make(map[types.Address]int, len(l.accounts)),
	}
	for i, acc := range l.accounts {
		cpy.accounts[i] = acc.Copy()
		cpy.index[acc.Address] = i
	}
	return cpy
}

// Root commits to the snapshot with c.
func (l *Ledger) Root(c Committer) types.Hash {
	return c.Commit(l.accounts)
}
