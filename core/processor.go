// processor.go applies a single balance transfer to a ledger snapshot. A
// transfer either applies completely or leaves the snapshot untouched.
package core

import (
	"errors"
	"fmt"
	"math"

	"github.com/holiman/uint256"

	"github.com/eth2030/zkstf/core/state"
	"github.com/eth2030/zkstf/core/types"
)

// Transaction processing errors.
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrArithmeticOverflow  = errors.New("arithmetic overflow")
	ErrNonceMismatch       = errors.New("nonce mismatch")
	ErrNonceOverflow       = errors.New("nonce overflow")
)

// Kind returns the stable name of a processing error, used in failure
// records and diagnostics. Unknown errors map to "Unknown".
func Kind(err error) string {
	switch {
	case errors.Is(err, ErrAccountNotFound):
		return "AccountNotFound"
	case errors.Is(err, ErrInsufficientBalance):
		return "InsufficientBalance"
	case errors.Is(err, ErrArithmeticOverflow):
		return "ArithmeticOverflow"
	case errors.Is(err, ErrNonceMismatch):
		return "NonceMismatch"
	case errors.Is(err, ErrNonceOverflow):
		return "NonceOverflow"
	default:
		return "Unknown"
	}
}

// ApplyOptions tunes validation performed by ApplyTransaction.
type ApplyOptions struct {
	// CheckNonce rejects transactions whose nonce differs from the sender's
	// current nonce. Off by default: the nonce is carried but not validated.
	CheckNonce bool
}

// ApplyResult describes a successfully applied transfer.
type ApplyResult struct {
	Fee   *uint256.Int // GasLimit * GasPrice
	Total *uint256.Int // Value + Fee, debited from the sender
}

// ApplyTransaction transfers tx.Value from tx.From to tx.To and charges the
// fee to tx.From, incrementing its nonce. All checks run before the first
// mutation, so on error the ledger is unchanged. Self transfers are allowed
// and cost only the fee.
func ApplyTransaction(l *state.Ledger, tx *types.Transaction, opts ApplyOptions) (*ApplyResult, error) {
	from := l.Get(tx.From)
	if from == nil {
		return nil, fmt.Errorf("%w: sender %s", ErrAccountNotFound, tx.From)
	}
	to := l.Get(tx.To)
	if to == nil {
		return nil, fmt.Errorf("%w: recipient %s", ErrAccountNotFound, tx.To)
	}

	value := tx.Value
	if value == nil {
		value = new(uint256.Int)
	}
	fee, overflow := new(uint256.Int).MulOverflow(uint256.NewInt(tx.GasLimit), uint256.NewInt(tx.GasPrice))
	if overflow {
		return nil, fmt.Errorf("%w: fee %d * %d", ErrArithmeticOverflow, tx.GasLimit, tx.GasPrice)
	}
	total, overflow := new(uint256.Int).AddOverflow(value, fee)
	if overflow {
		return nil, fmt.Errorf("%w: value %s + fee %s", ErrArithmeticOverflow, value.Dec(), fee.Dec())
	}
	if from.Balance.Lt(total) {
		return nil, fmt.Errorf("%w: address %s have %s want %s",
			ErrInsufficientBalance, tx.From, from.Balance.Dec(), total.Dec())
	}
	if opts.CheckNonce && tx.Nonce != from.Nonce {
		return nil, fmt.Errorf("%w: address %s tx %d state %d", ErrNonceMismatch, tx.From, tx.Nonce, from.Nonce)
	}
	if from.Nonce == math.MaxUint64 {
		return nil, fmt.Errorf("%w: address %s", ErrNonceOverflow, tx.From)
	}

	// The recipient credit is checked against the post-debit balance so a
	// self transfer is evaluated on the value it will actually hold.
	toBase := to.Balance
	if from == to {
		toBase = new(uint256.Int).Sub(from.Balance, total)
	}
	credited, overflow := new(uint256.Int).AddOverflow(toBase, value)
	if overflow {
		return nil, fmt.Errorf("%w: credit %s to %s", ErrArithmeticOverflow, value.Dec(), tx.To)
	}

	from.Balance = new(uint256.Int).Sub(from.Balance, total)
	from.Nonce++
	to.Balance = credited

	return &ApplyResult{Fee: fee, Total: total}, nil
}
