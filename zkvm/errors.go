package zkvm

import (
	"errors"
	"fmt"
)

// Executor errors.
var (
	ErrInvalidConfig     = errors.New("zkvm: invalid config")
	ErrNilGenesis        = errors.New("zkvm: nil genesis ledger")
	ErrNilBatch          = errors.New("zkvm: nil batch")
	ErrNilTransaction    = errors.New("zkvm: nil transaction")
	ErrBatchTooLarge     = errors.New("zkvm: batch exceeds maximum size")
	ErrPriorRootMismatch = errors.New("zkvm: prior state root mismatch")
	ErrAlreadyExecuted   = errors.New("zkvm: executor already used")
	ErrNilHost           = errors.New("zkvm: nil host")
)

// TxError reports the transaction that aborted a batch.
type TxError struct {
	Index int
	Err   error
}

func (e *TxError) Error() string {
	return fmt.Sprintf("zkvm: transaction %d: %v", e.Index, e.Err)
}

func (e *TxError) Unwrap() error { return e.Err }
