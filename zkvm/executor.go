// executor.go drives one batch through the state transition: it commits to
// the prior ledger, applies every transaction in order and commits to the
// result. The executor owns its ledger and is used exactly once.
package zkvm

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/eth2030/zkstf/core"
	"github.com/eth2030/zkstf/core/state"
	"github.com/eth2030/zkstf/core/types"
	"github.com/eth2030/zkstf/log"
)

// State is a step of the batch execution state machine.
type State uint8

const (
	StateInitialized State = iota
	StateOldRootComputed
	StateExecuting
	StateAllApplied
	StateNewRootComputed
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateInitialized:
		return "initialized"
	case StateOldRootComputed:
		return "old-root-computed"
	case StateExecuting:
		return "executing"
	case StateAllApplied:
		return "all-applied"
	case StateNewRootComputed:
		return "new-root-computed"
	case StateDone:
		return "done"
	case StateAborted:
		return "aborted"
	default:
		return fmt.Sprintf("state(%d)", uint8(s))
	}
}

// Executor applies a single batch to a ledger snapshot and produces its
// commitment record. It is not safe for concurrent use.
type Executor struct {
	config    Config
	ledger    *state.Ledger
	committer state.Committer
	log       *log.Logger

	state State
	index int   // transaction being applied, or the one that aborted
	err   error // abort reason
}

// NewExecutor creates an executor over a private copy of genesis. A nil
// logger selects log.Default().
func NewExecutor(genesis *state.Ledger, config Config, logger *log.Logger) (*Executor, error) {
	if genesis == nil {
		return nil, ErrNilGenesis
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	committer, err := state.NewCommitter(config.Commitment)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Executor{
		config:    config,
		ledger:    genesis.Copy(),
		committer: committer,
		log:       logger.Module("executor"),
		index:     -1,
	}, nil
}

// State returns the current execution state.
func (e *Executor) State() State { return e.state }

// Index returns the index of the transaction being applied while executing,
// or of the failing transaction once aborted. It is -1 otherwise.
func (e *Executor) Index() int { return e.index }

// Err returns the reason the executor aborted, or nil.
func (e *Executor) Err() error { return e.err }

// Ledger returns a copy of the executor's current ledger. After a
// successful Execute it is the post-state.
func (e *Executor) Ledger() *state.Ledger { return e.ledger.Copy() }

// Execute runs the batch. Transaction hashes are taken from the input before
// anything is applied, so they do not depend on execution outcome.
//
// Under PolicyAbort the first failing transaction aborts the batch with a
// *TxError and no record. Under PolicySkip failing transactions are left
// unapplied and listed in the record's failures.
func (e *Executor) Execute(batch *types.Batch) (*types.CommitmentRecord, error) {
	if e.state != StateInitialized {
		return nil, ErrAlreadyExecuted
	}
	if batch == nil {
		return nil, e.abort(-1, ErrNilBatch)
	}
	n := len(batch.Transactions)
	if e.config.MaxTransactions > 0 && n > e.config.MaxTransactions {
		return nil, e.abort(-1, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, n, e.config.MaxTransactions))
	}
	for i, tx := range batch.Transactions {
		if tx == nil {
			return nil, e.abort(i, &TxError{Index: i, Err: ErrNilTransaction})
		}
	}
	logger := e.log.With("batch", batch.BatchIndex)
	logger.Debug("Executing batch", "txs", n, "policy", e.config.Policy)
	timer := prometheus.NewTimer(batchDuration)

	hashes := batch.TxHashes()

	oldRoot := e.ledger.Root(e.committer)
	e.state = StateOldRootComputed
	if e.config.VerifyPriorRoot && !batch.OldStateRoot.IsZero() && batch.OldStateRoot != oldRoot {
		return nil, e.abort(-1, fmt.Errorf("%w: claimed %s computed %s",
			ErrPriorRootMismatch, batch.OldStateRoot, oldRoot))
	}
	if !batch.OldStateRoot.IsZero() && batch.OldStateRoot != oldRoot {
		logger.Debug("Claimed prior root differs", "claimed", batch.OldStateRoot, "computed", oldRoot)
	}

	// Work on a copy so an aborted batch leaves the ledger untouched.
	work := e.ledger.Copy()
	opts := core.ApplyOptions{CheckNonce: e.config.CheckNonce}
	var failures []types.TxFailure
	for i, tx := range batch.Transactions {
		e.state, e.index = StateExecuting, i
		res, err := core.ApplyTransaction(work, tx, opts)
		if err != nil {
			txFailures.WithLabelValues(core.Kind(err)).Inc()
			if e.config.Policy == PolicySkip {
				txsTotal.WithLabelValues(outcomeSkipped).Inc()
				logger.Warn("Skipped transaction", "index", i, "kind", core.Kind(err), "err", err)
				failures = append(failures, types.TxFailure{
					Index:  uint64(i),
					Kind:   core.Kind(err),
					Reason: err.Error(),
				})
				continue
			}
			txsTotal.WithLabelValues(outcomeFailed).Inc()
			logger.Warn("Batch aborted", "index", i, "kind", core.Kind(err), "err", err)
			return nil, e.abort(i, &TxError{Index: i, Err: err})
		}
		txsTotal.WithLabelValues(outcomeApplied).Inc()
		logger.Debug("Applied transaction", "index", i, "hash", hashes[i], "fee", res.Fee.Dec())
	}
	e.state, e.index = StateAllApplied, -1

	newRoot := work.Root(e.committer)
	e.ledger = work
	e.state = StateNewRootComputed

	record := BuildRecord(oldRoot, newRoot, batch.BatchIndex, hashes, failures)
	e.state = StateDone
	timer.ObserveDuration()
	batchSize.Observe(float64(n))
	batchesTotal.WithLabelValues(outcomeDone).Inc()
	logger.Info("Batch executed", "txs", n, "failed", len(failures),
		"old_root", oldRoot, "new_root", newRoot)
	return record, nil
}

func (e *Executor) abort(index int, err error) error {
	e.state, e.index, e.err = StateAborted, index, err
	batchesTotal.WithLabelValues(outcomeAborted).Inc()
	return err
}
