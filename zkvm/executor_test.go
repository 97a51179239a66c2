package zkvm

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/eth2030/zkstf/core"
	"github.com/eth2030/zkstf/core/state"
	"github.com/eth2030/zkstf/core/types"
	"github.com/eth2030/zkstf/log"
)

var (
	seedAddr = types.Address{}
	addrA    = types.HexToAddress("0xaa")
	addrB    = types.HexToAddress("0xbb")
	addrC    = types.HexToAddress("0xcc")
)

func seedLedger(t *testing.T) *state.Ledger {
	t.Helper()
	l, err := state.NewLedger(types.NewAccount(seedAddr, uint256.NewInt(1000000)))
	require.NoError(t, err)
	return l
}

func threeAccounts(t *testing.T) *state.Ledger {
	t.Helper()
	l, err := state.NewLedger(
		types.NewAccount(addrA, uint256.NewInt(1000)),
		types.NewAccount(addrB, uint256.NewInt(1000)),
		types.NewAccount(addrC, uint256.NewInt(1000)),
	)
	require.NoError(t, err)
	return l
}

func tx(from, to types.Address, value, gas, price uint64) *types.Transaction {
	return &types.Transaction{From: from, To: to, Value: uint256.NewInt(value), GasLimit: gas, GasPrice: price}
}

func newExecutor(t *testing.T, genesis *state.Ledger, mutate func(*Config)) *Executor {
	t.Helper()
	cfg := DefaultConfig()
	if mutate != nil {
		mutate(&cfg)
	}
	e, err := NewExecutor(genesis, cfg, log.NewNop())
	require.NoError(t, err)
	return e
}

func TestExecuteSelfTransferScenario(t *testing.T) {
	genesis := seedLedger(t)
	e := newExecutor(t, genesis, nil)
	batch := &types.Batch{Transactions: []*types.Transaction{tx(seedAddr, seedAddr, 0, 1, 1)}, BatchIndex: 1}

	rec, err := e.Execute(batch)
	require.NoError(t, err)
	assert.Equal(t, StateDone, e.State())

	post := e.Ledger().Get(seedAddr)
	assert.Equal(t, uint64(999999), post.Balance.Uint64())
	assert.Equal(t, uint64(1), post.Nonce)

	assert.Equal(t, genesis.Root(state.FlatCommitter{}), rec.OldStateRoot)
	assert.Equal(t, e.Ledger().Root(state.FlatCommitter{}), rec.NewStateRoot)
	assert.NotEqual(t, rec.OldStateRoot, rec.NewStateRoot)
	assert.Equal(t, uint64(1), rec.TransactionCount)
	assert.Equal(t, []types.Hash{batch.Transactions[0].Hash()}, rec.TransactionHashes)
	assert.Equal(t, uint64(1), rec.BatchIndex)
	assert.Empty(t, rec.Failures)

	// The injected genesis is never mutated.
	assert.Equal(t, uint64(1000000), genesis.Get(seedAddr).Balance.Uint64())
}

func TestExecuteAbortScenarios(t *testing.T) {
	tests := []struct {
		name  string
		txs   []*types.Transaction
		want  error
		index int
	}{
		{"unknown recipient", []*types.Transaction{tx(seedAddr, addrB, 1, 1, 1)}, core.ErrAccountNotFound, 0},
		{"unknown sender", []*types.Transaction{tx(addrB, seedAddr, 1, 1, 1)}, core.ErrAccountNotFound, 0},
		{"over-spend", []*types.Transaction{tx(seedAddr, seedAddr, 1000000, 1, 1)}, core.ErrInsufficientBalance, 0},
		{"fails after valid tx", []*types.Transaction{
			tx(seedAddr, seedAddr, 0, 1, 1),
			tx(seedAddr, seedAddr, 0, 1, 1),
			tx(seedAddr, seedAddr, 999998, 1, 1),
		}, core.ErrInsufficientBalance, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newExecutor(t, seedLedger(t), nil)
			before := e.Ledger().Root(state.FlatCommitter{})

			rec, err := e.Execute(&types.Batch{Transactions: tt.txs})
			require.Nil(t, rec)
			require.ErrorIs(t, err, tt.want)

			var txErr *TxError
			require.ErrorAs(t, err, &txErr)
			assert.Equal(t, tt.index, txErr.Index)
			assert.Equal(t, StateAborted, e.State())
			assert.Equal(t, tt.index, e.Index())
			assert.Equal(t, err, e.Err())

			// All-or-nothing: earlier applied transactions are discarded.
			assert.Equal(t, before, e.Ledger().Root(state.FlatCommitter{}))
		})
	}
}

func TestExecuteDeterministic(t *testing.T) {
	batch := &types.Batch{
		Transactions: []*types.Transaction{
			tx(addrA, addrB, 10, 2, 3),
			tx(addrB, addrC, 500, 1, 1),
			tx(addrC, addrA, 1, 0, 0),
		},
		BatchIndex: 9,
	}
	var first *types.CommitmentRecord
	for i := 0; i < 3; i++ {
		rec, err := newExecutor(t, threeAccounts(t), nil).Execute(batch)
		require.NoError(t, err)
		if first == nil {
			first = rec
			continue
		}
		require.Equal(t, first, rec)
	}
}

func TestExecuteOrderSensitive(t *testing.T) {
	t1 := tx(addrA, addrB, 10, 0, 0)
	t2 := tx(addrB, addrC, 10, 0, 0)

	r1, err := newExecutor(t, threeAccounts(t), nil).Execute(&types.Batch{Transactions: []*types.Transaction{t1, t2}})
	require.NoError(t, err)
	r2, err := newExecutor(t, threeAccounts(t), nil).Execute(&types.Batch{Transactions: []*types.Transaction{t2, t1}})
	require.NoError(t, err)

	// Same final balances, but hash order differs.
	assert.Equal(t, r1.NewStateRoot, r2.NewStateRoot)
	assert.NotEqual(t, r1.TransactionHashes, r2.TransactionHashes)
	assert.Equal(t, r1.TransactionHashes[0], r2.TransactionHashes[1])

	// Order of the ledger itself changes the roots.
	l, err := state.NewLedger(
		types.NewAccount(addrC, uint256.NewInt(1000)),
		types.NewAccount(addrB, uint256.NewInt(1000)),
		types.NewAccount(addrA, uint256.NewInt(1000)),
	)
	require.NoError(t, err)
	r3, err := newExecutor(t, l, nil).Execute(&types.Batch{Transactions: []*types.Transaction{t1, t2}})
	require.NoError(t, err)
	assert.NotEqual(t, r1.OldStateRoot, r3.OldStateRoot)
	assert.NotEqual(t, r1.NewStateRoot, r3.NewStateRoot)
}

func TestExecuteConservation(t *testing.T) {
	e := newExecutor(t, threeAccounts(t), nil)
	_, err := e.Execute(&types.Batch{Transactions: []*types.Transaction{
		tx(addrA, addrB, 100, 3, 7),
		tx(addrB, addrC, 250, 2, 2),
		tx(addrC, addrC, 5, 1, 1),
	}})
	require.NoError(t, err)

	total := new(uint256.Int)
	for _, acc := range e.Ledger().Accounts() {
		total.Add(total, acc.Balance)
	}
	fees := uint64(3*7 + 2*2 + 1*1)
	assert.Equal(t, uint64(3000)-fees, total.Uint64())
}

func TestExecuteHashesIndependentOfOutcome(t *testing.T) {
	txs := []*types.Transaction{
		tx(addrA, addrB, 1, 0, 0),
		tx(addrA, types.HexToAddress("0xdead"), 1, 0, 0),
		tx(addrB, addrA, 2000, 0, 0),
	}
	want := make([]types.Hash, len(txs))
	for i, x := range txs {
		want[i] = x.Hash()
	}

	rec, err := newExecutor(t, threeAccounts(t), func(c *Config) { c.Policy = PolicySkip }).
		Execute(&types.Batch{Transactions: txs})
	require.NoError(t, err)
	assert.Equal(t, want, rec.TransactionHashes)
	assert.Equal(t, uint64(3), rec.TransactionCount)
}

func TestExecuteSkipPolicy(t *testing.T) {
	e := newExecutor(t, threeAccounts(t), func(c *Config) { c.Policy = PolicySkip })
	rec, err := e.Execute(&types.Batch{Transactions: []*types.Transaction{
		tx(addrA, addrB, 100, 0, 0),
		tx(addrA, types.HexToAddress("0xdead"), 1, 0, 0),
		tx(addrB, addrC, 5000, 0, 0),
		tx(addrC, addrA, 50, 1, 1),
	}})
	require.NoError(t, err)
	require.Len(t, rec.Failures, 2)
	assert.Equal(t, types.TxFailure{Index: 1, Kind: "AccountNotFound", Reason: rec.Failures[0].Reason}, rec.Failures[0])
	assert.Equal(t, uint64(2), rec.Failures[1].Index)
	assert.Equal(t, "InsufficientBalance", rec.Failures[1].Kind)
	assert.Contains(t, rec.Failures[1].Reason, "insufficient balance")

	post := e.Ledger()
	assert.Equal(t, uint64(950), post.Get(addrA).Balance.Uint64())
	assert.Equal(t, uint64(1), post.Get(addrA).Nonce)
	assert.Equal(t, uint64(1100), post.Get(addrB).Balance.Uint64())
	assert.Zero(t, post.Get(addrB).Nonce)
	assert.Equal(t, uint64(949), post.Get(addrC).Balance.Uint64())
	assert.Equal(t, StateDone, e.State())
}

func TestExecuteSkipPolicyAllFail(t *testing.T) {
	genesis := threeAccounts(t)
	rec, err := newExecutor(t, genesis, func(c *Config) { c.Policy = PolicySkip }).
		Execute(&types.Batch{Transactions: []*types.Transaction{tx(addrA, addrB, 5000, 0, 0)}})
	require.NoError(t, err)
	assert.Equal(t, rec.OldStateRoot, rec.NewStateRoot)
	assert.Len(t, rec.Failures, 1)
}

func TestExecuteEmptyBatch(t *testing.T) {
	rec, err := newExecutor(t, seedLedger(t), nil).Execute(&types.Batch{BatchIndex: 4})
	require.NoError(t, err)
	assert.Equal(t, rec.OldStateRoot, rec.NewStateRoot)
	assert.Zero(t, rec.TransactionCount)
	assert.Empty(t, rec.TransactionHashes)
}

func TestExecuteNonceCheck(t *testing.T) {
	txs := []*types.Transaction{
		{From: addrA, To: addrB, Value: uint256.NewInt(1), Nonce: 0},
		{From: addrA, To: addrB, Value: uint256.NewInt(1), Nonce: 0},
	}
	_, err := newExecutor(t, threeAccounts(t), nil).Execute(&types.Batch{Transactions: txs})
	require.NoError(t, err, "replay is accepted without the nonce check")

	_, err = newExecutor(t, threeAccounts(t), func(c *Config) { c.CheckNonce = true }).
		Execute(&types.Batch{Transactions: txs})
	require.ErrorIs(t, err, core.ErrNonceMismatch)
	var txErr *TxError
	require.ErrorAs(t, err, &txErr)
	assert.Equal(t, 1, txErr.Index)
}

func TestExecutePriorRoot(t *testing.T) {
	genesis := seedLedger(t)
	root := genesis.Root(state.FlatCommitter{})
	wrong := types.HexToHash("0x01")
	self := []*types.Transaction{tx(seedAddr, seedAddr, 0, 1, 1)}

	// Advisory by default.
	_, err := newExecutor(t, genesis, nil).Execute(&types.Batch{Transactions: self, OldStateRoot: wrong})
	require.NoError(t, err)

	verify := func(c *Config) { c.VerifyPriorRoot = true }
	e := newExecutor(t, genesis, verify)
	_, err = e.Execute(&types.Batch{Transactions: self, OldStateRoot: wrong})
	require.ErrorIs(t, err, ErrPriorRootMismatch)
	assert.Equal(t, StateAborted, e.State())

	_, err = newExecutor(t, genesis, verify).Execute(&types.Batch{Transactions: self, OldStateRoot: root})
	require.NoError(t, err)

	// A zero claim is treated as absent.
	_, err = newExecutor(t, genesis, verify).Execute(&types.Batch{Transactions: self})
	require.NoError(t, err)
}

func TestExecuteMaxTransactions(t *testing.T) {
	self := tx(seedAddr, seedAddr, 0, 0, 0)
	e := newExecutor(t, seedLedger(t), func(c *Config) { c.MaxTransactions = 2 })
	_, err := e.Execute(&types.Batch{Transactions: []*types.Transaction{self, self, self}})
	require.ErrorIs(t, err, ErrBatchTooLarge)

	_, err = newExecutor(t, seedLedger(t), func(c *Config) { c.MaxTransactions = 2 }).
		Execute(&types.Batch{Transactions: []*types.Transaction{self, self}})
	require.NoError(t, err)
}

func TestExecuteMerkleCommitment(t *testing.T) {
	genesis := threeAccounts(t)
	e := newExecutor(t, genesis, func(c *Config) { c.Commitment = state.SchemeMerkle })
	rec, err := e.Execute(&types.Batch{Transactions: []*types.Transaction{tx(addrA, addrB, 1, 0, 0)}})
	require.NoError(t, err)
	assert.Equal(t, genesis.Root(state.MerkleCommitter{}), rec.OldStateRoot)
	assert.NotEqual(t, genesis.Root(state.FlatCommitter{}), rec.OldStateRoot)
	assert.Equal(t, e.Ledger().Root(state.MerkleCommitter{}), rec.NewStateRoot)
}

func TestExecutorSingleUse(t *testing.T) {
	e := newExecutor(t, seedLedger(t), nil)
	assert.Equal(t, StateInitialized, e.State())
	assert.Equal(t, -1, e.Index())

	_, err := e.Execute(&types.Batch{})
	require.NoError(t, err)
	_, err = e.Execute(&types.Batch{})
	require.ErrorIs(t, err, ErrAlreadyExecuted)
}

func TestExecuteInvalidInput(t *testing.T) {
	_, err := newExecutor(t, seedLedger(t), nil).Execute(nil)
	require.ErrorIs(t, err, ErrNilBatch)

	_, err = newExecutor(t, seedLedger(t), nil).Execute(&types.Batch{Transactions: []*types.Transaction{nil}})
	require.ErrorIs(t, err, ErrNilTransaction)

	_, err = NewExecutor(nil, DefaultConfig(), nil)
	require.ErrorIs(t, err, ErrNilGenesis)

	cfg := DefaultConfig()
	cfg.Policy = "retry"
	_, err = NewExecutor(seedLedger(t), cfg, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
}

func TestExecuteLogs(t *testing.T) {
	obs, logs := observer.New(zapcore.DebugLevel)
	e, err := NewExecutor(threeAccounts(t), Config{Policy: PolicySkip}, log.NewWithCore(obs))
	require.NoError(t, err)

	_, err = e.Execute(&types.Batch{
		Transactions: []*types.Transaction{tx(addrA, addrB, 1, 0, 0), tx(addrA, addrB, 5000, 0, 0)},
		BatchIndex:   3,
	})
	require.NoError(t, err)

	skipped := logs.FilterMessage("Skipped transaction").All()
	require.Len(t, skipped, 1)
	fields := skipped[0].ContextMap()
	assert.Equal(t, "executor", fields["module"])
	assert.Equal(t, uint64(3), fields["batch"])
	assert.Equal(t, int64(1), fields["index"])
	assert.Equal(t, "InsufficientBalance", fields["kind"])

	done := logs.FilterMessage("Batch executed").All()
	require.Len(t, done, 1)
	assert.Equal(t, zapcore.InfoLevel, done[0].Level)
}

func TestExecutorDefaultLogger(t *testing.T) {
	obs, logs := observer.New(zapcore.InfoLevel)
	prev := log.Default()
	log.SetDefault(log.NewWithCore(obs))
	defer log.SetDefault(prev)

	e, err := NewExecutor(seedLedger(t), DefaultConfig(), nil)
	require.NoError(t, err)
	_, err = e.Execute(&types.Batch{})
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("Batch executed").Len())
}

func TestStateString(t *testing.T) {
	assert.Equal(t, "executing", StateExecuting.String())
	assert.Equal(t, "aborted", StateAborted.String())
	assert.Equal(t, "state(42)", State(42).String())
}

func TestBuildRecordCopies(t *testing.T) {
	hashes := []types.Hash{{1}, {2}}
	failures := []types.TxFailure{{Index: 1, Kind: "AccountNotFound"}}
	rec := BuildRecord(types.Hash{0xa}, types.Hash{0xb}, 5, hashes, failures)
	hashes[0] = types.Hash{9}
	failures[0].Index = 7

	assert.Equal(t, uint64(2), rec.TransactionCount)
	assert.Equal(t, types.Hash{1}, rec.TransactionHashes[0])
	assert.Equal(t, uint64(1), rec.Failures[0].Index)

	empty := BuildRecord(types.Hash{}, types.Hash{}, 0, nil, nil)
	assert.NotNil(t, empty.TransactionHashes)
	assert.Nil(t, empty.Failures)
}
