package zkvm

import (
	"fmt"

	"github.com/eth2030/zkstf/core/state"
	"github.com/eth2030/zkstf/core/types"
	"github.com/eth2030/zkstf/log"
)

// GuestResult is what a guest run leaves behind for the host side.
type GuestResult struct {
	Record *types.CommitmentRecord
	Ledger *state.Ledger // post-state
}

// RunGuest is the guest entry point. It reads one batch from host, decodes
// it with the configured codec, executes it over genesis and commits the
// encoded record. On any error nothing is committed.
func RunGuest(host Host, genesis *state.Ledger, config Config, logger *log.Logger) (*GuestResult, error) {
	if host == nil {
		return nil, ErrNilHost
	}
	if logger == nil {
		logger = log.Default()
	}
	codec, err := types.ParseCodec(string(config.Codec))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	exec, err := NewExecutor(genesis, config, logger)
	if err != nil {
		return nil, err
	}
	logger = logger.Module("guest")

	input, err := host.Read()
	if err != nil {
		return nil, err
	}
	batch, err := codec.DecodeBatch(input)
	if err != nil {
		logger.Warn("Rejected batch input", "codec", string(codec), "bytes", len(input), "err", err)
		return nil, err
	}
	record, err := exec.Execute(batch)
	if err != nil {
		return nil, err
	}
	output, err := codec.EncodeRecord(record)
	if err != nil {
		return nil, fmt.Errorf("zkvm: encode record: %w", err)
	}
	if err := host.Commit(output); err != nil {
		return nil, err
	}
	logger.Debug("Committed record", "batch", record.BatchIndex, "bytes", len(output))
	return &GuestResult{Record: record, Ledger: exec.Ledger()}, nil
}
