package zkvm

import (
	"errors"
	"fmt"

	"github.com/eth2030/zkstf/core/state"
	"github.com/eth2030/zkstf/core/types"
)

// Policy decides what happens when a transaction in a batch fails.
type Policy string

const (
	// PolicyAbort stops at the first failing transaction. No record is
	// produced and the executor's ledger is left as it was.
	PolicyAbort Policy = "abort"
	// PolicySkip leaves failing transactions unapplied, records them in the
	// commitment record and continues with the rest of the batch.
	PolicySkip Policy = "skip"
)

// ParsePolicy validates a policy name. The empty string selects PolicyAbort.
func ParsePolicy(name string) (Policy, error) {
	switch p := Policy(name); p {
	case "":
		return PolicyAbort, nil
	case PolicyAbort, PolicySkip:
		return p, nil
	default:
		return "", fmt.Errorf("%w: policy %q", ErrInvalidConfig, name)
	}
}

// Config holds configuration for the batch executor.
type Config struct {
	// Policy is the failure policy. Defaults to PolicyAbort.
	Policy Policy

	// CheckNonce rejects transactions whose nonce is not the sender's
	// current nonce.
	CheckNonce bool

	// VerifyPriorRoot fails the batch when its claimed old state root is
	// set and differs from the computed one. Otherwise the claim is
	// advisory and ignored.
	VerifyPriorRoot bool

	// MaxTransactions bounds the batch length. Zero means unlimited.
	MaxTransactions int

	// Commitment names the state commitment scheme, see state.NewCommitter.
	Commitment string

	// Codec is the wire format of guest input and output.
	Codec types.Codec
}

// DefaultConfig returns the default executor configuration.
func DefaultConfig() Config {
	return Config{
		Policy:     PolicyAbort,
		Commitment: state.SchemeFlat,
		Codec:      types.CodecJSON,
	}
}

// Validate checks the configuration and returns the first problem found.
func (c Config) Validate() error {
	if _, err := ParsePolicy(string(c.Policy)); err != nil {
		return err
	}
	if c.MaxTransactions < 0 {
		return fmt.Errorf("%w: negative max transactions %d", ErrInvalidConfig, c.MaxTransactions)
	}
	if _, err := state.NewCommitter(c.Commitment); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	if _, err := types.ParseCodec(string(c.Codec)); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}
	return nil
}
