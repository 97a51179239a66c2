// Package config loads the evaluator's YAML configuration: executor
// settings, logging and the genesis ledger snapshot.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/holiman/uint256"
	"gopkg.in/yaml.v3"

	"github.com/eth2030/zkstf/core/state"
	"github.com/eth2030/zkstf/core/types"
	"github.com/eth2030/zkstf/log"
	"github.com/eth2030/zkstf/zkvm"
)

// Configuration errors.
var (
	ErrConfigFileNotFound = errors.New("config file not found")
	ErrInvalidConfig      = errors.New("invalid configuration")
)

// DefaultGenesisBalance is the balance of the single seed account used when
// no genesis is configured.
const DefaultGenesisBalance = 1000000

// File is the on-disk configuration.
type File struct {
	Policy          string `yaml:"policy"`
	CheckNonce      bool   `yaml:"check_nonce"`
	VerifyPriorRoot bool   `yaml:"verify_prior_root"`
	MaxTransactions int    `yaml:"max_transactions"`
	Commitment      string `yaml:"commitment"`
	Codec           string `yaml:"codec"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Genesis is the prior ledger snapshot, in commitment order.
	Genesis []GenesisAccount `yaml:"genesis"`
}

// GenesisAccount is one account of the genesis snapshot. Only address and
// balance are required.
type GenesisAccount struct {
	Address     types.Address `yaml:"address"`
	Balance     Balance       `yaml:"balance"`
	Nonce       uint64        `yaml:"nonce"`
	CodeHash    types.Hash    `yaml:"code_hash"`
	StorageRoot types.Hash    `yaml:"storage_root"`
}

// Balance is a 256-bit amount written either as a decimal integer or as
// 0x-prefixed hex.
type Balance struct {
	v   uint256.Int
	set bool
}

// NewBalance returns a Balance holding v.
func NewBalance(v uint64) Balance {
	return Balance{v: *uint256.NewInt(v), set: true}
}

// Uint256 returns a copy of the amount.
func (b Balance) Uint256() *uint256.Int {
	return new(uint256.Int).Set(&b.v)
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (b *Balance) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: balance must be a scalar", node.Line)
	}
	v, err := parseBalance(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	b.v, b.set = *v, true
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (b Balance) MarshalYAML() (any, error) {
	return b.v.Dec(), nil
}

func parseBalance(s string) (*uint256.Int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err := uint256.FromHex("0x" + s[2:])
		if err != nil {
			return nil, fmt.Errorf("balance %q: %w", s, err)
		}
		return v, nil
	}
	v, err := uint256.FromDecimal(s)
	if err != nil {
		return nil, fmt.Errorf("balance %q: %w", s, err)
	}
	return v, nil
}

// Default returns the configuration used when no file is given.
func Default() *File {
	def := zkvm.DefaultConfig()
	return &File{
		Policy:     string(def.Policy),
		Commitment: def.Commitment,
		Codec:      string(def.Codec),
		LogLevel:   "info",
		LogFormat:  string(log.FormatJSON),
	}
}

// DefaultGenesis returns the seed snapshot: one account at the zero
// address holding DefaultGenesisBalance.
func DefaultGenesis() []GenesisAccount {
	return []GenesisAccount{{Balance: NewBalance(DefaultGenesisBalance)}}
}

// Load reads the YAML configuration at path. An empty path returns
// Default(). Fields missing from the file keep their default values.
func Load(path string) (*File, error) {
	if path == "" {
		return Default(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigFileNotFound, path)
		}
		return nil, err
	}
	defer f.Close()
	cfg, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML configuration from r on top of Default(). Unknown
// keys are rejected.
func Parse(r io.Reader) (*File, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every section of the configuration.
func (f *File) Validate() error {
	if _, err := f.ExecutorConfig(); err != nil {
		return err
	}
	if _, err := log.ParseLevel(f.LogLevel); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := log.ParseFormat(f.LogFormat); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := f.GenesisLedger(); err != nil {
		return err
	}
	return nil
}

// ExecutorConfig returns the executor settings of the file.
func (f *File) ExecutorConfig() (zkvm.Config, error) {
	policy, err := zkvm.ParsePolicy(f.Policy)
	if err != nil {
		return zkvm.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	codec, err := types.ParseCodec(f.Codec)
	if err != nil {
		return zkvm.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg := zkvm.Config{
		Policy:          policy,
		CheckNonce:      f.CheckNonce,
		VerifyPriorRoot: f.VerifyPriorRoot,
		MaxTransactions: f.MaxTransactions,
		Commitment:      f.Commitment,
		Codec:           codec,
	}
	if err := cfg.Validate(); err != nil {
		return zkvm.Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return cfg, nil
}

// GenesisLedger builds the genesis snapshot. Without configured accounts
// the DefaultGenesis seed is used.
func (f *File) GenesisLedger() (*state.Ledger, error) {
	accounts := f.Genesis
	if len(accounts) == 0 {
		accounts = DefaultGenesis()
	}
	l, _ := state.NewLedger()
	for i, ga := range accounts {
		if !ga.Balance.set {
			return nil, fmt.Errorf("%w: genesis account %d (%s): missing balance", ErrInvalidConfig, i, ga.Address)
		}
		acc := types.NewAccount(ga.Address, ga.Balance.Uint256())
		acc.Nonce = ga.Nonce
		acc.CodeHash = ga.CodeHash
		acc.StorageRoot = ga.StorageRoot
		if err := l.Insert(acc); err != nil {
			return nil, fmt.Errorf("%w: genesis account %d: %v", ErrInvalidConfig, i, err)
		}
	}
	return l, nil
}

// Logger builds the logger described by the file.
func (f *File) Logger() (*log.Logger, error) {
	level, err := log.ParseLevel(f.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	format, err := log.ParseFormat(f.LogFormat)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return log.New(level, format), nil
}
