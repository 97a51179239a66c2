package main

import (
	"github.com/spf13/pflag"

	"github.com/eth2030/zkstf/config"
)

// globalFlags holds flags shared by every subcommand. Flags that were set
// explicitly override the configuration file.
type globalFlags struct {
	configPath string
	codec      string
	policy     string
	commitment string
	logLevel   string
	logFormat  string

	fs *pflag.FlagSet
}

func (g *globalFlags) register(fs *pflag.FlagSet) {
	g.fs = fs
	fs.StringVar(&g.configPath, "config", "", "YAML configuration file")
	fs.StringVar(&g.codec, "codec", "json", "wire codec: json, rlp")
	fs.StringVar(&g.policy, "policy", "abort", "failure policy: abort, skip")
	fs.StringVar(&g.commitment, "commitment", "flat", "state commitment: flat, merkle")
	fs.StringVar(&g.logLevel, "log.level", "info", "log level: debug, info, warn, error")
	fs.StringVar(&g.logFormat, "log.format", "json", "log format: json, text, color")
}

// load reads the configuration file and applies explicitly set flags.
func (g *globalFlags) load() (*config.File, error) {
	cfg, err := config.Load(g.configPath)
	if err != nil {
		return nil, err
	}
	override := func(name string, dst *string, v string) {
		if g.fs.Changed(name) {
			*dst = v
		}
	}
	override("codec", &cfg.Codec, g.codec)
	override("policy", &cfg.Policy, g.policy)
	override("commitment", &cfg.Commitment, g.commitment)
	override("log.level", &cfg.LogLevel, g.logLevel)
	override("log.format", &cfg.LogFormat, g.logFormat)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runFlags are the flags of the run subcommand.
type runFlags struct {
	input           string
	output          string
	checkNonce      bool
	verifyPriorRoot bool
	maxTransactions int
	maxInput        int64
	metricsOut      string
	stateOut        string
}

func (r *runFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&r.input, "input", "i", "-", "batch input file, - for stdin")
	fs.StringVarP(&r.output, "output", "o", "-", "record output file, - for stdout")
	fs.BoolVar(&r.checkNonce, "check-nonce", false, "reject transactions whose nonce is not the sender's")
	fs.BoolVar(&r.verifyPriorRoot, "verify-prior-root", false, "reject batches whose claimed old root differs")
	fs.IntVar(&r.maxTransactions, "max-txs", 0, "maximum transactions per batch, 0 for unlimited")
	fs.Int64Var(&r.maxInput, "max-input", 64<<20, "maximum input size in bytes")
	fs.StringVar(&r.metricsOut, "metrics.out", "", "write Prometheus metrics to this file after the run")
	fs.StringVar(&r.stateOut, "state.out", "", "write the post-state ledger as JSON to this file")
}

func (r *runFlags) apply(fs *pflag.FlagSet, cfg *config.File) {
	if fs.Changed("check-nonce") {
		cfg.CheckNonce = r.checkNonce
	}
	if fs.Changed("verify-prior-root") {
		cfg.VerifyPriorRoot = r.verifyPriorRoot
	}
	if fs.Changed("max-txs") {
		cfg.MaxTransactions = r.maxTransactions
	}
}
