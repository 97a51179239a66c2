package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/eth2030/zkstf/core/state"
	"github.com/eth2030/zkstf/core/types"
	"github.com/eth2030/zkstf/log"
	"github.com/eth2030/zkstf/metrics"
	"github.com/eth2030/zkstf/zkvm"
)

func newRootCmd(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	var g globalFlags
	root := &cobra.Command{
		Use:           "zkstf",
		Short:         "Deterministic batch state-transition evaluator",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	g.register(root.PersistentFlags())

	root.AddCommand(
		newRunCmd(&g),
		newStateRootCmd(&g),
		newTxHashCmd(&g),
		newVersionCmd(),
	)
	return root
}

func newRunCmd(g *globalFlags) *cobra.Command {
	var rf runFlags
	c := &cobra.Command{
		Use:   "run",
		Short: "Execute a batch and write its commitment record",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			rf.apply(c.Flags(), cfg)
			execCfg, err := cfg.ExecutorConfig()
			if err != nil {
				return err
			}
			genesis, err := cfg.GenesisLedger()
			if err != nil {
				return err
			}
			logger, err := cfg.Logger()
			if err != nil {
				return err
			}
			defer logger.Sync() //nolint:errcheck
			log.SetDefault(logger)
			clog := log.Default().Module("cli")

			in, closeIn, err := openInput(c, rf.input)
			if err != nil {
				return err
			}
			defer closeIn()

			// Buffer the record so a failed run leaves no partial output file.
			var out bytes.Buffer
			host := zkvm.NewStreamHost(in, &out, rf.maxInput)
			res, err := zkvm.RunGuest(host, genesis, execCfg, logger)
			if rf.metricsOut != "" {
				if merr := metrics.WriteTextfile(rf.metricsOut); merr != nil {
					clog.Warn("Failed to write metrics", "path", rf.metricsOut, "err", merr)
				}
			}
			if err != nil {
				return err
			}
			if execCfg.Codec == types.CodecJSON {
				out.WriteByte('\n')
			}
			if err := writeOutput(c, rf.output, out.Bytes()); err != nil {
				return err
			}
			if rf.stateOut != "" {
				if err := writeState(rf.stateOut, res.Ledger); err != nil {
					return err
				}
			}
			clog.Info("Record written",
				"batch", res.Record.BatchIndex,
				"txs", res.Record.TransactionCount,
				"new_root", res.Record.NewStateRoot)
			return nil
		},
	}
	rf.register(c.Flags())
	return c
}

func newStateRootCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "root",
		Short: "Print the state root of the configured genesis ledger",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			genesis, err := cfg.GenesisLedger()
			if err != nil {
				return err
			}
			committer, err := state.NewCommitter(cfg.Commitment)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.OutOrStdout(), genesis.Root(committer).Hex())
			return nil
		},
	}
}

func newTxHashCmd(g *globalFlags) *cobra.Command {
	var input string
	c := &cobra.Command{
		Use:   "txhash",
		Short: "Print the hash of every transaction in a batch",
		Args:  cobra.NoArgs,
		RunE: func(c *cobra.Command, _ []string) error {
			cfg, err := g.load()
			if err != nil {
				return err
			}
			codec, err := types.ParseCodec(cfg.Codec)
			if err != nil {
				return err
			}
			in, closeIn, err := openInput(c, input)
			if err != nil {
				return err
			}
			defer closeIn()
			data, err := io.ReadAll(in)
			if err != nil {
				return err
			}
			batch, err := codec.DecodeBatch(data)
			if err != nil {
				return err
			}
			for _, h := range batch.TxHashes() {
				fmt.Fprintln(c.OutOrStdout(), h.Hex())
			}
			return nil
		},
	}
	c.Flags().StringVarP(&input, "input", "i", "-", "batch input file, - for stdin")
	return c
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(c *cobra.Command, _ []string) {
			fmt.Fprintf(c.OutOrStdout(), "zkstf %s (commit %s)\n", version, commit)
		},
	}
}

func openInput(c *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "" || path == "-" {
		return c.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

// writeState dumps the post-state ledger as a JSON array of accounts.
func writeState(path string, l *state.Ledger) error {
	data, err := json.MarshalIndent(l.Accounts(), "", "  ")
	if err != nil {
		return fmt.Errorf("encode post-state: %w", err)
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func writeOutput(c *cobra.Command, path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := c.OutOrStdout().Write(data)
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
