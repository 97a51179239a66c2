// Command zkstf evaluates a batch of balance transfers against a genesis
// ledger and writes the resulting commitment record.
//
// Usage:
//
//	zkstf run     [--input FILE] [--output FILE]   execute a batch
//	              [--metrics.out FILE]             and dump Prometheus metrics
//	              [--state.out FILE]               and the post-state ledger
//	zkstf root                                     print the genesis state root
//	zkstf txhash  [--input FILE]                   print transaction hashes
//	zkstf version                                  print version info
//
// Global flags:
//
//	--config       YAML configuration file (executor settings and genesis)
//	--codec        Wire codec: json, rlp (default: json)
//	--policy       Failure policy: abort, skip (default: abort)
//	--commitment   State commitment: flat, merkle (default: flat)
//	--log.level    Log level: debug, info, warn, error (default: info)
//	--log.format   Log format: json, text, color (default: json)
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/eth2030/zkstf/core"
	"github.com/eth2030/zkstf/zkvm"
)

// Build-time version info, overridable with ldflags:
//
//	go build -ldflags "-X main.version=v0.2.0 -X main.commit=abc1234"
var (
	version = "v0.1.0-dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// run is the actual entry point, returning an exit code. It takes the
// arguments (without the program name) and standard streams so it can be
// tested in isolation.
func run(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cmd := newRootCmd(stdin, stdout, stderr)
	cmd.SetArgs(args)
	if err := cmd.Execute(); err != nil {
		var txErr *zkvm.TxError
		if errors.As(err, &txErr) {
			fmt.Fprintf(stderr, "batch rejected: %s at transaction %d: %v\n",
				core.Kind(txErr.Err), txErr.Index, txErr.Err)
		} else {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 1
	}
	return 0
}
