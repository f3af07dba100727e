package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/clockworklabs/SpacetimeDB/crates/msgpack-go/pkg/msgpack"
)

func main() {
	os.Exit(dumpMain(os.Args[1:], os.Stdin, os.Stdout, os.Stderr))
}

// dumpMain runs the command and returns its exit code, so deferred cleanup
// runs before the process exits.
func dumpMain(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("msgpackdump", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		inFile  = fs.String("in", "", "Input file (default stdin)")
		hexIn   = fs.Bool("hex", false, "Input is hex text")
		verbose = fs.Bool("v", false, "Log codec debug events to stderr")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg := msgpack.DefaultConfig()
	if *verbose {
		logger, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer logger.Sync()
		cfg.Logger = logger
	}

	in := stdin
	if *inFile != "" {
		f, err := os.Open(*inFile)
		if err != nil {
			fmt.Fprintf(stderr, "Error: %v\n", err)
			return 1
		}
		defer f.Close()
		in = f
	}

	opts := options{
		hex:    *hexIn,
		color:  isTerminal(stdout),
		config: cfg,
	}
	if err := run(in, stdout, opts); err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
