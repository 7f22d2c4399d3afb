package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/veriflab/matchengine/internal/testdecl"
)

// Default configuration constants.
const (
	defaultRosterSize      = 500
	defaultNumDeclarations = 10000
	defaultWorkers         = 2 // multiplier for runtime.NumCPU()
	defaultTimeout         = 30 * time.Second
	defaultTestTimeout     = 10 * time.Minute
)

func main() {
	var (
		baseURL         = flag.String("url", "http://localhost:9090", "Base URL of the service")
		eventID         = flag.String("event", "evt-loadtest", "Event id for the synthetic roster")
		rosterSize      = flag.Int("roster", defaultRosterSize, "Number of official participants to generate")
		numDeclarations = flag.Int("declarations", defaultNumDeclarations, "Number of declarations to generate and submit")
		workers         = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout         = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile         = flag.String("log", "", "Log file for test output (default: test_log_TIMESTAMP.log)")
		verbose         = flag.Bool("verbose", false, "Enable verbose logging")
		help            = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		testdecl.ShowHelp()
		return
	}

	if err := testdecl.SetupLogging(*logFile); err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	defer cancel()

	config := &testdecl.Config{
		BaseURL:         *baseURL,
		EventID:         *eventID,
		RosterSize:      *rosterSize,
		NumDeclarations: *numDeclarations,
		Workers:         *workers,
		Timeout:         *timeout,
		LogFile:         *logFile,
		Verbose:         *verbose,
	}

	if err := testdecl.Run(ctx, config); err != nil {
		os.Stderr.WriteString("Test failed: " + err.Error() + "\n")
		return
	}
}
