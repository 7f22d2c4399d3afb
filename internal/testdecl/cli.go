package testdecl

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/veriflab/matchengine/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging configures logging to both console and file.
// If logFile is empty, a timestamped filename is generated.
func SetupLogging(logFile string) error {
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if logFile == "" {
		timestamp := time.Now().Format("20060102_150405")
		logFile = "test_log_" + timestamp + ".log"
	}

	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return fmt.Errorf("failed to create log file: %w", err)
	}

	multiWriter := io.MultiWriter(os.Stdout, file)
	log.SetOutput(multiWriter)
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	logger.Get().Info(context.Background(), "logging to file", logger.String("logFile", logFile))
	return nil
}

// ShowHelp prints usage information for the declaration test tool.
func ShowHelp() {
	os.Stdout.WriteString(`VerifLab Declaration Test Tool
==============================

A concurrent tool for exercising the sponsorship matching engine with a
synthetic roster and noisy declarations.

Usage:
  go run cmd/test-declarations/main.go [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9090")
  -event string
        Event id for the synthetic roster (default "evt-loadtest")
  -roster int
        Number of official participants to generate (default 500)
  -declarations int
        Number of declarations to generate and submit (default 10000)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Log file for test output (default: test_log_TIMESTAMP.log)
  -verbose
        Enable verbose logging
  -help
        Show this help message

Examples:
  # Test with default settings
  go run cmd/test-declarations/main.go

  # Heavier run against a remote instance
  go run cmd/test-declarations/main.go -declarations 50000 -workers 16 -url http://staging:9090
`)
}
