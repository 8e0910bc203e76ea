// Package cli provides the command-line interface for filevault.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"filevault/internal/log"
)

// Version is set by main.go
var Version = "dev"

var verbose bool

// rootCmd is the base command when called without subcommands
var rootCmd = &cobra.Command{
	Use:   "filevault",
	Short: "Password-based file encryption tool",
	Long: `filevault encrypts and decrypts files with a password:
  - PBKDF2-HMAC-SHA256 for password-based key derivation (100,000 iterations)
  - AES-256-CBC with PKCS#7 padding for the default container format
  - Optional authenticated mode using AES-256-GCM streaming encryption
  - Atomic output publishing: a container appears only after verification`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.EnableDebugLogging()
		}
	},
}

// Global reporter for signal handling
var globalReporter *Reporter

// Execute runs the CLI application and returns the process exit code.
func Execute(version string) int {
	Version = version
	rootCmd.Version = version

	// Set up signal handling for graceful cancellation
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		if globalReporter != nil {
			globalReporter.Cancel()
			fmt.Fprintln(os.Stderr, "\nCancelling operation...")
		} else {
			os.Exit(1)
		}
	}()

	if err := rootCmd.Execute(); err != nil {
		return 1
	}
	return 0
}

func init() {
	// Disable default completion command
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging to stderr")
}
