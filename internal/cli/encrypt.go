package cli

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/Picocrypt/zxcvbn-go"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"filevault/internal/vault"
)

func init() {
	// Silence Cobra's default error/usage printing - we handle it ourselves
	encryptCmd.SilenceErrors = true
	encryptCmd.SilenceUsage = true
}

var encryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt files into .enc containers",
	Long: `Encrypt one or more files into password-protected containers.

Each input file produces its own container. If no password is provided, you
will be prompted to enter one interactively (with confirmation). The password
is hidden while typing.

Examples:
  # Encrypt interactively (prompts for password)
  filevault encrypt -i secret.txt

  # Encrypt with password on command line (visible in shell history)
  filevault encrypt -i secret.txt -o secret.enc -p "mypassword"

  # Encrypt multiple files in parallel
  filevault encrypt -i file1.txt -i file2.txt --jobs 2

  # Encrypt with the authenticated streaming format
  filevault encrypt -i data.db --authenticated

  # Encrypt and remove the plaintext source
  filevault encrypt -i secret.txt --delete

  # Read password from stdin (for scripts)
  echo "mypassword" | filevault encrypt -i secret.txt -P`,
	RunE: runEncrypt,
}

// Encrypt flags
var (
	encInput         []string
	encOutput        string
	encPassword      string
	encPasswordStdin bool
	encDelete        bool
	encAuth          bool
	encJobs          int
	encQuiet         bool
	encYes           bool
)

func init() {
	rootCmd.AddCommand(encryptCmd)

	// Input/Output
	encryptCmd.Flags().StringArrayVarP(&encInput, "input", "i", nil, "Input file(s) to encrypt (can be specified multiple times)")
	encryptCmd.Flags().StringVarP(&encOutput, "output", "o", "", "Output container path (single input only)")

	// Credentials
	encryptCmd.Flags().StringVarP(&encPassword, "password", "p", "", "Encryption password")
	encryptCmd.Flags().BoolVarP(&encPasswordStdin, "password-stdin", "P", false, "Read password from stdin")

	// Options
	encryptCmd.Flags().BoolVar(&encDelete, "delete", false, "Delete source files after successful encryption")
	encryptCmd.Flags().BoolVar(&encAuth, "authenticated", false, "Use authenticated streaming encryption (detects tampering)")
	encryptCmd.Flags().IntVar(&encJobs, "jobs", 1, "Number of files to encrypt in parallel")

	// Other
	encryptCmd.Flags().BoolVarP(&encQuiet, "quiet", "q", false, "Suppress progress output")
	encryptCmd.Flags().BoolVarP(&encYes, "yes", "y", false, "Overwrite output files without prompting")

	_ = encryptCmd.MarkFlagRequired("input")
}

// encryptOutputPath derives the container path for an input file.
func encryptOutputPath(input string) string {
	return input + ".enc"
}

func runEncrypt(cmd *cobra.Command, args []string) error {
	inputs, err := expandInputs(encInput)
	if err != nil {
		return err
	}

	if encOutput != "" && len(inputs) > 1 {
		return fmt.Errorf("-o cannot be used with multiple input files")
	}

	// Resolve output paths up front so conflicts fail before any work
	outputs := make([]string, len(inputs))
	for i, in := range inputs {
		if encOutput != "" {
			outputs[i] = encOutput
		} else {
			outputs[i] = encryptOutputPath(in)
		}
		if !encYes {
			if _, err := os.Stat(outputs[i]); err == nil {
				if !confirmOverwrite(outputs[i]) {
					return fmt.Errorf("operation cancelled")
				}
			}
		}
	}

	password, err := resolvePassword(encPassword, encPasswordStdin, true)
	if err != nil {
		return err
	}
	warnWeakPassword(password)

	reporter := NewReporter(encQuiet || len(inputs) > 1)
	globalReporter = reporter

	jobs := max(encJobs, 1)
	var g errgroup.Group
	g.SetLimit(jobs)

	for i := range inputs {
		input, output := inputs[i], outputs[i]
		g.Go(func() error {
			err := vault.Encrypt(&vault.EncryptRequest{
				InputFile:     input,
				OutputFile:    output,
				Password:      password,
				DeleteSource:  encDelete,
				Overwrite:     true, // overwrite already confirmed above
				Authenticated: encAuth,
				Reporter:      reporter,
			})
			if err != nil {
				return fmt.Errorf("%s: %w", input, err)
			}
			if !encQuiet && len(inputs) > 1 {
				fmt.Fprintf(os.Stderr, "Encrypted %s\n", output)
			}
			return nil
		})
	}

	err = g.Wait()
	reporter.Finish()
	if err != nil {
		reporter.PrintError("%v", err)
		return err
	}

	if len(inputs) == 1 {
		reporter.PrintSuccess("Encryption completed successfully: %s", outputs[0])
	} else if !encQuiet {
		fmt.Fprintf(os.Stderr, "Encrypted %d files\n", len(inputs))
	}
	return nil
}

// expandInputs resolves glob patterns and checks every input exists.
// Directories are rejected; containers hold exactly one file each.
func expandInputs(patterns []string) ([]string, error) {
	if len(patterns) == 0 {
		return nil, fmt.Errorf("at least one input file is required (-i)")
	}

	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("input file not found: %s", pattern)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("cannot access %s: %w", match, err)
			}
			if info.IsDir() {
				return nil, fmt.Errorf("%s is a directory; encrypt files individually", match)
			}
			files = append(files, match)
		}
	}
	return files, nil
}

// resolvePassword picks the password source: flag, stdin, or prompt.
func resolvePassword(flagValue string, fromStdin, confirm bool) (string, error) {
	if fromStdin {
		return ReadPasswordFromStdin()
	}
	if flagValue != "" {
		return flagValue, nil
	}
	pw, err := ReadPasswordInteractive(confirm)
	if err != nil {
		return "", fmt.Errorf("password input: %w", err)
	}
	return pw, nil
}

// warnWeakPassword prints a strength warning for low zxcvbn scores.
func warnWeakPassword(password string) {
	if encQuiet {
		return
	}
	score := zxcvbn.PasswordStrength(password, nil).Score
	if score <= 1 {
		fmt.Fprintln(os.Stderr, "Warning: this password is weak and easily guessed")
	}
}

func confirmOverwrite(path string) bool {
	fmt.Fprintf(os.Stderr, "Output file %s already exists. Overwrite? [y/N]: ", path)
	reader := bufio.NewReader(os.Stdin)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}
