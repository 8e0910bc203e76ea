package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"filevault/internal/errors"
	"filevault/internal/vault"
)

func init() {
	decryptCmd.SilenceErrors = true
	decryptCmd.SilenceUsage = true
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt .enc containers",
	Long: `Decrypt one or more password-protected containers.

A wrong password is reported as an authentication failure and never produces
an output file.

Examples:
  # Decrypt interactively (prompts for password)
  filevault decrypt -i secret.txt.enc

  # Decrypt to an explicit output path
  filevault decrypt -i secret.txt.enc -o recovered.txt

  # Decrypt a container made with --authenticated
  filevault decrypt -i data.db.enc --authenticated

  # Decrypt and remove the container
  filevault decrypt -i secret.txt.enc --delete`,
	RunE: runDecrypt,
}

// Decrypt flags
var (
	decInput         []string
	decOutput        string
	decPassword      string
	decPasswordStdin bool
	decDelete        bool
	decAuth          bool
	decJobs          int
	decQuiet         bool
	decYes           bool
)

func init() {
	rootCmd.AddCommand(decryptCmd)

	decryptCmd.Flags().StringArrayVarP(&decInput, "input", "i", nil, "Container(s) to decrypt (can be specified multiple times)")
	decryptCmd.Flags().StringVarP(&decOutput, "output", "o", "", "Output file path (single input only)")

	decryptCmd.Flags().StringVarP(&decPassword, "password", "p", "", "Decryption password")
	decryptCmd.Flags().BoolVarP(&decPasswordStdin, "password-stdin", "P", false, "Read password from stdin")

	decryptCmd.Flags().BoolVar(&decDelete, "delete", false, "Delete containers after successful decryption")
	decryptCmd.Flags().BoolVar(&decAuth, "authenticated", false, "Container uses authenticated streaming encryption")
	decryptCmd.Flags().IntVar(&decJobs, "jobs", 1, "Number of containers to decrypt in parallel")

	decryptCmd.Flags().BoolVarP(&decQuiet, "quiet", "q", false, "Suppress progress output")
	decryptCmd.Flags().BoolVarP(&decYes, "yes", "y", false, "Overwrite output files without prompting")

	_ = decryptCmd.MarkFlagRequired("input")
}

// decryptOutputPath derives the plaintext path for a container. The .enc
// suffix is stripped when present; otherwise .dec is appended so the
// container is never overwritten.
func decryptOutputPath(input string) string {
	if strings.HasSuffix(input, ".enc") {
		return strings.TrimSuffix(input, ".enc")
	}
	return input + ".dec"
}

func runDecrypt(cmd *cobra.Command, args []string) error {
	inputs, err := expandInputs(decInput)
	if err != nil {
		return err
	}

	if decOutput != "" && len(inputs) > 1 {
		return fmt.Errorf("-o cannot be used with multiple input files")
	}

	outputs := make([]string, len(inputs))
	for i, in := range inputs {
		if decOutput != "" {
			outputs[i] = decOutput
		} else {
			outputs[i] = decryptOutputPath(in)
		}
		if !decYes {
			if _, err := os.Stat(outputs[i]); err == nil {
				if !confirmOverwrite(outputs[i]) {
					return fmt.Errorf("operation cancelled")
				}
			}
		}
	}

	password, err := resolvePassword(decPassword, decPasswordStdin, false)
	if err != nil {
		return err
	}

	reporter := NewReporter(decQuiet || len(inputs) > 1)
	globalReporter = reporter

	jobs := max(decJobs, 1)
	var g errgroup.Group
	g.SetLimit(jobs)

	for i := range inputs {
		input, output := inputs[i], outputs[i]
		g.Go(func() error {
			err := vault.Decrypt(&vault.DecryptRequest{
				InputFile:     input,
				OutputFile:    output,
				Password:      password,
				DeleteSource:  decDelete,
				Overwrite:     true, // overwrite already confirmed above
				Authenticated: decAuth,
				Reporter:      reporter,
			})
			if err != nil {
				if errors.IsAuthFailed(err) {
					return fmt.Errorf("%s: wrong password or corrupted container", input)
				}
				return fmt.Errorf("%s: %w", input, err)
			}
			if !decQuiet && len(inputs) > 1 {
				fmt.Fprintf(os.Stderr, "Decrypted %s\n", output)
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
		reporter.PrintSuccess("Decryption completed successfully: %s", outputs[0])
	} else if !decQuiet {
		fmt.Fprintf(os.Stderr, "Decrypted %d containers\n", len(inputs))
	}
	return nil
}
