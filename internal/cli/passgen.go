package cli

import (
	"fmt"

	"github.com/Picocrypt/zxcvbn-go"
	"github.com/spf13/cobra"

	"filevault/internal/util"
)

var passgenCmd = &cobra.Command{
	Use:   "passgen",
	Short: "Generate a random password",
	Long: `Generate a cryptographically secure random password.

Examples:
  # 32 characters from all character sets
  filevault passgen

  # 16 characters, letters and digits only
  filevault passgen --length 16 --symbols=false`,
	RunE: runPassgen,
}

var (
	pgLength  int
	pgUpper   bool
	pgLower   bool
	pgNumbers bool
	pgSymbols bool
)

func init() {
	rootCmd.AddCommand(passgenCmd)
	passgenCmd.SilenceErrors = true
	passgenCmd.SilenceUsage = true

	passgenCmd.Flags().IntVarP(&pgLength, "length", "l", 32, "Password length")
	passgenCmd.Flags().BoolVar(&pgUpper, "upper", true, "Include uppercase letters")
	passgenCmd.Flags().BoolVar(&pgLower, "lower", true, "Include lowercase letters")
	passgenCmd.Flags().BoolVar(&pgNumbers, "numbers", true, "Include digits")
	passgenCmd.Flags().BoolVar(&pgSymbols, "symbols", true, "Include symbols")
}

func runPassgen(cmd *cobra.Command, args []string) error {
	if pgLength <= 0 {
		return fmt.Errorf("--length must be positive")
	}

	password, err := util.GenPassword(util.PassgenOptions{
		Length:  pgLength,
		Upper:   pgUpper,
		Lower:   pgLower,
		Numbers: pgNumbers,
		Symbols: pgSymbols,
	})
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("at least one character set must be enabled")
	}

	fmt.Fprintln(cmd.OutOrStdout(), password)

	score := zxcvbn.PasswordStrength(password, nil).Score
	fmt.Fprintf(cmd.ErrOrStderr(), "Strength: %d/4\n", score)
	return nil
}
