package cli

import (
	"fmt"
	"strings"

	"resumescan/internal/rules"

	"github.com/spf13/cobra"
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the analysis rule table",
}

var rulesShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the active rule table summary",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := getConfigFromContext(cmd.Context())
		table, err := rules.Load(cfg.Rules.File)
		if err != nil {
			return err
		}

		source := "built-in"
		if cfg.Rules.File != "" {
			source = cfg.Rules.File
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Source:  %s\n", source)
		fmt.Fprintf(out, "Summary: %s\n", table.Describe())
		fmt.Fprintf(out, "Domains: %s\n", strings.Join(table.DomainNames(), ", "))
		return nil
	},
}

var rulesValidateCmd = &cobra.Command{
	Use:   "validate <rules-file>",
	Short: "Check a rules file without loading it into a server",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := rules.LoadFile(args[0])
		if err != nil {
			return fmt.Errorf("rules file %s is invalid: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "OK: %s\n", table.Describe())
		return nil
	},
}

func init() {
	rulesCmd.AddCommand(rulesShowCmd)
	rulesCmd.AddCommand(rulesValidateCmd)
}
