package cmd

import (
	"fmt"

	"github.com/flowbuilder/branchkeeper/internal/conditions"
	"github.com/flowbuilder/branchkeeper/internal/core/condfile"
	"github.com/spf13/cobra"
)

var lintCmd = &cobra.Command{
	Use:   "lint FILE...",
	Short: "Check condition files for problems",
	Long: `Lint reports errors (configurations that cannot be evaluated) and warnings
(rules that can never match as written). It exits non-zero when any file has errors.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLint,
}

func init() {
	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		config, err := condfile.Load(path)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %v\n", path, err)
			failed++
			continue
		}
		issues := conditions.Validate(config)
		for _, issue := range issues {
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", path, issue)
		}
		if conditions.HasErrors(issues) {
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d condition files have errors", failed, len(args))
	}
	return nil
}
