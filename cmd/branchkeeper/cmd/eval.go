package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/flowbuilder/branchkeeper/internal/conditions"
	"github.com/flowbuilder/branchkeeper/internal/core/condfile"
	"github.com/flowbuilder/branchkeeper/internal/types"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var evalCmd = &cobra.Command{
	Use:   "eval",
	Short: "Evaluate a condition file against one record",
	Long: `Evaluate reads a YAML or JSON condition file and a JSON record, and prints
the verdict, the output handle and the per-group trace as JSON.

With --watch the record is kept and re-evaluated whenever the condition file
changes.`,
	RunE: runEval,
}

func init() {
	rootCmd.AddCommand(evalCmd)
	evalCmd.Flags().StringP("conditions", "c", "", "condition file (.yaml, .yml or .json)")
	evalCmd.Flags().StringP("record", "r", "-", "record JSON file, - for stdin")
	evalCmd.Flags().Bool("watch", false, "re-evaluate when the condition file changes")
	_ = evalCmd.MarkFlagRequired("conditions")
}

// evalOutput is a Result with its output handle.
type evalOutput struct {
	conditions.Result
	Handle conditions.Handle `json:"handle"`
}

func runEval(cmd *cobra.Command, args []string) error {
	_, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	path, _ := cmd.Flags().GetString("conditions")
	recordPath, _ := cmd.Flags().GetString("record")
	watch, _ := cmd.Flags().GetBool("watch")

	record, err := readRecord(cmd, recordPath)
	if err != nil {
		return err
	}

	engine := conditions.NewEngine(conditions.WithLogger(logger.Named("engine")))
	evaluate := func(config types.ConditionsConfig) error {
		result, err := engine.Evaluate(config, record)
		if err != nil {
			return err
		}
		return writeJSON(cmd.OutOrStdout(), evalOutput{Result: result, Handle: result.Handle()})
	}

	config, err := condfile.Load(path)
	if err != nil {
		return err
	}
	if !watch {
		return evaluate(config)
	}
	if err := evaluate(config); err != nil {
		logger.Warn("evaluation failed", zap.Error(err))
	}

	watcher, err := condfile.NewWatcher(path, condfile.DefaultDebounce, logger.Named("watcher"))
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return watcher.Run(ctx, func(config types.ConditionsConfig, err error) {
		if err != nil {
			return
		}
		if err := evaluate(config); err != nil {
			logger.Warn("evaluation failed", zap.Error(err))
		}
	})
}

// readRecord reads one record from path, or stdin for "-".
func readRecord(cmd *cobra.Command, path string) (types.Record, error) {
	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("failed to open record: %w", err)
		}
		defer f.Close()
		r = f
	}
	record, err := condfile.LoadRecord(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read record: %w", err)
	}
	return record, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
