package cmd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/flowbuilder/branchkeeper/internal/conditions"
	"github.com/flowbuilder/branchkeeper/internal/core/condfile"
	"github.com/flowbuilder/branchkeeper/internal/types"
	"github.com/spf13/cobra"
)

// maxLineBytes bounds a single JSONL record.
const maxLineBytes = 4 << 20

var filterCmd = &cobra.Command{
	Use:   "filter",
	Short: "Keep the JSONL records that satisfy a condition file",
	Long: `Filter reads one JSON object per line and writes the lines whose records
satisfy the condition file, unchanged and in input order. Blank and
whitespace-only lines are skipped.`,
	RunE: runFilter,
}

func init() {
	rootCmd.AddCommand(filterCmd)
	filterCmd.Flags().StringP("conditions", "c", "", "condition file (.yaml, .yml or .json)")
	filterCmd.Flags().StringP("records", "r", "-", "JSONL records file, - for stdin")
	_ = filterCmd.MarkFlagRequired("conditions")
}

func runFilter(cmd *cobra.Command, args []string) error {
	_, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer logger.Sync()

	path, _ := cmd.Flags().GetString("conditions")
	recordsPath, _ := cmd.Flags().GetString("records")

	config, err := condfile.Load(path)
	if err != nil {
		return err
	}

	var in io.Reader = cmd.InOrStdin()
	if recordsPath != "-" {
		f, err := os.Open(recordsPath)
		if err != nil {
			return fmt.Errorf("failed to open records: %w", err)
		}
		defer f.Close()
		in = f
	}

	var lines [][]byte
	var records []types.Record
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)
	for n := 1; scanner.Scan(); n++ {
		line := scanner.Bytes()
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}
		record, err := condfile.DecodeRecord(line)
		if err != nil {
			return fmt.Errorf("line %d: %w", n, err)
		}
		lines = append(lines, append([]byte(nil), line...))
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read records: %w", err)
	}

	engine := conditions.NewEngine(conditions.WithLogger(logger.Named("engine")))
	result, err := engine.Filter(config, records)
	if err != nil {
		return err
	}

	out := bufio.NewWriter(cmd.OutOrStdout())
	for _, i := range result.Indexes {
		out.Write(lines[i])
		out.WriteByte('\n')
	}
	return out.Flush()
}
