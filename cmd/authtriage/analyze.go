package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"authtriage/internal/logger"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a log file, or stdin, and print the report as JSON",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().Bool("no-compress", false, "skip the remote compression service")
	analyzeCmd.Flags().Bool("pretty", false, "indent the JSON output")
	analyzeCmd.Flags().String("source", "", "source label recorded on the report")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}
	if err := initLogging(cfg); err != nil {
		return err
	}
	defer logger.Close()

	noCompress, _ := cmd.Flags().GetBool("no-compress")
	pretty, _ := cmd.Flags().GetBool("pretty")
	source, _ := cmd.Flags().GetString("source")

	var in io.Reader = cmd.InOrStdin()
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open %s: %w", args[0], err)
		}
		defer f.Close()
		in = f
		if source == "" {
			source = args[0]
		}
	}
	raw, err := io.ReadAll(in)
	if err != nil {
		return fmt.Errorf("read logs: %w", err)
	}

	assessor, err := newAssessor(&cfg.AuthTriage, nil, noCompress)
	if err != nil {
		return err
	}
	report := assessor.Assess(cmd.Context(), source, string(raw))

	enc := json.NewEncoder(cmd.OutOrStdout())
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(report)
}
