package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/schedule-board/internal/config"
	"github.com/jonathan/schedule-board/internal/export"
	"github.com/jonathan/schedule-board/internal/fetch"
	"github.com/jonathan/schedule-board/internal/schedule"
)

var (
	processCSVFile string
	processCSVURL  string
	processAliases string
	processFormat  string
	processOutput  string
)

var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the normalization pipeline once",
	Long:  `Read a raw schedule from a CSV file or URL, run the normalization pipeline and print the canonical schedule. Warnings go to stderr.`,
	RunE:  runProcess,
}

func init() {
	processCmd.Flags().StringVar(&processCSVFile, "csv-file", "", "Path to a CSV file to process")
	processCmd.Flags().StringVar(&processCSVURL, "csv-url", "", "URL of a published CSV to process")
	processCmd.Flags().StringVar(&processAliases, "aliases", "", "Path to a header alias override file")
	processCmd.Flags().StringVar(&processFormat, "format", "json", "Output format: json or csv")
	processCmd.Flags().StringVar(&processOutput, "output", "", "Write output to a file instead of stdout")
	processCmd.MarkFlagsMutuallyExclusive("csv-file", "csv-url")
	processCmd.MarkFlagsOneRequired("csv-file", "csv-url")
	rootCmd.AddCommand(processCmd)
}

func runProcess(cmd *cobra.Command, _ []string) error {
	var (
		raw *schedule.Table
		err error
	)
	if processCSVFile != "" {
		raw, err = fetch.File(processCSVFile)
	} else {
		raw, err = fetch.CSV(cmd.Context(), processCSVURL, nil)
	}
	if err != nil {
		return err
	}

	aliases, err := config.LoadAliasOverrides(processAliases)
	if err != nil {
		return err
	}
	processor, err := schedule.NewProcessor(schedule.WithAliases(aliases))
	if err != nil {
		return fmt.Errorf("failed to build pipeline: %w", err)
	}

	jobs, warnings := processor.Process(raw)
	for _, warning := range warnings {
		fmt.Fprintln(os.Stderr, "warning:", warning)
	}

	out := cmd.OutOrStdout()
	if processOutput != "" {
		f, err := os.Create(processOutput)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() { _ = f.Close() }()
		out = f
	}
	return writeOutput(out, processFormat, jobs)
}

// writeOutput renders the canonical schedule in the requested format.
func writeOutput(w io.Writer, format string, jobs schedule.Schedule) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(jobs)
	case "csv":
		return export.WriteCSV(w, jobs)
	default:
		return fmt.Errorf("unknown format %q (expected json or csv)", format)
	}
}
