package main

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skytron/poi-cli/internal/places"
)

var consolidateCmd = &cobra.Command{
	Use:   "consolidate",
	Short: "Build the combined places CSV from results_*.json files",
	Long: `Scans a directory for results_{locationType}_{area}_{city}.json files,
flattens and coordinate-validates every record, and writes the combined
table plus count aggregates by city and location type.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := zap.L().With(zap.String("command", "consolidate"))

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.Pipeline.ResultsDir
		}

		res, err := places.Consolidate(dir, places.ConsolidateOptions{ValidateCoords: true})
		if errors.Is(err, places.ErrNoResultFiles) {
			fmt.Println("No results_*.json files found.")
			return nil
		}
		if errors.Is(err, places.ErrNoValidRows) {
			fmt.Println("No valid entries with lat/lon found across files.")
			return nil
		}
		if err != nil {
			return eris.Wrap(err, "consolidate")
		}

		out := outputPath(cmd, "out")
		countsOut := outputPath(cmd, "counts-out")
		summaryOut := outputPath(cmd, "summary-out")

		if err := places.WriteTableCSV(out, res.Table); err != nil {
			return eris.Wrap(err, "consolidate")
		}

		counts := places.CountBy(res.Table, "city", "location_type")
		if err := places.WriteCountsCSV(countsOut, []string{"city", "location_type"}, counts); err != nil {
			return eris.Wrap(err, "consolidate")
		}

		lines := places.SummaryLines(counts)
		if err := places.WriteSummary(summaryOut, lines); err != nil {
			return eris.Wrap(err, "consolidate")
		}

		log.Info("combined table written",
			zap.Int("files_found", res.FilesFound),
			zap.Int("rows_loaded", res.RowsLoaded),
			zap.Int("rows_dropped", res.RowsDropped),
			zap.Int("rows_valid", res.Table.Len()),
		)

		fmt.Printf("Combined rows (valid lat/lon): %d\n", res.Table.Len())
		fmt.Println("Counts by city and location_type:")
		for _, line := range lines {
			fmt.Println(" -", line)
		}
		fmt.Println("\nOutputs:")
		for _, p := range []string{out, countsOut, summaryOut} {
			fmt.Println(" -", p)
		}
		return nil
	},
}

func init() {
	consolidateCmd.Flags().String("dir", "", "directory holding results_*.json files (default: pipeline.results_dir)")
	consolidateCmd.Flags().String("out", "combined_places.csv", "combined table output path")
	consolidateCmd.Flags().String("counts-out", "counts_by_city_and_type.csv", "count aggregate output path")
	consolidateCmd.Flags().String("summary-out", "counts_summary.txt", "human-readable summary output path")
	rootCmd.AddCommand(consolidateCmd)
}

// outputPath resolves a relative output flag against pipeline.output_dir.
func outputPath(cmd *cobra.Command, flag string) string {
	p, _ := cmd.Flags().GetString(flag)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(cfg.Pipeline.OutputDir, p)
}
