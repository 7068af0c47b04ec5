package main

import (
	"errors"
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skytron/poi-cli/internal/places"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Dedupe all results without lat/lon validation and report city counts",
	Long: `The no-lat/lon variant: consolidates every result file without the
coordinate validity filter, deduplicates on (name, address), and reports
per-city counts with a grand total. Rows with out-of-range or missing
coordinates are counted here even though the validated combined table
excludes them.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := zap.L().With(zap.String("command", "stats"))

		dir, _ := cmd.Flags().GetString("dir")
		if dir == "" {
			dir = cfg.Pipeline.ResultsDir
		}

		res, err := places.Consolidate(dir, places.ConsolidateOptions{})
		if errors.Is(err, places.ErrNoResultFiles) {
			fmt.Println("No results_*.json files found.")
			return nil
		}
		if errors.Is(err, places.ErrNoValidRows) {
			fmt.Println("No entries found in any JSON files.")
			return nil
		}
		if err != nil {
			return eris.Wrap(err, "stats")
		}

		deduped := places.Dedupe(res.Table)

		out := outputPath(cmd, "out")
		countsOut := outputPath(cmd, "counts-out")
		summaryOut := outputPath(cmd, "summary-out")

		if err := places.WriteTableCSV(out, deduped.Table); err != nil {
			return eris.Wrap(err, "stats")
		}
		counts := places.CountBy(deduped.Table, "city")
		if err := places.WriteCountsCSV(countsOut, []string{"city"}, counts); err != nil {
			return eris.Wrap(err, "stats")
		}

		lines := places.SummaryLines(counts)
		summary := append(
			[]string{fmt.Sprintf("TOTAL (deduped, no lat/lon validation) = %d", deduped.Kept)},
			lines...,
		)
		if err := places.WriteSummary(summaryOut, summary); err != nil {
			return eris.Wrap(err, "stats")
		}

		log.Info("no-lat/lon dedup stats written",
			zap.Int("rows_in", res.RowsLoaded),
			zap.Int("rows_kept", deduped.Kept),
			zap.Int("rows_removed", deduped.Removed),
		)

		fmt.Printf("Input rows (all JSON): %d\n", res.RowsLoaded)
		fmt.Printf("Deduped rows (global name+address): %d\n", deduped.Kept)
		fmt.Printf("Duplicates removed: %d\n", deduped.Removed)
		fmt.Println("City-wise counts (deduped, no lat/lon validation):")
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
	statsCmd.Flags().String("dir", "", "directory holding results_*.json files (default: pipeline.results_dir)")
	statsCmd.Flags().String("out", "combined_deduped_no_latlon.csv", "deduplicated table output path")
	statsCmd.Flags().String("counts-out", "counts_deduped_no_latlon_by_city.csv", "per-city count output path")
	statsCmd.Flags().String("summary-out", "counts_deduped_no_latlon_summary.txt", "summary output path")
	rootCmd.AddCommand(statsCmd)
}
