package main

import (
	"fmt"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skytron/poi-cli/internal/places"
)

var dedupeCmd = &cobra.Command{
	Use:   "dedupe",
	Short: "Remove exact (name, address) duplicates from a combined CSV",
	Long: `Reads a combined places CSV, synthesizes the identity address
(formatted_address, else vicinity, else empty), and keeps the first row
per unique (name, address) pair. Equality is exact: case- and
whitespace-sensitive.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		log := zap.L().With(zap.String("command", "dedupe"))

		in, _ := cmd.Flags().GetString("in")
		table, err := places.ReadTableCSV(in)
		if err != nil {
			return eris.Wrap(err, "dedupe")
		}
		if !table.HasColumn("name") {
			return eris.Errorf("dedupe: column %q missing in %s", "name", in)
		}

		res := places.Dedupe(table)

		out := outputPath(cmd, "out")
		countsOut := outputPath(cmd, "counts-out")

		if err := places.WriteTableCSV(out, res.Table); err != nil {
			return eris.Wrap(err, "dedupe")
		}
		counts := places.CountBy(res.Table, "city")
		if err := places.WriteCountsCSV(countsOut, []string{"city"}, counts); err != nil {
			return eris.Wrap(err, "dedupe")
		}

		log.Info("deduplicated table written",
			zap.Int("rows_in", table.Len()),
			zap.Int("rows_kept", res.Kept),
			zap.Int("rows_removed", res.Removed),
		)

		fmt.Printf("Input rows: %d\n", table.Len())
		fmt.Printf("Deduped rows: %d\n", res.Kept)
		fmt.Printf("Duplicates removed: %d\n", res.Removed)
		fmt.Printf("Output written: %s\n", out)
		return nil
	},
}

func init() {
	dedupeCmd.Flags().String("in", "combined_places.csv", "combined table input path")
	dedupeCmd.Flags().String("out", "combined_places_deduped.csv", "deduplicated table output path")
	dedupeCmd.Flags().String("counts-out", "counts_deduped_by_city.csv", "per-city count output path")
	rootCmd.AddCommand(dedupeCmd)
}
