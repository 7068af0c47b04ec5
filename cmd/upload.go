package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/skytron/poi-cli/internal/db"
	"github.com/skytron/poi-cli/internal/places"
	"github.com/skytron/poi-cli/internal/poi"
)

var uploadCmd = &cobra.Command{
	Use:   "upload",
	Short: "Batch-upsert a deduplicated places CSV into the POI table",
	Long: `Maps every row of a deduplicated places CSV onto the destination POI
schema and submits fixed-size batches as single insert-or-update
statements against the uniqueness constraint on name. The whole upload
runs in one transaction; any batch error rolls everything back.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		log := zap.L().With(zap.String("command", "upload"))

		csvPath, _ := cmd.Flags().GetString("csv")
		table, _ := cmd.Flags().GetString("table")
		if table == "" {
			table = cfg.Upload.Table
		}

		// Reject a bad destination identifier before reading anything
		// or opening any connection.
		if _, err := db.ValidateTableIdent(table); err != nil {
			return err
		}

		src, err := places.ReadTableCSV(csvPath)
		if err != nil {
			return eris.Wrap(err, "upload")
		}

		showMapping, _ := cmd.Flags().GetBool("show-mapping")
		if showMapping {
			fmt.Println("CSV headers detected:")
			fmt.Println(strings.Join(src.Columns(), ", "))
			fmt.Println()
			fmt.Print(poi.FormatMappingSpec())
			return nil
		}

		fmt.Printf("Loaded %d rows from %s.\n", src.Len(), csvPath)

		defaults := uploadDefaults(cmd)

		now := time.Now().UTC()
		var mapped []*poi.MappedRow
		skipped := 0
		for _, row := range src.Rows() {
			m, ok := poi.MapRow(row.StringMap(), defaults, now)
			if !ok {
				skipped++
				continue
			}
			mapped = append(mapped, m)
		}

		log.Info("mapped rows",
			zap.Int("rows_in", src.Len()),
			zap.Int("rows_mapped", len(mapped)),
			zap.Int("rows_skipped", skipped),
		)
		fmt.Printf("Mapped %d rows. Skipped %d rows due to missing name.\n", len(mapped), skipped)

		dryRun, _ := cmd.Flags().GetBool("dry-run")
		if dryRun {
			for i, r := range mapped {
				if i == 5 {
					break
				}
				fmt.Printf("Preview row %d: %+v\n", i+1, *r)
			}
			fmt.Println("Dry-run mode: no database changes were made.")
			return nil
		}

		batchSize, _ := cmd.Flags().GetInt("batch-size")
		if batchSize < 1 {
			batchSize = cfg.Upload.BatchSize
		}
		onConflict, _ := cmd.Flags().GetString("on-conflict")
		policy, err := poi.ParseConflictPolicy(onConflict)
		if err != nil {
			return err
		}
		rollback, _ := cmd.Flags().GetBool("rollback")

		opts := poi.UploadOptions{
			Table:      table,
			BatchSize:  batchSize,
			OnConflict: policy,
			Rollback:   rollback,
		}

		var res *poi.UploadResult
		switch cfg.Store.Driver {
		case "sqlite":
			res, err = uploadSQLite(ctx, mapped, opts)
		default:
			res, err = uploadPostgres(ctx, mapped, opts)
		}
		if err != nil {
			return err
		}

		if res.Committed {
			fmt.Printf("Done. Inserted/upserted %d rows in total.\n", res.Submitted)
		} else {
			fmt.Printf("Transaction rolled back. 0 rows committed (simulated %d inserts).\n", res.Submitted)
		}
		return nil
	},
}

func uploadPostgres(ctx context.Context, mapped []*poi.MappedRow, opts poi.UploadOptions) (*poi.UploadResult, error) {
	connString, err := cfg.Store.ConnString()
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, eris.Wrap(err, "upload: connect")
	}
	defer pool.Close()

	uploader, err := poi.NewUploader(pool, opts)
	if err != nil {
		return nil, err
	}
	return uploader.Upload(ctx, mapped)
}

func uploadSQLite(ctx context.Context, mapped []*poi.MappedRow, opts poi.UploadOptions) (*poi.UploadResult, error) {
	dsn := cfg.Store.DatabaseURL
	if dsn == "" {
		dsn = "poi.db"
	}

	sink, err := poi.NewSQLiteSink(dsn)
	if err != nil {
		return nil, err
	}
	defer sink.Close()

	if err := sink.Migrate(ctx, opts.Table); err != nil {
		return nil, err
	}
	return sink.Upload(ctx, mapped, opts)
}

// uploadDefaults assembles the static/defaulted field values from config
// and flags. Radius and speed limit stay NULL unless their flags were
// set.
func uploadDefaults(cmd *cobra.Command) poi.Defaults {
	d := poi.Defaults{
		CreatedByID: cfg.Upload.CreatedByID,
		UpdatedByID: cfg.Upload.UpdatedByID,
		Status:      cfg.Upload.Status,
		Status2:     cfg.Upload.Status2,
		MarkType:    cfg.Upload.MarkType,
		UseType:     cfg.Upload.UseType,
		AlertType:   cfg.Upload.AlertType,
	}

	if cmd.Flags().Changed("created-by-id") {
		d.CreatedByID, _ = cmd.Flags().GetInt("created-by-id")
	}
	if cmd.Flags().Changed("updated-by-id") {
		d.UpdatedByID, _ = cmd.Flags().GetInt("updated-by-id")
	}
	if cmd.Flags().Changed("status") {
		d.Status, _ = cmd.Flags().GetString("status")
	}
	if cmd.Flags().Changed("status2") {
		d.Status2, _ = cmd.Flags().GetString("status2")
	}
	if cmd.Flags().Changed("mark-type") {
		d.MarkType, _ = cmd.Flags().GetString("mark-type")
	}
	if cmd.Flags().Changed("use-type") {
		d.UseType, _ = cmd.Flags().GetString("use-type")
	}
	if cmd.Flags().Changed("alert-type") {
		d.AlertType, _ = cmd.Flags().GetString("alert-type")
	}
	if cmd.Flags().Changed("radius") {
		r, _ := cmd.Flags().GetFloat64("radius")
		d.Radius = &r
	}
	if cmd.Flags().Changed("speed-limit") {
		s, _ := cmd.Flags().GetInt("speed-limit")
		d.SpeedLimit = &s
	}
	return d
}

func init() {
	uploadCmd.Flags().String("csv", "combined_places_deduped.csv", "deduplicated places CSV to upload")
	uploadCmd.Flags().Int("batch-size", 0, "insert batch size (default: upload.batch_size)")
	uploadCmd.Flags().String("on-conflict", "ignore", "conflict policy on unique name: ignore or update")
	uploadCmd.Flags().Bool("dry-run", false, "preview mapping without touching the database")
	uploadCmd.Flags().Bool("rollback", false, "execute inserts but roll back instead of committing")
	uploadCmd.Flags().String("table", "", "destination table (default: upload.table)")
	uploadCmd.Flags().Bool("show-mapping", false, "print CSV headers and the mapping specification, then exit")
	uploadCmd.Flags().Int("created-by-id", 0, "override created_by_id")
	uploadCmd.Flags().Int("updated-by-id", 0, "override updated_by_id")
	uploadCmd.Flags().String("status", "", "override status")
	uploadCmd.Flags().String("status2", "", "override status2")
	uploadCmd.Flags().String("mark-type", "", "override mark_type")
	uploadCmd.Flags().String("use-type", "", "default use_type when location_type is absent")
	uploadCmd.Flags().String("alert-type", "", "override alert_type")
	uploadCmd.Flags().Float64("radius", 0, "radius for all rows (unset leaves NULL)")
	uploadCmd.Flags().Int("speed-limit", 0, "speed_limit for all rows (unset leaves NULL)")
	rootCmd.AddCommand(uploadCmd)
}
