package poi

import (
	"context"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/skytron/poi-cli/internal/db"
)

// ConflictPolicy decides what happens when an incoming row hits the
// uniqueness constraint on name.
type ConflictPolicy string

const (
	// ConflictIgnore silently skips duplicate names: first write wins
	// across runs.
	ConflictIgnore ConflictPolicy = "ignore"
	// ConflictUpdate overwrites mutable fields, coalescing to the
	// existing value when the incoming one is NULL, so a later partial
	// upload cannot blank out previously known fields.
	ConflictUpdate ConflictPolicy = "update"
)

// ParseConflictPolicy validates a policy string.
func ParseConflictPolicy(s string) (ConflictPolicy, error) {
	switch ConflictPolicy(s) {
	case ConflictIgnore, ConflictUpdate:
		return ConflictPolicy(s), nil
	default:
		return "", eris.Errorf("poi: unknown conflict policy %q (valid: ignore, update)", s)
	}
}

// updatableColumns are the mutable fields refreshed on conflict under the
// update policy, each coalesced to the existing value. Identity (name)
// and creation audit fields (created, created_by_id) are never touched.
var updatableColumns = []string{
	"mark_type", "use_type", "location", "lat", "lon", "address",
	"pluscode", "area", "city", "state", "pincode", "phone", "website",
}

const defaultBatchSize = 1000

// UploadOptions configures one upload run.
type UploadOptions struct {
	Table      string
	BatchSize  int
	OnConflict ConflictPolicy
	// Rollback executes every batch inside the transaction and then
	// always rolls it back, validating mapping and throughput without
	// committing.
	Rollback bool
}

// UploadResult reports what an upload run did.
type UploadResult struct {
	Submitted int
	Committed bool
}

// Uploader batch-upserts mapped rows into Postgres. The connection pool
// is owned by the caller; every upload runs in a single transaction.
type Uploader struct {
	pool db.Pool
	opts UploadOptions
}

// NewUploader validates the options and returns an uploader. The table
// identifier is checked against the allow-list pattern before any SQL is
// built or any connection used.
func NewUploader(pool db.Pool, opts UploadOptions) (*Uploader, error) {
	if _, err := db.ValidateTableIdent(opts.Table); err != nil {
		return nil, err
	}
	if opts.OnConflict == "" {
		opts.OnConflict = ConflictIgnore
	}
	if _, err := ParseConflictPolicy(string(opts.OnConflict)); err != nil {
		return nil, err
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = defaultBatchSize
	}
	return &Uploader{pool: pool, opts: opts}, nil
}

// Upload submits all rows in fixed-size batches, one multi-row upsert
// statement per batch, inside one transaction. Any batch error rolls the
// whole transaction back and propagates; no partial commit is possible.
func (u *Uploader) Upload(ctx context.Context, rows []*MappedRow) (*UploadResult, error) {
	if len(rows) == 0 {
		return &UploadResult{}, nil
	}

	log := zap.L().With(zap.String("table", u.opts.Table))

	tx, err := u.pool.Begin(ctx)
	if err != nil {
		return nil, eris.Wrap(err, "poi: begin tx")
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	total := 0
	for start := 0; start < len(rows); start += u.opts.BatchSize {
		end := start + u.opts.BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		stmt := buildUpsertSQL(u.opts.Table, len(batch), u.opts.OnConflict)
		args := make([]any, 0, len(batch)*len(Columns))
		for _, r := range batch {
			args = append(args, r.Values()...)
		}

		if _, err := tx.Exec(ctx, stmt, args...); err != nil {
			return nil, eris.Wrapf(err, "poi: upsert batch of %d into %s", len(batch), u.opts.Table)
		}
		total += len(batch)
		log.Info("inserted/upserted rows", zap.Int("total", total))
	}

	if u.opts.Rollback {
		if err := tx.Rollback(ctx); err != nil {
			return nil, eris.Wrap(err, "poi: rollback tx")
		}
		log.Info("transaction rolled back", zap.Int("simulated", total))
		return &UploadResult{Submitted: total, Committed: false}, nil
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, eris.Wrap(err, "poi: commit tx")
	}
	return &UploadResult{Submitted: total, Committed: true}, nil
}

// buildUpsertSQL builds the multi-row INSERT ... ON CONFLICT (name)
// statement for n rows. The table identifier has already passed the
// allow-list check and is quoted here. The target carries the alias
// "poi" so COALESCE can reference existing values regardless of the
// table name.
func buildUpsertSQL(table string, n int, policy ConflictPolicy) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(db.SanitizeTable(table))
	b.WriteString(" AS poi (")
	b.WriteString(db.QuoteAndJoin(Columns))
	b.WriteString(") VALUES ")

	arg := 1
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j := range Columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", arg)
			arg++
		}
		b.WriteString(")")
	}

	if policy == ConflictIgnore {
		b.WriteString(` ON CONFLICT ("name") DO NOTHING`)
		return b.String()
	}

	b.WriteString(` ON CONFLICT ("name") DO UPDATE SET "updated" = EXCLUDED."updated", "updated_by_id" = EXCLUDED."updated_by_id"`)
	for _, col := range updatableColumns {
		fmt.Fprintf(&b, `, %q = COALESCE(EXCLUDED.%q, poi.%q)`, col, col, col)
	}
	return b.String()
}
