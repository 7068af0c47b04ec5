package poi

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/skytron/poi-cli/internal/db"
)

// SQLiteSink is the local-file destination for validating the full
// mapping and upsert flow without a Postgres instance. Same batch and
// conflict semantics as the Postgres uploader.
type SQLiteSink struct {
	db *sql.DB
}

// NewSQLiteSink opens a SQLite database at the given path.
func NewSQLiteSink(dsn string) (*SQLiteSink, error) {
	d, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := d.Exec(pragma); err != nil {
			d.Close()
			return nil, eris.Wrapf(err, "sqlite: exec %s", pragma)
		}
	}
	return &SQLiteSink{db: d}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}

// Migrate creates the destination table with the uniqueness constraint
// on name if it does not exist yet.
func (s *SQLiteSink) Migrate(ctx context.Context, table string) error {
	t, err := sqliteTable(table)
	if err != nil {
		return err
	}
	stmt := fmt.Sprintf(`
CREATE TABLE IF NOT EXISTS %s (
	id            INTEGER PRIMARY KEY AUTOINCREMENT,
	status2       TEXT,
	status        TEXT,
	mark_type     TEXT,
	use_type      TEXT,
	location      TEXT NOT NULL,
	radius        REAL,
	name          TEXT NOT NULL UNIQUE,
	description   TEXT,
	created       DATETIME,
	updated       DATETIME,
	created_by_id INTEGER,
	updated_by_id INTEGER,
	speed_limit   INTEGER,
	alert_type    TEXT NOT NULL,
	lat           REAL,
	lon           REAL,
	address       TEXT,
	pluscode      TEXT,
	area          TEXT,
	city          TEXT,
	state         TEXT,
	pincode       TEXT,
	phone         TEXT,
	website       TEXT
)`, t)
	if _, err := s.db.ExecContext(ctx, stmt); err != nil {
		return eris.Wrapf(err, "sqlite: migrate %s", t)
	}
	return nil
}

// Upload mirrors Uploader.Upload against SQLite: fixed-size batches, one
// multi-row upsert per batch, one transaction, commit or rollback.
func (s *SQLiteSink) Upload(ctx context.Context, rows []*MappedRow, opts UploadOptions) (*UploadResult, error) {
	if len(rows) == 0 {
		return &UploadResult{}, nil
	}

	table, err := sqliteTable(opts.Table)
	if err != nil {
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

	log := zap.L().With(zap.String("table", table))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: begin tx")
	}
	defer tx.Rollback() //nolint:errcheck

	total := 0
	for start := 0; start < len(rows); start += opts.BatchSize {
		end := start + opts.BatchSize
		if end > len(rows) {
			end = len(rows)
		}
		batch := rows[start:end]

		stmt := buildSQLiteUpsertSQL(table, len(batch), opts.OnConflict)
		args := make([]any, 0, len(batch)*len(Columns))
		for _, r := range batch {
			args = append(args, r.Values()...)
		}

		if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
			return nil, eris.Wrapf(err, "sqlite: upsert batch of %d into %s", len(batch), table)
		}
		total += len(batch)
		log.Info("inserted/upserted rows", zap.Int("total", total))
	}

	if opts.Rollback {
		if err := tx.Rollback(); err != nil {
			return nil, eris.Wrap(err, "sqlite: rollback tx")
		}
		return &UploadResult{Submitted: total, Committed: false}, nil
	}

	if err := tx.Commit(); err != nil {
		return nil, eris.Wrap(err, "sqlite: commit tx")
	}
	return &UploadResult{Submitted: total, Committed: true}, nil
}

// sqliteTable validates the identifier and drops any schema qualifier;
// SQLite has no schemas.
func sqliteTable(table string) (string, error) {
	if _, err := db.ValidateTableIdent(table); err != nil {
		return "", err
	}
	if i := strings.LastIndexByte(table, '.'); i >= 0 {
		table = table[i+1:]
	}
	return table, nil
}

// buildSQLiteUpsertSQL is the SQLite dialect of buildUpsertSQL: "?"
// placeholders, excluded.* for incoming values, bare column names for the
// existing row inside DO UPDATE expressions.
func buildSQLiteUpsertSQL(table string, n int, policy ConflictPolicy) string {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(table)
	b.WriteString(" (")
	b.WriteString(strings.Join(Columns, ", "))
	b.WriteString(") VALUES ")

	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(Columns)), ", ") + ")"
	for i := 0; i < n; i++ {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(placeholders)
	}

	if policy == ConflictIgnore {
		b.WriteString(" ON CONFLICT (name) DO NOTHING")
		return b.String()
	}

	b.WriteString(" ON CONFLICT (name) DO UPDATE SET updated = excluded.updated, updated_by_id = excluded.updated_by_id")
	for _, col := range updatableColumns {
		fmt.Fprintf(&b, ", %s = COALESCE(excluded.%s, %s)", col, col, col)
	}
	return b.String()
}
