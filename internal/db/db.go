// Package db provides shared database helpers for the POI uploader.
package db

import (
	"context"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rotisserie/eris"
)

// Pool is the subset of pgxpool.Pool the uploader needs.
// pgxmock.PgxPoolIface satisfies it, so upload paths are unit-testable.
type Pool interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Close()
}

// tableIdentPattern allows letters, digits, underscore, and one optional
// schema qualifier. Checked before any identifier reaches SQL text.
var tableIdentPattern = regexp.MustCompile(`^[A-Za-z0-9_]+(\.[A-Za-z0-9_]+)?$`)

// ValidateTableIdent rejects destination table names that are not plain
// (optionally schema-qualified) identifiers.
func ValidateTableIdent(table string) (string, error) {
	if !tableIdentPattern.MatchString(table) {
		return "", eris.Errorf("db: invalid table identifier: %q", table)
	}
	return table, nil
}

// SanitizeTable handles schema-qualified table names like "public.pois".
func SanitizeTable(table string) string {
	parts := strings.SplitN(table, ".", 2)
	if len(parts) == 2 {
		return pgx.Identifier{parts[0], parts[1]}.Sanitize()
	}
	return pgx.Identifier{table}.Sanitize()
}

// QuoteAndJoin quotes each column name and joins with commas.
func QuoteAndJoin(cols []string) string {
	quoted := make([]string, len(cols))
	for i, c := range cols {
		quoted[i] = pgx.Identifier{c}.Sanitize()
	}
	return strings.Join(quoted, ", ")
}
