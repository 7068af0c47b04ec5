package poi

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockUploader(t *testing.T, opts UploadOptions) (*Uploader, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool(pgxmock.QueryMatcherOption(pgxmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	u, err := NewUploader(mock, opts)
	require.NoError(t, err)
	return u, mock
}

// anyArgs returns one pgxmock.AnyArg matcher per placeholder for a batch
// of n rows; pgxmock requires the expected argument count to match, so a
// bare ExpectExec cannot match an Exec that carries arguments.
func anyArgs(n int) []any {
	args := make([]any, n*len(Columns))
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func mappedRows(t *testing.T, names ...string) []*MappedRow {
	t.Helper()
	rows := make([]*MappedRow, 0, len(names))
	for _, n := range names {
		m, ok := MapRow(map[string]string{"name": n}, defaults(), time.Now().UTC())
		require.True(t, ok)
		rows = append(rows, m)
	}
	return rows
}

func TestNewUploader_RejectsBadTable(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	_, err = NewUploader(mock, UploadOptions{Table: "pois; DROP TABLE pois"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid table identifier")
	assert.NoError(t, mock.ExpectationsWereMet(), "rejected before any connection use")
}

func TestNewUploader_RejectsBadPolicy(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	_, err = NewUploader(mock, UploadOptions{Table: "pois", OnConflict: "merge"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown conflict policy")
}

func TestUploader_EmptyRows(t *testing.T) {
	u, mock := newMockUploader(t, UploadOptions{Table: "pois"})

	res, err := u.Upload(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Submitted)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploader_CommitsBatches(t *testing.T) {
	u, mock := newMockUploader(t, UploadOptions{Table: "public.pois", BatchSize: 2, OnConflict: ConflictIgnore})

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "public"\."pois"`).WithArgs(anyArgs(2)...).WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectExec(`INSERT INTO "public"\."pois"`).WithArgs(anyArgs(1)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	res, err := u.Upload(context.Background(), mappedRows(t, "A", "B", "C"))
	require.NoError(t, err)
	assert.Equal(t, 3, res.Submitted)
	assert.True(t, res.Committed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploader_RollbackMode(t *testing.T) {
	u, mock := newMockUploader(t, UploadOptions{Table: "pois", BatchSize: 10, Rollback: true})

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "pois"`).WithArgs(anyArgs(2)...).WillReturnResult(pgxmock.NewResult("INSERT", 2))
	mock.ExpectRollback()

	res, err := u.Upload(context.Background(), mappedRows(t, "A", "B"))
	require.NoError(t, err)
	assert.Equal(t, 2, res.Submitted)
	assert.False(t, res.Committed, "rollback mode never commits")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUploader_BatchErrorRollsBack(t *testing.T) {
	u, mock := newMockUploader(t, UploadOptions{Table: "pois", BatchSize: 1})

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO "pois"`).WithArgs(anyArgs(1)...).WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec(`INSERT INTO "pois"`).WithArgs(anyArgs(1)...).WillReturnError(eris.New("connection reset"))
	mock.ExpectRollback()

	_, err := u.Upload(context.Background(), mappedRows(t, "A", "B", "C"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "upsert batch")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBuildUpsertSQL_Ignore(t *testing.T) {
	sql := buildUpsertSQL("public.pois", 2, ConflictIgnore)

	assert.True(t, strings.HasPrefix(sql, `INSERT INTO "public"."pois" AS poi (`))
	assert.Contains(t, sql, `ON CONFLICT ("name") DO NOTHING`)
	assert.NotContains(t, sql, "DO UPDATE")
	assert.Contains(t, sql, "$24)", "first row ends at $24")
	assert.Contains(t, sql, "$48)", "second row ends at $48")
	assert.NotContains(t, sql, "$49")
}

func TestBuildUpsertSQL_UpdateCoalesces(t *testing.T) {
	sql := buildUpsertSQL("pois", 1, ConflictUpdate)

	assert.Contains(t, sql, `ON CONFLICT ("name") DO UPDATE SET`)
	assert.Contains(t, sql, `"updated" = EXCLUDED."updated"`)
	assert.Contains(t, sql, `"updated_by_id" = EXCLUDED."updated_by_id"`)
	for _, col := range updatableColumns {
		assert.Contains(t, sql, `"`+col+`" = COALESCE(EXCLUDED."`+col+`", poi."`+col+`")`)
	}
	// Identity and creation audit fields are never overwritten.
	assert.NotContains(t, sql, `"name" = `)
	assert.NotContains(t, sql, `"created" = `)
	assert.NotContains(t, sql, `"created_by_id" = `)
}

func TestParseConflictPolicy(t *testing.T) {
	p, err := ParseConflictPolicy("ignore")
	require.NoError(t, err)
	assert.Equal(t, ConflictIgnore, p)

	p, err = ParseConflictPolicy("update")
	require.NoError(t, err)
	assert.Equal(t, ConflictUpdate, p)

	_, err = ParseConflictPolicy("upsert")
	require.Error(t, err)
}
