package testutil_test

import (
	"context"
	"database/sql"
	"testing"

	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pkordes/notes/migrations"
	"github.com/pkordes/notes/testutil"
)

var schemaTables = []string{"users", "categories", "tags", "notes", "note_tags"}

// TestMigrations applies the schema from scratch, checks the tables and the
// constraints the notes model relies on, then rolls everything back.
func TestMigrations(t *testing.T) {
	db := testutil.NewSQLDB(t)
	ctx := context.Background()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	require.NoError(t, err)

	// Other packages' TestMain may have migrated this shared database already.
	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "initial reset")

	versions, err := migrations.Up(ctx, db)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, versions)

	for _, table := range schemaTables {
		assert.True(t, tableExists(t, db, table), "table %q should exist", table)
	}

	assert.Equal(t, "c", constraintType(t, db, "notes_updated_after_created"))
	assert.Equal(t, "u", constraintType(t, db, "notes_slug_key"))
	assert.Equal(t, "r", foreignKeyDeleteAction(t, db, "notes", "categories"), "category delete must be restricted")
	assert.Equal(t, "n", foreignKeyDeleteAction(t, db, "notes", "users"), "author delete must null the column")
	assert.Equal(t, "c", foreignKeyDeleteAction(t, db, "note_tags", "tags"), "tag delete must cascade to join rows")

	_, err = provider.DownTo(ctx, 0)
	require.NoError(t, err, "goose down-to 0")

	for _, table := range schemaTables {
		assert.False(t, tableExists(t, db, table), "table %q should be gone", table)
	}
}

func tableExists(t *testing.T, db *sql.DB, table string) bool {
	t.Helper()
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM information_schema.tables
			WHERE table_schema = 'public' AND table_name = $1
		)`
	var exists bool
	require.NoError(t, db.QueryRowContext(context.Background(), q, table).Scan(&exists))
	return exists
}

// constraintType returns pg_constraint.contype for the named constraint.
func constraintType(t *testing.T, db *sql.DB, name string) string {
	t.Helper()
	var typ string
	err := db.QueryRowContext(context.Background(),
		`SELECT contype::text FROM pg_constraint WHERE conname = $1`, name).Scan(&typ)
	require.NoError(t, err, "constraint %q", name)
	return typ
}

// foreignKeyDeleteAction returns pg_constraint.confdeltype for the foreign
// key from table to referenced.
func foreignKeyDeleteAction(t *testing.T, db *sql.DB, table, referenced string) string {
	t.Helper()
	const q = `
		SELECT confdeltype::text FROM pg_constraint
		WHERE contype = 'f'
		  AND conrelid  = $1::regclass
		  AND confrelid = $2::regclass`
	var action string
	err := db.QueryRowContext(context.Background(), q, table, referenced).Scan(&action)
	require.NoError(t, err, "foreign key %s -> %s", table, referenced)
	return action
}
