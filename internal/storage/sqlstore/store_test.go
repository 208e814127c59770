package sqlstore

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rezkam/todolist/internal/domain"
	"github.com/rezkam/todolist/internal/storage/compliance"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	ctx := context.Background()

	store, err := Open(ctx, Config{Driver: DriverSQLite, DSN: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	return store
}

func backendFor(s *Store) compliance.Backend {
	return compliance.Backend{
		Lists: Factory(s, ListSchema),
		Items: Factory(s, ItemSchema),
	}
}

func TestSQLiteStore_Compliance(t *testing.T) {
	compliance.RunStorageComplianceTest(t, func(t *testing.T) (compliance.Backend, func()) {
		store := newSQLiteStore(t)
		return backendFor(store), func() { store.Close() }
	})
}

// TestPostgresStore_Compliance runs against a real server when TODOLIST_TEST_DB_DSN is set.
func TestPostgresStore_Compliance(t *testing.T) {
	dsn := os.Getenv("TODOLIST_TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TODOLIST_TEST_DB_DSN not set")
	}
	ctx := context.Background()

	store, err := Open(ctx, Config{Driver: DriverPostgres, DSN: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Migrate(ctx))

	compliance.RunStorageComplianceTest(t, func(t *testing.T) (compliance.Backend, func()) {
		_, err := store.db.ExecContext(ctx, "TRUNCATE items, lists")
		require.NoError(t, err)
		return backendFor(store), func() {}
	})
}

func TestMigrate_IsIdempotent(t *testing.T) {
	store := newSQLiteStore(t)
	defer store.Close()

	require.NoError(t, store.Migrate(context.Background()))
	assert.Equal(t, DriverSQLite, store.Driver())
	assert.NoError(t, store.Ping(context.Background()))
}

func TestMigrationVersions(t *testing.T) {
	ctx := context.Background()
	store, err := Open(ctx, Config{Driver: DriverSQLite})
	require.NoError(t, err)
	defer store.Close()

	current, target, err := store.MigrationVersions(ctx)
	require.NoError(t, err)
	assert.Zero(t, current)
	assert.Positive(t, target)

	require.NoError(t, store.Migrate(ctx))
	current, after, err := store.MigrationVersions(ctx)
	require.NoError(t, err)
	assert.Equal(t, target, after)
	assert.Equal(t, target, current)
}

func TestOpen_UnknownDriver(t *testing.T) {
	_, err := Open(context.Background(), Config{Driver: "oracle"})
	assert.Error(t, err)
}

func TestParseDriver(t *testing.T) {
	tests := []struct {
		in      string
		want    Driver
		wantErr bool
	}{
		{"postgres", DriverPostgres, false},
		{"PostgreSQL", DriverPostgres, false},
		{"pgx", DriverPostgres, false},
		{"sqlite", DriverSQLite, false},
		{" memory ", DriverSQLite, false},
		{"sqlserver", "", true},
		{"", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDriver(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSQLiteDSN(t *testing.T) {
	assert.Equal(t, ":memory:?_pragma=foreign_keys(1)", sqliteDSN(""))
	assert.Equal(t, "todo.db?_pragma=foreign_keys(1)", sqliteDSN("todo.db"))
	assert.Equal(t, "file:todo.db?mode=rwc&_pragma=foreign_keys(1)", sqliteDSN("file:todo.db?mode=rwc"))
	assert.Equal(t, "todo.db?_pragma=foreign_keys(0)", sqliteDSN("todo.db?_pragma=foreign_keys(0)"))
}

func TestDialectWindow(t *testing.T) {
	pg := postgresDialect{}
	assert.Equal(t, "", pg.window(-1, 0))
	assert.Equal(t, " LIMIT 10", pg.window(10, 0))
	assert.Equal(t, " LIMIT 10 OFFSET 20", pg.window(10, 20))
	assert.Equal(t, " OFFSET 5", pg.window(-1, 5))

	lite := sqliteDialect{}
	assert.Equal(t, "", lite.window(-1, 0))
	assert.Equal(t, " LIMIT 10", lite.window(10, 0))
	assert.Equal(t, " LIMIT 10 OFFSET 20", lite.window(10, 20))
	assert.Equal(t, " LIMIT -1 OFFSET 5", lite.window(-1, 5))
}

func TestSchemaSQL(t *testing.T) {
	pg := postgresDialect{}
	assert.Equal(t, "INSERT INTO items (title, content, due_date, done, list_id) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		ItemSchema.insertSQL(pg))
	assert.Equal(t, "UPDATE lists SET title = $1, description = $2 WHERE id = $3", ListSchema.updateSQL(pg))
	assert.Equal(t, "DELETE FROM lists WHERE id = ?", ListSchema.deleteSQL(sqliteDialect{}))
}

func TestQuery_ZeroTakeReturnsNothing(t *testing.T) {
	store := newSQLiteStore(t)
	defer store.Close()
	ctx := context.Background()

	repo := store.Lists()
	repo.Add(&domain.List{Title: "one"})
	require.NoError(t, repo.Save(ctx))
	assert.Zero(t, repo.Pending())

	got, err := store.Lists().Query().Take(0).List(ctx)
	require.NoError(t, err)
	assert.Empty(t, got)
}
