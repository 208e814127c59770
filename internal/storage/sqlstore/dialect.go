package sqlstore

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib" // registers the "pgx" database/sql driver
	"github.com/pressly/goose/v3"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var embedMigrations embed.FS

// Driver selects the database engine backing a Store.
type Driver string

const (
	DriverPostgres Driver = "postgres"
	DriverSQLite   Driver = "sqlite"
)

// ParseDriver accepts the configured driver name.
func ParseDriver(s string) (Driver, error) {
	switch Driver(strings.ToLower(strings.TrimSpace(s))) {
	case DriverPostgres, "postgresql", "pgx":
		return DriverPostgres, nil
	case DriverSQLite, "sqlite3", "memory", "inmemory":
		return DriverSQLite, nil
	default:
		return "", fmt.Errorf("unknown database driver %q: expected postgres or sqlite", s)
	}
}

// dialect isolates the SQL differences between the supported engines.
type dialect interface {
	driverName() string
	gooseDialect() goose.Dialect
	migrations() (fs.FS, error)

	// placeholder returns the bind marker for the n-th argument (1-based).
	placeholder(n int) string
	// contains renders a case-sensitive substring test on the trimmed column.
	contains(column, arg string) string
	// dateEq renders a calendar-day comparison.
	dateEq(column, arg string) string
	// window renders LIMIT/OFFSET; take < 0 means unbounded.
	window(take, skip int) string

	isConstraintViolation(err error) bool
}

func dialectFor(d Driver) (dialect, error) {
	switch d {
	case DriverPostgres:
		return postgresDialect{}, nil
	case DriverSQLite:
		return sqliteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", d)
	}
}

type postgresDialect struct{}

func (postgresDialect) driverName() string { return "pgx" }

func (postgresDialect) gooseDialect() goose.Dialect { return goose.DialectPostgres }

func (postgresDialect) migrations() (fs.FS, error) {
	return fs.Sub(embedMigrations, "migrations/postgres")
}

func (postgresDialect) placeholder(n int) string { return "$" + strconv.Itoa(n) }

func (postgresDialect) contains(column, arg string) string {
	return fmt.Sprintf("strpos(trim(%s), %s) > 0", column, arg)
}

func (postgresDialect) dateEq(column, arg string) string {
	return fmt.Sprintf("%s = CAST(%s AS DATE)", column, arg)
}

func (postgresDialect) window(take, skip int) string {
	var b strings.Builder
	if take >= 0 {
		fmt.Fprintf(&b, " LIMIT %d", take)
	}
	if skip > 0 {
		fmt.Fprintf(&b, " OFFSET %d", skip)
	}
	return b.String()
}

// PostgreSQL SQLSTATE codes for integrity failures.
const (
	pgForeignKeyViolation = "23503"
	pgNotNullViolation    = "23502"
	pgCheckViolation      = "23514"
	pgStringTooLong       = "22001"
)

func (postgresDialect) isConstraintViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case pgForeignKeyViolation, pgNotNullViolation, pgCheckViolation, pgStringTooLong:
		return true
	default:
		return false
	}
}

type sqliteDialect struct{}

func (sqliteDialect) driverName() string { return "sqlite" }

func (sqliteDialect) gooseDialect() goose.Dialect { return goose.DialectSQLite3 }

func (sqliteDialect) migrations() (fs.FS, error) {
	return fs.Sub(embedMigrations, "migrations/sqlite")
}

func (sqliteDialect) placeholder(int) string { return "?" }

func (sqliteDialect) contains(column, arg string) string {
	return fmt.Sprintf("instr(trim(%s), %s) > 0", column, arg)
}

func (sqliteDialect) dateEq(column, arg string) string {
	return fmt.Sprintf("date(%s) = date(%s)", column, arg)
}

func (sqliteDialect) window(take, skip int) string {
	if take < 0 && skip <= 0 {
		return ""
	}
	// SQLite only accepts OFFSET after a LIMIT; -1 means no limit.
	if take < 0 {
		take = -1
	}
	s := fmt.Sprintf(" LIMIT %d", take)
	if skip > 0 {
		s += fmt.Sprintf(" OFFSET %d", skip)
	}
	return s
}

func (sqliteDialect) isConstraintViolation(err error) bool {
	var sqliteErr *sqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	// Extended result codes keep the primary code in the low byte.
	return sqliteErr.Code()&0xff == sqlite3.SQLITE_CONSTRAINT
}
