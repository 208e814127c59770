package sqlstore

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rezkam/todolist/internal/storage"
)

var tracer = otel.Tracer("github.com/rezkam/todolist/internal/storage/sqlstore")

type changeKind int

const (
	changeAdd changeKind = iota
	changeUpdate
	changeRemove
)

func (k changeKind) String() string {
	switch k {
	case changeAdd:
		return "add"
	case changeUpdate:
		return "update"
	default:
		return "remove"
	}
}

type change[E any] struct {
	kind   changeKind
	entity *E
}

// Repository is the SQL unit of work for one entity kind.
type Repository[E any] struct {
	db      *sql.DB
	dialect dialect
	schema  *Schema[E]
	pending []change[E]
}

var _ storage.Repository[struct{}] = (*Repository[struct{}])(nil)

// NewRepository returns an empty unit of work over the given schema.
func NewRepository[E any](s *Store, schema *Schema[E]) *Repository[E] {
	return &Repository[E]{db: s.db, dialect: s.dialect, schema: schema}
}

// FindByID returns storage.ErrNotFound when no row has the id.
func (r *Repository[E]) FindByID(ctx context.Context, id int64) (E, error) {
	var zero E
	rows, err := r.Query().Where(storage.Eq("id", id)).Take(1).List(ctx)
	if err != nil {
		return zero, err
	}
	if len(rows) == 0 {
		return zero, fmt.Errorf("%w: %s %d", storage.ErrNotFound, r.schema.Table, id)
	}
	return rows[0], nil
}

// Query starts a query over the whole table.
func (r *Repository[E]) Query() storage.Query[E] {
	return &query[E]{repo: r, take: -1}
}

func (r *Repository[E]) Add(entity *E) {
	r.pending = append(r.pending, change[E]{kind: changeAdd, entity: entity})
}

func (r *Repository[E]) Update(entity *E) {
	r.pending = append(r.pending, change[E]{kind: changeUpdate, entity: entity})
}

func (r *Repository[E]) Remove(entity *E) {
	r.pending = append(r.pending, change[E]{kind: changeRemove, entity: entity})
}

// Pending returns the number of staged changes.
func (r *Repository[E]) Pending() int {
	return len(r.pending)
}

// Save applies staged changes in one transaction. Staged changes are dropped
// whether or not the transaction commits.
func (r *Repository[E]) Save(ctx context.Context) (err error) {
	if len(r.pending) == 0 {
		return nil
	}
	pending := r.pending
	r.pending = nil

	ctx, span := tracer.Start(ctx, "sqlstore.Save", trace.WithAttributes(
		attribute.String("db.sql.table", r.schema.Table),
		attribute.Int("db.changes", len(pending)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	start := time.Now().UTC()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	var added []*E
	defer func() {
		if p := recover(); p != nil {
			slog.ErrorContext(ctx, "transaction panic, rolling back", "table", r.schema.Table, "panic", p)
			if rbErr := tx.Rollback(); rbErr != nil {
				slog.ErrorContext(ctx, "rollback after panic failed", "table", r.schema.Table, "rollback_error", rbErr)
			}
			panic(p)
		}

		finalizeTx(ctx, tx, &err)
		if err != nil {
			// Ids handed out inside a rolled back transaction do not exist.
			for _, e := range added {
				r.schema.SetID(e, 0)
			}
			return
		}
		slog.DebugContext(ctx, "transaction completed",
			"table", r.schema.Table,
			"changes", len(pending),
			"duration_ms", time.Since(start).Milliseconds())
	}()

	for _, c := range pending {
		if err = r.apply(ctx, tx, c); err != nil {
			return err
		}
		if c.kind == changeAdd {
			added = append(added, c.entity)
		}
	}
	return nil
}

func (r *Repository[E]) apply(ctx context.Context, tx *sql.Tx, c change[E]) error {
	switch c.kind {
	case changeAdd:
		args, err := bindArgs(r.schema.Values(c.entity))
		if err != nil {
			return err
		}
		var id int64
		if err := tx.QueryRowContext(ctx, r.schema.insertSQL(r.dialect), args...).Scan(&id); err != nil {
			return r.classify(c.kind, err)
		}
		r.schema.SetID(c.entity, id)
		return nil

	case changeUpdate:
		args, err := bindArgs(append(r.schema.Values(c.entity), r.schema.ID(c.entity)))
		if err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, r.schema.updateSQL(r.dialect), args...)
		if err != nil {
			return r.classify(c.kind, err)
		}
		return checkRowsAffected(res, r.schema.Table, r.schema.ID(c.entity))

	case changeRemove:
		res, err := tx.ExecContext(ctx, r.schema.deleteSQL(r.dialect), r.schema.ID(c.entity))
		if err != nil {
			return r.classify(c.kind, err)
		}
		return checkRowsAffected(res, r.schema.Table, r.schema.ID(c.entity))
	}
	return fmt.Errorf("unknown change kind %d", c.kind)
}

func (r *Repository[E]) classify(kind changeKind, err error) error {
	if r.dialect.isConstraintViolation(err) {
		return fmt.Errorf("%w: %s %s: %w", storage.ErrConstraint, kind, r.schema.Table, err)
	}
	return fmt.Errorf("failed to %s %s: %w", kind, r.schema.Table, err)
}

// checkRowsAffected reports storage.ErrConflict when a write matched no row.
func checkRowsAffected(res sql.Result, table string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %d", storage.ErrConflict, table, id)
	}
	return nil
}

// finalizeTx rolls back on error and commits otherwise.
func finalizeTx(ctx context.Context, tx *sql.Tx, err *error) {
	if *err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			slog.ErrorContext(ctx, "rollback failed",
				"original_error", *err,
				"rollback_error", rbErr)
			*err = fmt.Errorf("transaction failed: %w (rollback error: %v)", *err, rbErr)
		}
		return
	}
	if cErr := tx.Commit(); cErr != nil {
		slog.ErrorContext(ctx, "transaction commit failed", "error", cErr)
		*err = fmt.Errorf("failed to commit transaction: %w", cErr)
	}
}

// bindArgs resolves driver.Valuer arguments up front so every driver receives
// plain values. pgx picks the wire format from the Go type, and a plain string
// lets PostgreSQL parse dates itself.
func bindArgs(args []any) ([]any, error) {
	out := make([]any, len(args))
	for i, a := range args {
		v, ok := a.(driver.Valuer)
		if !ok {
			out[i] = a
			continue
		}
		resolved, err := v.Value()
		if err != nil {
			return nil, fmt.Errorf("invalid argument %d: %w", i+1, err)
		}
		out[i] = resolved
	}
	return out, nil
}
