package sqlstore

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/rezkam/todolist/internal/storage"
)

type order struct {
	field string
	dir   storage.Direction
}

// query is an immutable SQL query builder. Methods copy the receiver so a
// partially built query can be shared between Count and List.
type query[E any] struct {
	repo   *Repository[E]
	conds  []storage.Cond
	orders []order
	skip   int
	take   int // -1 means unbounded
}

func (q *query[E]) clone() *query[E] {
	c := *q
	c.conds = append([]storage.Cond(nil), q.conds...)
	c.orders = append([]order(nil), q.orders...)
	return &c
}

func (q *query[E]) Where(cond storage.Cond) storage.Query[E] {
	c := q.clone()
	c.conds = append(c.conds, cond)
	return c
}

func (q *query[E]) OrderBy(field string, dir storage.Direction) storage.Query[E] {
	c := q.clone()
	c.orders = append(c.orders, order{field: field, dir: dir})
	return c
}

func (q *query[E]) Skip(n int) storage.Query[E] {
	c := q.clone()
	c.skip = max(n, 0)
	return c
}

func (q *query[E]) Take(n int) storage.Query[E] {
	c := q.clone()
	c.take = max(n, 0)
	return c
}

func (q *query[E]) Count(ctx context.Context) (n int, err error) {
	where, args, err := q.where()
	if err != nil {
		return 0, err
	}
	stmt := fmt.Sprintf("SELECT COUNT(*) FROM %s%s", q.repo.schema.Table, where)

	ctx, span := q.startSpan(ctx, "sqlstore.Count")
	defer func() { endSpan(span, err) }()

	if err := q.repo.db.QueryRowContext(ctx, stmt, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", q.repo.schema.Table, err)
	}
	return n, nil
}

func (q *query[E]) Any(ctx context.Context) (found bool, err error) {
	where, args, err := q.where()
	if err != nil {
		return false, err
	}
	stmt := fmt.Sprintf("SELECT EXISTS (SELECT 1 FROM %s%s)", q.repo.schema.Table, where)

	ctx, span := q.startSpan(ctx, "sqlstore.Any")
	defer func() { endSpan(span, err) }()

	if err := q.repo.db.QueryRowContext(ctx, stmt, args...).Scan(&found); err != nil {
		return false, fmt.Errorf("failed to probe %s: %w", q.repo.schema.Table, err)
	}
	return found, nil
}

func (q *query[E]) List(ctx context.Context) (out []E, err error) {
	where, args, err := q.where()
	if err != nil {
		return nil, err
	}
	orderBy, err := q.orderBy()
	if err != nil {
		return nil, err
	}
	stmt := fmt.Sprintf("SELECT %s FROM %s%s%s%s",
		q.repo.schema.selectList(), q.repo.schema.Table, where, orderBy,
		q.repo.dialect.window(q.take, q.skip))

	ctx, span := q.startSpan(ctx, "sqlstore.List")
	defer func() { endSpan(span, err) }()

	rows, err := q.repo.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", q.repo.schema.Table, err)
	}
	defer rows.Close()

	out = []E{}
	for rows.Next() {
		e, err := q.repo.schema.Scan(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", q.repo.schema.Table, err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate %s rows: %w", q.repo.schema.Table, err)
	}
	return out, nil
}

// where renders the WHERE clause and its arguments.
func (q *query[E]) where() (string, []any, error) {
	if len(q.conds) == 0 {
		return "", nil, nil
	}
	d := q.repo.dialect
	parts := make([]string, 0, len(q.conds))
	args := make([]any, 0, len(q.conds))

	for _, c := range q.conds {
		col, ok := q.repo.schema.column(c.Field)
		if !ok {
			return "", nil, fmt.Errorf("%w: %s.%s", storage.ErrUnknownField, q.repo.schema.Table, c.Field)
		}
		bound, err := bindArgs([]any{c.Value})
		if err != nil {
			return "", nil, err
		}
		args = append(args, bound[0])
		arg := d.placeholder(len(args))

		switch c.Op {
		case storage.OpEq:
			parts = append(parts, col+" = "+arg)
		case storage.OpContains:
			parts = append(parts, d.contains(col, arg))
		case storage.OpDateEq:
			parts = append(parts, d.dateEq(col, arg))
		default:
			return "", nil, fmt.Errorf("unsupported operator %s on %s.%s", c.Op, q.repo.schema.Table, c.Field)
		}
	}
	return " WHERE " + strings.Join(parts, " AND "), args, nil
}

func (q *query[E]) orderBy() (string, error) {
	if len(q.orders) == 0 {
		return "", nil
	}
	parts := make([]string, 0, len(q.orders))
	for _, o := range q.orders {
		col, ok := q.repo.schema.column(o.field)
		if !ok {
			return "", fmt.Errorf("%w: %s.%s", storage.ErrUnknownField, q.repo.schema.Table, o.field)
		}
		parts = append(parts, col+" "+o.dir.String())
	}
	return " ORDER BY " + strings.Join(parts, ", "), nil
}

func (q *query[E]) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name, trace.WithAttributes(
		attribute.String("db.sql.table", q.repo.schema.Table),
		attribute.Int("db.conditions", len(q.conds)),
	))
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}
