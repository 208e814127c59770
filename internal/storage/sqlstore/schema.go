package sqlstore

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/rezkam/todolist/internal/domain"
)

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// Schema maps an entity kind onto a table. The id column is always "id" and
// is assigned by the database.
type Schema[E any] struct {
	Table string

	// Columns lists the writable columns in the order Values returns them.
	Columns []string

	// Fields maps query field names onto columns.
	Fields map[string]string

	ID     func(*E) int64
	SetID  func(*E, int64)
	Values func(*E) []any

	// Scan reads the id column followed by Columns.
	Scan func(rowScanner) (E, error)
}

func (s *Schema[E]) column(field string) (string, bool) {
	col, ok := s.Fields[field]
	return col, ok
}

func (s *Schema[E]) selectList() string {
	return "id, " + strings.Join(s.Columns, ", ")
}

func (s *Schema[E]) insertSQL(d dialect) string {
	marks := make([]string, len(s.Columns))
	for i := range s.Columns {
		marks[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		s.Table, strings.Join(s.Columns, ", "), strings.Join(marks, ", "))
}

func (s *Schema[E]) updateSQL(d dialect) string {
	sets := make([]string, len(s.Columns))
	for i, col := range s.Columns {
		sets[i] = col + " = " + d.placeholder(i+1)
	}
	return fmt.Sprintf("UPDATE %s SET %s WHERE id = %s",
		s.Table, strings.Join(sets, ", "), d.placeholder(len(s.Columns)+1))
}

func (s *Schema[E]) deleteSQL(d dialect) string {
	return fmt.Sprintf("DELETE FROM %s WHERE id = %s", s.Table, d.placeholder(1))
}

// ListSchema maps domain.List onto the lists table.
var ListSchema = &Schema[domain.List]{
	Table:   "lists",
	Columns: []string{"title", "description"},
	Fields: map[string]string{
		domain.FieldID:          "id",
		domain.FieldTitle:       "title",
		domain.FieldDescription: "description",
	},
	ID:    func(l *domain.List) int64 { return l.ID },
	SetID: func(l *domain.List, id int64) { l.ID = id },
	Values: func(l *domain.List) []any {
		return []any{l.Title, nullString(l.Description)}
	},
	Scan: func(row rowScanner) (domain.List, error) {
		var (
			l    domain.List
			desc sql.NullString
		)
		if err := row.Scan(&l.ID, &l.Title, &desc); err != nil {
			return domain.List{}, err
		}
		l.Description = desc.String
		return l, nil
	},
}

// ItemSchema maps domain.Item onto the items table.
var ItemSchema = &Schema[domain.Item]{
	Table:   "items",
	Columns: []string{"title", "content", "due_date", "done", "list_id"},
	Fields: map[string]string{
		domain.FieldID:      "id",
		domain.FieldTitle:   "title",
		domain.FieldContent: "content",
		domain.FieldDueDate: "due_date",
		domain.FieldDone:    "done",
		domain.FieldListID:  "list_id",
	},
	ID:    func(i *domain.Item) int64 { return i.ID },
	SetID: func(i *domain.Item, id int64) { i.ID = id },
	Values: func(i *domain.Item) []any {
		return []any{i.Title, i.Content, i.DueDate.String(), i.Done, i.ListID}
	},
	Scan: func(row rowScanner) (domain.Item, error) {
		var i domain.Item
		if err := row.Scan(&i.ID, &i.Title, &i.Content, &i.DueDate, &i.Done, &i.ListID); err != nil {
			return domain.Item{}, err
		}
		return i, nil
	},
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
