package storage

import (
	"fmt"
	"strings"
)

// Op is a comparison supported by every store.
type Op int

const (
	// OpEq matches values that are exactly equal.
	OpEq Op = iota + 1
	// OpContains matches when the trimmed column contains Value (case-sensitive).
	OpContains
	// OpDateEq matches when the column falls on the same calendar day as Value.
	OpDateEq
)

func (o Op) String() string {
	switch o {
	case OpEq:
		return "eq"
	case OpContains:
		return "contains"
	case OpDateEq:
		return "date_eq"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Cond is a single condition on a field. Conditions passed to Where are
// combined with AND.
type Cond struct {
	Field string
	Op    Op
	Value any
}

func (c Cond) String() string {
	return fmt.Sprintf("%s %s %v", c.Field, c.Op, c.Value)
}

// Eq matches rows whose field equals value.
func Eq(field string, value any) Cond {
	return Cond{Field: field, Op: OpEq, Value: value}
}

// Contains matches rows whose trimmed field contains the trimmed substring.
func Contains(field, substr string) Cond {
	return Cond{Field: field, Op: OpContains, Value: strings.TrimSpace(substr)}
}

// DateEq matches rows whose field is on the same day as value.
func DateEq(field string, value any) Cond {
	return Cond{Field: field, Op: OpDateEq, Value: value}
}
