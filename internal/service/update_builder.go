package service

import (
	"slices"
	"strings"

	"github.com/pkg/errors"
)

type assignment struct {
	column string // Allow-listed column
	value  any    // Bound value
}

// updateBuilder renders a parameterized UPDATE for one row. Table, key and columns are
// fixed by the caller; only allow-listed columns can be assigned and values are always bound.
type updateBuilder struct {
	table       string       // Target table
	key         string       // Key column of the WHERE clause
	allowed     []string     // Columns Set accepts
	assignments []assignment // SET clause in assignment order
}

func newUpdateBuilder(table, key string, allowed ...string) *updateBuilder {
	return &updateBuilder{table: table, key: key, allowed: allowed}
}

// Set assigns column, replacing an earlier assignment of the same column.
func (b *updateBuilder) Set(column string, value any) error {
	if !slices.Contains(b.allowed, column) {
		return errors.Errorf("column %q is not updatable on %s", column, b.table)
	}
	for i := range b.assignments {
		if b.assignments[i].column == column {
			b.assignments[i].value = value // Last assignment wins
			return nil
		}
	}
	b.assignments = append(b.assignments, assignment{column: column, value: value})
	return nil
}

func (b *updateBuilder) Empty() bool {
	return len(b.assignments) == 0
}

// Columns lists assigned columns in assignment order.
func (b *updateBuilder) Columns() []string {
	cols := make([]string, len(b.assignments))
	for i, a := range b.assignments {
		cols[i] = a.column
	}
	return cols
}

// Build returns the statement and its arguments, the key value last.
func (b *updateBuilder) Build(keyValue any) (string, []any) {
	sets := make([]string, len(b.assignments))
	args := make([]any, 0, len(b.assignments)+1)
	for i, a := range b.assignments {
		sets[i] = a.column + " = ?"
		args = append(args, a.value)
	}
	args = append(args, keyValue) // WHERE placeholder comes last
	return "UPDATE " + b.table + " SET " + strings.Join(sets, ", ") + " WHERE " + b.key + " = ?", args
}
