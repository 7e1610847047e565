package query

import "strings"

// Builder accumulates parameterized SQL conditions for one query.
// Every condition is a "column OP ?" fragment with its value carried
// separately in the argument list, and every column name is checked
// against a closed per-entity allow-list before it reaches SQL text.
// Conditions on unknown columns are dropped.
type Builder struct {
	allowed map[string]struct{}
	conds   []string
	args    []any
}

// NewBuilder creates a builder restricted to the given column names
func NewBuilder(columns []string) *Builder {
	allowed := make(map[string]struct{}, len(columns))
	for _, c := range columns {
		allowed[c] = struct{}{}
	}
	return &Builder{allowed: allowed}
}

// Like adds a substring match condition
func (b *Builder) Like(column, value string) *Builder {
	return b.add(column, column+" LIKE ?", "%"+value+"%")
}

// Equal adds an equality condition
func (b *Builder) Equal(column string, value any) *Builder {
	return b.add(column, column+" = ?", value)
}

// GreaterThan adds a strict lower-bound condition
func (b *Builder) GreaterThan(column string, value any) *Builder {
	return b.add(column, column+" > ?", value)
}

// AtLeast adds an inclusive lower-bound condition
func (b *Builder) AtLeast(column string, value any) *Builder {
	return b.add(column, column+" >= ?", value)
}

// AtMost adds an inclusive upper-bound condition
func (b *Builder) AtMost(column string, value any) *Builder {
	return b.add(column, column+" <= ?", value)
}

func (b *Builder) add(column, cond string, value any) *Builder {
	if _, ok := b.allowed[column]; !ok {
		return b
	}
	b.conds = append(b.conds, cond)
	b.args = append(b.args, value)
	return b
}

// Where returns the assembled WHERE clause, or the empty string when
// no conditions were added
func (b *Builder) Where() string {
	if len(b.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(b.conds, " AND ")
}

// Args returns the condition values in the order they were added
func (b *Builder) Args() []any {
	return b.args
}
