package query

import (
	"fmt"
	"regexp"
	"strings"
)

var columnName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*(\.[a-zA-Z_][a-zA-Z0-9_]*)?$`)

// FilterPredicate builds a WHERE clause with bound parameters. Column names
// are checked against a plain identifier pattern; values never reach the SQL
// text.
type FilterPredicate struct {
	predicate strings.Builder
	args      []any
	err       error
}

func NewFilterPredicate() *FilterPredicate {
	return &FilterPredicate{}
}

func (fp *FilterPredicate) Open() *FilterPredicate {
	fp.predicate.WriteString("(")
	return fp
}

func (fp *FilterPredicate) Close() *FilterPredicate {
	fp.predicate.WriteString(")")
	return fp
}

func (fp *FilterPredicate) And() *FilterPredicate {
	fp.predicate.WriteString(" AND ")
	return fp
}

func (fp *FilterPredicate) Or() *FilterPredicate {
	fp.predicate.WriteString(" OR ")
	return fp
}

func (fp *FilterPredicate) Not() *FilterPredicate {
	fp.predicate.WriteString("NOT ")
	return fp
}

func (fp *FilterPredicate) Equal(column string, value any) *FilterPredicate {
	return fp.compare(column, "=", value)
}

func (fp *FilterPredicate) NotEqual(column string, value any) *FilterPredicate {
	return fp.compare(column, "<>", value)
}

func (fp *FilterPredicate) GreaterThan(column string, value any) *FilterPredicate {
	return fp.compare(column, ">", value)
}

func (fp *FilterPredicate) LessThan(column string, value any) *FilterPredicate {
	return fp.compare(column, "<", value)
}

func (fp *FilterPredicate) Between(column string, v1, v2 any) *FilterPredicate {
	if !fp.column(column) {
		return fp
	}
	fp.predicate.WriteString(column + " BETWEEN ? AND ?")
	fp.args = append(fp.args, v1, v2)
	return fp
}

// In matches any of values. An empty list matches nothing.
func (fp *FilterPredicate) In(column string, values ...any) *FilterPredicate {
	if !fp.column(column) {
		return fp
	}
	if len(values) == 0 {
		fp.predicate.WriteString("1 = 0")
		return fp
	}
	fp.predicate.WriteString(column + " IN ?")
	fp.args = append(fp.args, values)
	return fp
}

// Like matches column values containing pattern, case-insensitively.
func (fp *FilterPredicate) Like(column, pattern string) *FilterPredicate {
	if !fp.column(column) {
		return fp
	}
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	fp.predicate.WriteString(column + " ILIKE ?")
	fp.args = append(fp.args, "%"+r.Replace(pattern)+"%")
	return fp
}

func (fp *FilterPredicate) IsNull(column string) *FilterPredicate {
	if fp.column(column) {
		fp.predicate.WriteString(column + " IS NULL")
	}
	return fp
}

// Empty reports whether no condition has been added.
func (fp *FilterPredicate) Empty() bool {
	return fp.predicate.Len() == 0
}

// Build returns the clause and its arguments in placeholder order, or the
// first invalid column error.
func (fp *FilterPredicate) Build() (string, []any, error) {
	if fp.err != nil {
		return "", nil, fp.err
	}
	return fp.predicate.String(), fp.args, nil
}

func (fp *FilterPredicate) compare(column, op string, value any) *FilterPredicate {
	if !fp.column(column) {
		return fp
	}
	fp.predicate.WriteString(column + " " + op + " ?")
	fp.args = append(fp.args, value)
	return fp
}

func (fp *FilterPredicate) column(name string) bool {
	if columnName.MatchString(name) {
		return true
	}
	if fp.err == nil {
		fp.err = fmt.Errorf("query: invalid column name %q", name)
	}
	return false
}
