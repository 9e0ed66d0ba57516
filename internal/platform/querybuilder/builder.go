// Package querybuilder renders the small set of Postgres statements the
// repositories issue, numbering $n placeholders in argument order.
package querybuilder

import (
	"fmt"
	"strconv"
	"strings"
)

// binder collects statement arguments and hands out their placeholders.
type binder struct {
	args []any
}

func (b *binder) bind(value any) string {
	b.args = append(b.args, value)
	return "$" + strconv.Itoa(len(b.args))
}

// expand replaces each '?' in expr with the placeholder of the matching arg.
// Extra '?' are kept literally.
func (b *binder) expand(expr string, args []any) string {
	if len(args) == 0 {
		return expr
	}
	var out strings.Builder
	for i := 0; i < len(expr); i++ {
		if expr[i] == '?' && len(args) > 0 {
			out.WriteString(b.bind(args[0]))
			args = args[1:]
			continue
		}
		out.WriteByte(expr[i])
	}
	return out.String()
}

type Condition interface {
	render(b *binder) string
}

type eqCondition struct {
	column string
	value  any
}

func Eq(column string, value any) Condition {
	return eqCondition{column: column, value: value}
}

func (c eqCondition) render(b *binder) string {
	return c.column + " = " + b.bind(c.value)
}

type isNullCondition string

func IsNull(column string) Condition {
	return isNullCondition(column)
}

func (c isNullCondition) render(*binder) string {
	return string(c) + " IS NULL"
}

func writeWhere(buf *strings.Builder, b *binder, conditions []Condition) {
	for i, c := range conditions {
		if i == 0 {
			buf.WriteString(" WHERE ")
		} else {
			buf.WriteString(" AND ")
		}
		buf.WriteString(c.render(b))
	}
}

type SelectBuilder struct {
	columns []string
	table   string
	where   []Condition
	orderBy []string
}

func Select(columns ...string) *SelectBuilder {
	return &SelectBuilder{columns: append([]string(nil), columns...)}
}

func (s *SelectBuilder) From(table string) *SelectBuilder {
	s.table = table
	return s
}

func (s *SelectBuilder) Where(conditions ...Condition) *SelectBuilder {
	s.where = append(s.where, conditions...)
	return s
}

func (s *SelectBuilder) OrderBy(parts ...string) *SelectBuilder {
	s.orderBy = append(s.orderBy, parts...)
	return s
}

func (s *SelectBuilder) ToSQL() (string, []any, error) {
	if len(s.columns) == 0 {
		return "", nil, fmt.Errorf("select columns are required")
	}
	if strings.TrimSpace(s.table) == "" {
		return "", nil, fmt.Errorf("select table is required")
	}

	var (
		buf strings.Builder
		b   binder
	)
	fmt.Fprintf(&buf, "SELECT %s FROM %s", strings.Join(s.columns, ", "), s.table)
	writeWhere(&buf, &b, s.where)
	if len(s.orderBy) > 0 {
		buf.WriteString(" ORDER BY " + strings.Join(s.orderBy, ", "))
	}
	return buf.String(), b.args, nil
}

type InsertBuilder struct {
	table   string
	columns []string
	values  []any
	suffix  string
}

func InsertInto(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append([]string(nil), columns...)
	return i
}

func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append([]any(nil), values...)
	return i
}

// Suffix appends raw SQL such as an ON CONFLICT clause.
func (i *InsertBuilder) Suffix(sql string) *InsertBuilder {
	i.suffix = strings.TrimSpace(sql)
	return i
}

func (i *InsertBuilder) ToSQL() (string, []any, error) {
	switch {
	case strings.TrimSpace(i.table) == "":
		return "", nil, fmt.Errorf("insert table is required")
	case len(i.columns) == 0:
		return "", nil, fmt.Errorf("insert columns are required")
	case len(i.values) != len(i.columns):
		return "", nil, fmt.Errorf("insert has %d values for %d columns", len(i.values), len(i.columns))
	}

	var b binder
	placeholders := make([]string, len(i.values))
	for idx, v := range i.values {
		placeholders[idx] = b.bind(v)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		i.table, strings.Join(i.columns, ", "), strings.Join(placeholders, ", "))
	if i.suffix != "" {
		query += " " + i.suffix
	}
	return query, b.args, nil
}

type assignment struct {
	column string
	value  any
	expr   string
	raw    bool
}

type UpdateBuilder struct {
	table string
	sets  []assignment
	where []Condition
}

func Update(table string) *UpdateBuilder {
	return &UpdateBuilder{table: table}
}

func (u *UpdateBuilder) Set(column string, value any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, value: value})
	return u
}

// SetExpr assigns a SQL expression; '?' in expr binds args in order.
func (u *UpdateBuilder) SetExpr(column, expr string, args ...any) *UpdateBuilder {
	u.sets = append(u.sets, assignment{column: column, expr: expr, value: args, raw: true})
	return u
}

func (u *UpdateBuilder) Where(conditions ...Condition) *UpdateBuilder {
	u.where = append(u.where, conditions...)
	return u
}

func (u *UpdateBuilder) ToSQL() (string, []any, error) {
	if strings.TrimSpace(u.table) == "" {
		return "", nil, fmt.Errorf("update table is required")
	}
	if len(u.sets) == 0 {
		return "", nil, fmt.Errorf("update sets are required")
	}

	var (
		buf strings.Builder
		b   binder
	)
	buf.WriteString("UPDATE " + u.table + " SET ")
	for idx, set := range u.sets {
		if idx > 0 {
			buf.WriteString(", ")
		}
		buf.WriteString(set.column + " = ")
		if set.raw {
			args, _ := set.value.([]any)
			buf.WriteString(b.expand(set.expr, args))
			continue
		}
		buf.WriteString(b.bind(set.value))
	}
	writeWhere(&buf, &b, u.where)
	return buf.String(), b.args, nil
}
