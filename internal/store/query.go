package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// ErrUnfiltered is returned when Update or Delete is called without an Eq
// filter. Whole-table writes are never issued.
var ErrUnfiltered = errors.New("update and delete require a filter")

// Join describes a related-row projection: the row referenced by Key is
// left-joined and Columns of it are selected as Alias. Multiple columns are
// joined with a space, which is how person names are embedded.
type Join struct {
	Alias   string
	Key     string
	Table   string
	Columns []string
}

// Ordering is one ORDER BY term.
type Ordering struct {
	Column     string
	Descending bool
	NullsFirst bool
}

// Asc orders by column ascending with nulls last.
func Asc(column string) Ordering {
	return Ordering{Column: column}
}

// Desc orders by column descending with nulls last.
func Desc(column string) Ordering {
	return Ordering{Column: column, Descending: true}
}

type filter struct {
	column string
	value  any
}

// Query builds and runs one statement against a single table. A Query is
// not safe for concurrent use; start a new one per call with DB.From.
type Query struct {
	exec    Executor
	table   string
	columns []string
	joins   []Join
	filters []filter
	orders  []Ordering
}

// NewQuery starts a query on table using exec.
func NewQuery(exec Executor, table string) *Query {
	return &Query{exec: exec, table: table}
}

// Table returns the table the query targets.
func (q *Query) Table() string {
	return q.table
}

// Select sets the table columns that reads and RETURNING clauses project.
// Without Select every column is returned.
func (q *Query) Select(columns ...string) *Query {
	q.columns = append(q.columns, columns...)
	return q
}

// Embed adds related-row projections to reads.
func (q *Query) Embed(joins ...Join) *Query {
	q.joins = append(q.joins, joins...)
	return q
}

// Eq filters rows to those where column equals value.
func (q *Query) Eq(column string, value any) *Query {
	q.filters = append(q.filters, filter{column: column, value: value})
	return q
}

// Order appends ORDER BY terms. Columns may name an embed alias.
func (q *Query) Order(orders ...Ordering) *Query {
	q.orders = append(q.orders, orders...)
	return q
}

// Single reads exactly one row into dest. No match is a NotFound *Error.
func (q *Query) Single(ctx context.Context, dest any) error {
	query, args := q.selectSQL()
	if err := q.exec.GetContext(ctx, dest, q.exec.Rebind(query), args...); err != nil {
		return classify(q.table, err)
	}
	return nil
}

// Many reads every matching row into dest, a pointer to a slice.
func (q *Query) Many(ctx context.Context, dest any) error {
	query, args := q.selectSQL()
	if err := q.exec.SelectContext(ctx, dest, q.exec.Rebind(query), args...); err != nil {
		return classify(q.table, err)
	}
	return nil
}

// Insert writes rec as one row. When dest is non-nil the inserted row is
// read back into it.
func (q *Query) Insert(ctx context.Context, rec Record, dest any) error {
	if rec.Len() == 0 {
		return fmt.Errorf("inserting into %s: empty record", q.table)
	}
	marks := make([]string, rec.Len())
	for i := range marks {
		marks[i] = "?"
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		q.table, strings.Join(rec.Columns(), ", "), strings.Join(marks, ", "))
	return q.write(ctx, query, rec.Values(), dest)
}

// Update overwrites the columns in rec on rows matching the filters. When
// dest is non-nil the updated row is read back into it. No match is a
// NotFound *Error.
func (q *Query) Update(ctx context.Context, rec Record, dest any) error {
	if len(q.filters) == 0 {
		return ErrUnfiltered
	}
	if rec.Len() == 0 {
		return fmt.Errorf("updating %s: empty record", q.table)
	}
	sets := make([]string, rec.Len())
	for i, col := range rec.Columns() {
		sets[i] = col + " = ?"
	}
	where, whereArgs := q.whereSQL("")
	query := fmt.Sprintf("UPDATE %s SET %s%s", q.table, strings.Join(sets, ", "), where)
	return q.write(ctx, query, append(rec.Values(), whereArgs...), dest)
}

// Delete removes rows matching the filters. No match is a NotFound *Error.
func (q *Query) Delete(ctx context.Context) error {
	if len(q.filters) == 0 {
		return ErrUnfiltered
	}
	where, args := q.whereSQL("")
	return q.write(ctx, "DELETE FROM "+q.table+where, args, nil)
}

func (q *Query) write(ctx context.Context, query string, args []any, dest any) error {
	if dest != nil {
		query += " RETURNING " + strings.Join(q.returning(), ", ")
		if err := q.exec.GetContext(ctx, dest, q.exec.Rebind(query), args...); err != nil {
			return classify(q.table, err)
		}
		return nil
	}

	res, err := q.exec.ExecContext(ctx, q.exec.Rebind(query), args...)
	if err != nil {
		return classify(q.table, err)
	}
	if len(q.filters) == 0 {
		return nil
	}
	n, err := res.RowsAffected()
	if err != nil {
		return classify(q.table, err)
	}
	if n == 0 {
		return classify(q.table, sql.ErrNoRows)
	}
	return nil
}

func (q *Query) returning() []string {
	if len(q.columns) == 0 {
		return []string{"*"}
	}
	return q.columns
}

func (q *Query) selectSQL() (string, []any) {
	var cols []string
	if len(q.columns) == 0 {
		cols = append(cols, q.table+".*")
	}
	for _, c := range q.columns {
		cols = append(cols, q.table+"."+c)
	}

	var from strings.Builder
	from.WriteString(q.table)
	for i, j := range q.joins {
		alias := fmt.Sprintf("j%d", i)
		parts := make([]string, len(j.Columns))
		for k, c := range j.Columns {
			parts[k] = alias + "." + c
		}
		expr := strings.Join(parts, " || ' ' || ")
		if len(parts) > 1 {
			expr = "(" + expr + ")"
		}
		cols = append(cols, expr+" AS "+j.Alias)
		fmt.Fprintf(&from, " LEFT JOIN %s %s ON %s.id = %s.%s", j.Table, alias, alias, q.table, j.Key)
	}

	where, args := q.whereSQL(q.table + ".")
	query := "SELECT " + strings.Join(cols, ", ") + " FROM " + from.String() + where
	if len(q.orders) > 0 {
		terms := make([]string, len(q.orders))
		for i, o := range q.orders {
			terms[i] = q.orderTerm(o)
		}
		query += " ORDER BY " + strings.Join(terms, ", ")
	}
	return query, args
}

func (q *Query) whereSQL(prefix string) (string, []any) {
	if len(q.filters) == 0 {
		return "", nil
	}
	conds := make([]string, len(q.filters))
	args := make([]any, len(q.filters))
	for i, f := range q.filters {
		conds[i] = prefix + f.column + " = ?"
		args[i] = f.value
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (q *Query) orderTerm(o Ordering) string {
	col := o.Column
	if !q.isAlias(col) {
		col = q.table + "." + col
	}
	term := col + " ASC"
	if o.Descending {
		term = col + " DESC"
	}
	if o.NullsFirst {
		return term + " NULLS FIRST"
	}
	return term + " NULLS LAST"
}

func (q *Query) isAlias(column string) bool {
	for _, j := range q.joins {
		if j.Alias == column {
			return true
		}
	}
	return false
}
