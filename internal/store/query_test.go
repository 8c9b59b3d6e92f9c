package store

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingExecutor captures statements without running them.
type recordingExecutor struct {
	queries []string
	args    [][]any
	err     error
	rows    int64
}

func (r *recordingExecutor) GetContext(_ context.Context, _ any, query string, args ...any) error {
	r.queries = append(r.queries, query)
	r.args = append(r.args, args)
	return r.err
}

func (r *recordingExecutor) SelectContext(_ context.Context, _ any, query string, args ...any) error {
	r.queries = append(r.queries, query)
	r.args = append(r.args, args)
	return r.err
}

func (r *recordingExecutor) ExecContext(_ context.Context, query string, args ...any) (sql.Result, error) {
	r.queries = append(r.queries, query)
	r.args = append(r.args, args)
	return driverResult(r.rows), r.err
}

func (r *recordingExecutor) Rebind(query string) string {
	return query
}

type driverResult int64

func (d driverResult) LastInsertId() (int64, error) { return 0, nil }
func (d driverResult) RowsAffected() (int64, error) { return int64(d), nil }

func TestQuerySQL(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		run      func(q *Query) error
		wantSQL  string
		wantArgs []any
	}{
		{
			name: "select with embed and nulls last order",
			run: func(q *Query) error {
				var rows []struct{}
				return q.Select("id", "name").
					Embed(Join{Alias: "organization_name", Key: "organization_id", Table: "organizations", Columns: []string{"name"}}).
					Order(Asc("name")).
					Many(ctx, &rows)
			},
			wantSQL: "SELECT branches.id, branches.name, j0.name AS organization_name FROM branches" +
				" LEFT JOIN organizations j0 ON j0.id = branches.organization_id" +
				" ORDER BY branches.name ASC NULLS LAST",
		},
		{
			name: "multi column embed is concatenated",
			run: func(q *Query) error {
				var rows []struct{}
				return q.Select("id").
					Embed(Join{Alias: "beneficiary_name", Key: "beneficiary_id", Table: "beneficiaries", Columns: []string{"first_name", "last_name"}}).
					Order(Ordering{Column: "beneficiary_name", Descending: true, NullsFirst: true}).
					Many(ctx, &rows)
			},
			wantSQL: "SELECT branches.id, (j0.first_name || ' ' || j0.last_name) AS beneficiary_name FROM branches" +
				" LEFT JOIN beneficiaries j0 ON j0.id = branches.beneficiary_id" +
				" ORDER BY beneficiary_name DESC NULLS FIRST",
		},
		{
			name: "single filters by id",
			run: func(q *Query) error {
				var row struct{}
				return q.Eq("id", "b1").Single(ctx, &row)
			},
			wantSQL:  "SELECT branches.* FROM branches WHERE branches.id = ?",
			wantArgs: []any{"b1"},
		},
		{
			name: "insert returning selected columns",
			run: func(q *Query) error {
				var rec Record
				rec.Set("id", "b1")
				rec.Set("name", "North")
				var row struct{}
				return q.Select("id", "name").Insert(ctx, rec, &row)
			},
			wantSQL:  "INSERT INTO branches (id, name) VALUES (?, ?) RETURNING id, name",
			wantArgs: []any{"b1", "North"},
		},
		{
			name: "update appends filter args after values",
			run: func(q *Query) error {
				var rec Record
				rec.Set("name", "South")
				var row struct{}
				return q.Eq("id", "b1").Update(ctx, rec, &row)
			},
			wantSQL:  "UPDATE branches SET name = ? WHERE id = ? RETURNING *",
			wantArgs: []any{"South", "b1"},
		},
		{
			name: "delete by id",
			run: func(q *Query) error {
				return q.Eq("id", "b1").Delete(ctx)
			},
			wantSQL:  "DELETE FROM branches WHERE id = ?",
			wantArgs: []any{"b1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exec := &recordingExecutor{rows: 1}
			require.NoError(t, tt.run(NewQuery(exec, "branches")))
			require.Len(t, exec.queries, 1)
			assert.Equal(t, tt.wantSQL, exec.queries[0])
			assert.Equal(t, tt.wantArgs, []any(exec.args[0]))
		})
	}
}

func TestQueryGuards(t *testing.T) {
	ctx := context.Background()

	t.Run("delete without filter is refused", func(t *testing.T) {
		exec := &recordingExecutor{}
		err := NewQuery(exec, "branches").Delete(ctx)
		assert.ErrorIs(t, err, ErrUnfiltered)
		assert.Empty(t, exec.queries)
	})

	t.Run("update without filter is refused", func(t *testing.T) {
		exec := &recordingExecutor{}
		var rec Record
		rec.Set("name", "x")
		err := NewQuery(exec, "branches").Update(ctx, rec, nil)
		assert.ErrorIs(t, err, ErrUnfiltered)
		assert.Empty(t, exec.queries)
	})

	t.Run("delete of missing row is not found", func(t *testing.T) {
		exec := &recordingExecutor{rows: 0}
		err := NewQuery(exec, "branches").Eq("id", "nope").Delete(ctx)
		assert.True(t, IsNotFound(err))
	})

	t.Run("single with no rows is not found", func(t *testing.T) {
		exec := &recordingExecutor{err: sql.ErrNoRows}
		var row struct{}
		err := NewQuery(exec, "branches").Eq("id", "nope").Single(ctx, &row)
		se, ok := AsError(err)
		require.True(t, ok)
		assert.Equal(t, CodeNotFound, se.Code)
		assert.Equal(t, "branches", se.Table)
	})
}

func TestRecordOf(t *testing.T) {
	type row struct {
		ID    string  `db:"id"`
		Name  string  `db:"name"`
		Notes *string `db:"notes"`
	}

	rec, err := RecordOf(&row{ID: "1", Name: "n"}, []string{"name", "notes", "id"})
	require.NoError(t, err)
	assert.Equal(t, []string{"name", "notes", "id"}, rec.Columns())
	assert.Equal(t, []any{"n", nil, "1"}, rec.Values())

	_, err = RecordOf(row{}, []string{"missing"})
	assert.Error(t, err)

	// Rows passed by value are read without allocating nil pointers.
	value := row{ID: "2"}
	assert.NotPanics(t, func() {
		rec, err = RecordOf(value, []string{"id", "notes"})
	})
	require.NoError(t, err)
	assert.Equal(t, []any{"2", nil}, rec.Values())
	assert.Nil(t, value.Notes)

	type audit struct {
		By *string `db:"audited_by"`
	}
	type wrapped struct {
		ID string `db:"id"`
		*audit
	}
	rec, err = RecordOf(wrapped{ID: "3"}, []string{"id", "audited_by"})
	require.NoError(t, err)
	assert.Equal(t, []any{"3", nil}, rec.Values())

	_, err = RecordOf("not a struct", []string{"id"})
	assert.Error(t, err)
}
