package store

import (
	"errors"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestClassifyPostgres(t *testing.T) {
	tests := []struct {
		name       string
		err        *pq.Error
		wantCode   Code
		wantColumn string
	}{
		{
			name:       "unique with composite key reports last column",
			err:        &pq.Error{Code: "23505", Detail: "Key (organization_id, code)=(o1, N1) already exists."},
			wantCode:   CodeUnique,
			wantColumn: "code",
		},
		{
			name:       "foreign key column from detail",
			err:        &pq.Error{Code: "23503", Detail: `Key (organization_id)=(x) is not present in table "organizations".`},
			wantCode:   CodeForeignKey,
			wantColumn: "organization_id",
		},
		{
			name:       "not null uses the column field",
			err:        &pq.Error{Code: "23502", Column: "name"},
			wantCode:   CodeNotNull,
			wantColumn: "name",
		},
		{
			name:     "other codes are unknown",
			err:      &pq.Error{Code: "08006", Message: "connection failure"},
			wantCode: CodeUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AsError(classify("branches", tt.err))
			if !assert.True(t, ok) {
				return
			}
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantColumn, got.Column)
			assert.ErrorIs(t, got, tt.err)
		})
	}
}

func TestSQLiteColumn(t *testing.T) {
	tests := []struct {
		msg  string
		want string
	}{
		{"constraint failed: UNIQUE constraint failed: organizations.email (2067)", "email"},
		{"UNIQUE constraint failed: branches.organization_id, branches.code", "code"},
		{"NOT NULL constraint failed: products.name", "name"},
		{"FOREIGN KEY constraint failed", ""},
		{"CHECK constraint failed: available_points >= 0", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sqliteColumn(tt.msg), tt.msg)
	}
}

func TestClassifyUnknown(t *testing.T) {
	cause := errors.New("boom")
	err := classify("statuses", cause)
	se, ok := AsError(err)
	assert.True(t, ok)
	assert.Equal(t, CodeUnknown, se.Code)
	assert.ErrorIs(t, err, cause)
	assert.False(t, se.Constraint())
	assert.Nil(t, classify("statuses", nil))
}
