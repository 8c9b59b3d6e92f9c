package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReduce(t *testing.T) {
	tests := []struct {
		name   string
		issues []Issue
		want   map[string]string
	}{
		{
			name: "first message for a field wins",
			issues: []Issue{
				{Path: []string{"x"}, Message: "A"},
				{Path: []string{"x"}, Message: "B"},
			},
			want: map[string]string{"x": "A"},
		},
		{
			name: "root issues are skipped",
			issues: []Issue{
				RootIssue("schedule overlaps"),
				{Path: []string{}, Message: "empty path"},
				FieldIssue("city", "City is required"),
			},
			want: map[string]string{"city": "City is required"},
		},
		{
			name: "nested paths attribute to the top-level field",
			issues: []Issue{
				{Path: []string{"schedule", "days", "0"}, Message: "bad day"},
			},
			want: map[string]string{"schedule": "bad day"},
		},
		{
			name: "one entry per distinct field",
			issues: []Issue{
				FieldIssue("city", "City is required"),
				FieldIssue("street", "Street is required"),
				FieldIssue("city", "City is too short"),
			},
			want: map[string]string{
				"city":   "City is required",
				"street": "Street is required",
			},
		},
		{
			name:   "no issues yields an empty map",
			issues: nil,
			want:   map[string]string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Reduce(tt.issues))
		})
	}
}

func TestValidationError(t *testing.T) {
	err := NewValidationError([]Issue{
		FieldIssue("city", "City is required"),
		RootIssue("general"),
		FieldIssue("street", "Street is required"),
		FieldIssue("city", "again"),
	})
	assert.Equal(t, map[string]string{"city": "City is required", "street": "Street is required"}, err.FieldErrors)
	assert.Equal(t, []string{"general"}, err.RootMessages())
	assert.Equal(t, "validation failed: city, street", err.Error())
}
