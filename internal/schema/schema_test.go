package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type place struct {
	ID      string  `form:"id"`
	City    string  `form:"city" validate:"required"`
	Street  string  `form:"street" validate:"required"`
	ZipCode string  `form:"zip_code" validate:"required,min=3"`
	Points  int     `form:"available_points" validate:"gte=0"`
	Email   string  `form:"email" validate:"omitempty,email"`
	Handle  string  `form:"handle" validate:"omitempty,username"`
	Kind    string  `form:"kind" validate:"omitempty,oneof=home work"`
	Opened  *string `form:"opened" validate:"omitempty,datetime=2006-01-02"`
	Active  bool    `form:"active"`
}

func decodePlace(f Form) place {
	return place{
		ID:      f.String("id"),
		City:    f.String("city"),
		Street:  f.String("street"),
		ZipCode: f.String("zip_code"),
		Points:  f.Int("available_points"),
		Email:   f.String("email"),
		Handle:  f.String("handle"),
		Kind:    f.String("kind"),
		Opened:  f.Optional("opened"),
		Active:  f.Bool("active"),
	}
}

func TestSchemaParse(t *testing.T) {
	s := New(decodePlace)

	t.Run("valid form yields typed data", func(t *testing.T) {
		res := s.Parse(FormOf("city", "X", "street", "Main St", "zip_code", "12345", "active", "on", "available_points", "invalid-number"))
		require.True(t, res.OK())
		assert.NoError(t, res.Err())
		assert.Equal(t, "X", res.Data.City)
		assert.True(t, res.Data.Active)
		assert.Equal(t, 0, res.Data.Points)
	})

	t.Run("issues use form names and labels", func(t *testing.T) {
		res := s.Parse(FormOf("city", "", "street", ""))
		require.False(t, res.OK())
		assert.Equal(t, []Issue{
			FieldIssue("city", "City is required"),
			FieldIssue("street", "Street is required"),
			FieldIssue("zip_code", "Zip code is required"),
		}, res.Issues)

		var verr *ValidationError
		require.ErrorAs(t, res.Err(), &verr)
		assert.Len(t, verr.FieldErrors, 3)
	})

	t.Run("constraint messages", func(t *testing.T) {
		got := s.Validate(FormOf(
			"city", "X", "street", "Y", "zip_code", "12",
			"available_points", "-3", "email", "nope", "handle", "a b",
			"kind", "moon", "opened", "03/04/2024",
		))
		assert.Equal(t, map[string]string{
			"zip_code":         "Zip code must be at least 3 characters",
			"available_points": "Available points must be at least 0",
			"email":            "Email must be a valid email address",
			"handle":           "Handle may only contain letters, numbers and underscores",
			"kind":             "Kind must be one of: home, work",
			"opened":           "Opened must use the format YYYY-MM-DD",
		}, got)
	})

	t.Run("parse is idempotent", func(t *testing.T) {
		f := FormOf("city", "", "zip_code", "1")
		first := s.Parse(f)
		second := s.Parse(f)
		assert.Equal(t, first.OK(), second.OK())
		assert.Equal(t, Reduce(first.Issues), Reduce(second.Issues))
	})
}

func TestSchemaChecks(t *testing.T) {
	s := New(decodePlace,
		func(p place) []Issue {
			if p.City == p.Street && p.City != "" {
				return []Issue{FieldIssue("street", "Street must differ from city")}
			}
			return nil
		},
		func(p place) []Issue {
			if !p.Active {
				return []Issue{RootIssue("inactive places cannot be saved")}
			}
			return nil
		},
	)

	res := s.Parse(FormOf("city", "Same", "street", "Same", "zip_code", "123"))
	require.False(t, res.OK())
	assert.Len(t, res.Issues, 2)
	assert.Equal(t, map[string]string{"street": "Street must differ from city"}, Reduce(res.Issues))
}

func TestLabel(t *testing.T) {
	tests := map[string]string{
		"city":             "City",
		"zip_code":         "Zip code",
		"organization_id":  "Organization",
		"available_points": "Available points",
		"id":               "Id",
	}
	for in, want := range tests {
		assert.Equal(t, want, Label(in), in)
	}
}
