package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rewards/pkg/types"
)

// openStore opens a migrated SQLite store in a temp directory.
func openStore(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), types.Config{
		Backend: types.BackendSQLite,
		DataDir: t.TempDir(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(context.Background()))
	return db
}

var orgColumns = []string{"id", "name", "tax_id", "email", "phone", "active"}

func insertOrg(t *testing.T, db *DB, org types.Organization) types.Organization {
	t.Helper()
	rec, err := RecordOf(org, orgColumns)
	require.NoError(t, err)
	var out types.Organization
	require.NoError(t, db.From(types.TableOrganizations).Select(orgColumns...).Insert(context.Background(), rec, &out))
	return out
}

func TestOpen(t *testing.T) {
	t.Run("rejects invalid config", func(t *testing.T) {
		_, err := Open(context.Background(), types.Config{})
		assert.ErrorIs(t, err, types.ErrBackendEmpty)
	})

	t.Run("migrate is idempotent", func(t *testing.T) {
		db := openStore(t)
		assert.NoError(t, db.Migrate(context.Background()))
		assert.Equal(t, types.BackendSQLite, db.Backend())
		assert.NoError(t, db.Ping(context.Background()))
	})
}

func TestSQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		check func(t *testing.T, db *DB)
	}{
		{
			name: "insert returns the written row",
			check: func(t *testing.T, db *DB) {
				got := insertOrg(t, db, types.Organization{ID: "o1", Name: "Acme", Email: "a@acme.test", Active: true})
				assert.Equal(t, "o1", got.ID)
				assert.Equal(t, "Acme", got.Name)
				assert.True(t, got.Active)
				assert.Nil(t, got.TaxID)
			},
		},
		{
			name: "nil optional fields are written as NULL",
			check: func(t *testing.T, db *DB) {
				insertOrg(t, db, types.Organization{ID: "o1", Name: "Acme", Email: "a@acme.test"})
				cols := []string{"id", "organization_id", "address_id", "name", "code", "active"}
				rec, err := RecordOf(types.Branch{ID: "b1", OrganizationID: "o1", Name: "North", Code: "N1"}, cols)
				require.NoError(t, err)
				require.NoError(t, db.From(types.TableBranches).Insert(ctx, rec, nil))

				var nulls int
				require.NoError(t, db.x.GetContext(ctx, &nulls, "SELECT COUNT(*) FROM branches WHERE address_id IS NULL"))
				assert.Equal(t, 1, nulls)
			},
		},
		{
			name: "many orders by column",
			check: func(t *testing.T, db *DB) {
				insertOrg(t, db, types.Organization{ID: "o1", Name: "Zeta", Email: "z@zeta.test"})
				insertOrg(t, db, types.Organization{ID: "o2", Name: "Alpha", Email: "a@acme.test"})
				var rows []types.Organization
				require.NoError(t, db.From(types.TableOrganizations).Select(orgColumns...).Order(Asc("name")).Many(ctx, &rows))
				require.Len(t, rows, 2)
				assert.Equal(t, "Alpha", rows[0].Name)
				assert.Equal(t, "Zeta", rows[1].Name)
			},
		},
		{
			name: "embed joins the referenced name",
			check: func(t *testing.T, db *DB) {
				insertOrg(t, db, types.Organization{ID: "o1", Name: "Acme", Email: "a@acme.test"})
				var rec Record
				rec.Set("id", "b1")
				rec.Set("organization_id", "o1")
				rec.Set("name", "North")
				rec.Set("code", "N1")
				rec.Set("active", true)
				require.NoError(t, db.From(types.TableBranches).Insert(ctx, rec, nil))

				var got types.Branch
				err := db.From(types.TableBranches).
					Select("id", "organization_id", "address_id", "name", "code", "active").
					Embed(Join{Alias: "organization_name", Key: "organization_id", Table: types.TableOrganizations, Columns: []string{"name"}}).
					Eq("id", "b1").
					Single(ctx, &got)
				require.NoError(t, err)
				require.NotNil(t, got.OrganizationName)
				assert.Equal(t, "Acme", *got.OrganizationName)
			},
		},
		{
			name: "update overwrites and returns the row",
			check: func(t *testing.T, db *DB) {
				insertOrg(t, db, types.Organization{ID: "o1", Name: "Acme", Email: "a@acme.test"})
				var rec Record
				rec.Set("name", "Acme Ltd")
				var got types.Organization
				require.NoError(t, db.From(types.TableOrganizations).Select(orgColumns...).Eq("id", "o1").Update(ctx, rec, &got))
				assert.Equal(t, "Acme Ltd", got.Name)
				assert.Equal(t, "a@acme.test", got.Email)
			},
		},
		{
			name: "update of missing row is not found",
			check: func(t *testing.T, db *DB) {
				var rec Record
				rec.Set("name", "x")
				var got types.Organization
				err := db.From(types.TableOrganizations).Select(orgColumns...).Eq("id", "nope").Update(ctx, rec, &got)
				assert.True(t, IsNotFound(err))
			},
		},
		{
			name: "delete removes the row",
			check: func(t *testing.T, db *DB) {
				insertOrg(t, db, types.Organization{ID: "o1", Name: "Acme", Email: "a@acme.test"})
				require.NoError(t, db.From(types.TableOrganizations).Eq("id", "o1").Delete(ctx))
				var got types.Organization
				err := db.From(types.TableOrganizations).Eq("id", "o1").Single(ctx, &got)
				assert.True(t, IsNotFound(err))
				assert.True(t, IsNotFound(db.From(types.TableOrganizations).Eq("id", "o1").Delete(ctx)))
			},
		},
		{
			name: "duplicate email is a unique violation on email",
			check: func(t *testing.T, db *DB) {
				insertOrg(t, db, types.Organization{ID: "o1", Name: "Acme", Email: "a@acme.test"})
				rec, err := RecordOf(types.Organization{ID: "o2", Name: "Other", Email: "a@acme.test"}, orgColumns)
				require.NoError(t, err)
				err = db.From(types.TableOrganizations).Insert(ctx, rec, nil)
				se, ok := AsError(err)
				require.True(t, ok, "got %v", err)
				assert.Equal(t, CodeUnique, se.Code)
				assert.Equal(t, "email", se.Column)
				assert.True(t, se.Constraint())
			},
		},
		{
			name: "missing parent is a foreign key violation",
			check: func(t *testing.T, db *DB) {
				var rec Record
				rec.Set("id", "b1")
				rec.Set("organization_id", "ghost")
				rec.Set("name", "North")
				rec.Set("code", "N1")
				rec.Set("active", false)
				err := db.From(types.TableBranches).Insert(ctx, rec, nil)
				se, ok := AsError(err)
				require.True(t, ok, "got %v", err)
				assert.Equal(t, CodeForeignKey, se.Code)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.check(t, openStore(t))
		})
	}
}
