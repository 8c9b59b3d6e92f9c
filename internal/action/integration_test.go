package action

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rewards/internal/cache"
	"github.com/mesh-intelligence/rewards/internal/entity"
	"github.com/mesh-intelligence/rewards/internal/schema"
	"github.com/mesh-intelligence/rewards/internal/store"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

func TestPipelineOverSQLite(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))

	repos := entity.New(db)
	c := cache.New()
	p := New(c)
	orgs, err := repos.Registry().Get(types.TableOrganizations)
	require.NoError(t, err)
	path := types.DashboardPath(types.TableOrganizations)

	created := p.Submit(ctx, orgs, schema.FormOf("name", "Acme", "email", "acme@acme.test"))
	require.Equal(t, types.StatusSucceeded, created.Status, created.Message)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 1, c.Revalidations(path))

	dup := p.Submit(ctx, orgs, schema.FormOf("name", "Other", "email", "acme@acme.test"))
	assert.Equal(t, types.StatusInvalid, dup.Status)
	assert.Equal(t, map[string]string{"email": "Email already exists"}, dup.FieldErrors)
	assert.Equal(t, 1, c.Revalidations(path), "failed write leaves the cache alone")

	updated := p.Submit(ctx, orgs, schema.FormOf("id", created.ID, "name", "Acme Ltd", "email", "acme@acme.test", "active", "on"))
	require.Equal(t, types.StatusSucceeded, updated.Status, updated.Message)
	assert.Equal(t, created.ID, updated.ID)

	row, err := repos.Organizations.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", row.Name)
	assert.True(t, row.Active)

	missing := p.Submit(ctx, orgs, schema.FormOf("id", "no-such-id", "name", "X", "email", "x@x.test"))
	assert.Equal(t, types.StatusFailed, missing.Status)
	assert.Equal(t, "Organization not found", missing.Message)

	removed := p.Remove(ctx, orgs, created.ID)
	assert.Equal(t, types.StatusSucceeded, removed.Status)
	assert.Equal(t, 3, c.Revalidations(path))
}

func TestPipelineEmbeddingEntity(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))

	repos := entity.New(db)
	reg := repos.Registry()
	c := cache.New()
	p := New(c, WithRegistry(reg))
	orgs, err := reg.Get(types.TableOrganizations)
	require.NoError(t, err)
	branches, err := reg.Get(types.TableBranches)
	require.NoError(t, err)

	org := p.Submit(ctx, orgs, schema.FormOf("name", "Acme", "email", "acme@acme.test"))
	require.Equal(t, types.StatusSucceeded, org.Status, org.Message)

	// address_id is optional and left out.
	branch := p.Submit(ctx, branches, schema.FormOf("organization_id", org.ID, "name", "North", "code", "N1"))
	require.Equal(t, types.StatusSucceeded, branch.Status, branch.Message)
	assert.Equal(t, "Branch created successfully", branch.Message)
	assert.NotEmpty(t, branch.ID)

	row, err := repos.Branches.Get(ctx, branch.ID)
	require.NoError(t, err)
	assert.Nil(t, row.AddressID)
	require.NotNil(t, row.OrganizationName)
	assert.Equal(t, "Acme", *row.OrganizationName)

	branchPath := types.DashboardPath(types.TableBranches)
	before := c.Revalidations(branchPath)
	renamed := p.Submit(ctx, orgs, schema.FormOf("id", org.ID, "name", "Globex", "email", "acme@acme.test"))
	require.Equal(t, types.StatusSucceeded, renamed.Status, renamed.Message)
	assert.Equal(t, before+1, c.Revalidations(branchPath), "branches embed the organization name")
	assert.Zero(t, c.Revalidations(types.DashboardPath(types.TableAddresses)))
}
