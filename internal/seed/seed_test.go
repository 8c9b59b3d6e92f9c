package seed

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mesh-intelligence/rewards/internal/action"
	"github.com/mesh-intelligence/rewards/internal/cache"
	"github.com/mesh-intelligence/rewards/internal/entity"
	"github.com/mesh-intelligence/rewards/internal/store"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

func TestMain(m *testing.M) {
	entity.PasswordCost = bcrypt.MinCost
	os.Exit(m.Run())
}

func setupLoader(t *testing.T) (*Loader, *entity.Repositories) {
	t.Helper()
	ctx := context.Background()
	db, err := store.Open(ctx, types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))

	repos := entity.New(db)
	return NewLoader(repos.Registry(), action.New(cache.New())), repos
}

func TestLoadFixtureFile(t *testing.T) {
	ctx := context.Background()
	l, repos := setupLoader(t)

	res, err := l.LoadFile(ctx, "testdata/fixture.yaml")
	require.NoError(t, err)
	assert.Equal(t, 10, res.Total())
	assert.Equal(t, 1, res.Counts[types.TableBranches])
	assert.Len(t, res.Refs, 8)

	branch, err := repos.Branches.Get(ctx, res.Refs["north"])
	require.NoError(t, err)
	assert.Equal(t, res.Refs["acme"], branch.OrganizationID)
	require.NotNil(t, branch.AddressID)
	assert.Equal(t, res.Refs["hq"], *branch.AddressID)
	assert.True(t, branch.Active)

	addr, err := repos.Addresses.Get(ctx, res.Refs["hq"])
	require.NoError(t, err)
	assert.Equal(t, "62701", addr.ZipCode)

	product, err := repos.Products.Get(ctx, res.Refs["kite"])
	require.NoError(t, err)
	assert.Equal(t, "12.5", product.Price.String())

	redemptions, err := repos.Redemptions.List(ctx)
	require.NoError(t, err)
	require.Len(t, redemptions, 1)
	assert.Equal(t, "Kite", *redemptions[0].ProductName)
	assert.Equal(t, "pending", *redemptions[0].StatusName)
}

func TestLoadErrors(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		yaml    string
		wantErr error
		check   func(t *testing.T, res Result, err error)
	}{
		{
			name:    "unknown table",
			yaml:    "widgets:\n  - name: x\n",
			wantErr: types.ErrUnknownEntity,
		},
		{
			name:    "unknown reference",
			yaml:    "branches:\n  - organization_id: \"@ghost\"\n    name: N\n    code: N\n",
			wantErr: ErrUnknownRef,
		},
		{
			name:    "duplicate reference",
			yaml:    "statuses:\n  - {ref: s, name: a}\n  - {ref: s, name: b}\n",
			wantErr: ErrDuplicateRef,
		},
		{
			name:    "invalid record stops the load",
			yaml:    "statuses:\n  - name: ok\n  - name: \"\"\n  - name: never\n",
			wantErr: ErrRecordFailed,
			check: func(t *testing.T, res Result, err error) {
				assert.Equal(t, 1, res.Counts[types.TableStatuses])
				assert.Contains(t, err.Error(), "statuses record 2: name: Name is required")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := setupLoader(t)
			fx, err := Decode(strings.NewReader(tt.yaml))
			require.NoError(t, err)
			res, err := l.Load(ctx, fx)
			assert.ErrorIs(t, err, tt.wantErr)
			if tt.check != nil {
				tt.check(t, res, err)
			}
		})
	}
}

func TestDecodeEmpty(t *testing.T) {
	fx, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, fx)
}
