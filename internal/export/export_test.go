package export

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rewards/internal/entity"
	"github.com/mesh-intelligence/rewards/internal/schema"
	"github.com/mesh-intelligence/rewards/internal/store"
	"github.com/mesh-intelligence/rewards/pkg/types"
)

func TestDir(t *testing.T) {
	ctx := context.Background()
	db, err := store.Open(ctx, types.Config{Backend: types.BackendSQLite, DataDir: t.TempDir()})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.Migrate(ctx))
	repos := entity.New(db)

	for _, name := range []string{"Beta", "Alpha"} {
		_, err := repos.Organizations.Create(ctx, schema.FormOf("name", name, "email", name+"@example.com"))
		require.NoError(t, err)
	}

	dir := filepath.Join(t.TempDir(), "out")
	res, err := Dir(ctx, repos.Registry(), dir)
	require.NoError(t, err)
	assert.Equal(t, 2, res[types.TableOrganizations])
	assert.Len(t, res, len(types.StandardTableNames))

	records, err := ReadJSONL(filepath.Join(dir, "organizations.jsonl"))
	require.NoError(t, err)
	require.Len(t, records, 2)
	var first types.Organization
	require.NoError(t, json.Unmarshal(records[0], &first))
	assert.Equal(t, "Alpha", first.Name, "rows follow list order")

	info, err := os.Stat(filepath.Join(dir, "statuses.jsonl"))
	require.NoError(t, err)
	assert.Zero(t, info.Size())
}

func TestReadJSONLSkipsMalformedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.jsonl")
	content := "{\"id\":\"a\"}\n\nnot json\n{\"id\":\"b\"}\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	records, err := ReadJSONL(path)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.JSONEq(t, `{"id":"b"}`, string(records[1]))
}

func TestWriteJSONLReplacesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rows.jsonl")
	require.NoError(t, WriteJSONL(path, []json.RawMessage{json.RawMessage(`{"n":1}`), json.RawMessage(`{"n":2}`)}))
	require.NoError(t, WriteJSONL(path, []json.RawMessage{json.RawMessage(`{"n":3}`)}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\"n\":3}\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestReadJSONLMissingFile(t *testing.T) {
	_, err := ReadJSONL(filepath.Join(t.TempDir(), "missing.jsonl"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
