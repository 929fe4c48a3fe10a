package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const customSchemaDoc = `{
	"collection_name": "reviews",
	"fields": [
		{"name": "id", "type": "INT64", "is_primary": true},
		{"name": "text", "type": "VARCHAR", "max_length": 512},
		{"name": "vec", "type": "FLOAT_VECTOR", "dim": 128}
	]
}`

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	m, err := NewManager(t.TempDir())
	require.NoError(t, err)
	return m
}

func TestManagerAddGetRemove(t *testing.T) {
	m := newTestManager(t)
	src := filepath.Join(t.TempDir(), "reviews.json")
	require.NoError(t, os.WriteFile(src, []byte(customSchemaDoc), 0644))

	require.NoError(t, m.Add("reviews", src))

	s, err := m.Get("reviews")
	require.NoError(t, err)
	assert.Equal(t, "reviews", s.CollectionName)
	assert.Len(t, s.Fields, 3)

	require.NoError(t, m.Remove("reviews"))
	_, err = m.Get("reviews")
	assert.Error(t, err)
}

func TestManagerRejectsInvalidIDs(t *testing.T) {
	m := newTestManager(t)
	src := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(src, []byte(customSchemaDoc), 0644))

	for _, id := range []string{"", "Has Space", "UPPER", "-leading", "über"} {
		assert.Error(t, m.Add(id, src), "id %q should be rejected", id)
	}
}

func TestManagerProtectsBuiltins(t *testing.T) {
	m := newTestManager(t)
	src := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(src, []byte(customSchemaDoc), 0644))

	err := m.Add("simple", src)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reserved by a built-in")

	err = m.Remove("simple")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cannot remove built-in")
}

func TestManagerGetResolvesBuiltins(t *testing.T) {
	m := newTestManager(t)
	s, err := m.Get("ecommerce")
	require.NoError(t, err)
	assert.Equal(t, "products", s.CollectionName)

	_, err = m.Get("no-such-schema")
	assert.Error(t, err)
}

func TestManagerAddRejectsInvalidSchema(t *testing.T) {
	m := newTestManager(t)
	src := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(src, []byte(`{"fields": [{"name": "v", "type": "FLOAT_VECTOR"}]}`), 0644))

	err := m.Add("bad", src)
	require.Error(t, err)
	var vErr *ValidationError
	assert.ErrorAs(t, err, &vErr)
}

func TestManagerListShowsBuiltinsFirst(t *testing.T) {
	m := newTestManager(t)
	src := filepath.Join(t.TempDir(), "s.json")
	require.NoError(t, os.WriteFile(src, []byte(customSchemaDoc), 0644))
	require.NoError(t, m.Add("zz-custom", src))

	entries, err := m.List()
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	builtins := len(ListBuiltin())
	require.Greater(t, len(entries), builtins)
	for i := 0; i < builtins; i++ {
		assert.True(t, entries[i].Builtin, "entry %d should be built-in", i)
	}
	last := entries[len(entries)-1]
	assert.Equal(t, "zz-custom", last.ID)
	assert.False(t, last.Builtin)
	assert.Equal(t, 3, last.Fields)
}

func TestManagerSaveRoundTrips(t *testing.T) {
	m := newTestManager(t)
	dest := filepath.Join(t.TempDir(), "out.json")
	require.NoError(t, m.Save("simple", dest))

	s, err := Load(dest)
	require.NoError(t, err)
	assert.Equal(t, "simple", s.CollectionName)
}
