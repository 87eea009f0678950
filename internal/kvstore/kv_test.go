package kvstore

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/leaddesk/internal/crmerr"
)

func stores(t *testing.T) map[string]KV {
	t.Helper()
	sqlite, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]KV{
		"mem":    NewMem(),
		"sqlite": sqlite,
	}
}

func TestKV_Roundtrip(t *testing.T) {
	for name, kv := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := kv.Get("leads_state")
			require.NoError(t, err)
			assert.False(t, ok)

			require.NoError(t, kv.Set("leads_state", `{"currentPage":2}`))
			require.NoError(t, kv.Set("leads_state", `{"currentPage":3}`))
			require.NoError(t, kv.Set("session", `{"verified":true}`))

			v, ok, err := kv.Get("leads_state")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, `{"currentPage":3}`, v)

			keys, err := kv.Keys()
			require.NoError(t, err)
			assert.Equal(t, []string{"leads_state", "session"}, keys)

			require.NoError(t, kv.Delete("leads_state"))
			require.NoError(t, kv.Delete("missing"))
			_, ok, err = kv.Get("leads_state")
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestSQLite_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.db")

	first, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, first.Set("todos_Meeting_state", `{"activeTab":"upcoming"}`))
	require.NoError(t, first.Close())
	require.NoError(t, first.Close(), "second close is a no-op")

	second, err := OpenSQLite(path)
	require.NoError(t, err)
	defer second.Close()

	v, ok, err := second.Get("todos_Meeting_state")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `{"activeTab":"upcoming"}`, v)
}

func TestSQLite_UseAfterCloseReturnsStorageError(t *testing.T) {
	kv, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, kv.Set("session", `{"verified":true}`))
	require.NoError(t, kv.Close())

	_, ok, err := kv.Get("session")
	assert.False(t, ok)
	assert.True(t, crmerr.IsStorage(err), "get: %v", err)
	assert.True(t, crmerr.IsStorage(kv.Set("session", "{}")))
	assert.True(t, crmerr.IsStorage(kv.Delete("session")))
	keys, err := kv.Keys()
	assert.Nil(t, keys)
	assert.True(t, crmerr.IsStorage(err))
}
