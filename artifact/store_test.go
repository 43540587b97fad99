package artifact

import (
	"fmt"
	"sync"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nxtg-ai/forge/core"
)

// Interface compliance (compile-time assertions)
var (
	_ core.ArtifactStore = (*InMemoryStore)(nil)
	_ core.ArtifactStore = (*FSStore)(nil)
)

// stores runs the same test body against every backend.
func stores(t *testing.T, fn func(t *testing.T, store core.ArtifactStore)) {
	t.Helper()
	t.Run("in-memory", func(t *testing.T) {
		fn(t, NewInMemoryStore())
	})
	t.Run("fs", func(t *testing.T) {
		fn(t, NewFSStoreWithFs(afero.NewMemMapFs(), "/artifacts"))
	})
}

func TestSaveGetIsolation(t *testing.T) {
	stores(t, func(t *testing.T, store core.ArtifactStore) {
		data := []byte("hello")
		require.NoError(t, store.Save("t1", "report.md", data))

		// Mutating the input after save must not affect the stored copy.
		data[0] = 'H'
		out, err := store.Get("t1", "report.md")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(out))

		// Mutating the returned slice must not affect the stored copy.
		out[0] = 'x'
		out2, err := store.Get("t1", "report.md")
		require.NoError(t, err)
		assert.Equal(t, "hello", string(out2))
	})
}

func TestListAndDelete(t *testing.T) {
	stores(t, func(t *testing.T, store core.ArtifactStore) {
		require.NoError(t, store.Save("t1", "b.md", []byte("2")))
		require.NoError(t, store.Save("t1", "a.md", []byte("1")))

		names, err := store.List("t1")
		require.NoError(t, err)
		assert.Equal(t, []string{"a.md", "b.md"}, names, "listing is sorted")

		require.NoError(t, store.Delete("t1", "a.md"))

		_, err = store.Get("t1", "a.md")
		assert.ErrorIs(t, err, ErrNotFound)

		names, err = store.List("t1")
		require.NoError(t, err)
		assert.Equal(t, []string{"b.md"}, names)
	})
}

func TestNotFound(t *testing.T) {
	stores(t, func(t *testing.T, store core.ArtifactStore) {
		_, err := store.Get("missing", "x")
		assert.ErrorIs(t, err, ErrNotFound)

		assert.ErrorIs(t, store.Delete("missing", "x"), ErrNotFound)

		names, err := store.List("missing")
		require.NoError(t, err)
		assert.Empty(t, names)
	})
}

func TestConcurrentAccess(t *testing.T) {
	stores(t, func(t *testing.T, store core.ArtifactStore) {
		var wg sync.WaitGroup
		for i := 0; i < 100; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				name := fmt.Sprintf("a%d", i%10)
				assert.NoError(t, store.Save("t1", name, []byte("data")))
				_, _ = store.List("t1")
			}(i)
		}
		wg.Wait()

		names, err := store.List("t1")
		require.NoError(t, err)
		assert.Len(t, names, 10)
	})
}

func TestFSStoreSanitizesNames(t *testing.T) {
	fs := afero.NewMemMapFs()
	store := NewFSStoreWithFs(fs, "/artifacts")

	require.NoError(t, store.Save("t1", "../../escape.txt", []byte("x")))

	out, err := store.Get("t1", "escape.txt")
	require.NoError(t, err)
	assert.Equal(t, "x", string(out))

	exists, err := afero.Exists(fs, "/escape.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}
