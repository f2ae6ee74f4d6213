package images

import (
	"net/url"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStorage(t *testing.T) *Storage {
	t.Helper()
	storage, err := NewStorage(t.TempDir(), "http://localhost:8080/")
	require.NoError(t, err)
	return storage
}

func TestNewStorage(t *testing.T) {
	t.Run("creates base directory", func(t *testing.T) {
		dir := filepath.Join(t.TempDir(), "nested", "images")

		storage, err := NewStorage(dir, "")
		require.NoError(t, err)
		require.NotNil(t, storage)

		info, err := os.Stat(dir)
		require.NoError(t, err)
		assert.True(t, info.IsDir())
	})

	t.Run("returns error for empty path", func(t *testing.T) {
		storage, err := NewStorage("", "")
		assert.Error(t, err)
		assert.Nil(t, storage)
		assert.Contains(t, err.Error(), "base path cannot be empty")
	})
}

func TestStorage_Put(t *testing.T) {
	t.Run("writes object and returns public url", func(t *testing.T) {
		storage := setupTestStorage(t)

		url, err := storage.Put("restaurants/1-ramen.webp", []byte("webp"))
		require.NoError(t, err)
		assert.Equal(t, "http://localhost:8080/images/restaurants/1-ramen.webp", url)

		data, err := storage.Get("restaurants/1-ramen.webp")
		require.NoError(t, err)
		assert.Equal(t, []byte("webp"), data)
		assert.True(t, storage.Exists("restaurants/1-ramen.webp"))
	})

	t.Run("escapes non-ascii names in the url", func(t *testing.T) {
		storage := setupTestStorage(t)
		name := "restaurants/1-ร้านอร่อย ชั้น 2.webp"

		got, err := storage.Put(name, []byte("webp"))
		require.NoError(t, err)
		assert.NotContains(t, got, " ")

		u, err := url.Parse(got)
		require.NoError(t, err)
		assert.Equal(t, "/images/"+name, u.Path)
		assert.Empty(t, u.RawPath)
		assert.True(t, storage.Exists(name))
	})

	t.Run("rejects empty data", func(t *testing.T) {
		storage := setupTestStorage(t)
		_, err := storage.Put("restaurants/a.webp", nil)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "image data cannot be empty")
	})

	t.Run("rejects names escaping the root", func(t *testing.T) {
		storage := setupTestStorage(t)
		for _, name := range []string{"", "../secret.webp", "restaurants/../../x.webp", "/abs.webp", `a\b.webp`, "restaurants//a.webp"} {
			_, err := storage.Put(name, []byte("x"))
			assert.ErrorIs(t, err, ErrInvalidName, name)
		}
	})
}

func TestStorage_GetMissing(t *testing.T) {
	storage := setupTestStorage(t)

	_, err := storage.Get("restaurants/missing.webp")
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.False(t, storage.Exists("restaurants/missing.webp"))
}

func TestStorage_Delete(t *testing.T) {
	storage := setupTestStorage(t)

	_, err := storage.Put("restaurants/a.webp", []byte("x"))
	require.NoError(t, err)

	require.NoError(t, storage.Delete("restaurants/a.webp"))
	assert.False(t, storage.Exists("restaurants/a.webp"))

	// Deleting again is fine.
	require.NoError(t, storage.Delete("restaurants/a.webp"))
}

func TestStorage_Hash(t *testing.T) {
	storage := setupTestStorage(t)

	_, err := storage.Put("restaurants/a.webp", []byte("abc"))
	require.NoError(t, err)

	hash, err := storage.Hash("restaurants/a.webp")
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", hash)
}

func TestStorage_ConcurrentPut(t *testing.T) {
	storage := setupTestStorage(t)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := ObjectName(fixedTime.Add(millis(i)), "photo.webp")
			_, err := storage.Put(name, []byte{byte(i)})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	entries, err := os.ReadDir(filepath.Join(storage.basePath, ObjectPrefix))
	require.NoError(t, err)
	assert.Len(t, entries, 20)
}
