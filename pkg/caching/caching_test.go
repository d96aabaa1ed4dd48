package caching

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_SetGet(t *testing.T) {
	c, err := NewCache(filepath.Join(t.TempDir(), "cache"), 0)
	require.NoError(t, err)

	_, ok := c.Get("http://x/a.zip")
	assert.False(t, ok)

	require.NoError(t, c.Set("http://x/a.zip", []byte("PK")))
	data, ok := c.Get("http://x/a.zip")
	assert.True(t, ok)
	assert.Equal(t, []byte("PK"), data)

	_, ok = c.Get("http://x/b.zip")
	assert.False(t, ok)

	require.NoError(t, c.Delete("http://x/a.zip"))
	_, ok = c.Get("http://x/a.zip")
	assert.False(t, ok)
	assert.NoError(t, c.Delete("http://x/a.zip"), "deleting a missing entry is not an error")
}

func TestCache_Expiry(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, time.Hour)
	require.NoError(t, err)

	require.NoError(t, c.Set("http://x/a.zip", []byte("PK")))

	old := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, c.key("http://x/a.zip")), old, old))

	_, ok := c.Get("http://x/a.zip")
	assert.False(t, ok, "expired entry must miss")
}
