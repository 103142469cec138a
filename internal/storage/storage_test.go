package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, base string) *Store {
	t.Helper()
	s, err := New(t.TempDir(), base)
	require.NoError(t, err)
	return s
}

func TestSaveTextureAndFetch(t *testing.T) {
	s := newTestStore(t, "http://localhost:8080/storage/")

	rel, err := s.SaveTexture(7, "posx", "front view.JPG", strings.NewReader("pixels"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(rel, "plan-items/7/posx_"))
	assert.True(t, strings.HasSuffix(rel, ".jpg"))

	data, err := s.Fetch(context.Background(), rel)
	require.NoError(t, err)
	assert.Equal(t, "pixels", string(data))
}

func TestBuildURL(t *testing.T) {
	s := newTestStore(t, "http://cdn.example.com/storage")

	assert.Equal(t, "http://cdn.example.com/storage/plan-items/1/posx.jpg",
		s.BuildURL("plan-items/1/posx.jpg"))
	// Leading slash in the stored path must not double up.
	assert.Equal(t, "http://cdn.example.com/storage/plan-items/1/posx.jpg",
		s.BuildURL("/plan-items/1/posx.jpg"))
	assert.Equal(t, "", s.BuildURL(""))
}

func TestRemoveItem(t *testing.T) {
	s := newTestStore(t, "")

	rel, err := s.SaveTexture(3, "negz", "b.png", strings.NewReader("x"))
	require.NoError(t, err)
	require.NoError(t, s.RemoveItem(3))

	_, err = os.Stat(filepath.Join(s.Root(), filepath.FromSlash(rel)))
	assert.True(t, os.IsNotExist(err))
}

func TestFetchRejectsTraversal(t *testing.T) {
	s := newTestStore(t, "")

	_, err := s.Fetch(context.Background(), "../etc/passwd")
	assert.Error(t, err)
}
