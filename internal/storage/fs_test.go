package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/lumen/internal/checksum"
)

func tempVault(t *testing.T) (*FS, string) {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	require.NoError(t, err)
	return fs, dir
}

func put(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func TestRead(t *testing.T) {
	s, root := tempVault(t)
	put(t, root, "note.md", "# Hello\nWorld\n")

	got, err := s.Read("note.md")
	require.NoError(t, err)
	assert.Equal(t, "# Hello\nWorld\n", string(got))

	_, err = s.Read("missing.md")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestList(t *testing.T) {
	s, root := tempVault(t)
	put(t, root, "b.md", "b")
	put(t, root, "sub/a.md", "a")
	put(t, root, "upper.MD", "u")
	put(t, root, "readme.txt", "not md")
	put(t, root, ".obsidian/workspace.md", "hidden")

	items, err := s.List("")
	require.NoError(t, err)

	paths := make([]string, len(items))
	for i, it := range items {
		paths[i] = it.Path
	}
	assert.Equal(t, []string{"b.md", "sub/a.md", "upper.MD"}, paths)
	assert.Equal(t, checksum.Sum([]byte("b")), items[0].Checksum)
	assert.Equal(t, int64(1), items[0].Size)
	assert.False(t, items[0].ModTime.IsZero())
}

func TestListSubdir(t *testing.T) {
	s, root := tempVault(t)
	put(t, root, "top.md", "t")
	put(t, root, "sub/inner.md", "i")

	items, err := s.List("sub")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "sub/inner.md", items[0].Path)
}

func TestTraversalBlocked(t *testing.T) {
	s, _ := tempVault(t)
	for _, p := range []string{"../../etc/passwd", "../outside.md", "/etc/shadow"} {
		_, err := s.Read(p)
		assert.Error(t, err, "path %q", p)
	}
	_, err := s.List("../")
	assert.Error(t, err)
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	assert.Error(t, err)
}

func TestNewFS_FileNotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(f, nil, 0o644))
	_, err := NewFS(f)
	assert.Error(t, err)
}

func TestIsMarkdown(t *testing.T) {
	assert.True(t, IsMarkdown("a.md"))
	assert.True(t, IsMarkdown("A.Md"))
	assert.False(t, IsMarkdown("a.markdown"))
	assert.False(t, IsMarkdown("md"))
}
