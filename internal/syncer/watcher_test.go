package syncer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/lumen/internal/repository"
	"github.com/starford/lumen/internal/storage"
)

func watchEnv(t *testing.T) (string, *repository.Repository) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFS(dir)
	require.NoError(t, err)

	repo := repository.New()
	s := New(NewVaultSource(store), repo, quietLogger())
	_, err = s.Sync(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = s.Watch(ctx, dir, 20*time.Millisecond)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	time.Sleep(100 * time.Millisecond)
	return dir, repo
}

func TestWatch_NewFileResyncs(t *testing.T) {
	dir, repo := watchEnv(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.md"), []byte("# New"), 0o644))

	require.Eventually(t, func() bool {
		_, err := repo.ByPath("new.md")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond, "new file not picked up")
}

func TestWatch_NewDirWatched(t *testing.T) {
	dir, repo := watchEnv(t)

	sub := filepath.Join(dir, "subdir")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(filepath.Join(sub, "deep.md"), []byte("# Deep"), 0o644))

	require.Eventually(t, func() bool {
		_, err := repo.ByPath("subdir/deep.md")
		return err == nil
	}, 5*time.Second, 20*time.Millisecond, "file in new subdir not picked up")
}

func TestWatch_DeleteAndRename(t *testing.T) {
	dir, repo := watchEnv(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "old.md"), []byte("# Old"), 0o644))
	require.Eventually(t, func() bool { return repo.Len() == 1 }, 5*time.Second, 20*time.Millisecond)

	require.NoError(t, os.Rename(filepath.Join(dir, "old.md"), filepath.Join(dir, "renamed.md")))
	require.Eventually(t, func() bool {
		_, oldErr := repo.ByPath("old.md")
		_, newErr := repo.ByPath("renamed.md")
		return oldErr != nil && newErr == nil
	}, 5*time.Second, 20*time.Millisecond, "rename not reflected")

	require.NoError(t, os.Remove(filepath.Join(dir, "renamed.md")))
	require.Eventually(t, func() bool { return repo.Len() == 0 }, 5*time.Second, 20*time.Millisecond)
}

func TestHidden(t *testing.T) {
	root := filepath.FromSlash("/vault")
	assert.True(t, hidden(root, filepath.FromSlash("/vault/.obsidian/workspace.md")))
	assert.False(t, hidden(root, filepath.FromSlash("/vault/notes/a.md")))
	assert.False(t, hidden(root, root))
}
