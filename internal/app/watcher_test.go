package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitFor = 3 * time.Second

func touch(t *testing.T, path string, body string, mod time.Time) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	require.NoError(t, os.Chtimes(path, mod, mod))
}

func newWatcher(t *testing.T) (*FileWatcher, chan string) {
	t.Helper()
	fw, err := NewFileWatcher(20 * time.Millisecond)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fw.Close() })

	changed := make(chan string, 4)
	fw.OnChange(func(path string) { changed <- path })
	return fw, changed
}

func TestWatcherReportsRewrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	base := time.Now().Add(-time.Hour)
	touch(t, path, "v1", base)

	fw, changed := newWatcher(t)
	require.NoError(t, fw.Watch(path))
	assert.Equal(t, path, fw.Path())

	touch(t, path, "v2", base.Add(time.Minute))
	select {
	case got := <-changed:
		assert.Equal(t, path, got)
	case <-time.After(waitFor):
		t.Fatal("no change reported")
	}
}

func TestWatcherIgnoresSiblings(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	touch(t, path, "v1", time.Now().Add(-time.Hour))

	fw, changed := newWatcher(t)
	require.NoError(t, fw.Watch(path))

	touch(t, filepath.Join(dir, "other.png"), "x", time.Now())
	select {
	case got := <-changed:
		t.Fatalf("unexpected change for %s", got)
	case <-time.After(200 * time.Millisecond):
	}
}

func TestUnwatchStopsReports(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "photo.png")
	base := time.Now().Add(-time.Hour)
	touch(t, path, "v1", base)

	fw, changed := newWatcher(t)
	require.NoError(t, fw.Watch(path))
	fw.Unwatch()
	assert.Empty(t, fw.Path())

	touch(t, path, "v2", base.Add(time.Minute))
	select {
	case <-changed:
		t.Fatal("change reported after Unwatch")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestWatchMissingFile(t *testing.T) {
	fw, _ := newWatcher(t)
	assert.Error(t, fw.Watch(filepath.Join(t.TempDir(), "absent.png")))
}
