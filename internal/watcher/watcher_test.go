package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/codigovinario/vinario/internal/catalog"
)

var testExts = []string{".mdx", ".md"}

func TestIsContentFile(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"/c/catena.md", true},
		{"/c/catena.mdx", true},
		{"/c/notes.txt", false},
		{"/c/.catena.md.swp", false},
		{"/c/.hidden.md", false},
		{"/c/catena.md~", false},
		{"/c/.md", false},
		{"/c/CATENA.MD", false},
	}
	for _, tt := range tests {
		if got := isContentFile(tt.name, testExts); got != tt.want {
			t.Errorf("isContentFile(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestIsContentFile_AgreesWithLoader(t *testing.T) {
	dir := t.TempDir()
	names := []string{"catena.md", "catena.mdx", "notes.txt", ".hidden.md", "catena.md~", "zuccardi.mdx", "README"}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("---\ntitle: x\n---\n"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	c, err := catalog.Load(dir, catalog.Options{Extensions: testExts})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	loaded := make(map[string]bool)
	for _, r := range c.Reviews {
		loaded[r.Slug] = true
	}
	for _, name := range names {
		slug, ok := catalog.SlugFor(name, testExts)
		want := ok && loaded[slug]
		if got := isContentFile(filepath.Join(dir, name), testExts); got != want {
			t.Errorf("isContentFile(%q) = %v, loader lists its slug: %v", name, got, want)
		}
	}
}

func TestRelativePath_NormalizesToSlash(t *testing.T) {
	dir := filepath.Join("tmp", "content")
	full := filepath.Join(dir, "resenas", "alpha.md")
	got := relativePath(full, dir)
	if got != "resenas/alpha.md" {
		t.Fatalf("relativePath = %q, want %q", got, "resenas/alpha.md")
	}
}

// startWatch runs watch in the background and returns a stop func that
// waits for it to exit.
func startWatch(t *testing.T, dir string, reload func() error, logger *zap.Logger) func() {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- watch(ctx, dir, testExts, 50*time.Millisecond, reload, logger) }()
	// let the watcher register before the test writes
	time.Sleep(100 * time.Millisecond)
	return func() {
		cancel()
		select {
		case err := <-done:
			if err != nil {
				t.Errorf("watch returned %v", err)
			}
		case <-time.After(2 * time.Second):
			t.Error("watch did not stop after cancel")
		}
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(3 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestWatch_DebouncesBurstIntoOneReload(t *testing.T) {
	dir := t.TempDir()
	var reloads atomic.Int32
	stop := startWatch(t, dir, func() error {
		reloads.Add(1)
		return nil
	}, nil)
	defer stop()

	for _, name := range []string{"a.md", "b.mdx", "c.md"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("---\ntitle: x\n---\n"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	waitFor(t, func() bool { return reloads.Load() >= 1 })
	time.Sleep(200 * time.Millisecond)
	if n := reloads.Load(); n != 1 {
		t.Fatalf("expected 1 reload for a burst, got %d", n)
	}
}

func TestWatch_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	var reloads atomic.Int32
	stop := startWatch(t, dir, func() error {
		reloads.Add(1)
		return nil
	}, nil)
	defer stop()

	if err := os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	time.Sleep(300 * time.Millisecond)
	if n := reloads.Load(); n != 0 {
		t.Fatalf("expected no reload for non-content file, got %d", n)
	}
}

func TestWatch_ReloadErrorIsLoggedAndWatchingContinues(t *testing.T) {
	dir := t.TempDir()
	core, logs := observer.New(zapcore.InfoLevel)
	var reloads atomic.Int32
	stop := startWatch(t, dir, func() error {
		reloads.Add(1)
		return errors.New("broken")
	}, zap.New(core))
	defer stop()

	write := func(name string) {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	write("a.md")
	waitFor(t, func() bool { return reloads.Load() == 1 })
	write("b.md")
	waitFor(t, func() bool { return reloads.Load() == 2 })

	waitFor(t, func() bool { return logs.FilterMessage("reload failed").Len() == 2 })
}

func TestWatch_MissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "nope"), testExts, func() error { return nil }, nil)
	if err == nil {
		t.Fatal("expected error for missing directory")
	}
}
