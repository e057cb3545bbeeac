package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventTypeString(t *testing.T) {
	assert.Equal(t, "created", EventTypeCreated.String())
	assert.Equal(t, "modified", EventTypeModified.String())
	assert.Equal(t, "deleted", EventTypeDeleted.String())
	assert.Equal(t, "renamed", EventTypeRenamed.String())
	assert.Equal(t, "unknown", EventType(99).String())
}

func TestMarkdownFilter(t *testing.T) {
	assert.True(t, MarkdownFilter("lessons/01-basics.md"))
	assert.False(t, MarkdownFilter("lessons/01-basics.ts"))
	assert.False(t, MarkdownFilter("README"))
}

func TestNoWorkspaceFilter(t *testing.T) {
	assert.True(t, NoWorkspaceFilter(filepath.Join("html-css", "01-basics.md")))
	assert.False(t, NoWorkspaceFilter(filepath.Join("typescript-examples", "package.json")))
	assert.False(t, NoWorkspaceFilter("typescript-examples"))
}

func TestNoNodeModulesFilter(t *testing.T) {
	assert.True(t, NoNodeModulesFilter(filepath.Join("react", "02-components.md")))
	assert.False(t, NoNodeModulesFilter(filepath.Join("node_modules", "typescript", "package.json")))
	assert.False(t, NoNodeModulesFilter(filepath.Join("sub", "node_modules", "x", "y.md")))
}

func TestDebouncerDeduplicatesByPath(t *testing.T) {
	d := &Debouncer{
		delay:   20 * time.Millisecond,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}

	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "a.md"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "a.md"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "b.md"})

	select {
	case batch := <-d.output:
		assert.Len(t, batch, 2)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for debounced batch")
	}
}

func TestDebouncerResetsTimerOnNewEvents(t *testing.T) {
	d := &Debouncer{
		delay:   50 * time.Millisecond,
		events:  make(chan ChangeEvent, 100),
		output:  make(chan []ChangeEvent, 10),
		pending: make([]ChangeEvent, 0),
	}

	d.addEvent(ChangeEvent{Path: "a.md"})
	time.Sleep(20 * time.Millisecond)
	d.addEvent(ChangeEvent{Path: "b.md"})

	// The first event alone must not have flushed yet
	select {
	case <-d.output:
		t.Fatal("flushed before debounce window elapsed")
	case <-time.After(10 * time.Millisecond):
	}

	select {
	case batch := <-d.output:
		assert.Len(t, batch, 2)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for debounced batch")
	}
}

func TestValidatePathRejectsTraversal(t *testing.T) {
	fw, err := NewLessonWatcher(10 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	_, err = fw.validatePath("../outside")
	assert.Error(t, err)

	_, err = fw.validatePath("/etc/passwd")
	assert.Error(t, err)
}

// chdir is a stand-in for testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
}

func TestWatcherDeliversMarkdownChanges(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	fw, err := NewLessonWatcher(30 * time.Millisecond)
	require.NoError(t, err)
	defer fw.Stop()

	fw.AddFilter(MarkdownFilter)

	var (
		mu      sync.Mutex
		batches [][]ChangeEvent
	)
	fw.AddHandler(func(events []ChangeEvent) error {
		mu.Lock()
		defer mu.Unlock()
		batches = append(batches, events)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))
	require.NoError(t, fw.AddPath("."))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "01-basics.md"), []byte("# Basics\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0644))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, batch := range batches {
			for _, ev := range batch {
				if filepath.Base(ev.Path) == "01-basics.md" {
					return true
				}
			}
		}
		return false
	}, 3*time.Second, 20*time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	for _, batch := range batches {
		for _, ev := range batch {
			assert.NotEqual(t, "ignored.txt", filepath.Base(ev.Path))
		}
	}
}
