package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/far120/mystudy/internal/config"
	"github.com/far120/mystudy/internal/watcher"
)

func newTestServer(t *testing.T) *PreviewServer {
	t.Helper()

	dir := t.TempDir()
	writeLesson(t, dir, "html-css", "01-html-basics.md", `---
title: HTML Basics
order: 1
duration: 30
---

# HTML Basics

Start with the structure of a page.

`+"```html\n<p>hello</p>\n```\n")
	writeLesson(t, dir, "typescript", "02-functions.md", `---
title: Functions
order: 2
---

# Functions

Typed parameters and return values.
`)
	writeLesson(t, dir, "typescript", "09-secret.md", `---
title: Secret
order: 9
draft: true
---

# Secret
`)

	cfg := &config.Config{}
	cfg.Server.Host = "localhost"
	cfg.Server.Port = 8080
	cfg.Lessons.ScanPaths = []string{dir}
	cfg.Progress.Database = filepath.Join(t.TempDir(), "progress.db")

	s, err := New(cfg)
	require.NoError(t, err)
	t.Cleanup(func() {
		s.store.Close()
		s.watcher.Stop()
	})

	require.NoError(t, s.initialScan())
	return s
}

func writeLesson(t *testing.T, root, track, name, content string) {
	t.Helper()
	dir := filepath.Join(root, track)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
}

func TestHandleHealth(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var health map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "healthy", health["status"])
}

func TestHandleHealthRejectsPost(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/health", nil)
	rec := httptest.NewRecorder()
	s.handleHealth(rec, req)

	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestHandleLessonsListsSortedNonDrafts(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
	rec := httptest.NewRecorder()
	s.handleLessons(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var lessons []lessonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lessons))
	require.Len(t, lessons, 2)
	assert.Equal(t, "html-css/html-basics", lessons[0].Key)
	assert.Equal(t, "typescript/functions", lessons[1].Key)
	for _, lesson := range lessons {
		assert.False(t, lesson.Draft)
	}
}

func TestHandleLessonsIncludesDraftsWhenConfigured(t *testing.T) {
	s := newTestServer(t)
	s.config.Lessons.IncludeDrafts = true

	req := httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
	rec := httptest.NewRecorder()
	s.handleLessons(rec, req)

	var lessons []lessonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lessons))
	assert.Len(t, lessons, 3)
}

func TestHandleLessonsReflectsProgress(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.store.Mark("html-css/html-basics"))

	req := httptest.NewRequest(http.MethodGet, "/api/lessons", nil)
	rec := httptest.NewRecorder()
	s.handleLessons(rec, req)

	var lessons []lessonResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &lessons))
	require.Len(t, lessons, 2)
	assert.True(t, lessons[0].Done)
	assert.False(t, lessons[1].Done)
}

func TestHandleTracks(t *testing.T) {
	s := newTestServer(t)
	require.NoError(t, s.store.Mark("typescript/functions"))

	req := httptest.NewRequest(http.MethodGet, "/api/tracks", nil)
	rec := httptest.NewRecorder()
	s.handleTracks(rec, req)

	var tracks []trackResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &tracks))
	require.Len(t, tracks, 2)

	byName := make(map[string]trackResponse)
	for _, tr := range tracks {
		byName[tr.Track] = tr
	}
	assert.Equal(t, 1, byName["html-css"].Lessons)
	assert.Equal(t, 0, byName["html-css"].Completed)
	assert.Equal(t, 1, byName["typescript"].Lessons)
	assert.Equal(t, 1, byName["typescript"].Completed)
	assert.Equal(t, "Html Css", byName["html-css"].Title)
}

func TestHandleLessonRendersMarkdown(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/lesson/html-css/html-basics", nil)
	rec := httptest.NewRecorder()
	s.handleLesson(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<h1")
	assert.Contains(t, body, "HTML Basics")
	assert.Contains(t, body, "hello")
}

func TestHandleLessonNotFound(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/lesson/html-css/nope", nil)
	rec := httptest.NewRecorder()
	s.handleLesson(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleLessonRejectsTraversal(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/lesson/../../etc/passwd", nil)
	req.URL.Path = "/lesson/../../etc/passwd"
	rec := httptest.NewRecorder()
	s.handleLesson(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleIndexListsTracks(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.handleIndex(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Html Css")
	assert.Contains(t, body, "Typescript")
	assert.Contains(t, body, "/lesson/html-css/html-basics")
	assert.NotContains(t, body, "Secret")
}

func TestHandleIndexUnknownPath(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/nope", nil)
	rec := httptest.NewRecorder()
	s.handleIndex(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func broadcastFor(t *testing.T, s *PreviewServer, events []watcher.ChangeEvent) UpdateMessage {
	t.Helper()

	done := make(chan error, 1)
	go func() {
		done <- s.handleFileChange(events)
	}()

	var msg UpdateMessage
	select {
	case data := <-s.broadcast:
		require.NoError(t, json.Unmarshal(data, &msg))
	case <-time.After(time.Second):
		t.Fatal("no message broadcast")
	}
	require.NoError(t, <-done)
	return msg
}

func TestHandleFileChangeTargetsEditedLesson(t *testing.T) {
	s := newTestServer(t)
	path := filepath.Join(s.config.Lessons.ScanPaths[0], "html-css", "01-html-basics.md")

	msg := broadcastFor(t, s, []watcher.ChangeEvent{
		{Type: watcher.EventTypeModified, Path: path},
	})

	assert.Equal(t, messageLessonUpdate, msg.Type)
	assert.Equal(t, "html-css/html-basics", msg.Target)
}

func TestHandleFileChangeFullReloadOnDelete(t *testing.T) {
	s := newTestServer(t)
	path := filepath.Join(s.config.Lessons.ScanPaths[0], "typescript", "02-functions.md")

	msg := broadcastFor(t, s, []watcher.ChangeEvent{
		{Type: watcher.EventTypeDeleted, Path: path},
	})

	assert.Equal(t, messageFullReload, msg.Type)
	assert.Empty(t, msg.Target)

	_, ok := s.registry.Get("typescript/functions")
	assert.False(t, ok)
}

func TestHandleFileChangeRescanKeepsTrackForNestedLessons(t *testing.T) {
	s := newTestServer(t)
	root := s.config.Lessons.ScanPaths[0]

	nested := filepath.Join(root, "react", "hooks")
	require.NoError(t, os.MkdirAll(nested, 0755))
	path := filepath.Join(nested, "03-use-state.md")
	require.NoError(t, os.WriteFile(path, []byte("# useState\n"), 0644))
	require.NoError(t, s.initialScan())
	before := s.registry.Count()

	msg := broadcastFor(t, s, []watcher.ChangeEvent{
		{Type: watcher.EventTypeModified, Path: path},
	})

	assert.Equal(t, "react/use-state", msg.Target)
	assert.Equal(t, before, s.registry.Count())
}

func TestValidateLessonKey(t *testing.T) {
	assert.NoError(t, validateLessonKey("html-css/html-basics"))
	assert.Error(t, validateLessonKey(""))
	assert.Error(t, validateLessonKey("../etc/passwd"))
	assert.Error(t, validateLessonKey("/abs/path"))
	assert.Error(t, validateLessonKey("no-slash"))
	assert.Error(t, validateLessonKey("a/b/c"))
	assert.Error(t, validateLessonKey("track/<script>"))
}
