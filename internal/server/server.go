// Package server serves rendered lessons over HTTP with live reload.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/far120/mystudy/internal/config"
	"github.com/far120/mystudy/internal/errors"
	"github.com/far120/mystudy/internal/logging"
	"github.com/far120/mystudy/internal/progress"
	"github.com/far120/mystudy/internal/registry"
	"github.com/far120/mystudy/internal/render"
	"github.com/far120/mystudy/internal/scanner"
	"github.com/far120/mystudy/internal/version"
	"github.com/far120/mystudy/internal/watcher"
)

// previewClient is a connected browser tab receiving reload messages
type previewClient struct {
	conn   *websocket.Conn
	send   chan []byte
	server *PreviewServer
}

// PreviewServer serves lessons with live reload capability
type PreviewServer struct {
	config        *config.Config
	httpServer    *http.Server
	serverMutex   sync.RWMutex // Protects httpServer and server state
	clients       map[*websocket.Conn]*previewClient
	clientsMutex  sync.RWMutex
	broadcast     chan []byte
	register      chan *previewClient
	unregister    chan *websocket.Conn
	registry      *registry.LessonRegistry
	watcher       *watcher.LessonWatcher
	scanner       *scanner.LessonScanner
	renderer      *render.LessonRenderer
	collector     *errors.ErrorCollector
	store         *progress.Store
	logger        logging.Logger
	shutdownOnce  sync.Once
	isShutdown    bool
	shutdownMutex sync.RWMutex
}

// UpdateMessage represents a message sent to the browser. Target carries the
// lesson key for lesson_update messages so pages showing other lessons can
// skip the reload.
type UpdateMessage struct {
	Type      string    `json:"type"`
	Target    string    `json:"target,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	messageFullReload   = "full_reload"
	messageLessonUpdate = "lesson_update"
)

// New creates a new preview server
func New(cfg *config.Config) (*PreviewServer, error) {
	reg := registry.NewLessonRegistry()

	fileWatcher, err := watcher.NewLessonWatcher(300 * time.Millisecond)
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	lessonScanner := scanner.NewLessonScanner(reg)
	lessonScanner.SetExcludePatterns(cfg.Lessons.ExcludePatterns)
	lessonRenderer := render.NewLessonRenderer()

	store, err := progress.Open(cfg.Progress.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to open progress store: %w", err)
	}

	return &PreviewServer{
		config:     cfg,
		clients:    make(map[*websocket.Conn]*previewClient),
		broadcast:  make(chan []byte),
		register:   make(chan *previewClient),
		unregister: make(chan *websocket.Conn),
		registry:   reg,
		watcher:    fileWatcher,
		scanner:    lessonScanner,
		renderer:   lessonRenderer,
		collector:  lessonScanner.Errors(),
		store:      store,
		logger:     logging.NewLogger(logging.DefaultConfig()).WithComponent("server"),
	}, nil
}

// Registry exposes the lesson registry for handlers and tests.
func (s *PreviewServer) Registry() *registry.LessonRegistry {
	return s.registry
}

// Start starts the preview server
func (s *PreviewServer) Start(ctx context.Context) error {
	if s.config.Development.HotReload {
		s.setupFileWatcher(ctx)
	}

	if err := s.initialScan(); err != nil {
		s.logger.Warn(ctx, err, "Initial scan failed")
	}

	go s.runPreviewHub(ctx)

	mux := s.routes()
	handler := s.addMiddleware(mux)

	addr := fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port)

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: handler,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	if s.config.Server.Open && !s.config.Server.NoOpen {
		go s.openBrowser(fmt.Sprintf("http://%s", addr))
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

func (s *PreviewServer) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/lessons", s.handleLessons)
	mux.HandleFunc("/api/tracks", s.handleTracks)
	mux.HandleFunc("/lesson/", s.handleLesson)
	mux.HandleFunc("/", s.handleIndex)
	return mux
}

func (s *PreviewServer) setupFileWatcher(ctx context.Context) {
	s.watcher.AddFilter(watcher.MarkdownFilter)
	s.watcher.AddFilter(watcher.NoWorkspaceFilter)
	s.watcher.AddFilter(watcher.NoNodeModulesFilter)
	s.watcher.AddFilter(watcher.NoGitFilter)

	s.watcher.AddHandler(s.handleFileChange)

	for _, path := range s.config.Lessons.ScanPaths {
		if err := s.watcher.AddRecursive(path); err != nil {
			s.logger.Warn(ctx, err, "Failed to watch path", "path", path)
		}
	}

	if err := s.watcher.Start(ctx); err != nil {
		s.logger.Warn(ctx, err, "Failed to start file watcher")
	}
}

func (s *PreviewServer) initialScan() error {
	if len(s.config.TargetFiles) > 0 {
		for _, file := range s.config.TargetFiles {
			if err := s.scanner.ScanFile(".", file); err != nil {
				s.logger.Warn(context.Background(), err, "Error scanning file", "path", file)
			}
		}
		s.logger.Info(context.Background(), "Scan complete", "lessons", s.registry.Count())
		return nil
	}

	for _, path := range s.config.Lessons.ScanPaths {
		if err := s.scanner.ScanDirectory(path); err != nil {
			s.logger.Warn(context.Background(), err, "Error scanning path", "path", path)
			continue
		}
	}

	s.logger.Info(context.Background(), "Scan complete", "lessons", s.registry.Count())
	return nil
}

// scanRootFor finds the configured scan path containing path so a rescan
// derives the same track as the initial directory scan.
func (s *PreviewServer) scanRootFor(path string) string {
	cleaned := filepath.Clean(path)
	for _, root := range s.config.Lessons.ScanPaths {
		rel, err := filepath.Rel(root, cleaned)
		if err != nil {
			continue
		}
		if rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return root
		}
	}
	return "."
}

func (s *PreviewServer) handleFileChange(events []watcher.ChangeEvent) error {
	var targets []string
	fullReload := false

	for _, event := range events {
		s.logger.Info(context.Background(), "Lesson changed", "path", event.Path, "event", event.Type.String())

		if event.Type == watcher.EventTypeDeleted || event.Type == watcher.EventTypeRenamed {
			s.registry.RemoveByPath(event.Path)
			fullReload = true
			continue
		}

		if err := s.scanner.ScanFile(s.scanRootFor(event.Path), event.Path); err != nil {
			s.logger.Warn(context.Background(), err, "Failed to rescan file", "path", event.Path)
			fullReload = true
			continue
		}

		if lesson, ok := s.registry.GetByPath(event.Path); ok {
			targets = append(targets, lesson.Key())
		} else {
			fullReload = true
		}
	}

	// A removed lesson changes the index, so fall back to reloading
	// every page. Edits reload only the affected lesson.
	if fullReload {
		s.broadcastMessage(UpdateMessage{
			Type:      messageFullReload,
			Timestamp: time.Now(),
		})
		return nil
	}

	for _, key := range targets {
		s.broadcastMessage(UpdateMessage{
			Type:      messageLessonUpdate,
			Target:    key,
			Timestamp: time.Now(),
		})
	}

	return nil
}

func (s *PreviewServer) openBrowser(url string) {
	time.Sleep(100 * time.Millisecond) // Give server time to start

	var err error
	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", url).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", url).Start()
	case "darwin":
		err = exec.Command("open", url).Start()
	default:
		err = fmt.Errorf("unsupported platform")
	}

	if err != nil {
		s.logger.Warn(context.Background(), err, "Failed to open browser")
	}
}

func (s *PreviewServer) addMiddleware(handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")

		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusOK)
			return
		}

		start := time.Now()
		handler.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *PreviewServer) broadcastMessage(msg UpdateMessage) {
	jsonData, err := json.Marshal(msg)
	if err != nil {
		s.logger.Error(context.Background(), err, "Failed to broadcast message")
		s.broadcast <- []byte(`{"type":"` + messageFullReload + `"}`)
		return
	}

	s.broadcast <- jsonData
}

// Shutdown gracefully shuts down the server and cleans up resources
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(context.Background(), "Shutting down server")

		s.shutdownMutex.Lock()
		s.isShutdown = true
		s.shutdownMutex.Unlock()

		if s.watcher != nil {
			s.watcher.Stop()
		}

		s.clientsMutex.Lock()
		for conn, client := range s.clients {
			close(client.send)
			conn.Close(websocket.StatusNormalClosure, "")
		}
		s.clients = make(map[*websocket.Conn]*previewClient)
		s.clientsMutex.Unlock()

		if s.store != nil {
			if err := s.store.Close(); err != nil {
				s.logger.Warn(context.Background(), err, "Failed to close progress store")
			}
		}

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()

		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}

// handleHealth returns the server health status for health checks
func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"version":   version.GetShortVersion(),
		"checks": map[string]interface{}{
			"server":   map[string]interface{}{"status": "healthy", "message": "HTTP server operational"},
			"registry": map[string]interface{}{"status": "healthy", "lessons": s.registry.Count()},
			"lint":     map[string]interface{}{"status": "healthy", "issues": len(s.collector.LintErrors())},
		},
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Warn(r.Context(), err, "Failed to encode health response")
	}
}
