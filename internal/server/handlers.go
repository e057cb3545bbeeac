package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/far120/mystudy/internal/types"
)

var trackTitler = cases.Title(language.English)

// humanizeTrack turns a track directory name into a display title,
// e.g. "html-css" becomes "Html Css".
func humanizeTrack(track string) string {
	return trackTitler.String(strings.ReplaceAll(track, "-", " "))
}

const liveReloadScript = `<script>
(function() {
    let ws;
    let reconnectInterval;

    function connect() {
        const protocol = window.location.protocol === 'https:' ? 'wss:' : 'ws:';
        ws = new WebSocket(protocol + '//' + window.location.host + '/ws');

        ws.onmessage = function(event) {
            const message = JSON.parse(event.data);
            if (message.type === 'full_reload') {
                window.location.reload();
            } else if (message.type === 'lesson_update') {
                // Reload the index and the edited lesson; leave other
                // lesson pages alone.
                const path = window.location.pathname;
                if (path === '/' || path === '/lesson/' + message.target) {
                    window.location.reload();
                }
            }
        };

        ws.onopen = function() {
            clearInterval(reconnectInterval);
        };

        ws.onclose = function() {
            reconnectInterval = setInterval(connect, 2000);
        };
    }

    connect();
})();
</script>`

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>My Study - Lessons</title>
    <style>
        body { font-family: system-ui, -apple-system, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
        .container { max-width: 900px; margin: 0 auto; background: white; padding: 20px; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        h1 { color: #333; border-bottom: 2px solid #007acc; padding-bottom: 10px; }
        h2 { color: #007acc; margin-top: 30px; }
        ul { list-style: none; padding: 0; }
        li { padding: 8px 12px; border-bottom: 1px solid #eee; }
        li a { color: #333; text-decoration: none; font-weight: 500; }
        li a:hover { color: #007acc; }
        .done { color: #28a745; margin-right: 6px; }
        .duration { color: #999; font-size: 12px; margin-left: 8px; }
        .empty { color: #856404; background: #fff3cd; padding: 15px; border-radius: 6px; }
    </style>
</head>
<body>
    <div class="container">
        <h1>My Study</h1>
        {{if .Tracks}}
            {{range .Tracks}}
            <h2>{{.Title}}</h2>
            <ul>
                {{range .Lessons}}
                <li>
                    {{if .Done}}<span class="done">&#10003;</span>{{end}}
                    <a href="/lesson/{{.Key}}">{{.Title}}</a>
                    {{if .Duration}}<span class="duration">{{.Duration}} min</span>{{end}}
                </li>
                {{end}}
            </ul>
            {{end}}
        {{else}}
            <div class="empty">No lessons found. Create a Markdown lesson file to get started.</div>
        {{end}}
    </div>
    {{.ReloadScript}}
</body>
</html>`))

var lessonTemplate = template.Must(template.New("lesson").Parse(`<!DOCTYPE html>
<html>
<head>
    <title>{{.Title}} - My Study</title>
    <style>
        body { font-family: system-ui, -apple-system, sans-serif; margin: 0; padding: 20px; background: #f5f5f5; }
        .container { max-width: 800px; margin: 0 auto; background: white; padding: 30px; border-radius: 8px; box-shadow: 0 2px 10px rgba(0,0,0,0.1); }
        .nav { margin-bottom: 20px; }
        .nav a { color: #007acc; text-decoration: none; }
        pre { background: #f8f8f8; border: 1px solid #ddd; border-radius: 6px; padding: 12px; overflow-x: auto; }
        code { font-family: ui-monospace, monospace; font-size: 14px; }
        img { max-width: 100%; }
    </style>
</head>
<body>
    <div class="container">
        <div class="nav"><a href="/">&larr; All lessons</a></div>
        {{.Content}}
    </div>
    {{.ReloadScript}}
</body>
</html>`))

type indexLesson struct {
	Key      string
	Title    string
	Duration int
	Done     bool
}

type indexTrack struct {
	Title   string
	Lessons []indexLesson
}

func (s *PreviewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	lessons := s.registry.Sorted()
	byTrack := make(map[string][]indexLesson)
	var trackOrder []string

	for _, lesson := range lessons {
		if lesson.Draft && !s.config.Lessons.IncludeDrafts {
			continue
		}
		done, err := s.store.Done(lesson.Key())
		if err != nil {
			log.Printf("Failed to read progress for %s: %v", lesson.Key(), err)
		}
		if _, seen := byTrack[lesson.Track]; !seen {
			trackOrder = append(trackOrder, lesson.Track)
		}
		byTrack[lesson.Track] = append(byTrack[lesson.Track], indexLesson{
			Key:      lesson.Key(),
			Title:    lesson.Title,
			Duration: lesson.Duration,
			Done:     done,
		})
	}

	tracks := make([]indexTrack, 0, len(trackOrder))
	for _, track := range trackOrder {
		tracks = append(tracks, indexTrack{
			Title:   humanizeTrack(track),
			Lessons: byTrack[track],
		})
	}

	data := struct {
		Tracks       []indexTrack
		ReloadScript template.HTML
	}{
		Tracks:       tracks,
		ReloadScript: s.reloadScript(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, data); err != nil {
		log.Printf("Failed to render index: %v", err)
	}
}

func (s *PreviewServer) handleLesson(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(r.URL.Path, "/lesson/")

	if err := validateLessonKey(key); err != nil {
		http.Error(w, "Invalid lesson key: "+err.Error(), http.StatusBadRequest)
		return
	}

	lesson, exists := s.registry.Get(key)
	if !exists {
		http.NotFound(w, r)
		return
	}

	rendered, err := s.renderer.Render(lesson.Body)
	if err != nil {
		http.Error(w, fmt.Sprintf("Error rendering lesson %s: %v", key, err), http.StatusInternalServerError)
		return
	}

	data := struct {
		Title        string
		Content      template.HTML
		ReloadScript template.HTML
	}{
		Title:        lesson.Title,
		Content:      template.HTML(rendered),
		ReloadScript: s.reloadScript(),
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := lessonTemplate.Execute(w, data); err != nil {
		log.Printf("Failed to render lesson page: %v", err)
	}
}

func (s *PreviewServer) reloadScript() template.HTML {
	if s.config.Development.HotReload {
		return template.HTML(liveReloadScript)
	}
	return ""
}

// lessonResponse is the JSON shape served by the lessons API.
type lessonResponse struct {
	Key         string   `json:"key"`
	Track       string   `json:"track"`
	Order       int      `json:"order"`
	Title       string   `json:"title"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Duration    int      `json:"duration,omitempty"`
	Draft       bool     `json:"draft,omitempty"`
	FilePath    string   `json:"file_path"`
	Done        bool     `json:"done"`
}

func (s *PreviewServer) handleLessons(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	lessons := s.registry.Sorted()
	response := make([]lessonResponse, 0, len(lessons))
	for _, lesson := range lessons {
		if lesson.Draft && !s.config.Lessons.IncludeDrafts {
			continue
		}
		response = append(response, s.toLessonResponse(lesson))
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (s *PreviewServer) toLessonResponse(lesson *types.LessonInfo) lessonResponse {
	done, err := s.store.Done(lesson.Key())
	if err != nil {
		log.Printf("Failed to read progress for %s: %v", lesson.Key(), err)
	}
	return lessonResponse{
		Key:         lesson.Key(),
		Track:       lesson.Track,
		Order:       lesson.Order,
		Title:       lesson.Title,
		Description: lesson.Description,
		Tags:        lesson.Tags,
		Duration:    lesson.Duration,
		Draft:       lesson.Draft,
		FilePath:    lesson.FilePath,
		Done:        done,
	}
}

type trackResponse struct {
	Track     string `json:"track"`
	Title     string `json:"title"`
	Lessons   int    `json:"lessons"`
	Completed int    `json:"completed"`
}

func (s *PreviewServer) handleTracks(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := make([]trackResponse, 0)
	for _, track := range s.registry.Tracks() {
		summary := trackResponse{Track: track, Title: humanizeTrack(track)}
		for _, lesson := range s.registry.Sorted() {
			if lesson.Track != track {
				continue
			}
			if lesson.Draft && !s.config.Lessons.IncludeDrafts {
				continue
			}
			summary.Lessons++
			done, err := s.store.Done(lesson.Key())
			if err == nil && done {
				summary.Completed++
			}
		}
		response = append(response, summary)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// validateLessonKey checks a track/slug key from the URL path.
func validateLessonKey(key string) error {
	if key == "" {
		return errors.New("empty lesson key")
	}

	cleanKey := filepath.Clean(key)

	if strings.Contains(cleanKey, "..") {
		return errors.New("path traversal attempt detected")
	}

	if filepath.IsAbs(cleanKey) {
		return errors.New("absolute path not allowed")
	}

	if strings.Count(cleanKey, "/") != 1 {
		return errors.New("lesson key must be track/slug")
	}

	dangerousChars := []string{"<", ">", "\"", "'", "&", ";", "|", "$", "`", "(", ")", "{", "}", "[", "]", "\\"}
	for _, char := range dangerousChars {
		if strings.Contains(cleanKey, char) {
			return fmt.Errorf("dangerous character not allowed: %s", char)
		}
	}

	if len(cleanKey) > 200 {
		return errors.New("lesson key too long (max 200 characters)")
	}

	return nil
}
