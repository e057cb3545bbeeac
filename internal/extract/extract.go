// Package extract writes the code snippets embedded in lessons out to the
// practice workspace as standalone files, ready to compile and edit.
package extract

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/far120/mystudy/internal/types"
)

// extensions maps fence labels to file extensions. Labels outside this map
// are skipped: prose fences ("text", "bash" transcripts) are not exercises.
var extensions = map[string]string{
	"ts":         ".ts",
	"tsx":        ".tsx",
	"typescript": ".ts",
	"js":         ".js",
	"jsx":        ".jsx",
	"javascript": ".js",
	"html":       ".html",
	"css":        ".css",
	"json":       ".json",
}

// Result summarizes an extraction run.
type Result struct {
	FilesWritten []string
	Skipped      int
}

// Extractor writes lesson snippets under an output directory, one
// subdirectory per track.
type Extractor struct {
	outputDir string
	languages map[string]bool // optional filter; nil means all extractable
	out       io.Writer
}

// New creates an extractor targeting outputDir. Progress goes to out (pass
// io.Discard to silence it).
func New(outputDir string, out io.Writer) *Extractor {
	if out == nil {
		out = io.Discard
	}
	return &Extractor{outputDir: outputDir, out: out}
}

// SetLanguages restricts extraction to the given fence labels.
func (e *Extractor) SetLanguages(languages []string) {
	if len(languages) == 0 {
		e.languages = nil
		return
	}
	e.languages = make(map[string]bool, len(languages))
	for _, lang := range languages {
		e.languages[lang] = true
	}
}

// Run writes the snippets of every given lesson. Files are named
// <slug>-<n><ext> where n is the 1-based snippet position within the lesson,
// counting only extracted snippets. Existing files are overwritten: the
// workspace copy of a snippet tracks the lesson.
func (e *Extractor) Run(lessons []*types.LessonInfo) (*Result, error) {
	result := &Result{}

	for _, lesson := range lessons {
		n := 0
		for _, snippet := range lesson.Snippets {
			ext, ok := extensions[snippet.Language]
			if !ok || (e.languages != nil && !e.languages[snippet.Language]) {
				result.Skipped++
				continue
			}
			n++

			dir := filepath.Join(e.outputDir, lesson.Track)
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create directory %s: %w", dir, err)
			}

			name := fmt.Sprintf("%s-%d%s", lesson.Slug, n, ext)
			path := filepath.Join(dir, name)
			if err := os.WriteFile(path, []byte(snippet.Code+"\n"), 0644); err != nil {
				return nil, fmt.Errorf("failed to write %s: %w", path, err)
			}

			result.FilesWritten = append(result.FilesWritten, path)
			fmt.Fprintf(e.out, "  ✓ %s\n", filepath.Join(lesson.Track, name))
		}
	}

	return result, nil
}
