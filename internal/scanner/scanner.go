// Package scanner provides lesson discovery and analysis for Markdown
// curriculum files.
//
// The scanner traverses scan paths to find .md lesson files, extracts YAML
// frontmatter, the lesson title, fenced code snippets, and link targets, and
// registers the result with the lesson registry so change events reach the
// preview server. File hashes are maintained for cheap change detection and
// directory scans run with bounded concurrency.
package scanner

import (
	"fmt"
	"hash/crc32"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/far120/mystudy/internal/errors"
	"github.com/far120/mystudy/internal/registry"
	"github.com/far120/mystudy/internal/types"
)

// LessonScanner discovers and parses Markdown lessons.
type LessonScanner struct {
	// registry receives discovered lessons and broadcasts change events
	registry *registry.LessonRegistry
	// collector accumulates per-file problems without aborting the scan
	collector *errors.ErrorCollector
	// excludePatterns are matched against base names and path elements
	excludePatterns []string
}

// NewLessonScanner creates a new lesson scanner
func NewLessonScanner(reg *registry.LessonRegistry) *LessonScanner {
	return &LessonScanner{
		registry:  reg,
		collector: errors.NewErrorCollector(),
	}
}

// SetExcludePatterns configures patterns for files and directories that the
// scanner skips (e.g., "README.md", "node_modules").
func (s *LessonScanner) SetExcludePatterns(patterns []string) {
	s.excludePatterns = patterns
}

// excluded reports whether a file or directory base name matches any
// configured exclude pattern.
func (s *LessonScanner) excluded(name string) bool {
	for _, pattern := range s.excludePatterns {
		if matched, _ := filepath.Match(pattern, name); matched {
			return true
		}
		if pattern == name {
			return true
		}
	}
	return false
}

// Registry returns the lesson registry
func (s *LessonScanner) Registry() *registry.LessonRegistry {
	return s.registry
}

// Errors returns the collector holding per-file scan problems.
func (s *LessonScanner) Errors() *errors.ErrorCollector {
	return s.collector
}

// ScanDirectory scans a directory tree for Markdown lessons. Files that fail
// to parse are recorded in the error collector; only traversal failures abort
// the scan.
func (s *LessonScanner) ScanDirectory(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("scan directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("scan directory: %s is not a directory", dir)
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && s.excluded(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(path), ".md") {
			return nil
		}
		if s.excluded(d.Name()) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return fmt.Errorf("walking %s: %w", dir, err)
	}

	workers := runtime.NumCPU()
	if workers > 8 {
		workers = 8
	}

	var g errgroup.Group
	g.SetLimit(workers)
	for _, file := range files {
		file := file
		g.Go(func() error {
			track := s.trackFor(dir, file)
			if err := s.scanFile(file, track); err != nil {
				s.collector.AddError(err)
			}
			return nil
		})
	}
	return g.Wait()
}

// ScanFile scans a single lesson file, deriving the track from its location
// under root exactly as a directory scan would. Used by the watcher for
// incremental rescans and for lesson files named on the command line.
func (s *LessonScanner) ScanFile(root, path string) error {
	return s.scanFile(path, s.trackFor(root, path))
}

// trackFor derives the track name from the file's location under the scan
// root: the first path element of the relative directory, or "general" for
// lessons at the root itself.
func (s *LessonScanner) trackFor(root, file string) string {
	rel, err := filepath.Rel(root, file)
	if err != nil {
		return "general"
	}
	rel = filepath.ToSlash(rel)
	if idx := strings.Index(rel, "/"); idx > 0 {
		return rel[:idx]
	}
	return "general"
}

func (s *LessonScanner) scanFile(path, track string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", path, err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}

	lesson, err := s.parseLesson(path, track, data)
	if err != nil {
		s.collector.Add(errors.LintError{
			File:     path,
			Rule:     "frontmatter",
			Message:  err.Error(),
			Severity: errors.SeverityError,
		})
		return nil
	}

	lesson.LastMod = info.ModTime()
	lesson.Hash = fmt.Sprintf("%08x", crc32.ChecksumIEEE(data))

	s.registry.Register(lesson)
	return nil
}

// parseLesson builds a LessonInfo from raw file content.
func (s *LessonScanner) parseLesson(path, track string, data []byte) (*types.LessonInfo, error) {
	fm, err := ExtractFrontmatter(string(data))
	if err != nil {
		switch e := err.(type) {
		case *FrontmatterParseError:
			e.File = path
		case *UnknownFieldError:
			e.File = path
		}
		return nil, err
	}

	filename := filepath.Base(path)
	config := fm.Config

	// Heading beats the slug-derived fallback, frontmatter beats both.
	if config.Title == "" {
		config.Title = parseTitle(fm.Body)
	}
	config.ApplyDefaults(filename, track)

	lesson := &types.LessonInfo{
		Slug:        slugFromFilename(filename),
		Track:       config.Track,
		Order:       config.Order,
		Title:       config.Title,
		Description: config.Description,
		FilePath:    path,
		Tags:        config.Tags,
		Duration:    config.Duration,
		Draft:       config.Draft,
		Snippets:    parseSnippets(fm.Body),
		Links:       parseLinks(fm.Body),
		Body:        fm.Body,
		Meta:        config.Meta,
	}

	return lesson, nil
}
