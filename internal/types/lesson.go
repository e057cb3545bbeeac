// Package types provides common type definitions used throughout the mystudy CLI.
// This package contains shared types to avoid circular dependencies between packages.
package types

import (
	"path"
	"strings"
	"time"
)

// LessonInfo contains metadata about a discovered Markdown lesson, including
// its position in the curriculum, embedded code snippets, and change-detection
// information used by the scanner, registry, and preview server.
type LessonInfo struct {
	// Slug is the lesson identifier derived from the filename (e.g., "basic-types")
	Slug string
	// Track is the curriculum track the lesson belongs to (e.g., "week1-foundations")
	Track string
	// Order is the lesson's position within its track, parsed from the
	// numeric filename prefix (0 when no prefix is present)
	Order int
	// Title is the human-readable lesson title from frontmatter or the
	// first level-one heading
	Title string
	// Description is an optional one-line summary from frontmatter
	Description string
	// FilePath is the path to the .md file containing the lesson
	FilePath string
	// Tags lists frontmatter topic tags (e.g., "react", "hooks")
	Tags []string
	// Duration is the estimated completion time in minutes (0 when unset)
	Duration int
	// Draft marks lessons that are excluded from listings and serving
	Draft bool
	// Snippets contains the fenced code blocks embedded in the lesson body
	Snippets []SnippetInfo
	// Links lists link targets referenced by the lesson body
	Links []LinkInfo
	// Body is the lesson Markdown with frontmatter stripped
	Body string
	// LastMod tracks the last modification time for change detection
	LastMod time.Time
	// Hash provides a CRC32 checksum for efficient change detection
	Hash string
	// Meta stores custom frontmatter fields outside the known schema
	Meta map[string]any
}

// Key returns the registry key for the lesson, unique across tracks.
func (l *LessonInfo) Key() string {
	return path.Join(l.Track, l.Slug)
}

// SnippetInfo describes a fenced code block extracted from a lesson body.
type SnippetInfo struct {
	// Language is the fence info string (e.g., "tsx", "css"); empty for
	// unlabeled fences
	Language string
	// Code is the fence content without the surrounding delimiters
	Code string
	// Line is the 1-based line of the opening fence within the lesson body
	Line int
}

// LinkInfo describes a link target referenced by a lesson.
type LinkInfo struct {
	// Target is the raw link destination as written in the lesson
	Target string
	// Line is the 1-based line the link appears on within the lesson body
	Line int
}

// IsRelative reports whether the link points at a local file rather than an
// external URL or in-page anchor.
func (l LinkInfo) IsRelative() bool {
	if l.Target == "" || l.Target[0] == '#' {
		return false
	}
	if strings.Contains(l.Target, "://") || strings.HasPrefix(l.Target, "mailto:") || strings.HasPrefix(l.Target, "tel:") {
		return false
	}
	return true
}

// EventType represents the type of lesson change event.
type EventType string

const (
	EventTypeAdded   EventType = "added"
	EventTypeUpdated EventType = "updated"
	EventTypeRemoved EventType = "removed"
)

// LessonEvent represents a change in the lesson registry, used for real-time
// notifications to watchers like the preview server.
type LessonEvent struct {
	// Type indicates the kind of change (added, updated, removed)
	Type EventType
	// Lesson contains the lesson information (may be nil for removed events)
	Lesson *LessonInfo
	// Timestamp records when the event occurred for ordering and filtering
	Timestamp time.Time
}
