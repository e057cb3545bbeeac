// Package lint validates the lesson corpus: frontmatter problems, duplicate
// ordering within a track, broken relative links, and unlabeled code fences.
package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/far120/mystudy/internal/errors"
	"github.com/far120/mystudy/internal/registry"
	"github.com/far120/mystudy/internal/render"
	"github.com/far120/mystudy/internal/types"
)

// Linter runs corpus-level validation rules over registered lessons.
type Linter struct {
	renderer *render.LessonRenderer
}

// NewLinter creates a linter.
func NewLinter() *Linter {
	return &Linter{renderer: render.NewLessonRenderer()}
}

// Run checks every lesson in the registry and records findings in the
// collector. Scanner-level problems (unreadable files, bad frontmatter) are
// expected to already be in the collector.
func (l *Linter) Run(reg *registry.LessonRegistry, collector *errors.ErrorCollector) {
	lessons := reg.Sorted()

	l.checkDuplicateOrders(lessons, collector)
	for _, lesson := range lessons {
		l.checkLesson(lesson, collector)
	}
}

// checkDuplicateOrders flags tracks where two lessons claim the same
// non-zero position.
func (l *Linter) checkDuplicateOrders(lessons []*types.LessonInfo, collector *errors.ErrorCollector) {
	seen := make(map[string]*types.LessonInfo)
	for _, lesson := range lessons {
		if lesson.Order == 0 {
			continue
		}
		key := fmt.Sprintf("%s/%d", lesson.Track, lesson.Order)
		if prev, ok := seen[key]; ok {
			collector.Add(errors.LintError{
				Lesson:   lesson.Key(),
				File:     lesson.FilePath,
				Rule:     "duplicate-order",
				Message:  fmt.Sprintf("order %d in track %q is already used by %s", lesson.Order, lesson.Track, prev.FilePath),
				Severity: errors.SeverityError,
			})
			continue
		}
		seen[key] = lesson
	}
}

func (l *Linter) checkLesson(lesson *types.LessonInfo, collector *errors.ErrorCollector) {
	if lesson.Draft {
		collector.Add(errors.LintError{
			Lesson:   lesson.Key(),
			File:     lesson.FilePath,
			Rule:     "draft",
			Message:  "lesson is marked draft and is excluded from listings",
			Severity: errors.SeverityInfo,
		})
	}

	if !hasTopHeading(lesson.Body) {
		collector.Add(errors.LintError{
			Lesson:   lesson.Key(),
			File:     lesson.FilePath,
			Rule:     "missing-heading",
			Message:  "lesson has no level-one heading",
			Severity: errors.SeverityWarning,
		})
	}

	for _, snippet := range lesson.Snippets {
		if snippet.Language == "" {
			collector.Add(errors.LintError{
				Lesson:   lesson.Key(),
				File:     lesson.FilePath,
				Line:     snippet.Line,
				Rule:     "unlabeled-fence",
				Message:  "code fence has no language label",
				Severity: errors.SeverityWarning,
			})
		}
	}

	l.checkLinks(lesson, collector)
}

// checkLinks renders the lesson and verifies that every relative destination
// in the output resolves to an existing file. Rendering catches links written
// as raw HTML as well as Markdown ones.
func (l *Linter) checkLinks(lesson *types.LessonInfo, collector *errors.ErrorCollector) {
	rendered, err := l.renderer.Render(lesson.Body)
	if err != nil {
		collector.Add(errors.LintError{
			Lesson:   lesson.Key(),
			File:     lesson.FilePath,
			Rule:     "render",
			Message:  err.Error(),
			Severity: errors.SeverityError,
		})
		return
	}

	targets, err := render.ExtractLinks(rendered)
	if err != nil {
		collector.AddError(err)
		return
	}

	baseDir := filepath.Dir(lesson.FilePath)
	for _, target := range targets {
		link := types.LinkInfo{Target: target}
		if !link.IsRelative() {
			continue
		}

		// Drop any fragment before resolving on disk
		path := target
		if idx := strings.IndexByte(path, '#'); idx >= 0 {
			path = path[:idx]
		}
		if path == "" {
			continue
		}

		resolved := filepath.Join(baseDir, filepath.FromSlash(path))
		if _, statErr := os.Stat(resolved); statErr != nil {
			collector.Add(errors.LintError{
				Lesson:   lesson.Key(),
				File:     lesson.FilePath,
				Line:     lineOf(lesson, target),
				Rule:     "broken-link",
				Message:  fmt.Sprintf("target does not exist: %s", target),
				Severity: errors.SeverityError,
			})
		}
	}
}

// lineOf recovers the source line of a link target from the scanner's link
// records, 0 when the target only appears in generated output.
func lineOf(lesson *types.LessonInfo, target string) int {
	for _, link := range lesson.Links {
		if link.Target == target {
			return link.Line
		}
	}
	return 0
}

// hasTopHeading reports whether the body contains a level-one ATX heading
// outside of code fences.
func hasTopHeading(body string) bool {
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") || strings.HasPrefix(trimmed, "~~~") {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			return true
		}
	}
	return false
}
