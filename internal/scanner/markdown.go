package scanner

import (
	"regexp"
	"strings"

	"github.com/far120/mystudy/internal/types"
)

// fencePattern matches the opening of a fenced code block and captures the
// info string (language label).
var fencePattern = regexp.MustCompile("^(```+|~~~+)\\s*([A-Za-z0-9+#._-]*)")

// linkPattern matches inline Markdown links and images, capturing the
// destination. Titles after the destination are ignored.
var linkPattern = regexp.MustCompile(`!?\[[^\]]*\]\(\s*<?([^)<>\s]+)>?[^)]*\)`)

// parseTitle returns the text of the first level-one heading in the body,
// or the empty string when none exists before the second heading level.
func parseTitle(body string) string {
	inFence := false
	for _, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if fencePattern.MatchString(trimmed) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}
		if strings.HasPrefix(trimmed, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(trimmed, "# "))
		}
	}
	return ""
}

// parseSnippets extracts fenced code blocks from a lesson body. The line
// number recorded is the 1-based line of the opening fence.
func parseSnippets(body string) []types.SnippetInfo {
	var snippets []types.SnippetInfo

	lines := strings.Split(body, "\n")
	var (
		inFence   bool
		fence     string
		language  string
		openLine  int
		codeLines []string
	)

	for i, line := range lines {
		trimmed := strings.TrimSpace(line)

		if !inFence {
			m := fencePattern.FindStringSubmatch(trimmed)
			if m != nil {
				inFence = true
				fence = m[1][:3]
				language = strings.ToLower(m[2])
				openLine = i + 1
				codeLines = codeLines[:0]
			}
			continue
		}

		if strings.HasPrefix(trimmed, fence) {
			snippets = append(snippets, types.SnippetInfo{
				Language: language,
				Code:     strings.Join(codeLines, "\n"),
				Line:     openLine,
			})
			inFence = false
			continue
		}

		codeLines = append(codeLines, line)
	}

	return snippets
}

// parseLinks extracts link and image destinations from a lesson body,
// skipping fenced code blocks so example markup is not linted as real links.
func parseLinks(body string) []types.LinkInfo {
	var links []types.LinkInfo

	inFence := false
	for i, line := range strings.Split(body, "\n") {
		trimmed := strings.TrimSpace(line)
		if fencePattern.MatchString(trimmed) {
			inFence = !inFence
			continue
		}
		if inFence {
			continue
		}

		for _, m := range linkPattern.FindAllStringSubmatch(line, -1) {
			links = append(links, types.LinkInfo{
				Target: m[1],
				Line:   i + 1,
			})
		}
	}

	return links
}
