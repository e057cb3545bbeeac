package scanner

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter represents parsed YAML frontmatter of a lesson file.
// Unknown fields cause parse errors (use Meta for extensions).
type Frontmatter struct {
	Title       string         `yaml:"title"`
	Description string         `yaml:"description"`
	Track       string         `yaml:"track"`
	Order       int            `yaml:"order"`
	Tags        []string       `yaml:"tags"`
	Duration    int            `yaml:"duration"` // estimated minutes
	Draft       bool           `yaml:"draft"`
	Meta        map[string]any `yaml:"meta"` // Extension point for custom fields
}

// FrontmatterResult holds the result of frontmatter extraction.
type FrontmatterResult struct {
	Config  *Frontmatter
	Body    string // Markdown content after frontmatter
	HasYAML bool   // Whether a frontmatter block was found
}

// frontmatterPattern matches a leading --- ... --- block
var frontmatterPattern = regexp.MustCompile(`(?s)\A---\s*\n(.*?)\n---\s*(\n|\z)`)

// ExtractFrontmatter extracts YAML frontmatter from lesson content.
// Returns the parsed config, remaining Markdown, and any error.
func ExtractFrontmatter(content string) (*FrontmatterResult, error) {
	result := &FrontmatterResult{
		Config:  &Frontmatter{},
		Body:    content,
		HasYAML: false,
	}

	matches := frontmatterPattern.FindStringSubmatch(content)
	if matches == nil {
		// No frontmatter found, return content as-is
		return result, nil
	}

	result.HasYAML = true
	yamlContent := matches[1]
	result.Body = frontmatterPattern.ReplaceAllString(content, "")

	config, err := parseFrontmatterYAML(yamlContent)
	if err != nil {
		return nil, err
	}

	result.Config = config
	return result, nil
}

// parseFrontmatterYAML parses YAML content with strict field validation.
func parseFrontmatterYAML(yamlContent string) (*Frontmatter, error) {
	// First, decode into a map to check for unknown fields
	var rawMap map[string]any
	if err := yaml.Unmarshal([]byte(yamlContent), &rawMap); err != nil {
		return nil, &FrontmatterParseError{
			Message: fmt.Sprintf("invalid YAML: %v", err),
		}
	}

	knownFields := map[string]bool{
		"title":       true,
		"description": true,
		"track":       true,
		"order":       true,
		"tags":        true,
		"duration":    true,
		"draft":       true,
		"meta":        true,
	}

	for field := range rawMap {
		if !knownFields[field] {
			return nil, &UnknownFieldError{Field: field}
		}
	}

	var config Frontmatter
	if err := yaml.Unmarshal([]byte(yamlContent), &config); err != nil {
		return nil, &FrontmatterParseError{
			Message: fmt.Sprintf("failed to parse frontmatter: %v", err),
		}
	}

	if config.Order < 0 {
		return nil, &FrontmatterParseError{
			Message: fmt.Sprintf("order must not be negative, got %d", config.Order),
		}
	}
	if config.Duration < 0 {
		return nil, &FrontmatterParseError{
			Message: fmt.Sprintf("duration must not be negative, got %d", config.Duration),
		}
	}

	return &config, nil
}

// ApplyDefaults fills missing frontmatter values from file context.
func (f *Frontmatter) ApplyDefaults(filename string, dirPath string) {
	if f.Title == "" {
		f.Title = titleFromSlug(slugFromFilename(filename))
	}
	if f.Track == "" && dirPath != "" {
		f.Track = dirPath
	}
	if f.Order == 0 {
		f.Order = orderFromFilename(filename)
	}
}

// orderPrefixPattern matches numeric lesson prefixes like "01-", "3_" or "12."
var orderPrefixPattern = regexp.MustCompile(`^(\d+)\s*[-_.]\s*`)

// slugFromFilename derives the lesson slug from the markdown filename:
// the numeric order prefix and extension are dropped, the rest is lowercased
// with spaces collapsed to hyphens.
func slugFromFilename(filename string) string {
	name := strings.TrimSuffix(filename, ".md")
	name = orderPrefixPattern.ReplaceAllString(name, "")
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.ReplaceAll(name, " ", "-")
	name = strings.ReplaceAll(name, "_", "-")
	if name == "" {
		name = strings.TrimSuffix(filename, ".md")
	}
	return name
}

// orderFromFilename parses the numeric prefix of a lesson filename, 0 when absent.
func orderFromFilename(filename string) int {
	matches := orderPrefixPattern.FindStringSubmatch(filename)
	if matches == nil {
		return 0
	}
	var order int
	fmt.Sscanf(matches[1], "%d", &order)
	return order
}

// titleFromSlug produces a readable fallback title from a slug.
func titleFromSlug(slug string) string {
	return strings.ReplaceAll(slug, "-", " ")
}

// FrontmatterParseError represents a frontmatter parsing error.
type FrontmatterParseError struct {
	File    string
	Line    int
	Message string
}

func (e *FrontmatterParseError) Error() string {
	if e.File != "" {
		if e.Line > 0 {
			return fmt.Sprintf("%s:%d: %s", e.File, e.Line, e.Message)
		}
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return e.Message
}

// UnknownFieldError represents an error for unknown frontmatter fields.
type UnknownFieldError struct {
	File  string
	Field string
}

func (e *UnknownFieldError) Error() string {
	msg := fmt.Sprintf("unknown field %q in frontmatter, use \"meta\" field for custom fields", e.Field)
	if e.File != "" {
		return fmt.Sprintf("%s: %s", e.File, msg)
	}
	return msg
}
