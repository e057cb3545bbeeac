package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/far120/mystudy/internal/config"
	"github.com/far120/mystudy/internal/registry"
	"github.com/far120/mystudy/internal/scanner"
	"github.com/far120/mystudy/internal/types"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"l"},
	Short:   "List all discovered lessons",
	Long: `List all discovered lessons with their track, order, and metadata.

Examples:
  mystudy list                    # List all lessons in table format
  mystudy list -f json            # Output as JSON
  mystudy list --format yaml      # Output as YAML
  mystudy list -t typescript      # Only the typescript track
  mystudy list --drafts           # Include draft lessons`,
	RunE: runList,
}

var (
	listFormat string
	listTrack  string
	listDrafts bool
)

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVarP(&listFormat, "format", "f", "table", "Output format (table, json, yaml)")
	listCmd.Flags().StringVarP(&listTrack, "track", "t", "", "Only show lessons from this track")
	listCmd.Flags().BoolVar(&listDrafts, "drafts", false, "Include draft lessons")
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	lessons, err := scanLessons(cfg)
	if err != nil {
		return err
	}

	filtered := make([]*types.LessonInfo, 0, len(lessons))
	for _, lesson := range lessons {
		if listTrack != "" && lesson.Track != listTrack {
			continue
		}
		if lesson.Draft && !listDrafts && !cfg.Lessons.IncludeDrafts {
			continue
		}
		filtered = append(filtered, lesson)
	}

	if len(filtered) == 0 {
		fmt.Println("No lessons found.")
		return nil
	}

	switch strings.ToLower(listFormat) {
	case "json":
		return outputListJSON(filtered)
	case "yaml":
		return outputListYAML(filtered)
	case "table":
		return outputListTable(filtered)
	default:
		return fmt.Errorf("unsupported format: %s (expected table, json, or yaml)", listFormat)
	}
}

// scanLessons runs a full scan over the configured paths and returns lessons
// in track and order sequence.
func scanLessons(cfg *config.Config) ([]*types.LessonInfo, error) {
	reg := registry.NewLessonRegistry()
	s := scanner.NewLessonScanner(reg)
	s.SetExcludePatterns(cfg.Lessons.ExcludePatterns)

	for _, scanPath := range cfg.Lessons.ScanPaths {
		if err := s.ScanDirectory(scanPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to scan directory %s: %v\n", scanPath, err)
		}
	}

	for _, lintErr := range s.Errors().LintErrors() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", lintErr.Error())
	}

	return reg.Sorted(), nil
}

func lessonItem(lesson *types.LessonInfo) map[string]interface{} {
	item := map[string]interface{}{
		"key":       lesson.Key(),
		"track":     lesson.Track,
		"order":     lesson.Order,
		"title":     lesson.Title,
		"file_path": lesson.FilePath,
	}
	if lesson.Description != "" {
		item["description"] = lesson.Description
	}
	if len(lesson.Tags) > 0 {
		item["tags"] = lesson.Tags
	}
	if lesson.Duration > 0 {
		item["duration"] = lesson.Duration
	}
	if lesson.Draft {
		item["draft"] = true
	}
	return item
}

func outputListJSON(lessons []*types.LessonInfo) error {
	output := make([]map[string]interface{}, len(lessons))
	for i, lesson := range lessons {
		output[i] = lessonItem(lesson)
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(output)
}

func outputListYAML(lessons []*types.LessonInfo) error {
	output := make([]map[string]interface{}, len(lessons))
	for i, lesson := range lessons {
		output[i] = lessonItem(lesson)
	}

	encoder := yaml.NewEncoder(os.Stdout)
	defer encoder.Close()
	return encoder.Encode(output)
}

func outputListTable(lessons []*types.LessonInfo) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer w.Flush()

	fmt.Fprintln(w, "TRACK\tORDER\tTITLE\tDURATION\tFILE")

	for _, lesson := range lessons {
		duration := ""
		if lesson.Duration > 0 {
			duration = fmt.Sprintf("%d min", lesson.Duration)
		}
		title := lesson.Title
		if lesson.Draft {
			title += " (draft)"
		}
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n",
			lesson.Track,
			lesson.Order,
			title,
			duration,
			lesson.FilePath,
		)
	}

	fmt.Fprintf(w, "\nTotal: %d lessons\n", len(lessons))

	return nil
}
