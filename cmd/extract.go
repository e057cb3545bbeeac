package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/far120/mystudy/internal/config"
	"github.com/far120/mystudy/internal/extract"
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract code snippets from lessons",
	Long: `Extract fenced code blocks from lessons into standalone files, one
subdirectory per track, so the snippets can be compiled and run directly.

Examples:
  mystudy extract                         # Extract all snippets
  mystudy extract --lang typescript       # Only TypeScript snippets
  mystudy extract -o ./snippets           # Custom output directory`,
	RunE: runExtract,
}

var (
	extractOutput    string
	extractLanguages []string
)

func init() {
	rootCmd.AddCommand(extractCmd)

	extractCmd.Flags().StringVarP(&extractOutput, "output", "o", "", "Output directory (default: workspace extract dir)")
	extractCmd.Flags().StringSliceVar(&extractLanguages, "lang", nil, "Only extract these languages (repeatable)")
}

func runExtract(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	lessons, err := scanLessons(cfg)
	if err != nil {
		return err
	}

	// extract_dir is relative to the workspace root
	outputDir := extractOutput
	if outputDir == "" {
		outputDir = filepath.Join(cfg.Workspace.Root, cfg.Workspace.ExtractDir)
	}

	e := extract.New(outputDir, os.Stdout)
	if len(extractLanguages) > 0 {
		e.SetLanguages(extractLanguages)
	}

	result, err := e.Run(lessons)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	fmt.Printf("\nExtracted %d snippets to %s (%d skipped)\n", len(result.FilesWritten), outputDir, result.Skipped)

	return nil
}
