package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/far120/mystudy/internal/config"
	"github.com/far120/mystudy/internal/errors"
	"github.com/far120/mystudy/internal/lint"
	"github.com/far120/mystudy/internal/registry"
	"github.com/far120/mystudy/internal/scanner"
)

var validateCmd = &cobra.Command{
	Use:     "validate",
	Aliases: []string{"v"},
	Short:   "Check lessons for problems",
	Long: `Validate the curriculum: parse every lesson, then check for broken
relative links, duplicate lesson orders, missing headings, and unlabeled
code fences.

The command exits non-zero when any error-severity problem is found, so it
can gate a commit hook or CI job.

Examples:
  mystudy validate                 # Validate all lessons
  mystudy validate --strict        # Treat warnings as errors`,
	RunE: runValidate,
}

var validateStrict bool

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&validateStrict, "strict", false, "Treat warnings as errors")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	reg := registry.NewLessonRegistry()
	s := scanner.NewLessonScanner(reg)
	s.SetExcludePatterns(cfg.Lessons.ExcludePatterns)

	for _, scanPath := range cfg.Lessons.ScanPaths {
		if err := s.ScanDirectory(scanPath); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to scan directory %s: %v\n", scanPath, err)
		}
	}

	collector := s.Errors()
	lint.NewLinter().Run(reg, collector)

	lintErrors := collector.LintErrors()
	for _, lintErr := range lintErrors {
		fmt.Println(lintErr.Error())
	}
	for _, generalErr := range collector.GeneralErrors() {
		fmt.Printf("error: %v\n", generalErr)
	}

	errorCount := collector.Count(errors.SeverityError) + len(collector.GeneralErrors())
	warningCount := collector.Count(errors.SeverityWarning)

	fmt.Printf("\nChecked %d lessons: %d errors, %d warnings\n", reg.Count(), errorCount, warningCount)

	if errorCount > 0 {
		return fmt.Errorf("validation failed with %d errors", errorCount)
	}
	if validateStrict && warningCount > 0 {
		return fmt.Errorf("validation failed with %d warnings (strict mode)", warningCount)
	}

	return nil
}
