package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/far120/mystudy/internal/config"
	"github.com/far120/mystudy/internal/progress"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Track lesson completion",
	Long: `Track which lessons you have completed.

Examples:
  mystudy progress                          # Show progress overview
  mystudy progress done html-css/html-basics  # Mark a lesson completed
  mystudy progress reset html-css/html-basics # Clear a completion mark
  mystudy progress reset --all              # Clear all completion marks`,
	RunE: runProgressList,
}

var progressDoneCmd = &cobra.Command{
	Use:   "done <track/slug>",
	Short: "Mark a lesson as completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runProgressDone,
}

var progressResetCmd = &cobra.Command{
	Use:   "reset [track/slug]",
	Short: "Clear completion marks",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProgressReset,
}

var progressResetAll bool

func init() {
	rootCmd.AddCommand(progressCmd)
	progressCmd.AddCommand(progressDoneCmd)
	progressCmd.AddCommand(progressResetCmd)

	progressResetCmd.Flags().BoolVar(&progressResetAll, "all", false, "Clear all completion marks")
}

func openProgressStore() (*progress.Store, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	store, err := progress.Open(cfg.Progress.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open progress store: %w", err)
	}

	return store, cfg, nil
}

func runProgressList(cmd *cobra.Command, args []string) error {
	store, cfg, err := openProgressStore()
	if err != nil {
		return err
	}
	defer store.Close()

	lessons, err := scanLessons(cfg)
	if err != nil {
		return err
	}

	records, err := store.List()
	if err != nil {
		return fmt.Errorf("reading progress: %w", err)
	}
	completedAt := make(map[string]time.Time, len(records))
	for _, record := range records {
		completedAt[record.Lesson] = record.CompletedAt
	}

	completed := 0
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Track", "Lesson", "Status", "Completed"})

	for _, lesson := range lessons {
		if lesson.Draft && !cfg.Lessons.IncludeDrafts {
			continue
		}

		status := "todo"
		when := ""
		if at, done := completedAt[lesson.Key()]; done {
			status = "done"
			when = at.Format("2006-01-02")
			completed++
		}

		t.AppendRow(table.Row{lesson.Track, lesson.Title, status, when})
	}

	t.Render()

	total := len(lessons)
	if total > 0 {
		fmt.Printf("\n%d/%d lessons completed (%.0f%%)\n", completed, total, float64(completed)/float64(total)*100)
	}

	return nil
}

func runProgressDone(cmd *cobra.Command, args []string) error {
	store, _, err := openProgressStore()
	if err != nil {
		return err
	}
	defer store.Close()

	key := args[0]
	if err := store.Mark(key); err != nil {
		return fmt.Errorf("marking %s: %w", key, err)
	}

	fmt.Printf("Marked %s as completed\n", key)
	return nil
}

func runProgressReset(cmd *cobra.Command, args []string) error {
	store, _, err := openProgressStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if progressResetAll {
		if err := store.ResetAll(); err != nil {
			return fmt.Errorf("resetting progress: %w", err)
		}
		fmt.Println("Cleared all completion marks")
		return nil
	}

	if len(args) == 0 {
		return fmt.Errorf("specify a lesson key or use --all")
	}

	key := args[0]
	if err := store.Reset(key); err != nil {
		return fmt.Errorf("resetting %s: %w", key, err)
	}

	fmt.Printf("Cleared completion mark for %s\n", key)
	return nil
}
