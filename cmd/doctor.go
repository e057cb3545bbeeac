package cmd

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/spf13/cobra"

	"github.com/far120/mystudy/internal/config"
	"github.com/far120/mystudy/internal/scaffold"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the study environment",
	Long: `Check that the tools the curriculum depends on are installed and that
the practice workspace is intact.

Examples:
  mystudy doctor`,
	RunE: runDoctor,
}

func init() {
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	problems := 0

	fmt.Println("Checking tools:")
	for _, tool := range []struct {
		name     string
		required bool
	}{
		{"node", true},
		{"npm", true},
		{"tsc", false},
		{"git", false},
	} {
		path, err := exec.LookPath(tool.name)
		switch {
		case err == nil:
			fmt.Printf("  ok    %-4s %s\n", tool.name, path)
		case tool.required:
			fmt.Printf("  MISS  %-4s not found (required for the TypeScript workspace)\n", tool.name)
			problems++
		default:
			fmt.Printf("  warn  %-4s not found\n", tool.name)
		}
	}

	fmt.Println("\nChecking configuration:")
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("  FAIL  %v\n", err)
		problems++
	} else {
		fmt.Printf("  ok    scan paths: %v\n", cfg.Lessons.ScanPaths)
		fmt.Printf("  ok    progress database: %s\n", cfg.Progress.Database)
	}

	fmt.Println("\nChecking workspace:")
	if _, err := os.Stat(scaffold.WorkspaceName); os.IsNotExist(err) {
		fmt.Println("  warn  workspace not created yet (run: mystudy scaffold)")
	} else {
		s := scaffold.New(".", nil)
		issues := s.Verify()
		if len(issues) == 0 {
			fmt.Printf("  ok    %s intact\n", scaffold.WorkspaceName)
		} else {
			for _, issue := range issues {
				fmt.Printf("  MISS  %s\n", issue)
			}
			fmt.Println("        run: mystudy scaffold")
			problems += len(issues)
		}
	}

	if problems > 0 {
		return fmt.Errorf("doctor found %d problems", problems)
	}

	fmt.Println("\nAll checks passed.")
	return nil
}
