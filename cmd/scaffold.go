package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/far120/mystudy/internal/scaffold"
)

var scaffoldCmd = &cobra.Command{
	Use:     "scaffold",
	Aliases: []string{"sc"},
	Short:   "Create the TypeScript practice workspace",
	Long: `Create the typescript-examples practice workspace: a week-by-week
directory tree plus package.json and tsconfig.json ready for npm install.

The command is safe to run repeatedly. Existing directories are left alone
and existing config files are never overwritten.

Examples:
  mystudy scaffold                 # Create workspace in the current directory
  mystudy scaffold ./study         # Create workspace under ./study`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScaffold,
}

var scaffoldDir string

func init() {
	rootCmd.AddCommand(scaffoldCmd)

	scaffoldCmd.Flags().StringVar(&scaffoldDir, "dir", ".", "Parent directory for the workspace")
}

func runScaffold(cmd *cobra.Command, args []string) error {
	parent := scaffoldDir
	if len(args) > 0 {
		parent = args[0]
	}

	s := scaffold.New(parent, os.Stdout)

	result, err := s.Run()
	if err != nil {
		return fmt.Errorf("scaffold failed: %w", err)
	}

	fmt.Printf("\nWorkspace ready at %s\n", result.Root)
	fmt.Printf("  directories: %d created, %d existing\n", result.DirsCreated, result.DirsExisting)
	fmt.Printf("  config files: %d written, %d kept\n", len(result.FilesWritten), len(result.FilesSkipped))
	fmt.Println("\nNext steps:")
	fmt.Printf("  cd %s\n", result.Root)
	fmt.Println("  npm install")
	fmt.Println("  npm run dev")

	return nil
}
