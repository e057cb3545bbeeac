package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/far120/mystudy/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	RunE:  runVersion,
}

var versionDetailed bool

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionDetailed, "detailed", false, "Show detailed build information")
}

func runVersion(cmd *cobra.Command, args []string) error {
	if versionDetailed {
		fmt.Println(version.GetDetailedVersion())
		return nil
	}

	fmt.Printf("mystudy %s\n", version.GetShortVersion())
	return nil
}
