package cmd

import (
	"github.com/sigboard/sigboard/pkg/version"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "sigboard version",
	Example: `
sigboard version
`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Printf("sigboard version: %s\n", version.String())
	},
}

func init() {
	RootCmd.AddCommand(versionCmd)
}
