package cmd

import (
	"github.com/logrusorgru/aurora"
	"github.com/sigboard/sigboard/pkg/datastore"
	"github.com/spf13/cobra"
)

var (
	matchLoadFlags = &loadFlags{}
	matchPatterns  []string
)

var matchCmd = &cobra.Command{
	Use:   "match <file>...",
	Short: "Lists the signals of data files matching patterns",
	Args:  cobra.MinimumNArgs(1),
	Example: `
sigboard match log.csv run.csv --pattern "*/x"
sigboard match imu.csv --pattern "imu/gyro/*" --pattern "*gear"
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}

		if _, err := loadFiles(rt, matchLoadFlags, args); err != nil {
			printError(cmd, err)
			return err
		}

		patterns := matchPatterns
		if len(patterns) == 0 {
			patterns = []string{datastore.Wildcard}
		}

		return rt.View(func(store *datastore.Store) error {
			matches := store.MatchAll(patterns, nil)
			for _, pattern := range patterns {
				cmd.Println(aurora.Bold(pattern))
				if len(matches[pattern]) == 0 {
					cmd.Println(aurora.Yellow("  no signals matched"))
					continue
				}
				for _, s := range matches[pattern] {
					cmd.Printf("  %s\n", s.Path())
				}
			}
			return nil
		})
	},
}

func init() {
	matchLoadFlags.register(matchCmd)
	matchCmd.Flags().StringArrayVarP(&matchPatterns, "pattern", "p", nil, "Signal path pattern with an optional leading or trailing '*'")
	RootCmd.AddCommand(matchCmd)
}
