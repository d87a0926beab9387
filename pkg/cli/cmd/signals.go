package cmd

import (
	"github.com/sigboard/sigboard/pkg/util"
	"github.com/spf13/cobra"
)

var signalsLoadFlags = &loadFlags{}

var signalsCmd = &cobra.Command{
	Use:   "signals <file>",
	Short: "Lists the signals of a data file with their summary properties",
	Args:  cobra.ExactArgs(1),
	Example: `
sigboard signals log.csv
sigboard signals imu.csv --format imu.yaml
sigboard signals bench.xlsx --time-key t
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}

		datasets, err := loadFiles(rt, signalsLoadFlags, args)
		if err != nil {
			printError(cmd, err)
			return err
		}

		propertyKeys := rt.Config().VisiblePropertyKeys()
		records := [][]string{append([]string{"Signal", "Type"}, propertyKeys...)}
		for _, s := range datasets[0].Signals() {
			record := append([]string{s.Path(), s.Type().String()}, s.FormatProperties(propertyKeys)...)
			records = append(records, record)
		}

		util.PrintTable(cmd.OutOrStdout(), records)
		return nil
	},
}

func init() {
	signalsLoadFlags.register(signalsCmd)
	RootCmd.AddCommand(signalsCmd)
}
