package cmd

import (
	"strconv"

	"github.com/sigboard/sigboard/pkg/signals"
	"github.com/sigboard/sigboard/pkg/util"
	"github.com/spf13/cobra"
)

var (
	evaluateLoadFlags  = &loadFlags{}
	evaluateTimes      []float64
	evaluateResolution float64
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate <file> <signal-path>",
	Short: "Samples a time series signal of a data file",
	Args:  cobra.ExactArgs(2),
	Example: `
sigboard evaluate log.csv x --times 0.5,1.5
sigboard evaluate log.csv log/label
sigboard evaluate imu.csv gyro/x --format imu.yaml --resolution 10
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}

		datasets, err := loadFiles(rt, evaluateLoadFlags, args[:1])
		if err != nil {
			printError(cmd, err)
			return err
		}

		var times []float64
		if cmd.Flags().Changed("times") {
			times = evaluateTimes
		}

		result, err := rt.Evaluate(canonicalPath(datasets[0], args[1]), times, evaluateResolution)
		if err != nil {
			printError(cmd, err)
			return err
		}

		valueHeader := "Value"
		if result.Units != "" {
			valueHeader += " [" + result.Units + "]"
		}
		records := [][]string{{"Time [" + result.TimeUnits + "]", valueHeader}}
		for i, t := range result.Times {
			value := signals.FormatSI(result.Values[i])
			if result.Labels != nil {
				value = result.Labels[i]
			}
			records = append(records, []string{strconv.FormatFloat(t, 'g', -1, 64), value})
		}

		util.PrintTable(cmd.OutOrStdout(), records)
		return nil
	},
}

func init() {
	evaluateLoadFlags.register(evaluateCmd)
	evaluateCmd.Flags().Float64SliceVar(&evaluateTimes, "times", nil, "Times to sample at, defaults to an even grid over the recorded range")
	evaluateCmd.Flags().Float64Var(&evaluateResolution, "resolution", 0, "Grid points per sample, defaults to resolution_factor")
	RootCmd.AddCommand(evaluateCmd)
}
