package cmd

import (
	"sort"

	"github.com/logrusorgru/aurora"
	"github.com/sigboard/sigboard/pkg/config"
	"github.com/sigboard/sigboard/pkg/util"
	"github.com/sigboard/sigboard/pkg/workspace"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var (
	workspaceLoadFlags = &loadFlags{}
	workspaceOutput    string
)

type workspaceRow struct {
	Name    string `csv:"Name"`
	Type    string `csv:"Type"`
	Path    string `csv:"Path"`
	Format  string `csv:"Format"`
	TimeKey string `csv:"Time key"`
}

var workspaceCmd = &cobra.Command{
	Use:   "workspace",
	Short: "Saves and inspects workspace files",
	Example: `
sigboard workspace save log.csv run.csv --output session.json
sigboard workspace show session.json
`,
}

var workspaceSaveCmd = &cobra.Command{
	Use:   "save <file>...",
	Short: "Loads data files and saves them as a workspace",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}

		if _, err := loadFiles(rt, workspaceLoadFlags, args); err != nil {
			printError(cmd, err)
			return err
		}

		output := workspaceOutput
		if output == "" {
			output = workspace.AutoSavePath(rt.AppDir())
		}

		if err := rt.SaveWorkspace(output); err != nil {
			printError(cmd, err)
			return err
		}

		cmd.Println(aurora.Green("Workspace saved to " + output))
		return nil
	},
}

var workspaceShowCmd = &cobra.Command{
	Use:   "show <workspace>",
	Short: "Restores a workspace and lists its datasets",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}

		ws, err := workspace.Load(args[0])
		if err != nil {
			printError(cmd, err)
			return err
		}

		restoreErr := rt.RestoreWorkspace(ws)
		for _, e := range multierr.Errors(restoreErr) {
			cmd.Println(aurora.Yellow(e.Error()))
		}

		names := make([]string, 0, len(ws.DataStore))
		for name := range ws.DataStore {
			names = append(names, name)
		}
		sort.Strings(names)

		rows := make([]*workspaceRow, 0, len(names))
		for _, name := range names {
			descriptor := ws.DataStore[name]
			row := &workspaceRow{
				Name: name,
				Type: descriptor.ImportMethodType,
				Path: config.GetAppRelativePath(descriptor.PathData),
			}
			if descriptor.PathFormat != nil {
				row.Format = *descriptor.PathFormat
			}
			if descriptor.TimeKey != nil {
				row.TimeKey = *descriptor.TimeKey
			}
			rows = append(rows, row)
		}

		return util.MarshalAndPrintTable(cmd.OutOrStdout(), rows)
	},
}

func init() {
	workspaceLoadFlags.register(workspaceSaveCmd)
	workspaceSaveCmd.Flags().StringVarP(&workspaceOutput, "output", "o", "", "Workspace file, defaults to the auto-save file")
	workspaceCmd.AddCommand(workspaceSaveCmd)
	workspaceCmd.AddCommand(workspaceShowCmd)
	RootCmd.AddCommand(workspaceCmd)
}
