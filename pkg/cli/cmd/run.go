package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/logrusorgru/aurora"
	"github.com/sigboard/sigboard/pkg/config"
	sigboard_http "github.com/sigboard/sigboard/pkg/http"
	"github.com/sigboard/sigboard/pkg/loggers"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
)

var runLoadFlags = &loadFlags{}

var runCmd = &cobra.Command{
	Use:   "run [file]...",
	Short: "Run sigboard - serves the HTTP API, restoring the last workspace",
	Example: `
sigboard run
sigboard run log.csv --http-port 8080
`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := newRuntime(cmd)
		if err != nil {
			return err
		}
		cfg := rt.Config()

		for _, e := range multierr.Errors(rt.AutoLoad()) {
			cmd.Println(aurora.Yellow(e.Error()))
		}

		if _, err := loadFiles(rt, runLoadFlags, args); err != nil {
			printError(cmd, err)
			return err
		}

		server := sigboard_http.NewServer(rt, cfg.HttpPort)
		if fileLogger, err := loggers.NewFileLogger("sigboard", config.AppSigboardPath()); err == nil {
			server.SetLogger(fileLogger)
		}
		if err := server.Start(); err != nil {
			return err
		}

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		if cfg.Watch {
			if err := rt.Watch(ctx); err != nil {
				return err
			}
			rt.WatchConfig()
		}

		rt.PrintStartupBanner()
		defer rt.Shutdown()

		stop := make(chan os.Signal, 1)
		signal.Notify(stop, syscall.SIGTERM, os.Interrupt)
		<-stop

		return nil
	},
}

func init() {
	runLoadFlags.register(runCmd)
	runCmd.Flags().Uint("http-port", 8000, "Port of the HTTP API")
	runCmd.Flags().Bool("overwrite", false, "Replace changed datasets on refresh instead of adding a copy")
	runCmd.Flags().Bool("watch", true, "Refresh datasets when their files change")
	RootCmd.AddCommand(runCmd)
}
