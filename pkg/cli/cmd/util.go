package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/logrusorgru/aurora"
	"github.com/sigboard/sigboard/pkg/config"
	"github.com/sigboard/sigboard/pkg/dataset"
	"github.com/sigboard/sigboard/pkg/filetypes"
	"github.com/sigboard/sigboard/pkg/runtime"
	"github.com/sigboard/sigboard/pkg/util"
	"github.com/spf13/cobra"
)

type loadFlags struct {
	fileType string
	format   string
	timeKey  string
	noTime   bool
}

func (f *loadFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.fileType, "type", "", fmt.Sprintf("File type key, one of %s. Inferred from the file extension when empty", strings.Join(filetypes.Keys(), ", ")))
	cmd.Flags().StringVar(&f.format, "format", "", "Format description file, e.g. a CSV delimiter/units YAML file")
	cmd.Flags().StringVar(&f.timeKey, "time-key", "", "Name of the time column")
	cmd.Flags().BoolVar(&f.noTime, "no-time", false, "Load every column as a plain signal")
}

func (f *loadFlags) options() dataset.LoadOptions {
	opts := dataset.LoadOptions{
		PathFormat: f.format,
	}

	switch {
	case f.noTime:
		none := ""
		opts.TimeKey = &none
	case f.timeKey != "":
		timeKey := f.timeKey
		opts.TimeKey = &timeKey
	}

	return opts
}

// newRuntime loads the configuration of the app directory into a runtime prompting on the
// command's input for ambiguous time columns
func newRuntime(cmd *cobra.Command) (*runtime.Runtime, error) {
	rt := runtime.NewRuntime(config.AppPath())

	if err := rt.BindFlags(cmd.Flags()); err != nil {
		return nil, err
	}

	if err := rt.LoadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load runtime configuration: %w", err)
	}

	rt.SetResolver(newPromptResolver(cmd.InOrStdin(), cmd.OutOrStdout()))

	return rt, nil
}

func loadFiles(rt *runtime.Runtime, flags *loadFlags, paths []string) ([]*dataset.Dataset, error) {
	datasets := make([]*dataset.Dataset, 0, len(paths))
	for _, path := range paths {
		path = resolveDataPath(rt.Config(), flags.fileType, path)
		ds, err := rt.LoadFile(path, flags.fileType, flags.options())
		if err != nil {
			return nil, fmt.Errorf("failed to load '%s': %w", path, err)
		}
		datasets = append(datasets, ds)
	}
	return datasets, nil
}

// resolveDataPath looks a relative path missing from the working directory up in the last
// directory a file of the same type was loaded from
func resolveDataPath(cfg *config.SigboardConfiguration, fileTypeKey string, path string) string {
	if filepath.IsAbs(path) || util.IsRegularFile(path) {
		return path
	}

	if fileTypeKey == "" {
		fileType, err := filetypes.ForPath(path, cfg.DefaultFileType)
		if err != nil {
			return path
		}
		fileTypeKey = fileType.Key()
	}

	candidate := filepath.Join(cfg.DefaultPath(strings.ToUpper(fileTypeKey)), path)
	if util.IsRegularFile(candidate) {
		return candidate
	}
	return path
}

// canonicalPath prefixes a dataset relative signal path with the dataset name
func canonicalPath(ds *dataset.Dataset, path string) string {
	if strings.HasPrefix(path, ds.Name()+"/") {
		return path
	}
	return ds.Name() + "/" + strings.TrimPrefix(path, "/")
}

func printError(cmd *cobra.Command, err error) {
	cmd.Println(aurora.Red(err.Error()))
}
