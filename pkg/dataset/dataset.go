package dataset

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/sigboard/sigboard/pkg/signals"
	"github.com/sigboard/sigboard/pkg/signaltree"
	"github.com/sigboard/sigboard/pkg/units"
	"github.com/sigboard/sigboard/pkg/util"
)

// Dataset owns the signal tree loaded from one source file
type Dataset struct {
	name        string
	loader      Loader
	pathData    string
	pathFormat  string
	timeKey     *string
	fingerprint string
	root        *signaltree.Group
}

// SignalOptions describe one column added to a dataset
type SignalOptions struct {
	// Units are split from the column name when empty
	Units string
	// Times is the time axis, nil for plain signals
	Times     []float64
	TimeUnits string
	// RelativePath is the group path below the dataset root
	RelativePath string
}

// New creates an empty dataset for pathData and records its fingerprint
func New(loader Loader, pathData string, opts LoadOptions) (*Dataset, error) {
	fingerprint, err := util.MD5Hash(pathData)
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint '%s': %w", pathData, err)
	}

	name := opts.Name
	if name == "" {
		name = NameFromPath(pathData)
	}

	var timeKey *string
	if opts.TimeKey != nil {
		key := *opts.TimeKey
		timeKey = &key
	}

	return &Dataset{
		name:        name,
		loader:      loader,
		pathData:    pathData,
		pathFormat:  opts.PathFormat,
		timeKey:     timeKey,
		fingerprint: fingerprint,
		root:        signaltree.NewGroup(name),
	}, nil
}

// NameFromPath derives a display name from a file path: the base name without its final
// extension, remaining dots replaced by '-'
func NameFromPath(path string) string {
	base := filepath.Base(path)
	if ext := filepath.Ext(base); ext != "" && ext != base {
		base = strings.TrimSuffix(base, ext)
	}
	return strings.ReplaceAll(base, ".", "-")
}

func (d *Dataset) Name() string {
	return d.name
}

// SetName renames the dataset and rewrites the path prefix of every signal it owns
func (d *Dataset) SetName(name string) {
	d.name = name
	for _, s := range d.root.Leaves() {
		s.RenameDataset(name)
	}
}

func (d *Dataset) Loader() Loader {
	return d.loader
}

func (d *Dataset) PathData() string {
	return d.pathData
}

func (d *Dataset) PathFormat() string {
	return d.pathFormat
}

// TimeKey returns the resolved time column, nil when it was never resolved
func (d *Dataset) TimeKey() *string {
	return d.timeKey
}

// SetTimeKey records the time column the loader resolved, empty for none
func (d *Dataset) SetTimeKey(key string) {
	d.timeKey = &key
}

func (d *Dataset) Fingerprint() string {
	return d.fingerprint
}

func (d *Dataset) Root() *signaltree.Group {
	return d.root
}

// AddSignal classifies a column and inserts it at <name>/<relative_path>/<column name>
func (d *Dataset) AddSignal(name string, column signals.Column, opts SignalOptions) error {
	signalUnits := opts.Units
	if signalUnits == "" {
		name, signalUnits = units.Split(name)
	}

	relativePath := name
	if opts.RelativePath != "" {
		relativePath = signaltree.Join(opts.RelativePath, name)
	}

	s, err := signals.Generate(opts.Times, column, signals.Options{
		Path:      signaltree.Join(d.name, relativePath),
		Units:     signalUnits,
		TimeUnits: opts.TimeUnits,
	})
	if err != nil {
		return err
	}

	return d.root.Insert(relativePath, s)
}

// Signal looks up a signal by its canonical path, which starts with the dataset name
func (d *Dataset) Signal(path string) (*signals.Signal, bool) {
	relativePath := strings.TrimPrefix(path, d.name+signaltree.Separator)
	if relativePath == path {
		return nil, false
	}
	return d.root.Lookup(relativePath)
}

// Signals lists every signal in tree order
func (d *Dataset) Signals() []*signals.Signal {
	return d.root.Leaves()
}

func (d *Dataset) Descriptor() Descriptor {
	descriptor := Descriptor{
		PathData: d.pathData,
		TimeKey:  d.timeKey,
	}
	if d.loader != nil {
		descriptor.ImportMethodType = d.loader.Key()
	}
	if d.pathFormat != "" {
		pathFormat := d.pathFormat
		descriptor.PathFormat = &pathFormat
	}
	return descriptor
}

// LoadOptions returns the options that reproduce this dataset from its files
func (d *Dataset) LoadOptions() LoadOptions {
	return LoadOptions{
		PathFormat: d.pathFormat,
		TimeKey:    d.timeKey,
	}
}

// Changed reports whether the source file differs from the one last loaded
func (d *Dataset) Changed() (bool, error) {
	fingerprint, err := util.MD5Hash(d.pathData)
	if err != nil {
		return false, fmt.Errorf("failed to fingerprint '%s': %w", d.pathData, err)
	}
	return fingerprint != d.fingerprint, nil
}

// Refresh returns d itself when the source file is unchanged. Otherwise the file is reloaded
// through the same loader and a new dataset is returned; d is left untouched.
func (d *Dataset) Refresh() (*Dataset, error) {
	changed, err := d.Changed()
	if err != nil {
		return nil, err
	}
	if !changed {
		return d, nil
	}

	if d.loader == nil {
		return nil, fmt.Errorf("dataset '%s' has no loader", d.name)
	}

	refreshed, err := d.loader.Load(d.pathData, d.LoadOptions())
	if err != nil {
		return nil, fmt.Errorf("failed to reload dataset '%s': %w", d.name, err)
	}
	return refreshed, nil
}
