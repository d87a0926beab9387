package runtime

import (
	"fmt"
	"log"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/logrusorgru/aurora"
	"github.com/sigboard/sigboard/pkg/config"
	"github.com/sigboard/sigboard/pkg/dataset"
	"github.com/sigboard/sigboard/pkg/datastore"
	"github.com/sigboard/sigboard/pkg/filetypes"
	"github.com/sigboard/sigboard/pkg/loggers"
	"github.com/sigboard/sigboard/pkg/metrics"
	"github.com/sigboard/sigboard/pkg/signals"
	"github.com/sigboard/sigboard/pkg/version"
	"github.com/sigboard/sigboard/pkg/workspace"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	maxConcurrentLoads int = 4
)

var flagKeys = map[string]string{
	"http-port": "http_port",
	"overwrite": "overwrite_on_refresh",
	"watch":     "watch",
}

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

// Runtime is the single owner of a dataset store. Every store access goes through one mutex
// so HTTP handlers and the file watcher can share it.
type Runtime struct {
	mu       sync.Mutex
	store    *datastore.Store
	config   atomic.Pointer[config.SigboardConfiguration]
	viper    *viper.Viper
	appDir   string
	metrics  *metrics.Metrics
	layout   interface{}
	resolver dataset.TimeKeyResolver

	resolveMu sync.Mutex
	deliverMu sync.Mutex
	outbox    []delivery
	queued    map[datastore.Listener]*queuedListener

	configChanged atomic.Bool
}

// NewRuntime creates a runtime with the default configuration for appDir
func NewRuntime(appDir string) *Runtime {
	r := &Runtime{
		store:   datastore.NewStore(),
		viper:   viper.New(),
		appDir:  appDir,
		metrics: metrics.NewMetrics(),
		queued:  make(map[datastore.Listener]*queuedListener),
	}
	r.config.Store(config.LoadDefaultConfiguration())

	return r
}

// LoadConfig reads the configuration file of the app directory, creating it when missing
func (r *Runtime) LoadConfig() error {
	cfg, err := config.LoadRuntimeConfiguration(r.viper, r.appDir)
	if err != nil {
		return err
	}
	r.config.Store(cfg)

	return nil
}

// WatchConfig reloads the configuration whenever its file changes. Invalid edits are logged
// and the previous configuration is kept.
func (r *Runtime) WatchConfig() {
	r.viper.OnConfigChange(func(event fsnotify.Event) {
		cfg, err := config.LoadRuntimeConfiguration(r.viper, r.appDir)
		if err != nil {
			zaplog.Sugar().Warnf("ignoring configuration change in '%s': %s", event.Name, err.Error())
			return
		}
		r.config.Store(cfg)
		zaplog.Sugar().Infof("configuration reloaded from '%s'", event.Name)
	})
	r.viper.WatchConfig()
}

// BindFlags lets command line flags override configuration keys. Flags missing from flags
// are skipped.
func (r *Runtime) BindFlags(flags *pflag.FlagSet) error {
	for flagName, key := range flagKeys {
		flag := flags.Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := r.viper.BindPFlag(key, flag); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runtime) Config() *config.SigboardConfiguration {
	return r.config.Load()
}

func (r *Runtime) SetConfig(cfg *config.SigboardConfiguration) {
	r.config.Store(cfg)
}

func (r *Runtime) AppDir() string {
	return r.appDir
}

func (r *Runtime) Metrics() *metrics.Metrics {
	return r.metrics
}

// SetResolver sets the prompt used when a loaded file has no recognizable time column.
// Calls to the resolver are serialized.
func (r *Runtime) SetResolver(resolver dataset.TimeKeyResolver) {
	r.resolver = resolver
}

// View runs fn with exclusive access to the store. fn must not retain the store.
func (r *Runtime) View(fn func(store *datastore.Store) error) error {
	defer r.flushDeliveries()
	r.mu.Lock()
	defer r.mu.Unlock()

	return fn(r.store)
}

// LoadFile loads pathData with the file type for fileTypeKey, or the one matching the file
// extension when fileTypeKey is empty, and adds the dataset to the store
func (r *Runtime) LoadFile(pathData string, fileTypeKey string, opts dataset.LoadOptions) (*dataset.Dataset, error) {
	ds, err := r.load(pathData, fileTypeKey, opts, true)
	if err != nil {
		return nil, err
	}
	return r.add(ds), nil
}

// LoadDescriptor loads a persisted dataset descriptor and adds it to the store
func (r *Runtime) LoadDescriptor(descriptor dataset.Descriptor) (*dataset.Dataset, error) {
	ds, err := r.loadDescriptor(descriptor, true)
	if err != nil {
		return nil, err
	}
	return r.add(ds), nil
}

// LoadDescriptorUnattended is LoadDescriptor without the resolver: a time column that can
// neither be read from the descriptor nor inferred fails with filetype.AmbiguousTimeColumnError
func (r *Runtime) LoadDescriptorUnattended(descriptor dataset.Descriptor) (*dataset.Dataset, error) {
	ds, err := r.loadDescriptor(descriptor, false)
	if err != nil {
		return nil, err
	}
	return r.add(ds), nil
}

func (r *Runtime) Remove(name string) bool {
	defer r.flushDeliveries()
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := r.store.Remove(name)
	r.metrics.ObserveStore(r.store)
	return removed
}

// Refresh reloads changed datasets and returns their names. A nil overwrite uses the
// overwrite_on_refresh setting.
func (r *Runtime) Refresh(overwrite *bool) ([]string, error) {
	return r.refresh(overwrite, nil)
}

// RefreshFile reloads the datasets read from path, as data or format file
func (r *Runtime) RefreshFile(path string, overwrite *bool) ([]string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return r.refresh(overwrite, func(ds *dataset.Dataset) bool {
		return readsFile(ds, absPath)
	})
}

func (r *Runtime) refresh(overwrite *bool, selected func(ds *dataset.Dataset) bool) ([]string, error) {
	overwriteExisting := r.Config().OverwriteOnRefresh
	if overwrite != nil {
		overwriteExisting = *overwrite
	}

	defer r.flushDeliveries()
	r.mu.Lock()
	defer r.mu.Unlock()

	considered := 0
	for _, ds := range r.store.Datasets() {
		if selected == nil || selected(ds) {
			considered++
		}
	}

	changed, err := r.store.RefreshWhere(overwriteExisting, selected)

	names := make([]string, len(changed))
	for i, ds := range changed {
		names[i] = ds.Name()
		r.metrics.DatasetRefreshed(metrics.RefreshChanged)
	}
	for _, e := range multierr.Errors(err) {
		zaplog.Sugar().Warn(e.Error())
		r.metrics.DatasetRefreshed(metrics.RefreshFailed)
	}
	for i := len(changed) + len(multierr.Errors(err)); i < considered; i++ {
		r.metrics.DatasetRefreshed(metrics.RefreshUnchanged)
	}
	r.metrics.ObserveStore(r.store)

	return names, err
}

// readsFile reports whether ds was loaded from the absolute path absPath
func readsFile(ds *dataset.Dataset, absPath string) bool {
	for _, tracked := range []string{ds.PathData(), ds.PathFormat()} {
		if tracked == "" {
			continue
		}
		if absTracked, err := filepath.Abs(tracked); err == nil && absTracked == absPath {
			return true
		}
	}
	return false
}

// Subscribe registers or replaces the patterns of listener. Matches are delivered after the
// runtime lock is released, so listener may call back into the runtime.
func (r *Runtime) Subscribe(listener datastore.Listener, patterns []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	queued, ok := r.queued[listener]
	if !ok {
		queued = &queuedListener{r: r, listener: listener}
		r.queued[listener] = queued
	}
	r.store.Subscribe(queued, patterns)
}

func (r *Runtime) Unsubscribe(listener datastore.Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()

	queued, ok := r.queued[listener]
	if !ok {
		return
	}
	delete(r.queued, listener)
	r.store.Unsubscribe(queued)
}

// SetLayout records the dashboard layout saved with the workspace
func (r *Runtime) SetLayout(layout interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.layout = layout
}

func (r *Runtime) Layout() interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.layout
}

// Workspace captures the current store and layout
func (r *Runtime) Workspace() *workspace.Workspace {
	r.mu.Lock()
	defer r.mu.Unlock()

	return workspace.FromStore(r.store, r.layout)
}

func (r *Runtime) SaveWorkspace(path string) error {
	return workspace.Save(path, r.Workspace())
}

// RestoreWorkspace replaces the store content with the datasets of ws. Files are loaded
// concurrently and inserted in name order; a dataset that fails to load is skipped and its
// error is returned combined with the others.
func (r *Runtime) RestoreWorkspace(ws *workspace.Workspace) error {
	names := make([]string, 0, len(ws.DataStore))
	for name := range ws.DataStore {
		names = append(names, name)
	}
	sort.Strings(names)

	loaded := make([]*dataset.Dataset, len(names))
	loadErrs := make([]error, len(names))

	g := new(errgroup.Group)
	g.SetLimit(maxConcurrentLoads)
	for i, name := range names {
		i, name := i, name
		g.Go(func() error {
			ds, err := r.loadDescriptor(ws.DataStore[name], true)
			if err != nil {
				loadErrs[i] = fmt.Errorf("failed to restore dataset '%s': %w", name, err)
				return nil
			}
			ds.SetName(name)
			loaded[i] = ds
			return nil
		})
	}
	_ = g.Wait()

	defer r.flushDeliveries()
	r.mu.Lock()
	defer r.mu.Unlock()

	r.store.Clear()
	for _, ds := range loaded {
		if ds != nil {
			r.store.Insert(ds, false)
		}
	}
	r.layout = ws.Layout
	r.store.Notify(nil)
	r.metrics.ObserveStore(r.store)

	return multierr.Combine(loadErrs...)
}

// AutoSave writes the workspace to the auto-save file of the app directory
func (r *Runtime) AutoSave() error {
	return r.SaveWorkspace(workspace.AutoSavePath(r.appDir))
}

// AutoLoad restores the configured workspace, or the auto-save file when none is configured.
// A missing file is not an error.
func (r *Runtime) AutoLoad() error {
	path := r.Config().LoadedWorkspace
	if path == "" {
		path = workspace.AutoSavePath(r.appDir)
	}

	ws, err := workspace.Load(path)
	if err != nil {
		zaplog.Sugar().Debugf("no workspace restored: %s", err.Error())
		return nil
	}

	return r.RestoreWorkspace(ws)
}

// Evaluate samples the signal at path over times, or over the default grid when times is nil
func (r *Runtime) Evaluate(path string, times []float64, resolutionFactor float64) (*EvaluateResult, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.store.SignalFromPath(path)
	if !ok {
		return nil, &SignalNotFoundError{Path: path}
	}

	if resolutionFactor <= 0 {
		resolutionFactor = r.Config().ResolutionFactor
	}

	started := time.Now()
	grid, values, err := s.Evaluate(times, resolutionFactor)
	if err != nil {
		return nil, fmt.Errorf("failed to evaluate '%s': %w", path, err)
	}
	r.metrics.ObserveEvaluation(s.Type().String(), started)

	result := &EvaluateResult{
		Path:      s.Path(),
		Type:      s.Type().String(),
		Units:     s.Units(),
		TimeUnits: s.TimeUnits(),
		Times:     grid,
		Values:    values,
	}
	if s.Type() == signals.NonNumericTimeSeries {
		result.Labels = s.Labels(values)
	}

	return result, nil
}

func (r *Runtime) add(ds *dataset.Dataset) *dataset.Dataset {
	defer r.flushDeliveries()
	r.mu.Lock()
	defer r.mu.Unlock()

	name := r.store.Add(ds, false)
	r.metrics.ObserveStore(r.store)
	zaplog.Sugar().Infof("loaded dataset '%s' from '%s'", name, ds.PathData())

	r.rememberDirectory(ds)
	return ds
}

// rememberDirectory records the directory of ds as the default path of its file type.
// Must be called with r.mu held.
func (r *Runtime) rememberDirectory(ds *dataset.Dataset) {
	if ds.Loader() == nil {
		return
	}

	dir, err := filepath.Abs(filepath.Dir(ds.PathData()))
	if err != nil {
		return
	}

	current := r.Config()
	key := ds.Loader().Key()
	if current.DefaultPaths[key] == dir {
		return
	}

	updated := *current
	updated.DefaultPaths = make(map[string]string, len(current.DefaultPaths)+1)
	for k, v := range current.DefaultPaths {
		updated.DefaultPaths[k] = v
	}
	updated.DefaultPaths[key] = dir

	r.config.Store(&updated)
	r.configChanged.Store(true)
}

func (r *Runtime) loadDescriptor(descriptor dataset.Descriptor, interactive bool) (*dataset.Dataset, error) {
	if descriptor.ImportMethodType == "" {
		return nil, &filetypes.UnknownLoaderError{Key: descriptor.ImportMethodType}
	}
	return r.load(descriptor.PathData, descriptor.ImportMethodType, descriptor.LoadOptions(), interactive)
}

// load reads pathData without touching the store. Unless interactive is false, a missing
// opts.Resolver falls back to the runtime's resolver.
func (r *Runtime) load(pathData string, fileTypeKey string, opts dataset.LoadOptions, interactive bool) (*dataset.Dataset, error) {
	var loader dataset.Loader
	var err error
	if fileTypeKey == "" {
		loader, err = filetypes.ForPath(pathData, r.Config().DefaultFileType)
	} else {
		loader, err = filetypes.NewFileType(fileTypeKey)
	}
	if err != nil {
		return nil, err
	}

	if opts.Resolver == nil && interactive && r.resolver != nil {
		opts.Resolver = dataset.TimeKeyResolverFunc(r.resolveTimeKey)
	}

	ds, err := loader.Load(pathData, opts)
	if err != nil {
		return nil, err
	}

	r.metrics.DatasetLoaded(loader.Key())
	return ds, nil
}

// PrintStartupBanner describes the running instance on stdout
func (r *Runtime) PrintStartupBanner() {
	cfg := r.Config()

	fmt.Printf("- Runtime version: %s\n", version.Version())
	fmt.Printf("- Configuration: %s\n", config.ConfigPath())
	fmt.Printf("- Datasets: %d\n", r.datasetCount())
	if cfg.Watch {
		fmt.Print("- ")
		fmt.Println(aurora.Yellow("Watching data files for changes"))
	}
	fmt.Print("- ")
	fmt.Println(aurora.Green(fmt.Sprintf("Listening on %s", cfg.ServerBaseUrl())))
	fmt.Println()
	fmt.Println("Use Ctrl-C to stop")
}

// Shutdown saves the workspace to the auto-save file and persists settings changed while running
func (r *Runtime) Shutdown() {
	log.Println("Shutting down...")

	if err := r.AutoSave(); err != nil {
		zaplog.Sugar().Errorf("failed to auto-save workspace: %s", err.Error())
	}

	if r.configChanged.Load() {
		if err := config.SaveConfiguration(r.appDir, r.Config()); err != nil {
			zaplog.Sugar().Errorf("failed to save configuration: %s", err.Error())
		}
	}
	loggers.ZapLoggerSync()
}

func (r *Runtime) datasetCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.store.Len()
}

// resolveTimeKey asks the runtime's resolver, one load at a time
func (r *Runtime) resolveTimeKey(candidates []string) (string, error) {
	r.resolveMu.Lock()
	defer r.resolveMu.Unlock()

	return r.resolver.ResolveTimeKey(candidates)
}
