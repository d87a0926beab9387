package dataset

// Loader builds a dataset from one source file. Key is the short code stored in descriptors.
type Loader interface {
	Key() string
	Load(pathData string, opts LoadOptions) (*Dataset, error)
}

// TimeKeyResolver chooses the time column among candidates when none can be inferred.
// An empty key means the file has no time column.
type TimeKeyResolver interface {
	ResolveTimeKey(candidates []string) (string, error)
}

// TimeKeyResolverFunc adapts a function to TimeKeyResolver
type TimeKeyResolverFunc func(candidates []string) (string, error)

func (f TimeKeyResolverFunc) ResolveTimeKey(candidates []string) (string, error) {
	return f(candidates)
}

type LoadOptions struct {
	// PathFormat is an optional secondary file describing how to read the data file
	PathFormat string
	// TimeKey selects the time column; nil asks the loader to infer it, empty means none
	TimeKey *string
	// Resolver is consulted when TimeKey is nil and the loader cannot infer the column
	Resolver TimeKeyResolver
	// Name overrides the display name derived from the data file
	Name string
}

// Descriptor is the persisted reference to a dataset. It never embeds sample data.
type Descriptor struct {
	ImportMethodType string  `json:"import_method_type" yaml:"import_method_type"`
	PathData         string  `json:"path_data" yaml:"path_data"`
	PathFormat       *string `json:"path_format" yaml:"path_format"`
	TimeKey          *string `json:"time_key" yaml:"time_key"`
}

// LoadOptions converts the descriptor into options for its loader
func (d Descriptor) LoadOptions() LoadOptions {
	opts := LoadOptions{TimeKey: d.TimeKey}
	if d.PathFormat != nil {
		opts.PathFormat = *d.PathFormat
	}
	return opts
}
