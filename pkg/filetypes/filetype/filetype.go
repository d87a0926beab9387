package filetype

import (
	"os"
	"strings"

	"github.com/sigboard/sigboard/pkg/dataset"
	"github.com/sigboard/sigboard/pkg/units"
)

// FileType is a loader for one file format
type FileType interface {
	dataset.Loader
	Name() string
	// Extension is the data file extension without the leading dot
	Extension() string
	// FormatExtension is the extension of the optional format file, empty when the type has none
	FormatExtension() string
}

var timeKeyNames = map[string]struct{}{
	"t":         {},
	"time":      {},
	"timestamp": {},
}

// ValidatePath checks that path names an existing regular file
func ValidatePath(path string) error {
	if path == "" {
		return &InvalidFilePathError{Path: path, Reason: "path is empty"}
	}

	stat, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &InvalidFilePathError{Path: path, Reason: "file does not exist"}
		}
		return &InvalidFilePathError{Path: path, Reason: err.Error()}
	}

	if !stat.Mode().IsRegular() {
		return &InvalidFilePathError{Path: path, Reason: "not a regular file"}
	}

	return nil
}

// ResolveTimeKey selects the time column among headers. An explicit opts.TimeKey wins.
// Otherwise a single header named time, t or timestamp (any case, units ignored) is used,
// then the resolver is asked. An empty result means no time column.
func ResolveTimeKey(headers []string, opts dataset.LoadOptions) (string, error) {
	if opts.TimeKey != nil {
		return checkTimeKey(*opts.TimeKey, headers)
	}

	if key, ok := inferTimeKey(headers); ok {
		return key, nil
	}

	if opts.Resolver == nil {
		return "", &AmbiguousTimeColumnError{Candidates: headers}
	}

	key, err := opts.Resolver.ResolveTimeKey(headers)
	if err != nil {
		return "", err
	}
	return checkTimeKey(key, headers)
}

func checkTimeKey(key string, headers []string) (string, error) {
	if key == "" {
		return "", nil
	}
	for _, header := range headers {
		if header == key {
			return key, nil
		}
	}
	return "", &MissingTimeColumnError{Key: key, Candidates: headers}
}

func inferTimeKey(headers []string) (string, bool) {
	found := ""
	for _, header := range headers {
		name, _ := units.Split(header)
		if _, ok := timeKeyNames[strings.ToLower(strings.TrimSpace(name))]; !ok {
			continue
		}
		if found != "" {
			return "", false
		}
		found = header
	}
	return found, found != ""
}
