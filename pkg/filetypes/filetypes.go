package filetypes

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sigboard/sigboard/pkg/filetypes/csv"
	"github.com/sigboard/sigboard/pkg/filetypes/filetype"
	"github.com/sigboard/sigboard/pkg/filetypes/xlsx"
)

type UnknownLoaderError struct {
	Key string
}

func (e *UnknownLoaderError) Error() string {
	return fmt.Sprintf("unknown file type '%s'", e.Key)
}

// NewFileType returns the loader registered under key, as stored in dataset descriptors
func NewFileType(key string) (filetype.FileType, error) {
	switch strings.ToUpper(key) {
	case csv.CsvFileTypeKey:
		return csv.NewCsvFileType(), nil
	case xlsx.XlsxFileTypeKey:
		return xlsx.NewXlsxFileType(), nil
	}

	return nil, &UnknownLoaderError{Key: key}
}

// Keys lists the registered file type keys
func Keys() []string {
	keys := []string{csv.CsvFileTypeKey, xlsx.XlsxFileTypeKey}
	sort.Strings(keys)
	return keys
}

// ForPath picks the file type whose data extension matches path, falling back to defaultKey
func ForPath(path string, defaultKey string) (filetype.FileType, error) {
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, key := range Keys() {
		fileType, err := NewFileType(key)
		if err != nil {
			return nil, err
		}
		if fileType.Extension() == ext {
			return fileType, nil
		}
	}

	return NewFileType(defaultKey)
}
