package util

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// IsRegularFile reports whether path exists and is a regular file
func IsRegularFile(path string) bool {
	stat, err := os.Stat(path)
	if err != nil {
		return false
	}
	return stat.Mode().IsRegular()
}

// WriteFileAtomic writes content to a temporary file next to filePath and renames it over filePath.
// A failure leaves any existing file untouched.
func WriteFileAtomic(filePath string, content []byte, perm os.FileMode) error {
	dir := filepath.Dir(filePath)
	if err := MkDirAllInheritPerm(dir); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(filePath)+".*")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, perm); err != nil {
		os.Remove(tmpPath)
		return err
	}

	return os.Rename(tmpPath, filePath)
}

// MkDirAllInheritPerm creates path with the permissions of its closest existing parent
func MkDirAllInheritPerm(path string) error {
	if stat, err := os.Stat(path); err == nil && stat.IsDir() {
		return nil
	}

	var stat os.FileInfo
	var err error
	cwpath := path
	for {
		parent := filepath.Dir(cwpath)
		stat, err = os.Stat(parent)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) && parent != cwpath {
				cwpath = parent
				continue
			}
			return err
		}
		break
	}

	return os.MkdirAll(path, stat.Mode().Perm())
}

// ReplaceEnvVariablesFromPath reads a file and replaces every occurrence of an environment
// variable name carrying envVarPrefix with its value.
// Viper's AutomaticEnv() does not reach keys nested below the top level.
// See https://github.com/spf13/viper/issues/761
func ReplaceEnvVariablesFromPath(filePath string, envVarPrefix string) ([]byte, error) {
	content, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	contentString := string(content)
	for _, envVarValPair := range os.Environ() {
		if strings.HasPrefix(envVarValPair, envVarPrefix) {
			envVar := strings.SplitN(envVarValPair, "=", 2)[0]
			contentString = strings.ReplaceAll(contentString, envVar, os.Getenv(envVar))
		}
	}

	return []byte(contentString), nil
}
