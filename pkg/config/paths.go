package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	appDirName string = ".sigboard"
)

var (
	appPath string
)

// AppPath is the directory sigboard runs in, the current working directory unless set
func AppPath() string {
	if appPath == "" {
		cwd, err := os.Getwd()
		if err != nil {
			panic(err)
		}
		appPath = cwd
	}

	return appPath
}

func SetAppPath(path string) {
	appPath = path
}

// AppSigboardPath is the .sigboard directory holding configuration, logs and auto-saves
func AppSigboardPath() string {
	return filepath.Join(AppPath(), appDirName)
}

func ConfigPath() string {
	return filepath.Join(AppSigboardPath(), "config.yaml")
}

func GetAppRelativePath(absolutePath string) string {
	if strings.HasPrefix(absolutePath, AppPath()+string(os.PathSeparator)) {
		return absolutePath[len(AppPath())+1:]
	}
	return absolutePath
}
