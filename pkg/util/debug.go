package util

import (
	"os"
	"strings"
)

var (
	isDebug *bool
)

func IsDebug() bool {
	if isDebug == nil {
		sigboardDebug := os.Getenv("SIGBOARD_DEBUG")
		d := sigboardDebug == "1" || strings.EqualFold(sigboardDebug, "true")
		isDebug = &d
	}

	return *isDebug
}
