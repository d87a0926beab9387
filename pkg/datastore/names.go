package datastore

import (
	"regexp"
	"strconv"
)

var trailingIndex = regexp.MustCompile(`^(.*_)(\d+)$`)

// IncrementName bumps a trailing "_<n>" suffix, or appends "_1" when there is none.
// "foo" becomes "foo_1" and "foo_3" becomes "foo_4".
func IncrementName(name string) string {
	match := trailingIndex.FindStringSubmatch(name)
	if match == nil {
		return name + "_1"
	}

	n, err := strconv.ParseUint(match[2], 10, 64)
	if err != nil {
		return name + "_1"
	}
	return match[1] + strconv.FormatUint(n+1, 10)
}
