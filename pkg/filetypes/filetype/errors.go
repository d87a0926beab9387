package filetype

import (
	"fmt"
	"strings"
)

type InvalidFilePathError struct {
	Path   string
	Reason string
}

func (e *InvalidFilePathError) Error() string {
	return fmt.Sprintf("invalid file path '%s': %s", e.Path, e.Reason)
}

// AmbiguousTimeColumnError is returned when no time column was given, none could be
// inferred from the headers and no resolver was available to choose one
type AmbiguousTimeColumnError struct {
	Candidates []string
}

func (e *AmbiguousTimeColumnError) Error() string {
	return fmt.Sprintf("cannot determine time column among [%s]", strings.Join(e.Candidates, ", "))
}

type MissingTimeColumnError struct {
	Key        string
	Candidates []string
}

func (e *MissingTimeColumnError) Error() string {
	return fmt.Sprintf("time column '%s' not found among [%s]", e.Key, strings.Join(e.Candidates, ", "))
}

type InvalidTimeError struct {
	Key   string
	Row   int
	Value string
}

func (e *InvalidTimeError) Error() string {
	return fmt.Sprintf("time column '%s': invalid time '%s' in row %d", e.Key, e.Value, e.Row)
}
