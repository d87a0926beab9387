package csv

import (
	"fmt"
	"os"
	"unicode/utf8"

	"gopkg.in/yaml.v2"
)

// Format is the optional YAML file describing how to read a CSV data file
type Format struct {
	Delimiter string            `yaml:"delimiter,omitempty"`
	Comment   string            `yaml:"comment,omitempty"`
	TimeKey   *string           `yaml:"time_key,omitempty"`
	TimeUnits string            `yaml:"time_units,omitempty"`
	Units     map[string]string `yaml:"units,omitempty"`
	Exclude   []string          `yaml:"exclude,omitempty"`
}

func LoadFormat(path string) (*Format, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read format file '%s': %w", path, err)
	}

	var format Format
	if err := yaml.Unmarshal(content, &format); err != nil {
		return nil, fmt.Errorf("failed to parse format file '%s': %w", path, err)
	}

	if _, err := format.delimiter(); err != nil {
		return nil, fmt.Errorf("format file '%s': %w", path, err)
	}
	if _, err := format.comment(); err != nil {
		return nil, fmt.Errorf("format file '%s': %w", path, err)
	}

	return &format, nil
}

func (f *Format) delimiter() (rune, error) {
	if f == nil || f.Delimiter == "" {
		return ',', nil
	}
	if f.Delimiter == `\t` {
		return '\t', nil
	}
	return singleRune("delimiter", f.Delimiter)
}

func (f *Format) comment() (rune, error) {
	if f == nil || f.Comment == "" {
		return 0, nil
	}
	return singleRune("comment", f.Comment)
}

func singleRune(field string, value string) (rune, error) {
	r, size := utf8.DecodeRuneInString(value)
	if r == utf8.RuneError || size != len(value) {
		return 0, fmt.Errorf("%s must be a single character, got '%s'", field, value)
	}
	return r, nil
}
