package units

import "regexp"

var (
	unitsSuffixRegex = regexp.MustCompile(`^(.*\S)\s*\[(.*)\]$`)
)

// Split separates a trailing bracketed unit suffix from a column name.
// "Speed [m/s]" yields ("Speed", "m/s"). Strings without a trailing suffix are
// returned unchanged with empty units.
func Split(raw string) (string, string) {
	match := unitsSuffixRegex.FindStringSubmatch(raw)
	if match == nil {
		return raw, ""
	}

	return match[1], match[2]
}

// Join is the inverse of Split
func Join(name string, units string) string {
	if units == "" {
		return name
	}
	return name + " [" + units + "]"
}
