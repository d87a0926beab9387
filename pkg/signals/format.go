package signals

import (
	"fmt"
	"math"
	"strconv"
)

var siPrefixes = map[int]string{
	-24: "y",
	-21: "z",
	-18: "a",
	-15: "f",
	-12: "p",
	-9:  "n",
	-6:  "u",
	-3:  "m",
	3:   "k",
	6:   "M",
	9:   "G",
	12:  "T",
	15:  "P",
	18:  "E",
	21:  "Z",
	24:  "Y",
}

// FormatProperty renders one summary property for display
func (s *Signal) FormatProperty(key string) string {
	return FormatValue(s.Property(key))
}

// FormatProperties renders the given property keys in order
func (s *Signal) FormatProperties(keys []string) []string {
	formatted := make([]string, len(keys))
	for i, key := range keys {
		formatted[i] = s.FormatProperty(key)
	}
	return formatted
}

// FormatValue renders a property value. Floats are scaled into [1, 1000) and
// suffixed with their SI prefix, e.g. 1530.0 -> "1.5k" and 0.002 -> "2.0m".
func FormatValue(value interface{}) string {
	switch v := value.(type) {
	case nil:
		return "None"
	case float64:
		return FormatSI(v)
	case int64:
		return strconv.FormatInt(v, 10)
	case string:
		return v
	}
	return fmt.Sprint(value)
}

func FormatSI(value float64) string {
	if value == 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Sprintf("%0.1f", value)
	}

	exponent := 0
	for math.Abs(value) >= 1000.0 {
		value /= 1000.0
		exponent += 3
	}
	for math.Abs(value) < 1.0 {
		value *= 1000.0
		exponent -= 3
	}

	if exponent == 0 {
		return fmt.Sprintf("%0.1f", value)
	}

	prefix, ok := siPrefixes[exponent]
	if !ok {
		prefix = "e" + strconv.Itoa(exponent)
	}
	return fmt.Sprintf("%0.1f", value) + prefix
}
