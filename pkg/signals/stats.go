package signals

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	PropertyMin   = "Min"
	PropertyAvg   = "Avg"
	PropertyMed   = "Med"
	PropertyMode  = "Mode"
	PropertyMax   = "Max"
	PropertyStd   = "Std"
	PropertyUnits = "Units"
)

// PropertyKeys lists the summary properties in display order
var PropertyKeys = []string{
	PropertyMin,
	PropertyAvg,
	PropertyMed,
	PropertyMode,
	PropertyMax,
	PropertyStd,
	PropertyUnits,
}

// Property is one summary value. Value is a float64, an int64, a string or nil.
type Property struct {
	Key   string
	Value interface{}
}

func (s *Signal) Properties() []Property {
	return []Property{
		{Key: PropertyMin, Value: s.Min()},
		{Key: PropertyAvg, Value: s.Avg()},
		{Key: PropertyMed, Value: s.Med()},
		{Key: PropertyMode, Value: s.Mode()},
		{Key: PropertyMax, Value: s.Max()},
		{Key: PropertyStd, Value: s.Std()},
		{Key: PropertyUnits, Value: s.units},
	}
}

// Property returns the summary value for key, or nil for an unknown key
func (s *Signal) Property(key string) interface{} {
	for _, p := range s.Properties() {
		if p.Key == key {
			return p.Value
		}
	}
	return nil
}

func (s *Signal) Min() interface{} {
	return s.extreme(floats.Min)
}

func (s *Signal) Max() interface{} {
	return s.extreme(floats.Max)
}

func (s *Signal) Avg() interface{} {
	values, ok := s.statValues()
	if !ok {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

func (s *Signal) Med() interface{} {
	values, ok := s.statValues()
	if !ok {
		return math.NaN()
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func (s *Signal) Std() interface{} {
	values, ok := s.statValues()
	if !ok {
		return math.NaN()
	}
	return math.Sqrt(stat.PopVariance(values, nil))
}

// Mode returns the most frequent sample, the smallest one on ties.
// Non-numeric signals return the decoded category label. Empty signals return nil,
// numeric signals holding a NaN sample return NaN like the other statistics.
func (s *Signal) Mode() interface{} {
	if len(s.samples) == 0 {
		return nil
	}

	if !s.categorical() {
		if _, ok := s.statValues(); !ok {
			return math.NaN()
		}
	}

	mode, ok := modeOf(s.samples)
	if !ok {
		return nil
	}

	if s.categorical() {
		index := int(mode)
		if index < 0 || index >= len(s.labels) {
			return nil
		}
		return s.labels[index]
	}

	if s.levels != nil {
		index := int(mode)
		if index < 0 || index >= len(s.levels) {
			return nil
		}
		mode = s.levels[index]
	}

	if s.integral() {
		return int64(mode)
	}
	return mode
}

func (s *Signal) extreme(fn func([]float64) float64) interface{} {
	values, ok := s.statValues()
	if !ok {
		return math.NaN()
	}

	v := fn(values)
	if s.integral() {
		return int64(v)
	}
	return v
}

// statValues returns the decoded numeric samples, or false when statistics are undefined.
// NaN samples make every statistic NaN.
func (s *Signal) statValues() ([]float64, bool) {
	if s.categorical() || len(s.samples) == 0 {
		return nil, false
	}

	values := s.Decoded()
	if floats.HasNaN(values) {
		return nil, false
	}
	return values, true
}

func modeOf(values []float64) (float64, bool) {
	counts := make(map[float64]int, len(values))
	for _, v := range values {
		counts[v]++
	}

	if len(counts) == 0 {
		return 0, false
	}

	mode, best := 0.0, 0
	for v, n := range counts {
		if n > best || (n == best && v < mode) {
			mode, best = v, n
		}
	}
	return mode, true
}
