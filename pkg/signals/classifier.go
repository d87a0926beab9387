package signals

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/interp"
)

// Classify selects the signal representation for a value column.
// Without a time axis the result is always Plain; otherwise it depends only on the column kind.
func Classify(hasTime bool, kind Kind) Type {
	if !hasTime {
		return Plain
	}

	if kind.IsNumeric() {
		if kind.IsFloat() {
			return FloatTimeSeries
		}
		return IntegerTimeSeries
	}

	return NonNumericTimeSeries
}

// Generate constructs the signal variant selected by Classify. A nil times slice produces a Plain signal.
func Generate(times []float64, column Column, opts Options) (*Signal, error) {
	typ := Classify(times != nil, column.Kind)

	if typ.IsTimeSeries() && len(times) != column.Len() {
		return nil, &DimensionMismatchError{
			Path:    opts.Path,
			Times:   len(times),
			Samples: column.Len(),
		}
	}

	timeUnits := opts.TimeUnits
	if typ.IsTimeSeries() && timeUnits == "" {
		timeUnits = DefaultTimeUnits
	}

	s := &Signal{
		typ:       typ,
		kind:      column.Kind,
		path:      opts.Path,
		name:      nameFromPath(opts.Path),
		units:     opts.Units,
		timeUnits: timeUnits,
		times:     times,
	}

	switch {
	case column.Kind == String:
		s.labels, s.samples = encodeStrings(column.Strings)
	case typ == IntegerTimeSeries:
		s.levels, s.samples = encodeNumbers(column.Numbers)
	default:
		s.samples = column.numbers()
	}

	if !typ.IsTimeSeries() {
		return s, nil
	}

	strict := typ == FloatTimeSeries
	if index := firstUnorderedIndex(times, strict); index >= 0 {
		return nil, &NonMonotonicTimeError{Path: opts.Path, Index: index}
	}

	if typ == FloatTimeSeries && len(times) > 1 {
		s.curve = &interp.FritschButland{}
		if err := s.curve.Fit(times, s.samples); err != nil {
			return nil, fmt.Errorf("signal '%s': failed to fit interpolant: %w", opts.Path, err)
		}
	}

	return s, nil
}

// encodeStrings builds a sorted lookup table of unique values and replaces each value by its index
func encodeStrings(values []string) ([]string, []float64) {
	unique := make(map[string]struct{}, len(values))
	for _, v := range values {
		unique[v] = struct{}{}
	}

	table := make([]string, 0, len(unique))
	for v := range unique {
		table = append(table, v)
	}
	sort.Strings(table)

	index := make(map[string]int, len(table))
	for i, v := range table {
		index[v] = i
	}

	codes := make([]float64, len(values))
	for i, v := range values {
		codes[i] = float64(index[v])
	}

	return table, codes
}

func encodeNumbers(values []float64) ([]float64, []float64) {
	unique := make(map[float64]struct{}, len(values))
	for _, v := range values {
		unique[v] = struct{}{}
	}

	table := make([]float64, 0, len(unique))
	for v := range unique {
		table = append(table, v)
	}
	sort.Float64s(table)

	index := make(map[float64]int, len(table))
	for i, v := range table {
		index[v] = i
	}

	codes := make([]float64, len(values))
	for i, v := range values {
		codes[i] = float64(index[v])
	}

	return table, codes
}

// firstUnorderedIndex returns the first index breaking the ordering of times, or -1
func firstUnorderedIndex(times []float64, strict bool) int {
	for i := 1; i < len(times); i++ {
		if times[i] < times[i-1] || (strict && times[i] == times[i-1]) {
			return i
		}
	}
	return -1
}
