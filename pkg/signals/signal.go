package signals

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/interp"
)

// Type is the closed set of signal representations
type Type int

const (
	Plain Type = iota
	FloatTimeSeries
	IntegerTimeSeries
	NonNumericTimeSeries
)

func (t Type) String() string {
	switch t {
	case Plain:
		return "Plain"
	case FloatTimeSeries:
		return "FloatTimeSeries"
	case IntegerTimeSeries:
		return "IntegerTimeSeries"
	case NonNumericTimeSeries:
		return "NonNumericTimeSeries"
	}
	return "Unknown"
}

// IsTimeSeries reports whether signals of this type carry a time axis
func (t Type) IsTimeSeries() bool {
	return t != Plain
}

const (
	DefaultTimeUnits        = "s"
	DefaultResolutionFactor = 100.0
)

type Options struct {
	Path      string
	Units     string
	TimeUnits string
}

// Signal is one named, unit-tagged array of samples, optionally indexed by time.
// It is immutable after construction apart from the dataset prefix of its path.
type Signal struct {
	typ       Type
	kind      Kind
	path      string
	name      string
	units     string
	timeUnits string

	// samples holds raw numbers, or lookup codes when levels or labels is set
	samples []float64
	times   []float64
	levels  []float64
	labels  []string

	curve *interp.FritschButland
}

func (s *Signal) Type() Type {
	return s.typ
}

// Kind returns the element kind of the column the signal was built from
func (s *Signal) Kind() Kind {
	return s.kind
}

func (s *Signal) Path() string {
	return s.path
}

func (s *Signal) Name() string {
	return s.name
}

func (s *Signal) Units() string {
	return s.units
}

func (s *Signal) TimeUnits() string {
	return s.timeUnits
}

func (s *Signal) Len() int {
	return len(s.samples)
}

// Samples returns the stored samples. For integer-coded and non-numeric signals these are lookup codes.
func (s *Signal) Samples() []float64 {
	return s.samples
}

// Times returns the recorded time axis, nil for plain signals
func (s *Signal) Times() []float64 {
	return s.times
}

// Categories returns the sorted lookup table of a non-numeric signal
func (s *Signal) Categories() []string {
	return s.labels
}

// Decoded returns the samples mapped back through the integer lookup table.
// Signals without an integer table return their stored samples.
func (s *Signal) Decoded() []float64 {
	if s.levels == nil {
		return s.samples
	}

	decoded := make([]float64, len(s.samples))
	for i, code := range s.samples {
		decoded[i] = s.levels[int(code)]
	}
	return decoded
}

// Labels decodes lookup codes, as returned by Evaluate on a non-numeric signal, into category labels
func (s *Signal) Labels(codes []float64) []string {
	if s.labels == nil {
		return nil
	}

	labels := make([]string, len(codes))
	for i, code := range codes {
		index := int(code)
		if index >= 0 && index < len(s.labels) {
			labels[i] = s.labels[index]
		}
	}
	return labels
}

// TStart returns the first recorded time, NaN when there is none
func (s *Signal) TStart() float64 {
	if len(s.times) == 0 {
		return math.NaN()
	}
	return s.times[0]
}

// TEnd returns the last recorded time, NaN when there is none
func (s *Signal) TEnd() float64 {
	if len(s.times) == 0 {
		return math.NaN()
	}
	return s.times[len(s.times)-1]
}

// RenameDataset replaces the leading dataset segment of the signal path
func (s *Signal) RenameDataset(name string) {
	tokens := strings.Split(s.path, "/")
	tokens[0] = name
	s.path = strings.Join(tokens, "/")
}

func (s *Signal) categorical() bool {
	return s.labels != nil
}

func (s *Signal) integral() bool {
	return s.kind.IsNumeric() && !s.kind.IsFloat()
}

func nameFromPath(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}
