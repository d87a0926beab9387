package signals

import (
	"sort"

	"gonum.org/v1/gonum/floats"
)

// Evaluate samples the signal over a time grid. With nil times an evenly spaced
// grid of Len()*resolutionFactor points spanning the recorded time range is used;
// supplied times outside the recorded range are dropped, the signal is never extrapolated.
//
// Float signals follow a monotone cubic Hermite interpolant. Integer-coded and
// non-numeric signals hold the last sample recorded at or before each time;
// non-numeric values are lookup codes, see Labels.
func (s *Signal) Evaluate(times []float64, resolutionFactor float64) ([]float64, []float64, error) {
	if !s.typ.IsTimeSeries() {
		return nil, nil, ErrNotTimeSeries
	}

	if len(s.samples) == 0 {
		return []float64{}, []float64{}, nil
	}

	if resolutionFactor <= 0 {
		resolutionFactor = DefaultResolutionFactor
	}

	var grid []float64
	if times == nil {
		grid = linspace(s.TStart(), s.TEnd(), int(float64(len(s.samples))*resolutionFactor))
	} else {
		grid = s.clip(times)
	}

	values := make([]float64, len(grid))
	switch s.typ {
	case FloatTimeSeries:
		for i, t := range grid {
			values[i] = s.predict(t)
		}
	case IntegerTimeSeries:
		for i, t := range grid {
			values[i] = s.levels[int(s.samples[s.heldIndex(t)])]
		}
	case NonNumericTimeSeries:
		for i, t := range grid {
			values[i] = s.samples[s.heldIndex(t)]
		}
	}

	return grid, values, nil
}

// ValueAt evaluates the signal at a single time within the recorded range
func (s *Signal) ValueAt(t float64) (float64, bool, error) {
	_, values, err := s.Evaluate([]float64{t}, DefaultResolutionFactor)
	if err != nil {
		return 0, false, err
	}
	if len(values) == 0 {
		return 0, false, nil
	}
	return values[0], true, nil
}

func (s *Signal) predict(t float64) float64 {
	if s.curve == nil {
		return s.samples[0]
	}
	return s.curve.Predict(t)
}

// heldIndex returns the index of the last recorded time at or before t
func (s *Signal) heldIndex(t float64) int {
	index := sort.Search(len(s.times), func(i int) bool {
		return s.times[i] > t
	})
	if index > 0 {
		index--
	}
	return index
}

func (s *Signal) clip(times []float64) []float64 {
	start, end := s.TStart(), s.TEnd()

	clipped := make([]float64, 0, len(times))
	for _, t := range times {
		if t >= start && t <= end {
			clipped = append(clipped, t)
		}
	}
	return clipped
}

func linspace(start float64, end float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{start}
	}
	return floats.Span(make([]float64, n), start, end)
}
