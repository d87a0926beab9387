package signals

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignals(t *testing.T) {
	t.Run("Classify()", testClassifyFunc())
	t.Run("Generate() - dimension mismatch", testGenerateDimensionMismatchFunc())
	t.Run("Generate() - non-monotonic time", testGenerateNonMonotonicFunc())
	t.Run("Evaluate() - float at recorded times", testEvaluateFloatAtSamplesFunc())
	t.Run("Evaluate() - float stays monotone", testEvaluateFloatMonotoneFunc())
	t.Run("Evaluate() - default grid", testEvaluateDefaultGridFunc())
	t.Run("Evaluate() - clips to recorded span", testEvaluateClipFunc())
	t.Run("Evaluate() - empty signal", testEvaluateEmptyFunc())
	t.Run("Evaluate() - plain signal", testEvaluatePlainFunc())
	t.Run("Evaluate() - integer zero-order-hold", testEvaluateIntegerHoldFunc())
	t.Run("Evaluate() - non-numeric zero-order-hold", testEvaluateNonNumericHoldFunc())
	t.Run("Properties() - float", testPropertiesFloatFunc())
	t.Run("Properties() - integer", testPropertiesIntegerFunc())
	t.Run("Properties() - non-numeric", testPropertiesNonNumericFunc())
	t.Run("Properties() - empty", testPropertiesEmptyFunc())
	t.Run("Properties() - NaN sample", testPropertiesNaNFunc())
	t.Run("RenameDataset()", testRenameDatasetFunc())
}

func testClassifyFunc() func(*testing.T) {
	return func(t *testing.T) {
		assert.Equal(t, Plain, Classify(false, Float))
		assert.Equal(t, Plain, Classify(false, String))
		assert.Equal(t, FloatTimeSeries, Classify(true, Float))
		assert.Equal(t, FloatTimeSeries, Classify(true, Complex))
		assert.Equal(t, IntegerTimeSeries, Classify(true, Int))
		assert.Equal(t, IntegerTimeSeries, Classify(true, Uint))
		assert.Equal(t, IntegerTimeSeries, Classify(true, Bool))
		assert.Equal(t, NonNumericTimeSeries, Classify(true, String))

		times := []float64{0, 1, 2}
		columns := map[Type]Column{
			FloatTimeSeries:      NewFloatColumn([]float64{1.5, 2.5, 3.5}),
			IntegerTimeSeries:    NewIntColumn([]int64{1, 2, 3}),
			NonNumericTimeSeries: NewStringColumn([]string{"a", "b", "c"}),
		}
		for expected, column := range columns {
			s, err := Generate(times, column, Options{Path: "log/x"})
			require.NoError(t, err)
			assert.Equal(t, expected, s.Type())
			assert.Equal(t, "x", s.Name())
			assert.Equal(t, DefaultTimeUnits, s.TimeUnits())
		}

		s, err := Generate(nil, NewFloatColumn([]float64{1, 2}), Options{Path: "log/x"})
		require.NoError(t, err)
		assert.Equal(t, Plain, s.Type())
		assert.Equal(t, "", s.TimeUnits())
	}
}

func testGenerateDimensionMismatchFunc() func(*testing.T) {
	return func(t *testing.T) {
		_, err := Generate([]float64{0, 1}, NewFloatColumn([]float64{1, 2, 3}), Options{Path: "log/x"})
		require.Error(t, err)

		var mismatch *DimensionMismatchError
		require.True(t, errors.As(err, &mismatch))
		assert.Equal(t, 2, mismatch.Times)
		assert.Equal(t, 3, mismatch.Samples)
		assert.Equal(t, "log/x", mismatch.Path)

		_, err = Generate([]float64{0}, NewStringColumn([]string{"a", "b"}), Options{Path: "log/label"})
		assert.True(t, errors.As(err, &mismatch))
	}
}

func testGenerateNonMonotonicFunc() func(*testing.T) {
	return func(t *testing.T) {
		var unordered *NonMonotonicTimeError

		_, err := Generate([]float64{0, 2, 1}, NewFloatColumn([]float64{1, 2, 3}), Options{Path: "log/x"})
		require.True(t, errors.As(err, &unordered))
		assert.Equal(t, 2, unordered.Index)

		_, err = Generate([]float64{0, 1, 1}, NewFloatColumn([]float64{1, 2, 3}), Options{Path: "log/x"})
		assert.True(t, errors.As(err, &unordered))

		// repeated times are fine for held values
		_, err = Generate([]float64{0, 1, 1}, NewIntColumn([]int64{1, 2, 3}), Options{Path: "log/n"})
		assert.NoError(t, err)
	}
}

func testEvaluateFloatAtSamplesFunc() func(*testing.T) {
	return func(t *testing.T) {
		times := []float64{0, 0.5, 1.25, 3, 4}
		values := []float64{1, -2, 7.5, 7.5, 0.25}

		s, err := Generate(times, NewFloatColumn(values), Options{Path: "log/x"})
		require.NoError(t, err)

		grid, actual, err := s.Evaluate(times, DefaultResolutionFactor)
		require.NoError(t, err)
		assert.Equal(t, times, grid)
		assert.InDeltaSlice(t, values, actual, 1e-9)
	}
}

func testEvaluateFloatMonotoneFunc() func(*testing.T) {
	return func(t *testing.T) {
		s, err := Generate([]float64{0, 1, 2, 3}, NewFloatColumn([]float64{0, 2, 3, 5}), Options{Path: "log/x"})
		require.NoError(t, err)

		_, values, err := s.Evaluate(nil, 25)
		require.NoError(t, err)
		for i, v := range values {
			assert.GreaterOrEqual(t, v, -1e-9)
			assert.LessOrEqual(t, v, 5.0+1e-9)
			if i > 0 {
				assert.GreaterOrEqual(t, v, values[i-1]-1e-12)
			}
		}
	}
}

func testEvaluateDefaultGridFunc() func(*testing.T) {
	return func(t *testing.T) {
		s, err := Generate([]float64{10, 20, 30}, NewFloatColumn([]float64{1, 2, 3}), Options{Path: "log/x"})
		require.NoError(t, err)

		grid, values, err := s.Evaluate(nil, 0)
		require.NoError(t, err)
		assert.Len(t, grid, 300)
		assert.Len(t, values, 300)
		assert.Equal(t, 10.0, grid[0])
		assert.Equal(t, 30.0, grid[len(grid)-1])

		grid, _, err = s.Evaluate(nil, 2)
		require.NoError(t, err)
		assert.Len(t, grid, 6)
	}
}

func testEvaluateClipFunc() func(*testing.T) {
	return func(t *testing.T) {
		s, err := Generate([]float64{1, 2, 3}, NewFloatColumn([]float64{1, 2, 3}), Options{Path: "log/x"})
		require.NoError(t, err)

		grid, values, err := s.Evaluate([]float64{0, 1, 2.5, 3, 3.5}, DefaultResolutionFactor)
		require.NoError(t, err)
		assert.Equal(t, []float64{1, 2.5, 3}, grid)
		assert.Len(t, values, 3)

		_, ok, err := s.ValueAt(10)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func testEvaluateEmptyFunc() func(*testing.T) {
	return func(t *testing.T) {
		s, err := Generate([]float64{}, NewFloatColumn([]float64{}), Options{Path: "log/x"})
		require.NoError(t, err)

		grid, values, err := s.Evaluate(nil, DefaultResolutionFactor)
		require.NoError(t, err)
		assert.Empty(t, grid)
		assert.Empty(t, values)

		single, err := Generate([]float64{5}, NewFloatColumn([]float64{42}), Options{Path: "log/y"})
		require.NoError(t, err)
		value, ok, err := single.ValueAt(5)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, 42.0, value)
	}
}

func testEvaluatePlainFunc() func(*testing.T) {
	return func(t *testing.T) {
		s, err := Generate(nil, NewFloatColumn([]float64{1, 2}), Options{Path: "log/x"})
		require.NoError(t, err)

		_, _, err = s.Evaluate(nil, DefaultResolutionFactor)
		assert.True(t, errors.Is(err, ErrNotTimeSeries))
	}
}

func testEvaluateIntegerHoldFunc() func(*testing.T) {
	return func(t *testing.T) {
		s, err := Generate([]float64{0, 10, 20}, NewIntColumn([]int64{7, 3, 9}), Options{Path: "log/gear"})
		require.NoError(t, err)

		_, values, err := s.Evaluate([]float64{0, 5, 9.999, 10, 15, 20}, DefaultResolutionFactor)
		require.NoError(t, err)
		assert.Equal(t, []float64{7, 7, 7, 3, 3, 9}, values)

		// stored samples are codes into the sorted table {3, 7, 9}
		assert.Equal(t, []float64{1, 0, 2}, s.Samples())
		assert.Equal(t, []float64{7, 3, 9}, s.Decoded())
	}
}

func testEvaluateNonNumericHoldFunc() func(*testing.T) {
	return func(t *testing.T) {
		s, err := Generate([]float64{0, 1, 2}, NewStringColumn([]string{"idle", "run", "idle"}), Options{Path: "log/state"})
		require.NoError(t, err)

		_, values, err := s.Evaluate([]float64{0.5, 1.5, 2}, DefaultResolutionFactor)
		require.NoError(t, err)
		assert.Equal(t, []float64{0, 1, 0}, values)
		assert.Equal(t, []string{"idle", "run", "idle"}, s.Labels(values))
		assert.Equal(t, []string{"idle", "run"}, s.Categories())
	}
}

func testPropertiesFloatFunc() func(*testing.T) {
	return func(t *testing.T) {
		s, err := Generate([]float64{0, 1, 2, 3}, NewFloatColumn([]float64{1, 2, 2, 5}), Options{Path: "log/x", Units: "m"})
		require.NoError(t, err)

		assert.Equal(t, 1.0, s.Min())
		assert.Equal(t, 5.0, s.Max())
		assert.Equal(t, 2.5, s.Avg())
		assert.Equal(t, 2.0, s.Med())
		assert.Equal(t, 2.0, s.Mode())
		assert.InDelta(t, math.Sqrt(2.25), s.Std(), 1e-12)

		keys := make([]string, 0)
		for _, p := range s.Properties() {
			keys = append(keys, p.Key)
		}
		assert.Equal(t, PropertyKeys, keys)
		assert.Equal(t, "m", s.Property(PropertyUnits))
		assert.Equal(t, "2.5", s.FormatProperty(PropertyAvg))
		assert.Equal(t, "m", s.FormatProperty(PropertyUnits))
	}
}

func testPropertiesIntegerFunc() func(*testing.T) {
	return func(t *testing.T) {
		s, err := Generate([]float64{0, 1, 2, 3}, NewIntColumn([]int64{4, 4, 1, 9}), Options{Path: "log/n"})
		require.NoError(t, err)

		assert.Equal(t, int64(1), s.Min())
		assert.Equal(t, int64(9), s.Max())
		assert.Equal(t, int64(4), s.Mode())
		assert.Equal(t, 4.5, s.Avg())
		assert.Equal(t, 4.0, s.Med())
		assert.Equal(t, "9", s.FormatProperty(PropertyMax))
	}
}

func testPropertiesNonNumericFunc() func(*testing.T) {
	return func(t *testing.T) {
		s, err := Generate([]float64{0, 1, 2, 3}, NewStringColumn([]string{"b", "a", "b", "c"}), Options{Path: "log/label"})
		require.NoError(t, err)

		for _, p := range s.Properties() {
			switch p.Key {
			case PropertyMode:
				assert.Equal(t, "b", p.Value)
			case PropertyUnits:
				assert.Equal(t, "", p.Value)
			default:
				value, ok := p.Value.(float64)
				require.True(t, ok, p.Key)
				assert.True(t, math.IsNaN(value), p.Key)
			}
		}

		tie, err := Generate([]float64{0, 1}, NewStringColumn([]string{"z", "y"}), Options{Path: "log/tie"})
		require.NoError(t, err)
		assert.Equal(t, "y", tie.Mode())
	}
}

func testPropertiesEmptyFunc() func(*testing.T) {
	return func(t *testing.T) {
		s, err := Generate([]float64{}, NewFloatColumn([]float64{}), Options{Path: "log/x"})
		require.NoError(t, err)

		assert.True(t, math.IsNaN(s.Min().(float64)))
		assert.True(t, math.IsNaN(s.Std().(float64)))
		assert.Nil(t, s.Mode())
		assert.Equal(t, "None", s.FormatProperty(PropertyMode))
		assert.Equal(t, "NaN", s.FormatProperty(PropertyMin))
	}
}

func testPropertiesNaNFunc() func(*testing.T) {
	return func(t *testing.T) {
		s, err := Generate(nil, NewFloatColumn([]float64{1, math.NaN(), 1}), Options{Path: "log/x"})
		require.NoError(t, err)

		for _, p := range s.Properties() {
			if p.Key == PropertyUnits {
				continue
			}
			value, ok := p.Value.(float64)
			require.True(t, ok, p.Key)
			assert.True(t, math.IsNaN(value), p.Key)
		}
	}
}

func testRenameDatasetFunc() func(*testing.T) {
	return func(t *testing.T) {
		s, err := Generate(nil, NewFloatColumn([]float64{1}), Options{Path: "log/imu/x"})
		require.NoError(t, err)

		s.RenameDataset("log_1")
		assert.Equal(t, "log_1/imu/x", s.Path())
		assert.Equal(t, "x", s.Name())
	}
}
