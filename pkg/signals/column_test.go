package signals

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInferColumn(t *testing.T) {
	t.Run("InferColumn() - int", func(t *testing.T) {
		column := InferColumn([]string{"1", " 2", "-3"})
		assert.Equal(t, Int, column.Kind)
		assert.Equal(t, []float64{1, 2, -3}, column.Numbers)
	})

	t.Run("InferColumn() - float", func(t *testing.T) {
		column := InferColumn([]string{"1", "2.5", "1e3"})
		assert.Equal(t, Float, column.Kind)
		assert.Equal(t, []float64{1, 2.5, 1000}, column.Numbers)
	})

	t.Run("InferColumn() - blanks promote to float", func(t *testing.T) {
		column := InferColumn([]string{"1", "", "3"})
		assert.Equal(t, Float, column.Kind)
		assert.True(t, math.IsNaN(column.Numbers[1]))
	})

	t.Run("InferColumn() - bool", func(t *testing.T) {
		column := InferColumn([]string{"true", "False", "TRUE"})
		assert.Equal(t, Bool, column.Kind)
		assert.Equal(t, []float64{1, 0, 1}, column.Numbers)
	})

	t.Run("InferColumn() - string", func(t *testing.T) {
		column := InferColumn([]string{"1", "two", "3"})
		assert.Equal(t, String, column.Kind)
		assert.Equal(t, 3, column.Len())
	})

	t.Run("Kind", func(t *testing.T) {
		for _, k := range []Kind{Bool, Uint, Int, Float, Complex} {
			assert.True(t, k.IsNumeric(), k.String())
		}
		assert.False(t, String.IsNumeric())
		assert.True(t, Complex.IsFloat())
		assert.False(t, Int.IsFloat())
	})

	t.Run("NewComplexColumn()", func(t *testing.T) {
		column := NewComplexColumn([]complex128{complex(1, 2), complex(-3, 0)})
		assert.Equal(t, 2, column.Len())
		assert.Equal(t, []float64{1, -3}, column.numbers())
	})
}
