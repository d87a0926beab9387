package signals

import (
	"math"
	"strconv"
	"strings"
)

// Kind is the element kind of a raw value column, mirroring array dtype kinds.
type Kind int

const (
	Bool Kind = iota
	Uint
	Int
	Float
	Complex
	String
)

func (k Kind) String() string {
	switch k {
	case Bool:
		return "bool"
	case Uint:
		return "uint"
	case Int:
		return "int"
	case Float:
		return "float"
	case Complex:
		return "complex"
	case String:
		return "string"
	}
	return "unknown"
}

// IsNumeric reports whether k is a boolean, unsigned, signed, float or complex kind
func (k Kind) IsNumeric() bool {
	switch k {
	case Bool, Uint, Int, Float, Complex:
		return true
	}
	return false
}

// IsFloat reports whether k is a float or complex kind
func (k Kind) IsFloat() bool {
	return k == Float || k == Complex
}

// Column is one raw value array as delivered by a file loader.
// Numeric kinds other than Complex live in Numbers, Complex in Complex, String in Strings.
type Column struct {
	Kind    Kind
	Numbers []float64
	Complex []complex128
	Strings []string
}

func NewFloatColumn(values []float64) Column {
	return Column{Kind: Float, Numbers: values}
}

func NewIntColumn(values []int64) Column {
	numbers := make([]float64, len(values))
	for i, v := range values {
		numbers[i] = float64(v)
	}
	return Column{Kind: Int, Numbers: numbers}
}

func NewUintColumn(values []uint64) Column {
	numbers := make([]float64, len(values))
	for i, v := range values {
		numbers[i] = float64(v)
	}
	return Column{Kind: Uint, Numbers: numbers}
}

func NewBoolColumn(values []bool) Column {
	numbers := make([]float64, len(values))
	for i, v := range values {
		if v {
			numbers[i] = 1
		}
	}
	return Column{Kind: Bool, Numbers: numbers}
}

func NewComplexColumn(values []complex128) Column {
	return Column{Kind: Complex, Complex: values}
}

func NewStringColumn(values []string) Column {
	return Column{Kind: String, Strings: values}
}

func (c Column) Len() int {
	switch c.Kind {
	case Complex:
		return len(c.Complex)
	case String:
		return len(c.Strings)
	}
	return len(c.Numbers)
}

// numbers returns the numeric view of the column. Complex values are projected onto their real part.
func (c Column) numbers() []float64 {
	if c.Kind != Complex {
		return c.Numbers
	}

	numbers := make([]float64, len(c.Complex))
	for i, v := range c.Complex {
		numbers[i] = real(v)
	}
	return numbers
}

// InferColumn detects the kind of a column of text cells the way a tabular
// reader would: all-integer cells become Int, numeric cells (with blanks as NaN)
// become Float, true/false cells become Bool and anything else String.
func InferColumn(cells []string) Column {
	allInt, allFloat, allBool := true, true, true
	hasBlank := false

	for _, cell := range cells {
		cell = strings.TrimSpace(cell)
		if cell == "" {
			hasBlank = true
			allBool = false
			continue
		}
		if allInt {
			if _, err := strconv.ParseInt(cell, 10, 64); err != nil {
				allInt = false
			}
		}
		if allFloat && !allInt {
			if _, err := strconv.ParseFloat(cell, 64); err != nil {
				allFloat = false
			}
		}
		if allBool {
			if _, ok := parseBool(cell); !ok {
				allBool = false
			}
		}
	}

	switch {
	case allBool && len(cells) > 0:
		values := make([]bool, len(cells))
		for i, cell := range cells {
			values[i], _ = parseBool(strings.TrimSpace(cell))
		}
		return NewBoolColumn(values)
	case allInt && !hasBlank && len(cells) > 0:
		values := make([]int64, len(cells))
		for i, cell := range cells {
			values[i], _ = strconv.ParseInt(strings.TrimSpace(cell), 10, 64)
		}
		return NewIntColumn(values)
	case allInt || allFloat:
		values := make([]float64, len(cells))
		for i, cell := range cells {
			cell = strings.TrimSpace(cell)
			if cell == "" {
				values[i] = math.NaN()
				continue
			}
			values[i], _ = strconv.ParseFloat(cell, 64)
		}
		return NewFloatColumn(values)
	}

	return NewStringColumn(cells)
}

func parseBool(cell string) (bool, bool) {
	switch strings.ToLower(cell) {
	case "true":
		return true, true
	case "false":
		return false, true
	}
	return false, false
}
