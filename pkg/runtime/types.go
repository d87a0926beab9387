package runtime

import "fmt"

type SignalNotFoundError struct {
	Path string
}

func (e *SignalNotFoundError) Error() string {
	return fmt.Sprintf("no signal found at '%s'", e.Path)
}

// EvaluateResult is a sampled signal. Labels holds the decoded values of non-numeric signals.
type EvaluateResult struct {
	Path      string    `json:"path"`
	Type      string    `json:"type"`
	Units     string    `json:"units,omitempty"`
	TimeUnits string    `json:"time_units,omitempty"`
	Times     []float64 `json:"times"`
	Values    []float64 `json:"values"`
	Labels    []string  `json:"labels,omitempty"`
}
