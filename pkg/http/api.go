package http

import (
	"math"

	"github.com/sigboard/sigboard/pkg/dataset"
	"github.com/sigboard/sigboard/pkg/signals"
)

type DatasetSummary struct {
	Name        string             `json:"name"`
	Descriptor  dataset.Descriptor `json:"descriptor"`
	Fingerprint string             `json:"fingerprint"`
	Signals     []string           `json:"signals"`
}

type DatasetDetail struct {
	DatasetSummary
	Properties []string        `json:"properties"`
	Signals    []SignalSummary `json:"signals"`
}

type SignalSummary struct {
	Path       string            `json:"path"`
	Type       string            `json:"type"`
	Units      string            `json:"units,omitempty"`
	TimeUnits  string            `json:"time_units,omitempty"`
	Length     int               `json:"length"`
	Properties map[string]string `json:"properties"`
}

type SubscriptionRequest struct {
	Patterns []string `json:"patterns"`
}

type EvaluateResponse struct {
	Path   string        `json:"path"`
	Type   string        `json:"type"`
	Units  string        `json:"units,omitempty"`
	Time   []float64     `json:"time"`
	Values []interface{} `json:"values"`
	Labels []string      `json:"labels,omitempty"`
}

func NewDatasetSummary(ds *dataset.Dataset) *DatasetSummary {
	summary := &DatasetSummary{
		Name:        ds.Name(),
		Descriptor:  ds.Descriptor(),
		Fingerprint: ds.Fingerprint(),
		Signals:     []string{},
	}
	for _, s := range ds.Signals() {
		summary.Signals = append(summary.Signals, s.Path())
	}
	return summary
}

func NewDatasetDetail(ds *dataset.Dataset, propertyKeys []string) *DatasetDetail {
	detail := &DatasetDetail{
		DatasetSummary: *NewDatasetSummary(ds),
		Properties:     propertyKeys,
		Signals:        []SignalSummary{},
	}
	for _, s := range ds.Signals() {
		detail.Signals = append(detail.Signals, *NewSignalSummary(s, propertyKeys))
	}
	return detail
}

func NewSignalSummary(s *signals.Signal, propertyKeys []string) *SignalSummary {
	summary := &SignalSummary{
		Path:       s.Path(),
		Type:       s.Type().String(),
		Units:      s.Units(),
		TimeUnits:  s.TimeUnits(),
		Length:     s.Len(),
		Properties: make(map[string]string, len(propertyKeys)),
	}
	for _, key := range propertyKeys {
		summary.Properties[key] = s.FormatProperty(key)
	}
	return summary
}

// jsonValues maps NaN and infinite samples to null
func jsonValues(values []float64) []interface{} {
	result := make([]interface{}, len(values))
	for i, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		result[i] = v
	}
	return result
}
