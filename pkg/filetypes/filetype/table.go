package filetype

import (
	"strconv"
	"strings"
	"time"

	"github.com/sigboard/sigboard/pkg/dataset"
	"github.com/sigboard/sigboard/pkg/signals"
	"github.com/sigboard/sigboard/pkg/units"
)

// Table is a header row plus data rows, as read from a delimited file or a sheet
type Table struct {
	Headers []string
	Rows    [][]string
}

// TableOptions control how table columns become signals
type TableOptions struct {
	// TimeKey names the time column, empty for plain signals
	TimeKey   string
	TimeUnits string
	// RelativePath places the table's signals in a group below the dataset root
	RelativePath string
	// Units override the units parsed from header names, keyed by header
	Units map[string]string
	// Exclude lists headers that are not loaded
	Exclude []string
}

// Column returns the cells of one column, short rows yield empty cells
func (t Table) Column(index int) []string {
	cells := make([]string, len(t.Rows))
	for i, row := range t.Rows {
		if index < len(row) {
			cells[i] = row[index]
		}
	}
	return cells
}

func (t Table) index(header string) int {
	for i, h := range t.Headers {
		if h == header {
			return i
		}
	}
	return -1
}

// AddTable turns every column of table except the time column into a signal of ds
func AddTable(ds *dataset.Dataset, table Table, opts TableOptions) error {
	excluded := make(map[string]struct{}, len(opts.Exclude))
	for _, header := range opts.Exclude {
		excluded[header] = struct{}{}
	}

	var times []float64
	timeIndex := -1
	if opts.TimeKey != "" {
		timeIndex = table.index(opts.TimeKey)
		if timeIndex < 0 {
			return &MissingTimeColumnError{Key: opts.TimeKey, Candidates: table.Headers}
		}

		var err error
		times, err = ParseTimes(opts.TimeKey, table.Column(timeIndex))
		if err != nil {
			return err
		}
	}

	timeUnits := opts.TimeUnits
	if timeUnits == "" && timeIndex >= 0 {
		_, timeUnits = units.Split(opts.TimeKey)
	}

	for i, header := range table.Headers {
		if i == timeIndex {
			continue
		}
		if _, ok := excluded[header]; ok {
			continue
		}

		err := ds.AddSignal(header, signals.InferColumn(table.Column(i)), dataset.SignalOptions{
			Units:        opts.Units[header],
			Times:        times,
			TimeUnits:    timeUnits,
			RelativePath: opts.RelativePath,
		})
		if err != nil {
			return err
		}
	}

	return nil
}

// ParseTimes converts time cells to seconds. Cells are plain numbers or RFC 3339 timestamps,
// which become seconds since the Unix epoch.
func ParseTimes(key string, cells []string) ([]float64, error) {
	times := make([]float64, len(cells))
	for i, cell := range cells {
		cell = strings.TrimSpace(cell)

		if v, err := strconv.ParseFloat(cell, 64); err == nil {
			times[i] = v
			continue
		}

		ts, err := time.Parse(time.RFC3339Nano, cell)
		if err != nil {
			return nil, &InvalidTimeError{Key: key, Row: i + 1, Value: cell}
		}
		times[i] = float64(ts.UnixNano()) / float64(time.Second)
	}
	return times, nil
}
