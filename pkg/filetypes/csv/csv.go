package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sigboard/sigboard/pkg/dataset"
	"github.com/sigboard/sigboard/pkg/filetypes/filetype"
	"github.com/sigboard/sigboard/pkg/loggers"
	"go.uber.org/zap"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

const (
	CsvFileTypeKey string = "CSV"
)

type CsvFileType struct{}

func NewCsvFileType() *CsvFileType {
	return &CsvFileType{}
}

func (f *CsvFileType) Key() string {
	return CsvFileTypeKey
}

func (f *CsvFileType) Name() string {
	return "Comma-Separated Values"
}

func (f *CsvFileType) Extension() string {
	return "csv"
}

func (f *CsvFileType) FormatExtension() string {
	return "yaml"
}

// Load reads a CSV file with a header row. Every column except the time column becomes a
// signal named after its header, with units split from a trailing "[unit]".
func (f *CsvFileType) Load(pathData string, opts dataset.LoadOptions) (*dataset.Dataset, error) {
	if err := filetype.ValidatePath(pathData); err != nil {
		return nil, err
	}

	var format *Format
	if opts.PathFormat != "" {
		if err := filetype.ValidatePath(opts.PathFormat); err != nil {
			return nil, err
		}

		var err error
		format, err = LoadFormat(opts.PathFormat)
		if err != nil {
			return nil, err
		}

		if opts.TimeKey == nil {
			opts.TimeKey = format.TimeKey
		}
	}

	file, err := os.Open(pathData)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	table, err := readTable(file, format)
	if err != nil {
		return nil, fmt.Errorf("failed to process csv '%s': %w", pathData, err)
	}

	zaplog.Sugar().Debugf("Read headers of %v", table.Headers)

	timeKey, err := filetype.ResolveTimeKey(table.Headers, opts)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.New(f, pathData, opts)
	if err != nil {
		return nil, err
	}
	ds.SetTimeKey(timeKey)

	tableOpts := filetype.TableOptions{TimeKey: timeKey}
	if format != nil {
		tableOpts.TimeUnits = format.TimeUnits
		tableOpts.Units = format.Units
		tableOpts.Exclude = format.Exclude
	}

	if err := filetype.AddTable(ds, table, tableOpts); err != nil {
		return nil, fmt.Errorf("failed to load csv '%s': %w", pathData, err)
	}

	return ds, nil
}

func readTable(input io.Reader, format *Format) (filetype.Table, error) {
	delimiter, err := format.delimiter()
	if err != nil {
		return filetype.Table{}, err
	}
	comment, err := format.comment()
	if err != nil {
		return filetype.Table{}, err
	}

	reader := csv.NewReader(input)
	reader.Comma = delimiter
	reader.Comment = comment
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	headers, err := reader.Read()
	if err != nil {
		return filetype.Table{}, fmt.Errorf("failed to read header: %w", err)
	}
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\ufeff")
	}
	for i, header := range headers {
		headers[i] = strings.TrimSpace(header)
	}

	lines, err := reader.ReadAll()
	if err != nil {
		return filetype.Table{}, fmt.Errorf("failed to read lines: %w", err)
	}

	return filetype.Table{Headers: headers, Rows: lines}, nil
}
