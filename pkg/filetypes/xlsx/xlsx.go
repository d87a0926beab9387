package xlsx

import (
	"fmt"
	"strings"

	"github.com/sigboard/sigboard/pkg/dataset"
	"github.com/sigboard/sigboard/pkg/filetypes/filetype"
	"github.com/sigboard/sigboard/pkg/loggers"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

var (
	zaplog *zap.Logger = loggers.ZapLogger()
)

const (
	XlsxFileTypeKey string = "XLSX"
)

// XlsxFileType loads Excel workbooks. Each sheet becomes a group named after the sheet,
// the first row of a sheet holds its headers.
type XlsxFileType struct{}

func NewXlsxFileType() *XlsxFileType {
	return &XlsxFileType{}
}

func (f *XlsxFileType) Key() string {
	return XlsxFileTypeKey
}

func (f *XlsxFileType) Name() string {
	return "Excel Workbook"
}

func (f *XlsxFileType) Extension() string {
	return "xlsx"
}

func (f *XlsxFileType) FormatExtension() string {
	return ""
}

// Load reads every non-empty sheet. The time column is resolved once against the headers of
// all sheets; sheets without that column produce plain signals.
func (f *XlsxFileType) Load(pathData string, opts dataset.LoadOptions) (*dataset.Dataset, error) {
	if err := filetype.ValidatePath(pathData); err != nil {
		return nil, err
	}

	sheets, tables, err := readWorkbook(pathData)
	if err != nil {
		return nil, err
	}

	timeKey, err := filetype.ResolveTimeKey(candidates(tables), opts)
	if err != nil {
		return nil, err
	}

	ds, err := dataset.New(f, pathData, opts)
	if err != nil {
		return nil, err
	}
	ds.SetTimeKey(timeKey)

	for i, table := range tables {
		tableOpts := filetype.TableOptions{RelativePath: sanitizeSheetName(sheets[i])}
		if hasHeader(table, timeKey) {
			tableOpts.TimeKey = timeKey
		} else if timeKey != "" {
			zaplog.Sugar().Debugf("sheet '%s' has no time column '%s', loading plain signals", sheets[i], timeKey)
		}

		if err := filetype.AddTable(ds, table, tableOpts); err != nil {
			return nil, fmt.Errorf("failed to load sheet '%s' of '%s': %w", sheets[i], pathData, err)
		}
	}

	return ds, nil
}

func readWorkbook(pathData string) ([]string, []filetype.Table, error) {
	workbook, err := excelize.OpenFile(pathData)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open workbook '%s': %w", pathData, err)
	}
	defer workbook.Close()

	var sheets []string
	var tables []filetype.Table
	for _, sheet := range workbook.GetSheetList() {
		rows, err := workbook.GetRows(sheet)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to read sheet '%s' of '%s': %w", sheet, pathData, err)
		}
		if len(rows) == 0 || len(rows[0]) == 0 {
			continue
		}

		headers := make([]string, len(rows[0]))
		for i, header := range rows[0] {
			headers[i] = strings.TrimSpace(header)
		}

		sheets = append(sheets, sheet)
		tables = append(tables, filetype.Table{Headers: headers, Rows: rows[1:]})
	}

	return sheets, tables, nil
}

// candidates returns the distinct headers of all tables in order of appearance
func candidates(tables []filetype.Table) []string {
	seen := make(map[string]struct{})
	var headers []string
	for _, table := range tables {
		for _, header := range table.Headers {
			if _, ok := seen[header]; ok {
				continue
			}
			seen[header] = struct{}{}
			headers = append(headers, header)
		}
	}
	return headers
}

func hasHeader(table filetype.Table, key string) bool {
	if key == "" {
		return false
	}
	for _, header := range table.Headers {
		if header == key {
			return true
		}
	}
	return false
}

func sanitizeSheetName(sheet string) string {
	return strings.ReplaceAll(strings.TrimSpace(sheet), "/", "-")
}
