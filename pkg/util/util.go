package util

import (
	"encoding/csv"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"
)

// MarshalAndPrintTable renders a slice of gocsv-tagged structs as a borderless table
func MarshalAndPrintTable(writer io.Writer, in interface{}) error {
	csvContent, err := gocsv.MarshalString(in)
	if err != nil {
		return err
	}

	records, err := csv.NewReader(strings.NewReader(csvContent)).ReadAll()
	if err != nil {
		return err
	}

	PrintTable(writer, records)
	return nil
}

// PrintTable renders records as a borderless table, the first record being the header
func PrintTable(writer io.Writer, records [][]string) {
	table := tablewriter.NewWriter(writer)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetHeaderLine(false)
	table.SetRowLine(false)
	table.SetCenterSeparator("")
	table.SetRowSeparator("")
	table.SetColumnSeparator("")

	for i, record := range records {
		if i == 0 {
			table.SetHeader(record)
		} else {
			table.Append(record)
		}
	}

	table.Render()
}
