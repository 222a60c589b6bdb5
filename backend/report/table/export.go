package table

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Usage"

// WriteCSV writes plain values; section heading rows are omitted.
func WriteCSV(w io.Writer, t *Table) error {
	cw := csv.NewWriter(w)

	header := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Header
	}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for _, row := range t.Rows {
		if row.Section {
			continue
		}
		record := make([]string, len(row.Cells))
		for i, cell := range row.Cells {
			record[i] = cell.Text
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX writes a single-sheet workbook with numeric day cells.
func WriteXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("name sheet: %w", err)
	}

	header := make([]interface{}, len(t.Columns))
	for i, c := range t.Columns {
		header[i] = c.Header
	}
	if err := setRow(f, 1, header); err != nil {
		return err
	}

	line := 2
	for _, row := range t.Rows {
		if row.Section {
			continue
		}
		values := make([]interface{}, len(row.Cells))
		for i, cell := range row.Cells {
			if cell.IsCount {
				values[i] = cell.Count
			} else {
				values[i] = cell.Text
			}
		}
		if err := setRow(f, line, values); err != nil {
			return err
		}
		line++
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write xlsx: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, line int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
		return fmt.Errorf("write xlsx row %d: %w", line, err)
	}
	return nil
}
