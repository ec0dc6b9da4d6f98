package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

const utf8BOM = "\ufeff"

// Load reads a dataset file. The format follows the extension:
// .xlsx/.xlsm workbooks (first sheet), anything else comma-separated text.
func Load(path string) (*Frame, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, err
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadWorkbook(path)
	default:
		file, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer file.Close()
		frame, err := ReadCSV(file)
		if err != nil {
			return nil, err
		}
		frame.Source = path
		return frame, nil
	}
}

// ReadCSV parses comma-separated UTF-8 text whose first row is the header.
func ReadCSV(r io.Reader) (*Frame, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = 0
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmpty
		}
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], utf8BOM)
	}

	frame := &Frame{Header: normalizeCells(header)}
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
		}
		if isBlankRow(row) {
			continue
		}
		frame.Rows = append(frame.Rows, normalizeCells(row))
	}
	return frame, nil
}

// loadWorkbook reads the first sheet of an Excel workbook.
func loadWorkbook(path string) (*Frame, error) {
	file, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open excel: %w", err)
	}
	defer file.Close()

	sheets := file.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}

	rows, err := file.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, ErrEmpty
	}

	frame := &Frame{Source: path, Header: normalizeCells(rows[0])}
	for _, row := range rows[1:] {
		if isBlankRow(row) {
			continue
		}
		// GetRows drops trailing empty cells; pad so Validate reports them as empty
		for len(row) < len(frame.Header) {
			row = append(row, "")
		}
		frame.Rows = append(frame.Rows, normalizeCells(row))
	}
	return frame, nil
}

// WriteCSV writes the frame as comma-separated text with a header row.
func WriteCSV(w io.Writer, f *Frame) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(f.Header); err != nil {
		return err
	}
	if err := writer.WriteAll(f.Rows); err != nil {
		return err
	}
	return writer.Error()
}

// WriteWorkbook saves the frame as the first sheet of a new workbook.
func WriteWorkbook(path string, f *Frame) error {
	book := excelize.NewFile()
	defer book.Close()

	sheet := book.GetSheetName(0)
	if err := book.SetSheetRow(sheet, "A1", &f.Header); err != nil {
		return err
	}
	for i, row := range f.Rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		if err := book.SetSheetRow(sheet, cell, &values); err != nil {
			return err
		}
	}
	return book.SaveAs(path)
}
