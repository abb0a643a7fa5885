package fixture

import (
	"fmt"
	"os"

	"github.com/ManakiYoshihara/GAS-con-test/excel"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
)

// writeTable lays out a table: an optional title row, the header at
// headerRow and the data rows right below it.
func writeTable(t *sheet.Table, headerRow int, title, headers []string, rows [][]sheet.Cell, widths []float64) error {
	if len(title) > 0 {
		if err := t.SetCells(1, 1, [][]sheet.Cell{sheet.Strs(title...)}); err != nil {
			return fmt.Errorf("write title: %w", err)
		}
	}

	if err := writeHeaders(t, headerRow, headers); err != nil {
		return fmt.Errorf("write headers: %w", err)
	}

	if err := writeRows(t, headerRow+1, len(headers), rows); err != nil {
		return fmt.Errorf("write rows: %w", err)
	}

	if err := autoFitColumns(t, headers, widths); err != nil {
		return fmt.Errorf("auto fit columns: %w", err)
	}

	return nil
}

func writeHeaders(t *sheet.Table, row int, headers []string) error {
	if err := t.SetCells(row, 1, [][]sheet.Cell{sheet.Strs(headers...)}); err != nil {
		return err
	}
	return t.StyleHeader(excel.NewRange(row, 1, 1, len(headers)))
}

func writeRows(t *sheet.Table, row, cols int, rows [][]sheet.Cell) error {
	if len(rows) == 0 {
		return nil
	}
	if err := t.SetCells(row, 1, rows); err != nil {
		return err
	}
	return t.StyleBody(excel.NewRange(row, 1, len(rows), cols))
}

// autoFitColumns applies the given widths, or sizes every column to its
// header when none are given.
func autoFitColumns(t *sheet.Table, headers []string, widths []float64) error {
	for col := range headers {
		w := float64(len([]rune(headers[col])))*2 + 2
		if col < len(widths) {
			w = widths[col]
		}
		if err := t.SetColumnWidth(col+1, w); err != nil {
			return err
		}
	}
	return nil
}

func writeText(path, body string) error {
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
