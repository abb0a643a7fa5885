package sheet

import (
	"fmt"
	"strings"

	"github.com/ManakiYoshihara/GAS-con-test/excel"
	"github.com/xuri/excelize/v2"
)

// Format holds the visual attributes of a cell that survive replication.
// Colors are six upper-case hex digits without "#"; empty means unset.
type Format struct {
	NumFmt       int
	CustomNumFmt string
	Background   string
	FontColor    string
	Bold         bool
	Italic       bool
	FontSize     float64
	Horizontal   string
	Vertical     string
	Wrap         bool
}

// General is the automatic number format.
const General = 0

// NormalizeColor turns "#d9ead3", "FFD9EAD3" or "d9ead3" into "D9EAD3".
func NormalizeColor(c string) string {
	c = strings.ToUpper(strings.TrimPrefix(strings.TrimSpace(c), "#"))
	if len(c) > 6 {
		c = c[len(c)-6:]
	}
	return c
}

func formatOf(style *excelize.Style) Format {
	var f Format
	if style == nil {
		return f
	}
	f.NumFmt = style.NumFmt
	if style.CustomNumFmt != nil {
		f.CustomNumFmt = *style.CustomNumFmt
	}
	if style.Fill.Type == "pattern" && style.Fill.Pattern == 1 && len(style.Fill.Color) > 0 {
		f.Background = NormalizeColor(style.Fill.Color[0])
	}
	if font := style.Font; font != nil {
		f.FontColor = NormalizeColor(font.Color)
		f.Bold = font.Bold
		f.Italic = font.Italic
		f.FontSize = font.Size
	}
	if a := style.Alignment; a != nil {
		f.Horizontal = a.Horizontal
		f.Vertical = a.Vertical
		f.Wrap = a.WrapText
	}
	return f
}

func (f Format) applyTo(style *excelize.Style) {
	style.NumFmt = f.NumFmt
	style.DecimalPlaces = nil
	style.NegRed = false
	style.CustomNumFmt = nil
	if f.CustomNumFmt != "" {
		custom := f.CustomNumFmt
		style.CustomNumFmt = &custom
	}

	style.Fill = excelize.Fill{}
	if f.Background != "" {
		style.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{f.Background}}
	}

	font := excelize.Font{}
	if style.Font != nil {
		font = *style.Font
	}
	font.Bold = f.Bold
	font.Italic = f.Italic
	if f.FontSize > 0 {
		font.Size = f.FontSize
	}
	if f.FontColor != "" {
		font.Color = f.FontColor
		font.ColorTheme = nil
		font.ColorIndexed = 0
		font.ColorTint = 0
	}
	style.Font = &font

	align := excelize.Alignment{}
	if style.Alignment != nil {
		align = *style.Alignment
	}
	align.Horizontal = f.Horizontal
	align.Vertical = f.Vertical
	align.WrapText = f.Wrap
	style.Alignment = &align
}

// Format reads the attributes of one cell.
func (t *Table) Format(row, col int) (Format, error) {
	formats, err := t.Formats(excel.NewRange(row, col, 1, 1))
	if err != nil {
		return Format{}, err
	}
	return formats[0][0], nil
}

// Formats reads the attributes of every cell in the block.
func (t *Table) Formats(r excel.Range) ([][]Format, error) {
	seen := make(map[int]Format)
	out := make([][]Format, max(r.Rows, 0))
	for i := range out {
		row := make([]Format, max(r.Cols, 0))
		for j := range row {
			ref := excel.CellName(r.Row+i, r.Col+j)
			id, err := t.wb.file.GetCellStyle(t.sheet, ref)
			if err != nil {
				return nil, fmt.Errorf("%s!%s: style: %w", t.Name(), ref, err)
			}
			f, ok := seen[id]
			if !ok {
				style, err := t.wb.file.GetStyle(id)
				if err != nil {
					return nil, fmt.Errorf("%s!%s: style %d: %w", t.Name(), ref, id, err)
				}
				f = formatOf(style)
				seen[id] = f
			}
			row[j] = f
		}
		out[i] = row
	}
	return out, nil
}

// SetFormats writes a block of formats with its top-left corner at (row, col).
// Each cell keeps its borders; every captured attribute is overwritten.
func (t *Table) SetFormats(row, col int, formats [][]Format) error {
	for i, r := range formats {
		for j, f := range r {
			if err := t.setFormat(row+i, col+j, f); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Table) setFormat(row, col int, f Format) error {
	ref := excel.CellName(row, col)
	base, err := t.wb.file.GetCellStyle(t.sheet, ref)
	if err != nil {
		return fmt.Errorf("%s!%s: style: %w", t.Name(), ref, err)
	}
	id, err := t.wb.styles.Derive(base, f)
	if err != nil {
		return fmt.Errorf("%s!%s: derive style: %w", t.Name(), ref, err)
	}
	if id == base {
		return nil
	}
	if err := t.wb.file.SetCellStyle(t.sheet, ref, ref, id); err != nil {
		return fmt.Errorf("%s!%s: set style: %w", t.Name(), ref, err)
	}
	return nil
}

// SetNumberFormat changes only the number format of every cell in the block.
// A non-empty custom code takes precedence over the built-in id.
func (t *Table) SetNumberFormat(r excel.Range, numFmt int, custom string) error {
	formats, err := t.Formats(r)
	if err != nil {
		return err
	}
	for i, row := range formats {
		for j, f := range row {
			f.NumFmt, f.CustomNumFmt = numFmt, custom
			if err := t.setFormat(r.Row+i, r.Col+j, f); err != nil {
				return err
			}
		}
	}
	return nil
}

// StyleHeader paints the block with the bold, bordered header look.
func (t *Table) StyleHeader(r excel.Range) error {
	id, err := t.wb.styles.Header()
	if err != nil {
		return fmt.Errorf("%s: header style: %w", t.Name(), err)
	}
	return t.setStyle(r, id)
}

// StyleBody paints the block with the bordered body look.
func (t *Table) StyleBody(r excel.Range) error {
	id, err := t.wb.styles.Body()
	if err != nil {
		return fmt.Errorf("%s: body style: %w", t.Name(), err)
	}
	return t.setStyle(r, id)
}

func (t *Table) setStyle(r excel.Range, id int) error {
	if r.Empty() {
		return nil
	}
	from, to := r.TopLeft(), r.BottomRight()
	if err := t.wb.file.SetCellStyle(t.sheet, from, to, id); err != nil {
		return fmt.Errorf("%s!%s:%s: set style: %w", t.Name(), from, to, err)
	}
	return nil
}
