package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// StyleCache mints excelize styles so each distinct look is created only once
// per file, however many cells share it.
type StyleCache struct {
	file  *excelize.File
	cache map[string]int
}

// NewStyleCache creates a style cache bound to the given file.
func NewStyleCache(f *excelize.File) *StyleCache {
	return &StyleCache{file: f, cache: make(map[string]int)}
}

// Header returns a bold, centered, bordered style for header rows.
func (sc *StyleCache) Header() (int, error) {
	return sc.getOrCreate("header", &excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"D9D9D9"}},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    thinBorder(),
	})
}

// Body returns a left-aligned bordered style for data rows.
func (sc *StyleCache) Body() (int, error) {
	return sc.getOrCreate("body", &excelize.Style{
		Font:      &excelize.Font{Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "left", Vertical: "center"},
		Border:    thinBorder(),
	})
}

// Derive returns a style equal to base with the captured format laid over it.
// Borders and protection of base are kept.
func (sc *StyleCache) Derive(base int, f Format) (int, error) {
	key := fmt.Sprintf("derive:%d:%+v", base, f)
	if id, ok := sc.cache[key]; ok {
		return id, nil
	}
	style, err := sc.file.GetStyle(base)
	if err != nil {
		return 0, err
	}
	f.applyTo(style)
	return sc.getOrCreate(key, style)
}

// Import recreates a style of another file in this one.
func (sc *StyleCache) Import(src *excelize.File, id int) (int, error) {
	if id == 0 {
		return 0, nil
	}
	key := fmt.Sprintf("import:%p:%d", src, id)
	if cached, ok := sc.cache[key]; ok {
		return cached, nil
	}
	style, err := src.GetStyle(id)
	if err != nil {
		return 0, err
	}
	return sc.getOrCreate(key, style)
}

// Highlight returns a conditional-format style that fills the cell with bg.
func (sc *StyleCache) Highlight(bg string) (int, error) {
	key := "highlight:" + NormalizeColor(bg)
	if id, ok := sc.cache[key]; ok {
		return id, nil
	}
	id, err := sc.file.NewConditionalStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{NormalizeColor(bg)}},
	})
	if err != nil {
		return 0, err
	}
	sc.cache[key] = id
	return id, nil
}

func (sc *StyleCache) getOrCreate(key string, style *excelize.Style) (int, error) {
	if id, ok := sc.cache[key]; ok {
		return id, nil
	}

	id, err := sc.file.NewStyle(style)
	if err != nil {
		return 0, err
	}

	sc.cache[key] = id
	return id, nil
}

func thinBorder() []excelize.Border {
	return []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
}
