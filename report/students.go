package report

import (
	"fmt"

	"github.com/ManakiYoshihara/GAS-con-test/domain"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
)

// Students lists every student of the main store's first table, in row
// order. Rows without a name are skipped.
func (o *Orchestrator) Students() ([]domain.Student, error) {
	wb, err := o.openStore(o.cfg.Stores.Main)
	if err != nil {
		return nil, err
	}
	defer wb.Close()
	t, err := wb.First()
	if err != nil {
		return nil, err
	}

	rows, cols, err := t.Dimensions()
	if err != nil {
		return nil, err
	}
	headers, err := t.Row(domain.MainHeaderRow, cols)
	if err != nil {
		return nil, err
	}
	name := sheet.IndexOf(headers, domain.MainStudentHeader)
	if name < 0 {
		return nil, fmt.Errorf("%s: %q: %w", t.Name(), domain.MainStudentHeader, sheet.ErrNotFound)
	}
	teacher := sheet.IndexOf(headers, domain.TeacherHeader)
	email := sheet.IndexOf(headers, domain.TeacherEmailHeader)

	var out []domain.Student
	for r := domain.MainHeaderRow + 1; r <= rows; r++ {
		row, err := t.Row(r, cols)
		if err != nil {
			return nil, err
		}
		if row[name].Text == "" {
			continue
		}
		s := domain.Student{Name: row[name].Text}
		if teacher >= 0 {
			s.Teacher = row[teacher].Text
		}
		if email >= 0 {
			s.TeacherEmail = row[email].Text
		}
		out = append(out, s)
	}
	return out, nil
}
