package report

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ManakiYoshihara/GAS-con-test/domain"
	"github.com/ManakiYoshihara/GAS-con-test/event"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
)

// CheckedValue is the value a ticked checkbox reports.
const CheckedValue = "TRUE"

// Handle runs the report for the student an event points at. Events that do
// not concern a report run are ignored with a debug line.
func (o *Orchestrator) Handle(ctx context.Context, ev event.Event) error {
	log := o.log.With(zap.String("store", ev.Store()))
	if err := o.enter(ctx, log, ResolvingStudent); err != nil {
		return err
	}
	defer func() { o.state = Idle }()

	var (
		s     domain.Student
		reset func() error
		err   error
	)
	switch e := ev.(type) {
	case event.EditEvent:
		s, reset, err = o.resolveEdit(log, e)
	case event.SubmitEvent:
		s, err = o.resolveSubmit(e)
	default:
		return fmt.Errorf("report: unsupported event %T", ev)
	}
	if IsNotFound(err) {
		log.Warn("event ignored", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	if s.Name == "" {
		log.Debug("event ignored: no student")
		return nil
	}

	if err := o.Run(ctx, s); err != nil {
		return err
	}
	if reset != nil {
		return reset()
	}
	return nil
}

// editSource describes a store whose edits start a run.
type editSource struct {
	column    int
	headerRow int
	header    string
	reset     bool
}

func (o *Orchestrator) editSources() map[string]editSource {
	return map[string]editSource{
		o.cfg.Stores.Main: {
			column: domain.MainTriggerColumn, headerRow: domain.MainHeaderRow,
			header: domain.MainStudentHeader, reset: true,
		},
		o.cfg.Stores.Group: {
			column: domain.GroupTriggerColumn, headerRow: domain.GroupHeaderRow,
			header: domain.GroupKeyHeader,
		},
	}
}

// resolveEdit reads the student from the edited row. The returned reset
// func unticks the checkbox once the run is done.
func (o *Orchestrator) resolveEdit(log *zap.Logger, e event.EditEvent) (domain.Student, func() error, error) {
	if e.Value != CheckedValue {
		return domain.Student{}, nil, nil
	}
	src, ok := o.editSources()[e.StoreID]
	if !ok || e.Column != src.column {
		log.Debug("edit ignored", zap.Int("column", e.Column))
		return domain.Student{}, nil, nil
	}

	wb, err := o.openStore(e.StoreID)
	if err != nil {
		return domain.Student{}, nil, err
	}
	defer wb.Close()
	t, err := editedTable(wb, e.Table)
	if err != nil {
		return domain.Student{}, nil, err
	}

	_, cols, err := t.Dimensions()
	if err != nil {
		return domain.Student{}, nil, err
	}
	headers, err := t.Row(src.headerRow, cols)
	if err != nil {
		return domain.Student{}, nil, err
	}
	row, err := t.Row(e.Row, cols)
	if err != nil {
		return domain.Student{}, nil, err
	}
	idx := sheet.IndexOf(headers, src.header)
	if idx < 0 {
		return domain.Student{}, nil, fmt.Errorf("%s: %q: %w", t.Name(), src.header, sheet.ErrNotFound)
	}

	s := domain.Student{Name: row[idx].Text}
	if i := sheet.IndexOf(headers, domain.TeacherHeader); i >= 0 {
		s.Teacher = row[i].Text
	}
	if i := sheet.IndexOf(headers, domain.TeacherEmailHeader); i >= 0 {
		s.TeacherEmail = row[i].Text
	}

	var reset func() error
	if src.reset {
		reset = func() error { return o.untick(e) }
	}
	return s, reset, nil
}

func editedTable(wb *sheet.Workbook, name string) (*sheet.Table, error) {
	if name == "" {
		return wb.First()
	}
	return wb.Table(name)
}

// untick writes FALSE back into the edited cell.
func (o *Orchestrator) untick(e event.EditEvent) error {
	wb, err := o.openStore(e.StoreID)
	if err != nil {
		return err
	}
	defer wb.Close()
	t, err := editedTable(wb, e.Table)
	if err != nil {
		return err
	}
	if err := t.SetCell(e.Row, e.Column, sheet.Boolean(false)); err != nil {
		return err
	}
	return o.save(e.StoreID, wb)
}

// resolveSubmit takes the student from the third answer. The submitting
// store must hold the form responses table.
func (o *Orchestrator) resolveSubmit(e event.SubmitEvent) (domain.Student, error) {
	wb, err := o.openStore(e.StoreID)
	if err != nil {
		return domain.Student{}, err
	}
	defer wb.Close()
	if _, err := wb.Table(domain.ResponsesTable); err != nil {
		return domain.Student{}, err
	}
	return domain.Student{Name: e.Value(2)}, nil
}
