// Package fixture writes a complete sample environment into a drive: lesson
// stores, templates, student folders and announcement documents.
package fixture

import (
	"fmt"
	"time"

	"github.com/ManakiYoshihara/GAS-con-test/config"
	"github.com/ManakiYoshihara/GAS-con-test/domain"
	"github.com/ManakiYoshihara/GAS-con-test/drive"
	"github.com/ManakiYoshihara/GAS-con-test/excel"
	"github.com/ManakiYoshihara/GAS-con-test/merge"
	"github.com/ManakiYoshihara/GAS-con-test/replica"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
	"github.com/ManakiYoshihara/GAS-con-test/template"
)

// Folder and file names of the sample environment.
const (
	TargetFolder   = "月間報告"
	TemplateFolder = "テンプレート"

	MainFile           = "メインシート"
	IndividualFile     = "個別指導記録"
	GroupFile          = "集団授業記録"
	ReportTemplateFile = "月間報告テンプレート"
	SharedTemplateFile = "月間報告（共有用テンプレート）"

	MainTable  = "生徒一覧"
	GroupTable = "参加記録"
)

// Options size the sample environment.
type Options struct {
	Students int
	Lessons  int       // per student and store
	Now      time.Time // lessons are dated in this month
	Variant  *config.Config
	// Students without a folder exercise the target-folder fallback.
	Unfoldered int
}

// Env is a seeded environment.
type Env struct {
	Config   *config.Config
	Drive    *drive.Store
	Students []domain.Student
	Contents []string
	Folders  map[string]string // student name → folder id
}

var contents = []string{"英文法の復習", "二次関数", "化学反応式", "長文読解", "確率"}

// Seed fills the drive at root and returns the config that points at it. The
// returned drive must be closed by the caller.
func Seed(root string, opts Options) (*Env, error) {
	if opts.Students <= 0 {
		opts.Students = 3
	}
	if opts.Lessons <= 0 {
		opts.Lessons = 4
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	cfg := opts.Variant
	if cfg == nil {
		cfg = config.Default()
	}
	cfg.Drive.Root = root

	d, err := drive.Open(root, drive.WithBaseURL(cfg.Drive.BaseURL))
	if err != nil {
		return nil, err
	}
	env := &Env{
		Config:   cfg,
		Drive:    d,
		Students: domain.GenerateStudents(opts.Students),
		Contents: contents,
		Folders:  make(map[string]string),
	}
	if err := env.seed(opts); err != nil {
		d.Close()
		return nil, err
	}
	return env, nil
}

func (e *Env) seed(opts Options) error {
	target, err := e.Drive.CreateFolder(TargetFolder, "")
	if err != nil {
		return err
	}
	templates, err := e.Drive.CreateFolder(TemplateFolder, "")
	if err != nil {
		return err
	}
	e.Config.Stores.TargetFolder = target.ID

	for i, s := range e.Students {
		if i >= len(e.Students)-opts.Unfoldered {
			break
		}
		folder, err := e.Drive.CreateFolder(s.Name+"さん", target.ID)
		if err != nil {
			return err
		}
		e.Folders[s.Name] = folder.ID
		if err := e.writeAnnouncement(s, folder.ID); err != nil {
			return err
		}
	}

	month := time.Date(opts.Now.Year(), opts.Now.Month(), 1, 0, 0, 0, 0, opts.Now.Location())
	steps := []struct {
		name  string
		id    *string
		write func(*sheet.Workbook) error
	}{
		{MainFile, &e.Config.Stores.Main, e.writeMain},
		{IndividualFile, &e.Config.Stores.Individual, func(wb *sheet.Workbook) error {
			return e.writeIndividual(wb, month, opts.Lessons)
		}},
		{GroupFile, &e.Config.Stores.Group, func(wb *sheet.Workbook) error {
			return e.writeGroup(wb, month, opts.Lessons)
		}},
		{ReportTemplateFile, &e.Config.Stores.ReportTemplate, e.writeReportTemplate},
		{SharedTemplateFile, &e.Config.Stores.SharedTemplate, writeSharedTemplate},
	}
	for _, step := range steps {
		id, err := e.workbook(step.name, templates.ID, step.write)
		if err != nil {
			return fmt.Errorf("seed %s: %w", step.name, err)
		}
		*step.id = id
	}
	return nil
}

// workbook creates a drive file, lets write fill it and saves it.
func (e *Env) workbook(name, folder string, write func(*sheet.Workbook) error) (string, error) {
	entry, err := e.Drive.CreateFile(name, folder, drive.KindWorkbook)
	if err != nil {
		return "", err
	}
	path, err := e.Drive.Path(entry.ID)
	if err != nil {
		return "", err
	}
	wb := sheet.Create(path)
	defer wb.Close()

	if err := write(wb); err != nil {
		return "", err
	}
	if err := wb.DeleteTable("Sheet1"); err != nil {
		return "", err
	}
	if err := wb.Save(); err != nil {
		return "", err
	}
	return entry.ID, nil
}

var mainHeaders = []string{
	"ID", domain.MainStudentHeader, domain.TeacherHeader, domain.TeacherEmailHeader,
	"初月指導回数", "1コマ指導時間", "毎月指導回数", "月報作成",
}

func (e *Env) writeMain(wb *sheet.Workbook) error {
	t, err := wb.NewTable(MainTable)
	if err != nil {
		return err
	}
	rows := make([][]sheet.Cell, len(e.Students))
	for i, s := range e.Students {
		rows[i] = []sheet.Cell{
			sheet.Str(fmt.Sprintf("S%03d", i+1)), sheet.Str(s.Name), sheet.Str(s.Teacher),
			sheet.Str(fmt.Sprintf("teacher%d@example.com", i+1)),
			sheet.Num(4), sheet.Num(60), sheet.Num(4), sheet.Boolean(false),
		}
	}
	return writeTable(t, 1, nil, mainHeaders, rows, []float64{8, 18, 18, 26, 12, 12, 12, 10})
}

var individualHeaders = []string{
	"タイムスタンプ", domain.TeacherHeader, domain.IndividualKeyHeader, "教科", "日程", "授業時間", "内容", "解答送付",
}

func (e *Env) writeIndividual(wb *sheet.Workbook, month time.Time, n int) error {
	t, err := wb.NewTable(domain.ResponsesTable)
	if err != nil {
		return err
	}
	var rows [][]sheet.Cell
	for _, s := range e.Students {
		for _, l := range domain.GenerateLessons(s, month, e.Contents, n) {
			rows = append(rows, []sheet.Cell{
				sheet.Str(l.Date.Format("2006/01/02 15:04:05")), sheet.Str(l.Teacher), sheet.Str(l.Student),
				sheet.Str(l.Subject), sheet.Str(l.Date.Format("2006/01/02")), sheet.Num(float64(l.Minutes)),
				sheet.Str(l.Content), sheet.Boolean(l.Done),
			})
		}
	}
	title := []string{"個別指導 日報"}
	return writeTable(t, 2, title, individualHeaders, rows, []float64{20, 18, 18, 8, 12, 10, 24, 10})
}

var groupHeaders = []string{
	"日程", "教科", domain.GroupKeyHeader, domain.TeacherHeader, "内容", "授業時間", "出欠", "備考",
	"宿題", "次回予定", "教材", "単元", "理解度", "提出物", "連絡事項", "月報作成",
}

func (e *Env) writeGroup(wb *sheet.Workbook, month time.Time, n int) error {
	t, err := wb.NewTable(GroupTable)
	if err != nil {
		return err
	}
	var rows [][]sheet.Cell
	for _, s := range e.Students {
		for _, l := range domain.GenerateLessons(s, month, e.Contents, n) {
			row := make([]sheet.Cell, len(groupHeaders))
			row[0], row[1], row[2], row[3] = sheet.Str(l.Date.Format("2006/01/02")), sheet.Str(l.Subject), sheet.Str(l.Student), sheet.Str(l.Teacher)
			row[4], row[5], row[6] = sheet.Str(l.Content), sheet.Num(float64(l.Minutes)), sheet.Str("出席")
			row[15] = sheet.Boolean(false)
			rows = append(rows, row)
		}
	}
	title := []string{"集団授業 参加記録"}
	if err := writeTable(t, 2, title, groupHeaders, rows, nil); err != nil {
		return err
	}

	messages, err := wb.NewTable(merge.MessageTable)
	if err != nil {
		return err
	}
	var msgRows [][]sheet.Cell
	for _, m := range domain.GenerateMessages(e.Contents) {
		msgRows = append(msgRows, sheet.Strs(m.Content, m.Problem, m.Answer, m.Video))
	}
	headers := []string{merge.ContentHeader, merge.ProblemHeader, merge.AnswerHeader, merge.VideoHeader}
	return writeTable(messages, 1, nil, headers, msgRows, []float64{24, 40, 40, 36})
}

// ReportHeaders is row 8 of the report template. The lookup reads the flag
// (N) and content (O) columns and fills problem, answer and video (P-R).
var ReportHeaders = []string{
	"区分", "回数", "生徒名", domain.TeacherHeader, "学年", "形式", "教材", "単元", "備考",
	"日程", "開始時刻", "授業時間", "教科", "解答送付", "内容", "問題", "解答", "授業動画",
}

func (e *Env) writeReportTemplate(wb *sheet.Workbook) error {
	report, err := wb.NewTable(template.ReportTemplate)
	if err != nil {
		return err
	}
	head := [][]sheet.Cell{
		{sheet.Num(2025), sheet.Str("年"), sheet.Str("03"), sheet.Str("月度 月間報告")},
		{},
		{sheet.Str("生徒名"), {}, sheet.Str("様")},
	}
	if err := report.SetCells(1, 1, head); err != nil {
		return err
	}
	if err := report.SetFormats(1, 1, [][]sheet.Format{{
		{Bold: true, FontSize: 14}, {Bold: true, FontSize: 14}, {Bold: true, FontSize: 14}, {Bold: true, FontSize: 14},
	}}); err != nil {
		return err
	}
	if err := writeTable(report, 8, nil, ReportHeaders, nil, nil); err != nil {
		return err
	}

	processing, err := wb.NewTable(template.PeriodTemplate)
	if err != nil {
		return err
	}
	for ref, formula := range periodFormulas(e.Config.Variant) {
		row, col, err := excel.ParseCell(ref)
		if err != nil {
			return err
		}
		if err := processing.SetFormula(row, col, formula); err != nil {
			return err
		}
	}

	for _, name := range []string{domain.IndividualTable, domain.GroupTable} {
		if _, err := wb.NewTable(name); err != nil {
			return err
		}
	}
	return nil
}

// periodFormulas returns the formulas of the period template: one filter per
// rewritten column of the variant, each carrying the placeholder date.
func periodFormulas(v config.Variant) map[string]string {
	r, err := excel.ParseRange(v.PeriodFormulaRange)
	if err != nil {
		return nil
	}
	date := "DATE(2025, 3, 1)"
	if d, err := v.Placeholder(); err == nil {
		date = template.MonthStart(d)
	}
	out := make(map[string]string, len(v.PeriodFormulaColumns))
	sources := []struct{ table, dates string }{
		{domain.IndividualTable, "E"},
		{domain.GroupTable, "A"},
	}
	for i, off := range v.PeriodFormulaColumns {
		src := sources[i%len(sources)]
		out[excel.CellName(r.Row, r.Col+off)] = fmt.Sprintf(
			"FILTER('%[1]s'!A2:H, '%[1]s'!%[2]s2:%[2]s>=%[3]s, '%[1]s'!%[2]s2:%[2]s<EDATE(%[3]s, 1))",
			src.table, src.dates, date,
		)
	}
	return out
}

func writeSharedTemplate(wb *sheet.Workbook) error {
	t, err := wb.NewTable(replica.PlaceholderTable)
	if err != nil {
		return err
	}
	return t.SetCells(1, 1, [][]sheet.Cell{sheet.Strs("月間報告はこのファイルの先頭シートにあります")})
}

func (e *Env) writeAnnouncement(s domain.Student, folder string) error {
	entry, err := e.Drive.CreateFile(s.AnnouncementFileName(), folder, drive.KindDocument)
	if err != nil {
		return err
	}
	path, err := e.Drive.Path(entry.ID)
	if err != nil {
		return err
	}
	body := fmt.Sprintf("%s先生\n\n%sさんの今月の月間報告です。\n%s\n", s.Teacher, s.Name, domain.AnnouncementToken)
	return writeText(path, body)
}
