// Package report drives one monthly report run: it resolves the student,
// rebuilds the data artifact, merges and sorts the lesson records,
// materializes the report tables of the current periods, replicates them
// into the shared artifact and patches the announcement document.
package report

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ManakiYoshihara/GAS-con-test/config"
	"github.com/ManakiYoshihara/GAS-con-test/document"
	"github.com/ManakiYoshihara/GAS-con-test/domain"
	"github.com/ManakiYoshihara/GAS-con-test/drive"
	"github.com/ManakiYoshihara/GAS-con-test/logging"
	"github.com/ManakiYoshihara/GAS-con-test/merge"
	"github.com/ManakiYoshihara/GAS-con-test/period"
	"github.com/ManakiYoshihara/GAS-con-test/replica"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
	"github.com/ManakiYoshihara/GAS-con-test/sorter"
	"github.com/ManakiYoshihara/GAS-con-test/template"
)

// FirstBodyRow is the first report row filled by the aggregation formula.
const FirstBodyRow = 9

// Orchestrator runs reports against one drive with one configuration. It is
// not safe for concurrent use.
type Orchestrator struct {
	cfg          *config.Config
	drive        *drive.Store
	materializer *template.Materializer
	replicator   *replica.Replicator
	log          *zap.Logger
	now          func() time.Time
	periods      []period.Period
	state        State
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) { o.log = logging.OrNop(l) }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithPeriods pins the periods a run compiles instead of resolving them from
// the clock.
func WithPeriods(periods ...period.Period) Option {
	return func(o *Orchestrator) { o.periods = periods }
}

// New prepares an orchestrator. The drive stays owned by the caller.
func New(cfg *config.Config, d *drive.Store, opts ...Option) (*Orchestrator, error) {
	o := &Orchestrator{cfg: cfg, drive: d, log: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(o)
	}
	m, err := template.NewMaterializer(cfg.Variant, o.log)
	if err != nil {
		return nil, fmt.Errorf("report: %w", err)
	}
	o.materializer = m
	o.replicator = replica.New(replica.OptionsFor(cfg.Variant), o.log)
	return o, nil
}

// State returns the stage of the current or last run.
func (o *Orchestrator) State() State { return o.state }

func (o *Orchestrator) enter(ctx context.Context, log *zap.Logger, s State) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	log.Debug("state", zap.Stringer("from", o.state), zap.Stringer("to", s))
	o.state = s
	return nil
}

// RunAll compiles the report of every student. A failing student does not
// stop the others; all errors are returned joined.
func (o *Orchestrator) RunAll(ctx context.Context, students []domain.Student) error {
	var errs []error
	for _, s := range students {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := o.Run(ctx, s); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Run compiles the report of one student. A missing table, header, folder
// or template aborts the run with a warning and a nil error.
func (o *Orchestrator) Run(ctx context.Context, s domain.Student) error {
	log := o.log.With(zap.String("run", uuid.NewString()), zap.String("student", s.Name))
	start := o.now()

	err := o.run(ctx, log, s)
	defer func() { o.state = Idle }()
	switch {
	case err == nil:
		log.Info("report compiled", zap.Duration("took", o.now().Sub(start)))
		return nil
	case IsNotFound(err):
		log.Warn("run aborted", zap.Stringer("state", o.state), zap.Error(err))
		return nil
	default:
		return fmt.Errorf("report %s: %w", s.Name, err)
	}
}

// artifacts are the per-student files a run works on.
type artifacts struct {
	target   drive.Entry
	folder   drive.Entry
	data     drive.Entry
	shared   drive.Entry
	dataWB   *sheet.Workbook
	sharedWB *sheet.Workbook
}

func (a *artifacts) close() {
	for _, wb := range []*sheet.Workbook{a.dataWB, a.sharedWB} {
		if wb != nil {
			_ = wb.Close()
		}
	}
}

func (o *Orchestrator) run(ctx context.Context, log *zap.Logger, s domain.Student) error {
	if err := o.enter(ctx, log, EnsuringArtifacts); err != nil {
		return err
	}
	a, err := o.ensureArtifacts(s)
	if err != nil {
		return err
	}
	defer a.close()

	if err := o.enter(ctx, log, MergingRecords); err != nil {
		return err
	}
	group, err := o.mergeRecords(log, a.dataWB, s)
	if err != nil {
		return err
	}

	if err := o.enter(ctx, log, Sorting); err != nil {
		return err
	}
	if _, err := sorter.Sort(group, sorter.GroupKeys...); err != nil {
		return fmt.Errorf("sort %s: %w", domain.GroupTable, err)
	}

	if err := o.enter(ctx, log, ResolvingPeriods); err != nil {
		return err
	}
	now := o.now()
	periods := o.periods
	if len(periods) == 0 {
		periods = period.Resolve(now, o.cfg.Variant.Rollover)
	}
	log.Debug("periods resolved", zap.Stringers("periods", periods))

	templates, err := o.openStore(o.cfg.Stores.ReportTemplate)
	if err != nil {
		return err
	}
	defer templates.Close()

	for _, p := range periods {
		if err := o.compilePeriod(ctx, log, a, templates, p, now, s); err != nil {
			return fmt.Errorf("%s: %w", p.ReportTableName(), err)
		}
	}
	if err := o.drive.SetSharing(a.shared.ID, drive.SharingAnyoneViewer); err != nil {
		return err
	}

	if err := o.enter(ctx, log, PatchingAnnouncement); err != nil {
		return err
	}
	return o.patchAnnouncement(log, a, s)
}

func (o *Orchestrator) openStore(id string) (*sheet.Workbook, error) {
	path, err := o.drive.Path(id)
	if err != nil {
		return nil, err
	}
	return sheet.Open(path)
}

// ensureArtifacts locates the student folder, rebuilds the data artifact
// and reuses or creates the shared artifact.
func (o *Orchestrator) ensureArtifacts(s domain.Student) (*artifacts, error) {
	target, err := o.drive.Folder(o.cfg.Stores.TargetFolder)
	if err != nil {
		return nil, err
	}
	folder, err := o.drive.FindFolder(target.ID, s.Name)
	switch {
	case errors.Is(err, drive.ErrNotFound):
		folder = target
	case err != nil:
		return nil, err
	}

	a := &artifacts{target: target, folder: folder}
	if a.data, err = o.recreate(o.cfg.Stores.ReportTemplate, s.DataFileName(), folder.ID); err != nil {
		return nil, err
	}
	if a.shared, err = o.latestOrCopy(o.cfg.Stores.SharedTemplate, s.SharedFileName(), folder.ID); err != nil {
		return nil, err
	}
	if s.TeacherEmail != "" {
		if err := o.drive.AddEditor(a.data.ID, s.TeacherEmail); err != nil {
			return nil, err
		}
	}

	if a.dataWB, err = o.openStore(a.data.ID); err != nil {
		return nil, err
	}
	if a.sharedWB, err = o.openStore(a.shared.ID); err != nil {
		a.close()
		return nil, err
	}
	return a, nil
}

// recreate trashes every live file called name in folder and copies the
// template in its place.
func (o *Orchestrator) recreate(templateID, name, folder string) (drive.Entry, error) {
	existing, err := o.drive.FilesByName(folder, name)
	if err != nil {
		return drive.Entry{}, err
	}
	for _, f := range existing {
		if err := o.drive.SetTrashed(f.ID, true); err != nil {
			return drive.Entry{}, err
		}
	}
	return o.drive.CopyFile(templateID, name, folder)
}

// latestOrCopy returns the most recently updated file called name in folder,
// or a fresh copy of the template when there is none.
func (o *Orchestrator) latestOrCopy(templateID, name, folder string) (drive.Entry, error) {
	existing, err := o.drive.FilesByName(folder, name)
	if err != nil {
		return drive.Entry{}, err
	}
	if len(existing) > 0 {
		return existing[0], nil
	}
	return o.drive.CopyFile(templateID, name, folder)
}

// mergeRecords copies the student's rows from both lesson stores into the
// record tables of the data artifact and returns the group table.
func (o *Orchestrator) mergeRecords(log *zap.Logger, data *sheet.Workbook, s domain.Student) (*sheet.Table, error) {
	sources := []struct {
		store, table, key string
	}{
		{o.cfg.Stores.Individual, domain.IndividualTable, domain.IndividualKeyHeader},
		{o.cfg.Stores.Group, domain.GroupTable, domain.GroupKeyHeader},
	}
	var group *sheet.Table
	for _, src := range sources {
		dst, err := data.Table(src.table)
		if err != nil {
			return nil, err
		}
		n, err := o.mergeFrom(src.store, dst, src.key, s.Name)
		switch {
		case errors.Is(err, merge.ErrHeaderNotFound):
			log.Warn("records skipped", zap.String("table", src.table), zap.Error(err))
		case err != nil:
			return nil, err
		default:
			log.Debug("records merged", zap.String("table", src.table), zap.Int("rows", n))
		}
		group = dst
	}
	return group, nil
}

func (o *Orchestrator) mergeFrom(storeID string, dst *sheet.Table, key, name string) (int, error) {
	wb, err := o.openStore(storeID)
	if err != nil {
		return 0, err
	}
	defer wb.Close()

	src, err := wb.First()
	if err != nil {
		return 0, err
	}
	if _, err := merge.EnsureHeader(dst, src, domain.SourceHeaderRow); err != nil {
		return 0, err
	}
	return merge.AppendMatching(src, dst, key, name)
}

// compilePeriod builds the report table of one period and copies it into
// the shared artifact.
func (o *Orchestrator) compilePeriod(ctx context.Context, log *zap.Logger, a *artifacts, templates *sheet.Workbook, p period.Period, now time.Time, s domain.Student) error {
	log = log.With(zap.Stringer("period", p))
	if err := o.enter(ctx, log, MaterializingReportTable); err != nil {
		return err
	}
	if _, err := o.materializer.EnsurePeriodTable(a.dataWB, p, now); err != nil {
		if !errors.Is(err, template.ErrTemplateMissing) {
			return err
		}
		log.Warn("period table skipped", zap.Error(err))
	}
	report, err := o.materializer.EnsureReportTable(a.dataWB, templates, p, s.Name)
	if err != nil {
		return err
	}

	if o.cfg.Variant.MessageLookup {
		if err := o.enter(ctx, log, LookupMerging); err != nil {
			return err
		}
		if err := o.lookupMerge(log, report); err != nil {
			return err
		}
	}
	if err := o.save(a.data.ID, a.dataWB); err != nil {
		return err
	}

	if err := o.enter(ctx, log, Replicating); err != nil {
		return err
	}
	if _, err := o.replicator.Replicate(report, a.sharedWB, p.ReportTableName()); err != nil {
		return err
	}
	return o.save(a.shared.ID, a.sharedWB)
}

func (o *Orchestrator) lookupMerge(log *zap.Logger, report *sheet.Table) error {
	wb, err := o.openStore(o.cfg.Stores.Group)
	if err != nil {
		return err
	}
	defer wb.Close()

	messages, err := wb.Table(merge.MessageTable)
	if errors.Is(err, sheet.ErrNotFound) {
		log.Warn("lookup skipped", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	n, err := merge.ApplyLookup(report, messages, merge.LookupColumns{
		Key:      o.cfg.Variant.LookupKeyColumn,
		Flag:     o.cfg.Variant.FlagColumn,
		FirstRow: FirstBodyRow,
	})
	if errors.Is(err, merge.ErrHeaderNotFound) {
		log.Warn("lookup skipped", zap.Error(err))
		return nil
	}
	if err != nil {
		return err
	}
	log.Debug("lookup merged", zap.Int("rows", n))
	return nil
}

func (o *Orchestrator) save(id string, wb *sheet.Workbook) error {
	if err := wb.Save(); err != nil {
		return err
	}
	return o.drive.Touch(id)
}

// patchAnnouncement points the student's announcement document at the
// shared artifact. A missing folder or document is logged and skipped.
func (o *Orchestrator) patchAnnouncement(log *zap.Logger, a *artifacts, s domain.Student) error {
	url, err := o.drive.URL(a.shared.ID)
	if err != nil {
		return err
	}
	if a.folder.ID == a.target.ID {
		log.Warn("announcement skipped: no student folder")
		return nil
	}
	docs, err := o.drive.FilesByName(a.folder.ID, s.AnnouncementFileName())
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		log.Warn("announcement skipped: document missing", zap.String("name", s.AnnouncementFileName()))
		return nil
	}

	path, err := o.drive.Path(docs[0].ID)
	if err != nil {
		return err
	}
	doc, err := document.Open(path)
	if err != nil {
		return err
	}
	n, err := document.NewReplacer().Add(domain.AnnouncementToken, url).Apply(doc)
	if err != nil {
		return err
	}
	if err := doc.SaveAndClose(); err != nil {
		return err
	}
	if n > 0 {
		if err := o.drive.Touch(docs[0].ID); err != nil {
			return err
		}
	}
	log.Debug("announcement patched", zap.Int("replaced", n))
	return nil
}
