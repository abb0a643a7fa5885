package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/ManakiYoshihara/GAS-con-test/domain"
	"github.com/ManakiYoshihara/GAS-con-test/period"
	"github.com/ManakiYoshihara/GAS-con-test/report"
)

var (
	reportPeriods []string
	reportTeacher string
	reportEmail   string
)

// reportCmd compiles reports for the named students, or for every student of
// the main store when no names are given.
var reportCmd = &cobra.Command{
	Use:   "report [student...]",
	Short: "Compile monthly reports",
	Example: `  gascon report                     # every student in the main store
  gascon report 山田太郎 --period 2026年02月度`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().StringSliceVar(&reportPeriods, "period", nil, "Report table name to compile, such as 2026年02月度 (repeatable)")
	reportCmd.Flags().StringVar(&reportTeacher, "teacher", "", "Teacher name for the named students")
	reportCmd.Flags().StringVar(&reportEmail, "email", "", "Teacher email granted edit access to the data workbook")
}

func runReport(cmd *cobra.Command, args []string) error {
	periods := make([]period.Period, 0, len(reportPeriods))
	for _, name := range reportPeriods {
		p, err := period.Parse(name)
		if err != nil {
			return err
		}
		periods = append(periods, p)
	}
	var opts []report.Option
	if len(periods) > 0 {
		opts = append(opts, report.WithPeriods(periods...))
	}

	o, closeDrive, err := openOrchestrator(opts...)
	if err != nil {
		return err
	}
	defer closeDrive()

	students := make([]domain.Student, 0, len(args))
	for _, name := range args {
		students = append(students, domain.Student{Name: name, Teacher: reportTeacher, TeacherEmail: reportEmail})
	}
	if len(students) == 0 {
		if students, err = o.Students(); err != nil {
			return err
		}
	}
	logger.Info("compiling reports", zap.Int("students", len(students)), zap.Stringers("periods", periods))

	ctx, cancel := commandContext()
	defer cancel()
	return o.RunAll(ctx, students)
}
