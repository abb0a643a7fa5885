// Package period derives the year-month reporting cycles a run works on and
// the table names that belong to them.
package period

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// ErrMalformed is returned when a table name does not follow the report
// naming convention.
var ErrMalformed = errors.New("malformed period name")

// RolloverDay is the first day of the month on which the next month is also
// processed.
const RolloverDay = 25

// Period identifies one reporting cycle.
type Period struct {
	Year  int
	Month time.Month
}

// Of returns the period containing t in t's location.
func Of(t time.Time) Period {
	return Period{Year: t.Year(), Month: t.Month()}
}

// Next returns the following calendar month.
func (p Period) Next() Period {
	if p.Month == time.December {
		return Period{Year: p.Year + 1, Month: time.January}
	}
	return Period{Year: p.Year, Month: p.Month + 1}
}

// Start is midnight of the first day of the period in loc.
func (p Period) Start(loc *time.Location) time.Time {
	return time.Date(p.Year, p.Month, 1, 0, 0, 0, 0, loc)
}

// ProcessingTableName is the period table name, e.g. "処理用（2025/03）".
func (p Period) ProcessingTableName() string {
	return fmt.Sprintf("処理用（%04d/%02d）", p.Year, int(p.Month))
}

// ReportTableName is the monthly report table name, e.g. "2025年03月度".
func (p Period) ReportTableName() string {
	return fmt.Sprintf("%04d年%02d月度", p.Year, int(p.Month))
}

// MonthText is the zero-padded month, e.g. "03".
func (p Period) MonthText() string {
	return fmt.Sprintf("%02d", int(p.Month))
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}

var reportName = regexp.MustCompile(`^(\d{4})年(\d{1,2})月度$`)

// Parse reads a report table name back into its period.
func Parse(name string) (Period, error) {
	m := reportName.FindStringSubmatch(name)
	if m == nil {
		return Period{}, fmt.Errorf("%q: %w", name, ErrMalformed)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("%q: month %d: %w", name, month, ErrMalformed)
	}
	return Period{Year: year, Month: time.Month(month)}, nil
}

// Resolve returns the periods one run processes. Without rollover this is the
// period of the day before now. With rollover it is the period of now, plus
// the next period from the RolloverDay onward.
func Resolve(now time.Time, rollover bool) []Period {
	if !rollover {
		return []Period{Of(now.AddDate(0, 0, -1))}
	}
	current := Of(now)
	if now.Day() >= RolloverDay {
		return []Period{current, current.Next()}
	}
	return []Period{current}
}
