package merge

import (
	"fmt"

	"github.com/ManakiYoshihara/GAS-con-test/excel"
	"github.com/ManakiYoshihara/GAS-con-test/sheet"
)

// Message table headers.
const (
	MessageTable  = "メッセージ文"
	ContentHeader = "内容"
	ProblemHeader = "問題"
	AnswerHeader  = "解答"
	VideoHeader   = "授業動画"
)

// Message is the derived data for one content key.
type Message struct {
	Problem string
	Answer  string
	Video   string
}

// Lookup maps content keys to their message.
type Lookup map[string]Message

// BuildLookup reads message rows into a Lookup. Later rows replace earlier
// rows with the same key; rows with an empty key are skipped. Column
// arguments are 0-based.
func BuildLookup(rows [][]sheet.Cell, content, problem, answer, video int) Lookup {
	lookup := make(Lookup, len(rows))
	at := func(row []sheet.Cell, i int) string {
		if i < len(row) {
			return row[i].Text
		}
		return ""
	}
	for _, row := range rows {
		key := at(row, content)
		if key == "" {
			continue
		}
		lookup[key] = Message{Problem: at(row, problem), Answer: at(row, answer), Video: at(row, video)}
	}
	return lookup
}

// MergeLookup produces one [problem, answer, video] row per key. The problem
// is filled whenever the key is known; answer and video also need the
// matching flag to be set.
func MergeLookup(keys []string, flags []bool, lookup Lookup) [][]string {
	out := make([][]string, len(keys))
	for i, key := range keys {
		row := []string{"", "", ""}
		if msg, ok := lookup[key]; ok && key != "" {
			row[0] = msg.Problem
			if i < len(flags) && flags[i] {
				row[1], row[2] = msg.Answer, msg.Video
			}
		}
		out[i] = row
	}
	return out
}

// LookupColumns places the lookup on a report table.
type LookupColumns struct {
	Key      string // input key column, output goes to the three columns after it
	Flag     string
	FirstRow int
}

// ApplyLookup fills the three columns after the key column of report from
// the message table, for every row from FirstRow to the last data row. It
// returns the number of rows written.
func ApplyLookup(report, messages *sheet.Table, cols LookupColumns) (int, error) {
	data, err := messages.DataRange()
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		return 0, fmt.Errorf("%s: %q: %w", messages.Name(), ContentHeader, ErrHeaderNotFound)
	}
	idx := make([]int, 4)
	for i, name := range []string{ContentHeader, ProblemHeader, AnswerHeader, VideoHeader} {
		if idx[i] = sheet.IndexOf(data[0], name); idx[i] < 0 {
			return 0, fmt.Errorf("%s: %q: %w", messages.Name(), name, ErrHeaderNotFound)
		}
	}
	lookup := BuildLookup(data[1:], idx[0], idx[1], idx[2], idx[3])

	keyCol, flagCol := excel.ColumnNumber(cols.Key), excel.ColumnNumber(cols.Flag)
	if keyCol == 0 || flagCol == 0 {
		return 0, fmt.Errorf("lookup columns %q/%q: invalid column", cols.Key, cols.Flag)
	}
	last, err := report.LastRow()
	if err != nil {
		return 0, err
	}
	if last < cols.FirstRow {
		return 0, nil
	}

	keyCells, err := report.Cells(columnRange(keyCol, cols.FirstRow, last))
	if err != nil {
		return 0, err
	}
	flagCells, err := report.Cells(columnRange(flagCol, cols.FirstRow, last))
	if err != nil {
		return 0, err
	}
	keys := make([]string, len(keyCells))
	flags := make([]bool, len(flagCells))
	for i := range keyCells {
		keys[i] = keyCells[i][0].Text
		flags[i] = flagCells[i][0].IsTrue()
	}

	merged := MergeLookup(keys, flags, lookup)
	out := make([][]sheet.Cell, len(merged))
	for i, row := range merged {
		out[i] = sheet.Strs(row...)
	}
	if err := report.SetCells(cols.FirstRow, keyCol+1, out); err != nil {
		return 0, fmt.Errorf("%s: lookup output: %w", report.Name(), err)
	}
	return len(out), nil
}
