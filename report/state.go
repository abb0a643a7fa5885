package report

import "fmt"

// State is the stage a run is in. A run walks the states in declaration
// order and returns to Idle when it finishes or aborts.
type State int

const (
	Idle State = iota
	ResolvingStudent
	EnsuringArtifacts
	MergingRecords
	Sorting
	ResolvingPeriods
	MaterializingReportTable
	LookupMerging
	Replicating
	PatchingAnnouncement
)

var stateNames = [...]string{
	Idle:                     "idle",
	ResolvingStudent:         "resolving_student",
	EnsuringArtifacts:        "ensuring_artifacts",
	MergingRecords:           "merging_records",
	Sorting:                  "sorting",
	ResolvingPeriods:         "resolving_periods",
	MaterializingReportTable: "materializing_report_table",
	LookupMerging:            "lookup_merging",
	Replicating:              "replicating",
	PatchingAnnouncement:     "patching_announcement",
}

func (s State) String() string {
	if s >= 0 && int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("state(%d)", int(s))
}
