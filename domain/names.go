package domain

// Table names shared by the stores and the data artifact.
const (
	IndividualTable = "個別指導記録用"
	GroupTable      = "集団授業記録用"
	ResponsesTable  = "フォームの回答 1"
)

// Header names the pipeline looks up.
const (
	IndividualKeyHeader = "生徒名（漢字）"
	GroupKeyHeader      = "LINEの名前"
	MainStudentHeader   = "生徒様のお名前"
	TeacherHeader       = "担当教師"
	TeacherEmailHeader  = "Gmail"
)

// Trigger columns and header rows of the two edit sources.
const (
	MainTriggerColumn  = 8
	MainHeaderRow      = 1
	GroupTriggerColumn = 16
	GroupHeaderRow     = 2
)

// SourceHeaderRow is the row of the lesson stores copied as the header of an
// empty record table.
const SourceHeaderRow = 2

// AnnouncementToken is replaced with the shared report URL.
const AnnouncementToken = "[monthlysheet]"
