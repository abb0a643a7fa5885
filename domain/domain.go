package domain

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/bxcodec/faker/v4"
)

// Student identifies whose report is compiled. Teacher and TeacherEmail are
// empty when the triggering event did not carry them.
type Student struct {
	Name         string
	Teacher      string
	TeacherEmail string
}

func (s Student) String() string { return s.Name }

// File names derived from the student name.
func (s Student) DataFileName() string   { return s.Name + "さん_月間報告（データ格納用）" }
func (s Student) SharedFileName() string { return s.Name + "さん_月間報告（共有用）" }
func (s Student) AnnouncementFileName() string {
	return s.Name + "さん_先生共有用アナウンス文"
}

// Lesson is one record row in the individual or group lesson store.
type Lesson struct {
	Student string
	Teacher string
	Subject string
	Date    time.Time
	Minutes int
	Content string
	Done    bool
}

// Message is one row of the message lookup sheet.
type Message struct {
	Content string
	Problem string
	Answer  string
	Video   string
}

// Subjects are the subjects the report highlights.
var Subjects = []string{"英語", "数学", "理科", "国語", "社会"}

var lessonMinutes = []int{45, 60, 90}

// GenerateStudents creates n students with random names, each with a
// random teacher. No name equals or contains another, since student
// folders are found by substring.
func GenerateStudents(n int) []Student {
	students := make([]Student, n)
	names := make([]string, 0, n)
	for i := range n {
		name := uniqueName(names, i)
		names = append(names, name)
		students[i] = Student{Name: name, Teacher: faker.Name()}
	}
	return students
}

const nameAttempts = 50

func uniqueName(taken []string, i int) string {
	for range nameAttempts {
		name := faker.LastName() + faker.FirstName()
		if !overlaps(taken, name) {
			return name
		}
	}
	return fmt.Sprintf("生徒(%d)", i+1)
}

// overlaps reports whether name equals, contains or is contained in any of
// taken.
func overlaps(taken []string, name string) bool {
	for _, t := range taken {
		if strings.Contains(t, name) || strings.Contains(name, t) {
			return true
		}
	}
	return false
}

// GenerateLessons creates n lessons for s dated inside month's month,
// cycling through the given contents.
func GenerateLessons(s Student, month time.Time, contents []string, n int) []Lesson {
	days := monthDays(month)
	lessons := make([]Lesson, n)
	for i := range n {
		lessons[i] = Lesson{
			Student: s.Name,
			Teacher: s.Teacher,
			Subject: Subjects[rand.IntN(len(Subjects))],
			Date:    time.Date(month.Year(), month.Month(), 1+rand.IntN(days), 0, 0, 0, 0, month.Location()),
			Minutes: lessonMinutes[rand.IntN(len(lessonMinutes))],
			Content: contents[i%len(contents)],
			Done:    rand.IntN(2) == 0,
		}
	}
	return lessons
}

// GenerateMessages creates one message per content with fake answer text
// and a video link.
func GenerateMessages(contents []string) []Message {
	out := make([]Message, len(contents))
	for i, c := range contents {
		out[i] = Message{
			Content: c,
			Problem: faker.Sentence(),
			Answer:  faker.Sentence(),
			Video:   fmt.Sprintf("https://video.example.com/%s", faker.UUIDDigit()),
		}
	}
	return out
}

func monthDays(t time.Time) int {
	year, month, _ := t.Date()
	first := time.Date(year, month+1, 1, 0, 0, 0, 0, t.Location())
	return first.AddDate(0, 0, -1).Day()
}
