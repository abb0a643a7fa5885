// Package event defines the inputs that start a report run.
package event

import "fmt"

// Event is either an EditEvent or a SubmitEvent.
type Event interface {
	// Store is the file-store id of the workbook the event came from.
	Store() string
	isEvent()
}

// EditEvent is a single-cell edit, such as ticking a checkbox.
type EditEvent struct {
	StoreID string
	Table   string // empty means the first table
	Row     int
	Column  int
	Value   string
}

func (e EditEvent) Store() string { return e.StoreID }
func (EditEvent) isEvent()        {}

func (e EditEvent) String() string {
	return fmt.Sprintf("edit %s!%s R%dC%d=%q", e.StoreID, e.Table, e.Row, e.Column, e.Value)
}

// SubmitEvent is a form submission; Values holds the answers in column order.
type SubmitEvent struct {
	StoreID string
	Values  []string
}

func (e SubmitEvent) Store() string { return e.StoreID }
func (SubmitEvent) isEvent()        {}

func (e SubmitEvent) String() string {
	return fmt.Sprintf("submit %s %q", e.StoreID, e.Values)
}

// Value returns the i-th answer, or "" when the form had fewer.
func (e SubmitEvent) Value(i int) string {
	if i < 0 || i >= len(e.Values) {
		return ""
	}
	return e.Values[i]
}
