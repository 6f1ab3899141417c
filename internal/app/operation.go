package app

import "time"

// Operation describes one CLI invocation. Its ID tags every log line the
// invocation writes; Status is reported when the app closes.
type Operation struct {
	ID     string
	Name   string
	Actor  string
	Status string // "success" or "error"
}

// NewOperation creates an operation named name started at now.
func NewOperation(name string, now time.Time) *Operation {
	return &Operation{
		ID:     now.UTC().Format("20060102T150405.000Z"),
		Name:   name,
		Status: "success",
	}
}

// Record marks the operation failed when err is non-nil and returns err.
func (op *Operation) Record(err error) error {
	if err != nil {
		op.Status = "error"
	}
	return err
}

// Failed reports whether any recorded step failed.
func (op *Operation) Failed() bool {
	return op.Status == "error"
}
