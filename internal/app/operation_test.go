package app

import (
	"errors"
	"testing"
	"time"
)

func TestNewOperation(t *testing.T) {
	now := time.Date(2025, 3, 1, 9, 30, 15, 250_000_000, time.UTC)
	op := NewOperation("CreateFile", now)

	if op.Name != "CreateFile" {
		t.Errorf("Name = %q, want %q", op.Name, "CreateFile")
	}
	if op.ID != "20250301T093015.250Z" {
		t.Errorf("ID = %q, want %q", op.ID, "20250301T093015.250Z")
	}
	if op.Status != "success" {
		t.Errorf("Status = %q, want %q", op.Status, "success")
	}
}

func TestOperation_Record(t *testing.T) {
	op := NewOperation("Grant", time.Now())

	if err := op.Record(nil); err != nil {
		t.Fatalf("Record(nil) = %v", err)
	}
	if op.Failed() {
		t.Error("Failed() = true after a successful step")
	}

	boom := errors.New("boom")
	if err := op.Record(boom); err != boom {
		t.Errorf("Record(err) = %v, want the same error", err)
	}
	if !op.Failed() {
		t.Error("Failed() = false after a failed step")
	}

	op.Record(nil)
	if !op.Failed() {
		t.Error("a later success cleared the failure")
	}
}
