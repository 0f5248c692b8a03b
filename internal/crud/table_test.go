package crud

import (
	"strings"
	"testing"
	"time"
)

func TestFormatCell(t *testing.T) {
	ts := time.Date(2026, time.March, 5, 14, 30, 9, 0, time.UTC)

	tests := []struct {
		name  string
		value any
		kind  ColumnKind
		want  string
	}{
		{"nil", nil, ColumnText, ""},
		{"text", "hello", ColumnText, "hello"},
		{"bool true", true, ColumnBoolean, "✓"},
		{"bool false", false, ColumnBoolean, "❌"},
		{"date", ts, ColumnDate, "3/5/2026, 2:30:09 PM"},
		{"date string", "2026-03-05T14:30:09Z", ColumnDate, "3/5/2026, 2:30:09 PM"},
		{"int", 1234567, ColumnNumber, "1,234,567"},
		{"small int", 42, ColumnNumber, "42"},
		{"negative", -1234, ColumnNumber, "-1,234"},
		{"float", 1234.5, ColumnNumber, "1,234.5"},
		{"numeric string", "98765", ColumnNumber, "98,765"},
		{"array", []any{"a", 1}, ColumnArray, `"a", 1`},
		{"string slice", []string{"x", "y"}, ColumnArray, `"x", "y"`},
		{"array fallthrough", "plain", ColumnArray, "plain"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatCell(tt.value, tt.kind); got != tt.want {
				t.Errorf("FormatCell(%#v, %s) = %q, want %q", tt.value, tt.kind, got, tt.want)
			}
		})
	}
}

func TestFormatCell_ObjectPrettyPrinted(t *testing.T) {
	got := FormatCell(map[string]any{"k": "v"}, ColumnObject)
	if !strings.Contains(got, "\"k\": \"v\"") {
		t.Errorf("FormatCell(object) = %q, want pretty-printed JSON", got)
	}

	// Structured values pretty-print even under a text kind.
	got = FormatCell(map[string]any{"k": "v"}, ColumnText)
	if !strings.Contains(got, "\"k\": \"v\"") {
		t.Errorf("FormatCell(object as text) = %q, want pretty-printed JSON", got)
	}
}

func TestTable_DeleteGatedOnConfirmation(t *testing.T) {
	var deleted []Record
	table := NewTable(nil, NewPagination(10), nil, func(rec Record) {
		deleted = append(deleted, rec)
	})

	rec := Record{"id": "n-1"}
	table.RequestDelete(rec)
	if len(deleted) != 0 {
		t.Fatal("delete ran before confirmation")
	}

	pending, ok := table.DeletePending()
	if !ok || pending.ID() != "n-1" {
		t.Fatalf("DeletePending() = %v, %v; want n-1 pending", pending, ok)
	}

	table.ConfirmDelete()
	if len(deleted) != 1 || deleted[0].ID() != "n-1" {
		t.Fatalf("deleted = %v, want exactly [n-1]", deleted)
	}
}

func TestTable_CancelDelete(t *testing.T) {
	invoked := false
	table := NewTable(nil, NewPagination(10), nil, func(Record) { invoked = true })

	table.RequestDelete(Record{"id": "n-1"})
	table.CancelDelete()
	table.ConfirmDelete() // nothing pending anymore

	if invoked {
		t.Error("delete ran despite cancellation")
	}
}

func TestTable_RequestEditNotifiesCaller(t *testing.T) {
	var got Record
	table := NewTable(nil, NewPagination(10), func(rec Record) { got = rec }, nil)

	table.RequestEdit(Record{"id": "u-1"})
	if got.ID() != "u-1" {
		t.Errorf("edit callback got %v, want u-1", got)
	}
}

func TestPluralize(t *testing.T) {
	tests := []struct{ in, want string }{
		{"Company", "Companies"},
		{"User", "Users"},
		{"Note", "Notes"},
	}
	for _, tt := range tests {
		if got := Pluralize(tt.in); got != tt.want {
			t.Errorf("Pluralize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
