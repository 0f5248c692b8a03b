package crud

// table.go implements the read side: a page of records rendered as
// rows/columns per a declarative column spec list, with per-row edit/delete
// intents. Deletes are routed through the table's own confirmation gate.

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Table renders one page of records. It holds no fetch logic: the
// orchestrator replaces its rows and the shared pagination state whenever a
// page resolves.
type Table struct {
	columns []ColumnSpec
	caption string
	rows    []Record
	pager   *Pagination

	onEdit     func(Record)
	deleteGate *Gate[Record]
}

// NewTable builds a table over the given column specs. onEdit is notified of
// edit intents without any internal state change; onDelete runs only after
// the table's confirmation gate confirms.
func NewTable(columns []ColumnSpec, pager *Pagination, onEdit, onDelete func(Record)) *Table {
	return &Table{
		columns:    columns,
		pager:      pager,
		onEdit:     onEdit,
		deleteGate: NewGate(onDelete),
	}
}

// Columns returns the declared column specs in order.
func (t *Table) Columns() []ColumnSpec { return t.columns }

// Rows returns the currently displayed page of records.
func (t *Table) Rows() []Record { return t.rows }

// SetRows replaces the displayed page.
func (t *Table) SetRows(rows []Record) { t.rows = rows }

// Caption returns the table caption.
func (t *Table) Caption() string { return t.caption }

// SetCaption replaces the table caption.
func (t *Table) SetCaption(caption string) { t.caption = caption }

// Pagination exposes the pagination state for display.
func (t *Table) Pagination() *Pagination { return t.pager }

// RequestEdit notifies the edit callback. The table itself keeps no edit
// state.
func (t *Table) RequestEdit(rec Record) {
	if t.onEdit != nil {
		t.onEdit(rec)
	}
}

// RequestDelete opens the table's confirmation gate with rec pending.
func (t *Table) RequestDelete(rec Record) { t.deleteGate.Request(rec) }

// ConfirmDelete confirms the pending delete, invoking the delete callback.
func (t *Table) ConfirmDelete() { t.deleteGate.Confirm() }

// CancelDelete abandons the pending delete.
func (t *Table) CancelDelete() { t.deleteGate.Cancel() }

// DeletePending returns the record awaiting delete confirmation, if any.
func (t *Table) DeletePending() (Record, bool) { return t.deleteGate.Pending() }

// Cell formats the value of one column for a given record.
func (t *Table) Cell(rec Record, col ColumnSpec) string {
	return FormatCell(rec[col.Key], col.Kind)
}

// FormatCell renders a raw value for display according to its declared
// column kind. Unrecognized structured values fall back to pretty-printed
// JSON regardless of kind.
func FormatCell(value any, kind ColumnKind) string {
	if value == nil {
		return ""
	}

	switch kind {
	case ColumnDate:
		if ts, ok := asTime(value); ok {
			return ts.Format("1/2/2006, 3:04:05 PM")
		}
	case ColumnNumber:
		if s, ok := formatNumber(value); ok {
			return s
		}
	case ColumnBoolean:
		if b, ok := value.(bool); ok {
			if b {
				return "✓"
			}
			return "❌"
		}
	case ColumnArray:
		if items, ok := asSlice(value); ok {
			parts := make([]string, len(items))
			for i, item := range items {
				b, err := json.Marshal(item)
				if err != nil {
					parts[i] = fmt.Sprint(item)
					continue
				}
				parts[i] = string(b)
			}
			return strings.Join(parts, ", ")
		}
	}

	switch value.(type) {
	case map[string]any, []any:
		b, err := json.MarshalIndent(value, "", "  ")
		if err == nil {
			return string(b)
		}
	}

	return fmt.Sprint(value)
}

// asTime coerces time values and RFC 3339 / date-only strings.
func asTime(value any) (time.Time, bool) {
	switch v := value.(type) {
	case time.Time:
		return v, true
	case *time.Time:
		if v != nil {
			return *v, true
		}
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
			if ts, err := time.Parse(layout, v); err == nil {
				return ts, true
			}
		}
	}
	return time.Time{}, false
}

// formatNumber renders numeric values with thousands separators.
func formatNumber(value any) (string, bool) {
	switch v := value.(type) {
	case int:
		return groupInt(strconv.FormatInt(int64(v), 10)), true
	case int32:
		return groupInt(strconv.FormatInt(int64(v), 10)), true
	case int64:
		return groupInt(strconv.FormatInt(v, 10)), true
	case float32:
		return groupFloat(strconv.FormatFloat(float64(v), 'f', -1, 32)), true
	case float64:
		return groupFloat(strconv.FormatFloat(v, 'f', -1, 64)), true
	case json.Number:
		return groupFloat(v.String()), true
	case string:
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return groupFloat(v), true
		}
	}
	return "", false
}

func groupFloat(s string) string {
	intPart, frac, found := strings.Cut(s, ".")
	out := groupInt(intPart)
	if found {
		out += "." + frac
	}
	return out
}

// groupInt inserts commas into a plain decimal integer string.
func groupInt(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if len(s) <= 3 {
		if neg {
			return "-" + s
		}
		return s
	}

	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// asSlice widens common slice shapes into []any.
func asSlice(value any) ([]any, bool) {
	switch v := value.(type) {
	case []any:
		return v, true
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, true
	}
	return nil, false
}
