// Package crud provides a generic, schema-driven layer for listing, editing
// and deleting paginated collections of records. It carries no knowledge of
// any concrete entity: callers describe an entity with FieldSpec and
// ColumnSpec values and inject the data source, mutation operations and
// notification sink. The package has no HTTP or storage dependencies and can
// be driven by any frontend.
package crud

import (
	"fmt"
	"regexp"
)

// FieldKind identifies how an editable attribute is entered and validated.
type FieldKind string

const (
	FieldText    FieldKind = "text"
	FieldNumber  FieldKind = "number"
	FieldBoolean FieldKind = "boolean"
	FieldDate    FieldKind = "date"
	FieldArray   FieldKind = "array"
	FieldSelect  FieldKind = "select"
	FieldJSON    FieldKind = "json"
)

// ColumnKind identifies how a displayed attribute is formatted.
type ColumnKind string

const (
	ColumnText    ColumnKind = "text"
	ColumnBoolean ColumnKind = "boolean"
	ColumnDate    ColumnKind = "date"
	ColumnArray   ColumnKind = "array"
	ColumnNumber  ColumnKind = "number"
	ColumnObject  ColumnKind = "object"
)

// Pattern couples a validation regexp with the message shown on mismatch.
type Pattern struct {
	Value   *regexp.Regexp
	Message string
}

// SelectOption is one choice offered by a select-kind field.
type SelectOption struct {
	Label string
	Value string
}

// FieldSpec declares one editable attribute of a record type.
// Specs are immutable once handed to a Form; callers declare them per entity.
type FieldSpec struct {
	Key         string         // attribute name in the record
	Label       string         // human label
	Kind        FieldKind      // value kind
	Options     []SelectOption // choices, select kind only
	Placeholder string
	Required    bool
	Pattern     *Pattern // optional validation pattern
	Hidden      bool     // not rendered, but still submitted
}

// ColumnSpec declares one displayed attribute of a record type.
type ColumnSpec struct {
	Key   string
	Label string
	Kind  ColumnKind
}

// Record is one entity instance as an opaque mapping from attribute keys to
// values. The layer assumes nothing about its shape beyond an optional "id"
// key used for edit/delete identification and an optional name-like key used
// for human-readable notification text.
type Record map[string]any

// ID returns the record's identifier as a string, or "" when absent.
func (r Record) ID() string {
	v, ok := r["id"]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Label returns a human-readable name for the record, trying common
// display-name keys before falling back to the identifier.
func (r Record) Label() string {
	for _, key := range []string{"name", "full_name", "title"} {
		if v, ok := r[key]; ok && v != nil {
			if s := fmt.Sprint(v); s != "" {
				return s
			}
		}
	}
	return r.ID()
}

// Clone returns a shallow copy of the record. A nil receiver yields an empty
// record so callers can clone optional initial values without checks.
func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Pluralize applies the entity caption suffix rule: a trailing "y" becomes
// "ies", anything else just gains an "s" ("Company" -> "Companies",
// "User" -> "Users").
func Pluralize(title string) string {
	if len(title) > 0 && title[len(title)-1] == 'y' {
		return title[:len(title)-1] + "ies"
	}
	return title + "s"
}
