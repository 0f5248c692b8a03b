package crud

// validate.go holds the pure per-field validation rules shared by the Form's
// change and submit paths. Rules apply in order and the first failing rule
// wins; boolean and date fields are never validated.

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Messages produced by Validate. Pattern mismatches use the pattern's own
// declared message instead.
const (
	MsgRequired    = "This field is required."
	MsgInvalidJSON = "Invalid JSON format"
)

// Validate checks a single raw value against a field specification and
// returns an error message, or "" when the value is acceptable. It is pure:
// callers invoke it on every change and again for every field at submit
// time, so values changed programmatically are still caught.
func Validate(spec FieldSpec, value any) string {
	if spec.Kind == FieldBoolean || spec.Kind == FieldDate {
		return ""
	}

	if spec.Required && isEmpty(value) {
		return MsgRequired
	}

	if spec.Kind == FieldJSON || spec.Kind == FieldArray {
		if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
			if !json.Valid([]byte(s)) {
				return MsgInvalidJSON
			}
		}
	}

	if !isEmpty(value) && spec.Pattern != nil && spec.Pattern.Value != nil {
		if !spec.Pattern.Value.MatchString(fmt.Sprint(value)) {
			return spec.Pattern.Message
		}
	}

	return ""
}

// isEmpty reports whether a value counts as absent for required-ness and
// pattern checks: nil or the empty string.
func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	if s, ok := value.(string); ok {
		return s == ""
	}
	return false
}
