package crud

// form.go implements the dynamic record form: a working copy of a record's
// fields plus a parallel error map, driven by a declarative field spec list.
// The form owns its state exclusively and is meant to be used from a single
// goroutine; only its embedded confirmation gate is internally synchronized.

import (
	"encoding/json"
	"strings"
)

// SubmitFunc receives the assembled record when a submit passes validation.
// Returning an error keeps the form open with its state intact so the user
// can retry; returning nil lets the form close.
type SubmitFunc func(Record) error

// FormOption customises form construction.
type FormOption func(*Form)

// WithConfirmSubmit routes successful submits through the form's
// confirmation gate instead of invoking the callback immediately.
func WithConfirmSubmit() FormOption {
	return func(f *Form) { f.confirmSubmit = true }
}

// WithOverruleHidden renders hidden fields as if they were visible.
func WithOverruleHidden() FormOption {
	return func(f *Form) { f.overruleHidden = true }
}

// WithFormTitle sets the title shown when the form is rendered.
func WithFormTitle(title string) FormOption {
	return func(f *Form) { f.title = title }
}

// Form generates and validates an edit form from a list of field
// specifications. State lives from Open until the form closes (successful
// submit or Close); re-opening resets everything, including the gate.
type Form struct {
	fields         []FieldSpec
	onSubmit       SubmitFunc
	confirmSubmit  bool
	overruleHidden bool
	title          string

	open   bool
	values Record
	errors map[string]string
	gate   *Gate[Record]
}

// NewForm builds a closed form over the given field specs. The submit
// callback runs synchronously inside Submit (or inside ConfirmSubmit when
// confirm-submit is enabled).
func NewForm(fields []FieldSpec, onSubmit SubmitFunc, opts ...FormOption) *Form {
	f := &Form{
		fields:   fields,
		onSubmit: onSubmit,
		title:    "Form",
		errors:   make(map[string]string),
		values:   Record{},
	}
	for _, opt := range opts {
		opt(f)
	}
	f.gate = NewGate(f.deliver)
	return f
}

// Open resets the form state, seeds the working values from initial (use nil
// for a blank form) and opens the form. Any pending confirmation from a
// previous cycle is discarded.
func (f *Form) Open(initial Record) {
	f.values = initial.Clone()
	f.errors = make(map[string]string)
	f.gate.Cancel()
	f.open = true
}

// Close discards the working state without submitting.
func (f *Form) Close() {
	f.open = false
	f.errors = make(map[string]string)
	f.gate.Cancel()
}

// IsOpen reports whether the form is currently open.
func (f *Form) IsOpen() bool { return f.open }

// Title returns the form's display title.
func (f *Form) Title() string { return f.title }

// Set updates the working value for key and re-validates that field only.
// Keys without a matching spec are stored but never flagged invalid.
func (f *Form) Set(key string, value any) {
	f.values[key] = value

	spec, ok := f.spec(key)
	if !ok {
		return
	}
	if msg := Validate(spec, value); msg != "" {
		f.errors[key] = msg
	} else {
		delete(f.errors, key)
	}
}

// Value returns the current working value for key.
func (f *Form) Value(key string) any { return f.values[key] }

// Values returns the current working copy of the record.
func (f *Form) Values() Record { return f.values.Clone() }

// Errors returns the per-field validation messages accumulated so far.
func (f *Form) Errors() map[string]string {
	out := make(map[string]string, len(f.errors))
	for k, v := range f.errors {
		out[k] = v
	}
	return out
}

// Error returns the validation message for a single field, or "".
func (f *Form) Error(key string) string { return f.errors[key] }

// Fields returns the declared field specs in order.
func (f *Form) Fields() []FieldSpec { return f.fields }

// VisibleFields returns the specs that should be rendered: all of them when
// hidden fields are overruled, otherwise only the non-hidden ones. Hidden
// fields keep their last-known value and are still part of the submitted
// payload.
func (f *Form) VisibleFields() []FieldSpec {
	if f.overruleHidden {
		return f.fields
	}
	visible := make([]FieldSpec, 0, len(f.fields))
	for _, spec := range f.fields {
		if !spec.Hidden {
			visible = append(visible, spec)
		}
	}
	return visible
}

// Submit re-validates every declared field, parses json/array string values
// into structured form, and either surfaces the accumulated errors (submit
// blocked, form stays open) or hands the assembled record onward: through
// the confirmation gate when configured, otherwise straight to the submit
// callback. It reports whether validation passed.
func (f *Form) Submit() bool {
	errs := make(map[string]string)
	processed := f.values.Clone()

	for _, spec := range f.fields {
		value := f.values[spec.Key]
		msg := Validate(spec, value)

		if spec.Kind == FieldJSON || spec.Kind == FieldArray {
			if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
				var parsed any
				if err := json.Unmarshal([]byte(s), &parsed); err != nil {
					// Overrides whatever the validator said for this field.
					errs[spec.Key] = MsgInvalidJSON
					continue
				}
				processed[spec.Key] = parsed
			}
		}

		if msg != "" {
			errs[spec.Key] = msg
		}
	}

	f.errors = errs
	if len(errs) > 0 {
		return false
	}

	if f.confirmSubmit {
		f.gate.Request(processed)
		return true
	}

	f.deliver(processed)
	return true
}

// ConfirmSubmit confirms a pending confirm-submit cycle, delivering the
// record that Submit assembled.
func (f *Form) ConfirmSubmit() { f.gate.Confirm() }

// CancelSubmit abandons a pending confirm-submit cycle; the form stays open.
func (f *Form) CancelSubmit() { f.gate.Cancel() }

// ConfirmationPending reports whether a submit is waiting on the gate.
func (f *Form) ConfirmationPending() bool { return f.gate.IsOpen() }

// deliver invokes the submit callback and closes the form unless the
// callback reports a failure, in which case the state is left as-is for a
// retry.
func (f *Form) deliver(data Record) {
	if f.onSubmit != nil {
		if err := f.onSubmit(data); err != nil {
			return
		}
	}
	f.open = false
}

func (f *Form) spec(key string) (FieldSpec, bool) {
	for _, spec := range f.fields {
		if spec.Key == key {
			return spec, true
		}
	}
	return FieldSpec{}, false
}
