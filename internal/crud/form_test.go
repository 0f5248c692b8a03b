package crud

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func emailField() FieldSpec {
	return FieldSpec{Key: "email", Label: "Email", Kind: FieldText, Required: true, Pattern: EmailPattern}
}

func TestForm_SetValidatesChangedFieldOnly(t *testing.T) {
	form := NewForm([]FieldSpec{emailField()}, nil)
	form.Open(nil)

	form.Set("email", "nope")
	if got := form.Error("email"); got != EmailPattern.Message {
		t.Errorf("Error(email) = %q, want %q", got, EmailPattern.Message)
	}

	form.Set("email", "a@b.com")
	if got := form.Error("email"); got != "" {
		t.Errorf("Error(email) after fix = %q, want none", got)
	}
}

func TestForm_SubmitBlockedOnInvalidField(t *testing.T) {
	submitted := false
	form := NewForm([]FieldSpec{emailField()}, func(Record) error {
		submitted = true
		return nil
	})
	form.Open(nil)
	form.Set("email", "not-an-email")

	if form.Submit() {
		t.Error("Submit() = true, want blocked")
	}
	if submitted {
		t.Error("submit callback invoked despite validation errors")
	}
	if !form.IsOpen() {
		t.Error("form closed despite blocked submit")
	}
	if got := form.Error("email"); got != EmailPattern.Message {
		t.Errorf("Error(email) = %q, want %q", got, EmailPattern.Message)
	}
}

func TestForm_SubmitRevalidatesUntouchedFields(t *testing.T) {
	// The required field was never Set; submit must still catch it.
	form := NewForm([]FieldSpec{emailField()}, nil)
	form.Open(nil)

	if form.Submit() {
		t.Error("Submit() = true, want blocked on untouched required field")
	}
	if got := form.Error("email"); got != MsgRequired {
		t.Errorf("Error(email) = %q, want %q", got, MsgRequired)
	}
}

func TestForm_InitialValuesRoundTrip(t *testing.T) {
	var got Record
	form := NewForm([]FieldSpec{emailField()}, func(data Record) error {
		got = data
		return nil
	})
	form.Open(Record{"email": "a@b.com"})

	if !form.Submit() {
		t.Fatalf("Submit() blocked, errors = %v", form.Errors())
	}
	want := Record{"email": "a@b.com"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("submitted record mismatch (-want +got):\n%s", diff)
	}
	if form.IsOpen() {
		t.Error("form should close after successful submit")
	}
}

func TestForm_JSONFieldParsedBeforeCallback(t *testing.T) {
	var got Record
	fields := []FieldSpec{
		{Key: "tags", Label: "Tags", Kind: FieldArray},
		{Key: "meta", Label: "Meta", Kind: FieldJSON},
	}
	form := NewForm(fields, func(data Record) error {
		got = data
		return nil
	})
	form.Open(Record{"tags": `["a","b"]`, "meta": `{"k":1}`})

	if !form.Submit() {
		t.Fatalf("Submit() blocked, errors = %v", form.Errors())
	}
	want := Record{
		"tags": []any{"a", "b"},
		"meta": map[string]any{"k": float64(1)},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("parsed payload mismatch (-want +got):\n%s", diff)
	}
}

func TestForm_JSONParseFailureMarksField(t *testing.T) {
	form := NewForm([]FieldSpec{{Key: "meta", Kind: FieldJSON}}, nil)
	form.Open(Record{"meta": "{broken"})

	if form.Submit() {
		t.Error("Submit() = true, want blocked on unparseable JSON")
	}
	if got := form.Error("meta"); got != MsgInvalidJSON {
		t.Errorf("Error(meta) = %q, want %q", got, MsgInvalidJSON)
	}
}

func TestForm_HiddenFieldSubmittedButNotVisible(t *testing.T) {
	var got Record
	fields := []FieldSpec{
		{Key: "id", Kind: FieldText, Hidden: true},
		{Key: "email", Kind: FieldText},
	}
	form := NewForm(fields, func(data Record) error {
		got = data
		return nil
	})
	form.Open(Record{"id": "u-1", "email": "a@b.com"})

	visible := form.VisibleFields()
	if len(visible) != 1 || visible[0].Key != "email" {
		t.Errorf("VisibleFields() = %v, want only email", visible)
	}

	if !form.Submit() {
		t.Fatalf("Submit() blocked, errors = %v", form.Errors())
	}
	if got["id"] != "u-1" {
		t.Errorf("hidden field id = %v, want carried through unchanged", got["id"])
	}
}

func TestForm_OverruleHidden(t *testing.T) {
	fields := []FieldSpec{{Key: "id", Kind: FieldText, Hidden: true}}
	form := NewForm(fields, nil, WithOverruleHidden())
	form.Open(nil)

	if len(form.VisibleFields()) != 1 {
		t.Error("overruled hidden field should render")
	}
}

func TestForm_ConfirmSubmitRoutesThroughGate(t *testing.T) {
	var got Record
	form := NewForm([]FieldSpec{{Key: "email", Kind: FieldText}}, func(data Record) error {
		got = data
		return nil
	}, WithConfirmSubmit())
	form.Open(Record{"email": "a@b.com"})

	if !form.Submit() {
		t.Fatal("Submit() blocked unexpectedly")
	}
	if got != nil {
		t.Fatal("callback ran before confirmation")
	}
	if !form.ConfirmationPending() {
		t.Fatal("no confirmation pending after Submit")
	}

	form.ConfirmSubmit()
	if got == nil {
		t.Fatal("callback did not run on ConfirmSubmit")
	}
	if form.IsOpen() {
		t.Error("form should close after confirmed submit")
	}
}

func TestForm_CancelSubmitKeepsFormOpen(t *testing.T) {
	invoked := false
	form := NewForm([]FieldSpec{{Key: "email", Kind: FieldText}}, func(Record) error {
		invoked = true
		return nil
	}, WithConfirmSubmit())
	form.Open(Record{"email": "a@b.com"})

	form.Submit()
	form.CancelSubmit()

	if invoked {
		t.Error("callback ran despite cancelled confirmation")
	}
	if !form.IsOpen() {
		t.Error("form should stay open after cancelled confirmation")
	}
}

func TestForm_CallbackErrorKeepsFormOpen(t *testing.T) {
	form := NewForm([]FieldSpec{{Key: "email", Kind: FieldText}}, func(Record) error {
		return errors.New("boom")
	})
	form.Open(Record{"email": "a@b.com"})

	if !form.Submit() {
		t.Fatal("Submit() blocked unexpectedly")
	}
	if !form.IsOpen() {
		t.Error("form should stay open when the callback fails")
	}
	if form.Value("email") != "a@b.com" {
		t.Error("form state should be left as-is for retry")
	}
}

func TestForm_ReopenResetsState(t *testing.T) {
	form := NewForm([]FieldSpec{emailField()}, nil, WithConfirmSubmit())
	form.Open(Record{"email": "a@b.com"})
	form.Submit() // leaves a pending confirmation

	form.Open(Record{"email": "c@d.com"})
	if form.ConfirmationPending() {
		t.Error("re-opening must clear the confirmation gate")
	}
	if len(form.Errors()) != 0 {
		t.Error("re-opening must clear errors")
	}
	if form.Value("email") != "c@d.com" {
		t.Errorf("Value(email) = %v, want reseeded value", form.Value("email"))
	}
}
