package crud

import "testing"

func TestValidate_Required(t *testing.T) {
	spec := FieldSpec{Key: "email", Kind: FieldText, Required: true}

	for _, value := range []any{nil, ""} {
		if got := Validate(spec, value); got != MsgRequired {
			t.Errorf("Validate(required, %#v) = %q, want %q", value, got, MsgRequired)
		}
	}

	if got := Validate(spec, "anything"); got != "" {
		t.Errorf("Validate(required, non-empty) = %q, want no error", got)
	}
}

func TestValidate_BooleanAndDateNeverInvalid(t *testing.T) {
	for _, kind := range []FieldKind{FieldBoolean, FieldDate} {
		spec := FieldSpec{Key: "f", Kind: kind, Required: true}
		if got := Validate(spec, nil); got != "" {
			t.Errorf("Validate(%s, nil) = %q, want no error", kind, got)
		}
		if got := Validate(spec, ""); got != "" {
			t.Errorf("Validate(%s, \"\") = %q, want no error", kind, got)
		}
	}
}

func TestValidate_JSONKinds(t *testing.T) {
	tests := []struct {
		name  string
		kind  FieldKind
		value any
		want  string
	}{
		{"invalid json", FieldJSON, "{not json", MsgInvalidJSON},
		{"invalid array", FieldArray, "[1,", MsgInvalidJSON},
		{"empty object", FieldJSON, "{}", ""},
		{"empty array", FieldArray, "[]", ""},
		{"blank string skipped", FieldJSON, "", ""},
		{"whitespace skipped", FieldJSON, "   ", ""},
		{"non-string skipped", FieldArray, []any{"a"}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := FieldSpec{Key: "f", Kind: tt.kind}
			if got := Validate(spec, tt.value); got != tt.want {
				t.Errorf("Validate(%s, %#v) = %q, want %q", tt.kind, tt.value, got, tt.want)
			}
		})
	}
}

func TestValidate_Pattern(t *testing.T) {
	spec := FieldSpec{Key: "email", Kind: FieldText, Pattern: EmailPattern}

	if got := Validate(spec, "not-an-email"); got != EmailPattern.Message {
		t.Errorf("Validate(pattern mismatch) = %q, want %q", got, EmailPattern.Message)
	}
	if got := Validate(spec, "a@b.com"); got != "" {
		t.Errorf("Validate(pattern match) = %q, want no error", got)
	}
	// Absent values are not pattern-checked.
	if got := Validate(spec, ""); got != "" {
		t.Errorf("Validate(pattern, empty) = %q, want no error", got)
	}
}

func TestValidate_RequiredWinsOverPattern(t *testing.T) {
	spec := FieldSpec{Key: "email", Kind: FieldText, Required: true, Pattern: EmailPattern}
	if got := Validate(spec, ""); got != MsgRequired {
		t.Errorf("Validate(required+pattern, empty) = %q, want %q", got, MsgRequired)
	}
}

func TestPatterns(t *testing.T) {
	tests := []struct {
		pattern *Pattern
		value   string
		match   bool
	}{
		{EmailPattern, "User@Example.COM", true},
		{EmailPattern, "user@", false},
		{PhonePattern, "+14155552671", true},
		{PhonePattern, "0123", false},
		{PostcodePattern, "94103", true},
		{PostcodePattern, "94103-1234", true},
		{PostcodePattern, "9410", false},
		{UUIDPattern, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", true},
		{UUIDPattern, "6BA7B810-9DAD-11D1-80B4-00C04FD430C8", true},
		{UUIDPattern, "not-a-uuid", false},
		{UserRolePattern, "admin", true},
		{UserRolePattern, "root", false},
		{NamePattern, "Ada Lovelace", true},
		{NamePattern, "x1", false},
	}

	for _, tt := range tests {
		if got := tt.pattern.Value.MatchString(tt.value); got != tt.match {
			t.Errorf("pattern %q match(%q) = %v, want %v", tt.pattern.Message, tt.value, got, tt.match)
		}
	}
}
