package render

import (
	"context"
	"strings"
	"testing"

	"github.com/mandjevant/noteboard/internal/crud"
)

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	html := MustHTML()

	if err := reg.Register(html); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := reg.Register(html); err == nil {
		t.Error("duplicate Register() error = nil, want error")
	}

	got, err := reg.Get("html")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.ContentType() != "text/html; charset=utf-8" {
		t.Errorf("ContentType() = %q", got.ContentType())
	}

	if _, err := reg.Get("missing"); err == nil {
		t.Error("Get(missing) error = nil, want error")
	}
}

func TestHTML_RenderForm(t *testing.T) {
	fields := []crud.FieldSpec{
		{Key: "email", Label: "Email", Kind: crud.FieldText, Required: true, Pattern: crud.EmailPattern},
		{Key: "is_active", Label: "Active", Kind: crud.FieldBoolean},
		{Key: "role", Label: "Role", Kind: crud.FieldSelect, Options: []crud.SelectOption{
			{Label: "Admin", Value: "admin"},
			{Label: "Member", Value: "member"},
		}},
		{Key: "tags", Label: "Tags", Kind: crud.FieldArray},
		{Key: "id", Kind: crud.FieldText, Hidden: true},
	}
	form := crud.NewForm(fields, nil, crud.WithFormTitle("Edit User"))
	form.Open(crud.Record{"email": "a@b.com", "is_active": true, "role": "member", "id": "u-1"})
	form.Set("email", "broken")

	out, err := MustHTML().RenderForm(context.Background(), form, Options{
		Action:       "/api/users/u-1",
		HiddenFields: map[string]string{"_csrf": "tok123"},
	})
	if err != nil {
		t.Fatalf("RenderForm() error = %v", err)
	}
	html := string(out)

	for _, want := range []string{
		"Edit User",
		`action="/api/users/u-1"`,
		`value="broken"`,
		"Invalid email address",
		`type="checkbox"`,
		" checked",
		`<option value="member" selected>`,
		"Enter as JSON array",
		`name="_csrf" value="tok123"`,
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered form missing %q\n%s", want, html)
		}
	}

	if strings.Contains(html, `field-id"`) {
		t.Error("hidden field rendered")
	}
}

func TestHTML_RenderFormClosed(t *testing.T) {
	form := crud.NewForm(nil, nil)
	out, err := MustHTML().RenderForm(context.Background(), form, Options{})
	if err != nil {
		t.Fatalf("RenderForm() error = %v", err)
	}
	if len(out) != 0 {
		t.Errorf("closed form rendered %d bytes, want none", len(out))
	}
}

func TestHTML_RenderTable(t *testing.T) {
	columns := []crud.ColumnSpec{
		{Key: "email", Label: "Email", Kind: crud.ColumnText},
		{Key: "is_active", Label: "Active", Kind: crud.ColumnBoolean},
	}
	pager := crud.NewPagination(10)
	pager.SetTotal(2)
	table := crud.NewTable(columns, pager, nil, nil)
	table.SetCaption("Users (2)")
	table.SetRows([]crud.Record{
		{"id": "u-1", "email": "a@b.com", "is_active": true},
		{"id": "u-2", "email": "c@d.com", "is_active": false},
	})

	out, err := MustHTML().RenderTable(context.Background(), table, Options{EntityKey: "users"})
	if err != nil {
		t.Fatalf("RenderTable() error = %v", err)
	}
	html := string(out)

	for _, want := range []string{
		`id="table-users"`,
		"Users (2)",
		"<th>Email</th>",
		"a@b.com",
		"✓",
		"❌",
		`data-action="delete" data-id="u-2"`,
		"Showing 2 of 2",
		"Page 1 of 1",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("rendered table missing %q", want)
		}
	}

	// Both pager buttons disabled on a single page.
	if strings.Count(html, "disabled") != 2 {
		t.Errorf("disabled count = %d, want 2", strings.Count(html, "disabled"))
	}
}

func TestHTML_RenderTableConfirmDialog(t *testing.T) {
	table := crud.NewTable(nil, crud.NewPagination(10), nil, nil)
	table.RequestDelete(crud.Record{"id": "u-1"})

	out, err := MustHTML().RenderTable(context.Background(), table, Options{EntityKey: "users"})
	if err != nil {
		t.Fatalf("RenderTable() error = %v", err)
	}
	if !strings.Contains(string(out), "Are you sure?") {
		t.Error("pending delete should render the confirmation dialog")
	}
}
