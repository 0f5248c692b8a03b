package render

// html.go renders forms and tables as HTML fragments through a pongo2
// template set loaded from the embedded templates directory. Fragments carry
// no page chrome; the web layer composes them into full pages.

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"sort"

	"github.com/flosch/pongo2/v6"

	"github.com/mandjevant/noteboard/internal/crud"
)

//go:embed templates
var templateFiles embed.FS

const (
	defaultConfirmTitle       = "Are you sure?"
	defaultConfirmDescription = "Do you want to proceed with this action?"

	arrayFieldHint = `Enter as JSON array: ["feature 1", "feature 2"]`
)

// HTML renders form and table fragments as HTML.
type HTML struct {
	form    *pongo2.Template
	table   *pongo2.Template
	confirm *pongo2.Template
}

// NewHTML parses the embedded fragment templates.
func NewHTML() (*HTML, error) {
	sub, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("render: embedded templates: %w", err)
	}
	set := pongo2.NewSet("crud-html", pongo2.NewFSLoader(sub))

	h := &HTML{}
	for _, tpl := range []struct {
		name string
		dst  **pongo2.Template
	}{
		{"form.html", &h.form},
		{"table.html", &h.table},
		{"confirm.html", &h.confirm},
	} {
		parsed, err := set.FromFile(tpl.name)
		if err != nil {
			return nil, fmt.Errorf("render: parse %s: %w", tpl.name, err)
		}
		*tpl.dst = parsed
	}
	return h, nil
}

// MustHTML panics when the embedded templates fail to parse. Useful for
// init-time wiring.
func MustHTML() *HTML {
	h, err := NewHTML()
	if err != nil {
		panic(err)
	}
	return h
}

// Name implements Renderer.
func (h *HTML) Name() string { return "html" }

// ContentType implements Renderer.
func (h *HTML) ContentType() string { return "text/html; charset=utf-8" }

// RenderForm renders the open form as a modal fragment with inline
// validation errors. A closed form renders to an empty fragment.
func (h *HTML) RenderForm(_ context.Context, form *crud.Form, opts Options) ([]byte, error) {
	if !form.IsOpen() {
		return nil, nil
	}

	fields := make([]map[string]any, 0, len(form.VisibleFields()))
	for _, spec := range form.VisibleFields() {
		fields = append(fields, fieldContext(spec, form.Value(spec.Key), form.Error(spec.Key)))
	}

	method := opts.Method
	if method == "" {
		method = "POST"
	}

	out, err := h.form.Execute(pongo2.Context{
		"title":               form.Title(),
		"action":              opts.Action,
		"method":              method,
		"fields":              fields,
		"hidden":              sortedHidden(opts.HiddenFields),
		"confirm_pending":     form.ConfirmationPending(),
		"confirm_title":       defaultConfirmTitle,
		"confirm_description": defaultConfirmDescription,
	})
	if err != nil {
		return nil, fmt.Errorf("render: form: %w", err)
	}
	return []byte(out), nil
}

// RenderTable renders the current page, its pagination controls and, when a
// delete confirmation is pending, the confirmation dialog.
func (h *HTML) RenderTable(_ context.Context, table *crud.Table, opts Options) ([]byte, error) {
	columns := table.Columns()
	cols := make([]map[string]any, len(columns))
	for i, col := range columns {
		cols[i] = map[string]any{"key": col.Key, "label": col.Label}
	}

	rows := make([]map[string]any, 0, len(table.Rows()))
	for _, rec := range table.Rows() {
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = table.Cell(rec, col)
		}
		rows = append(rows, map[string]any{"id": rec.ID(), "cells": cells})
	}

	pager := table.Pagination()
	pendingID := ""
	pending, deletePending := table.DeletePending()
	if deletePending {
		pendingID = pending.ID()
	}

	out, err := h.table.Execute(pongo2.Context{
		"entity":              opts.EntityKey,
		"caption":             table.Caption(),
		"columns":             cols,
		"rows":                rows,
		"showing":             len(rows),
		"total":               pager.Total(),
		"page":                pager.Page(),
		"total_pages":         pager.TotalPages(),
		"per_page":            pager.PerPage(),
		"per_page_options":    crud.PerPageOptions,
		"prev_disabled":       pager.PrevDisabled(),
		"next_disabled":       pager.NextDisabled(),
		"delete_pending":      deletePending,
		"pending_id":          pendingID,
		"confirm_title":       defaultConfirmTitle,
		"confirm_description": defaultConfirmDescription,
	})
	if err != nil {
		return nil, fmt.Errorf("render: table: %w", err)
	}
	return []byte(out), nil
}

// fieldContext shapes one field spec plus its current value and error for
// the template.
func fieldContext(spec crud.FieldSpec, value any, errMsg string) map[string]any {
	ctx := map[string]any{
		"key":         spec.Key,
		"label":       spec.Label,
		"kind":        string(spec.Kind),
		"placeholder": spec.Placeholder,
		"required":    spec.Required,
		"error":       errMsg,
		"input_type":  inputType(spec.Kind),
		"checked":     value == true,
		"value":       inputValue(value),
	}

	if spec.Kind == crud.FieldArray {
		ctx["hint"] = arrayFieldHint
	}

	if spec.Kind == crud.FieldSelect {
		current := inputValue(value)
		options := make([]map[string]any, len(spec.Options))
		for i, opt := range spec.Options {
			options[i] = map[string]any{
				"label":    opt.Label,
				"value":    opt.Value,
				"selected": opt.Value == current,
			}
		}
		ctx["options"] = options
		if spec.Placeholder == "" {
			ctx["placeholder"] = "Select an option"
		}
	}

	return ctx
}

func inputType(kind crud.FieldKind) string {
	switch kind {
	case crud.FieldDate:
		return "date"
	case crud.FieldNumber:
		return "number"
	default:
		return "text"
	}
}

// inputValue renders a working value into the text an input displays.
// Structured json/array values re-serialize so they stay editable.
func inputValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}

// sortedHidden normalises hidden fields for deterministic rendering.
func sortedHidden(fields map[string]string) []map[string]string {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if name != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	out := make([]map[string]string, 0, len(names))
	for _, name := range names {
		out = append(out, map[string]string{"name": name, "value": fields[name]})
	}
	return out
}
