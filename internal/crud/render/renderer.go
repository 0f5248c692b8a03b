// Package render turns the generic form and table components into output a
// frontend can embed. Renderers are looked up by name through a registry so
// alternative representations (JSON fragments, other markup dialects) can be
// plugged in without touching the components themselves.
package render

import (
	"context"

	"github.com/mandjevant/noteboard/internal/crud"
)

// Options carries per-render parameters: where a form posts, which entity a
// table belongs to, and any hidden inputs to emit alongside the visible
// fields.
type Options struct {
	// Action is the URL a rendered form submits to.
	Action string
	// Method is the HTTP method for form submission; defaults to POST.
	Method string
	// EntityKey names the entity a table fragment belongs to, used for
	// control URLs and element ids.
	EntityKey string
	// HiddenFields are emitted as hidden inputs, sorted by name.
	HiddenFields map[string]string
}

// Renderer converts forms and tables into a byte representation.
type Renderer interface {
	Name() string
	ContentType() string
	RenderForm(ctx context.Context, form *crud.Form, opts Options) ([]byte, error)
	RenderTable(ctx context.Context, table *crud.Table, opts Options) ([]byte, error)
}

// HiddenField is one name/value pair emitted as a hidden input.
type HiddenField struct {
	Name  string
	Value string
}

// CSRFToken returns a hidden field carrying the provided token under the
// caller's chosen input name.
func CSRFToken(name, token string) HiddenField {
	return HiddenField{Name: name, Value: token}
}
