package web

// pages.go serves the full HTML pages. Pages compose the shared layout with
// the table and form fragments produced by the render package; fragment
// refreshes after the initial load go through the /table routes.

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/flosch/pongo2/v6"

	"github.com/mandjevant/noteboard/internal/logging"
	"github.com/mandjevant/noteboard/internal/web/middleware"
)

//go:embed templates
var pageFiles embed.FS

// pageTemplates holds the parsed page templates keyed by file name.
type pageTemplates struct {
	set *pongo2.TemplateSet
}

// newPageTemplates parses the embedded page templates.
func newPageTemplates() (*pageTemplates, error) {
	sub, err := fs.Sub(pageFiles, "templates")
	if err != nil {
		return nil, err
	}
	return &pageTemplates{set: pongo2.NewSet("pages", pongo2.NewFSLoader(sub))}, nil
}

// render executes the named page template and writes it as HTML.
func (p *pageTemplates) render(w http.ResponseWriter, name string, ctx pongo2.Context) error {
	tpl, err := p.set.FromFile(name)
	if err != nil {
		return err
	}
	out, err := tpl.Execute(ctx)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err = w.Write([]byte(out))
	return err
}

// pageContext assembles the context every page shares: the signed-in user
// and any pending flash notification. The flash cookie is drained here.
func (s *Server) pageContext(w http.ResponseWriter, r *http.Request) pongo2.Context {
	ctx := pongo2.Context{}
	if user, ok := middleware.UserFromContext(r.Context()); ok {
		ctx["user"] = user
	}
	if flash := popFlash(w, r); flash != nil {
		ctx["flash"] = flash
	}
	return ctx
}

// renderPage merges extra values into the shared page context and renders.
func (s *Server) renderPage(w http.ResponseWriter, r *http.Request, name string, extra map[string]any) {
	ctx := s.pageContext(w, r)
	for k, v := range extra {
		ctx[k] = v
	}
	if err := s.pages.render(w, name, ctx); err != nil {
		logging.FromContext(r.Context()).Error("render page failed", "template", name, "error", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// renderAuthPage renders one of the unauthenticated pages (login, signup,
// password recovery).
func (s *Server) renderAuthPage(w http.ResponseWriter, r *http.Request, name string, extra map[string]any) {
	s.renderPage(w, r, name, extra)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	s.renderAuthPage(w, r, "login.html", nil)
}

func (s *Server) handleSignupPage(w http.ResponseWriter, r *http.Request) {
	if _, ok := middleware.UserFromContext(r.Context()); ok {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	s.renderAuthPage(w, r, "signup.html", nil)
}

func (s *Server) handleRecoverPage(w http.ResponseWriter, r *http.Request) {
	s.renderAuthPage(w, r, "recover.html", nil)
}

func (s *Server) handleResetPage(w http.ResponseWriter, r *http.Request) {
	s.renderAuthPage(w, r, "reset.html", map[string]any{
		"token": r.URL.Query().Get("token"),
	})
}

func (s *Server) handleNotesPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "notes.html", map[string]any{
		"table": s.tableFragment(r, "notes"),
	})
}

func (s *Server) handleAdminUsersPage(w http.ResponseWriter, r *http.Request) {
	s.renderPage(w, r, "admin_users.html", map[string]any{
		"table": s.tableFragment(r, "users"),
	})
}

// tableFragment renders the entity's table fragment for embedding into a
// page. Failures degrade to an empty fragment; the page still loads.
func (s *Server) tableFragment(r *http.Request, key string) string {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		return ""
	}
	provider, found := s.entities.Get(key)
	if !found || (provider.Superuser && !user.IsSuperuser) {
		return ""
	}

	out, err := s.renderEntityTable(r, provider.Build(user))
	if err != nil {
		logging.FromContext(r.Context()).Error("render table fragment failed",
			"entity", key, "error", err)
		return ""
	}
	return string(out)
}
