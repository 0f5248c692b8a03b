package web

// handlers_table.go serves the generic table fragments. Every entity in the
// registry gets the same four routes: view the current page, open the edit
// form, submit the edit, and run the delete confirmation cycle. State is
// rebuilt per request from the store; the fragments carry the pagination
// parameters back and forth.

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mandjevant/noteboard/internal/crud"
	"github.com/mandjevant/noteboard/internal/crud/render"
	"github.com/mandjevant/noteboard/internal/logging"
	"github.com/mandjevant/noteboard/internal/store"
	"github.com/mandjevant/noteboard/internal/web/middleware"
)

// entityFor resolves the entity named in the URL, scoped to the requesting
// user. Unknown keys and admin-only entities opened by regular users both
// read as missing.
func (s *Server) entityFor(w http.ResponseWriter, r *http.Request) (Entity, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Not authenticated")
		return Entity{}, false
	}

	key := chi.URLParam(r, "entityKey")
	provider, found := s.entities.Get(key)
	if !found || (provider.Superuser && !user.IsSuperuser) {
		writeError(w, http.StatusNotFound, "Not found")
		return Entity{}, false
	}
	return provider.Build(user), true
}

// queryPagination reads page and per_page from the query string, ignoring
// values outside the accepted set.
func queryPagination(r *http.Request) (page, perPage int) {
	page = 1
	perPage = crud.DefaultPerPage
	if v, err := strconv.Atoi(r.FormValue("page")); err == nil && v > 0 {
		page = v
	}
	if v, err := strconv.Atoi(r.FormValue("per_page")); err == nil && crud.ValidPerPage(v) {
		perPage = v
	}
	return page, perPage
}

// entityOrchestrator builds a per-request orchestrator positioned on the
// requested page. notifier may be nil for read-only rendering.
func entityOrchestrator(r *http.Request, ent Entity, notifier crud.Notifier) (*crud.Orchestrator, error) {
	orch, err := crud.NewOrchestrator(ent.Definition, notifier)
	if err != nil {
		return nil, err
	}
	page, perPage := queryPagination(r)
	orch.Pagination().SetPerPage(perPage)
	orch.Pagination().SetPage(page)
	return orch, nil
}

// renderEntityTable loads the requested page and renders the table fragment.
func (s *Server) renderEntityTable(r *http.Request, ent Entity) ([]byte, error) {
	orch, err := entityOrchestrator(r, ent, nil)
	if err != nil {
		return nil, err
	}
	if err := orch.Load(r.Context()); err != nil {
		return nil, err
	}

	renderer, err := s.renderers.Get("html")
	if err != nil {
		return nil, err
	}
	return renderer.RenderTable(r.Context(), orch.Table(), render.Options{EntityKey: ent.Key})
}

func (s *Server) handleTableView(w http.ResponseWriter, r *http.Request) {
	ent, ok := s.entityFor(w, r)
	if !ok {
		return
	}

	out, err := s.renderEntityTable(r, ent)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeFragment(w, out)
}

func (s *Server) handleTableEditForm(w http.ResponseWriter, r *http.Request) {
	ent, ok := s.entityFor(w, r)
	if !ok {
		return
	}

	id := r.URL.Query().Get("id")
	rec, err := ent.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	orch, err := entityOrchestrator(r, ent, flashNotifier{w: w})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	orch.Edit(rec)

	out, err := s.renderEditForm(r, orch, ent, id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeFragment(w, out)
}

func (s *Server) handleTableEditSubmit(w http.ResponseWriter, r *http.Request) {
	ent, ok := s.entityFor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	id := r.PostFormValue("id")
	rec, err := ent.Get(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	orch, err := entityOrchestrator(r, ent, flashNotifier{w: w})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	orch.Edit(rec)
	applyFormValues(orch, ent.Fields, r)
	orch.Submit(r.Context())

	if orch.Form().IsOpen() {
		// Validation or update failure: re-render the form with its errors.
		out, err := s.renderEditForm(r, orch, ent, id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.writeFragment(w, out)
		return
	}

	out, err := s.renderEntityTable(r, ent)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeFragment(w, out)
}

func (s *Server) handleTableDelete(w http.ResponseWriter, r *http.Request) {
	ent, ok := s.entityFor(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	orch, err := entityOrchestrator(r, ent, flashNotifier{w: w})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	id := r.PostFormValue("id")
	action := r.PostFormValue("action")

	switch action {
	case "confirm":
		rec, err := ent.Get(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			// Already gone; fall through to the reload below.
		} else if err != nil {
			s.respondError(w, r, err)
			return
		} else {
			orch.RequestDelete(rec)
			orch.ConfirmDelete(r.Context())
		}
	case "cancel":
		// Nothing pending in a fresh orchestrator; just re-render.
	default:
		rec, err := ent.Get(r.Context(), id)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		if err := orch.Load(r.Context()); err != nil {
			logging.FromContext(r.Context()).Error("table load failed",
				"entity", ent.Key, "error", err)
		}
		orch.RequestDelete(rec)
		out, err := s.renderTablePending(r, orch, ent)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		s.writeFragment(w, out)
		return
	}

	if err := orch.Load(r.Context()); err != nil {
		logging.FromContext(r.Context()).Error("table load failed",
			"entity", ent.Key, "error", err)
	}
	out, err := s.renderTablePending(r, orch, ent)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.writeFragment(w, out)
}

// renderEditForm renders the entity's edit form fragment.
func (s *Server) renderEditForm(r *http.Request, orch *crud.Orchestrator, ent Entity, id string) ([]byte, error) {
	renderer, err := s.renderers.Get("html")
	if err != nil {
		return nil, err
	}
	return renderer.RenderForm(r.Context(), orch.Form(), render.Options{
		Action:       "/table/" + ent.Key + "/edit",
		EntityKey:    ent.Key,
		HiddenFields: map[string]string{"id": id},
	})
}

// renderTablePending renders the orchestrator's table as-is, keeping any
// pending delete confirmation visible.
func (s *Server) renderTablePending(r *http.Request, orch *crud.Orchestrator, ent Entity) ([]byte, error) {
	renderer, err := s.renderers.Get("html")
	if err != nil {
		return nil, err
	}
	return renderer.RenderTable(r.Context(), orch.Table(), render.Options{EntityKey: ent.Key})
}

func (s *Server) writeFragment(w http.ResponseWriter, out []byte) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(out)
}

// applyFormValues copies submitted form values into the open form, field by
// field. Checkbox fields read as booleans; everything else stays a string
// and is parsed by the form on submit.
func applyFormValues(orch *crud.Orchestrator, fields []crud.FieldSpec, r *http.Request) {
	for _, spec := range fields {
		if spec.Hidden {
			continue
		}
		if spec.Kind == crud.FieldBoolean {
			v := r.PostFormValue(spec.Key)
			orch.SetField(spec.Key, v == "on" || v == "true" || v == "1")
			continue
		}
		if _, present := r.PostForm[spec.Key]; present {
			orch.SetField(spec.Key, r.PostFormValue(spec.Key))
		}
	}
}
