package web

// handlers_notes.go implements the note CRUD API. Notes are always scoped
// to the authenticated user; other people's notes read as 404.

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/mandjevant/noteboard/internal/model"
	"github.com/mandjevant/noteboard/internal/store"
	"github.com/mandjevant/noteboard/internal/web/middleware"
)

// NotesResponse is the paginated note list envelope.
type NotesResponse struct {
	Data  []*model.Note `json:"data"`
	Count int           `json:"count"`
}

// ownedNote loads the note in the URL and checks it belongs to the current
// user. Foreign notes are reported as missing.
func (s *Server) ownedNote(w http.ResponseWriter, r *http.Request) (*model.Note, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "noteID"), 10, 64)
	if err != nil {
		writeError(w, http.StatusNotFound, "Note not found")
		return nil, false
	}

	note, err := s.store.GetNote(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, http.StatusNotFound, "Note not found")
		return nil, false
	}
	if err != nil {
		s.respondError(w, r, err)
		return nil, false
	}

	user, _ := middleware.UserFromContext(r.Context())
	if note.UserID != user.ID {
		writeError(w, http.StatusNotFound, "Note not found")
		return nil, false
	}
	return note, true
}

func (s *Server) handleListNotes(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())
	page, perPage := pageParams(r)

	notes, count, err := s.store.ListNotes(r.Context(), store.NoteFilter{
		ListParams: store.ListParams{Offset: (page - 1) * perPage, Limit: perPage},
		OwnerID:    user.ID,
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	if notes == nil {
		notes = []*model.Note{}
	}
	writeJSON(w, http.StatusOK, NotesResponse{Data: notes, Count: count})
}

func (s *Server) handleCreateNote(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.UserFromContext(r.Context())

	var in model.NoteCreate
	if strings.Contains(r.Header.Get("Content-Type"), "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
	} else {
		if err := r.ParseForm(); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body")
			return
		}
		in.Title = r.PostFormValue("title")
		in.Content = r.PostFormValue("content")
	}

	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		writeError(w, http.StatusUnprocessableEntity, "This field is required.")
		return
	}

	note := &model.Note{
		Title:   in.Title,
		Content: s.sanitizer.Sanitize(in.Content),
		UserID:  user.ID,
	}
	if err := s.store.CreateNote(r.Context(), note); err != nil {
		s.respondError(w, r, err)
		return
	}

	if isFormPost(r) {
		http.Redirect(w, r, "/notes", http.StatusSeeOther)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

func (s *Server) handleGetNote(w http.ResponseWriter, r *http.Request) {
	note, ok := s.ownedNote(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, note)
}

func (s *Server) handleUpdateNote(w http.ResponseWriter, r *http.Request) {
	note, ok := s.ownedNote(w, r)
	if !ok {
		return
	}

	var in model.NoteUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Content != nil {
		clean := s.sanitizer.Sanitize(*in.Content)
		in.Content = &clean
	}

	updated, err := s.store.UpdateNote(r.Context(), note.ID, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (s *Server) handleDeleteNote(w http.ResponseWriter, r *http.Request) {
	note, ok := s.ownedNote(w, r)
	if !ok {
		return
	}

	if err := s.store.DeleteNote(r.Context(), note.ID); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Message{Message: "Note deleted successfully"})
}
