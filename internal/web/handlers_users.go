package web

// handlers_users.go implements the superuser-only user management API. List
// responses use the {data, count} envelope the paginated tables consume.

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mandjevant/noteboard/internal/auth"
	"github.com/mandjevant/noteboard/internal/crud"
	"github.com/mandjevant/noteboard/internal/model"
	"github.com/mandjevant/noteboard/internal/store"
	"github.com/mandjevant/noteboard/internal/web/middleware"
)

// PublicUser is the JSON shape of a user in API responses. The password
// hash never leaves the server.
type PublicUser struct {
	ID          uuid.UUID `json:"id"`
	Email       string    `json:"email"`
	FullName    string    `json:"full_name,omitempty"`
	AvatarURL   string    `json:"avatar_url,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	IsActive    bool      `json:"is_active"`
	IsSuperuser bool      `json:"is_superuser"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// UsersResponse is the paginated user list envelope.
type UsersResponse struct {
	Data  []PublicUser `json:"data"`
	Count int          `json:"count"`
}

func publicUser(u *model.User) PublicUser {
	return PublicUser{
		ID:          u.ID,
		Email:       u.Email,
		FullName:    u.FullName,
		AvatarURL:   u.AvatarURL,
		Phone:       u.Phone,
		IsActive:    u.IsActive,
		IsSuperuser: u.IsSuperuser,
		CreatedAt:   u.CreatedAt,
		UpdatedAt:   u.UpdatedAt,
	}
}

// pageParams extracts page/per_page, also accepting skip/limit for clients
// speaking the older offset dialect.
func pageParams(r *http.Request) (page, perPage int) {
	q := r.URL.Query()
	perPage = intParam(q.Get("per_page"), crud.DefaultPerPage)
	if !crud.ValidPerPage(perPage) {
		perPage = crud.DefaultPerPage
	}
	page = intParam(q.Get("page"), 0)
	if page < 1 {
		if limit := intParam(q.Get("limit"), 0); limit > 0 && crud.ValidPerPage(limit) {
			perPage = limit
		}
		skip := intParam(q.Get("skip"), 0)
		page = skip/perPage + 1
	}
	return page, perPage
}

func intParam(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

func (s *Server) handleListUsers(w http.ResponseWriter, r *http.Request) {
	page, perPage := pageParams(r)

	users, count, err := s.store.ListUsers(r.Context(), store.UserFilter{
		ListParams: store.ListParams{Offset: (page - 1) * perPage, Limit: perPage},
		Email:      r.URL.Query().Get("email"),
	})
	if err != nil {
		s.respondError(w, r, err)
		return
	}

	resp := UsersResponse{Data: make([]PublicUser, len(users)), Count: count}
	for i, u := range users {
		resp.Data[i] = publicUser(u)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleGetUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	user, err := s.store.GetUser(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, publicUser(user))
}

func (s *Server) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	var in model.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if in.Password != nil {
		// The wire carries a plaintext password; hash before it reaches
		// the store.
		if err := auth.ValidatePassword(*in.Password); err != nil {
			s.respondError(w, r, err)
			return
		}
		hash, err := auth.HashPassword(*in.Password, s.cfg.Auth.BcryptCost)
		if err != nil {
			s.respondError(w, r, err)
			return
		}
		in.Password = &hash
	}

	user, err := s.store.UpdateUser(r.Context(), id, in)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, publicUser(user))
}

func (s *Server) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		writeError(w, http.StatusNotFound, "User not found")
		return
	}

	current, _ := middleware.UserFromContext(r.Context())
	if current.ID == id {
		writeError(w, http.StatusForbidden, "Super users are not allowed to delete themselves")
		return
	}

	if err := s.store.DeleteUser(r.Context(), id); err != nil {
		s.respondError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Message{Message: "User deleted successfully"})
}
