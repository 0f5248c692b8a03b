package web

// entities.go declares the table entities: the column and field specs for
// each editable collection, plus the store-backed fetch/update/delete
// callbacks the orchestrator drives. Entities live in a process-level
// registry keyed by their URL segment.

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"

	"github.com/google/uuid"

	"github.com/mandjevant/noteboard/internal/auth"
	"github.com/mandjevant/noteboard/internal/crud"
	"github.com/mandjevant/noteboard/internal/model"
	"github.com/mandjevant/noteboard/internal/store"
)

// Entity couples a crud definition with a point lookup for edit flows.
type Entity struct {
	crud.Definition

	// Get resolves a single record by its string id.
	Get func(ctx context.Context, id string) (crud.Record, error)
}

// EntityProvider builds an entity scoped to the requesting user. Superuser
// marks entities only administrators may open.
type EntityProvider struct {
	Key       string
	Superuser bool
	Build     func(user *model.User) Entity
}

// EntityRegistry holds the registered entity providers.
type EntityRegistry struct {
	mu        sync.RWMutex
	providers map[string]EntityProvider
}

// NewEntityRegistry returns an empty registry.
func NewEntityRegistry() *EntityRegistry {
	return &EntityRegistry{providers: make(map[string]EntityProvider)}
}

// Register adds a provider. Registering a duplicate key is a programming
// error and panics.
func (r *EntityRegistry) Register(p EntityProvider) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[p.Key]; exists {
		panic(fmt.Sprintf("web: entity %q already registered", p.Key))
	}
	r.providers[p.Key] = p
}

// Get returns the provider registered under key.
func (r *EntityRegistry) Get(key string) (EntityProvider, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[key]
	return p, ok
}

// Keys returns the registered entity keys, sorted.
func (r *EntityRegistry) Keys() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	keys := make([]string, 0, len(r.providers))
	for k := range r.providers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// userEntity builds the admin user table over the store.
func userEntity(st store.Store, bcryptCost int) Entity {
	columns := []crud.ColumnSpec{
		{Key: "email", Label: "Email", Kind: crud.ColumnText},
		{Key: "full_name", Label: "Full Name", Kind: crud.ColumnText},
		{Key: "is_active", Label: "Active", Kind: crud.ColumnBoolean},
		{Key: "is_superuser", Label: "Admin", Kind: crud.ColumnBoolean},
		{Key: "id", Label: "ID", Kind: crud.ColumnText},
		{Key: "created_at", Label: "Created", Kind: crud.ColumnDate},
		{Key: "updated_at", Label: "Updated", Kind: crud.ColumnDate},
	}
	fields := []crud.FieldSpec{
		{Key: "email", Label: "Email", Kind: crud.FieldText, Pattern: crud.EmailPattern},
		{Key: "full_name", Label: "Full Name", Kind: crud.FieldText},
		{Key: "avatar_url", Label: "Avatar URL", Kind: crud.FieldText},
		{Key: "phone", Label: "Phone", Kind: crud.FieldText, Pattern: crud.PhonePattern},
		{Key: "password", Label: "Password", Kind: crud.FieldText},
		{Key: "is_active", Label: "Active", Kind: crud.FieldBoolean},
		{Key: "is_superuser", Label: "Admin", Kind: crud.FieldBoolean},
	}

	return Entity{
		Definition: crud.Definition{
			Key:     "users",
			Title:   "User",
			Columns: columns,
			Fields:  fields,
			Source: func(ctx context.Context, page, perPage int) (crud.ListResult, error) {
				users, count, err := st.ListUsers(ctx, store.UserFilter{
					ListParams: store.ListParams{Offset: (page - 1) * perPage, Limit: perPage},
				})
				if err != nil {
					return crud.ListResult{}, err
				}
				data := make([]crud.Record, len(users))
				for i, u := range users {
					data[i] = u.Record()
				}
				return crud.ListResult{Data: data, Count: count}, nil
			},
			Update: func(ctx context.Context, original, patch crud.Record) error {
				id, err := uuid.Parse(original.ID())
				if err != nil {
					return fmt.Errorf("parse user id: %w", err)
				}
				update, err := userPatch(patch, bcryptCost)
				if err != nil {
					return err
				}
				_, err = st.UpdateUser(ctx, id, update)
				return err
			},
			Delete: func(ctx context.Context, rec crud.Record) error {
				id, err := uuid.Parse(rec.ID())
				if err != nil {
					return fmt.Errorf("parse user id: %w", err)
				}
				return st.DeleteUser(ctx, id)
			},
		},
		Get: func(ctx context.Context, id string) (crud.Record, error) {
			uid, err := uuid.Parse(id)
			if err != nil {
				return nil, store.ErrNotFound
			}
			u, err := st.GetUser(ctx, uid)
			if err != nil {
				return nil, err
			}
			return u.Record(), nil
		},
	}
}

// noteEntity builds the note table over the store, scoped to one owner.
func noteEntity(st store.Store, owner uuid.UUID, sanitize func(string) string) Entity {
	columns := []crud.ColumnSpec{
		{Key: "title", Label: "Title", Kind: crud.ColumnText},
		{Key: "content", Label: "Content", Kind: crud.ColumnText},
		{Key: "created_at", Label: "Created", Kind: crud.ColumnDate},
	}
	fields := []crud.FieldSpec{
		{Key: "title", Label: "Title", Kind: crud.FieldText, Required: true},
		{Key: "content", Label: "Content", Kind: crud.FieldText, Required: true},
	}

	return Entity{
		Definition: crud.Definition{
			Key:     "notes",
			Title:   "Note",
			Columns: columns,
			Fields:  fields,
			Source: func(ctx context.Context, page, perPage int) (crud.ListResult, error) {
				notes, count, err := st.ListNotes(ctx, store.NoteFilter{
					ListParams: store.ListParams{Offset: (page - 1) * perPage, Limit: perPage},
					OwnerID:    owner,
				})
				if err != nil {
					return crud.ListResult{}, err
				}
				data := make([]crud.Record, len(notes))
				for i, n := range notes {
					data[i] = n.Record()
				}
				return crud.ListResult{Data: data, Count: count}, nil
			},
			Update: func(ctx context.Context, original, patch crud.Record) error {
				id, err := noteID(original)
				if err != nil {
					return err
				}
				if err := requireOwnedNote(ctx, st, id, owner); err != nil {
					return err
				}
				update := model.NoteUpdate{}
				if title, ok := patch["title"].(string); ok {
					update.Title = &title
				}
				if content, ok := patch["content"].(string); ok {
					clean := sanitize(content)
					update.Content = &clean
				}
				_, err = st.UpdateNote(ctx, id, update)
				return err
			},
			Delete: func(ctx context.Context, rec crud.Record) error {
				id, err := noteID(rec)
				if err != nil {
					return err
				}
				if err := requireOwnedNote(ctx, st, id, owner); err != nil {
					return err
				}
				return st.DeleteNote(ctx, id)
			},
		},
		Get: func(ctx context.Context, id string) (crud.Record, error) {
			nid, err := strconv.ParseInt(id, 10, 64)
			if err != nil {
				return nil, store.ErrNotFound
			}
			n, err := st.GetNote(ctx, nid)
			if err != nil {
				return nil, err
			}
			if n.UserID != owner {
				return nil, store.ErrNotFound
			}
			return n.Record(), nil
		},
	}
}

// userPatch converts submitted form values into a partial user update.
func userPatch(patch crud.Record, bcryptCost int) (model.UserUpdate, error) {
	update := model.UserUpdate{}

	if email, ok := patch["email"].(string); ok && email != "" {
		update.Email = &email
	}
	if name, ok := patch["full_name"].(string); ok {
		update.FullName = &name
	}
	if avatar, ok := patch["avatar_url"].(string); ok {
		update.AvatarURL = &avatar
	}
	if phone, ok := patch["phone"].(string); ok {
		update.Phone = &phone
	}
	if password, ok := patch["password"].(string); ok && password != "" {
		if err := validateAndHash(password, bcryptCost, &update); err != nil {
			return update, err
		}
	}
	if active, ok := patch["is_active"].(bool); ok {
		update.IsActive = &active
	}
	if super, ok := patch["is_superuser"].(bool); ok {
		update.IsSuperuser = &super
	}
	return update, nil
}

func validateAndHash(password string, cost int, update *model.UserUpdate) error {
	if err := auth.ValidatePassword(password); err != nil {
		return err
	}
	hash, err := auth.HashPassword(password, cost)
	if err != nil {
		return err
	}
	update.Password = &hash
	return nil
}

// noteID extracts the numeric note id from a record.
func noteID(rec crud.Record) (int64, error) {
	switch v := rec["id"].(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	}
	return 0, fmt.Errorf("note record has no id")
}

// requireOwnedNote fails with ErrNotFound when the note belongs to someone
// else, so foreign notes are indistinguishable from missing ones.
func requireOwnedNote(ctx context.Context, st store.Store, id int64, owner uuid.UUID) error {
	n, err := st.GetNote(ctx, id)
	if err != nil {
		return err
	}
	if n.UserID != owner {
		return store.ErrNotFound
	}
	return nil
}
