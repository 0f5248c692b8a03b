package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/mandjevant/noteboard/internal/model"
	"github.com/mandjevant/noteboard/internal/store"
)

const noteColumns = `id, title, content, user_id, created_at, updated_at`

func scanNote(row pgx.Row) (*model.Note, error) {
	var n model.Note
	err := row.Scan(
		&n.ID,
		&n.Title,
		&n.Content,
		&n.UserID,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func (s *Store) CreateNote(ctx context.Context, n *model.Note) error {
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	n.UpdatedAt = n.CreatedAt

	err := s.pool.QueryRow(ctx, `
		INSERT INTO notes (title, content, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		n.Title, n.Content, n.UserID, n.CreatedAt, n.UpdatedAt,
	).Scan(&n.ID)
	return mapError(err)
}

func (s *Store) GetNote(ctx context.Context, id int64) (*model.Note, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+noteColumns+` FROM notes WHERE id = $1`, id)
	n, err := scanNote(row)
	if err != nil {
		return nil, mapError(err)
	}
	return n, nil
}

func (s *Store) ListNotes(ctx context.Context, filter store.NoteFilter) ([]*model.Note, int, error) {
	var (
		where []string
		args  []any
	)
	if filter.OwnerID != uuid.Nil {
		args = append(args, filter.OwnerID)
		where = append(where, fmt.Sprintf("user_id = $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM notes`+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `SELECT ` + noteColumns + ` FROM notes` + clause + ` ORDER BY created_at DESC, id DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, mapError(err)
	}
	defer rows.Close()

	var notes []*model.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, 0, mapError(err)
		}
		notes = append(notes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	return notes, total, nil
}

func (s *Store) UpdateNote(ctx context.Context, id int64, update model.NoteUpdate) (*model.Note, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Title != nil {
		set("title", *update.Title)
	}
	if update.Content != nil {
		set("content", *update.Content)
	}
	if len(sets) == 0 {
		return s.GetNote(ctx, id)
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE notes SET %s WHERE id = $%d RETURNING `+noteColumns,
		strings.Join(sets, ", "), len(args))

	n, err := scanNote(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return n, nil
}

func (s *Store) DeleteNote(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM notes WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}
