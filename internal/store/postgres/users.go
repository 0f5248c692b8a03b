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

// userColumns is the column list used for SELECT statements on the users
// table.
const userColumns = `id, email, hashed_password, full_name, avatar_url,
	phone, is_active, is_superuser, created_at, updated_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.HashedPassword,
		&u.FullName,
		&u.AvatarURL,
		&u.Phone,
		&u.IsActive,
		&u.IsSuperuser,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *model.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	now := time.Now().UTC()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = u.CreatedAt

	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (
			id, email, hashed_password, full_name, avatar_url,
			phone, is_active, is_superuser, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID,
		strings.ToLower(u.Email),
		u.HashedPassword,
		u.FullName,
		u.AvatarURL,
		u.Phone,
		u.IsActive,
		u.IsSuperuser,
		u.CreatedAt,
		u.UpdatedAt,
	)
	return mapError(err)
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (*model.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
	u, err := scanUser(row)
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (s *Store) ListUsers(ctx context.Context, filter store.UserFilter) ([]*model.User, int, error) {
	var (
		where []string
		args  []any
	)
	if filter.Email != "" {
		args = append(args, "%"+strings.ToLower(filter.Email)+"%")
		where = append(where, fmt.Sprintf("email LIKE $%d", len(args)))
	}

	clause := ""
	if len(where) > 0 {
		clause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`+clause, args...).Scan(&total); err != nil {
		return nil, 0, mapError(err)
	}

	query := `SELECT ` + userColumns + ` FROM users` + clause + ` ORDER BY created_at, id`
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

	var users []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, 0, mapError(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, mapError(err)
	}
	return users, total, nil
}

func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, update model.UserUpdate) (*model.User, error) {
	var (
		sets []string
		args []any
	)
	set := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if update.Email != nil {
		set("email", strings.ToLower(*update.Email))
	}
	if update.FullName != nil {
		set("full_name", *update.FullName)
	}
	if update.AvatarURL != nil {
		set("avatar_url", *update.AvatarURL)
	}
	if update.Phone != nil {
		set("phone", *update.Phone)
	}
	if update.Password != nil {
		set("hashed_password", *update.Password)
	}
	if update.IsActive != nil {
		set("is_active", *update.IsActive)
	}
	if update.IsSuperuser != nil {
		set("is_superuser", *update.IsSuperuser)
	}
	if len(sets) == 0 {
		return s.GetUser(ctx, id)
	}
	set("updated_at", time.Now().UTC())

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(sets, ", "), len(args))

	u, err := scanUser(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, mapError(err)
	}
	return u, nil
}

func (s *Store) DeleteUser(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return mapError(err)
	}
	if tag.RowsAffected() == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (s *Store) CountSuperusers(ctx context.Context) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE is_superuser`).Scan(&count)
	if err != nil {
		return 0, mapError(err)
	}
	return count, nil
}
