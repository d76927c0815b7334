package store

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"

	"editflow.app/server/core/db"
	"editflow.app/server/internal/model"
)

const userColumns = `id, username, email, role, tokens, suspended, created_at, updated_at`

type userStore struct {
	db db.DBTX
}

func newUserStore(conn db.DBTX) UserStore {
	return &userStore{db: conn}
}

func (s *userStore) GetByID(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return user, nil
}

func (s *userStore) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(username) = lower($1)`, username)
	user, err := scanUser(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return user, nil
}

func (s *userStore) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, strings.ToLower(email))
	user, err := scanUser(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return user, nil
}

func (s *userStore) Create(ctx context.Context, user *model.User) error {
	const query = `
		INSERT INTO users (id, username, email, role, tokens)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	row := s.db.QueryRow(ctx, query, user.ID, user.Username, user.Email, string(user.Role), user.Tokens)
	created, err := scanUser(row)
	if err != nil {
		return mapErr(err)
	}
	*user = *created
	return nil
}

func (s *userStore) List(ctx context.Context, limit, offset int32) ([]model.User, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanAll(rows, scanUser)
}

func (s *userStore) SetRole(ctx context.Context, id int64, role model.Role) (*model.User, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE users SET role = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, string(role))
	user, err := scanUser(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return user, nil
}

func (s *userStore) SetSuspended(ctx context.Context, id int64, suspended bool) (*model.User, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE users SET suspended = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+userColumns, id, suspended)
	user, err := scanUser(row)
	if err != nil {
		return nil, mapErr(err)
	}
	return user, nil
}

func (s *userStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	var role string
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &role, &u.Tokens, &u.Suspended, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}
