package db

import (
	"context"
	"database/sql"

	"github.com/babushkian/OTBot/model"
	"github.com/cockroachdb/errors"
)

// UserRepository stores chat users and their roles.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Get retrieves a user. If the user is not in the table, nil, nil is returned.
func (r *UserRepository) Get(ctx context.Context, userID string) (*model.User, error) {
	var (
		user model.User
		role string
	)
	err := r.db.QueryRowContext(ctx, "SELECT user_id, name, role FROM users WHERE user_id = ?", userID).
		Scan(&user.ID, &user.Name, &role)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, model.Persistence(err, "get user")
	}
	user.Role = model.Role(role)
	return &user, nil
}

// Upsert creates the user or updates its name and role.
func (r *UserRepository) Upsert(ctx context.Context, user model.User) error {
	if user.Role == "" {
		user.Role = model.RoleUser
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO users(user_id, name, role) VALUES(?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET name = excluded.name, role = excluded.role`,
		user.ID, user.Name, string(user.Role))
	return model.Persistence(err, "upsert user")
}

// Touch records a user seen in chat without changing an existing role.
func (r *UserRepository) Touch(ctx context.Context, userID, name string) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO users(user_id, name, role) VALUES(?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET name = excluded.name`,
		userID, name, string(model.RoleUser))
	return model.Persistence(err, "touch user")
}

// Delete removes a stored user. A missing user is ErrNotFound.
func (r *UserRepository) Delete(ctx context.Context, userID string) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM users WHERE user_id = ?", userID)
	if err != nil {
		return model.Persistence(err, "delete user")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return model.Persistence(err, "delete user")
	}
	if n == 0 {
		return errors.Mark(errors.Newf("user %s not found", userID), model.ErrNotFound)
	}
	return nil
}

// ListByRole returns the users holding role.
func (r *UserRepository) ListByRole(ctx context.Context, role model.Role) ([]model.User, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT user_id, name FROM users WHERE role = ? ORDER BY user_id", string(role))
	if err != nil {
		return nil, model.Persistence(err, "list users")
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		u := model.User{Role: role}
		if err := rows.Scan(&u.ID, &u.Name); err != nil {
			return nil, model.Persistence(err, "scan user")
		}
		users = append(users, u)
	}
	return users, model.Persistence(rows.Err(), "list users")
}
