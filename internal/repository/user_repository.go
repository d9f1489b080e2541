package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/utils"
)

// UserRepo provides CRUD access to the `users` table.  Password hashes are
// produced here so callers never handle bcrypt directly.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,created_at,updated_at"

func scanUser(row *sql.Row) (model.User, error) {
	var u model.User
	var role string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt)
	u.Role = model.Role(role)
	return u, err
}

// Create inserts a user and returns its ID.  A duplicate email maps to
// ErrEmailExists (MySQL error 1062 on the unique index).
func (r *UserRepo) Create(ctx context.Context, name, email, password string, role model.Role, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name, email, password_hash, role) VALUES (?,?,?,?)",
		name, email, hash, string(role))
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

// List returns all users ordered by id.  The caller is responsible for the
// admin-only gate on this operation.
func (r *UserRepo) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+userColumns+" FROM users ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.User, 0)
	for rows.Next() {
		var u model.User
		var role string
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		u.Role = model.Role(role)
		out = append(out, u)
	}
	return out, rows.Err()
}

// UserPatch carries the optional fields of a user update.  Nil fields are
// left untouched.  Password, when set, is the plain text to be re-hashed.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
}

// Update applies a patch to a user row.  A duplicate email maps to
// ErrEmailExists.  It returns sql.ErrNoRows when the user does not exist.
func (r *UserRepo) Update(ctx context.Context, id uint64, patch UserPatch, bcryptCost int) error {
	set := make([]string, 0, 3)
	args := make([]any, 0, 4)
	if patch.Name != nil {
		set = append(set, "name=?")
		args = append(args, *patch.Name)
	}
	if patch.Email != nil {
		set = append(set, "email=?")
		args = append(args, strings.ToLower(strings.TrimSpace(*patch.Email)))
	}
	if patch.Password != nil {
		hash, err := utils.HashPassword(*patch.Password, bcryptCost)
		if err != nil {
			return err
		}
		set = append(set, "password_hash=?")
		args = append(args, hash)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrEmailExists
		}
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		// Either the row is missing or the patch was a no-op; distinguish.
		var exists bool
		if qerr := r.DB.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM users WHERE id=?)", id).Scan(&exists); qerr == nil && !exists {
			return sql.ErrNoRows
		}
	}
	return err
}

// Delete removes a user row.  Returns sql.ErrNoRows when absent.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.DB.ExecContext(ctx, "DELETE FROM users WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}
