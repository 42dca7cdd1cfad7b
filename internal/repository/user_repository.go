package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/css-intel/courtevent/internal/model"
	"github.com/css-intel/courtevent/internal/utils"
)

// UserRepo persists profiles (the 'profiles' table).
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// Create inserts a profile and returns its generated ID.
func (r *UserRepo) Create(ctx context.Context, email, fullName, password, role string, cost int) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return "", err
	}
	id := uuid.NewString()
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO profiles (id, email, full_name, password_hash, role) VALUES (?,?,?,?,?)",
		id, email, fullName, hash, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return "", ErrEmailExists
		}
		return "", err
	}
	return id, nil
}

// GetByEmail fetches a profile by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.Profile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var p model.Profile
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,full_name,password_hash,role,is_active,created_at,updated_at FROM profiles WHERE email=? LIMIT 1",
		email).Scan(&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &p.Role, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// GetByID fetches a profile by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (model.Profile, error) {
	var p model.Profile
	err := r.DB.QueryRowContext(ctx,
		"SELECT id,email,full_name,password_hash,role,is_active,created_at,updated_at FROM profiles WHERE id=? LIMIT 1",
		id).Scan(&p.ID, &p.Email, &p.FullName, &p.PasswordHash, &p.Role, &p.IsActive, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}
