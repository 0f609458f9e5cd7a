package auth

import (
	"context"
	"database/sql"
	"errors"

	"github.com/frahmantamala/attendance-management/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialsByLogin(ctx context.Context, login string) (*auth.Credentials, error) {
	var creds auth.Credentials
	query := `SELECT id, numeric_id, password_hash, status FROM employees WHERE username = ? OR email = ? LIMIT 1`

	row := r.db.WithContext(ctx).Raw(query, login, login).Row()
	if err := row.Scan(&creds.UserID, &creds.NumericID, &creds.PasswordHash, &creds.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &creds, nil
}

func (r *Repository) GetUserByID(ctx context.Context, userID int64) (*auth.User, error) {
	var user auth.User
	query := `SELECT id, numeric_id, name, username, email, department, status FROM employees WHERE id = ?`

	row := r.db.WithContext(ctx).Raw(query, userID).Row()
	if err := row.Scan(&user.ID, &user.NumericID, &user.Name, &user.Username, &user.Email, &user.Department, &user.Status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
