package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"tharo/api/models"
)

type AdminStore struct {
	db *sql.DB
}

// NewAdminStore creates a new AdminStore instance.
func NewAdminStore(db *sql.DB) *AdminStore {
	return &AdminStore{db: db}
}

// CreateAdmin inserts a new admin account.
func (s *AdminStore) CreateAdmin(ctx context.Context, email string, hashedPassword []byte) (*models.Admin, error) {
	admin := &models.Admin{}
	query := `
		INSERT INTO admins (email, hashed_password)
		VALUES ($1, $2)
		RETURNING id, email, created_at, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query, email, hashedPassword).Scan(
		&admin.ID,
		&admin.Email,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		if err.Error() == `pq: duplicate key value violates unique constraint "idx_admins_email"` ||
			err.Error() == `pq: duplicate key value violates unique constraint "admins_email_key"` {
			return nil, fmt.Errorf("admin with email '%s' already exists", email)
		}
		return nil, fmt.Errorf("failed to create admin: %w", err)
	}

	log.Printf("Admin created in DB: ID=%d, Email=%s", admin.ID, admin.Email)
	return admin, nil
}

func (s *AdminStore) GetAdminByEmail(ctx context.Context, email string) (*models.Admin, error) {
	admin := &models.Admin{}
	query := `
		SELECT id, email, hashed_password, created_at, updated_at
		FROM admins
		WHERE email = $1;
	`
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&admin.ID,
		&admin.Email,
		&admin.HashedPassword,
		&admin.CreatedAt,
		&admin.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("admin with email '%s' not found", email)
		}
		return nil, fmt.Errorf("failed to get admin by email: %w", err)
	}

	return admin, nil
}
