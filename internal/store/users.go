package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"golang.org/x/crypto/bcrypt"

	"github.com/creeeasy/online-store-sub000/internal/database"
	"github.com/creeeasy/online-store-sub000/pkg/models"
)

func (s *Store) CreateUser(ctx context.Context, email, username, password string) (*models.AuthUser, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &models.AuthUser{
		ID:        uuid.New().String(),
		Email:     email,
		Username:  username,
		Role:      models.RoleAdmin,
		CreatedAt: time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO users (id, email, username, role, password_hash, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		user.ID, user.Email, user.Username, user.Role, string(hash), user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, database.ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Authenticate looks up the user by email and checks the password. The same
// error comes back for a missing user and a wrong password.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.AuthUser, error) {
	user := &models.AuthUser{}
	var hash string

	err := s.db.QueryRowContext(ctx,
		`SELECT id, email, username, role, password_hash, created_at FROM users WHERE email = $1`,
		email).Scan(&user.ID, &user.Email, &user.Username, &user.Role, &hash, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("authenticate: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, database.ErrInvalidCredentials
	}

	return user, nil
}

// CreateSession mints an opaque bearer token for the user.
func (s *Store) CreateSession(ctx context.Context, userID string, ttl time.Duration) (string, error) {
	token := uuid.New().String()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO sessions (token, user_id, expires_at) VALUES ($1, $2, $3)`,
		token, userID, time.Now().UTC().Add(ttl))
	if err != nil {
		return "", fmt.Errorf("create session: %w", err)
	}
	return token, nil
}

// UserByToken resolves a bearer token to its user, rejecting expired tokens.
func (s *Store) UserByToken(ctx context.Context, token string) (*models.AuthUser, error) {
	user := &models.AuthUser{}

	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.email, u.username, u.role, u.created_at
		FROM sessions s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > NOW()`,
		token).Scan(&user.ID, &user.Email, &user.Username, &user.Role, &user.CreatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, database.ErrInvalidToken
		}
		return nil, fmt.Errorf("user by token: %w", err)
	}

	return user, nil
}

// RefreshSession replaces a live token with a fresh one atomically.
func (s *Store) RefreshSession(ctx context.Context, token string, ttl time.Duration) (string, *models.AuthUser, error) {
	user, err := s.UserByToken(ctx, token)
	if err != nil {
		return "", nil, err
	}

	newToken := uuid.New().String()
	_, err = s.db.ExecContext(ctx,
		`UPDATE sessions SET token = $2, expires_at = $3 WHERE token = $1`,
		token, newToken, time.Now().UTC().Add(ttl))
	if err != nil {
		return "", nil, fmt.Errorf("refresh session: %w", err)
	}

	return newToken, user, nil
}

// DeleteSession invalidates a token. Unknown tokens are not an error; logout
// must succeed regardless.
func (s *Store) DeleteSession(ctx context.Context, token string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE token = $1`, token); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
