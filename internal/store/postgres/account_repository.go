// Copyright 2026 The Anzenboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/anzenboard/anzenboard/internal/identity"
)

// AccountRepository implements identity.Repository
type AccountRepository struct {
	db *DB
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *DB) *AccountRepository {
	return &AccountRepository{db: db}
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *identity.Account) error {
	claims, err := json.Marshal(claimsOrEmpty(account.Claims))
	if err != nil {
		return fmt.Errorf("failed to encode claims: %w", err)
	}

	now := time.Now()
	_, err = r.db.pool.Exec(ctx, `
		INSERT INTO accounts (uid, email, display_name, email_verified, claims, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, account.UID, account.Email, account.DisplayName, account.EmailVerified, claims, now, now)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return identity.ErrAccountAlreadyExists
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	account.CreatedAt = now
	account.UpdatedAt = now
	return nil
}

// GetByUID retrieves an account by UID
func (r *AccountRepository) GetByUID(ctx context.Context, uid string) (*identity.Account, error) {
	return r.getOne(ctx, `
		SELECT uid, email, display_name, email_verified, claims, created_at, updated_at
		FROM accounts WHERE uid = $1
	`, uid)
}

// GetByEmail retrieves an account by email
func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*identity.Account, error) {
	return r.getOne(ctx, `
		SELECT uid, email, display_name, email_verified, claims, created_at, updated_at
		FROM accounts WHERE email = $1
	`, email)
}

// UpdateClaims overwrites the custom claims map of an account
func (r *AccountRepository) UpdateClaims(ctx context.Context, uid string, claims map[string]any) error {
	raw, err := json.Marshal(claimsOrEmpty(claims))
	if err != nil {
		return fmt.Errorf("failed to encode claims: %w", err)
	}

	result, err := r.db.pool.Exec(ctx, `
		UPDATE accounts SET claims = $2, updated_at = NOW()
		WHERE uid = $1
	`, uid, raw)
	if err != nil {
		return fmt.Errorf("failed to update claims: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrAccountNotFound
	}
	return nil
}

// SetEmailVerified updates the email verification flag
func (r *AccountRepository) SetEmailVerified(ctx context.Context, uid string, verified bool) error {
	result, err := r.db.pool.Exec(ctx, `
		UPDATE accounts SET email_verified = $2, updated_at = NOW()
		WHERE uid = $1
	`, uid, verified)
	if err != nil {
		return fmt.Errorf("failed to update email verification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return identity.ErrAccountNotFound
	}
	return nil
}

func (r *AccountRepository) getOne(ctx context.Context, query, arg string) (*identity.Account, error) {
	var account identity.Account
	var rawClaims []byte

	err := r.db.pool.QueryRow(ctx, query, arg).Scan(
		&account.UID, &account.Email, &account.DisplayName, &account.EmailVerified,
		&rawClaims, &account.CreatedAt, &account.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, identity.ErrAccountNotFound
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	if err := json.Unmarshal(rawClaims, &account.Claims); err != nil {
		return nil, fmt.Errorf("failed to decode claims: %w", err)
	}
	return &account, nil
}

func claimsOrEmpty(claims map[string]any) map[string]any {
	if claims == nil {
		return map[string]any{}
	}
	return claims
}
