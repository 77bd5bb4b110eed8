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
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/anzenboard/anzenboard/internal/identity"
)

// LinkTokenRepository implements identity.LinkTokenRepository
type LinkTokenRepository struct {
	db *DB
}

// NewLinkTokenRepository creates a new link token repository
func NewLinkTokenRepository(db *DB) *LinkTokenRepository {
	return &LinkTokenRepository{db: db}
}

// Put stores the token hash for an email, replacing any pending token
func (r *LinkTokenRepository) Put(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	_, err := r.db.pool.Exec(ctx, `
		INSERT INTO link_tokens (email, token_hash, expires_at, created_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (email) DO UPDATE SET
			token_hash = EXCLUDED.token_hash,
			expires_at = EXCLUDED.expires_at,
			created_at = NOW()
	`, email, tokenHash, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to store link token: %w", err)
	}
	return nil
}

// Take removes and returns the pending token hash for an email. The
// DELETE ... RETURNING keeps consumption atomic so a link never verifies
// twice.
func (r *LinkTokenRepository) Take(ctx context.Context, email string) (string, time.Time, error) {
	var tokenHash string
	var expiresAt time.Time

	err := r.db.pool.QueryRow(ctx, `
		DELETE FROM link_tokens WHERE email = $1
		RETURNING token_hash, expires_at
	`, email).Scan(&tokenHash, &expiresAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return "", time.Time{}, identity.ErrLinkTokenNotFound
		}
		return "", time.Time{}, fmt.Errorf("failed to take link token: %w", err)
	}
	return tokenHash, expiresAt, nil
}
