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

package identity

import (
	"context"
	"errors"
	"time"
)

// Domain errors
var (
	ErrAccountNotFound      = errors.New("account not found")
	ErrAccountAlreadyExists = errors.New("account already exists")
	ErrInvalidEmail         = errors.New("invalid email address")
	ErrLinkTokenNotFound    = errors.New("sign-in link not found")
	ErrLinkTokenExpired     = errors.New("sign-in link expired")
	ErrLinkTokenInvalid     = errors.New("sign-in link invalid")
)

// ClaimCurrentTenantID is the custom claim naming the caller's current
// tenant. It is written only by the tenant core (switch or first-tenant
// bootstrap) and read by every authorization check.
const ClaimCurrentTenantID = "currentTenantId"

// Account is an identity owned by the provider. UID is stable and
// immutable; claims are mutated only through SetCustomClaims.
type Account struct {
	UID           string
	Email         string
	DisplayName   string
	EmailVerified bool
	Claims        map[string]any
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// CurrentTenantID returns the currentTenantId claim, or "" when unset.
func (a *Account) CurrentTenantID() string {
	if a == nil || a.Claims == nil {
		return ""
	}
	if v, ok := a.Claims[ClaimCurrentTenantID].(string); ok {
		return v
	}
	return ""
}

// Repository defines the interface for account persistence.
type Repository interface {
	// Create creates a new account.
	Create(ctx context.Context, account *Account) error

	// GetByUID retrieves an account by UID, or ErrAccountNotFound.
	GetByUID(ctx context.Context, uid string) (*Account, error)

	// GetByEmail retrieves an account by email, or ErrAccountNotFound.
	GetByEmail(ctx context.Context, email string) (*Account, error)

	// UpdateClaims overwrites the custom claims map of an account.
	UpdateClaims(ctx context.Context, uid string, claims map[string]any) error

	// SetEmailVerified updates the email verification flag.
	SetEmailVerified(ctx context.Context, uid string, verified bool) error
}

// LinkTokenRepository stores hashed passwordless sign-in tokens.
type LinkTokenRepository interface {
	// Put stores the token hash for an email, replacing any pending token.
	Put(ctx context.Context, email, tokenHash string, expiresAt time.Time) error

	// Take removes and returns the pending token hash for an email, making
	// every link single-use. Returns ErrLinkTokenNotFound when none is
	// pending.
	Take(ctx context.Context, email string) (tokenHash string, expiresAt time.Time, err error)
}
