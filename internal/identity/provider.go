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
	"fmt"
	"strings"

	"github.com/anzenboard/anzenboard/internal/audit"
	"github.com/anzenboard/anzenboard/internal/id"
)

// Provider is the identity-provider facade: account lookup, creation, and
// custom-claim writes. The claims written here are embedded into every
// identity token minted afterwards; existing tokens keep the old claims
// until refreshed.
type Provider struct {
	repo        Repository
	auditLogger audit.Logger
}

// NewProvider creates a new identity provider.
func NewProvider(repo Repository, auditLogger audit.Logger) *Provider {
	return &Provider{repo: repo, auditLogger: auditLogger}
}

// GetByEmail retrieves an account by email.
func (p *Provider) GetByEmail(ctx context.Context, email string) (*Account, error) {
	return p.repo.GetByEmail(ctx, email)
}

// GetByUID retrieves an account by UID.
func (p *Provider) GetByUID(ctx context.Context, uid string) (*Account, error) {
	return p.repo.GetByUID(ctx, uid)
}

// Create provisions a new, unverified account.
func (p *Provider) Create(ctx context.Context, email, displayName string) (*Account, error) {
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	if existing, err := p.repo.GetByEmail(ctx, email); err == nil && existing != nil {
		return nil, ErrAccountAlreadyExists
	}

	account := &Account{
		UID:           id.NewUUIDv7(),
		Email:         email,
		DisplayName:   displayName,
		EmailVerified: false,
		Claims:        map[string]any{},
	}
	if err := p.repo.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("failed to create account: %w", err)
	}

	p.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAccountCreated,
		ActorID:  account.UID,
		Resource: "account",
		Metadata: map[string]any{"email": email},
	})

	return account, nil
}

// SetCustomClaims overwrites an account's custom claims. Tokens already
// issued do not reflect the change until reissued.
func (p *Provider) SetCustomClaims(ctx context.Context, uid string, claims map[string]any) error {
	if _, err := p.repo.GetByUID(ctx, uid); err != nil {
		return err
	}
	if claims == nil {
		claims = map[string]any{}
	}
	return p.repo.UpdateClaims(ctx, uid, claims)
}

// MarkEmailVerified flags an account's email as verified.
func (p *Provider) MarkEmailVerified(ctx context.Context, uid string) error {
	return p.repo.SetEmailVerified(ctx, uid, true)
}

func isValidEmail(email string) bool {
	at := strings.IndexByte(email, '@')
	return at > 0 && at < len(email)-1 && len(email) < 255
}
