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
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/anzenboard/anzenboard/internal/audit"
	"golang.org/x/crypto/argon2"
)

// LinkTokenHasher hashes sign-in link tokens with Argon2id before they are
// stored. A raw link token is credential-equivalent, so it is never
// persisted in clear text.
type LinkTokenHasher struct {
	memory      uint32
	iterations  uint32
	parallelism uint8
	saltLength  uint32
	keyLength   uint32
}

// NewLinkTokenHasher creates a hasher with Argon2id parameters.
func NewLinkTokenHasher(memory, iterations uint32, parallelism uint8, saltLength, keyLength uint32) *LinkTokenHasher {
	return &LinkTokenHasher{
		memory:      memory,
		iterations:  iterations,
		parallelism: parallelism,
		saltLength:  saltLength,
		keyLength:   keyLength,
	}
}

// Hash hashes a raw token.
// Encoded as: $argon2id$v=19$m=memory,t=iterations,p=parallelism$salt$hash
func (h *LinkTokenHasher) Hash(token string) (string, error) {
	salt := make([]byte, h.saltLength)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("failed to generate salt: %w", err)
	}

	sum := argon2.IDKey([]byte(token), salt, h.iterations, h.memory, h.parallelism, h.keyLength)

	return fmt.Sprintf(
		"$argon2id$v=%d$m=%d,t=%d,p=%d$%s$%s",
		argon2.Version,
		h.memory,
		h.iterations,
		h.parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(sum),
	), nil
}

// Verify verifies a raw token against an encoded hash.
func (h *LinkTokenHasher) Verify(token, encodedHash string) (bool, error) {
	sections := strings.Split(strings.TrimPrefix(encodedHash, "$"), "$")
	if len(sections) != 5 || sections[0] != "argon2id" {
		return false, fmt.Errorf("invalid hash format: got %d sections", len(sections))
	}

	var version int
	if _, err := fmt.Sscanf(sections[1], "v=%d", &version); err != nil {
		return false, fmt.Errorf("invalid version: %w", err)
	}

	var memory, iterations uint32
	var parallelism uint8
	if _, err := fmt.Sscanf(sections[2], "m=%d,t=%d,p=%d", &memory, &iterations, &parallelism); err != nil {
		return false, fmt.Errorf("invalid parameters: %w", err)
	}

	salt, err := base64.RawStdEncoding.DecodeString(sections[3])
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}
	expected, err := base64.RawStdEncoding.DecodeString(sections[4])
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	actual := argon2.IDKey([]byte(token), salt, iterations, memory, parallelism, uint32(len(expected)))

	return subtle.ConstantTimeCompare(actual, expected) == 1, nil
}

// LinkService implements the passwordless email-link sign-in round trip.
type LinkService struct {
	provider    *Provider
	tokens      LinkTokenRepository
	hasher      *LinkTokenHasher
	ttl         time.Duration
	auditLogger audit.Logger
}

// NewLinkService creates a new link sign-in service.
func NewLinkService(
	provider *Provider,
	tokens LinkTokenRepository,
	hasher *LinkTokenHasher,
	ttl time.Duration,
	auditLogger audit.Logger,
) *LinkService {
	return &LinkService{
		provider:    provider,
		tokens:      tokens,
		hasher:      hasher,
		ttl:         ttl,
		auditLogger: auditLogger,
	}
}

// Begin issues a one-time sign-in token for an email and returns the raw
// token for delivery. Only the Argon2id hash is stored; issuing a new link
// replaces any pending one.
func (s *LinkService) Begin(ctx context.Context, email string) (string, error) {
	if !isValidEmail(email) {
		return "", ErrInvalidEmail
	}

	raw := make([]byte, 32)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("failed to generate link token: %w", err)
	}
	token := base64.RawURLEncoding.EncodeToString(raw)

	hash, err := s.hasher.Hash(token)
	if err != nil {
		return "", fmt.Errorf("failed to hash link token: %w", err)
	}

	if err := s.tokens.Put(ctx, email, hash, time.Now().Add(s.ttl)); err != nil {
		return "", fmt.Errorf("failed to store link token: %w", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeSignInLinkIssued,
		Resource: "sign_in_link",
		Metadata: map[string]any{"email": email},
	})

	return token, nil
}

// Complete verifies a sign-in token for an email, creating the account on
// first sign-in and marking the email verified. The token is consumed even
// when verification fails.
func (s *LinkService) Complete(ctx context.Context, email, token string) (*Account, error) {
	hash, expiresAt, err := s.tokens.Take(ctx, email)
	if err != nil {
		return nil, err
	}
	if time.Now().After(expiresAt) {
		return nil, ErrLinkTokenExpired
	}

	ok, err := s.hasher.Verify(token, hash)
	if err != nil || !ok {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeSignInLinkRejected,
			Resource: "sign_in_link",
			Metadata: map[string]any{"email": email},
		})
		return nil, ErrLinkTokenInvalid
	}

	account, err := s.provider.GetByEmail(ctx, email)
	if err == ErrAccountNotFound {
		account, err = s.provider.Create(ctx, email, "")
	}
	if err != nil {
		return nil, err
	}

	if !account.EmailVerified {
		if err := s.provider.MarkEmailVerified(ctx, account.UID); err != nil {
			return nil, fmt.Errorf("failed to mark email verified: %w", err)
		}
		account.EmailVerified = true
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeSignInLinkVerified,
		ActorID:  account.UID,
		Resource: "sign_in_link",
		Metadata: map[string]any{"email": email},
	})

	return account, nil
}
