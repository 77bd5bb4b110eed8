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

// Package claims mints and verifies the signed identity token. The token
// embeds the application claim currentTenantId; the backend trusts it
// without a storage round trip, which is why claim changes only become
// visible after the caller refreshes its token.
package claims

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/anzenboard/anzenboard/internal/identity"
	"github.com/golang-jwt/jwt/v5"
)

// Verification errors
var (
	ErrTokenInvalid = errors.New("identity token invalid")
	ErrTokenExpired = errors.New("identity token expired")
)

// IdentityToken is the verified content of a signed identity token.
type IdentityToken struct {
	UID             string
	Email           string
	EmailVerified   bool
	CurrentTenantID string
	ExpiresAt       time.Time
}

// Issuer mints and verifies RS256-signed identity tokens.
type Issuer struct {
	issuer     string
	ttl        time.Duration
	signingKey *rsa.PrivateKey
	kid        string
}

// NewIssuer creates an issuer with a freshly generated signing key.
// Key persistence and rotation are out of scope; a restart invalidates
// outstanding tokens, forcing a clean re-sign-in.
func NewIssuer(issuerURL string, ttl time.Duration) (*Issuer, error) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		return nil, err
	}

	// Deterministic kid from the public modulus.
	hash := sha256.Sum256(key.PublicKey.N.Bytes())
	kid := base64.RawURLEncoding.EncodeToString(hash[:16])

	return &Issuer{
		issuer:     issuerURL,
		ttl:        ttl,
		signingKey: key,
		kid:        kid,
	}, nil
}

// Mint issues a signed identity token for an account, embedding its
// current custom claims.
func (i *Issuer) Mint(account *identity.Account) (string, error) {
	now := time.Now()

	mapClaims := jwt.MapClaims{
		"iss":            i.issuer,
		"sub":            account.UID,
		"email":          account.Email,
		"email_verified": account.EmailVerified,
		"iat":            now.Unix(),
		"exp":            now.Add(i.ttl).Unix(),
	}
	if tenantID := account.CurrentTenantID(); tenantID != "" {
		mapClaims[identity.ClaimCurrentTenantID] = tenantID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, mapClaims)
	token.Header["kid"] = i.kid

	return token.SignedString(i.signingKey)
}

// Verify parses and validates a signed identity token.
func (i *Issuer) Verify(tokenString string) (*IdentityToken, error) {
	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return &i.signingKey.PublicKey, nil
	}, jwt.WithIssuer(i.issuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}

	mapClaims, ok := parsed.Claims.(jwt.MapClaims)
	if !ok || !parsed.Valid {
		return nil, ErrTokenInvalid
	}

	sub, _ := mapClaims["sub"].(string)
	if sub == "" {
		return nil, ErrTokenInvalid
	}

	token := &IdentityToken{UID: sub}
	token.Email, _ = mapClaims["email"].(string)
	token.EmailVerified, _ = mapClaims["email_verified"].(bool)
	token.CurrentTenantID, _ = mapClaims[identity.ClaimCurrentTenantID].(string)
	if exp, err := mapClaims.GetExpirationTime(); err == nil && exp != nil {
		token.ExpiresAt = exp.Time
	}

	return token, nil
}
