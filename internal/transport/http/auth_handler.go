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

package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/anzenboard/anzenboard/internal/identity"
	"github.com/anzenboard/anzenboard/internal/observability/logger"
)

type beginSignInRequest struct {
	Email string `json:"email"`
}

// BeginSignIn issues a passwordless sign-in link token for an email.
// The response never reveals whether the email is already registered.
func (h *Handler) BeginSignIn(w http.ResponseWriter, r *http.Request) {
	var req beginSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" {
		respondError(w, http.StatusBadRequest, "email is required")
		return
	}

	token, err := h.linkService.Begin(r.Context(), req.Email)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to issue sign-in link", logger.Error(err), logger.Email(req.Email))
		respondError(w, http.StatusInternalServerError, "failed to issue sign-in link")
		return
	}

	// The token is returned in-band here; a mail delivery worker would
	// normally pick it up instead.
	respondJSON(w, http.StatusOK, map[string]string{
		"email": req.Email,
		"token": token,
	})
}

type completeSignInRequest struct {
	Email string `json:"email"`
	Token string `json:"token"`
}

// CompleteSignIn verifies a sign-in link token and mints an id token.
func (h *Handler) CompleteSignIn(w http.ResponseWriter, r *http.Request) {
	var req completeSignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Email == "" || req.Token == "" {
		respondError(w, http.StatusBadRequest, "email and token are required")
		return
	}

	account, err := h.linkService.Complete(r.Context(), req.Email, req.Token)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrLinkTokenNotFound),
			errors.Is(err, identity.ErrLinkTokenExpired),
			errors.Is(err, identity.ErrLinkTokenInvalid):
			respondError(w, http.StatusUnauthorized, "invalid or expired sign-in link")
		default:
			slog.ErrorContext(r.Context(), "failed to complete sign-in", logger.Error(err))
			respondError(w, http.StatusInternalServerError, "failed to complete sign-in")
		}
		return
	}

	idToken, err := h.issuer.Mint(account)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to mint id token", logger.Error(err), logger.UserID(account.UID))
		respondError(w, http.StatusInternalServerError, "failed to mint id token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"uid":      account.UID,
		"email":    account.Email,
		"id_token": idToken,
	})
}

// Refresh mints a fresh id token for the authenticated caller. Claim
// changes made by switchTenant only become visible to the client through
// this endpoint.
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	caller := GetIdentity(r.Context())
	if caller == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	account, err := h.identityProvider.GetByUID(r.Context(), caller.UID)
	if err != nil {
		if errors.Is(err, identity.ErrAccountNotFound) {
			respondError(w, http.StatusUnauthorized, "account no longer exists")
			return
		}
		slog.ErrorContext(r.Context(), "failed to load account", logger.Error(err), logger.UserID(caller.UID))
		respondError(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	idToken, err := h.issuer.Mint(account)
	if err != nil {
		slog.ErrorContext(r.Context(), "failed to mint id token", logger.Error(err), logger.UserID(caller.UID))
		respondError(w, http.StatusInternalServerError, "failed to refresh token")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"uid":      account.UID,
		"id_token": idToken,
	})
}
