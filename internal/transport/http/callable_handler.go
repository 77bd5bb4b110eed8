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
	"log/slog"
	"net/http"
	"time"

	"github.com/anzenboard/anzenboard/internal/callable"
	"github.com/anzenboard/anzenboard/internal/claims"
	"github.com/anzenboard/anzenboard/internal/observability/logger"
	"github.com/anzenboard/anzenboard/internal/tenant"
)

// callableRequest is the wire envelope of a callable invocation.
type callableRequest struct {
	Data json.RawMessage `json:"data"`
}

type callableError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type callableResponse struct {
	Result any            `json:"result,omitempty"`
	Error  *callableError `json:"error,omitempty"`
}

type callableFunc func(r *http.Request, caller *claims.IdentityToken, data json.RawMessage) (any, error)

// callable wraps a function in the envelope protocol: the request body
// carries {"data": ...}, the response carries {"result": ...} on success
// or {"error": {"code", "message"}} with a matching HTTP status.
func (h *Handler) callable(name string, fn callableFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		var req callableRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			h.respondCallableError(w, r, name, start, callable.InvalidArgument("invalid request body"))
			return
		}

		caller := GetIdentity(r.Context())
		result, err := fn(r, caller, req.Data)
		if err != nil {
			h.respondCallableError(w, r, name, start, err)
			return
		}

		h.metrics.record(r.Context(), name, "", time.Since(start))
		respondJSON(w, http.StatusOK, callableResponse{Result: result})
	}
}

func (h *Handler) respondCallableError(w http.ResponseWriter, r *http.Request, name string, start time.Time, err error) {
	cerr := callable.FromError(err)

	slog.WarnContext(r.Context(), "callable_failed",
		logger.Callable(name),
		logger.ErrorCode(cerr.Code),
		logger.Error(err),
	)

	h.metrics.record(r.Context(), name, cerr.Code, time.Since(start))
	respondJSON(w, callable.HTTPStatus(cerr.Code), callableResponse{
		Error: &callableError{Code: cerr.Code, Message: cerr.Message},
	})
}

type switchTenantData struct {
	TenantID string `json:"switchTargetTenantId"`
}

func (h *Handler) callSwitchTenant(r *http.Request, caller *claims.IdentityToken, data json.RawMessage) (any, error) {
	var in switchTenantData
	if len(data) > 0 {
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, callable.InvalidArgument("invalid switchTenant data")
		}
	}

	if err := h.tenantService.SwitchTenant(r.Context(), caller, in.TenantID); err != nil {
		return nil, err
	}

	// The new claim takes effect on the next minted token; clients call
	// /auth/refresh right after a successful switch.
	return map[string]any{"tenantId": in.TenantID}, nil
}

func (h *Handler) callCreateUser(r *http.Request, caller *claims.IdentityToken, data json.RawMessage) (any, error) {
	var in tenant.CreateUserInput
	if len(data) > 0 {
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, callable.InvalidArgument("invalid createUser data")
		}
	}

	if err := h.tenantService.CreateUser(r.Context(), caller, in); err != nil {
		return nil, err
	}
	return map[string]any{"email": in.User.Email}, nil
}

func (h *Handler) callUpdateUser(r *http.Request, caller *claims.IdentityToken, data json.RawMessage) (any, error) {
	var in tenant.UpdateUserInput
	if len(data) > 0 {
		if err := json.Unmarshal(data, &in); err != nil {
			return nil, callable.InvalidArgument("invalid updateUser data")
		}
	}

	if err := h.tenantService.UpdateUser(r.Context(), caller, in); err != nil {
		return nil, err
	}
	return map[string]any{"id": in.User.ID}, nil
}
