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

// Package callable defines the wire-level error taxonomy for the callable
// endpoints. Every backend operation maps its failures onto one of these
// codes before the error leaves the process.
package callable

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes surfaced to callers.
const (
	CodeUnauthenticated  = "unauthenticated"
	CodePermissionDenied = "permission-denied"
	CodeInvalidArgument  = "invalid-argument"
	CodeAlreadyExists    = "already-exists"
	CodeInternal         = "internal"
)

// Error is a callable-protocol error carrying a stable code and a
// human-readable message.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("callable error: %s (%s)", e.Code, e.Message)
}

// NewError creates a new callable error.
func NewError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Unauthenticated reports a missing or unverified caller identity.
func Unauthenticated(message string) *Error {
	return NewError(CodeUnauthenticated, message)
}

// PermissionDenied reports an authenticated caller lacking the required role.
func PermissionDenied(message string) *Error {
	return NewError(CodePermissionDenied, message)
}

// InvalidArgument reports malformed or missing request input.
func InvalidArgument(message string) *Error {
	return NewError(CodeInvalidArgument, message)
}

// AlreadyExists reports a uniqueness conflict.
func AlreadyExists(message string) *Error {
	return NewError(CodeAlreadyExists, message)
}

// Internal wraps an unexpected failure, appending the underlying cause to
// the message the way the callable protocol expects.
func Internal(message string, cause error) *Error {
	if cause != nil {
		message = fmt.Sprintf("%s: %v", message, cause)
	}
	return NewError(CodeInternal, message)
}

// FromError normalizes any error into a callable Error. Non-callable errors
// become CodeInternal with the original text appended.
func FromError(err error) *Error {
	var ce *Error
	if errors.As(err, &ce) {
		return ce
	}
	return Internal("unexpected error", err)
}

// HTTPStatus maps an error code to its transport status.
func HTTPStatus(code string) int {
	switch code {
	case CodeUnauthenticated:
		return http.StatusUnauthorized
	case CodePermissionDenied:
		return http.StatusForbidden
	case CodeInvalidArgument:
		return http.StatusBadRequest
	case CodeAlreadyExists:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
