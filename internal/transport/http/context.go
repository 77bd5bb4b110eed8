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
	"context"

	"github.com/anzenboard/anzenboard/internal/claims"
)

type contextKey string

const identityKey contextKey = "identity_token"

// GetIdentity retrieves the verified identity token from context, or nil
// when the request is unauthenticated.
func GetIdentity(ctx context.Context) *claims.IdentityToken {
	if val, ok := ctx.Value(identityKey).(*claims.IdentityToken); ok {
		return val
	}
	return nil
}

func withIdentity(ctx context.Context, token *claims.IdentityToken) context.Context {
	return context.WithValue(ctx, identityKey, token)
}
