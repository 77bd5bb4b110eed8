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

// Package guard enforces role requirements on navigation. It is a pure
// function of the declared requirement and the session snapshot; on
// failure the navigation is cancelled and a notice is surfaced, nothing
// more.
package guard

import "github.com/anzenboard/anzenboard/internal/session"

// Requirement is a route's declared role requirement.
type Requirement int

const (
	// RequireNone lets anyone through.
	RequireNone Requirement = iota

	// RequireApplicationManager needs a signed-in application manager or
	// tenant manager.
	RequireApplicationManager

	// RequireTenantManager needs a signed-in tenant manager.
	RequireTenantManager
)

// Notice is the user-facing explanation for a cancelled navigation.
type Notice struct {
	Title  string
	Detail string
}

// Decision is the outcome of a guard check.
type Decision struct {
	Allowed bool
	Notice  Notice
}

// Check evaluates a requirement against the current session. A reload that
// lost the role resolution fails closed: the restored session carries no
// role until the provider round trip completes.
func Check(req Requirement, snap session.Snapshot) Decision {
	switch req {
	case RequireApplicationManager:
		if !snap.IsLoggedIn() || !snap.IsApplicationManager() {
			return denied("this feature needs the application manager or tenant manager role")
		}
	case RequireTenantManager:
		if !snap.IsLoggedIn() || !snap.IsTenantManager() {
			return denied("this feature needs the tenant manager role")
		}
	}
	return Decision{Allowed: true}
}

func denied(detail string) Decision {
	return Decision{
		Allowed: false,
		Notice: Notice{
			Title:  "navigation blocked or insufficient permissions",
			Detail: "role information may have been lost by a reload, or " + detail,
		},
	}
}
