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

package tenant

import (
	"context"
	"errors"
	"fmt"

	"github.com/anzenboard/anzenboard/internal/audit"
	"github.com/anzenboard/anzenboard/internal/callable"
	"github.com/anzenboard/anzenboard/internal/claims"
	"github.com/anzenboard/anzenboard/internal/docstore"
	"github.com/anzenboard/anzenboard/internal/identity"
)

// Service provides the tenant-scoped authorization operations. It is the
// sole writer of the currentTenantId claim.
type Service struct {
	store       docstore.Store
	idp         *identity.Provider
	auditLogger audit.Logger
}

// NewService creates a new tenant service.
func NewService(store docstore.Store, idp *identity.Provider, auditLogger audit.Logger) *Service {
	return &Service{
		store:       store,
		idp:         idp,
		auditLogger: auditLogger,
	}
}

// UserInput is the user payload of the create/update operations. IsActive
// is a pointer so that an omitted field is distinguishable from false.
type UserInput struct {
	ID       string `json:"_id,omitempty"`
	Email    string `json:"email"`
	Name     string `json:"name"`
	Location string `json:"location"`
	IsActive *bool  `json:"isActive"`
}

// CreateUserInput is the input of the createUser operation.
type CreateUserInput struct {
	User UserInput `json:"user"`
	Role Role      `json:"role"`
}

// UpdateUserInput is the input of the updateUser operation.
type UpdateUserInput struct {
	User UserInput `json:"user"`
	Role Role      `json:"role"`
}

// SwitchTenant grants the target tenant as the caller's current tenant if
// and only if the caller holds a non-null role there.
//
// The claim overwrite invalidates nothing server-side: tokens already held
// by the caller keep the old tenant until refreshed, so callers must
// refresh before relying on the new claim.
func (s *Service) SwitchTenant(ctx context.Context, caller *claims.IdentityToken, targetTenantID string) error {
	if err := requireVerifiedCaller(caller); err != nil {
		return err
	}
	if targetTenantID == "" {
		return callable.InvalidArgument("switchTargetTenantId is required")
	}

	assignment, err := s.Assignment(ctx, caller.UID, targetTenantID)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return callable.Internal("failed to read role assignment", err)
	}
	if err != nil || !assignment.Role.Grants() {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeTenantSwitchDenied,
			TenantID: targetTenantID,
			ActorID:  caller.UID,
			Resource: "tenant",
		})
		return callable.PermissionDenied("tenant or role information invalid")
	}

	err = s.idp.SetCustomClaims(ctx, caller.UID, map[string]any{
		identity.ClaimCurrentTenantID: targetTenantID,
	})
	if err != nil {
		return callable.Internal("failed to update current tenant claim", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeTenantSwitched,
		TenantID: targetTenantID,
		ActorID:  caller.UID,
		Resource: "tenant",
	})

	return nil
}

// CreateUser provisions a new or existing identity into the caller's
// current tenant with a role. Only tenant managers may call it.
func (s *Service) CreateUser(ctx context.Context, caller *claims.IdentityToken, input CreateUserInput) error {
	tenantID, err := s.requireTenantManager(ctx, caller)
	if err != nil {
		return err
	}
	if err := validateUserInput(input.User, input.Role, false); err != nil {
		return err
	}

	isActive := *input.User.IsActive
	role := NormalizeRole(input.Role, isActive)

	account, err := s.idp.GetByEmail(ctx, input.User.Email)
	switch {
	case errors.Is(err, identity.ErrAccountNotFound):
		// First-tenant bootstrap: a brand-new identity starts out in the
		// provisioning tenant.
		account, err = s.idp.Create(ctx, input.User.Email, input.User.Name)
		if err != nil {
			return callable.Internal("failed to create identity", err)
		}
		err = s.idp.SetCustomClaims(ctx, account.UID, map[string]any{
			identity.ClaimCurrentTenantID: tenantID,
		})
		if err != nil {
			return callable.Internal("failed to set current tenant claim", err)
		}
	case err != nil:
		return callable.Internal("failed to look up identity", err)
	default:
		_, err = s.store.Get(ctx, RoleAssignmentPath(account.UID, tenantID))
		if err == nil {
			return callable.AlreadyExists("email already registered")
		}
		if !errors.Is(err, docstore.ErrNotFound) {
			return callable.Internal("failed to check existing registration", err)
		}
	}

	profile := UserProfile{
		Email:    input.User.Email,
		Name:     input.User.Name,
		Location: input.User.Location,
		IsActive: isActive,
	}
	// Two independent writes; a failure in between leaves an orphaned
	// profile that is reconciled manually, never rolled back here.
	if err := Upsert(ctx, s.store, UserProfilePath(tenantID, account.UID), ProfileFields(profile), caller.UID); err != nil {
		return callable.Internal("failed to write user profile", err)
	}
	if err := Upsert(ctx, s.store, RoleAssignmentPath(account.UID, tenantID), AssignmentFields(role), caller.UID); err != nil {
		return callable.Internal("failed to write role assignment", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserProvisioned,
		TenantID: tenantID,
		ActorID:  caller.UID,
		Resource: "user",
		Metadata: map[string]any{"uid": account.UID, "role": string(role)},
	})

	return nil
}

// UpdateUser updates an existing tenant member's profile and role. A
// tenant manager cannot use it to strip their own manager role.
func (s *Service) UpdateUser(ctx context.Context, caller *claims.IdentityToken, input UpdateUserInput) error {
	tenantID, err := s.requireTenantManager(ctx, caller)
	if err != nil {
		return err
	}
	if err := validateUserInput(input.User, input.Role, true); err != nil {
		return err
	}

	isActive := *input.User.IsActive
	role := NormalizeRole(input.Role, isActive)

	if input.User.Email == caller.Email && !role.IsTenantManager() {
		return callable.InvalidArgument(
			"a tenant manager cannot lower their own role; ask another tenant manager to do it")
	}

	profile := UserProfile{
		Name:     input.User.Name,
		Location: input.User.Location,
		IsActive: isActive,
	}
	if err := Upsert(ctx, s.store, UserProfilePath(tenantID, input.User.ID), ProfileUpdateFields(profile), caller.UID); err != nil {
		return callable.Internal("failed to write user profile", err)
	}
	if err := Upsert(ctx, s.store, RoleAssignmentPath(input.User.ID, tenantID), AssignmentFields(role), caller.UID); err != nil {
		return callable.Internal("failed to write role assignment", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeUserUpdated,
		TenantID: tenantID,
		ActorID:  caller.UID,
		Resource: "user",
		Metadata: map[string]any{"uid": input.User.ID, "role": string(role)},
	})

	return nil
}

// Assignment reads the role assignment for (uid, tenantID). Returns
// docstore.ErrNotFound when the user was never added to the tenant.
func (s *Service) Assignment(ctx context.Context, uid, tenantID string) (RoleAssignment, error) {
	doc, err := s.store.Get(ctx, RoleAssignmentPath(uid, tenantID))
	if err != nil {
		return RoleAssignment{}, err
	}
	return AssignmentFromDocument(uid, tenantID, doc), nil
}

// ResolveRole returns the effective role of uid in tenantID. An absent
// assignment resolves to RoleNone.
func (s *Service) ResolveRole(ctx context.Context, uid, tenantID string) (Role, error) {
	assignment, err := s.Assignment(ctx, uid, tenantID)
	if errors.Is(err, docstore.ErrNotFound) {
		return RoleNone, nil
	}
	if err != nil {
		return RoleNone, err
	}
	return assignment.Role, nil
}

// Profile reads a tenant member's profile.
func (s *Service) Profile(ctx context.Context, tenantID, uid string) (UserProfile, error) {
	doc, err := s.store.Get(ctx, UserProfilePath(tenantID, uid))
	if err != nil {
		return UserProfile{}, err
	}
	return ProfileFromDocument(tenantID, uid, doc), nil
}

// ListProfiles lists all member profiles of a tenant.
func (s *Service) ListProfiles(ctx context.Context, tenantID string) ([]UserProfile, error) {
	snaps, err := s.store.List(ctx, UserProfilesPath(tenantID))
	if err != nil {
		return nil, fmt.Errorf("failed to list user profiles: %w", err)
	}
	profiles := make([]UserProfile, 0, len(snaps))
	for _, snap := range snaps {
		profiles = append(profiles, ProfileFromDocument(tenantID, snap.ID, snap.Data))
	}
	return profiles, nil
}

// requireTenantManager verifies the caller's identity and that the stored
// assignment for the caller's current tenant carries the tenant manager
// role. The claim alone is not trusted for role decisions.
func (s *Service) requireTenantManager(ctx context.Context, caller *claims.IdentityToken) (string, error) {
	if err := requireVerifiedCaller(caller); err != nil {
		return "", err
	}
	tenantID := caller.CurrentTenantID
	if tenantID == "" {
		return "", callable.Unauthenticated("no current tenant; sign out and sign in again")
	}

	assignment, err := s.Assignment(ctx, caller.UID, tenantID)
	if err != nil && !errors.Is(err, docstore.ErrNotFound) {
		return "", callable.Internal("failed to read caller role", err)
	}
	if err != nil || !assignment.Role.IsTenantManager() {
		return "", callable.PermissionDenied("tenant manager role is required")
	}
	return tenantID, nil
}

func requireVerifiedCaller(caller *claims.IdentityToken) error {
	if caller == nil || caller.Email == "" || !caller.EmailVerified {
		return callable.Unauthenticated(
			"caller is not correctly authenticated; sign out and try again")
	}
	return nil
}

func validateUserInput(user UserInput, role Role, requireID bool) error {
	switch {
	case requireID && user.ID == "":
		return callable.InvalidArgument("user._id is required")
	case user.Email == "":
		return callable.InvalidArgument("user.email is required")
	case user.Name == "":
		return callable.InvalidArgument("user.name is required")
	case user.Location == "":
		return callable.InvalidArgument("user.location is required")
	case user.IsActive == nil:
		return callable.InvalidArgument("user.isActive is required")
	case !role.Valid():
		return callable.InvalidArgument("role is required")
	}
	return nil
}
