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

package board

import (
	"context"
	"errors"
	"sort"

	"github.com/anzenboard/anzenboard/internal/audit"
	"github.com/anzenboard/anzenboard/internal/callable"
	"github.com/anzenboard/anzenboard/internal/claims"
	"github.com/anzenboard/anzenboard/internal/docstore"
	"github.com/anzenboard/anzenboard/internal/id"
	"github.com/anzenboard/anzenboard/internal/tenant"
)

// Service manages tenant board content. Writes that establish content
// (surveys, announcements) require a manager role; answers and messages
// are open to any active member of the tenant.
type Service struct {
	store       docstore.Store
	tenants     *tenant.Service
	auditLogger audit.Logger
}

func NewService(store docstore.Store, tenants *tenant.Service, auditLogger audit.Logger) *Service {
	return &Service{
		store:       store,
		tenants:     tenants,
		auditLogger: auditLogger,
	}
}

// CreateSafetyConfirmation opens a new survey in the caller's tenant.
func (s *Service) CreateSafetyConfirmation(ctx context.Context, caller *claims.IdentityToken, input SafetyConfirmation) (SafetyConfirmation, error) {
	tenantID, _, err := s.requireRole(ctx, caller, true)
	if err != nil {
		return SafetyConfirmation{}, err
	}
	if input.Title == "" {
		return SafetyConfirmation{}, callable.InvalidArgument("title is required")
	}
	switch input.HazardType {
	case HazardQuake, HazardWater, HazardOther:
	default:
		return SafetyConfirmation{}, callable.InvalidArgument("unknown hazard type")
	}

	// A provided id updates the existing survey in place.
	if input.ID == "" {
		input.ID = id.NewUUIDv7()
	}
	path := safetyConfirmationPath(tenantID, input.ID)
	if err := tenant.Upsert(ctx, s.store, path, confirmationFields(input), caller.UID); err != nil {
		return SafetyConfirmation{}, callable.Internal("failed to create safety confirmation", err)
	}
	return input, nil
}

// SafetyConfirmation returns one survey. Any active member may read it.
func (s *Service) SafetyConfirmation(ctx context.Context, caller *claims.IdentityToken, confirmationID string) (SafetyConfirmation, error) {
	tenantID, _, err := s.requireRole(ctx, caller, false)
	if err != nil {
		return SafetyConfirmation{}, err
	}
	doc, err := s.store.Get(ctx, safetyConfirmationPath(tenantID, confirmationID))
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return SafetyConfirmation{}, callable.InvalidArgument("safety confirmation not found")
		}
		return SafetyConfirmation{}, callable.Internal("failed to load safety confirmation", err)
	}
	return confirmationFromSnapshot(docstore.Snapshot{ID: confirmationID, Data: doc}), nil
}

// ListSafetyConfirmations returns the tenant's surveys, newest first.
func (s *Service) ListSafetyConfirmations(ctx context.Context, caller *claims.IdentityToken) ([]SafetyConfirmation, error) {
	tenantID, _, err := s.requireRole(ctx, caller, false)
	if err != nil {
		return nil, err
	}
	snaps, err := s.store.List(ctx, safetyConfirmationsPath(tenantID))
	if err != nil {
		return nil, callable.Internal("failed to list safety confirmations", err)
	}
	out := make([]SafetyConfirmation, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, confirmationFromSnapshot(snap))
	}
	sortByCreatedDesc(out, func(c SafetyConfirmation) tenant.AuditFields { return c.Audit })
	return out, nil
}

// SubmitAnswer records the caller's status for a survey. The answer
// document is keyed by the caller's uid so resubmitting replaces the
// previous report. Name and location are copied from the caller's
// profile at submit time.
func (s *Service) SubmitAnswer(ctx context.Context, caller *claims.IdentityToken, confirmationID, safetyStatus, memo string) error {
	tenantID, _, err := s.requireRole(ctx, caller, false)
	if err != nil {
		return err
	}
	if confirmationID == "" {
		return callable.InvalidArgument("safety confirmation id is required")
	}
	switch safetyStatus {
	case StatusSafe, StatusMinorInjury, StatusSeriousInjury:
	default:
		return callable.InvalidArgument("unknown safety status")
	}
	if _, err := s.store.Get(ctx, safetyConfirmationPath(tenantID, confirmationID)); err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return callable.InvalidArgument("safety confirmation not found")
		}
		return callable.Internal("failed to load safety confirmation", err)
	}

	profile, err := s.tenants.Profile(ctx, tenantID, caller.UID)
	if err != nil {
		return callable.Internal("failed to load caller profile", err)
	}
	answer := SafetyConfirmationAnswer{
		UID:              caller.UID,
		SafetyStatus:     safetyStatus,
		Memo:             memo,
		NameSnapshot:     profile.Name,
		LocationSnapshot: profile.Location,
	}
	path := answerPath(tenantID, confirmationID, caller.UID)
	if err := tenant.Upsert(ctx, s.store, path, answerFields(answer), caller.UID); err != nil {
		return callable.Internal("failed to save answer", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeAnswerSubmitted,
		TenantID: tenantID,
		ActorID:  caller.UID,
		Resource: path,
		Metadata: map[string]any{"safety_status": safetyStatus},
	})
	return nil
}

// ListAnswers returns all reports for a survey. Reserved for managers
// since answers carry member names and locations.
func (s *Service) ListAnswers(ctx context.Context, caller *claims.IdentityToken, confirmationID string) ([]SafetyConfirmationAnswer, error) {
	tenantID, _, err := s.requireRole(ctx, caller, true)
	if err != nil {
		return nil, err
	}
	snaps, err := s.store.List(ctx, answersPath(tenantID, confirmationID))
	if err != nil {
		return nil, callable.Internal("failed to list answers", err)
	}
	out := make([]SafetyConfirmationAnswer, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, answerFromSnapshot(snap))
	}
	return out, nil
}

// CreateInformation saves an announcement. Drafts stay invisible to
// regular members until published.
func (s *Service) CreateInformation(ctx context.Context, caller *claims.IdentityToken, input Information) (Information, error) {
	tenantID, _, err := s.requireRole(ctx, caller, true)
	if err != nil {
		return Information{}, err
	}
	if input.Title == "" {
		return Information{}, callable.InvalidArgument("title is required")
	}

	if input.ID == "" {
		input.ID = id.NewUUIDv7()
	}
	path := informationPath(tenantID, input.ID)
	if err := tenant.Upsert(ctx, s.store, path, informationFields(input), caller.UID); err != nil {
		return Information{}, callable.Internal("failed to save information", err)
	}
	if input.IsPublished {
		s.auditLogger.Log(ctx, audit.Event{
			Type:     audit.TypeInformationPublished,
			TenantID: tenantID,
			ActorID:  caller.UID,
			Resource: path,
		})
	}
	return input, nil
}

// PublishInformation flips an existing announcement to published.
func (s *Service) PublishInformation(ctx context.Context, caller *claims.IdentityToken, informationID string) error {
	tenantID, _, err := s.requireRole(ctx, caller, true)
	if err != nil {
		return err
	}
	path := informationPath(tenantID, informationID)
	doc, err := s.store.Get(ctx, path)
	if err != nil {
		if errors.Is(err, docstore.ErrNotFound) {
			return callable.InvalidArgument("information not found")
		}
		return callable.Internal("failed to load information", err)
	}
	if asBool(doc["isPublished"]) {
		return nil
	}
	if err := tenant.Upsert(ctx, s.store, path, docstore.Document{"isPublished": true}, caller.UID); err != nil {
		return callable.Internal("failed to publish information", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeInformationPublished,
		TenantID: tenantID,
		ActorID:  caller.UID,
		Resource: path,
	})
	return nil
}

// ListInformations returns the tenant's announcements. Members see only
// published ones; managers also see drafts.
func (s *Service) ListInformations(ctx context.Context, caller *claims.IdentityToken) ([]Information, error) {
	tenantID, role, err := s.requireRole(ctx, caller, false)
	if err != nil {
		return nil, err
	}
	snaps, err := s.store.List(ctx, informationsPath(tenantID))
	if err != nil {
		return nil, callable.Internal("failed to list informations", err)
	}
	out := make([]Information, 0, len(snaps))
	for _, snap := range snaps {
		info := informationFromSnapshot(snap)
		if !info.IsPublished && !role.IsApplicationManager() {
			continue
		}
		out = append(out, info)
	}
	sortByCreatedDesc(out, func(i Information) tenant.AuditFields { return i.Audit })
	return out, nil
}

// PostMessage appends a message to the tenant board.
func (s *Service) PostMessage(ctx context.Context, caller *claims.IdentityToken, body string) (Message, error) {
	tenantID, _, err := s.requireRole(ctx, caller, false)
	if err != nil {
		return Message{}, err
	}
	if body == "" {
		return Message{}, callable.InvalidArgument("message body is required")
	}

	profile, err := s.tenants.Profile(ctx, tenantID, caller.UID)
	if err != nil {
		return Message{}, callable.Internal("failed to load caller profile", err)
	}
	msg := Message{
		ID:            id.NewUUIDv7(),
		Body:          body,
		PublisherName: profile.Name,
	}
	path := messagePath(tenantID, msg.ID)
	if err := tenant.Upsert(ctx, s.store, path, messageFields(msg), caller.UID); err != nil {
		return Message{}, callable.Internal("failed to post message", err)
	}

	s.auditLogger.Log(ctx, audit.Event{
		Type:     audit.TypeMessagePosted,
		TenantID: tenantID,
		ActorID:  caller.UID,
		Resource: path,
	})
	return msg, nil
}

// ListMessages returns the tenant's messages, newest first.
func (s *Service) ListMessages(ctx context.Context, caller *claims.IdentityToken) ([]Message, error) {
	tenantID, _, err := s.requireRole(ctx, caller, false)
	if err != nil {
		return nil, err
	}
	snaps, err := s.store.List(ctx, messagesPath(tenantID))
	if err != nil {
		return nil, callable.Internal("failed to list messages", err)
	}
	out := make([]Message, 0, len(snaps))
	for _, snap := range snaps {
		out = append(out, messageFromSnapshot(snap))
	}
	sortByCreatedDesc(out, func(m Message) tenant.AuditFields { return m.Audit })
	return out, nil
}

// requireRole authenticates the caller and resolves their stored role in
// the current tenant. The id token's tenant claim selects the tenant but
// the role always comes from the stored assignment.
func (s *Service) requireRole(ctx context.Context, caller *claims.IdentityToken, manager bool) (string, tenant.Role, error) {
	if caller == nil || caller.UID == "" {
		return "", tenant.RoleNone, callable.Unauthenticated("authentication required")
	}
	if !caller.EmailVerified {
		return "", tenant.RoleNone, callable.Unauthenticated("email address not verified")
	}
	tenantID := caller.CurrentTenantID
	if tenantID == "" {
		return "", tenant.RoleNone, callable.Unauthenticated("no tenant selected")
	}
	role, err := s.tenants.ResolveRole(ctx, caller.UID, tenantID)
	if err != nil {
		return "", tenant.RoleNone, callable.Internal("failed to resolve role", err)
	}
	if !role.Grants() {
		return "", tenant.RoleNone, callable.PermissionDenied("no role in the current tenant")
	}
	if manager && !role.IsApplicationManager() {
		return "", tenant.RoleNone, callable.PermissionDenied("manager role required")
	}
	return tenantID, role, nil
}

func sortByCreatedDesc[T any](items []T, auditOf func(T) tenant.AuditFields) {
	sort.SliceStable(items, func(i, j int) bool {
		return auditOf(items[i]).CreatedAt.After(auditOf(items[j]).CreatedAt)
	})
}
