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

// Package session holds the client-side session state: the signed-in
// identity, current tenant, and resolved role. It is an explicit context
// object with an init/teardown lifecycle, threaded through the route guard
// and the API-call layer rather than living in an ambient singleton.
package session

import (
	"errors"
	"sync"

	"github.com/anzenboard/anzenboard/internal/tenant"
)

// Domain errors
var (
	ErrSignedOut = errors.New("no signed-in session")
)

// Durable local-storage keys.
const (
	KeyUID             = "uid"
	KeyCurrentTenantID = "currentTenantId"
	KeyEmailForSignIn  = "emailForSignIn"
)

// Snapshot is an immutable view of the session state, safe to hand to the
// route guard and request layers.
type Snapshot struct {
	SignedIn bool
	UID      string
	TenantID string
	Role     tenant.Role
}

// IsLoggedIn reports whether a user is signed in.
func (s Snapshot) IsLoggedIn() bool { return s.SignedIn }

// IsTenantManager reports whether the resolved role is tenant manager.
func (s Snapshot) IsTenantManager() bool {
	return s.SignedIn && s.Role.IsTenantManager()
}

// IsApplicationManager reports whether the resolved role carries
// application-manager capabilities.
func (s Snapshot) IsApplicationManager() bool {
	return s.SignedIn && s.Role.IsApplicationManager()
}

// Storage is the durable local mirror that lets a reload restore identity
// before the provider round trip completes.
type Storage interface {
	Get(key string) (string, error)
	Set(key, value string) error
	Delete(key string) error
}

// Store is the client session state machine: SignedOut -> SignedIn and
// back. uid and tenant are mirrored to durable storage on sign-in and
// purged on sign-out.
type Store struct {
	mu      sync.RWMutex
	current Snapshot
	storage Storage
}

// NewStore creates a signed-out session store backed by storage.
func NewStore(storage Storage) *Store {
	return &Store{storage: storage}
}

// Init enters the SignedIn state and mirrors uid/tenant durably.
func (s *Store) Init(uid, tenantID string, role tenant.Role) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Snapshot{SignedIn: true, UID: uid, TenantID: tenantID, Role: role}

	if err := s.storage.Set(KeyUID, uid); err != nil {
		return err
	}
	return s.storage.Set(KeyCurrentTenantID, tenantID)
}

// Teardown returns to SignedOut and purges the durable mirror.
func (s *Store) Teardown() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.current = Snapshot{}

	if err := s.storage.Delete(KeyUID); err != nil {
		return err
	}
	return s.storage.Delete(KeyCurrentTenantID)
}

// Restore optimistically rebuilds identity from the durable mirror after a
// reload. The role is unknown until the provider round trip completes, so
// the restored session resolves to no role; manager predicates stay false
// until Init runs again.
func (s *Store) Restore() (Snapshot, error) {
	uid, err := s.storage.Get(KeyUID)
	if err != nil || uid == "" {
		return Snapshot{}, ErrSignedOut
	}
	tenantID, err := s.storage.Get(KeyCurrentTenantID)
	if err != nil {
		return Snapshot{}, ErrSignedOut
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = Snapshot{SignedIn: true, UID: uid, TenantID: tenantID, Role: tenant.RoleNone}
	return s.current, nil
}

// Current returns the session snapshot.
func (s *Store) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// RememberEmailForSignIn keeps the email used to request a sign-in link so
// the round trip can complete without re-entry.
func (s *Store) RememberEmailForSignIn(email string) error {
	return s.storage.Set(KeyEmailForSignIn, email)
}

// TakeEmailForSignIn returns and clears the remembered sign-in email.
func (s *Store) TakeEmailForSignIn() (string, error) {
	email, err := s.storage.Get(KeyEmailForSignIn)
	if err != nil {
		return "", err
	}
	if email != "" {
		if err := s.storage.Delete(KeyEmailForSignIn); err != nil {
			return "", err
		}
	}
	return email, nil
}
