package tenant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzenboard/anzenboard/internal/audit"
	"github.com/anzenboard/anzenboard/internal/callable"
	"github.com/anzenboard/anzenboard/internal/claims"
	"github.com/anzenboard/anzenboard/internal/docstore"
	"github.com/anzenboard/anzenboard/internal/identity"
)

type recordingAudit struct {
	events []audit.Event
}

func (r *recordingAudit) Log(ctx context.Context, event audit.Event) {
	r.events = append(r.events, event)
}

func (r *recordingAudit) lastType() string {
	if len(r.events) == 0 {
		return ""
	}
	return r.events[len(r.events)-1].Type
}

type memAccountRepo struct {
	byUID   map[string]*identity.Account
	byEmail map[string]*identity.Account
}

func newMemAccountRepo() *memAccountRepo {
	return &memAccountRepo{
		byUID:   make(map[string]*identity.Account),
		byEmail: make(map[string]*identity.Account),
	}
}

func (m *memAccountRepo) Create(ctx context.Context, account *identity.Account) error {
	if _, exists := m.byEmail[account.Email]; exists {
		return identity.ErrAccountAlreadyExists
	}
	cp := *account
	m.byUID[account.UID] = &cp
	m.byEmail[account.Email] = &cp
	return nil
}

func (m *memAccountRepo) GetByUID(ctx context.Context, uid string) (*identity.Account, error) {
	account, ok := m.byUID[uid]
	if !ok {
		return nil, identity.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

func (m *memAccountRepo) GetByEmail(ctx context.Context, email string) (*identity.Account, error) {
	account, ok := m.byEmail[email]
	if !ok {
		return nil, identity.ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

func (m *memAccountRepo) UpdateClaims(ctx context.Context, uid string, claims map[string]any) error {
	account, ok := m.byUID[uid]
	if !ok {
		return identity.ErrAccountNotFound
	}
	account.Claims = claims
	return nil
}

func (m *memAccountRepo) SetEmailVerified(ctx context.Context, uid string, verified bool) error {
	account, ok := m.byUID[uid]
	if !ok {
		return identity.ErrAccountNotFound
	}
	account.EmailVerified = verified
	return nil
}

type fixture struct {
	store    *docstore.MemoryStore
	repo     *memAccountRepo
	provider *identity.Provider
	audit    *recordingAudit
	service  *Service
}

func newFixture() *fixture {
	store := docstore.NewMemoryStore()
	repo := newMemAccountRepo()
	auditLogger := &recordingAudit{}
	provider := identity.NewProvider(repo, auditLogger)
	return &fixture{
		store:    store,
		repo:     repo,
		provider: provider,
		audit:    auditLogger,
		service:  NewService(store, provider, auditLogger),
	}
}

func (f *fixture) addAccount(t *testing.T, uid, email, tenantID string) {
	t.Helper()
	err := f.repo.Create(context.Background(), &identity.Account{
		UID:           uid,
		Email:         email,
		EmailVerified: true,
		Claims:        map[string]any{identity.ClaimCurrentTenantID: tenantID},
	})
	require.NoError(t, err)
}

func (f *fixture) addAssignment(t *testing.T, uid, tenantID string, role Role) {
	t.Helper()
	err := Upsert(context.Background(), f.store, RoleAssignmentPath(uid, tenantID), AssignmentFields(role), "seed")
	require.NoError(t, err)
}

func verifiedCaller(uid, email, tenantID string) *claims.IdentityToken {
	return &claims.IdentityToken{
		UID:             uid,
		Email:           email,
		EmailVerified:   true,
		CurrentTenantID: tenantID,
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	cerr := callable.FromError(err)
	assert.Equal(t, code, cerr.Code)
}

// TestPurpose: Validates that switching tenants updates the current tenant
// claim when the caller holds a grantable role in the target tenant.
// Scope: Unit Test
// Security: The tenant claim is the authorization anchor for every later call
// Expected: The claim is overwritten and a switch event is audited.
// Test Case ID: SWT-01
func TestTenant_Service_SwitchTenant_GrantsClaim(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addAccount(t, "u1", "user@example.com", "t-old")
	f.addAssignment(t, "u1", "t-new", RoleApplicationUser)

	err := f.service.SwitchTenant(ctx, verifiedCaller("u1", "user@example.com", "t-old"), "t-new")
	require.NoError(t, err)

	account, err := f.repo.GetByUID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "t-new", account.CurrentTenantID())
	assert.Equal(t, audit.TypeTenantSwitched, f.audit.lastType())
}

// TestPurpose: Validates that switching into a tenant where the caller has
// no assignment, or only a null-role assignment, is denied without leaking
// which of the two it was.
// Scope: Unit Test
// Security: Membership probing across tenants must not be possible
// Expected: permission-denied with an identical message in both cases.
// Test Case ID: SWT-02
func TestTenant_Service_SwitchTenant_DeniedWithoutRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addAccount(t, "u1", "user@example.com", "t-old")

	// No assignment at all.
	err := f.service.SwitchTenant(ctx, verifiedCaller("u1", "user@example.com", "t-old"), "t-other")
	assertCode(t, err, callable.CodePermissionDenied)
	absentMsg := callable.FromError(err).Message

	// Assignment exists but carries a null role.
	f.addAssignment(t, "u1", "t-revoked", RoleNone)
	err = f.service.SwitchTenant(ctx, verifiedCaller("u1", "user@example.com", "t-old"), "t-revoked")
	assertCode(t, err, callable.CodePermissionDenied)
	assert.Equal(t, absentMsg, callable.FromError(err).Message)

	assert.Equal(t, audit.TypeTenantSwitchDenied, f.audit.lastType())

	// The claim is untouched on denial.
	account, err := f.repo.GetByUID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "t-old", account.CurrentTenantID())
}

func TestTenant_Service_SwitchTenant_InputValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	t.Run("unverified caller", func(t *testing.T) {
		caller := &claims.IdentityToken{UID: "u1", Email: "user@example.com", EmailVerified: false}
		err := f.service.SwitchTenant(ctx, caller, "t1")
		assertCode(t, err, callable.CodeUnauthenticated)
	})

	t.Run("nil caller", func(t *testing.T) {
		err := f.service.SwitchTenant(ctx, nil, "t1")
		assertCode(t, err, callable.CodeUnauthenticated)
	})

	t.Run("missing target tenant", func(t *testing.T) {
		err := f.service.SwitchTenant(ctx, verifiedCaller("u1", "user@example.com", "t-old"), "")
		assertCode(t, err, callable.CodeInvalidArgument)
	})
}

func activePtr(v bool) *bool { return &v }

// TestPurpose: Validates that a tenant manager can provision a brand-new
// identity: the account is created, its first tenant is bootstrapped into
// the claim, and profile plus assignment documents are written with audit
// stamps attributed to the manager.
// Scope: Unit Test
// Security: Provisioning is the only path that creates accounts
// Expected: Account, profile and assignment all exist afterwards.
// Test Case ID: USR-01
func TestTenant_Service_CreateUser_NewIdentity(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addAccount(t, "mgr", "manager@example.com", "t1")
	f.addAssignment(t, "mgr", "t1", RoleTenantManager)

	input := CreateUserInput{
		User: UserInput{
			Email:    "new@example.com",
			Name:     "New Member",
			Location: "Osaka",
			IsActive: activePtr(true),
		},
		Role: RoleApplicationUser,
	}
	err := f.service.CreateUser(ctx, verifiedCaller("mgr", "manager@example.com", "t1"), input)
	require.NoError(t, err)

	account, err := f.repo.GetByEmail(ctx, "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "t1", account.CurrentTenantID())

	profile, err := f.service.Profile(ctx, "t1", account.UID)
	require.NoError(t, err)
	assert.Equal(t, "New Member", profile.Name)
	assert.Equal(t, "Osaka", profile.Location)
	assert.True(t, profile.IsActive)
	assert.Equal(t, "mgr", profile.Audit.CreatedBy)
	assert.False(t, profile.Audit.CreatedAt.IsZero())

	role, err := f.service.ResolveRole(ctx, account.UID, "t1")
	require.NoError(t, err)
	assert.Equal(t, RoleApplicationUser, role)
	assert.Equal(t, audit.TypeUserProvisioned, f.audit.lastType())
}

// TestPurpose: Validates the cross-tenant re-registration rule: an email
// already known to the platform can be added to a second tenant, but
// adding it twice to the same tenant conflicts.
// Scope: Unit Test
// Expected: already-exists only when an assignment for the same tenant exists.
// Test Case ID: USR-02
func TestTenant_Service_CreateUser_ExistingEmail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addAccount(t, "mgr1", "manager1@example.com", "t1")
	f.addAssignment(t, "mgr1", "t1", RoleTenantManager)
	f.addAccount(t, "mgr2", "manager2@example.com", "t2")
	f.addAssignment(t, "mgr2", "t2", RoleTenantManager)
	f.addAccount(t, "u1", "member@example.com", "t1")
	f.addAssignment(t, "u1", "t1", RoleApplicationUser)

	input := CreateUserInput{
		User: UserInput{
			Email:    "member@example.com",
			Name:     "Member",
			Location: "Tokyo",
			IsActive: activePtr(true),
		},
		Role: RoleApplicationUser,
	}

	// Same tenant: conflict.
	err := f.service.CreateUser(ctx, verifiedCaller("mgr1", "manager1@example.com", "t1"), input)
	assertCode(t, err, callable.CodeAlreadyExists)

	// Different tenant: allowed, claim stays on the first tenant.
	err = f.service.CreateUser(ctx, verifiedCaller("mgr2", "manager2@example.com", "t2"), input)
	require.NoError(t, err)

	account, err := f.repo.GetByUID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "t1", account.CurrentTenantID())

	role, err := f.service.ResolveRole(ctx, "u1", "t2")
	require.NoError(t, err)
	assert.Equal(t, RoleApplicationUser, role)
}

// TestPurpose: Validates that a deactivated user is stored with a null
// role regardless of the requested role.
// Scope: Unit Test
// Security: isActive=false must always revoke access
// Expected: The stored assignment resolves to no role.
// Test Case ID: USR-03
func TestTenant_Service_CreateUser_InactiveForcesNullRole(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addAccount(t, "mgr", "manager@example.com", "t1")
	f.addAssignment(t, "mgr", "t1", RoleTenantManager)

	input := CreateUserInput{
		User: UserInput{
			Email:    "inactive@example.com",
			Name:     "Inactive",
			Location: "Nagoya",
			IsActive: activePtr(false),
		},
		Role: RoleTenantManager,
	}
	err := f.service.CreateUser(ctx, verifiedCaller("mgr", "manager@example.com", "t1"), input)
	require.NoError(t, err)

	account, err := f.repo.GetByEmail(ctx, "inactive@example.com")
	require.NoError(t, err)

	role, err := f.service.ResolveRole(ctx, account.UID, "t1")
	require.NoError(t, err)
	assert.Equal(t, RoleNone, role)
	assert.False(t, role.Grants())
}

func TestTenant_Service_CreateUser_RequiresTenantManager(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addAccount(t, "u1", "member@example.com", "t1")
	f.addAssignment(t, "u1", "t1", RoleApplicationManager)

	input := CreateUserInput{
		User: UserInput{
			Email:    "x@example.com",
			Name:     "X",
			Location: "Kyoto",
			IsActive: activePtr(true),
		},
		Role: RoleApplicationUser,
	}
	err := f.service.CreateUser(ctx, verifiedCaller("u1", "member@example.com", "t1"), input)
	assertCode(t, err, callable.CodePermissionDenied)
}

func TestTenant_Service_CreateUser_Validation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addAccount(t, "mgr", "manager@example.com", "t1")
	f.addAssignment(t, "mgr", "t1", RoleTenantManager)
	caller := verifiedCaller("mgr", "manager@example.com", "t1")

	base := UserInput{
		Email:    "x@example.com",
		Name:     "X",
		Location: "Kyoto",
		IsActive: activePtr(true),
	}

	tests := []struct {
		name   string
		mutate func(*UserInput, *Role)
	}{
		{"missing email", func(u *UserInput, r *Role) { u.Email = "" }},
		{"missing name", func(u *UserInput, r *Role) { u.Name = "" }},
		{"missing location", func(u *UserInput, r *Role) { u.Location = "" }},
		{"missing isActive", func(u *UserInput, r *Role) { u.IsActive = nil }},
		{"invalid role", func(u *UserInput, r *Role) { *r = Role("superuser") }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := base
			role := RoleApplicationUser
			tt.mutate(&user, &role)
			err := f.service.CreateUser(ctx, caller, CreateUserInput{User: user, Role: role})
			assertCode(t, err, callable.CodeInvalidArgument)
		})
	}
}

// TestPurpose: Validates that updateUser rewrites profile and role while
// preserving the original creation audit pair and the stored email.
// Scope: Unit Test
// Expected: _createdAt/_createdBy survive, _updatedBy tracks the caller,
// email is untouched by the update path.
// Test Case ID: USR-04
func TestTenant_Service_UpdateUser_PreservesCreationAudit(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addAccount(t, "mgr", "manager@example.com", "t1")
	f.addAssignment(t, "mgr", "t1", RoleTenantManager)
	f.addAccount(t, "u1", "member@example.com", "t1")

	createInput := CreateUserInput{
		User: UserInput{
			Email:    "member@example.com",
			Name:     "Before",
			Location: "Tokyo",
			IsActive: activePtr(true),
		},
		Role: RoleApplicationUser,
	}
	require.NoError(t, f.service.CreateUser(ctx, verifiedCaller("mgr", "manager@example.com", "t1"), createInput))

	before, err := f.service.Profile(ctx, "t1", "u1")
	require.NoError(t, err)

	updateInput := UpdateUserInput{
		User: UserInput{
			ID:       "u1",
			Email:    "member@example.com",
			Name:     "After",
			Location: "Sapporo",
			IsActive: activePtr(true),
		},
		Role: RoleApplicationManager,
	}
	require.NoError(t, f.service.UpdateUser(ctx, verifiedCaller("mgr", "manager@example.com", "t1"), updateInput))

	after, err := f.service.Profile(ctx, "t1", "u1")
	require.NoError(t, err)
	assert.Equal(t, "After", after.Name)
	assert.Equal(t, "Sapporo", after.Location)
	assert.Equal(t, "member@example.com", after.Email)
	assert.Equal(t, before.Audit.CreatedAt, after.Audit.CreatedAt)
	assert.Equal(t, before.Audit.CreatedBy, after.Audit.CreatedBy)
	assert.Equal(t, "mgr", after.Audit.UpdatedBy)

	role, err := f.service.ResolveRole(ctx, "u1", "t1")
	require.NoError(t, err)
	assert.Equal(t, RoleApplicationManager, role)
}

// TestPurpose: Validates the self-demotion guard: a tenant manager cannot
// strip their own manager role, directly or via deactivation.
// Scope: Unit Test
// Security: A tenant must not silently lose its last manager
// Expected: invalid-argument, nothing written.
// Test Case ID: USR-05
func TestTenant_Service_UpdateUser_SelfDemotionBlocked(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	f.addAccount(t, "mgr", "manager@example.com", "t1")
	f.addAssignment(t, "mgr", "t1", RoleTenantManager)

	tests := []struct {
		name     string
		role     Role
		isActive bool
	}{
		{"lower role", RoleApplicationUser, true},
		{"deactivate self", RoleTenantManager, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := UpdateUserInput{
				User: UserInput{
					ID:       "mgr",
					Email:    "manager@example.com",
					Name:     "Manager",
					Location: "Tokyo",
					IsActive: activePtr(tt.isActive),
				},
				Role: tt.role,
			}
			err := f.service.UpdateUser(ctx, verifiedCaller("mgr", "manager@example.com", "t1"), input)
			assertCode(t, err, callable.CodeInvalidArgument)

			role, err := f.service.ResolveRole(ctx, "mgr", "t1")
			require.NoError(t, err)
			assert.Equal(t, RoleTenantManager, role)
		})
	}
}

func TestTenant_Service_UpdateUser_RequiresID(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.addAccount(t, "mgr", "manager@example.com", "t1")
	f.addAssignment(t, "mgr", "t1", RoleTenantManager)

	input := UpdateUserInput{
		User: UserInput{
			Email:    "member@example.com",
			Name:     "Member",
			Location: "Tokyo",
			IsActive: activePtr(true),
		},
		Role: RoleApplicationUser,
	}
	err := f.service.UpdateUser(ctx, verifiedCaller("mgr", "manager@example.com", "t1"), input)
	assertCode(t, err, callable.CodeInvalidArgument)
}

func TestTenant_Service_ResolveRole_AbsentAssignment(t *testing.T) {
	f := newFixture()

	role, err := f.service.ResolveRole(context.Background(), "ghost", "t1")
	require.NoError(t, err)
	assert.Equal(t, RoleNone, role)
}
