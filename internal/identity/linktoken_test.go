package identity

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzenboard/anzenboard/internal/audit"
)

type fakeAccountRepo struct {
	byUID   map[string]*Account
	byEmail map[string]*Account
}

func newFakeAccountRepo() *fakeAccountRepo {
	return &fakeAccountRepo{
		byUID:   make(map[string]*Account),
		byEmail: make(map[string]*Account),
	}
}

func (f *fakeAccountRepo) Create(ctx context.Context, account *Account) error {
	if _, exists := f.byEmail[account.Email]; exists {
		return ErrAccountAlreadyExists
	}
	cp := *account
	f.byUID[account.UID] = &cp
	f.byEmail[account.Email] = &cp
	return nil
}

func (f *fakeAccountRepo) GetByUID(ctx context.Context, uid string) (*Account, error) {
	account, ok := f.byUID[uid]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

func (f *fakeAccountRepo) GetByEmail(ctx context.Context, email string) (*Account, error) {
	account, ok := f.byEmail[email]
	if !ok {
		return nil, ErrAccountNotFound
	}
	cp := *account
	return &cp, nil
}

func (f *fakeAccountRepo) UpdateClaims(ctx context.Context, uid string, claims map[string]any) error {
	account, ok := f.byUID[uid]
	if !ok {
		return ErrAccountNotFound
	}
	account.Claims = claims
	return nil
}

func (f *fakeAccountRepo) SetEmailVerified(ctx context.Context, uid string, verified bool) error {
	account, ok := f.byUID[uid]
	if !ok {
		return ErrAccountNotFound
	}
	account.EmailVerified = verified
	return nil
}

type fakeLinkTokenRepo struct {
	hashes    map[string]string
	expiries  map[string]time.Time
}

func newFakeLinkTokenRepo() *fakeLinkTokenRepo {
	return &fakeLinkTokenRepo{
		hashes:   make(map[string]string),
		expiries: make(map[string]time.Time),
	}
}

func (f *fakeLinkTokenRepo) Put(ctx context.Context, email, tokenHash string, expiresAt time.Time) error {
	f.hashes[email] = tokenHash
	f.expiries[email] = expiresAt
	return nil
}

func (f *fakeLinkTokenRepo) Take(ctx context.Context, email string) (string, time.Time, error) {
	hash, ok := f.hashes[email]
	if !ok {
		return "", time.Time{}, ErrLinkTokenNotFound
	}
	expiresAt := f.expiries[email]
	delete(f.hashes, email)
	delete(f.expiries, email)
	return hash, expiresAt, nil
}

type nopAudit struct{}

func (nopAudit) Log(ctx context.Context, event audit.Event) {}

// Small parameters keep the hashing fast in tests.
func testHasher() *LinkTokenHasher {
	return NewLinkTokenHasher(1024, 1, 1, 16, 32)
}

func newLinkFixture(ttl time.Duration) (*LinkService, *fakeAccountRepo, *fakeLinkTokenRepo) {
	accounts := newFakeAccountRepo()
	tokens := newFakeLinkTokenRepo()
	provider := NewProvider(accounts, nopAudit{})
	return NewLinkService(provider, tokens, testHasher(), ttl, nopAudit{}), accounts, tokens
}

func TestLinkService_FirstSignIn_CreatesVerifiedAccount(t *testing.T) {
	svc, accounts, _ := newLinkFixture(time.Hour)
	ctx := context.Background()

	token, err := svc.Begin(ctx, "new@example.com")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	account, err := svc.Complete(ctx, "new@example.com", token)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", account.Email)
	assert.True(t, account.EmailVerified)
	assert.NotEmpty(t, account.UID)

	stored, err := accounts.GetByUID(ctx, account.UID)
	require.NoError(t, err)
	assert.True(t, stored.EmailVerified)
}

func TestLinkService_TokenIsSingleUse(t *testing.T) {
	svc, _, _ := newLinkFixture(time.Hour)
	ctx := context.Background()

	token, err := svc.Begin(ctx, "user@example.com")
	require.NoError(t, err)

	_, err = svc.Complete(ctx, "user@example.com", token)
	require.NoError(t, err)

	_, err = svc.Complete(ctx, "user@example.com", token)
	assert.ErrorIs(t, err, ErrLinkTokenNotFound)
}

func TestLinkService_WrongTokenConsumesPendingLink(t *testing.T) {
	svc, _, tokens := newLinkFixture(time.Hour)
	ctx := context.Background()

	token, err := svc.Begin(ctx, "user@example.com")
	require.NoError(t, err)

	_, err = svc.Complete(ctx, "user@example.com", "wrong-"+token)
	assert.ErrorIs(t, err, ErrLinkTokenInvalid)

	// The failed attempt burned the link.
	assert.Empty(t, tokens.hashes)
	_, err = svc.Complete(ctx, "user@example.com", token)
	assert.ErrorIs(t, err, ErrLinkTokenNotFound)
}

func TestLinkService_ExpiredToken(t *testing.T) {
	svc, _, _ := newLinkFixture(-time.Minute)
	ctx := context.Background()

	token, err := svc.Begin(ctx, "user@example.com")
	require.NoError(t, err)

	_, err = svc.Complete(ctx, "user@example.com", token)
	assert.ErrorIs(t, err, ErrLinkTokenExpired)
}

func TestLinkService_NewLinkReplacesPending(t *testing.T) {
	svc, _, _ := newLinkFixture(time.Hour)
	ctx := context.Background()

	first, err := svc.Begin(ctx, "user@example.com")
	require.NoError(t, err)
	second, err := svc.Begin(ctx, "user@example.com")
	require.NoError(t, err)
	require.NotEqual(t, first, second)

	_, err = svc.Complete(ctx, "user@example.com", first)
	assert.ErrorIs(t, err, ErrLinkTokenInvalid)

	// Only the latest link verifies, and the first attempt consumed it.
	_, err = svc.Complete(ctx, "user@example.com", second)
	assert.ErrorIs(t, err, ErrLinkTokenNotFound)
}

func TestLinkService_Begin_RejectsBadEmail(t *testing.T) {
	svc, _, _ := newLinkFixture(time.Hour)

	_, err := svc.Begin(context.Background(), "not-an-email")
	assert.ErrorIs(t, err, ErrInvalidEmail)
}

func TestLinkTokenHasher_VerifyMismatch(t *testing.T) {
	hasher := testHasher()

	hash, err := hasher.Hash("token-a")
	require.NoError(t, err)

	ok, err := hasher.Verify("token-a", hash)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.Verify("token-b", hash)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = hasher.Verify("token-a", "$garbage")
	assert.Error(t, err)
}

func TestProvider_Create_Duplicate(t *testing.T) {
	accounts := newFakeAccountRepo()
	provider := NewProvider(accounts, nopAudit{})
	ctx := context.Background()

	first, err := provider.Create(ctx, "user@example.com", "User")
	require.NoError(t, err)
	require.NotEmpty(t, first.UID)

	_, err = provider.Create(ctx, "user@example.com", "User Again")
	assert.ErrorIs(t, err, ErrAccountAlreadyExists)
}
