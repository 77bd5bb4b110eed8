package claims

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzenboard/anzenboard/internal/identity"
)

func testAccount(tenantID string) *identity.Account {
	account := &identity.Account{
		UID:           "u1",
		Email:         "user@example.com",
		EmailVerified: true,
	}
	if tenantID != "" {
		account.Claims = map[string]any{identity.ClaimCurrentTenantID: tenantID}
	}
	return account
}

func TestIssuer_MintVerify_RoundTrip(t *testing.T) {
	issuer, err := NewIssuer("https://issuer.example.com", time.Hour)
	require.NoError(t, err)

	signed, err := issuer.Mint(testAccount("t1"))
	require.NoError(t, err)

	token, err := issuer.Verify(signed)
	require.NoError(t, err)
	assert.Equal(t, "u1", token.UID)
	assert.Equal(t, "user@example.com", token.Email)
	assert.True(t, token.EmailVerified)
	assert.Equal(t, "t1", token.CurrentTenantID)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, time.Minute)
}

// A user who never switched into a tenant carries no tenant claim at all,
// not an empty one.
func TestIssuer_Mint_OmitsAbsentTenantClaim(t *testing.T) {
	issuer, err := NewIssuer("https://issuer.example.com", time.Hour)
	require.NoError(t, err)

	signed, err := issuer.Mint(testAccount(""))
	require.NoError(t, err)

	token, err := issuer.Verify(signed)
	require.NoError(t, err)
	assert.Empty(t, token.CurrentTenantID)
}

func TestIssuer_Verify_Expired(t *testing.T) {
	issuer, err := NewIssuer("https://issuer.example.com", -time.Minute)
	require.NoError(t, err)

	signed, err := issuer.Mint(testAccount("t1"))
	require.NoError(t, err)

	_, err = issuer.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestIssuer_Verify_RejectsForeignKey(t *testing.T) {
	issuerA, err := NewIssuer("https://issuer.example.com", time.Hour)
	require.NoError(t, err)
	issuerB, err := NewIssuer("https://issuer.example.com", time.Hour)
	require.NoError(t, err)

	signed, err := issuerA.Mint(testAccount("t1"))
	require.NoError(t, err)

	_, err = issuerB.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssuer_Verify_RejectsGarbage(t *testing.T) {
	issuer, err := NewIssuer("https://issuer.example.com", time.Hour)
	require.NoError(t, err)

	_, err = issuer.Verify("not.a.token")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssuer_Verify_RejectsWrongIssuer(t *testing.T) {
	other, err := NewIssuer("https://other.example.com", time.Hour)
	require.NoError(t, err)

	signed, err := other.Mint(testAccount("t1"))
	require.NoError(t, err)

	// Same key, different expected issuer string.
	victim := &Issuer{
		issuer:     "https://issuer.example.com",
		ttl:        time.Hour,
		signingKey: other.signingKey,
		kid:        other.kid,
	}
	_, err = victim.Verify(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}
