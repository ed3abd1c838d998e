package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"onboard-pay/internal/pkg/xerrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testHandoffSecret = "test-handoff-secret-0123456789"

func TestCredentialVault_SealOpenDiscard(t *testing.T) {
	store := newMemStore()
	vault := NewCredentialVault(store, testHandoffSecret, time.Hour)
	ctx := context.Background()

	creds := Credentials{Email: "jane@example.com", Phone: "+15551234567", Password: "s3cret-pass"}
	token, vaultID, err := vault.Seal(ctx, creds)
	require.NoError(t, err)
	require.NotEmpty(t, vaultID)

	assert.NotContains(t, token, creds.Password)
	stored, err := store.GetString(ctx, keyHandoff+vaultID)
	require.NoError(t, err)
	assert.NotContains(t, stored, creds.Password, "password is sealed at rest")
	assert.Equal(t, time.Hour, store.ttls[keyHandoff+vaultID])

	got, id, err := vault.Open(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, vaultID, id)
	assert.Equal(t, creds, *got)

	// Open 不消费
	_, _, err = vault.Open(ctx, token)
	require.NoError(t, err)

	require.NoError(t, vault.Discard(ctx, vaultID))
	_, _, err = vault.Open(ctx, token)
	assert.True(t, xerrors.HasCode(err, xerrors.CodeCredentialsUnavailable))
}

func TestCredentialVault_RejectsBadTokens(t *testing.T) {
	store := newMemStore()
	vault := NewCredentialVault(store, testHandoffSecret, time.Hour)
	ctx := context.Background()

	token, _, err := vault.Seal(ctx, Credentials{Email: "jane@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	other := NewCredentialVault(store, "another-secret-abcdefghijk", time.Hour)
	_, _, err = other.Open(ctx, token)
	assert.True(t, xerrors.HasCode(err, xerrors.CodeInvalidToken), "signature from another secret")

	_, _, err = vault.Open(ctx, "not-a-jwt")
	assert.True(t, xerrors.HasCode(err, xerrors.CodeInvalidToken))

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	_, _, err = vault.Open(ctx, parts[0]+"."+parts[1]+".AAAA")
	assert.True(t, xerrors.HasCode(err, xerrors.CodeInvalidToken))
}

func TestCredentialVault_ExpiredToken(t *testing.T) {
	store := newMemStore()
	vault := NewCredentialVault(store, testHandoffSecret, time.Minute)
	ctx := context.Background()

	token, _, err := vault.Seal(ctx, Credentials{Email: "jane@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	vault.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, _, err = vault.Open(ctx, token)
	assert.True(t, xerrors.HasCode(err, xerrors.CodeInvalidToken))
}

func TestCredentialVault_TamperedCiphertext(t *testing.T) {
	store := newMemStore()
	vault := NewCredentialVault(store, testHandoffSecret, time.Hour)
	ctx := context.Background()

	token, vaultID, err := vault.Seal(ctx, Credentials{Email: "jane@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)

	store.strings[keyHandoff+vaultID] = "AAAA" + store.strings[keyHandoff+vaultID][4:]
	_, _, err = vault.Open(ctx, token)
	assert.True(t, xerrors.HasCode(err, xerrors.CodeCredentialsUnavailable))
}

func TestCredentialVault_StoreFailure(t *testing.T) {
	store := newMemStore()
	store.failAll = assert.AnError
	vault := NewCredentialVault(store, testHandoffSecret, time.Hour)

	_, _, err := vault.Seal(context.Background(), Credentials{Email: "jane@example.com", Password: "s3cret-pass"})
	assert.True(t, xerrors.HasCode(err, xerrors.CodeCacheError))
}
