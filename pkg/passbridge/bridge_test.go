package passbridge_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenneTech/nest-server-sub004/pkg/passbridge"
	"github.com/lenneTech/nest-server-sub004/pkg/store"
)

func newBridge(t *testing.T) (*passbridge.Bridge, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return passbridge.New(mem.Users, mem.IamUsers, mem.Accounts, mem.Sessions), mem
}

// seedLegacyUser creates a canonical user with a legacy bcrypt hash and no
// IAM link, i.e. a user who signed up before the IAM system existed.
func seedLegacyUser(t *testing.T, mem *store.Memory, email, password string) *store.User {
	t.Helper()

	hash, err := passbridge.LegacyHash(password)
	require.NoError(t, err)

	user, err := mem.Users.Create(context.Background(), &store.User{
		Email:    email,
		Password: hash,
	})
	require.NoError(t, err)
	return user
}

func TestMigrateAccountToIam(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b, mem := newBridge(t)
	seedLegacyUser(t, mem, "legacy@example.com", "hunter22")

	ok, err := b.MigrateAccountToIam(ctx, "legacy@example.com", "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	iamUser, err := mem.IamUsers.FindByEmail(ctx, "legacy@example.com")
	require.NoError(t, err)
	require.NotNil(t, iamUser)

	account, err := mem.Accounts.FindCredential(ctx, iamUser.ID)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.Equal(t, store.ProviderCredential, account.ProviderID)
	assert.True(t, passbridge.VerifyIam("hunter22", account.Password),
		"the scrypt hash must verify against the same password")

	linked, err := mem.Users.FindByEmail(ctx, "legacy@example.com")
	require.NoError(t, err)
	assert.Equal(t, iamUser.ID, linked.IamID)
}

func TestMigrateAccountToIam_WrongPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b, mem := newBridge(t)
	seedLegacyUser(t, mem, "legacy@example.com", "hunter22")

	ok, err := b.MigrateAccountToIam(ctx, "legacy@example.com", "wrong-password")
	assert.ErrorIs(t, err, passbridge.ErrPasswordMismatch)
	assert.False(t, ok)

	// No IAM artifacts may exist after a rejected migration.
	iamUser, err := mem.IamUsers.FindByEmail(ctx, "legacy@example.com")
	require.NoError(t, err)
	assert.Nil(t, iamUser)
}

func TestMigrateAccountToIam_NothingToMigrate(t *testing.T) {
	t.Parallel()

	b, _ := newBridge(t)
	ok, err := b.MigrateAccountToIam(context.Background(), "unknown@example.com", "pw")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMigrateAccountToIam_Idempotent(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b, mem := newBridge(t)
	seedLegacyUser(t, mem, "legacy@example.com", "hunter22")

	ok, err := b.MigrateAccountToIam(ctx, "legacy@example.com", "hunter22")
	require.NoError(t, err)
	require.True(t, ok)

	first, err := mem.IamUsers.FindByEmail(ctx, "legacy@example.com")
	require.NoError(t, err)
	account1, err := mem.Accounts.FindCredential(ctx, first.ID)
	require.NoError(t, err)

	ok, err = b.MigrateAccountToIam(ctx, "legacy@example.com", "hunter22")
	require.NoError(t, err)
	assert.True(t, ok)

	account2, err := mem.Accounts.FindCredential(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, account1.Password, account2.Password, "re-running a completed migration is a no-op")
}

func TestSyncPassword(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b, mem := newBridge(t)
	iamUser, err := mem.IamUsers.Create(ctx, &store.IamUser{Email: "u@example.com"})
	require.NoError(t, err)
	user, err := mem.Users.Create(ctx, &store.User{Email: "u@example.com", IamID: iamUser.ID})
	require.NoError(t, err)

	assert.True(t, b.SyncPassword(ctx, user, "new-password"))

	account, err := mem.Accounts.FindCredential(ctx, iamUser.ID)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.True(t, passbridge.VerifyIam("new-password", account.Password))

	// Unlinked users have nothing to sync to.
	unlinked := &store.User{ID: "x", Email: "x@example.com"}
	assert.False(t, b.SyncPassword(ctx, unlinked, "pw"))
}

func TestSyncEmail(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b, mem := newBridge(t)
	iamUser, err := mem.IamUsers.Create(ctx, &store.IamUser{Email: "old@example.com"})
	require.NoError(t, err)
	user, err := mem.Users.Create(ctx, &store.User{Email: "old@example.com", IamID: iamUser.ID})
	require.NoError(t, err)

	assert.True(t, b.SyncEmail(ctx, user, "new@example.com"))

	updated, err := mem.IamUsers.FindByID(ctx, iamUser.ID)
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)
}

func TestDeleteAccount_Cascade(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	b, mem := newBridge(t)
	iamUser, err := mem.IamUsers.Create(ctx, &store.IamUser{Email: "d@example.com"})
	require.NoError(t, err)
	user, err := mem.Users.Create(ctx, &store.User{Email: "d@example.com", IamID: iamUser.ID})
	require.NoError(t, err)

	_, err = mem.Accounts.Upsert(ctx, &store.Account{UserID: iamUser.ID, Password: "s:h"})
	require.NoError(t, err)
	_, err = mem.Sessions.Create(ctx, &store.Session{Token: "tok", UserID: iamUser.ID, ExpiresAt: time.Now().Add(time.Hour)})
	require.NoError(t, err)

	assert.True(t, b.DeleteAccount(ctx, user))

	gone, err := mem.IamUsers.FindByID(ctx, iamUser.ID)
	require.NoError(t, err)
	assert.Nil(t, gone)

	account, err := mem.Accounts.FindCredential(ctx, iamUser.ID)
	require.NoError(t, err)
	assert.Nil(t, account)

	session, err := mem.Sessions.FindByToken(ctx, "tok")
	require.NoError(t, err)
	assert.Nil(t, session)
}
