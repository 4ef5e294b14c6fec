package passbridge

import (
	"context"
	"io"
	"log/slog"

	"github.com/lenneTech/nest-server-sub004/pkg/store"
)

// Bridge performs the cross-system account operations: migration of legacy
// accounts into the IAM store and best-effort mirroring of password, email
// and deletion events.
type Bridge struct {
	users    store.UserStore
	iamUsers store.IamUserStore
	accounts store.AccountStore
	sessions store.SessionStore
	logger   *slog.Logger
}

// Option configures a Bridge.
type Option func(*Bridge)

// WithLogger sets the logger used for sync diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bridge) { b.logger = logger }
}

// New creates a bridge over both systems' stores.
func New(users store.UserStore, iamUsers store.IamUserStore, accounts store.AccountStore, sessions store.SessionStore, opts ...Option) *Bridge {
	b := &Bridge{
		users:    users,
		iamUsers: iamUsers,
		accounts: accounts,
		sessions: sessions,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// MigrateAccountToIam creates the IAM-side user and credential account for
// a legacy user, keyed by email. The supplied password must prove against
// the stored legacy hash (in either historical form); on mismatch the
// migration is rejected with ErrPasswordMismatch and no account is
// created. Returns (false, nil) when there is nothing to migrate and
// (true, nil) when the account exists afterwards — re-running a completed
// migration is a no-op success.
func (b *Bridge) MigrateAccountToIam(ctx context.Context, email, password string) (bool, error) {
	user, err := b.users.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if user == nil || user.Password == "" {
		return false, nil
	}

	if !VerifyLegacy(password, user.Password) {
		return false, ErrPasswordMismatch
	}

	iamUser, err := b.iamUsers.FindByEmail(ctx, email)
	if err != nil {
		return false, err
	}
	if iamUser == nil {
		iamUser, err = b.iamUsers.Create(ctx, &store.IamUser{
			Email:         email,
			Name:          user.Name(),
			EmailVerified: user.Verified,
		})
		if err != nil {
			return false, err
		}
	}

	existing, err := b.accounts.FindCredential(ctx, iamUser.ID)
	if err != nil {
		return false, err
	}
	if existing == nil {
		hash, err := IamHash(password)
		if err != nil {
			return false, err
		}
		if _, err := b.accounts.Upsert(ctx, &store.Account{
			ProviderID: store.ProviderCredential,
			UserID:     iamUser.ID,
			AccountID:  iamUser.ID,
			Password:   hash,
		}); err != nil {
			return false, err
		}
	}

	if user.IamID == "" {
		if _, err := b.users.Update(ctx, &store.User{ID: user.ID, IamID: iamUser.ID}); err != nil {
			return false, err
		}
	}

	b.logger.InfoContext(ctx, "legacy account migrated to iam", slog.String("email", email))
	return true, nil
}

// SyncPassword mirrors a password change into the IAM credential account.
// Best-effort: failures are logged and reported as false, never returned,
// so the primary password change cannot be rolled back by the mirror.
func (b *Bridge) SyncPassword(ctx context.Context, user *store.User, newPassword string) bool {
	if user == nil || user.IamID == "" {
		return false
	}

	hash, err := IamHash(newPassword)
	if err != nil {
		b.logger.ErrorContext(ctx, "iam password sync failed", slog.String("userId", user.ID), slog.String("error", err.Error()))
		return false
	}

	if _, err := b.accounts.Upsert(ctx, &store.Account{
		ProviderID: store.ProviderCredential,
		UserID:     user.IamID,
		AccountID:  user.IamID,
		Password:   hash,
	}); err != nil {
		b.logger.ErrorContext(ctx, "iam password sync failed", slog.String("userId", user.ID), slog.String("error", err.Error()))
		return false
	}
	return true
}

// SyncEmail mirrors an email change into the IAM user record. Best-effort
// and idempotent.
func (b *Bridge) SyncEmail(ctx context.Context, user *store.User, newEmail string) bool {
	if user == nil || user.IamID == "" || newEmail == "" {
		return false
	}

	if _, err := b.iamUsers.Update(ctx, &store.IamUser{ID: user.IamID, Email: newEmail}); err != nil {
		b.logger.ErrorContext(ctx, "iam email sync failed", slog.String("userId", user.ID), slog.String("error", err.Error()))
		return false
	}
	return true
}

// DeleteAccount cascades an account deletion into the IAM store: sessions,
// credential accounts and the IAM user record. Best-effort; partial
// failure is logged and reported as false, the canonical deletion has
// already happened.
func (b *Bridge) DeleteAccount(ctx context.Context, user *store.User) bool {
	if user == nil || user.IamID == "" {
		return false
	}

	ok := true
	if err := b.sessions.DeleteByUserID(ctx, user.IamID); err != nil {
		b.logger.ErrorContext(ctx, "iam session cleanup failed", slog.String("userId", user.ID), slog.String("error", err.Error()))
		ok = false
	}
	if err := b.accounts.DeleteByUserID(ctx, user.IamID); err != nil {
		b.logger.ErrorContext(ctx, "iam account cleanup failed", slog.String("userId", user.ID), slog.String("error", err.Error()))
		ok = false
	}
	if err := b.iamUsers.Delete(ctx, user.IamID); err != nil {
		b.logger.ErrorContext(ctx, "iam user cleanup failed", slog.String("userId", user.ID), slog.String("error", err.Error()))
		ok = false
	}
	return ok
}
