package store

import "context"

// UserStore provides access to the canonical user collection.
type UserStore interface {
	// FindByID looks up a user by canonical id.
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByEmail looks up a user by email.
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindByEmailOrIamID returns the user matching either the email or the
	// IAM foreign id. Either argument may be empty.
	FindByEmailOrIamID(ctx context.Context, email, iamID string) (*User, error)

	// FindByFlexibleID resolves a foreign-key-style reference that may be a
	// native id, a stringified id, or an iamId value, in that order.
	FindByFlexibleID(ctx context.Context, ref string) (*User, error)

	// Create inserts a new user and returns it with its id populated.
	Create(ctx context.Context, user *User) (*User, error)

	// Update overwrites only the supplied non-zero fields of the stored
	// record and returns the updated user.
	Update(ctx context.Context, user *User) (*User, error)

	// Delete removes a user by canonical id.
	Delete(ctx context.Context, id string) error
}

// IamUserStore provides access to the IAM system's user collection.
type IamUserStore interface {
	FindByID(ctx context.Context, id string) (*IamUser, error)
	FindByEmail(ctx context.Context, email string) (*IamUser, error)
	Create(ctx context.Context, user *IamUser) (*IamUser, error)
	Update(ctx context.Context, user *IamUser) (*IamUser, error)
	Delete(ctx context.Context, id string) error
}

// AccountStore provides access to the IAM system's account collection.
type AccountStore interface {
	// FindCredential returns the credential-provider account for a user.
	FindCredential(ctx context.Context, userID string) (*Account, error)

	// Upsert creates or replaces the credential-provider account for
	// account.UserID. At most one such account exists per user.
	Upsert(ctx context.Context, account *Account) (*Account, error)

	// DeleteByUserID removes all accounts owned by the user.
	DeleteByUserID(ctx context.Context, userID string) error
}

// SessionStore provides access to the IAM system's session collection.
type SessionStore interface {
	// FindByToken returns the session with the given token, expired or not.
	FindByToken(ctx context.Context, token string) (*Session, error)

	// FindActiveByUserID returns any unexpired session owned by the user.
	FindActiveByUserID(ctx context.Context, userID string) (*Session, error)

	Create(ctx context.Context, session *Session) (*Session, error)
	Delete(ctx context.Context, token string) error
	DeleteByUserID(ctx context.Context, userID string) error
}

// KeyStore provides access to the IAM system's jwks collection.
type KeyStore interface {
	// FindByKid looks up a key by its kid.
	FindByKid(ctx context.Context, kid string) (*JWK, error)

	// All returns every stored key, for the linear-scan fallback when the
	// kid lookup misses (the store's native id may differ from the kid).
	All(ctx context.Context) ([]JWK, error)
}
