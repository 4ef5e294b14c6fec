package store

import "time"

// User is the canonical user record. Email is unique across the collection;
// Password holds a bcrypt hash in the legacy format; IamID links the record
// to the IAM system's own user collection.
type User struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Email     string    `bson:"email" json:"email"`
	FirstName string    `bson:"firstName,omitempty" json:"firstName,omitempty"`
	LastName  string    `bson:"lastName,omitempty" json:"lastName,omitempty"`
	Roles     []string  `bson:"roles" json:"roles"`
	Verified  bool      `bson:"verified" json:"verified"`
	Password  string    `bson:"password,omitempty" json:"-"`
	IamID     string    `bson:"iamId,omitempty" json:"iamId,omitempty"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Name returns the display name the IAM system stores as a single field.
func (u *User) Name() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}

// IamUser is a record in the IAM system's user collection.
type IamUser struct {
	ID            string    `bson:"_id,omitempty" json:"id"`
	Email         string    `bson:"email" json:"email"`
	Name          string    `bson:"name,omitempty" json:"name,omitempty"`
	EmailVerified bool      `bson:"emailVerified" json:"emailVerified"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// ProviderCredential is the providerId of password-based IAM accounts.
const ProviderCredential = "credential"

// Account is a credential entry in the IAM system's account collection.
// Password holds a scrypt hash in "saltHex:hashHex" form. At most one
// credential-provider account exists per user.
type Account struct {
	ID         string    `bson:"_id,omitempty" json:"id"`
	ProviderID string    `bson:"providerId" json:"providerId"`
	UserID     string    `bson:"userId" json:"userId"`
	AccountID  string    `bson:"accountId" json:"accountId"`
	Password   string    `bson:"password,omitempty" json:"-"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt  time.Time `bson:"updatedAt" json:"updatedAt"`
}

// Session is an ephemeral token issued by the IAM system. A session is valid
// iff its token exists and ExpiresAt is in the future.
type Session struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Token     string    `bson:"token" json:"token"`
	UserID    string    `bson:"userId" json:"userId"`
	ExpiresAt time.Time `bson:"expiresAt" json:"expiresAt"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// IsExpired reports whether the session's expiry lies in the past.
func (s *Session) IsExpired() bool {
	return s != nil && !s.ExpiresAt.After(time.Now())
}

// JWK is a public key entry in the IAM system's jwks collection. PublicKey
// holds the JWK-format JSON blob; Alg is the algorithm hint ("EdDSA",
// "ES256", "RS256").
type JWK struct {
	ID        string    `bson:"_id,omitempty" json:"id"`
	Kid       string    `bson:"kid,omitempty" json:"kid,omitempty"`
	Alg       string    `bson:"alg" json:"alg"`
	PublicKey string    `bson:"publicKey" json:"publicKey"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
