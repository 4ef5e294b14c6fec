package identity

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/lenneTech/nest-server-sub004/pkg/store"
	"github.com/lenneTech/nest-server-sub004/pkg/verifier"
)

// MappedUser is the per-request authenticated user value. It is plain
// data; authorization goes through the HasRole free function. ViaIam marks
// users authenticated through the IAM system, which tells downstream
// guards to skip the legacy verification they would otherwise run.
type MappedUser struct {
	ID       string
	IamID    string
	Email    string
	Roles    []string
	Verified bool
	ViaIam   bool
}

// Mapper resolves verified external identities against the canonical user
// collection.
type Mapper struct {
	users  store.UserStore
	logger *slog.Logger
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithLogger sets the logger used for mapping diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mapper) { m.logger = logger }
}

// NewMapper creates a mapper over the canonical user store.
func NewMapper(users store.UserStore, opts ...Option) *Mapper {
	m := &Mapper{
		users:  users,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// MapSessionUser maps a verified IAM identity onto the canonical record.
// Returns nil (not an error) when the input lacks an id or email; callers
// treat nil as "cannot authenticate".
//
// When a canonical record exists, its stored roles carry over, and the
// verified flag is the OR of both systems: either asserting verification
// is sufficient. When none exists, the mapped user is minimal: no stored
// roles, so only pseudo-roles can match until the user is linked.
func (m *Mapper) MapSessionUser(ctx context.Context, su *verifier.SessionUser) (*MappedUser, error) {
	if su == nil || su.ID == "" || su.Email == "" {
		return nil, nil
	}

	user, err := m.users.FindByEmailOrIamID(ctx, su.Email, su.ID)
	if err != nil {
		return nil, err
	}

	if user == nil {
		m.logger.DebugContext(ctx, "iam user has no canonical record",
			slog.String("iamId", su.ID), slog.String("email", su.Email))
		return &MappedUser{
			IamID:    su.ID,
			Email:    su.Email,
			Verified: su.EmailVerified,
			ViaIam:   true,
		}, nil
	}

	return &MappedUser{
		ID:       user.ID,
		IamID:    su.ID,
		Email:    user.Email,
		Roles:    user.Roles,
		Verified: user.Verified || su.EmailVerified,
		ViaIam:   true,
	}, nil
}

// LinkOrCreateUser upserts the canonical record for a verified IAM
// identity, keyed by email or IAM id. On insert the role list starts empty
// and the display name is split on the first space. On update only the
// supplied fields are overwritten; existing roles and flags stay intact.
func (m *Mapper) LinkOrCreateUser(ctx context.Context, su *verifier.SessionUser) (*store.User, error) {
	if su == nil || su.ID == "" || su.Email == "" {
		return nil, nil
	}

	first, last := splitName(su.Name)

	existing, err := m.users.FindByEmailOrIamID(ctx, su.Email, su.ID)
	if err != nil {
		return nil, err
	}

	if existing != nil {
		return m.users.Update(ctx, &store.User{
			ID:        existing.ID,
			Email:     su.Email,
			FirstName: first,
			LastName:  last,
			Verified:  su.EmailVerified,
			IamID:     su.ID,
		})
	}

	return m.users.Create(ctx, &store.User{
		Email:     su.Email,
		FirstName: first,
		LastName:  last,
		Roles:     []string{},
		Verified:  su.EmailVerified,
		IamID:     su.ID,
	})
}

// splitName splits a display name into first and last: the first
// space-delimited token becomes the first name, the remainder the last.
func splitName(name string) (first, last string) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", ""
	}
	first, last, _ = strings.Cut(name, " ")
	return first, strings.TrimSpace(last)
}
