package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory bundles in-memory implementations of every store. Intended for
// tests and local development; the implementations are safe for concurrent
// use and expose Reset for test harness teardown.
type Memory struct {
	Users    *MemoryUserStore
	IamUsers *MemoryIamUserStore
	Accounts *MemoryAccountStore
	Sessions *MemorySessionStore
	Keys     *MemoryKeyStore
}

// NewMemory creates a fresh set of empty in-memory stores.
func NewMemory() *Memory {
	return &Memory{
		Users:    &MemoryUserStore{users: map[string]*User{}},
		IamUsers: &MemoryIamUserStore{users: map[string]*IamUser{}},
		Accounts: &MemoryAccountStore{accounts: map[string]*Account{}},
		Sessions: &MemorySessionStore{sessions: map[string]*Session{}},
		Keys:     &MemoryKeyStore{},
	}
}

// Reset clears every store.
func (m *Memory) Reset() {
	m.Users.Reset()
	m.IamUsers.Reset()
	m.Accounts.Reset()
	m.Sessions.Reset()
	m.Keys.Reset()
}

// MemoryUserStore implements UserStore backed by a map keyed by user id.
type MemoryUserStore struct {
	mu    sync.RWMutex
	users map[string]*User
}

func (s *MemoryUserStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = map[string]*User{}
}

func copyUser(u *User) *User {
	if u == nil {
		return nil
	}
	c := *u
	c.Roles = append([]string(nil), u.Roles...)
	return &c
}

func (s *MemoryUserStore) FindByID(ctx context.Context, id string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copyUser(s.users[id]), nil
}

func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	if email == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryUserStore) FindByEmailOrIamID(ctx context.Context, email, iamID string) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if (email != "" && u.Email == email) || (iamID != "" && u.IamID == iamID) {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryUserStore) FindByFlexibleID(ctx context.Context, ref string) (*User, error) {
	if ref == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[ref]; ok {
		return copyUser(u), nil
	}
	for _, u := range s.users {
		if u.IamID == ref {
			return copyUser(u), nil
		}
	}
	return nil, nil
}

func (s *MemoryUserStore) Create(ctx context.Context, user *User) (*User, error) {
	if user.Email == "" {
		return nil, ErrMissingEmail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == user.Email {
			return nil, ErrDuplicateKey
		}
	}
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Roles == nil {
		user.Roles = []string{}
	}
	s.users[user.ID] = copyUser(user)
	return copyUser(user), nil
}

func (s *MemoryUserStore) Update(ctx context.Context, user *User) (*User, error) {
	if user.ID == "" {
		return nil, ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return nil, nil
	}
	if user.Email != "" {
		existing.Email = user.Email
	}
	if user.FirstName != "" {
		existing.FirstName = user.FirstName
	}
	if user.LastName != "" {
		existing.LastName = user.LastName
	}
	if user.Roles != nil {
		existing.Roles = append([]string(nil), user.Roles...)
	}
	if user.Verified {
		existing.Verified = true
	}
	if user.Password != "" {
		existing.Password = user.Password
	}
	if user.IamID != "" {
		existing.IamID = user.IamID
	}
	existing.UpdatedAt = time.Now()
	return copyUser(existing), nil
}

func (s *MemoryUserStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

// MemoryIamUserStore implements IamUserStore backed by a map.
type MemoryIamUserStore struct {
	mu    sync.RWMutex
	users map[string]*IamUser
}

func (s *MemoryIamUserStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = map[string]*IamUser{}
}

func (s *MemoryIamUserStore) FindByID(ctx context.Context, id string) (*IamUser, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if u, ok := s.users[id]; ok {
		c := *u
		return &c, nil
	}
	return nil, nil
}

func (s *MemoryIamUserStore) FindByEmail(ctx context.Context, email string) (*IamUser, error) {
	if email == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemoryIamUserStore) Create(ctx context.Context, user *IamUser) (*IamUser, error) {
	if user.Email == "" {
		return nil, ErrMissingEmail
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	c := *user
	s.users[user.ID] = &c
	return user, nil
}

func (s *MemoryIamUserStore) Update(ctx context.Context, user *IamUser) (*IamUser, error) {
	if user.ID == "" {
		return nil, ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.users[user.ID]
	if !ok {
		return nil, nil
	}
	if user.Email != "" {
		existing.Email = user.Email
	}
	if user.Name != "" {
		existing.Name = user.Name
	}
	if user.EmailVerified {
		existing.EmailVerified = true
	}
	existing.UpdatedAt = time.Now()
	c := *existing
	return &c, nil
}

func (s *MemoryIamUserStore) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	return nil
}

// MemoryAccountStore implements AccountStore backed by a map keyed by user id.
type MemoryAccountStore struct {
	mu       sync.RWMutex
	accounts map[string]*Account
}

func (s *MemoryAccountStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts = map[string]*Account{}
}

func (s *MemoryAccountStore) FindCredential(ctx context.Context, userID string) (*Account, error) {
	if userID == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if a, ok := s.accounts[userID]; ok {
		c := *a
		return &c, nil
	}
	return nil, nil
}

func (s *MemoryAccountStore) Upsert(ctx context.Context, account *Account) (*Account, error) {
	if account.UserID == "" {
		return nil, ErrMissingID
	}
	if account.ProviderID == "" {
		account.ProviderID = ProviderCredential
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if existing, ok := s.accounts[account.UserID]; ok {
		if account.Password != "" {
			existing.Password = account.Password
		}
		if account.AccountID != "" {
			existing.AccountID = account.AccountID
		}
		existing.UpdatedAt = now
		c := *existing
		return &c, nil
	}

	if account.ID == "" {
		account.ID = uuid.NewString()
	}
	if account.AccountID == "" {
		account.AccountID = account.UserID
	}
	account.CreatedAt = now
	account.UpdatedAt = now
	c := *account
	s.accounts[account.UserID] = &c
	return account, nil
}

func (s *MemoryAccountStore) DeleteByUserID(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, userID)
	return nil
}

// MemorySessionStore implements SessionStore backed by a map keyed by token.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func (s *MemorySessionStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = map[string]*Session{}
}

func (s *MemorySessionStore) FindByToken(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sess, ok := s.sessions[token]; ok {
		c := *sess
		return &c, nil
	}
	return nil, nil
}

func (s *MemorySessionStore) FindActiveByUserID(ctx context.Context, userID string) (*Session, error) {
	if userID == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sess := range s.sessions {
		if sess.UserID == userID && sess.ExpiresAt.After(time.Now()) {
			c := *sess
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemorySessionStore) Create(ctx context.Context, session *Session) (*Session, error) {
	if session.Token == "" || session.UserID == "" {
		return nil, ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if session.ID == "" {
		session.ID = uuid.NewString()
	}
	session.CreatedAt = time.Now()
	c := *session
	s.sessions[session.Token] = &c
	return session, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

func (s *MemorySessionStore) DeleteByUserID(ctx context.Context, userID string) error {
	if userID == "" {
		return ErrMissingID
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, sess := range s.sessions {
		if sess.UserID == userID {
			delete(s.sessions, token)
		}
	}
	return nil
}

// MemoryKeyStore implements KeyStore backed by a slice.
type MemoryKeyStore struct {
	mu   sync.RWMutex
	keys []JWK
}

func (s *MemoryKeyStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = nil
}

// Add registers a key. Test helper; the production key store is populated
// by the IAM system itself.
func (s *MemoryKeyStore) Add(key JWK) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys = append(s.keys, key)
}

func (s *MemoryKeyStore) FindByKid(ctx context.Context, kid string) (*JWK, error) {
	if kid == "" {
		return nil, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, k := range s.keys {
		if k.Kid == kid || k.ID == kid {
			c := k
			return &c, nil
		}
	}
	return nil, nil
}

func (s *MemoryKeyStore) All(ctx context.Context) ([]JWK, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]JWK(nil), s.keys...), nil
}
