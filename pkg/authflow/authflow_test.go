package authflow_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenneTech/nest-server-sub004/pkg/authflow"
	"github.com/lenneTech/nest-server-sub004/pkg/cookie"
	"github.com/lenneTech/nest-server-sub004/pkg/httpcodec"
	"github.com/lenneTech/nest-server-sub004/pkg/identity"
	"github.com/lenneTech/nest-server-sub004/pkg/jwks"
	"github.com/lenneTech/nest-server-sub004/pkg/jwt"
	"github.com/lenneTech/nest-server-sub004/pkg/passbridge"
	"github.com/lenneTech/nest-server-sub004/pkg/ratelimiter"
	"github.com/lenneTech/nest-server-sub004/pkg/store"
	"github.com/lenneTech/nest-server-sub004/pkg/verifier"
)

const (
	testSecret  = "flow-test-shared-secret-0123456789"
	testBaseURL = "http://localhost:3000"
	basePath    = "/iam"
)

type fixture struct {
	mem     *store.Memory
	cookies *cookie.Manager
	legacy  *jwt.Service
	flow    *authflow.Flow
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	mem := store.NewMemory()

	cookies, err := cookie.New(testSecret)
	require.NoError(t, err)

	legacy, err := jwt.New(testSecret)
	require.NoError(t, err)

	codec := httpcodec.New(cookies, basePath)
	iam := jwks.New(mem.Keys, testSecret, testBaseURL)
	v := verifier.New(iam, mem.Sessions, mem.IamUsers, mem.Users)
	mapper := identity.NewMapper(mem.Users)

	return &fixture{
		mem:     mem,
		cookies: cookies,
		legacy:  legacy,
		flow:    authflow.New(codec, v, mapper, legacy, mem.Users, mem.Sessions),
	}
}

func (f *fixture) seedUser(t *testing.T, email string, roles ...string) *store.User {
	t.Helper()
	user, err := f.mem.Users.Create(context.Background(), &store.User{
		Email:    email,
		Roles:    roles,
		Verified: true,
	})
	require.NoError(t, err)
	return user
}

// signInWithSession issues a database session for the given user reference
// and returns its opaque token.
func (f *fixture) signInWithSession(t *testing.T, userID string) string {
	t.Helper()
	session, err := f.mem.Sessions.Create(context.Background(), &store.Session{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)
	return session.Token
}

// iamToken mints an HS256 token in the IAM system's claim shape.
func iamToken(t *testing.T, sub, email string, exp time.Time) string {
	t.Helper()
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, jwtlib.MapClaims{
		"sub":           sub,
		"email":         email,
		"name":          "Flow Tester",
		"emailVerified": true,
		"iss":           testBaseURL,
		"aud":           testBaseURL,
		"exp":           exp.Unix(),
		"iat":           time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func (f *fixture) sessionCookieRequest(t *testing.T, token string) *http.Request {
	t.Helper()
	w := httptest.NewRecorder()
	f.cookies.SetSigned(w, cookie.SessionCookieName(basePath), token)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Cookie", w.Header().Get("Set-Cookie"))
	return r
}

func TestAuthenticate_LegacyBearerToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "legacy@example.com", "admin")

	token, err := f.legacy.Generate(jwt.LegacyClaims{
		ID:        user.ID,
		DeviceID:  "device-1",
		ExpiresAt: time.Now().Add(time.Hour).Unix(),
		IssuedAt:  time.Now().Unix(),
	})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	res := f.flow.Authenticate(context.Background(), r)
	require.True(t, res.Authenticated())
	assert.Equal(t, user.ID, res.User.ID)
	assert.Equal(t, []string{"admin"}, res.User.Roles)
	assert.False(t, res.User.ViaIam)
}

func TestAuthenticate_IamBearerToken(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "iam@example.com", "admin")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+iamToken(t, "iam-user-1", user.Email, time.Now().Add(time.Hour)))

	res := f.flow.Authenticate(context.Background(), r)
	require.True(t, res.Authenticated())
	assert.Equal(t, user.ID, res.User.ID)
	assert.Equal(t, "iam-user-1", res.User.IamID)
	assert.True(t, res.User.ViaIam)
	assert.Nil(t, res.Session, "no database session exists for a pure bearer request")
}

func TestAuthenticate_IamBearerResolvesActiveSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "with-session@example.com")
	token := f.signInWithSession(t, "iam-user-2")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+iamToken(t, "iam-user-2", user.Email, time.Now().Add(time.Hour)))

	res := f.flow.Authenticate(context.Background(), r)
	require.True(t, res.Authenticated())
	require.NotNil(t, res.Session)
	assert.Equal(t, token, res.Session.Token)
}

func TestAuthenticate_JWTInCookie(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "cookie-jwt@example.com")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{
		Name:  cookie.LegacyCookieName,
		Value: iamToken(t, "iam-user-3", user.Email, time.Now().Add(time.Hour)),
	})

	res := f.flow.Authenticate(context.Background(), r)
	require.True(t, res.Authenticated())
	assert.Equal(t, user.ID, res.User.ID)
	assert.True(t, res.User.ViaIam)
}

func TestAuthenticate_CookieJWTDisabled(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "cookie-jwt-off@example.com")

	mem := f.mem
	codec := httpcodec.New(f.cookies, basePath)
	iam := jwks.New(mem.Keys, testSecret, testBaseURL)
	v := verifier.New(iam, mem.Sessions, mem.IamUsers, mem.Users)
	flow := authflow.New(codec, v, identity.NewMapper(mem.Users), f.legacy, mem.Users, mem.Sessions,
		authflow.WithCookieJWT(false))

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{
		Name:  cookie.LegacyCookieName,
		Value: iamToken(t, "iam-user-4", user.Email, time.Now().Add(time.Hour)),
	})

	res := flow.Authenticate(context.Background(), r)
	assert.False(t, res.Authenticated())
}

func TestAuthenticate_SessionCookie(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "session@example.com", "editor")
	token := f.signInWithSession(t, user.ID)

	res := f.flow.Authenticate(context.Background(), f.sessionCookieRequest(t, token))
	require.True(t, res.Authenticated())
	assert.Equal(t, user.ID, res.User.ID)
	assert.Equal(t, []string{"editor"}, res.User.Roles)
	require.NotNil(t, res.Session)
	assert.Equal(t, token, res.Session.Token)
}

func TestAuthenticate_ExpiredSessionCookie(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "expired-session@example.com")

	session, err := f.mem.Sessions.Create(context.Background(), &store.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(-time.Minute),
	})
	require.NoError(t, err)

	res := f.flow.Authenticate(context.Background(), f.sessionCookieRequest(t, session.Token))
	assert.False(t, res.Authenticated())
}

func TestAuthenticate_NoCredentials(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	res := f.flow.Authenticate(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.False(t, res.Authenticated())
	assert.False(t, res.HeaderPresent)
}

// A user who signed up on the legacy path only gets an IAM credential
// account on first IAM sign-in with the same password, and the follow-up
// session sign-in resolves the canonical user.
func TestScenario_LegacyAccountMigration(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	const password = "correct horse battery staple"

	hash, err := passbridge.LegacyHash(password)
	require.NoError(t, err)

	legacyUser, err := f.mem.Users.Create(ctx, &store.User{
		Email:     "migrate@example.com",
		FirstName: "Mia",
		LastName:  "Grant",
		Roles:     []string{"admin"},
		Verified:  true,
		Password:  hash,
	})
	require.NoError(t, err)

	bridge := passbridge.New(f.mem.Users, f.mem.IamUsers, f.mem.Accounts, f.mem.Sessions)

	migrated, err := bridge.MigrateAccountToIam(ctx, legacyUser.Email, password)
	require.NoError(t, err)
	require.True(t, migrated)

	// The wrong password is rejected explicitly, not skipped.
	_, err = bridge.MigrateAccountToIam(ctx, legacyUser.Email, "wrong password")
	assert.ErrorIs(t, err, passbridge.ErrPasswordMismatch)

	iamUser, err := f.mem.IamUsers.FindByEmail(ctx, legacyUser.Email)
	require.NoError(t, err)
	require.NotNil(t, iamUser)

	account, err := f.mem.Accounts.FindCredential(ctx, iamUser.ID)
	require.NoError(t, err)
	require.NotNil(t, account)
	assert.True(t, passbridge.VerifyIam(password, account.Password))

	// The IAM sign-in that follows migration issues a session; the flow
	// resolves it back to the canonical user with roles intact.
	token := f.signInWithSession(t, iamUser.ID)
	res := f.flow.Authenticate(ctx, f.sessionCookieRequest(t, token))
	require.True(t, res.Authenticated())
	assert.Equal(t, legacyUser.ID, res.User.ID)
	assert.Equal(t, []string{"admin"}, res.User.Roles)
}

// An expired bearer JWT must not block the session-cookie fallback, and
// the failed header token must not leak into session lookup.
func TestScenario_ExpiredHeaderFallsBackToSessionCookie(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "fallback@example.com", "admin")
	token := f.signInWithSession(t, user.ID)

	r := f.sessionCookieRequest(t, token)
	r.Header.Set("Authorization", "Bearer "+iamToken(t, "iam-user-5", user.Email, time.Now().Add(-time.Minute)))

	res := f.flow.Authenticate(context.Background(), r)
	require.True(t, res.Authenticated())
	assert.True(t, res.HeaderPresent)
	assert.True(t, res.HeaderFailed)
	assert.Equal(t, user.ID, res.User.ID)
	require.NotNil(t, res.Session)
	assert.Equal(t, token, res.Session.Token)
}

// Eleven requests against max=10 in one window: the eleventh is rejected
// with an exhausted budget and a positive retry-after.
func TestScenario_RateLimitExceeded(t *testing.T) {
	t.Parallel()

	limiter, err := ratelimiter.New(ratelimiter.NewMemoryStore(), ratelimiter.Config{
		Window: time.Minute,
		Max:    10,
	})
	require.NoError(t, err)

	handler := authflow.RateLimit(limiter, "sign-in")(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 10; i++ {
		w := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/sign-in", nil)
		r.RemoteAddr = "203.0.113.7:1234"
		handler.ServeHTTP(w, r)
		require.Equal(t, http.StatusOK, w.Code, "request %d should pass", i+1)
	}

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/sign-in", nil)
	r.RemoteAddr = "203.0.113.7:1234"
	handler.ServeHTTP(w, r)

	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))

	retry, err := time.ParseDuration(w.Header().Get("Retry-After") + "s")
	require.NoError(t, err)
	assert.Positive(t, retry)

	// A different client IP has its own budget.
	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/sign-in", nil)
	r.RemoteAddr = "198.51.100.9:1234"
	handler.ServeHTTP(w, r)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMiddleware_AttachesUserAndSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	user := f.seedUser(t, "mw@example.com", "admin")
	token := f.signInWithSession(t, user.ID)

	var gotUser *identity.MappedUser
	var gotSession *store.Session
	handler := f.flow.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = authflow.UserFromContext(r.Context())
		gotSession, _ = authflow.SessionFromContext(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, f.sessionCookieRequest(t, token))

	require.NotNil(t, gotUser)
	assert.Equal(t, user.ID, gotUser.ID)
	require.NotNil(t, gotSession)
	assert.Equal(t, token, gotSession.Token)
}

func TestMiddleware_SkipsWhenUserAlreadyAttached(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	preset := &identity.MappedUser{ID: "preset", Email: "preset@example.com"}

	var gotUser *identity.MappedUser
	handler := f.flow.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = authflow.UserFromContext(r.Context())
	}))

	user := f.seedUser(t, "other@example.com")
	token := f.signInWithSession(t, user.ID)
	r := f.sessionCookieRequest(t, token)
	r = r.WithContext(authflow.WithUser(r.Context(), preset))

	handler.ServeHTTP(httptest.NewRecorder(), r)
	assert.Same(t, preset, gotUser)
}

func TestRequireRoles(t *testing.T) {
	t.Parallel()

	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	serve := func(user *identity.MappedUser, roles ...string) int {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		if user != nil {
			r = r.WithContext(authflow.WithUser(r.Context(), user))
		}
		w := httptest.NewRecorder()
		authflow.RequireRoles(roles...)(ok).ServeHTTP(w, r)
		return w.Code
	}

	admin := &identity.MappedUser{ID: "u1", Email: "a@b.c", Roles: []string{"admin"}, Verified: true}

	assert.Equal(t, http.StatusOK, serve(admin, "admin"))
	assert.Equal(t, http.StatusOK, serve(admin, identity.RoleUser))
	assert.Equal(t, http.StatusOK, serve(nil, identity.RoleEveryone))
	assert.Equal(t, http.StatusOK, serve(nil))
	assert.Equal(t, http.StatusUnauthorized, serve(nil, identity.RoleUser))
	assert.Equal(t, http.StatusForbidden, serve(admin, "editor"))
	assert.Equal(t, http.StatusForbidden, serve(admin, identity.RoleNoOne, "admin"))
}
