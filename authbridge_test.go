package authbridge_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authbridge "github.com/lenneTech/nest-server-sub004"
	"github.com/lenneTech/nest-server-sub004/pkg/authflow"
	"github.com/lenneTech/nest-server-sub004/pkg/cookie"
	"github.com/lenneTech/nest-server-sub004/pkg/logger"
	"github.com/lenneTech/nest-server-sub004/pkg/ratelimiter"
	"github.com/lenneTech/nest-server-sub004/pkg/store"
)

func testConfig() authbridge.Config {
	return authbridge.Config{
		Secret:       "bridge-test-secret-0123456789abcdef",
		BasePath:     "/iam",
		BaseURL:      "http://localhost:3000",
		CookieJWT:    true,
		MaxBodyBytes: 1 << 20,
		RateLimit:    ratelimiter.Config{Window: time.Minute, Max: 10},
	}
}

func TestNew_RequiresSecret(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.Secret = ""
	_, err := authbridge.New(cfg, authbridge.StoresFromMemory(store.NewMemory()))
	assert.ErrorIs(t, err, authbridge.ErrMissingSecret)
}

func TestNew_InvalidRateLimit(t *testing.T) {
	t.Parallel()

	cfg := testConfig()
	cfg.RateLimit = ratelimiter.Config{}
	_, err := authbridge.New(cfg, authbridge.StoresFromMemory(store.NewMemory()))
	assert.ErrorIs(t, err, ratelimiter.ErrInvalidConfig)
}

func TestNew_WiresSessionAuthentication(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	bridge, err := authbridge.New(testConfig(), authbridge.StoresFromMemory(mem),
		authbridge.WithLogger(logger.Discard()))
	require.NoError(t, err)

	ctx := context.Background()
	user, err := mem.Users.Create(ctx, &store.User{
		Email:    "wired@example.com",
		Roles:    []string{"admin"},
		Verified: true,
	})
	require.NoError(t, err)

	session, err := mem.Sessions.Create(ctx, &store.Session{
		Token:     uuid.NewString(),
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(time.Hour),
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	bridge.Cookies.SetSigned(w, cookie.SessionCookieName("/iam"), session.Token)
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Cookie", w.Header().Get("Set-Cookie"))

	var gotID string
	handler := bridge.Flow.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if u, ok := authflow.UserFromContext(r.Context()); ok {
			gotID = u.ID
		}
	}))
	handler.ServeHTTP(httptest.NewRecorder(), r)

	assert.Equal(t, user.ID, gotID)
}

func TestNew_LegacyTokenRoundTrip(t *testing.T) {
	t.Parallel()

	mem := store.NewMemory()
	bridge, err := authbridge.New(testConfig(), authbridge.StoresFromMemory(mem),
		authbridge.WithLogger(logger.Discard()))
	require.NoError(t, err)

	ctx := context.Background()
	user, err := mem.Users.Create(ctx, &store.User{Email: "legacy-wired@example.com"})
	require.NoError(t, err)

	token, err := bridge.Legacy.Generate(map[string]any{
		"id":  user.ID,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	res := bridge.Flow.Authenticate(ctx, r)
	require.True(t, res.Authenticated())
	assert.Equal(t, user.ID, res.User.ID)
}
