package cookie_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lenneTech/nest-server-sub004/pkg/cookie"
)

const testSecret = "test-signing-secret-for-cookie-package"

func TestSessionCookieName(t *testing.T) {
	t.Parallel()

	tests := []struct {
		basePath string
		want     string
	}{
		{"/iam", "iam.session_token"},
		{"iam", "iam.session_token"},
		{"/api/iam", "api.iam.session_token"},
		{"", ".session_token"},
	}

	for _, tt := range tests {
		t.Run(tt.basePath, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cookie.SessionCookieName(tt.basePath))
		})
	}
}

func TestSignVerifyRoundTrip(t *testing.T) {
	t.Parallel()

	signed := cookie.Sign("session-token-value", testSecret)
	assert.True(t, cookie.IsSigned(signed))

	value, err := cookie.Verify(signed, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "session-token-value", value)
}

func TestSignIfUnsigned_Idempotent(t *testing.T) {
	t.Parallel()

	once := cookie.SignIfUnsigned("abc123", testSecret)
	twice := cookie.SignIfUnsigned(once, testSecret)
	assert.Equal(t, once, twice)
}

func TestIsSigned(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		value string
		want  bool
	}{
		{"signed value", cookie.Sign("value", testSecret), true},
		{"plain value", "value", false},
		{"jwt has two dots", "aaa.bbb.ccc", false},
		{"short tail", "value.abc", false},
		{"tail with invalid chars", "value.!!!!!!!!!!!!!!!!!!!!!!!!", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, cookie.IsSigned(tt.value))
		})
	}
}

func TestVerify_Tampered(t *testing.T) {
	t.Parallel()

	signed := cookie.Sign("value", testSecret)
	_, err := cookie.Verify("tampered"+signed, testSecret)
	assert.ErrorIs(t, err, cookie.ErrInvalidSignature)

	_, err = cookie.Verify("no-dot-here", testSecret)
	assert.ErrorIs(t, err, cookie.ErrInvalidFormat)

	_, err = cookie.Verify(signed, "wrong-secret")
	assert.ErrorIs(t, err, cookie.ErrInvalidSignature)
}

func TestManager_SignedRoundTrip(t *testing.T) {
	t.Parallel()

	m, err := cookie.New(testSecret)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	m.SetSigned(w, "iam.session_token", "tok_abc123")

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.Header.Set("Cookie", w.Header().Get("Set-Cookie"))

	value, err := m.GetSigned(r, "iam.session_token")
	require.NoError(t, err)
	assert.Equal(t, "tok_abc123", value)
}

func TestManager_GetSigned_LegacyUnsignedCookie(t *testing.T) {
	t.Parallel()

	m, err := cookie.New(testSecret)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: "token", Value: "legacy-raw-value"})

	value, err := m.GetSigned(r, "token")
	require.NoError(t, err)
	assert.Equal(t, "legacy-raw-value", value)
}

func TestManager_Get_Missing(t *testing.T) {
	t.Parallel()

	m, err := cookie.New(testSecret)
	require.NoError(t, err)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	_, err = m.Get(r, "absent")
	assert.ErrorIs(t, err, cookie.ErrCookieNotFound)
}

func TestNew_RequiresSecret(t *testing.T) {
	t.Parallel()

	_, err := cookie.New("")
	assert.ErrorIs(t, err, cookie.ErrNoSecret)
}
