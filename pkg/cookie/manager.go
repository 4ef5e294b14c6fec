package cookie

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Manager reads and writes cookies on net/http requests and responses,
// applying the shared-secret signing scheme where asked.
type Manager struct {
	secret   string
	defaults Options
}

// Options control the attributes of written cookies.
type Options struct {
	Path     string
	Domain   string
	MaxAge   int
	Secure   bool
	HttpOnly bool
	SameSite http.SameSite
}

// Option overrides a single cookie attribute.
type Option func(*Options)

func WithPath(path string) Option {
	return func(o *Options) { o.Path = path }
}

func WithDomain(domain string) Option {
	return func(o *Options) { o.Domain = domain }
}

func WithMaxAge(seconds int) Option {
	return func(o *Options) { o.MaxAge = seconds }
}

func WithSecure(secure bool) Option {
	return func(o *Options) { o.Secure = secure }
}

func WithHTTPOnly(httpOnly bool) Option {
	return func(o *Options) { o.HttpOnly = httpOnly }
}

func WithSameSite(mode http.SameSite) Option {
	return func(o *Options) { o.SameSite = mode }
}

// New creates a cookie manager with the given signing secret and default
// attributes (Path=/, HttpOnly, SameSite=Lax).
func New(secret string, opts ...Option) (*Manager, error) {
	if secret == "" {
		return nil, ErrNoSecret
	}

	defaults := Options{
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	for _, opt := range opts {
		opt(&defaults)
	}

	return &Manager{secret: secret, defaults: defaults}, nil
}

// Set writes a plain cookie.
func (m *Manager) Set(w http.ResponseWriter, name, value string, opts ...Option) {
	options := m.defaults
	for _, opt := range opts {
		opt(&options)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     options.Path,
		Domain:   options.Domain,
		MaxAge:   options.MaxAge,
		Secure:   options.Secure,
		HttpOnly: options.HttpOnly,
		SameSite: options.SameSite,
	})
}

// Get returns the raw value of the named cookie, percent-decoded if the
// client stored it encoded.
func (m *Manager) Get(r *http.Request, name string) (string, error) {
	c, err := r.Cookie(name)
	if err != nil {
		if errors.Is(err, http.ErrNoCookie) {
			return "", ErrCookieNotFound
		}
		return "", err
	}

	// PathUnescape rather than QueryUnescape: base64 signatures contain "+",
	// which must not be decoded to a space.
	if strings.Contains(c.Value, "%") {
		if decoded, err := url.PathUnescape(c.Value); err == nil {
			return decoded, nil
		}
	}
	return c.Value, nil
}

// Delete expires the named cookie.
func (m *Manager) Delete(w http.ResponseWriter, name string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     m.defaults.Path,
		Domain:   m.defaults.Domain,
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   m.defaults.Secure,
		HttpOnly: m.defaults.HttpOnly,
		SameSite: m.defaults.SameSite,
	})
}

// SetSigned writes the cookie in signed form. Signing is idempotent:
// already-signed values pass through untouched.
func (m *Manager) SetSigned(w http.ResponseWriter, name, value string, opts ...Option) {
	m.Set(w, name, SignIfUnsigned(value, m.secret), opts...)
}

// GetSigned reads and verifies a signed cookie, returning the bare value.
// Unsigned cookies written by the legacy system are returned as-is so both
// generations of clients keep working.
func (m *Manager) GetSigned(r *http.Request, name string) (string, error) {
	raw, err := m.Get(r, name)
	if err != nil {
		return "", err
	}
	return m.Unsign(raw)
}

// Unsign verifies and strips the signature of a signed value; unsigned
// values pass through untouched.
func (m *Manager) Unsign(value string) (string, error) {
	if !IsSigned(value) {
		return value, nil
	}
	return Verify(value, m.secret)
}
