package httpcodec

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/lenneTech/nest-server-sub004/pkg/cookie"
	"github.com/lenneTech/nest-server-sub004/pkg/tokenkind"
)

// DefaultMaxBodyBytes caps buffered request bodies at 1 MiB.
const DefaultMaxBodyBytes = 1 << 20

// Request is the canonical request representation.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    []byte
}

// Response is the canonical response representation.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Codec converts requests and responses and extracts session tokens.
type Codec struct {
	cookies  *cookie.Manager
	basePath string
	maxBody  int64
}

// Option configures a Codec.
type Option func(*Codec)

// WithMaxBodyBytes overrides the body size cap.
func WithMaxBodyBytes(n int64) Option {
	return func(c *Codec) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// New creates a codec. basePath is the IAM mount path the session cookie
// name derives from.
func New(cookies *cookie.Manager, basePath string, opts ...Option) *Codec {
	c := &Codec{
		cookies:  cookies,
		basePath: basePath,
		maxBody:  DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FromHTTP converts a framework request into the canonical form, streaming
// the raw body into memory up to the size cap.
func (c *Codec) FromHTTP(r *http.Request) (*Request, error) {
	return c.convert(r, nil)
}

// FromHTTPWithBody converts a request whose body the framework already
// parsed as JSON; the parsed value is re-serialized instead of re-reading
// the consumed body stream.
func (c *Codec) FromHTTPWithBody(r *http.Request, parsed any) (*Request, error) {
	return c.convert(r, parsed)
}

func (c *Codec) convert(r *http.Request, parsed any) (*Request, error) {
	req := &Request{
		Method:  r.Method,
		URL:     requestURL(r),
		Headers: r.Header.Clone(),
	}

	if r.Method == http.MethodGet || r.Method == http.MethodHead {
		return req, nil
	}

	if parsed != nil {
		body, err := json.Marshal(parsed)
		if err != nil {
			return nil, fmt.Errorf("re-serialize parsed body: %w", err)
		}
		req.Body = body
		req.Headers.Set("Content-Type", "application/json")
		return req, nil
	}

	if r.Body == nil {
		return req, nil
	}

	// Read through a limit one byte past the cap: hitting it means the
	// body is too large, without ever buffering more than the cap allows.
	body, err := io.ReadAll(io.LimitReader(r.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, ErrBodyTooLarge
	}
	req.Body = body
	return req, nil
}

// WriteResponse writes a canonical response out through a framework
// ResponseWriter. Set-Cookie occurrences are added individually and
// appended to any cookies already queued by the caller; every other
// header overwrites.
func (c *Codec) WriteResponse(w http.ResponseWriter, resp *Response) error {
	for name, values := range resp.Headers {
		if http.CanonicalHeaderKey(name) == "Set-Cookie" {
			for _, v := range values {
				w.Header().Add("Set-Cookie", v)
			}
			continue
		}
		for i, v := range values {
			if i == 0 {
				w.Header().Set(name, v)
			} else {
				w.Header().Add(name, v)
			}
		}
	}

	status := resp.Status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if len(resp.Body) > 0 {
		if _, err := w.Write(resp.Body); err != nil {
			return fmt.Errorf("write body: %w", err)
		}
	}
	return nil
}

// ExtractSessionToken returns the strongest session-token candidate a
// request carries, or "". skipHeader excludes the Authorization header,
// used by the middleware's cookie-fallback pass so a bearer token that
// already failed cannot resurface as a false session match.
func (c *Codec) ExtractSessionToken(r *http.Request, skipHeader bool) string {
	if !skipHeader {
		if token := BearerToken(r); token != "" {
			// JWTs are verified elsewhere; only opaque tokens go to
			// session lookup.
			if tokenkind.Classify(token).IsSessionToken() {
				if value, err := c.cookies.Unsign(token); err == nil {
					return value
				}
			}
		}
	}

	name := cookie.SessionCookieName(c.basePath)
	if value, err := c.cookies.GetSigned(r, name); err == nil && value != "" {
		return value
	}

	if value, err := c.cookies.Get(r, cookie.LegacyCookieName); err == nil && value != "" {
		return value
	}
	return ""
}

// CookieTokens returns the credential-bearing cookie values of a request
// in precedence order: the signed session cookie first, then the legacy
// cookie. Unreadable cookies are skipped.
func (c *Codec) CookieTokens(r *http.Request) []string {
	var tokens []string
	name := cookie.SessionCookieName(c.basePath)
	if value, err := c.cookies.GetSigned(r, name); err == nil && value != "" {
		tokens = append(tokens, value)
	}
	if value, err := c.cookies.Get(r, cookie.LegacyCookieName); err == nil && value != "" {
		tokens = append(tokens, value)
	}
	return tokens
}

// BearerToken returns the Authorization bearer token of a request, or "".
func BearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if header == "" {
		return ""
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// requestURL reconstructs the absolute URL of an inbound server request.
func requestURL(r *http.Request) string {
	if r.URL.IsAbs() {
		return r.URL.String()
	}
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host + r.URL.RequestURI()
}
