package clientip_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lenneTech/nest-server-sub004/pkg/clientip"
)

func TestFromRequest(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		headers    map[string]string
		remoteAddr string
		want       string
	}{
		{
			name:    "x-forwarded-for first entry",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"},
			want:    "203.0.113.5",
		},
		{
			name:    "x-forwarded-for beats x-real-ip",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.5", "X-Real-IP": "198.51.100.7"},
			want:    "203.0.113.5",
		},
		{
			name:    "x-real-ip fallback",
			headers: map[string]string{"X-Real-IP": "198.51.100.7"},
			want:    "198.51.100.7",
		},
		{
			name:       "remote addr fallback",
			remoteAddr: "192.0.2.9:54321",
			want:       "192.0.2.9",
		},
		{
			name:       "remote addr without port",
			remoteAddr: "192.0.2.9",
			want:       "192.0.2.9",
		},
		{
			name:       "invalid forwarded entry falls through",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip"},
			remoteAddr: "192.0.2.9:1234",
			want:       "192.0.2.9",
		},
		{
			name:       "nothing resolvable",
			remoteAddr: "garbage",
			want:       clientip.UnknownIP,
		},
		{
			name:       "ipv6 remote addr",
			remoteAddr: "[2001:db8::1]:443",
			want:       "2001:db8::1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			r := httptest.NewRequest(http.MethodGet, "/", nil)
			r.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				r.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientip.FromRequest(r))
		})
	}
}
