package http_test

import (
	"net/http/httptest"
	"testing"

	pkghttp "github.com/BradenHooton/classdesk/pkg/http"
	"github.com/stretchr/testify/assert"
)

func TestExtractClientIP(t *testing.T) {
	trusted := &pkghttp.IPConfig{TrustedProxies: []string{"10.0.0.0/8", "not-a-cidr", "127.0.0.1/32"}}

	tests := []struct {
		name       string
		remoteAddr string
		xff        string
		xri        string
		config     *pkghttp.IPConfig
		want       string
	}{
		{"direct client ignores spoofed headers", "203.0.113.10:54321", "1.2.3.4", "5.6.7.8", trusted, "203.0.113.10"},
		{"trusted proxy forwards first valid ip", "10.0.0.5:443", "garbage, 203.0.113.42, 10.0.0.5", "", trusted, "203.0.113.42"},
		{"trusted proxy falls back to x-real-ip", "10.1.2.3:443", "", "198.51.100.7", trusted, "198.51.100.7"},
		{"trusted proxy without headers", "127.0.0.1:8080", "", "", trusted, "127.0.0.1"},
		{"nil config", "192.0.2.1:1000", "1.2.3.4", "", nil, "192.0.2.1"},
		{"remote addr without port", "192.0.2.9", "", "", nil, "192.0.2.9"},
		{"ipv6 peer", "[2001:db8::1]:443", "", "", trusted, "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xri != "" {
				req.Header.Set("X-Real-IP", tt.xri)
			}

			assert.Equal(t, tt.want, pkghttp.ExtractClientIP(req, tt.config))
		})
	}
}

func TestExtractClientIP_EmptyRemoteAddr(t *testing.T) {
	req := httptest.NewRequest("GET", "/", nil)
	req.RemoteAddr = ""

	assert.Equal(t, "unknown", pkghttp.ExtractClientIP(req, nil))
}
