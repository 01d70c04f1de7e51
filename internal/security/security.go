package security

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Config holds security middleware configuration.
type Config struct {
	MaxBodyBytes   int64         `json:"max_body_bytes"`
	RequestTimeout time.Duration `json:"request_timeout"`
	TrustedProxies []string      `json:"trusted_proxies"`
}

// DefaultConfig returns secure defaults. An evaluate payload with a full
// answer set and scenario choices stays well under 64 KiB.
func DefaultConfig() Config {
	return Config{
		MaxBodyBytes:   64 << 10,
		RequestTimeout: 30 * time.Second,
		TrustedProxies: []string{"127.0.0.1", "::1", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"},
	}
}

// Middleware bundles the header, content-type and timeout middleware so the
// server can wire them from one place.
type Middleware struct {
	config Config
}

// NewMiddleware creates a security middleware instance.
func NewMiddleware(config Config) *Middleware {
	return &Middleware{config: config}
}

// Headers adds standard security headers to every response.
func (m *Middleware) Headers(c *gin.Context) {
	c.Header("X-Content-Type-Options", "nosniff")
	c.Header("X-Frame-Options", "DENY")
	c.Header("X-XSS-Protection", "1; mode=block")
	c.Header("Referrer-Policy", "strict-origin-when-cross-origin")
	c.Header("Content-Security-Policy", "default-src 'self'")
	c.Header("Permissions-Policy", "camera=(), microphone=()")

	if c.Request.TLS != nil {
		c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
	}

	c.Next()
}

// ValidateContentType rejects bodies that are not JSON or form encoded.
func (m *Middleware) ValidateContentType(c *gin.Context) {
	contentType := c.GetHeader("Content-Type")
	if contentType == "" {
		c.Next()
		return
	}

	allowedTypes := []string{
		"application/json",
		"application/x-www-form-urlencoded",
	}

	lower := strings.ToLower(contentType)
	for _, allowed := range allowedTypes {
		if strings.Contains(lower, allowed) {
			c.Next()
			return
		}
	}

	c.AbortWithStatusJSON(http.StatusUnsupportedMediaType, gin.H{
		"error": "unsupported content type",
	})
}

// LimitBodySize caps the request body so oversized payloads fail fast.
func (m *Middleware) LimitBodySize(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, m.config.MaxBodyBytes)
	c.Next()
}

// RequestTimeout attaches a deadline to the request context.
func (m *Middleware) RequestTimeout(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), m.config.RequestTimeout)
	defer cancel()

	c.Request = c.Request.WithContext(ctx)
	c.Header("X-Timeout", strconv.Itoa(int(m.config.RequestTimeout.Seconds())))

	c.Next()
}
