package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	msgAuthRequired = "認証が必要です"
	msgAuthInvalid  = "認証情報が無効です"
	msgAuthFailed   = "認証に失敗しました"
)

// GateConfig configures the Basic Auth gate.
type GateConfig struct {
	Realm string
	// BypassPrefixes are path prefixes that never receive the challenge.
	BypassPrefixes []string
}

// DefaultBypassPrefixes lets the API, health checks and the favicon through.
var DefaultBypassPrefixes = []string{"/api/", "/health", "/favicon.ico"}

// Gate returns gin middleware that requires Basic Auth on every path outside
// the bypass list.
func Gate(store *Store, cfg GateConfig, logger *slog.Logger) gin.HandlerFunc {
	if cfg.Realm == "" {
		cfg.Realm = "Medical Voice System"
	}
	challenge := `Basic realm="` + cfg.Realm + `"`

	reject := func(c *gin.Context, msg string) {
		c.Header("WWW-Authenticate", challenge)
		c.Data(http.StatusUnauthorized, "text/plain; charset=utf-8", []byte(msg))
		c.Abort()
	}

	return func(c *gin.Context) {
		if bypassed(c.Request.URL.Path, cfg.BypassPrefixes) {
			c.Next()
			return
		}

		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Basic ") {
			reject(c, msgAuthRequired)
			return
		}

		username, password, ok := c.Request.BasicAuth()
		if !ok {
			logger.Warn("Failed to decode basic auth credentials", "path", c.Request.URL.Path)
			reject(c, msgAuthInvalid)
			return
		}

		if !store.Verify(username, password) {
			logger.Info("Authentication failed", "username", username, "client_ip", c.ClientIP())
			reject(c, msgAuthFailed)
			return
		}

		logger.Info("Authentication succeeded", "username", username)
		c.Set(gin.AuthUserKey, username)
		c.Next()
	}
}

func bypassed(path string, prefixes []string) bool {
	if path == "/api" {
		return true
	}
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}

	return false
}
