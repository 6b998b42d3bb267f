package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/http"
	"strings"

	"github.com/tech-arch1tect/berth-api/internal/logging"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

const (
	AuthStatusContextKey    = "auth_status"
	AuthErrorContextKey     = "auth_error"
	AuthTokenHashContextKey = "auth_token_hash"
	ClaimsContextKey        = "auth_claims"
	RawTokenContextKey      = "auth_raw_token"
)

// TokenParser verifies a bearer token and returns its claims.
type TokenParser func(token string) (*Claims, error)

// TokenMiddleware requires a bearer token accepted by parse and stores its
// claims on the context.
func TokenMiddleware(parse TokenParser, logger *logging.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			sourceIP := c.RealIP()

			auth := c.Request().Header.Get("Authorization")
			if auth == "" {
				SetAuthFailure(c, "Authorization header required")
				logger.Warn("Authentication failed - missing authorization header",
					zap.String("auth_status", "failed"),
					zap.String("source_ip", sourceIP))
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			if !strings.HasPrefix(auth, "Bearer ") {
				SetAuthFailure(c, "Bearer token required")
				logger.Warn("Authentication failed - invalid authorization format",
					zap.String("auth_status", "failed"),
					zap.String("source_ip", sourceIP))
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			token := strings.TrimPrefix(auth, "Bearer ")
			claims, err := parse(token)
			if errors.Is(err, ErrSecretNotConfigured) {
				SetAuthFailure(c, "Token secret not configured")
				logger.Error("Authentication failed - secret not configured",
					zap.String("auth_status", "failed"),
					zap.String("source_ip", sourceIP))
				return echo.NewHTTPError(http.StatusInternalServerError).SetInternal(err)
			}
			if err != nil {
				SetAuthFailure(c, "Invalid token")
				logger.Warn("Authentication failed - invalid token",
					zap.String("auth_status", "failed"),
					zap.String("source_ip", sourceIP),
					zap.String("token_hash", getTokenHash(token)),
					zap.Error(err))
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			SetAuthSuccess(c, token)
			c.Set(ClaimsContextKey, claims)
			c.Set(RawTokenContextKey, token)
			logger.Debug("Authentication successful",
				zap.String("auth_status", "success"),
				zap.String("source_ip", sourceIP),
				zap.Uint("user_id", claims.ID),
				zap.String("token_hash", getTokenHash(token)))
			return next(c)
		}
	}
}

// RequireRole must run after TokenMiddleware.
func RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims, ok := ClaimsFrom(c)
			if !ok || claims.Role != role {
				return echo.NewHTTPError(http.StatusForbidden, "Forbidden resource")
			}
			return next(c)
		}
	}
}

func ClaimsFrom(c echo.Context) (*Claims, bool) {
	claims, ok := c.Get(ClaimsContextKey).(*Claims)
	return claims, ok && claims != nil
}

func SetAuthSuccess(c echo.Context, token string) {
	c.Set(AuthStatusContextKey, "success")
	if token != "" {
		c.Set(AuthTokenHashContextKey, getTokenHash(token))
	}
}

func SetAuthFailure(c echo.Context, reason string) {
	c.Set(AuthStatusContextKey, "failed")
	c.Set(AuthErrorContextKey, reason)
}

// HashToken is the hex SHA-256 of token. It keeps JWTs under the bcrypt
// input limit before they are stored.
func HashToken(token string) string {
	if token == "" {
		return ""
	}
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func getTokenHash(token string) string {
	if token == "" {
		return ""
	}
	return HashToken(token)[:16]
}
