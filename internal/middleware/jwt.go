package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/fair-rice-portal/internal/model"
	"github.com/iliyamo/fair-rice-portal/internal/utils"
)

// Context keys set by JWTAuth.
const (
	ctxUsername  = "username"
	ctxRole      = "role"
	ctxPrincipal = "principal"
)

// PrincipalLoader resolves the account behind a token subject.
type PrincipalLoader interface {
	Principal(ctx context.Context, username string) (model.Principal, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token and
// injects the token's subject and role claims into the request context.
// When principals is non-nil the subject must still name an existing
// account, so a token outlives neither its account nor its signature.
func JWTAuth(secret string, principals PrincipalLoader) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}
			raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))

			claims, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}

			c.Set(ctxUsername, claims.Subject)
			c.Set(ctxRole, claims.Role)

			if principals != nil {
				ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
				p, err := principals.Principal(ctx, claims.Subject)
				cancel()
				if err != nil || !p.Enabled || p.Locked {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
				}
				c.Set(ctxPrincipal, p)
			}
			return next(c)
		}
	}
}

// Username returns the authenticated subject, or "" for anonymous requests.
func Username(c echo.Context) string {
	s, _ := c.Get(ctxUsername).(string)
	return s
}

// PrincipalFrom returns the principal loaded by JWTAuth, if any.
func PrincipalFrom(c echo.Context) (model.Principal, bool) {
	p, ok := c.Get(ctxPrincipal).(model.Principal)
	return p, ok
}
