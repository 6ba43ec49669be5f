package auth

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

type contextKey string

const (
	UsernameKey contextKey = "username"
	UserRoleKey contextKey = "user_role"
)

// UsernameFromContext returns the authenticated username, or "".
func UsernameFromContext(ctx context.Context) string {
	username, _ := ctx.Value(UsernameKey).(string)
	return username
}

// RoleFromContext returns the authenticated role, or "".
func RoleFromContext(ctx context.Context) string {
	role, _ := ctx.Value(UserRoleKey).(string)
	return role
}

// redirectError mirrors the routing behavior of the client: a denied
// request gets a redirect target, never a bare error page.
func redirectError(status int, message, redirectTo string) *echo.HTTPError {
	return echo.NewHTTPError(status, map[string]string{
		"error":    message,
		"redirect": redirectTo,
	})
}

// SessionMiddleware validates the bearer session token and places the
// identity on the request context. Requests matched by skipper pass through
// unauthenticated (login, registration, health).
func SessionMiddleware(issuer *TokenIssuer, skipper func(echo.Context) bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if skipper != nil && skipper(c) {
				return next(c)
			}

			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return redirectError(http.StatusUnauthorized, "missing authorization header", "/login")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				return redirectError(http.StatusUnauthorized, "invalid authorization format", "/login")
			}

			claims, err := issuer.Verify(parts[1])
			if err != nil {
				return redirectError(http.StatusUnauthorized, "invalid or expired session", "/login")
			}

			ctx := c.Request().Context()
			ctx = context.WithValue(ctx, UsernameKey, claims.Subject)
			ctx = context.WithValue(ctx, UserRoleKey, claims.Role)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// RequireRole returns middleware that checks if the user has one of the
// given roles. Administrators pass every role check.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role := RoleFromContext(c.Request().Context())
			if role == RoleAdmin {
				return next(c)
			}
			for _, required := range roles {
				if role == required {
					return next(c)
				}
			}
			return redirectError(http.StatusForbidden,
				"required role: "+strings.Join(roles, " or "), "/")
		}
	}
}

// RequireAdmin guards the administrative approval panel.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authenticated := UsernameFromContext(c.Request().Context()) != ""
			decision := Evaluate(authenticated, RoleFromContext(c.Request().Context()), ViewSystem)
			if !decision.Allowed {
				status := http.StatusForbidden
				if !authenticated {
					status = http.StatusUnauthorized
				}
				return redirectError(status, "administrator access required", decision.RedirectTo)
			}
			return next(c)
		}
	}
}

// PublicPaths returns a skipper that exempts the given exact paths from
// session validation.
func PublicPaths(paths ...string) func(echo.Context) bool {
	exempt := make(map[string]bool, len(paths))
	for _, p := range paths {
		exempt[p] = true
	}
	return func(c echo.Context) bool {
		return exempt[c.Request().URL.Path]
	}
}
