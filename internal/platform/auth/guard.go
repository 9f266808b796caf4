package auth

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
)

type contextKey string

const principalKey contextKey = "principal"

// Principal is the authenticated caller attached to the request context by
// the session guard.
type Principal struct {
	UserID   string
	Username string
	FullName string
	Role     string
	// Patient is set only for patient logins with a linked patient record.
	Patient *PatientRef
}

// PatientRef identifies the patient record linked to a patient login.
type PatientRef struct {
	PatientID string
	FullName  string
}

// SubjectResolver maps a verified token subject to a Principal. An
// implementation must return an error when the subject does not resolve to
// an existing user, or when the user carries a patient link whose patient
// record is missing. The guard treats both as authentication failures.
type SubjectResolver interface {
	ResolveSubject(ctx context.Context, subject string) (*Principal, error)
}

// SessionGuard returns middleware that authenticates every request from the
// session cookie before the wrapped handler runs. Missing cookie, bad
// signature, expired token, and vanished identity all collapse into the
// same 401 so a caller cannot probe which condition failed. The guard
// establishes identity only; role checks belong to RequireRole or to the
// handlers themselves.
func SessionGuard(secret []byte, resolver SubjectResolver) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(CookieName)
			if err != nil || cookie.Value == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			claims, err := ParseToken(secret, cookie.Value)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			principal, err := resolver.ResolveSubject(c.Request().Context(), claims.Subject)
			if err != nil || principal == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Unauthorized")
			}

			ctx := ContextWithPrincipal(c.Request().Context(), principal)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}

// ContextWithPrincipal returns a context carrying the authenticated caller.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext returns the authenticated caller, or nil outside a
// guarded request.
func PrincipalFromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey).(*Principal)
	return p
}
