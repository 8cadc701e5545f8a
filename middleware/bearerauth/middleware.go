package bearerauth

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/manugamu/pfc/services/logging"
	"github.com/manugamu/pfc/services/revocation"
	"github.com/manugamu/pfc/services/token"
	"github.com/manugamu/pfc/services/users"
	"go.uber.org/zap"
)

const identityKey = "_auth_identity"

// Identity is the authenticated caller established for the rest of the
// request. Role is read from the token claim, not from storage, so role
// changes only take effect once the access token is reissued.
type Identity struct {
	UserID string
	Email  string
	Role   string
}

// Authenticate decodes a bearer token and establishes the caller's
// identity. Requests without a usable token pass through unauthenticated;
// protected routes reject those separately via RequireAuth. A revoked
// token terminates the request immediately.
func Authenticate(tokens *token.Service, store *users.Store, revocationSvc *revocation.Service, logger *logging.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString := BearerToken(c)
			if tokenString == "" {
				return next(c)
			}

			claims, err := tokens.Decode(tokenString)
			if err != nil {
				return next(c)
			}

			// The blacklist is authoritative. When it cannot be consulted
			// the request is refused rather than letting a possibly
			// revoked token through.
			revoked, err := revocationSvc.IsTokenRevoked(c.Request().Context(), claims.JTI())
			if err != nil {
				if logger != nil {
					logger.Error("revocation check failed", zap.Error(err))
				}
				return echo.NewHTTPError(http.StatusServiceUnavailable, "unable to verify token status")
			}
			if revoked {
				if logger != nil {
					logger.Warn("rejected revoked token", zap.String("jti", claims.JTI()))
				}
				return echo.NewHTTPError(http.StatusUnauthorized, "token has been revoked")
			}

			user, err := store.FindByEmail(c.Request().Context(), claims.Email())
			if err != nil {
				return next(c)
			}

			if _, err := tokens.Validate(tokenString, user.Email, token.KindAccess); err != nil {
				return next(c)
			}

			c.Set(identityKey, &Identity{
				UserID: user.ID,
				Email:  user.Email,
				Role:   claims.Role,
			})

			return next(c)
		}
	}
}

// RequireAuth rejects requests for which Authenticate did not establish
// an identity.
func RequireAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if _, ok := CurrentIdentity(c); !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}
			return next(c)
		}
	}
}

// RequireRoles additionally demands one of the given roles.
func RequireRoles(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			identity, ok := CurrentIdentity(c)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			for _, role := range roles {
				if strings.EqualFold(identity.Role, role) {
					return next(c)
				}
			}

			return echo.NewHTTPError(http.StatusForbidden, "insufficient permissions")
		}
	}
}

func CurrentIdentity(c echo.Context) (*Identity, bool) {
	identity, ok := c.Get(identityKey).(*Identity)
	return identity, ok && identity != nil
}

// BearerToken extracts the raw token from the Authorization header, or ""
// when the header is absent or not bearer-shaped.
func BearerToken(c echo.Context) string {
	authHeader := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	return strings.TrimPrefix(authHeader, "Bearer ")
}
