package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"lendflow-backend/internal/domain/user"
)

const (
	// Echo context keys populated by JWTAuth.
	CtxActorID   = "actor_id"
	CtxActorRole = "actor_role"
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// JWTAuth validates the Bearer token and stashes the caller's identity on
// the echo context. Tokens are HMAC-signed; `sub` carries the user id and
// `role` the role at issue time. Authorization decisions stay in the
// usecases, which re-read the user row.
func JWTAuth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "missing Authorization header"})
			}
			parts := strings.SplitN(raw, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Authorization must be a Bearer token"})
			}

			claims := &Claims{}
			tok, err := jwt.ParseWithClaims(parts[1], claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.New("unexpected signing method")
				}
				return []byte(secret), nil
			})
			if err != nil || !tok.Valid {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}
			if !reHex32.MatchString(claims.Subject) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token subject"})
			}

			c.Set(CtxActorID, claims.Subject)
			c.Set(CtxActorRole, user.Role(claims.Role))
			return next(c)
		}
	}
}

// RequireRole short-circuits requests whose token role is not in the allow
// list. The usecase still re-checks against the persisted user row.
func RequireRole(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			got, _ := c.Get(CtxActorRole).(user.Role)
			for _, r := range roles {
				if got == r {
					return next(c)
				}
			}
			return c.JSON(http.StatusForbidden, map[string]string{"error": "insufficient role"})
		}
	}
}

// ActorID returns the authenticated user id set by JWTAuth.
func ActorID(c echo.Context) string {
	id, _ := c.Get(CtxActorID).(string)
	return id
}
