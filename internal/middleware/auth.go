package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/anonto42/gamematch/backend/internal/models"
	"github.com/anonto42/gamematch/backend/pkg/errorx"
	"github.com/anonto42/gamematch/backend/pkg/logger"
)

const contextKeyUser = "user"

// Verifier checks a bearer token issued by the identity provider.
type Verifier interface {
	Verify(ctx context.Context, token string) (*models.Principal, error)
}

// UserResolver maps a verified principal to an internal user.
type UserResolver interface {
	ResolveUser(ctx context.Context, p models.Principal) (*models.User, error)
}

// Auth authenticates requests and stores the resolved user in the echo context.
type Auth struct {
	verifier Verifier
	resolver UserResolver
}

func NewAuth(verifier Verifier, resolver UserResolver) *Auth {
	return &Auth{verifier: verifier, resolver: resolver}
}

// Required rejects requests without a valid token.
func (a *Auth) Required() echo.MiddlewareFunc {
	return a.middleware(true)
}

// Optional lets anonymous requests through; a token that is present must still be valid.
func (a *Auth) Optional() echo.MiddlewareFunc {
	return a.middleware(false)
}

func (a *Auth) middleware(required bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, err := bearerToken(c)
			if err != nil {
				return err
			}
			if token == "" {
				if required {
					return errorx.ErrAuthRequired
				}
				return next(c)
			}

			ctx := c.Request().Context()
			principal, err := a.verifier.Verify(ctx, token)
			if err != nil {
				return errorx.Wrap(errorx.AuthRequired, err, "invalid or expired token")
			}

			user, err := a.resolver.ResolveUser(ctx, *principal)
			if err != nil {
				return err
			}

			c.Set(contextKeyUser, user)
			c.Set(logger.ContextKeyUserID, user.ID)
			return next(c)
		}
	}
}

// bearerToken reads the Authorization header. Websocket clients cannot set
// headers, so the token query parameter is accepted as well.
func bearerToken(c echo.Context) (string, error) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return c.QueryParam("token"), nil
	}

	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", errorx.New(errorx.AuthRequired, "invalid_auth_header", "authorization header must be in Bearer format")
	}
	return strings.TrimSpace(parts[1]), nil
}

// CurrentUser returns the authenticated user, or nil for anonymous requests.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(contextKeyUser).(*models.User)
	return user
}
