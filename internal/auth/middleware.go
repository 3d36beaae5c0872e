package auth

import (
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	apperrors "finjar/internal/errors"
	"finjar/internal/model"
	"finjar/internal/repository"
)

// contextUserKey is where the resolved user is stashed in the echo context.
const contextUserKey = "auth_user"

// RequireUser resolves the bearer token validated by the echo-jwt middleware
// into a live user record. A token naming an unknown (since-deleted) subject
// or a revoked token fails closed with 401.
func RequireUser(users repository.UserRepository, tokens TokenStoreInterface) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return unauthorized(c)
			}
			claims, ok := token.Claims.(*Claims)
			if !ok {
				return unauthorized(c)
			}

			if claims.ID != "" {
				if revoked, _ := tokens.IsRevoked(c.Request().Context(), claims.ID); revoked {
					return unauthorized(c)
				}
			}

			user, err := users.FindByID(c.Request().Context(), claims.UserID)
			if err != nil {
				return unauthorized(c)
			}

			c.Set(contextUserKey, user)
			return next(c)
		}
	}
}

// CurrentUser returns the user resolved by RequireUser.
func CurrentUser(c echo.Context) (*model.User, bool) {
	user, ok := c.Get(contextUserKey).(*model.User)
	return user, ok
}

// Owned is implemented by resources that belong to a single user.
type Owned interface {
	OwnedBy(userID uuid.UUID) bool
}

// AssertOwner fails with ErrForbidden when the resource belongs to a
// different user than the caller.
func AssertOwner(user *model.User, resource Owned) error {
	if user == nil || !resource.OwnedBy(user.ID) {
		return apperrors.ErrForbidden
	}
	return nil
}

func unauthorized(c echo.Context) error {
	he := apperrors.MapErrorToHTTP(apperrors.ErrInvalidToken)
	return c.JSON(he.StatusCode, he.ToResponse())
}
