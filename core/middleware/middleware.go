package middleware

import (
	"errors"
	"strings"

	"venueplanner/core/constants"
	"venueplanner/core/controller"
	apperrors "venueplanner/core/errors"
	"venueplanner/core/utils"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

// Middleware holds request middleware dependencies
type Middleware struct {
	jwtSecret string
}

func NewMiddleware(jwtSecret string) *Middleware {
	return &Middleware{jwtSecret: jwtSecret}
}

// AuthMiddleware validates the bearer token and stores the claims in context
func (m *Middleware) AuthMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			header := c.Request().Header.Get(echo.HeaderAuthorization)
			if header == "" {
				return controller.NewErrorResponse(401, apperrors.ErrMissingAuthorizationHeader, "Missing authorization header")
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				return controller.NewErrorResponse(401, apperrors.ErrInvalidTokenFormat, "Invalid token format")
			}

			claims, err := utils.ParseToken(parts[1], m.jwtSecret)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					return controller.NewErrorResponse(401, apperrors.ErrTokenExpired, "Token expired")
				}
				return controller.NewErrorResponse(401, apperrors.ErrUnauthorized, "Invalid token")
			}

			c.Set(constants.ContextTokenData, claims)
			return next(c)
		}
	}
}
