package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/amss/core/user"
)

// roleMiddleware restricts a route to users holding one of `roles`.
// An empty list allows any authenticated user.
func roleMiddleware(roles ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if len(roles) == 0 {
				return next(ctx)
			}
			for _, role := range roles {
				if claims.Role == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func principalMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RolePrincipal)
}

func staffMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RolePrincipal, user.RoleTeacher)
}
