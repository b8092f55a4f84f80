package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// 承認済み出品者（または管理者）だけを通す。
func VerifiedSellerGuard() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			rawRole := c.Get(CtxUserRoleKey)
			role, ok := rawRole.(string)
			if !ok || role == "" {
				return c.JSON(http.StatusUnauthorized, errorJSON("unauthorized"))
			}

			//管理者は常に許可
			if role == "ADMIN" {
				return next(c)
			}

			if role != "SELLER" {
				return c.JSON(http.StatusForbidden, errorJSON("seller only"))
			}

			verified, _ := c.Get(CtxVerifiedSellerKey).(bool)
			if !verified {
				return c.JSON(http.StatusForbidden, errorJSON("seller not verified"))
			}

			return next(c)
		}
	}
}
