package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const sessionMaxAge = 30 * 24 * time.Hour

// 未ログインカート用のセッショントークン。cookieが無ければ発行して付ける
func SessionCookie(name string, secure bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if ck, err := c.Cookie(name); err == nil && validSessionKey(ck.Value) {
				c.Set(CtxSessionKey, ck.Value)
				return next(c)
			}

			key := uuid.NewString()
			c.SetCookie(&http.Cookie{
				Name:     name,
				Value:    key,
				Path:     "/",
				MaxAge:   int(sessionMaxAge.Seconds()),
				HttpOnly: true,
				Secure:   secure,
				SameSite: http.SameSiteLaxMode,
			})
			c.Set(CtxSessionKey, key)
			return next(c)
		}
	}
}

func validSessionKey(v string) bool {
	_, err := uuid.Parse(v)
	return err == nil
}
