package middleware

import (
	"ecshop/internal/domain/model"

	"github.com/labstack/echo/v4"
)

// contextからリクエストの主体を作る
func ActorFrom(c echo.Context) model.Actor {
	sessionKey, _ := c.Get(CtxSessionKey).(string)

	userID, ok := c.Get(CtxUserIDKey).(int64)
	if !ok || userID <= 0 {
		return model.AnonymousActor(sessionKey)
	}
	role, _ := c.Get(CtxUserRoleKey).(string)

	actor := model.UserActor(userID, model.Role(role))
	actor.SessionKey = sessionKey
	return actor
}
