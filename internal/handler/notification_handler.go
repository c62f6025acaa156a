package handler

import (
	"net/http"
	"strconv"

	"ecshop/internal/middleware"
	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

type NotificationHandler struct {
	uc *usecase.NotificationUsecase
}

func NewNotificationHandler(uc *usecase.NotificationUsecase) *NotificationHandler {
	return &NotificationHandler{uc: uc}
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

type AffectedResponse struct {
	Count int64 `json:"count"`
}

func (h *NotificationHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.list)
	g.DELETE("", h.deleteAll)
	g.GET("/unread-count", h.unreadCount)
	g.PATCH("/read-all", h.markAllRead)
	g.PATCH("/:id/read", h.markRead)
}

func (h *NotificationHandler) list(c echo.Context) error {
	limit := 50
	if v := c.QueryParam("limit"); v != "" {
		l, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid limit"})
		}
		limit = l
	}

	out, err := h.uc.ListMine(c.Request().Context(), middleware.ActorFrom(c), limit)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) markRead(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.MarkRead(c.Request().Context(), middleware.ActorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) markAllRead(c echo.Context) error {
	n, err := h.uc.MarkAllRead(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, AffectedResponse{Count: n})
}

func (h *NotificationHandler) unreadCount(c echo.Context) error {
	n, err := h.uc.UnreadCount(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, UnreadCountResponse{UnreadCount: n})
}

func (h *NotificationHandler) deleteAll(c echo.Context) error {
	n, err := h.uc.DeleteAll(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, AffectedResponse{Count: n})
}
