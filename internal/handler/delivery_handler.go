package handler

import (
	"net/http"

	"ecshop/internal/domain/model"
	"ecshop/internal/middleware"
	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
)

// 配達担当用（DELIVERY限定）
type DeliveryHandler struct {
	orders *usecase.OrderUsecase
	status *usecase.OrderStatusUsecase
}

func NewDeliveryHandler(orders *usecase.OrderUsecase, status *usecase.OrderStatusUsecase) *DeliveryHandler {
	return &DeliveryHandler{orders: orders, status: status}
}

func (h *DeliveryHandler) RegisterRoutes(g *echo.Group) {
	g.GET("/orders", h.list)
	g.GET("/orders/:id", h.detail)
	g.PUT("/orders/:id/status", h.updateStatus)
}

func (h *DeliveryHandler) list(c echo.Context) error {
	out, err := h.orders.ListAssigned(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *DeliveryHandler) detail(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.orders.GetMyOrderDetail(c.Request().Context(), middleware.ActorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// shipped → delivered のみ
func (h *DeliveryHandler) updateStatus(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req OrderStatusUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.status.ChangeStatus(c.Request().Context(), middleware.ActorFrom(c), id, model.OrderStatus(req.Status))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}
