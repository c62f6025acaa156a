package handler

import (
	"net/http"
	"strconv"

	"ecshop/internal/domain/model"
	"ecshop/internal/middleware"
	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// /cartのHTTP（未ログインでも使える）
type CartHandler struct {
	uc *usecase.CartUsecase
}

// DI
func NewCartHandler(uc *usecase.CartUsecase) *CartHandler {
	return &CartHandler{uc: uc}
}

// quantity か custom_quantity + custom_unit のどちらか
type cartQuantityRequest struct {
	Quantity       int64            `json:"quantity"`
	CustomQuantity *decimal.Decimal `json:"custom_quantity"`
	CustomUnit     model.Unit       `json:"custom_unit"`
}

func (r cartQuantityRequest) toQuantity() model.Quantity {
	if r.CustomQuantity != nil {
		return model.Custom(*r.CustomQuantity, r.CustomUnit)
	}
	return model.Count(r.Quantity)
}

type AddCartRequest struct {
	ProductID   int64 `json:"product_id"`
	VariationID int64 `json:"variation_id"`
	cartQuantityRequest
}

type UpdateCartItemRequest struct {
	cartQuantityRequest
}

// /cart, /cart/items/{id} を登録
func (h *CartHandler) RegisterRoutes(g *echo.Group) {
	g.GET("", h.getCart)
	g.POST("/items", h.addItem)
	g.PATCH("/items/:id", h.patchItem)
	g.DELETE("/items/:id", h.deleteItem)
	g.POST("/merge", h.merge)
}

func (h *CartHandler) getCart(c echo.Context) error {
	out, err := h.uc.GetCart(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) addItem(c echo.Context) error {
	var req AddCartRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.AddItem(c.Request().Context(), middleware.ActorFrom(c), usecase.AddCartInput{
		ProductID:   req.ProductID,
		VariationID: req.VariationID,
		Quantity:    req.toQuantity(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) patchItem(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req UpdateCartItemRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	out, err := h.uc.UpdateItem(c.Request().Context(), middleware.ActorFrom(c), id, usecase.UpdateCartItemInput{
		Quantity: req.toQuantity(),
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *CartHandler) deleteItem(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.DeleteItem(c.Request().Context(), middleware.ActorFrom(c), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// ログイン直後に呼ぶ。セッションカートの中身をユーザーのカートへ
func (h *CartHandler) merge(c echo.Context) error {
	out, err := h.uc.MergeSessionCart(c.Request().Context(), middleware.ActorFrom(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(s, 10, 64)
}
