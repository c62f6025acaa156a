package handler

import (
	"net/http"

	"ecshop/internal/domain/model"
	"ecshop/internal/middleware"
	"ecshop/internal/usecase"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

type ProductCreateRequest struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Stock         int64           `json:"stock"`
	Unit          string          `json:"unit"`
	IsActive      bool            `json:"is_active"`
}

func (r ProductCreateRequest) toInput() usecase.AdminCreateProductInput {
	return usecase.AdminCreateProductInput{
		Name:          r.Name,
		Description:   r.Description,
		Price:         r.Price,
		OriginalPrice: r.OriginalPrice,
		Stock:         r.Stock,
		Unit:          r.Unit,
		IsActive:      r.IsActive,
	}
}

type VariationCreateRequest struct {
	Amount        decimal.Decimal `json:"amount"`
	Unit          model.Unit      `json:"unit"`
	Price         decimal.Decimal `json:"price"`
	OriginalPrice decimal.Decimal `json:"original_price"`
	Stock         int64           `json:"stock"`
	IsActive      *bool           `json:"is_active"`
}

// InventoryUpdateRequest は在庫更新の入力です。
type InventoryUpdateRequest struct {
	Stock  int64  `json:"stock"`
	Reason string `json:"reason"`
}

type createdResponse struct {
	ID int64 `json:"id"`
}

// /admin/products と /admin/inventory をまとめる
type AdminProductHandler struct {
	uc *usecase.ProductUsecase
}

// DI
func NewAdminProductHandler(uc *usecase.ProductUsecase) *AdminProductHandler {
	return &AdminProductHandler{uc: uc}
}

// /admin 配下（ADMIN限定）
func (h *AdminProductHandler) RegisterRoutes(admin *echo.Group) {
	admin.POST("/products", h.createProduct)
	admin.PUT("/products/:id", h.updateProduct)
	admin.DELETE("/products/:id", h.deleteProduct)
	admin.GET("/products/:id/variations", h.listVariations)
	admin.POST("/products/:id/variations", h.createVariation)
	admin.PUT("/inventory/products/:id", h.updateProductInventory)
	admin.PUT("/inventory/variations/:id", h.updateVariationInventory)
}

func (h *AdminProductHandler) createProduct(c echo.Context) error {
	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	actor := middleware.ActorFrom(c)
	id, err := h.uc.AdminCreateProduct(c.Request().Context(), actor.UserID, req.toInput())
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusCreated, createdResponse{ID: id})
}

func (h *AdminProductHandler) updateProduct(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req ProductCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	actor := middleware.ActorFrom(c)
	if err := h.uc.AdminUpdateProduct(c.Request().Context(), actor.UserID, id, req.toInput()); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "updated"})
}

func (h *AdminProductHandler) deleteProduct(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	actor := middleware.ActorFrom(c)
	if err := h.uc.AdminDeleteProduct(c.Request().Context(), actor.UserID, id); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "deleted"})
}

func (h *AdminProductHandler) listVariations(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	out, err := h.uc.AdminListVariations(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

func (h *AdminProductHandler) createVariation(c echo.Context) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req VariationCreateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}
	//未指定なら公開
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	actor := middleware.ActorFrom(c)
	v, err := h.uc.AdminCreateVariation(c.Request().Context(), actor.UserID, id, usecase.AdminCreateVariationInput{
		Amount:        req.Amount,
		Unit:          req.Unit,
		Price:         req.Price,
		OriginalPrice: req.OriginalPrice,
		Stock:         req.Stock,
		IsActive:      active,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, v)
}

func (h *AdminProductHandler) updateProductInventory(c echo.Context) error {
	return h.updateInventory(c, model.TargetProduct)
}

func (h *AdminProductHandler) updateVariationInventory(c echo.Context) error {
	return h.updateInventory(c, model.TargetVariation)
}

func (h *AdminProductHandler) updateInventory(c echo.Context, kind model.TargetKind) error {
	id, ok := paramID(c, "id")
	if !ok {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid id"})
	}

	var req InventoryUpdateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid body"})
	}

	actor := middleware.ActorFrom(c)
	if err := h.uc.AdminUpdateInventory(
		c.Request().Context(),
		actor.UserID,
		model.LineTarget{Kind: kind, ID: id},
		req.Stock,
		req.Reason,
	); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, SuccessResponse{Message: "stock updated"})
}
