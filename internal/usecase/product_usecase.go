package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"ecshop/internal/domain/model"
	repo "ecshop/internal/repository"

	"github.com/shopspring/decimal"
)

type ProductUsecase struct {
	productRepo   repo.ProductRepository
	inventoryRepo repo.InventoryRepository
	auditRepo     repo.AuditLogRepository
}

// DI
func NewProductUsecase(
	productRepo repo.ProductRepository,
	inventoryRepo repo.InventoryRepository,
	auditRepo repo.AuditLogRepository,
) *ProductUsecase {
	return &ProductUsecase{
		productRepo:   productRepo,
		inventoryRepo: inventoryRepo,
		auditRepo:     auditRepo,
	}
}

// GET /productsの入力DTO
type ListProductsInput struct {
	Page     int
	Limit    int
	Q        string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Sort     string
}

type ProductListOutput struct {
	Items []model.Product `json:"items"`
	Total int64           `json:"total"`
	Page  int             `json:"page"`
	Limit int             `json:"limit"`
}

func (u *ProductUsecase) ListPublicProducts(ctx context.Context, in ListProductsInput) (ProductListOutput, error) {
	if in.Page < 1 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid page")
	}
	if in.Limit < 1 || in.Limit > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid limit")
	}
	if len(in.Q) > 100 {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "q too long")
	}
	if in.MinPrice != nil && in.MinPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be >= 0")
	}
	if in.MaxPrice != nil && in.MaxPrice.IsNegative() {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "max_price must be >= 0")
	}
	if in.MinPrice != nil && in.MaxPrice != nil && in.MinPrice.GreaterThan(*in.MaxPrice) {
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "min_price must be <= max_price")
	}
	switch in.Sort {
	case "", "new", "price_asc", "price_desc":
	default:
		return ProductListOutput{}, NewHTTPError(http.StatusBadRequest, "invalid sort")
	}

	items, total, err := u.productRepo.ListPublic(ctx, repo.ProductListQuery{
		Page:     in.Page,
		Limit:    in.Limit,
		Q:        strings.TrimSpace(in.Q),
		MinPrice: in.MinPrice,
		MaxPrice: in.MaxPrice,
		Sort:     in.Sort,
	})
	if err != nil {
		return ProductListOutput{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return ProductListOutput{
		Items: items,
		Total: total,
		Page:  in.Page,
		Limit: in.Limit,
	}, nil
}

// 公開中の商品（公開中のバリエーション付き）
func (u *ProductUsecase) GetProductDetail(ctx context.Context, productID int64) (model.Product, error) {
	if productID <= 0 {
		return model.Product{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	p, err := u.productRepo.FindByID(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return model.Product{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	if !p.IsActive {
		return model.Product{}, NewHTTPError(http.StatusNotFound, "not found")
	}
	return p, nil
}

type AdminCreateProductInput struct {
	Name          string
	Description   string
	Price         decimal.Decimal
	OriginalPrice decimal.Decimal
	Stock         int64
	Unit          string
	IsActive      bool
}

// 価格チェック（定価は未指定ならpriceと同じ）
func normalizePrices(price, original decimal.Decimal) (decimal.Decimal, error) {
	if price.IsNegative() {
		return decimal.Zero, NewHTTPError(http.StatusBadRequest, "price must be >= 0")
	}
	op, ok := model.NormalizeOriginalPrice(price, original)
	if !ok {
		return decimal.Zero, NewHTTPError(http.StatusBadRequest, "original_price must be >= price")
	}
	return op, nil
}

func (u *ProductUsecase) AdminCreateProduct(ctx context.Context, adminUserID int64, in AdminCreateProductInput) (int64, error) {
	if adminUserID <= 0 {
		return 0, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if strings.TrimSpace(in.Name) == "" {
		return 0, NewHTTPError(http.StatusBadRequest, "name required")
	}
	original, err := normalizePrices(in.Price, in.OriginalPrice)
	if err != nil {
		return 0, err
	}
	if in.Stock < 0 {
		return 0, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "1 kg"
	}

	p, err := u.productRepo.Create(ctx, model.Product{
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price.Round(2),
		OriginalPrice: original.Round(2),
		Stock:         in.Stock,
		Unit:          unit,
		IsActive:      in.IsActive,
	})
	if err != nil {
		return 0, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return p.ID, nil
}

// 在庫はここでは変えない（在庫APIで更新する）
func (u *ProductUsecase) AdminUpdateProduct(ctx context.Context, adminUserID int64, productID int64, in AdminCreateProductInput) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if strings.TrimSpace(in.Name) == "" {
		return NewHTTPError(http.StatusBadRequest, "name required")
	}
	original, err := normalizePrices(in.Price, in.OriginalPrice)
	if err != nil {
		return err
	}
	unit := strings.TrimSpace(in.Unit)
	if unit == "" {
		unit = "1 kg"
	}

	err = u.productRepo.Update(ctx, model.Product{
		ID:            productID,
		Name:          strings.TrimSpace(in.Name),
		Description:   in.Description,
		Price:         in.Price.Round(2),
		OriginalPrice: original.Round(2),
		Unit:          unit,
		IsActive:      in.IsActive,
	})
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

func (u *ProductUsecase) AdminDeleteProduct(ctx context.Context, adminUserID int64, productID int64) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	err := u.productRepo.SoftDelete(ctx, productID)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return nil
}

type AdminCreateVariationInput struct {
	Amount        decimal.Decimal
	Unit          model.Unit
	Price         decimal.Decimal
	OriginalPrice decimal.Decimal
	Stock         int64
	IsActive      bool
}

// 量違いSKUを追加（同じ量・単位は1つだけ）
func (u *ProductUsecase) AdminCreateVariation(ctx context.Context, adminUserID int64, productID int64, in AdminCreateVariationInput) (model.ProductVariation, error) {
	if adminUserID <= 0 {
		return model.ProductVariation{}, NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if productID <= 0 {
		return model.ProductVariation{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	if !in.Amount.IsPositive() {
		return model.ProductVariation{}, NewHTTPError(http.StatusBadRequest, "amount must be > 0")
	}
	if !in.Unit.Valid() {
		return model.ProductVariation{}, NewHTTPError(http.StatusBadRequest, "invalid unit")
	}
	original, err := normalizePrices(in.Price, in.OriginalPrice)
	if err != nil {
		return model.ProductVariation{}, err
	}
	if in.Stock < 0 {
		return model.ProductVariation{}, NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}

	if _, err := u.productRepo.FindByID(ctx, productID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return model.ProductVariation{}, NewHTTPError(http.StatusNotFound, "not found")
		}
		return model.ProductVariation{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}

	existing, err := u.productRepo.ListVariations(ctx, productID)
	if err != nil {
		return model.ProductVariation{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	for _, v := range existing {
		if v.Unit == in.Unit && v.Amount.Equal(in.Amount) {
			return model.ProductVariation{}, NewHTTPError(http.StatusConflict, "variation already exists")
		}
	}

	v, err := u.productRepo.CreateVariation(ctx, model.ProductVariation{
		ProductID:     productID,
		Amount:        in.Amount,
		Unit:          in.Unit,
		Price:         in.Price.Round(2),
		OriginalPrice: original.Round(2),
		Stock:         in.Stock,
		IsActive:      in.IsActive,
	})
	if err != nil {
		return model.ProductVariation{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return v, nil
}

// 非公開も含めた全バリエーション
func (u *ProductUsecase) AdminListVariations(ctx context.Context, productID int64) ([]model.ProductVariation, error) {
	if productID <= 0 {
		return []model.ProductVariation{}, NewHTTPError(http.StatusBadRequest, "invalid product id")
	}
	list, err := u.productRepo.ListVariations(ctx, productID)
	if err != nil {
		return []model.ProductVariation{}, NewHTTPError(http.StatusInternalServerError, "db error")
	}
	return list, nil
}

// 在庫の現在値を設定し、調整履歴と監査ログを残す（商品・バリエーション共通）
func (u *ProductUsecase) AdminUpdateInventory(ctx context.Context, adminUserID int64, unit model.LineTarget, newStock int64, reason string) error {
	if adminUserID <= 0 {
		return NewHTTPError(http.StatusUnauthorized, "unauthorized")
	}
	if !unit.Valid() {
		return NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	if newStock < 0 {
		return NewHTTPError(http.StatusBadRequest, "stock must be >= 0")
	}
	if strings.TrimSpace(reason) == "" {
		return NewHTTPError(http.StatusBadRequest, "reason required")
	}

	//変更前の在庫（before）
	before, err := u.inventoryRepo.StockOf(ctx, unit)
	if errors.Is(err, repo.ErrNotFound) {
		return NewHTTPError(http.StatusNotFound, "not found")
	}
	if err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//在庫の現在値を更新
	if err := u.inventoryRepo.SetStock(ctx, unit, newStock); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return NewHTTPError(http.StatusNotFound, "not found")
		}
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	//履歴を作成（差分）
	if err := u.inventoryRepo.CreateAdjustment(ctx, model.InventoryAdjustment{
		Target:      unit,
		AdminUserID: adminUserID,
		Delta:       newStock - before,
		Reason:      strings.TrimSpace(reason),
		CreatedAt:   time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	resource := model.AuditResourceProduct
	if unit.Kind == model.TargetVariation {
		resource = model.AuditResourceVariation
	}

	//「誰が」「何を」「どの対象に」「どう変えたか」を残す
	if err := u.auditRepo.Create(ctx, model.AuditLog{
		ActorUserID:  adminUserID,
		ActorRole:    model.RoleAdmin,
		Action:       model.AuditActionUpdateStock,
		ResourceType: resource,
		ResourceID:   unit.ID,
		BeforeJSON:   fmt.Sprintf(`{"stock":%d}`, before),
		AfterJSON:    fmt.Sprintf(`{"stock":%d}`, newStock),
		CreatedAt:    time.Now(),
	}); err != nil {
		return NewHTTPError(http.StatusInternalServerError, "db error")
	}

	return nil
}
