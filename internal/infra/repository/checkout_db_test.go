package repository_test

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"ecshop/internal/domain/model"
	infradb "ecshop/internal/infra/db"
	"ecshop/internal/infra/repository"
	"ecshop/internal/usecase"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// TEST_DATABASE_DSN が無ければスキップ（docker compose のDBを想定）
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		t.Skip("TEST_DATABASE_DSN not set")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, infradb.Migrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	return db
}

func uniq(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}

type checkoutEnv struct {
	db       *gorm.DB
	orders   *usecase.OrderUsecase
	carts    *repository.CartGormRepository
	products *repository.ProductGormRepository
	stock    *repository.InventoryGormRepository
}

func newCheckoutEnv(t *testing.T) *checkoutEnv {
	db := openTestDB(t)
	return &checkoutEnv{
		db:       db,
		orders:   usecase.NewOrderUsecase(repository.NewTxManagerGorm(db), repository.NewAddressGormRepository(db), nil, nil),
		carts:    repository.NewCartGormRepository(db),
		products: repository.NewProductGormRepository(db),
		stock:    repository.NewInventoryGormRepository(db),
	}
}

// ユーザーと住所を作り、ログイン済みの主体を返す
func (e *checkoutEnv) buyer(t *testing.T) (model.Actor, int64) {
	t.Helper()
	ctx := context.Background()

	u := model.User{Email: uniq("buyer") + "@example.com", PasswordHash: "x", Role: model.RoleUser, IsActive: true}
	require.NoError(t, e.db.WithContext(ctx).Create(&u).Error)

	now := time.Now()
	addr, err := repository.NewAddressGormRepository(e.db).Create(ctx, model.Address{
		UserID: u.ID, PostalCode: "100-0001", Prefecture: "Tokyo", City: "Chiyoda", Line1: "1-1", Name: "Taro",
		CreatedAt: now, UpdatedAt: now,
	})
	require.NoError(t, err)
	return model.UserActor(u.ID, model.RoleUser), addr.ID
}

func (e *checkoutEnv) product(t *testing.T, price string, stock int64) model.Product {
	t.Helper()
	p, err := e.products.Create(context.Background(), model.Product{
		Name:          uniq("P"),
		Price:         decimal.RequireFromString(price),
		OriginalPrice: decimal.RequireFromString(price),
		Stock:         stock,
		Unit:          "1 kg",
		IsActive:      true,
	})
	require.NoError(t, err)
	return p
}

func (e *checkoutEnv) addLine(t *testing.T, actor model.Actor, target model.LineTarget, qty model.Quantity) model.Cart {
	t.Helper()
	ctx := context.Background()
	cart, err := e.carts.GetOrCreateByUserID(ctx, actor.UserID)
	require.NoError(t, err)
	require.NoError(t, e.carts.Upsert(ctx, cart.ID, target, qty))
	return cart
}

func (e *checkoutEnv) stockOf(t *testing.T, unit model.LineTarget) int64 {
	t.Helper()
	n, err := e.stock.StockOf(context.Background(), unit)
	require.NoError(t, err)
	return n
}

func (e *checkoutEnv) orderCount(t *testing.T, userID int64) int64 {
	t.Helper()
	var n int64
	require.NoError(t, e.db.Model(&model.Order{}).Where("user_id = ?", userID).Count(&n).Error)
	return n
}

func TestCheckoutDB_InsufficientStockRollsBack(t *testing.T) {
	e := newCheckoutEnv(t)
	actor, addrID := e.buyer(t)
	a := e.product(t, "10.00", 5)
	b := e.product(t, "20.00", 1)
	e.addLine(t, actor, model.ProductTarget(a.ID), model.Count(3))
	cart := e.addLine(t, actor, model.ProductTarget(b.ID), model.Count(2))

	_, err := e.orders.PlaceOrder(context.Background(), actor, usecase.PlaceOrderInput{AddressID: addrID})

	var stockErr *model.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, model.ProductTarget(b.ID), stockErr.Unit)
	assert.Equal(t, int64(1), stockErr.Available)

	assert.Equal(t, int64(5), e.stockOf(t, model.ProductTarget(a.ID)))
	assert.Equal(t, int64(1), e.stockOf(t, model.ProductTarget(b.ID)))
	assert.Equal(t, int64(0), e.orderCount(t, actor.UserID))

	items, err := e.carts.ListByCartID(context.Background(), cart.ID)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestCheckoutDB_Variation(t *testing.T) {
	e := newCheckoutEnv(t)
	actor, addrID := e.buyer(t)
	p := e.product(t, "50.00", 100)
	v, err := e.products.CreateVariation(context.Background(), model.ProductVariation{
		ProductID:     p.ID,
		Amount:        decimal.NewFromInt(5),
		Unit:          model.UnitKilogram,
		Price:         decimal.RequireFromString("45.50"),
		OriginalPrice: decimal.RequireFromString("45.50"),
		Stock:         10,
		IsActive:      true,
	})
	require.NoError(t, err)
	cart := e.addLine(t, actor, model.VariationTarget(v.ID), model.Count(4))

	out, err := e.orders.PlaceOrder(context.Background(), actor, usecase.PlaceOrderInput{AddressID: addrID, IdempotencyKey: uniq("key")})
	require.NoError(t, err)

	assert.Equal(t, "182.00", out.Total.StringFixed(2))
	assert.Equal(t, int64(6), e.stockOf(t, model.VariationTarget(v.ID)))
	assert.Equal(t, int64(100), e.stockOf(t, model.ProductTarget(p.ID)))

	items, err := e.carts.ListByCartID(context.Background(), cart.ID)
	require.NoError(t, err)
	assert.Empty(t, items)

	// カート行は残る
	_, err = e.carts.FindByUserID(context.Background(), actor.UserID)
	assert.NoError(t, err)
}

// 同じ冪等キーでも別ユーザーなら別の注文
func TestCheckoutDB_IdempotencyKeyIsPerUser(t *testing.T) {
	e := newCheckoutEnv(t)
	p := e.product(t, "10.00", 5)
	key := uniq("shared")

	for i := 0; i < 2; i++ {
		actor, addrID := e.buyer(t)
		e.addLine(t, actor, model.ProductTarget(p.ID), model.Count(1))

		out, err := e.orders.PlaceOrder(context.Background(), actor, usecase.PlaceOrderInput{AddressID: addrID, IdempotencyKey: key})
		require.NoError(t, err)
		assert.Equal(t, actor.UserID, out.UserID)
	}
	assert.Equal(t, int64(3), e.stockOf(t, model.ProductTarget(p.ID)))
}

// 同じユーザーの同時注文はカート行ロックで直列になり、注文は1件だけ
func TestCheckoutDB_SameCartTwiceConcurrently(t *testing.T) {
	e := newCheckoutEnv(t)
	actor, addrID := e.buyer(t)
	p := e.product(t, "10.00", 10)
	e.addLine(t, actor, model.ProductTarget(p.ID), model.Count(2))

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.orders.PlaceOrder(context.Background(), actor, usecase.PlaceOrderInput{AddressID: addrID})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, model.ErrEmptyCart)
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(1), e.orderCount(t, actor.UserID))
	assert.Equal(t, int64(8), e.stockOf(t, model.ProductTarget(p.ID)))
}

// 在庫3に5人 → 3人だけ成功、在庫はマイナスにならない
func TestCheckoutDB_ConcurrentNeverOversells(t *testing.T) {
	e := newCheckoutEnv(t)
	p := e.product(t, "10.00", 3)

	type buyer struct {
		actor  model.Actor
		addrID int64
	}
	buyers := make([]buyer, 5)
	for i := range buyers {
		actor, addrID := e.buyer(t)
		e.addLine(t, actor, model.ProductTarget(p.ID), model.Count(1))
		buyers[i] = buyer{actor: actor, addrID: addrID}
	}

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for _, b := range buyers {
		wg.Add(1)
		go func(b buyer) {
			defer wg.Done()
			_, err := e.orders.PlaceOrder(context.Background(), b.actor, usecase.PlaceOrderInput{AddressID: b.addrID})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}(b)
	}
	wg.Wait()

	assert.Equal(t, 3, succeeded)
	assert.Equal(t, int64(0), e.stockOf(t, model.ProductTarget(p.ID)))
}
