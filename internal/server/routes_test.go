package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecshop/internal/config"
	"ecshop/internal/domain/model"
	"ecshop/internal/handler"
	"ecshop/internal/metrics"
	"ecshop/internal/server"
	"ecshop/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

const testSecret = "test-secret"

// ID = ロールの固定ユーザー
type stubUsers map[int64]model.Role

func (s stubUsers) FindByID(ctx context.Context, userID int64) (*model.User, error) {
	role, ok := s[userID]
	if !ok {
		return nil, nil
	}
	return &model.User{ID: userID, Role: role, IsActive: true}, nil
}

// repoに触れるルートは叩かないので usecase の依存は nil のまま
func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()

	reg := prometheus.NewRegistry()
	products := usecase.NewProductUsecase(nil, nil, nil)
	orders := usecase.NewOrderUsecase(nil, nil, nil, nil)
	status := usecase.NewOrderStatusUsecase(nil, nil, nil, nil)

	return server.NewEcho(server.Deps{
		Cfg:      config.Config{JWTSecret: testSecret, SessionCookieName: "cart_session"},
		Users:    stubUsers{1: model.RoleUser, 2: model.RoleAdmin, 3: model.RoleDelivery},
		Metrics:  metrics.NewServerMetrics(reg, "api"),
		Gatherer: reg,
		Log:      zap.NewNop(),
	}, server.Handlers{
		Product:      handler.NewProductHandler(products),
		AdminProduct: handler.NewAdminProductHandler(products),
		Cart:         handler.NewCartHandler(usecase.NewCartUsecase(nil, nil, nil, nil, nil)),
		Order:        handler.NewOrderHandler(orders),
		Delivery:     handler.NewDeliveryHandler(orders, status),
		AdminOrder:   handler.NewAdminOrderHandler(status),
		Address:      handler.NewAddressHandler(usecase.NewAddressUsecase(nil)),
		Notification: handler.NewNotificationHandler(usecase.NewNotificationUsecase(nil)),
		Wishlist:     handler.NewWishlistHandler(usecase.NewWishlistUsecase(nil, nil)),
	})
}

func bearer(t *testing.T, sub int64, role string) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": sub, "role": role, "tv": 0, "exp": 9999999999})
	s, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("SignedString failed: %v", err)
	}
	return "Bearer " + s
}

func serve(e *echo.Echo, method, path, auth string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_Health(t *testing.T) {
	e := newTestEcho(t)

	rec := serve(e, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRoutes_Metrics(t *testing.T) {
	e := newTestEcho(t)
	serve(e, http.MethodGet, "/health", "")

	rec := serve(e, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ecshop_api_http_requests_total")
}

func TestRoutes_Guards(t *testing.T) {
	e := newTestEcho(t)

	cases := []struct {
		name   string
		method string
		path   string
		auth   string
		status int
	}{
		{"orders need login", http.MethodGet, "/orders", "", http.StatusUnauthorized},
		{"addresses need login", http.MethodGet, "/addresses", "", http.StatusUnauthorized},
		{"notifications need login", http.MethodGet, "/notifications", "", http.StatusUnauthorized},
		{"unread count needs login", http.MethodGet, "/notifications/unread-count", "", http.StatusUnauthorized},
		{"mark read needs login", http.MethodPatch, "/notifications/1/read", "", http.StatusUnauthorized},
		{"wishlist needs login", http.MethodGet, "/wishlist", "", http.StatusUnauthorized},
		{"admin needs admin", http.MethodGet, "/admin/orders", bearer(t, 1, "USER"), http.StatusForbidden},
		{"order history needs admin", http.MethodGet, "/admin/orders/1/history", bearer(t, 1, "USER"), http.StatusForbidden},
		{"delivery needs delivery", http.MethodGet, "/delivery/orders", bearer(t, 2, "ADMIN"), http.StatusForbidden},
		{"unknown user", http.MethodGet, "/orders", bearer(t, 99, "USER"), http.StatusUnauthorized},
		{"unknown route", http.MethodGet, "/nope", "", http.StatusNotFound},
		{"bad cart token", http.MethodGet, "/cart", "Bearer broken", http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := serve(e, tc.method, tc.path, tc.auth)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}
