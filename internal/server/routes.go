package server

import (
	"net/http"

	"ecshop/internal/config"
	"ecshop/internal/domain/model"
	"ecshop/internal/handler"
	"ecshop/internal/metrics"
	"ecshop/internal/middleware"
	"ecshop/internal/repository"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

type Handlers struct {
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Order        *handler.OrderHandler
	Delivery     *handler.DeliveryHandler
	AdminOrder   *handler.AdminOrderHandler
	Address      *handler.AddressHandler
	Notification *handler.NotificationHandler
	Wishlist     *handler.WishlistHandler
}

type Deps struct {
	Cfg      config.Config
	Users    repository.UserRepository
	Metrics  *metrics.ServerMetrics
	Gatherer prometheus.Gatherer
	Log      *zap.Logger
}

// ルートとミドルウェアを組み立てる
func NewEcho(d Deps, h Handlers) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	if d.Metrics != nil {
		e.Use(d.Metrics.Middleware())
	}
	e.Use(middleware.RequestLogger(d.Log))

	if d.Cfg.FEURL != "" {
		e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     []string{d.Cfg.FEURL},
			AllowCredentials: true,
		}))
	}

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	if d.Gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(metrics.Handler(d.Gatherer)))
	}

	//公開
	h.Product.RegisterRoutes(e)

	//カート（未ログインはセッションcookie）
	cart := e.Group("/cart",
		middleware.OptionalAuthJWT(d.Cfg.JWTSecret),
		middleware.TokenVersionGuard(d.Users),
		middleware.SessionCookie(d.Cfg.SessionCookieName, d.Cfg.CookieSecure()),
	)
	h.Cart.RegisterRoutes(cart)

	//ログイン必須
	authed := []echo.MiddlewareFunc{
		middleware.AuthJWT(d.Cfg.JWTSecret),
		middleware.TokenVersionGuard(d.Users),
	}
	h.Address.RegisterRoutes(e.Group("/addresses", authed...))
	h.Notification.RegisterRoutes(e.Group("/notifications", authed...))
	h.Wishlist.RegisterRoutes(e.Group("/wishlist", authed...))
	h.Order.RegisterRoutes(e.Group("/orders", authed...))

	//配達担当
	delivery := e.Group("/delivery",
		middleware.AuthJWT(d.Cfg.JWTSecret),
		middleware.TokenVersionGuard(d.Users),
		middleware.RoleGuard(model.RoleDelivery),
	)
	h.Delivery.RegisterRoutes(delivery)

	// /admin 配下は全部「JWT必須 + token_version一致 + ADMIN限定」
	admin := e.Group("/admin",
		middleware.AuthJWT(d.Cfg.JWTSecret),
		middleware.TokenVersionGuard(d.Users),
		middleware.AdminRoleGuard(),
	)
	h.AdminProduct.RegisterRoutes(admin)
	h.AdminOrder.RegisterRoutes(admin)

	return e
}
