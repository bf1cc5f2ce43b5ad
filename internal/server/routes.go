package server

import (
	"net/http"

	"storefront/internal/config"
	"storefront/internal/handler"
	"storefront/internal/middleware"
	"storefront/internal/repository"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers はルート登録に必要なhandler一式
type Handlers struct {
	Auth         *handler.AuthHandler
	Product      *handler.ProductHandler
	AdminProduct *handler.AdminProductHandler
	Cart         *handler.CartHandler
	Wishlist     *handler.WishlistHandler
	Address      *handler.AddressHandler
	Order        *handler.OrderHandler
	AdminOrder   *handler.AdminOrderHandler
	Feature      *handler.FeatureHandler
	AdminFeed    *handler.AdminFeedHandler
}

func RegisterRoutes(e *echo.Echo, cfg config.Config, userRepo repository.UserRepository, h Handlers) {
	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	// JWT必須 + token_version一致
	authed := []echo.MiddlewareFunc{
		middleware.AuthJWT(cfg),
		middleware.TokenVersionGuard(userRepo),
	}
	// さらにadmin限定
	adminOnly := append(append([]echo.MiddlewareFunc{}, authed...), middleware.AdminRoleGuard())

	api := e.Group("/api")

	// /api/auth
	authG := api.Group("/auth")
	h.Auth.RegisterRoutes(authG)
	h.Auth.RegisterProtectedRoutes(api.Group("/auth", authed...))

	// /api/shop 商品は公開、それ以外はログイン必須
	shopPublic := api.Group("/shop")
	h.Product.RegisterRoutes(shopPublic)

	shop := api.Group("/shop", authed...)
	h.Cart.RegisterRoutes(shop)
	h.Wishlist.RegisterRoutes(shop)
	h.Address.RegisterRoutes(shop)
	h.Order.RegisterRoutes(shop)

	// /api/admin
	admin := api.Group("/admin", adminOnly...)
	h.AdminProduct.RegisterRoutes(admin)
	h.AdminOrder.RegisterRoutes(admin)

	// /api/common
	h.Feature.RegisterRoutes(api.Group("/common"))
	h.Feature.RegisterAdminRoutes(api.Group("/common", adminOnly...))

	// /ws/admin
	h.AdminFeed.RegisterRoutes(e.Group("/ws", adminOnly...))
}
