package router // package router defines how HTTP routes are registered for the API

import (
	"log" // request log lines go through the standard logger

	"github.com/labstack/echo/v4"                   // import the Echo web framework to handle routing
	echomw "github.com/labstack/echo/v4/middleware" // Echo's bundled middleware (recover, CORS, request log)
	"github.com/redis/go-redis/v9"                  // optional backing store for cache and rate limit

	"github.com/iliyamo/mercado-storefront/internal/config"     // cache and rate limit settings
	"github.com/iliyamo/mercado-storefront/internal/handler"    // HTTP handlers
	"github.com/iliyamo/mercado-storefront/internal/middleware" // session gate, cache and limiter
)

// Setup installs the global middleware chain: panic recovery, request
// logging, CORS and finally the session gate, which decides per path
// whether a session is required.
func Setup(e *echo.Echo, sessions middleware.SessionValidator) {
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:  true,
		LogURIPath: true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			// path only: query strings and cookies stay out of the log
			if v.Error != nil {
				log.Printf("%s %s -> %d (%s) err=%v", v.Method, v.URIPath, v.Status, v.Latency, v.Error)
				return nil
			}
			log.Printf("%s %s -> %d (%s)", v.Method, v.URIPath, v.Status, v.Latency)
			return nil
		},
	}))
	e.Use(echomw.CORS())
	e.Use(middleware.SessionAuth(sessions))
}

// RegisterRoutes registers the health check. It is public.
func RegisterRoutes(e *echo.Echo, db handler.Pinger) {
	e.GET("/health", handler.Health(db))
}

// RegisterAuth registers the authentication routes. Register and login are
// public and throttled by the token bucket; everything else relies on the
// session gate installed by Setup.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, rl config.RateLimitConfig, rdb *redis.Client) {
	limiter := middleware.NewTokenBucket(rl, rdb)
	e.POST("/api/register", a.Register, limiter)
	e.POST("/api/login", a.Login, limiter)

	e.POST("/api/logout", a.Logout)
	e.GET("/api/me", a.Me)
	e.GET("/api/auth/me", a.Me)
	e.GET("/api/users", a.Users)
}

// RegisterStore registers the public shopping flow. Only the product list is
// cacheable; cart responses change with every mutation.
func RegisterStore(e *echo.Echo, s *handler.StoreHandler, cc config.CacheConfig, rdb *redis.Client) {
	e.GET("/api/products", s.Products, middleware.NewRedisCache(cc, rdb))

	e.POST("/api/cart", s.AddToCart)
	e.GET("/api/cart", s.GetCart)
	// registered before the parameter route so "clear" is never read as an id
	e.DELETE("/api/cart/clear", s.ClearCart)
	e.PATCH("/api/cart/:product_id", s.UpdateCartItem)

	e.POST("/api/checkout", s.CheckoutCart)
}

// RegisterOrders registers the protected order log and report endpoints.
func RegisterOrders(e *echo.Echo, o *handler.OrderHandler) {
	e.GET("/api/orders", o.List)
	e.GET("/api/orders/:id/items", o.Items)
	e.GET("/api/reports/daily", o.Daily)
}

// RegisterPages serves the login page publicly and every other file in
// staticDir behind the session gate.
func RegisterPages(e *echo.Echo, staticDir string) {
	e.GET(middleware.LoginPath, handler.LoginPage(staticDir))
	e.Static("/", staticDir)
}
