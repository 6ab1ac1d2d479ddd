package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gigadev/qr-order-backend/api/controllers"
	"github.com/gigadev/qr-order-backend/api/middleware"
	authsvc "github.com/gigadev/qr-order-backend/internal/auth"
	ordersvc "github.com/gigadev/qr-order-backend/internal/orders"
	productsvc "github.com/gigadev/qr-order-backend/internal/products"
	storesvc "github.com/gigadev/qr-order-backend/internal/stores"
	"github.com/gigadev/qr-order-backend/pkg/auth/session"
	"github.com/gigadev/qr-order-backend/pkg/config"
	"github.com/gigadev/qr-order-backend/pkg/db"
	"github.com/gigadev/qr-order-backend/pkg/logger"
	pkgredis "github.com/gigadev/qr-order-backend/pkg/redis"
)

func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	dbP db.Pinger,
	redisClient *pkgredis.Client,
	sessionChecker session.AccessSessionChecker,
	authService authsvc.Service,
	storeService storesvc.Service,
	productService productsvc.Service,
	orderService ordersvc.Service,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.CORS(),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginStoreLimit,
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, dbP, redisClient, logg))
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, redisClient, logg)).Post("/login", controllers.Login(authService, logg))
		r.Post("/refresh", controllers.Refresh(authService, logg))
		r.Post("/logout", controllers.Logout(authService, logg))
	})

	// Customer-facing surface. A scanned QR code lands here with no
	// session, so none of these routes sit behind Auth.
	r.Route("/api/v1/payments", func(r chi.Router) {
		r.Post("/initiate", controllers.InitiateOrder(orderService, logg))
		r.Post("/confirm", controllers.ConfirmPayment(orderService, logg))
		r.Post("/cancel", controllers.CancelOrder(orderService, logg))
		r.Get("/orders/{orderId}", controllers.GetOrder(orderService, logg))
		// Menu browsing for the checkout page lives on the payment surface
		// the QR client already talks to.
		r.Get("/products/store/{storeId}", controllers.ListStoreProducts(productService, logg))
	})

	r.Get("/api/v1/stores/{storeId}", controllers.GetStore(storeService, logg))

	r.With(middleware.Auth(cfg.JWT, sessionChecker, logg)).
		Get("/api/v1/orders", controllers.ListStoreOrders(orderService, logg))

	r.Route("/api/v1/products", func(r chi.Router) {
		// Menu browsing stays open; catalog writes require an owner session.
		r.Get("/store/{storeId}", controllers.ListStoreProducts(productService, logg))
		r.Get("/{productId}", controllers.GetProduct(productService, logg))

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, sessionChecker, logg))
			r.Use(middleware.Idempotency(redisClient, logg))
			r.Post("/", controllers.CreateProduct(productService, logg))
			r.Patch("/{productId}", controllers.UpdateProduct(productService, logg))
			r.Delete("/{productId}", controllers.DeleteProduct(productService, logg))
		})
	})

	return r
}
