package http

import (
	"net/http"
	"time"

	"github.com/fjod/go_cart/storefront-service/internal/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type RouterConfig struct {
	Catalog            Catalog
	Sessions           *session.Manager
	Tokens             *session.Tokens
	Logger             *zap.Logger
	RequestTimeout     time.Duration
	MaxRequestBodySize int64
	AuthRPS            float64
	AuthBurst          int
	SecureCookies      bool
}

func NewRouter(cfg RouterConfig) http.Handler {
	productHandler := NewProductHandler(cfg.Catalog, cfg.RequestTimeout)
	cartHandler := NewCartHandler(cfg.Catalog, cfg.RequestTimeout, cfg.Logger)
	authHandler := NewAuthHandler(cfg.RequestTimeout, cfg.Logger)
	orderHandler := NewOrderHandler(cfg.Catalog, cfg.RequestTimeout, cfg.Logger)

	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestIDMiddleware)
	r.Use(middleware.Timeout(cfg.RequestTimeout))
	r.Use(middleware.Compress(5))
	if cfg.MaxRequestBodySize > 0 {
		r.Use(BodyLimit(cfg.MaxRequestBodySize))
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(SessionMiddleware(cfg.Sessions, cfg.Tokens, cfg.SecureCookies, cfg.Logger))

		r.Get("/products", productHandler.List)
		r.Get("/products/{id}", productHandler.Get)
		r.Get("/categories", productHandler.Categories)
		r.Get("/categories/{name}", productHandler.Category)
		r.Get("/search", productHandler.Search)

		r.Route("/cart", func(r chi.Router) {
			r.Get("/", cartHandler.GetCart)
			r.Delete("/", cartHandler.ClearCart)
			r.Post("/items", cartHandler.AddItem)
			r.Put("/items/{product_id}", cartHandler.UpdateQuantity)
			r.Delete("/items/{product_id}", cartHandler.RemoveItem)
			r.Post("/toggle", cartHandler.Toggle)
			r.Post("/open", cartHandler.Open)
			r.Post("/close", cartHandler.Close)
		})

		r.Route("/auth", func(r chi.Router) {
			r.Get("/me", authHandler.Me)
			r.Post("/logout", authHandler.Logout)
			r.Group(func(r chi.Router) {
				if cfg.AuthRPS > 0 {
					r.Use(RateLimit(cfg.AuthRPS, cfg.AuthBurst))
				}
				r.Post("/login", authHandler.Login)
				r.Post("/register", authHandler.Register)
			})
		})

		r.Route("/sort-order", func(r chi.Router) {
			r.Get("/", orderHandler.Get)
			r.Post("/drag-start", orderHandler.DragStart)
			r.Post("/drop", orderHandler.Drop)
			r.Post("/drag-end", orderHandler.DragEnd)
			r.Post("/save", orderHandler.Save)
		})
	})

	return otelhttp.NewHandler(r, "storefront-service")
}
