package router

import (
	"github.com/antonminaichev/gophershop/internal/category"
	"github.com/antonminaichev/gophershop/internal/health"
	"github.com/antonminaichev/gophershop/internal/logger"
	"github.com/antonminaichev/gophershop/internal/metrics"
	"github.com/antonminaichev/gophershop/internal/middleware"
	"github.com/antonminaichev/gophershop/internal/order"
	"github.com/antonminaichev/gophershop/internal/product"
	"github.com/antonminaichev/gophershop/internal/review"
	"github.com/antonminaichev/gophershop/internal/types/user"
	userhandler "github.com/antonminaichev/gophershop/internal/user"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
)

type Handlers struct {
	User     *userhandler.Handler
	Category *category.Handler
	Product  *product.Handler
	Order    *order.Handler
	Review   *review.Handler
	Health   *health.Handler
}

func NewRouter(
	h Handlers,
	jwtSecret []byte,
	userRepo middleware.UserFinder,
	m *metrics.ServerMetrics,
) chi.Router {
	r := chi.NewRouter()

	r.Use(logger.WithLogging)
	r.Use(chiMiddleware.Recoverer)
	r.Use(m.Middleware)
	r.Use(middleware.GzipHandler)

	r.Get("/health", h.Health.Check)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api/auth", func(r chi.Router) {
		r.Post("/register", h.User.Register)
		r.Post("/login", h.User.Login)

		r.Group(func(r chi.Router) {
			r.Use(middleware.JWTMiddleware(jwtSecret, userRepo))
			r.Get("/profile", h.User.Profile)
		})
	})

	auth := middleware.JWTMiddleware(jwtSecret, userRepo)
	admin := middleware.RequireRole(user.RoleAdmin)

	r.Route("/api/users", func(r chi.Router) {
		r.Use(auth, admin)
		r.Get("/", h.User.ListUsers)
		r.Get("/{id}", h.User.GetUser)
	})

	r.Route("/api/categories", func(r chi.Router) {
		r.Get("/", h.Category.ListCategories)
		r.Get("/{id}", h.Category.GetCategory)

		r.Group(func(r chi.Router) {
			r.Use(auth, admin)
			r.Post("/", h.Category.CreateCategory)
			r.Patch("/{id}", h.Category.UpdateCategory)
			r.Delete("/{id}", h.Category.RemoveCategory)
		})
	})

	r.Route("/api/products", func(r chi.Router) {
		r.Get("/", h.Product.ListProducts)
		r.Get("/category/{id}", h.Product.ListByCategory)
		r.Get("/{id}", h.Product.GetProduct)

		r.Group(func(r chi.Router) {
			r.Use(auth, admin)
			r.Post("/", h.Product.CreateProduct)
			r.Patch("/{id}", h.Product.UpdateProduct)
			r.Delete("/{id}", h.Product.RemoveProduct)
		})
	})

	r.Route("/api/orders", func(r chi.Router) {
		r.Use(auth)
		r.Post("/", h.Order.PlaceOrder)
		r.Get("/me", h.Order.ListMyOrders)

		r.Group(func(r chi.Router) {
			r.Use(admin)
			r.Get("/", h.Order.ListOrders)
			r.Get("/{id}", h.Order.GetOrder)
			r.Patch("/{id}", h.Order.UpdateStatus)
			r.Patch("/{id}/cancel", h.Order.CancelOrder)
			r.Delete("/{id}", h.Order.RemoveOrder)
		})
	})

	r.Route("/api/reviews", func(r chi.Router) {
		r.Get("/", h.Review.ListReviews)
		r.Get("/product/{id}", h.Review.ListByProduct)

		r.Group(func(r chi.Router) {
			r.Use(auth)
			r.Post("/", h.Review.CreateReview)
			r.Get("/me", h.Review.ListMyReviews)
		})

		r.Get("/{id}", h.Review.GetReview)

		r.Group(func(r chi.Router) {
			r.Use(auth, admin)
			r.Patch("/{id}", h.Review.UpdateReview)
			r.Delete("/{id}", h.Review.RemoveReview)
		})
	})

	return r
}
