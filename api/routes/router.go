package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wishboardapp/wishboard-backend/api/controllers"
	"github.com/wishboardapp/wishboard-backend/api/middleware"
	authsvc "github.com/wishboardapp/wishboard-backend/internal/auth"
	productsvc "github.com/wishboardapp/wishboard-backend/internal/products"
	userssvc "github.com/wishboardapp/wishboard-backend/internal/users"
	wishlistsvc "github.com/wishboardapp/wishboard-backend/internal/wishlists"
	"github.com/wishboardapp/wishboard-backend/pkg/config"
	"github.com/wishboardapp/wishboard-backend/pkg/logger"
)

// Deps carries everything the router needs wired.
type Deps struct {
	Config      *config.Config
	Logger      *logger.Logger
	DBPinger    controllers.Pinger
	RedisPinger controllers.Pinger
	AuthService *authsvc.Service
	UsersRepo   *userssvc.Repository
	Wishlists   *wishlistsvc.Service
	Products    *productsvc.Service
}

// NewRouter assembles the HTTP surface.
func NewRouter(deps Deps) http.Handler {
	cfg := deps.Config
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(),
		middleware.CORS(),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, deps.DBPinger, deps.RedisPinger))
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", controllers.AuthRegister(deps.AuthService, logg))
			r.Post("/login", controllers.AuthLogin(deps.AuthService, logg))
			r.Post("/refresh", controllers.AuthRefresh(deps.AuthService, logg))
			r.With(middleware.Auth(cfg.JWT, logg)).Post("/logout", controllers.AuthLogout(deps.AuthService, logg))
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWT, logg))

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", controllers.UsersMe(deps.UsersRepo, logg))
				r.Get("/products", controllers.ProductsMine(deps.Products, logg))
				r.Get("/{username}", controllers.UsersShow(deps.UsersRepo, cfg.Images.PublicBaseURL, logg))
				r.Get("/{username}/wish-lists", controllers.WishlistsByUsername(deps.Wishlists, logg))
				r.Get("/{username}/wish-lists/{slug}/products", controllers.ProductsByWishlist(deps.Products, logg))
			})

			r.Route("/wish-lists", func(r chi.Router) {
				r.Post("/", controllers.WishlistCreate(deps.Wishlists, logg))
				r.Get("/{id}", controllers.WishlistShow(deps.Wishlists, logg))
				r.Patch("/{id}", controllers.WishlistUpdate(deps.Wishlists, logg))
				r.Delete("/{id}", controllers.WishlistDelete(deps.Wishlists, logg))
			})

			r.Route("/products", func(r chi.Router) {
				r.Post("/", controllers.ProductCreate(deps.Products, logg))
				r.Get("/{id}", controllers.ProductShow(deps.Products, logg))
				r.Patch("/{id}", controllers.ProductUpdate(deps.Products, logg))
				r.Delete("/{id}", controllers.ProductDelete(deps.Products, logg))
				r.Patch("/{id}/images", controllers.ProductReplaceImages(deps.Products, logg))
				r.Patch("/{id}/is-active", controllers.ProductToggleActive(deps.Products, logg))
			})
		})
	})

	return r
}
