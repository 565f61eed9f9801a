package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kolschhq/kolsch-backend/api/controllers"
	"github.com/kolschhq/kolsch-backend/api/middleware"
	"github.com/kolschhq/kolsch-backend/internal/auth"
	"github.com/kolschhq/kolsch-backend/internal/storage"
	"github.com/kolschhq/kolsch-backend/pkg/config"
	"github.com/kolschhq/kolsch-backend/pkg/logger"
	"github.com/kolschhq/kolsch-backend/pkg/metrics"
)

// NewRouter assembles the HTTP surface: public auth and health routes plus
// the session-guarded tenant API.
func NewRouter(
	cfg *config.Config,
	logg *logger.Logger,
	store storage.Storage,
	authService *auth.Service,
	httpMetrics *metrics.HTTPMetrics,
) http.Handler {
	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(httpMetrics),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.Live())
		r.Get("/ready", controllers.Ready(store, logg))
	})

	if httpMetrics != nil {
		r.Method(http.MethodGet, "/metrics", httpMetrics.Handler())
	}

	r.Post("/api/signup", controllers.Signup(authService, cfg.Session, logg))
	r.Post("/api/login", controllers.Login(authService, cfg.Session, logg))
	r.Post("/api/logout", controllers.Logout(authService, cfg.Session, logg))
	r.Get("/api/auth/user", controllers.CurrentUser(authService, store, cfg.Session, logg))

	r.Route("/api", func(r chi.Router) {
		r.Use(middleware.Auth(authService, cfg.Session.CookieName, logg))

		r.Get("/stats", controllers.Stats(store, logg))

		r.Route("/inventory", func(r chi.Router) {
			r.Get("/", controllers.InventoryList(store, logg))
			r.Post("/", controllers.InventoryCreate(store, logg))
			r.Get("/{id}", controllers.InventoryGet(store, logg))
			r.Patch("/{id}", controllers.InventoryUpdate(store, logg))
			r.Delete("/{id}", controllers.InventoryDelete(store, logg))
		})

		r.Route("/equipment", func(r chi.Router) {
			r.Get("/", controllers.EquipmentList(store, logg))
			r.Post("/", controllers.EquipmentCreate(store, logg))
			r.Get("/{id}", controllers.EquipmentGet(store, logg))
			r.Patch("/{id}", controllers.EquipmentUpdate(store, logg))
			r.Delete("/{id}", controllers.EquipmentDelete(store, logg))
		})

		r.Route("/recipes", func(r chi.Router) {
			r.Get("/", controllers.RecipeList(store, logg))
			r.Post("/", controllers.RecipeCreate(store, logg))
			r.Get("/{id}", controllers.RecipeGet(store, logg))
			r.Patch("/{id}", controllers.RecipeUpdate(store, logg))
			r.Delete("/{id}", controllers.RecipeDelete(store, logg))
		})

		r.Route("/schedules", func(r chi.Router) {
			r.Get("/", controllers.ScheduleList(store, logg))
			r.Post("/", controllers.ScheduleCreate(store, logg))
			r.Get("/{id}", controllers.ScheduleGet(store, logg))
			r.Patch("/{id}", controllers.ScheduleUpdate(store, logg))
			r.Delete("/{id}", controllers.ScheduleDelete(store, logg))
		})

		r.Route("/ingredient-sources", func(r chi.Router) {
			r.Get("/", controllers.SourceList(store, logg))
			r.Post("/", controllers.SourceCreate(store, logg))
			r.Get("/{id}", controllers.SourceGet(store, logg))
			r.Patch("/{id}", controllers.SourceUpdate(store, logg))
			r.Delete("/{id}", controllers.SourceDelete(store, logg))
		})

		r.Route("/price-history", func(r chi.Router) {
			r.Get("/", controllers.PriceHistoryList(store, logg))
			r.Post("/", controllers.PriceEntryCreate(store, logg))
			r.Get("/ingredient/{id}", controllers.PriceHistoryForIngredient(store, logg))
			r.Patch("/{id}", controllers.PriceEntryUpdate(store, logg))
			r.Delete("/{id}", controllers.PriceEntryDelete(store, logg))
		})
	})

	return r
}
