package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kitchenequip/equipment-backend/api/controllers"
	"github.com/kitchenequip/equipment-backend/api/middleware"
	"github.com/kitchenequip/equipment-backend/internal/auth"
	"github.com/kitchenequip/equipment-backend/internal/equipment"
	"github.com/kitchenequip/equipment-backend/internal/history"
	"github.com/kitchenequip/equipment-backend/internal/registrations"
	"github.com/kitchenequip/equipment-backend/internal/sites"
	"github.com/kitchenequip/equipment-backend/internal/users"
	"github.com/kitchenequip/equipment-backend/pkg/auth/session"
	"github.com/kitchenequip/equipment-backend/pkg/config"
	"github.com/kitchenequip/equipment-backend/pkg/db"
	"github.com/kitchenequip/equipment-backend/pkg/logger"
	"github.com/kitchenequip/equipment-backend/pkg/metrics"
	"github.com/kitchenequip/equipment-backend/pkg/redis"
)

// Deps collects everything the router mounts. Redis-backed fields stay nil
// when redis is not configured.
type Deps struct {
	Config *config.Config
	Logger *logger.Logger

	DB       db.Pinger
	Redis    redis.Pinger
	Limiter  redis.Limiter
	Sessions session.AccessSessionChecker

	HTTPMetrics *metrics.HTTPMetrics
	Gatherer    prometheus.Gatherer

	Auth          auth.Service
	Registrations registrations.Service
	Equipment     equipment.Service
	Sites         sites.Service
	Users         users.Service
	History       history.Service
}

func NewRouter(d Deps) http.Handler {
	cfg, logg := d.Config, d.Logger

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Logging(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.CORS(cfg.CORS.AllowedOrigins),
	)

	loginPolicy := middleware.NewAuthRateLimitPolicy(
		"login",
		cfg.AuthRateLimit.LoginWindow,
		cfg.AuthRateLimit.LoginIPLimit,
		cfg.AuthRateLimit.LoginAccountLimit,
		"user_name",
	)
	signupPolicy := middleware.NewAuthRateLimitPolicy(
		"signup",
		cfg.AuthRateLimit.SignupWindow,
		cfg.AuthRateLimit.SignupIPLimit,
		cfg.AuthRateLimit.SignupEmailLimit,
		"email_address",
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis))
	})

	if d.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{}))
	}

	authMW := middleware.Auth(cfg.JWT, d.Sessions, logg)

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.With(middleware.AuthRateLimit(loginPolicy, d.Limiter, logg)).Post("/login", controllers.AuthLogin(d.Auth, logg))
		r.With(middleware.AuthRateLimit(signupPolicy, d.Limiter, logg)).Post("/signup", controllers.AuthSignup(d.Registrations, logg))
		r.With(authMW).Post("/logout", controllers.AuthLogout(d.Auth, logg))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(authMW)

		r.Route("/equipment", func(r chi.Router) {
			r.Get("/", controllers.EquipmentPaged(d.Equipment, logg))
			r.Post("/", controllers.EquipmentCreate(d.Equipment, logg))
			r.Get("/owner/{ownerID}", controllers.EquipmentByOwner(d.Equipment, logg))
			r.Get("/{id}", controllers.EquipmentGet(d.Equipment, logg))
			r.Put("/{id}", controllers.EquipmentUpdate(d.Equipment, logg))
			r.Delete("/{id}", controllers.EquipmentDelete(d.Equipment, logg))
		})

		r.Route("/sites", func(r chi.Router) {
			r.Get("/", controllers.SiteList(d.Sites, logg))
			r.Post("/", controllers.SiteCreate(d.Sites, logg))
			r.Get("/code/{code}", controllers.SiteByCode(d.Sites, logg))
			r.Get("/{id}", controllers.SiteGet(d.Sites, logg))
			r.Put("/{id}", controllers.SiteUpdate(d.Sites, logg))
			r.Delete("/{id}", controllers.SiteDelete(d.Sites, logg))
			r.Post("/{id}/equipment", controllers.SiteEditEquipment(d.Sites, logg))
		})

		r.Route("/users", func(r chi.Router) {
			r.Get("/", controllers.UserList(d.Users, logg))
			r.Get("/{id}", controllers.UserGet(d.Users, logg))
			r.Put("/{id}", controllers.UserUpdate(d.Users, logg))
			r.Delete("/{id}", controllers.UserDelete(d.Users, logg))
			r.Put("/{id}/password", controllers.UserUpdatePassword(d.Users, logg))
			r.Put("/{id}/info", controllers.UserUpdateInfo(d.Users, logg))
		})

		r.Route("/registrations", func(r chi.Router) {
			r.Get("/", controllers.RegistrationList(d.Registrations, logg))
			r.Post("/{id}/approve", controllers.RegistrationApprove(d.Registrations, logg))
			r.Post("/{id}/deny", controllers.RegistrationDeny(d.Registrations, logg))
		})

		r.Get("/history", controllers.HistoryList(d.History, logg))
	})

	return r
}
