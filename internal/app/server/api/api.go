// POST   /register       # Создать регистрацию, идемпотентно по (animal_number, created_at) (auth)
// PUT    /register/{id}  # Обновить регистрацию (auth)
// DELETE /register       # Удалить регистрацию по естественному ключу (auth)
// GET    /export         # Выгрузка всех регистраций арендатора (auth)
// GET    /health         # Liveness, проверка связи для клиентов (публичный)
// GET    /health/ready   # Readiness с проверкой БД (публичный)

package api

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"golang.org/x/exp/slog"

	"herdbook/internal/app/server/api/http/health"
	"herdbook/internal/app/server/api/http/middleware"
	"herdbook/internal/app/server/api/http/middleware/auth"
	"herdbook/internal/app/server/api/http/middleware/logger"
	"herdbook/internal/app/server/api/http/register"
	"herdbook/internal/app/server/config"
	"herdbook/internal/domain/animal"
	"herdbook/internal/infrastructure/storage/postgres"
)

type Handlers struct {
	Health   *health.Handler
	Register *register.Handler
}

// New создает *chi.Mux со всеми операциями через huma.Register
func New(storage *postgres.Storage, cfg *config.Config, log *slog.Logger) *chi.Mux {
	repo := postgres.NewRegistrationRepository(storage.Pool(), log)
	return NewWithDeps(animal.NewService(repo, log), storage, cfg, log)
}

// NewWithDeps собирает роутер из готового сервиса; db может быть nil
func NewWithDeps(service animal.Servicer, db health.Pinger, cfg *config.Config, log *slog.Logger) *chi.Mux {
	mux := chi.NewMux()
	mux.Use(chimw.Recoverer)

	humaConfig := huma.DefaultConfig("Herdbook API", "1.0.0")
	humaConfig.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
	}

	API := humachi.New(mux, humaConfig)

	h := handlers(API, service, db, cfg, log)
	h.Health.SetupRoutes(API)
	h.Register.SetupRoutes(API)

	return mux
}

func handlers(api huma.API, service animal.Servicer, db health.Pinger, cfg *config.Config, log *slog.Logger) *Handlers {
	authMW := auth.New(cfg.Auth.JWTSecret, log)
	loggerMW := logger.New(log)
	middlewares := middleware.NewContainer()

	middlewares.Add(loggerMW.Middleware())
	healthHandler := health.NewHandler(db, log, middlewares.GetAllAndClear())

	middlewares.Add(loggerMW.Middleware(), authMW.Middleware(api))
	registerHandler := register.NewHandler(service, log, middlewares.GetAllAndClear())

	return &Handlers{
		Health:   healthHandler,
		Register: registerHandler,
	}
}
