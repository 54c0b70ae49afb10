package router

import (
	"net/http"

	_ "vet-clinic-records/docs"
	"vet-clinic-records/internal/adapters/storage/sqlstore"
	"vet-clinic-records/internal/domain/owners"
	"vet-clinic-records/internal/domain/pets"
	"vet-clinic-records/internal/domain/serviceinstances"
	"vet-clinic-records/internal/domain/statistics"
	"vet-clinic-records/internal/domain/vets"
	"vet-clinic-records/internal/middleware"
	"vet-clinic-records/internal/platform/logger"
	"vet-clinic-records/internal/platform/metrics"
	"vet-clinic-records/internal/platform/respond"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	httpSwagger "github.com/swaggo/http-swagger"
)

type Options struct {
	// Requerido.
	DB *sqlstore.DB

	Logger  logger.Logger
	Metrics *metrics.Collector

	// Si viene, se expone en /metrics.
	Registry *prometheus.Registry

	// Vacío = "*".
	CORSOrigins []string
}

func NewRouter(opts Options) http.Handler {
	if opts.DB == nil {
		panic("router: nil DB")
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLog(log, opts.Metrics))
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(opts.CORSOrigins))

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	if opts.Registry != nil {
		r.Handle("/metrics", metrics.Handler(opts.Registry))
	}
	r.Get("/swagger/*", httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json")))

	// Repos sobre el mismo pool
	ownersRepo := sqlstore.NewOwnersRepo(opts.DB)
	petsRepo := sqlstore.NewPetsRepo(opts.DB)
	vetsRepo := sqlstore.NewVetsRepo(opts.DB)
	servicesRepo := sqlstore.NewServicesRepo(opts.DB)
	statsRepo := sqlstore.NewStatisticsRepo(opts.DB)

	// Services por módulo
	ownersSvc := owners.NewService(ownersRepo)
	petsSvc := pets.NewService(petsRepo)
	vetsSvc := vets.NewService(vetsRepo)
	servicesSvc := serviceinstances.NewService(servicesRepo)
	statsSvc := statistics.NewService(statsRepo)

	r.Route("/api", func(api chi.Router) {
		api.Get("/", indexHandler())
		api.Get("/health_check", healthCheckHandler(opts.DB, log))

		// Rutas por módulo
		owners.RegisterRoutes(api, ownersSvc, log)
		pets.RegisterRoutes(api, petsSvc, log)
		vets.RegisterRoutes(api, vetsSvc, log)
		serviceinstances.RegisterRoutes(api, servicesSvc, log)
		statistics.RegisterRoutes(api, statsSvc, log)
	})

	return r
}

// indexHandler godoc
// @Summary Mensaje de bienvenida
// @Tags index
// @Produce json
// @Success 200 {object} respond.Message
// @Router / [get]
func indexHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		respond.JSON(w, http.StatusOK, respond.Message{
			Status:  "success",
			Message: "Welcome to the vet clinic records API",
		})
	}
}

// healthCheckHandler godoc
// @Summary Estado de la base de datos
// @Tags health
// @Produce json
// @Success 200 {object} respond.Message
// @Failure 500 {object} respond.Message "database unreachable"
// @Router /health_check [get]
func healthCheckHandler(db *sqlstore.DB, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := db.Ping(r.Context()); err != nil {
			log.Error("health check failed", map[string]any{"error": err})
			respond.JSON(w, http.StatusInternalServerError, respond.Message{
				Status:  "error",
				Message: "database unreachable",
			})
			return
		}
		respond.JSON(w, http.StatusOK, respond.Message{Status: "success", Message: "database is healthy"})
	}
}
