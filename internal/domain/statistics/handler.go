package statistics

import (
	"net/http"
	"strconv"
	"strings"

	"vet-clinic-records/internal/platform/logger"
	"vet-clinic-records/internal/platform/respond"

	"github.com/go-chi/chi/v5"
	"github.com/juju/errors"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Get("/statistics/services", servicesByTypeHandler(svc, log))
	r.Get("/statistics/pet-types", petTypeVisitsHandler(svc, log))
}

type serviceTypeCountResponse struct {
	ServiceTypeName string `json:"service_type_name"`
	Total           int64  `json:"total"`
}

type petTypeVisitsResponse struct {
	PetType     string `json:"pet_type"`
	TotalVisits int64  `json:"total_visits"`
}

// servicesByTypeHandler godoc
// @Summary Instancias por tipo de servicio
// @Description Cuenta instancias por etiqueta, de mayor a menor.
// @Tags statistics
// @Produce json
// @Success 200 {array} serviceTypeCountResponse
// @Router /statistics/services [get]
func servicesByTypeHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		counts, err := svc.ServicesByType(r.Context())
		if err != nil {
			respond.Error(w, r, log, err, "statistics")
			return
		}

		out := make([]serviceTypeCountResponse, 0, len(counts))
		for _, c := range counts {
			out = append(out, serviceTypeCountResponse{ServiceTypeName: c.ServiceTypeName, Total: c.Total})
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// petTypeVisitsHandler godoc
// @Summary Visitas por tipo de mascota
// @Description Solo tipos con al menos min_visits visitas (por defecto 2).
// @Tags statistics
// @Produce json
// @Param min_visits query int false "Mínimo de visitas"
// @Success 200 {array} petTypeVisitsResponse
// @Failure 400 {object} respond.Message "min_visits inválido"
// @Router /statistics/pet-types [get]
func petTypeVisitsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		minVisits := 0
		if v := strings.TrimSpace(r.URL.Query().Get("min_visits")); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				respond.Error(w, r, log, errors.NotValidf("min_visits %q", v), "statistics")
				return
			}
			minVisits = n
		}

		visits, err := svc.PetTypeVisits(r.Context(), minVisits)
		if err != nil {
			respond.Error(w, r, log, err, "statistics")
			return
		}

		out := make([]petTypeVisitsResponse, 0, len(visits))
		for _, v := range visits {
			out = append(out, petTypeVisitsResponse{PetType: v.PetType, TotalVisits: v.TotalVisits})
		}
		respond.JSON(w, http.StatusOK, out)
	}
}
