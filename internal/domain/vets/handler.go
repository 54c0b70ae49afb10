package vets

import (
	"net/http"

	"vet-clinic-records/internal/platform/logger"
	"vet-clinic-records/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Post("/vets", createVetHandler(svc, log))
	r.Get("/vets", listVetsHandler(svc, log))
	r.Get("/vets/options", vetOptionsHandler(svc, log))
	r.Get("/vets/{vetID}", getVetHandler(svc, log))
	r.Patch("/vets/{vetID}", updateVetHandler(svc, log))
	r.Delete("/vets/{vetID}", deleteVetHandler(svc, log))
}

type createVetRequest struct {
	VetName          string `json:"vet_name"`
	VetEmail         string `json:"vet_email"`
	VetPhoneNumber   string `json:"vet_phone_number"`
	VetLicenseNumber string `json:"vet_license_number"`
}

type updateVetRequest struct {
	VetName          *string `json:"vet_name"`
	VetEmail         *string `json:"vet_email"`
	VetPhoneNumber   *string `json:"vet_phone_number"`
	VetLicenseNumber *string `json:"vet_license_number"`
}

type vetResponse struct {
	VetID            string `json:"vet_id"`
	VetName          string `json:"vet_name"`
	VetEmail         string `json:"vet_email"`
	VetPhoneNumber   string `json:"vet_phone_number"`
	VetLicenseNumber string `json:"vet_license_number"`
}

type vetOptionResponse struct {
	VetID   string `json:"vet_id"`
	VetName string `json:"vet_name"`
}

type listVetsResponse struct {
	Status     string        `json:"status"`
	Vets       []vetResponse `json:"vets"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int64         `json:"total"`
	TotalPages int64         `json:"total_pages"`
}

// createVetHandler godoc
// @Summary Registrar veterinario
// @Tags vets
// @Accept json
// @Produce json
// @Param payload body createVetRequest true "Datos del veterinario"
// @Success 201 {object} vetResponse
// @Failure 400 {object} respond.Message "invalid json / validación"
// @Failure 409 {object} respond.Message "veterinarian already exists (email o matrícula repetidos)"
// @Router /vets [post]
func createVetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createVetRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err, "veterinarian")
			return
		}

		v, err := svc.Create(r.Context(), CreateInput{
			Name:          req.VetName,
			Email:         req.VetEmail,
			PhoneNumber:   req.VetPhoneNumber,
			LicenseNumber: req.VetLicenseNumber,
		})
		if err != nil {
			respond.Error(w, r, log, err, "veterinarian")
			return
		}
		respond.JSON(w, http.StatusCreated, toVetResponse(v))
	}
}

// listVetsHandler godoc
// @Summary Listar veterinarios
// @Tags vets
// @Produce json
// @Param page query int false "Página (desde 1)"
// @Param limit query int false "Tamaño de página (1-200). Por defecto 10"
// @Param search query string false "Texto a buscar en el nombre"
// @Success 200 {object} listVetsResponse
// @Router /vets [get]
func listVetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, err := respond.Page(r)
		if err != nil {
			respond.Error(w, r, log, err, "veterinarian")
			return
		}

		items, total, err := svc.List(r.Context(), ListQuery{
			Limit:  limit,
			Offset: respond.Offset(page, limit),
			Search: r.URL.Query().Get("search"),
		})
		if err != nil {
			respond.Error(w, r, log, err, "veterinarian")
			return
		}

		out := make([]vetResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVetResponse(v))
		}
		respond.JSON(w, http.StatusOK, listVetsResponse{
			Status:     "success",
			Vets:       out,
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: respond.TotalPages(total, limit),
		})
	}
}

// vetOptionsHandler godoc
// @Summary Opciones de veterinarios (id + nombre)
// @Tags vets
// @Produce json
// @Success 200 {array} vetOptionResponse
// @Router /vets/options [get]
func vetOptionsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts, err := svc.Options(r.Context())
		if err != nil {
			respond.Error(w, r, log, err, "veterinarian")
			return
		}

		out := make([]vetOptionResponse, 0, len(opts))
		for _, o := range opts {
			out = append(out, vetOptionResponse{VetID: o.ID, VetName: o.Name})
		}
		respond.JSON(w, http.StatusOK, out)
	}
}

// getVetHandler godoc
// @Summary Obtener veterinario
// @Tags vets
// @Produce json
// @Param vetID path string true "ID del veterinario"
// @Success 200 {object} vetResponse
// @Failure 404 {object} respond.Message "veterinarian not found"
// @Router /vets/{vetID} [get]
func getVetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.GetByID(r.Context(), chi.URLParam(r, "vetID"))
		if err != nil {
			respond.Error(w, r, log, err, "veterinarian")
			return
		}
		respond.JSON(w, http.StatusOK, toVetResponse(v))
	}
}

// updateVetHandler godoc
// @Summary Actualizar veterinario
// @Tags vets
// @Accept json
// @Produce json
// @Param vetID path string true "ID del veterinario"
// @Param payload body updateVetRequest true "Campos a modificar"
// @Success 200 {object} respond.RowsAffected
// @Failure 404 {object} respond.Message "veterinarian not found"
// @Router /vets/{vetID} [patch]
func updateVetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateVetRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err, "veterinarian")
			return
		}

		n, err := svc.Update(r.Context(), chi.URLParam(r, "vetID"), Patch{
			Name:          req.VetName,
			Email:         req.VetEmail,
			PhoneNumber:   req.VetPhoneNumber,
			LicenseNumber: req.VetLicenseNumber,
		})
		if err != nil {
			respond.Error(w, r, log, err, "veterinarian")
			return
		}
		respond.Affected(w, n, "veterinarian")
	}
}

// deleteVetHandler godoc
// @Summary Eliminar veterinario
// @Tags vets
// @Produce json
// @Param vetID path string true "ID del veterinario"
// @Success 200 {object} respond.RowsAffected
// @Failure 404 {object} respond.Message "veterinarian not found"
// @Router /vets/{vetID} [delete]
func deleteVetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.Delete(r.Context(), chi.URLParam(r, "vetID"))
		if err != nil {
			respond.Error(w, r, log, err, "veterinarian")
			return
		}
		respond.Affected(w, n, "veterinarian")
	}
}

func toVetResponse(v Vet) vetResponse {
	return vetResponse{
		VetID:            v.ID,
		VetName:          v.Name,
		VetEmail:         v.Email,
		VetPhoneNumber:   v.PhoneNumber,
		VetLicenseNumber: v.LicenseNumber,
	}
}
