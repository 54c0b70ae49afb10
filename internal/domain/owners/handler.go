package owners

import (
	"net/http"

	"vet-clinic-records/internal/domain/pets"
	"vet-clinic-records/internal/platform/logger"
	"vet-clinic-records/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Post("/owners", createOwnerHandler(svc, log))
	r.Get("/owners", listOwnersHandler(svc, log))
	r.Get("/owners/{ownerID}", getOwnerHandler(svc, log))
	r.Patch("/owners/{ownerID}", updateOwnerHandler(svc, log))
	r.Delete("/owners/{ownerID}", deleteOwnerHandler(svc, log))
}

type createOwnerRequest struct {
	OwnerName        string `json:"owner_name"`
	OwnerEmail       string `json:"owner_email"`
	OwnerPhoneNumber string `json:"owner_phone_number"`
	OwnerAddress     string `json:"owner_address"`
}

type updateOwnerRequest struct {
	OwnerName        *string `json:"owner_name"`
	OwnerEmail       *string `json:"owner_email"`
	OwnerPhoneNumber *string `json:"owner_phone_number"`
	OwnerAddress     *string `json:"owner_address"`
}

type ownerResponse struct {
	OwnerID          string `json:"owner_id"`
	OwnerName        string `json:"owner_name"`
	OwnerEmail       string `json:"owner_email"`
	OwnerPhoneNumber string `json:"owner_phone_number"`
	OwnerAddress     string `json:"owner_address"`
}

type ownerWithPetsResponse struct {
	ownerResponse
	Pets []pets.PetResponse `json:"pets"`
}

type listOwnersResponse struct {
	Status     string          `json:"status"`
	Owners     []ownerResponse `json:"owners"`
	Page       int             `json:"page"`
	Limit      int             `json:"limit"`
	Total      int64           `json:"total"`
	TotalPages int64           `json:"total_pages"`
}

// createOwnerHandler godoc
// @Summary Registrar dueño
// @Tags owners
// @Accept json
// @Produce json
// @Param payload body createOwnerRequest true "Datos del dueño"
// @Success 201 {object} ownerResponse
// @Failure 400 {object} respond.Message "invalid json / validación"
// @Failure 409 {object} respond.Message "owner already exists (email repetido)"
// @Router /owners [post]
func createOwnerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createOwnerRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err, "owner")
			return
		}

		o, err := svc.Create(r.Context(), CreateInput{
			Name:        req.OwnerName,
			Email:       req.OwnerEmail,
			PhoneNumber: req.OwnerPhoneNumber,
			Address:     req.OwnerAddress,
		})
		if err != nil {
			respond.Error(w, r, log, err, "owner")
			return
		}
		respond.JSON(w, http.StatusCreated, toOwnerResponse(o))
	}
}

// listOwnersHandler godoc
// @Summary Listar dueños
// @Description Lista paginada ordenada por nombre; search filtra por nombre (sin distinguir mayúsculas).
// @Tags owners
// @Produce json
// @Param page query int false "Página (desde 1)"
// @Param limit query int false "Tamaño de página (1-200). Por defecto 10"
// @Param search query string false "Texto a buscar en el nombre"
// @Success 200 {object} listOwnersResponse
// @Failure 400 {object} respond.Message "paginación inválida"
// @Router /owners [get]
func listOwnersHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, err := respond.Page(r)
		if err != nil {
			respond.Error(w, r, log, err, "owner")
			return
		}

		items, total, err := svc.List(r.Context(), ListQuery{
			Limit:  limit,
			Offset: respond.Offset(page, limit),
			Search: r.URL.Query().Get("search"),
		})
		if err != nil {
			respond.Error(w, r, log, err, "owner")
			return
		}

		out := make([]ownerResponse, 0, len(items))
		for _, o := range items {
			out = append(out, toOwnerResponse(o))
		}
		respond.JSON(w, http.StatusOK, listOwnersResponse{
			Status:     "success",
			Owners:     out,
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: respond.TotalPages(total, limit),
		})
	}
}

// getOwnerHandler godoc
// @Summary Obtener dueño con sus mascotas
// @Tags owners
// @Produce json
// @Param ownerID path string true "ID del dueño"
// @Success 200 {object} ownerWithPetsResponse
// @Failure 404 {object} respond.Message "owner not found"
// @Router /owners/{ownerID} [get]
func getOwnerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		o, err := svc.GetWithPets(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			respond.Error(w, r, log, err, "owner")
			return
		}

		ps := make([]pets.PetResponse, 0, len(o.Pets))
		for _, p := range o.Pets {
			ps = append(ps, pets.ToResponse(p))
		}
		respond.JSON(w, http.StatusOK, ownerWithPetsResponse{
			ownerResponse: toOwnerResponse(o.Owner),
			Pets:          ps,
		})
	}
}

// updateOwnerHandler godoc
// @Summary Actualizar dueño
// @Tags owners
// @Accept json
// @Produce json
// @Param ownerID path string true "ID del dueño"
// @Param payload body updateOwnerRequest true "Campos a modificar"
// @Success 200 {object} respond.RowsAffected
// @Failure 400 {object} respond.Message "invalid json / validación"
// @Failure 404 {object} respond.Message "owner not found"
// @Failure 409 {object} respond.Message "owner already exists"
// @Router /owners/{ownerID} [patch]
func updateOwnerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateOwnerRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err, "owner")
			return
		}

		n, err := svc.Update(r.Context(), chi.URLParam(r, "ownerID"), Patch{
			Name:        req.OwnerName,
			Email:       req.OwnerEmail,
			PhoneNumber: req.OwnerPhoneNumber,
			Address:     req.OwnerAddress,
		})
		if err != nil {
			respond.Error(w, r, log, err, "owner")
			return
		}
		respond.Affected(w, n, "owner")
	}
}

// deleteOwnerHandler godoc
// @Summary Eliminar dueño
// @Description Falla si el dueño todavía tiene mascotas registradas.
// @Tags owners
// @Produce json
// @Param ownerID path string true "ID del dueño"
// @Success 200 {object} respond.RowsAffected
// @Failure 404 {object} respond.Message "owner not found"
// @Router /owners/{ownerID} [delete]
func deleteOwnerHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.Delete(r.Context(), chi.URLParam(r, "ownerID"))
		if err != nil {
			respond.Error(w, r, log, err, "owner")
			return
		}
		respond.Affected(w, n, "owner")
	}
}

func toOwnerResponse(o Owner) ownerResponse {
	return ownerResponse{
		OwnerID:          o.ID,
		OwnerName:        o.Name,
		OwnerEmail:       o.Email,
		OwnerPhoneNumber: o.PhoneNumber,
		OwnerAddress:     o.Address,
	}
}
