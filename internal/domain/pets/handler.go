package pets

import (
	"net/http"
	"strings"

	"vet-clinic-records/internal/platform/dates"
	"vet-clinic-records/internal/platform/logger"
	"vet-clinic-records/internal/platform/respond"

	"github.com/go-chi/chi/v5"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Post("/pets", createPetHandler(svc, log))
	r.Get("/pets", listPetsHandler(svc, log))
	r.Get("/pets/{petID}", getPetHandler(svc, log))
	r.Patch("/pets/{petID}", updatePetHandler(svc, log))
	r.Delete("/pets/{petID}", deletePetHandler(svc, log))
}

type createPetRequest struct {
	PetName      string      `json:"pet_name"`
	PetBirthDate *dates.Date `json:"pet_birth_date"` // YYYY-MM-DD opcional
	PetType      string      `json:"pet_type"`
	PetBreed     string      `json:"pet_breed"`
	PetWeight    float64     `json:"pet_weight"`
	PetColor     string      `json:"pet_color"`
	OwnerID      string      `json:"owner_id"`
}

type PetResponse struct {
	PetID        string      `json:"pet_id"`
	PetName      string      `json:"pet_name"`
	PetBirthDate *dates.Date `json:"pet_birth_date"`
	PetType      string      `json:"pet_type"`
	PetBreed     string      `json:"pet_breed"`
	PetWeight    float64     `json:"pet_weight"`
	PetColor     string      `json:"pet_color"`
	OwnerID      string      `json:"owner_id"`
}

type listPetsResponse struct {
	Status     string        `json:"status"`
	Pets       []PetResponse `json:"pets"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	Total      int64         `json:"total"`
	TotalPages int64         `json:"total_pages"`
}

type updatePetRequest struct {
	// Punteros para PATCH real: nil = no tocar.
	PetName      *string     `json:"pet_name"`
	PetBirthDate *dates.Date `json:"pet_birth_date"` // null = limpiar
	PetType      *string     `json:"pet_type"`
	PetBreed     *string     `json:"pet_breed"`
	PetWeight    *float64    `json:"pet_weight"`
	PetColor     *string     `json:"pet_color"`
	OwnerID      *string     `json:"owner_id"`
}

// createPetHandler godoc
// @Summary Registrar mascota
// @Description Crea una mascota para un dueño existente. pet_birth_date en formato YYYY-MM-DD.
// @Tags pets
// @Accept json
// @Produce json
// @Param payload body createPetRequest true "Datos de la mascota"
// @Success 201 {object} PetResponse
// @Failure 400 {object} respond.Message "invalid json / validación"
// @Failure 409 {object} respond.Message "pet already exists"
// @Failure 500 {object} respond.Message "owner inexistente u otro error de storage"
// @Router /pets [post]
func createPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createPetRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err, "pet")
			return
		}

		p, err := svc.Create(r.Context(), CreateInput{
			Name:      req.PetName,
			BirthDate: req.PetBirthDate,
			Type:      req.PetType,
			Breed:     req.PetBreed,
			Weight:    req.PetWeight,
			Color:     req.PetColor,
			OwnerID:   req.OwnerID,
		})
		if err != nil {
			respond.Error(w, r, log, err, "pet")
			return
		}

		respond.JSON(w, http.StatusCreated, ToResponse(p))
	}
}

// listPetsHandler godoc
// @Summary Listar mascotas
// @Description Lista paginada; search filtra por nombre de mascota o nombre/email del dueño.
// @Tags pets
// @Produce json
// @Param page query int false "Página (desde 1). Por defecto 1"
// @Param limit query int false "Tamaño de página (1-200). Por defecto 10"
// @Param search query string false "Texto a buscar"
// @Success 200 {object} listPetsResponse
// @Failure 400 {object} respond.Message "paginación inválida"
// @Router /pets [get]
func listPetsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, err := respond.Page(r)
		if err != nil {
			respond.Error(w, r, log, err, "pet")
			return
		}

		items, total, err := svc.List(r.Context(), ListQuery{
			Limit:  limit,
			Offset: respond.Offset(page, limit),
			Search: r.URL.Query().Get("search"),
		})
		if err != nil {
			respond.Error(w, r, log, err, "pet")
			return
		}

		out := make([]PetResponse, 0, len(items))
		for _, p := range items {
			out = append(out, ToResponse(p))
		}

		respond.JSON(w, http.StatusOK, listPetsResponse{
			Status:     "success",
			Pets:       out,
			Page:       page,
			Limit:      limit,
			Total:      total,
			TotalPages: respond.TotalPages(total, limit),
		})
	}
}

// getPetHandler godoc
// @Summary Obtener mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} PetResponse
// @Failure 404 {object} respond.Message "pet not found"
// @Router /pets/{petID} [get]
func getPetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		p, err := svc.GetByID(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			respond.Error(w, r, log, err, "pet")
			return
		}
		respond.JSON(w, http.StatusOK, ToResponse(p))
	}
}

// updatePetHandler godoc
// @Summary Actualizar mascota
// @Description PATCH parcial: solo se modifican los campos enviados. pet_birth_date: null limpia la fecha.
// @Tags pets
// @Accept json
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param payload body updatePetRequest true "Campos a modificar"
// @Success 200 {object} respond.RowsAffected
// @Failure 400 {object} respond.Message "invalid json / validación"
// @Failure 404 {object} respond.Message "pet not found"
// @Router /pets/{petID} [patch]
func updatePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updatePetRequest
		raw, err := respond.DecodePatch(r, &req)
		if err != nil {
			respond.Error(w, r, log, err, "pet")
			return
		}

		// Detectar presencia de pet_birth_date (para permitir null = limpiar)
		bd := PatchBirthDate{}
		if present, _ := respond.IsNull(raw, "pet_birth_date"); present {
			bd.Present = true
			bd.Value = req.PetBirthDate
		}

		n, err := svc.Update(r.Context(), chi.URLParam(r, "petID"), Patch{
			Name:      req.PetName,
			BirthDate: bd,
			Type:      req.PetType,
			Breed:     trimPtr(req.PetBreed),
			Weight:    req.PetWeight,
			Color:     trimPtr(req.PetColor),
			OwnerID:   req.OwnerID,
		})
		if err != nil {
			respond.Error(w, r, log, err, "pet")
			return
		}
		respond.Affected(w, n, "pet")
	}
}

// deletePetHandler godoc
// @Summary Eliminar mascota
// @Tags pets
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Success 200 {object} respond.RowsAffected
// @Failure 404 {object} respond.Message "pet not found"
// @Router /pets/{petID} [delete]
func deletePetHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.Delete(r.Context(), chi.URLParam(r, "petID"))
		if err != nil {
			respond.Error(w, r, log, err, "pet")
			return
		}
		respond.Affected(w, n, "pet")
	}
}

// ToResponse es exportado porque owners embebe las mascotas del dueño.
func ToResponse(p Pet) PetResponse {
	return PetResponse{
		PetID:        p.ID,
		PetName:      p.Name,
		PetBirthDate: p.BirthDate,
		PetType:      p.Type,
		PetBreed:     p.Breed,
		PetWeight:    p.Weight,
		PetColor:     p.Color,
		OwnerID:      p.OwnerID,
	}
}

func trimPtr(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	return &t
}
