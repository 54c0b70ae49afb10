package serviceinstances

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"vet-clinic-records/internal/platform/dates"
	"vet-clinic-records/internal/platform/logger"
	"vet-clinic-records/internal/platform/respond"

	"github.com/go-chi/chi/v5"
	"github.com/juju/errors"
)

func RegisterRoutes(r chi.Router, svc *Service, log logger.Logger) {
	r.Post("/services", createServiceHandler(svc, log))
	r.Get("/services/{serviceID}", getServiceHandler(svc, log))
	r.Patch("/services/{serviceID}", updateServiceHandler(svc, log))
	r.Delete("/services/{serviceID}", deleteServiceHandler(svc, log))

	r.Post("/services/{serviceID}/groomings", addGroomingsHandler(svc, log))
	r.Post("/services/{serviceID}/preventive-care", addPreventiveCareHandler(svc, log))
	r.Post("/services/{serviceID}/surgery", addSurgeryHandler(svc, log))

	r.Patch("/surgeries/{surgeryID}", updateSurgeryHandler(svc, log))
	r.Delete("/surgeries/{surgeryID}", deleteChildHandler(svc.DeleteSurgery, "surgeryID", "surgery", log))
	r.Delete("/groomings/{groomingID}", deleteChildHandler(svc.DeleteGrooming, "groomingID", "grooming", log))
	r.Delete("/preventive-care/{preventiveCareID}", deleteChildHandler(svc.DeletePreventiveCare, "preventiveCareID", "preventive care", log))

	r.Get("/pets/{petID}/services", petHistoryHandler(svc, log))
}

// -------------------------
// Requests
// -------------------------

type addPreventiveCareRequest struct {
	Treatment []string `json:"treatment"`
	VetID     string   `json:"vet_id"`
}

type addSurgeryRequest struct {
	SurgeryName           string  `json:"surgery_name"`
	AnesthesiaUsed        *string `json:"anesthesia_used"`
	Complications         *string `json:"complications"`
	Outcome               *string `json:"outcome"`
	VeterinarianDiagnosis *string `json:"veterinarian_diagnosis"`
	VetID                 string  `json:"vet_id"`
}

type addGroomingsRequest struct {
	GroomingType []string `json:"grooming_type"`
}

type createServiceRequest struct {
	ServiceInstanceID string      `json:"service_instance_id"` // opcional
	ServiceDate       *dates.Date `json:"service_date"`        // opcional, por defecto hoy
	ServiceType       []string    `json:"service_type"`
	ServiceReason     string      `json:"service_reason"`
	GeneralDiagnosis  string      `json:"general_diagnosis"`
	RequiresFollowup  bool        `json:"requires_followup"`
	FollowupDate      *dates.Date `json:"followup_date"`
	PetID             string      `json:"pet_id"`

	GroomingType   []string                  `json:"grooming_type"`
	PreventiveCare *addPreventiveCareRequest `json:"preventive_care"`
	Surgery        *addSurgeryRequest        `json:"surgery"`
}

type updateServiceRequest struct {
	ServiceDate      *dates.Date `json:"service_date"`
	ServiceType      *[]string   `json:"service_type"` // reemplaza el set completo
	ServiceReason    *string     `json:"service_reason"`
	GeneralDiagnosis *string     `json:"general_diagnosis"`
	RequiresFollowup *bool       `json:"requires_followup"`
	FollowupDate     *dates.Date `json:"followup_date"` // null = limpiar
}

type updateSurgeryRequest struct {
	SurgeryName           *string `json:"surgery_name"`
	AnesthesiaUsed        *string `json:"anesthesia_used"`
	Complications         *string `json:"complications"`
	Outcome               *string `json:"outcome"`
	VeterinarianDiagnosis *string `json:"veterinarian_diagnosis"`
	VetID                 *string `json:"vet_id"`
}

// -------------------------
// Responses
// -------------------------

type vetViewResponse struct {
	VetName          string `json:"vet_name"`
	VetEmail         string `json:"vet_email"`
	VetPhoneNumber   string `json:"vet_phone_number"`
	VetLicenseNumber string `json:"vet_license_number"`
}

type groomingResponse struct {
	GroomingID        int64  `json:"grooming_id"`
	GroomingType      string `json:"grooming_type"`
	ServiceInstanceID string `json:"service_instance_id"`
}

type preventiveCareResponse struct {
	PreventiveCareID  int64            `json:"preventive_care_id"`
	Treatment         string           `json:"treatment"`
	VetID             string           `json:"vet_id"`
	Vet               *vetViewResponse `json:"vet,omitempty"`
	ServiceInstanceID string           `json:"service_instance_id"`
}

type surgeryResponse struct {
	SurgeryID             int64            `json:"surgery_id"`
	SurgeryName           string           `json:"surgery_name"`
	AnesthesiaUsed        *string          `json:"anesthesia_used"`
	Complications         *string          `json:"complications"`
	Outcome               *string          `json:"outcome"`
	VeterinarianDiagnosis *string          `json:"veterinarian_diagnosis"`
	VetID                 string           `json:"vet_id"`
	Vet                   *vetViewResponse `json:"vet,omitempty"`
	ServiceInstanceID     string           `json:"service_instance_id"`
}

// serviceResponse: las colecciones vacías no aparecen en el JSON.
type serviceResponse struct {
	ServiceInstanceID string      `json:"service_instance_id"`
	ServiceDate       dates.Date  `json:"service_date"`
	ServiceType       []string    `json:"service_type"`
	ServiceReason     string      `json:"service_reason"`
	GeneralDiagnosis  string      `json:"general_diagnosis"`
	RequiresFollowup  bool        `json:"requires_followup"`
	FollowupDate      *dates.Date `json:"followup_date"`
	PetID             string      `json:"pet_id"`

	Grooming       []groomingResponse       `json:"grooming,omitempty"`
	PreventiveCare []preventiveCareResponse `json:"preventive_care,omitempty"`
	Surgery        *surgeryResponse         `json:"surgery,omitempty"`
}

type historyEntryResponse struct {
	ServiceInstanceID string      `json:"service_instance_id"`
	ServiceDate       dates.Date  `json:"service_date"`
	ServiceType       []string    `json:"service_type"`
	ServiceReason     string      `json:"service_reason"`
	GeneralDiagnosis  string      `json:"general_diagnosis"`
	RequiresFollowup  bool        `json:"requires_followup"`
	FollowupDate      *dates.Date `json:"followup_date"`
	PetID             string      `json:"pet_id"`
}

type historyResponse struct {
	Status   string                 `json:"status"`
	Services []historyEntryResponse `json:"services"`
	Page     int                    `json:"page"`
	Limit    int                    `json:"limit"`
}

// -------------------------
// Aggregate
// -------------------------

// createServiceHandler godoc
// @Summary Registrar servicio (visita clínica)
// @Description Crea la instancia con etiquetas, grooming, cuidados preventivos y cirugía en una sola transacción.
// @Description service_date es opcional (hoy por defecto). Si falla cualquier hijo no queda nada escrito.
// @Tags services
// @Accept json
// @Produce json
// @Param payload body createServiceRequest true "Instancia de servicio"
// @Success 201 {object} serviceResponse
// @Failure 400 {object} respond.Message "invalid json / validación"
// @Failure 409 {object} respond.Message "service instance already exists"
// @Failure 500 {object} respond.Message "mascota o veterinario inexistente"
// @Router /services [post]
func createServiceHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createServiceRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err, "service instance")
			return
		}

		in := CreateInput{
			ID:               req.ServiceInstanceID,
			ServiceDate:      req.ServiceDate,
			ServiceTypes:     req.ServiceType,
			Reason:           req.ServiceReason,
			Diagnosis:        req.GeneralDiagnosis,
			RequiresFollowup: req.RequiresFollowup,
			FollowupDate:     req.FollowupDate,
			PetID:            req.PetID,
			GroomingTypes:    req.GroomingType,
		}
		if pc := req.PreventiveCare; pc != nil {
			in.PreventiveCare = &NewPreventiveCare{Treatments: pc.Treatment, VetID: pc.VetID}
		}
		if s := req.Surgery; s != nil {
			ns := s.toNewSurgery()
			in.Surgery = &ns
		}

		inst, err := svc.Create(r.Context(), in)
		if err != nil {
			respond.Error(w, r, log, err, "service instance")
			return
		}
		respond.JSON(w, http.StatusCreated, toServiceResponse(inst))
	}
}

// getServiceHandler godoc
// @Summary Detalle de un servicio
// @Description Devuelve la instancia con sus hijos; cada hijo embebe los datos del veterinario.
// @Tags services
// @Produce json
// @Param serviceID path string true "ID de la instancia"
// @Success 200 {object} serviceResponse
// @Failure 404 {object} respond.Message "service instance not found"
// @Router /services/{serviceID} [get]
func getServiceHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		inst, err := svc.GetByID(r.Context(), chi.URLParam(r, "serviceID"))
		if err != nil {
			respond.Error(w, r, log, err, "service instance")
			return
		}
		respond.JSON(w, http.StatusOK, toServiceResponse(inst))
	}
}

// updateServiceHandler godoc
// @Summary Actualizar servicio
// @Description PATCH parcial. service_type reemplaza todas las etiquetas; followup_date: null limpia la fecha.
// @Tags services
// @Accept json
// @Produce json
// @Param serviceID path string true "ID de la instancia"
// @Param payload body updateServiceRequest true "Campos a modificar"
// @Success 200 {object} respond.RowsAffected
// @Failure 400 {object} respond.Message "invalid json / validación"
// @Failure 404 {object} respond.Message "service instance not found"
// @Router /services/{serviceID} [patch]
func updateServiceHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req updateServiceRequest
		raw, err := respond.DecodePatch(r, &req)
		if err != nil {
			respond.Error(w, r, log, err, "service instance")
			return
		}

		p := Patch{
			ServiceDate:      req.ServiceDate,
			Reason:           req.ServiceReason,
			Diagnosis:        req.GeneralDiagnosis,
			RequiresFollowup: req.RequiresFollowup,
			ServiceTypes:     req.ServiceType,
		}
		if present, _ := respond.IsNull(raw, "followup_date"); present {
			p.FollowupDate = PatchDate{Present: true, Value: req.FollowupDate}
		}

		n, err := svc.Update(r.Context(), chi.URLParam(r, "serviceID"), p)
		if err != nil {
			respond.Error(w, r, log, err, "service instance")
			return
		}
		respond.Affected(w, n, "service instance")
	}
}

// deleteServiceHandler godoc
// @Summary Eliminar servicio
// @Description Borra la instancia junto con sus etiquetas y sus hijos.
// @Tags services
// @Produce json
// @Param serviceID path string true "ID de la instancia"
// @Success 200 {object} respond.RowsAffected
// @Failure 404 {object} respond.Message "service instance not found"
// @Router /services/{serviceID} [delete]
func deleteServiceHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		n, err := svc.Delete(r.Context(), chi.URLParam(r, "serviceID"))
		if err != nil {
			respond.Error(w, r, log, err, "service instance")
			return
		}
		respond.Affected(w, n, "service instance")
	}
}

// petHistoryHandler godoc
// @Summary Historial de servicios de una mascota
// @Description Una entrada por instancia, ordenadas por id. La paginación cuenta instancias.
// @Tags services
// @Produce json
// @Param petID path string true "ID de la mascota"
// @Param page query int false "Página (desde 1)"
// @Param limit query int false "Tamaño de página (1-200). Por defecto 10"
// @Param start_date query string false "Desde (YYYY-MM-DD, inclusivo)"
// @Param end_date query string false "Hasta (YYYY-MM-DD, inclusivo)"
// @Success 200 {object} historyResponse
// @Failure 400 {object} respond.Message "paginación o fechas inválidas"
// @Router /pets/{petID}/services [get]
func petHistoryHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		page, limit, err := respond.Page(r)
		if err != nil {
			respond.Error(w, r, log, err, "service instance")
			return
		}

		from, err := queryDate(r, "start_date")
		if err != nil {
			respond.Error(w, r, log, err, "service instance")
			return
		}
		to, err := queryDate(r, "end_date")
		if err != nil {
			respond.Error(w, r, log, err, "service instance")
			return
		}

		entries, err := svc.History(r.Context(), HistoryQuery{
			PetID:  chi.URLParam(r, "petID"),
			Limit:  limit,
			Offset: respond.Offset(page, limit),
			From:   from,
			To:     to,
		})
		if err != nil {
			respond.Error(w, r, log, err, "service instance")
			return
		}

		out := make([]historyEntryResponse, 0, len(entries))
		for _, e := range entries {
			out = append(out, historyEntryResponse{
				ServiceInstanceID: e.ID,
				ServiceDate:       e.ServiceDate,
				ServiceType:       e.ServiceTypes,
				ServiceReason:     e.Reason,
				GeneralDiagnosis:  e.Diagnosis,
				RequiresFollowup:  e.RequiresFollowup,
				FollowupDate:      e.FollowupDate,
				PetID:             e.PetID,
			})
		}
		respond.JSON(w, http.StatusOK, historyResponse{Status: "success", Services: out, Page: page, Limit: limit})
	}
}

// -------------------------
// Children
// -------------------------

// addGroomingsHandler godoc
// @Summary Agregar grooming a un servicio
// @Tags services
// @Accept json
// @Produce json
// @Param serviceID path string true "ID de la instancia"
// @Param payload body addGroomingsRequest true "Tipos de grooming"
// @Success 201 {array} groomingResponse
// @Failure 400 {object} respond.Message "validación"
// @Failure 404 {object} respond.Message "service instance not found"
// @Router /services/{serviceID}/groomings [post]
func addGroomingsHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addGroomingsRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err, "grooming")
			return
		}

		gs, err := svc.AddGroomings(r.Context(), chi.URLParam(r, "serviceID"), req.GroomingType)
		if err != nil {
			respond.Error(w, r, log, err, "grooming")
			return
		}
		respond.JSON(w, http.StatusCreated, toGroomingResponses(gs))
	}
}

// addPreventiveCareHandler godoc
// @Summary Agregar cuidados preventivos a un servicio
// @Description Cada tratamiento se guarda como una fila con el mismo veterinario.
// @Tags services
// @Accept json
// @Produce json
// @Param serviceID path string true "ID de la instancia"
// @Param payload body addPreventiveCareRequest true "Tratamientos y veterinario"
// @Success 201 {array} preventiveCareResponse
// @Failure 400 {object} respond.Message "validación"
// @Failure 404 {object} respond.Message "service instance not found"
// @Router /services/{serviceID}/preventive-care [post]
func addPreventiveCareHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addPreventiveCareRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err, "preventive care")
			return
		}

		pcs, err := svc.AddPreventiveCare(r.Context(), chi.URLParam(r, "serviceID"), NewPreventiveCare{
			Treatments: req.Treatment,
			VetID:      req.VetID,
		})
		if err != nil {
			respond.Error(w, r, log, err, "preventive care")
			return
		}
		respond.JSON(w, http.StatusCreated, toPreventiveCareResponses(pcs))
	}
}

// addSurgeryHandler godoc
// @Summary Agregar cirugía a un servicio
// @Description Una instancia admite una sola cirugía.
// @Tags services
// @Accept json
// @Produce json
// @Param serviceID path string true "ID de la instancia"
// @Param payload body addSurgeryRequest true "Cirugía"
// @Success 201 {object} surgeryResponse
// @Failure 400 {object} respond.Message "validación"
// @Failure 404 {object} respond.Message "service instance not found"
// @Failure 409 {object} respond.Message "surgery already exists"
// @Router /services/{serviceID}/surgery [post]
func addSurgeryHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req addSurgeryRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err, "surgery")
			return
		}

		s, err := svc.AddSurgery(r.Context(), chi.URLParam(r, "serviceID"), req.toNewSurgery())
		if err != nil {
			respond.Error(w, r, log, err, "surgery")
			return
		}
		respond.JSON(w, http.StatusCreated, toSurgeryResponse(s))
	}
}

// updateSurgeryHandler godoc
// @Summary Actualizar cirugía
// @Tags services
// @Accept json
// @Produce json
// @Param surgeryID path int true "ID de la cirugía"
// @Param payload body updateSurgeryRequest true "Campos a modificar"
// @Success 200 {object} respond.RowsAffected
// @Failure 400 {object} respond.Message "id o json inválido"
// @Failure 404 {object} respond.Message "surgery not found"
// @Router /surgeries/{surgeryID} [patch]
func updateSurgeryHandler(svc *Service, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, "surgeryID")
		if err != nil {
			respond.Error(w, r, log, err, "surgery")
			return
		}

		var req updateSurgeryRequest
		if err := respond.Decode(r, &req); err != nil {
			respond.Error(w, r, log, err, "surgery")
			return
		}

		n, err := svc.UpdateSurgery(r.Context(), id, SurgeryPatch{
			Name:                  req.SurgeryName,
			AnesthesiaUsed:        req.AnesthesiaUsed,
			Complications:         req.Complications,
			Outcome:               req.Outcome,
			VeterinarianDiagnosis: req.VeterinarianDiagnosis,
			VetID:                 req.VetID,
		})
		if err != nil {
			respond.Error(w, r, log, err, "surgery")
			return
		}
		respond.Affected(w, n, "surgery")
	}
}

// deleteChildHandler cubre DELETE /groomings/{id}, /preventive-care/{id} y /surgeries/{id}.
//
// @Summary Eliminar un hijo de un servicio
// @Tags services
// @Produce json
// @Param id path int true "ID del hijo"
// @Success 200 {object} respond.RowsAffected
// @Failure 400 {object} respond.Message "id inválido"
// @Failure 404 {object} respond.Message "not found"
// @Router /groomings/{id} [delete]
// @Router /preventive-care/{id} [delete]
// @Router /surgeries/{id} [delete]
func deleteChildHandler(del func(ctx context.Context, id int64) (int64, error), param, entity string, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := pathID(r, param)
		if err != nil {
			respond.Error(w, r, log, err, entity)
			return
		}

		n, err := del(r.Context(), id)
		if err != nil {
			respond.Error(w, r, log, err, entity)
			return
		}
		respond.Affected(w, n, entity)
	}
}

// -------------------------
// Helpers
// -------------------------

func pathID(r *http.Request, param string) (int64, error) {
	v := chi.URLParam(r, param)
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 1 {
		return 0, errors.NotValidf("%s %q", param, v)
	}
	return id, nil
}

func queryDate(r *http.Request, key string) (*dates.Date, error) {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil, nil
	}
	d, err := dates.Parse(v)
	if err != nil {
		return nil, errors.NewNotValid(err, key)
	}
	return &d, nil
}

func (s addSurgeryRequest) toNewSurgery() NewSurgery {
	return NewSurgery{
		Name:                  s.SurgeryName,
		AnesthesiaUsed:        s.AnesthesiaUsed,
		Complications:         s.Complications,
		Outcome:               s.Outcome,
		VeterinarianDiagnosis: s.VeterinarianDiagnosis,
		VetID:                 s.VetID,
	}
}

func toServiceResponse(in Instance) serviceResponse {
	tags := in.ServiceTypes
	if tags == nil {
		tags = []string{}
	}

	out := serviceResponse{
		ServiceInstanceID: in.ID,
		ServiceDate:       in.ServiceDate,
		ServiceType:       tags,
		ServiceReason:     in.Reason,
		GeneralDiagnosis:  in.Diagnosis,
		RequiresFollowup:  in.RequiresFollowup,
		FollowupDate:      in.FollowupDate,
		PetID:             in.PetID,
	}
	if len(in.Groomings) > 0 {
		out.Grooming = toGroomingResponses(in.Groomings)
	}
	if len(in.PreventiveCare) > 0 {
		out.PreventiveCare = toPreventiveCareResponses(in.PreventiveCare)
	}
	if in.Surgery != nil {
		s := toSurgeryResponse(*in.Surgery)
		out.Surgery = &s
	}
	return out
}

func toGroomingResponses(gs []Grooming) []groomingResponse {
	out := make([]groomingResponse, 0, len(gs))
	for _, g := range gs {
		out = append(out, groomingResponse{GroomingID: g.ID, GroomingType: g.Type, ServiceInstanceID: g.InstanceID})
	}
	return out
}

func toPreventiveCareResponses(pcs []PreventiveCare) []preventiveCareResponse {
	out := make([]preventiveCareResponse, 0, len(pcs))
	for _, pc := range pcs {
		out = append(out, preventiveCareResponse{
			PreventiveCareID:  pc.ID,
			Treatment:         pc.Treatment,
			VetID:             pc.VetID,
			Vet:               toVetView(pc.Vet),
			ServiceInstanceID: pc.InstanceID,
		})
	}
	return out
}

func toSurgeryResponse(s Surgery) surgeryResponse {
	return surgeryResponse{
		SurgeryID:             s.ID,
		SurgeryName:           s.Name,
		AnesthesiaUsed:        s.AnesthesiaUsed,
		Complications:         s.Complications,
		Outcome:               s.Outcome,
		VeterinarianDiagnosis: s.VeterinarianDiagnosis,
		VetID:                 s.VetID,
		Vet:                   toVetView(s.Vet),
		ServiceInstanceID:     s.InstanceID,
	}
}

func toVetView(v *VetView) *vetViewResponse {
	if v == nil {
		return nil
	}
	return &vetViewResponse{
		VetName:          v.Name,
		VetEmail:         v.Email,
		VetPhoneNumber:   v.PhoneNumber,
		VetLicenseNumber: v.LicenseNumber,
	}
}
