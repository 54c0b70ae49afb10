// Package respond concentra el writeJSON que antes se duplicaba por módulo
// y el mapeo de tipos de error a status HTTP.
package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"vet-clinic-records/internal/platform/logger"

	"github.com/juju/errors"
)

func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// Message es el cuerpo de error / confirmación.
type Message struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// RowsAffected es la respuesta de mutaciones por id.
type RowsAffected struct {
	Status       string `json:"status"`
	RowsAffected int64  `json:"rows_affected"`
}

// Status traduce el tipo de error:
// NotValid 400, NotFound 404, AlreadyExists 409, resto 500.
func Status(err error) int {
	switch {
	case errors.Is(err, errors.NotValid):
		return http.StatusBadRequest
	case errors.Is(err, errors.NotFound):
		return http.StatusNotFound
	case errors.Is(err, errors.AlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Error escribe el error con el status de Status(err) y loguea los 500 con el
// logger del request (con request_id) cuando RequestLog lo dejó en el contexto.
// entity se usa en el mensaje de conflicto ("owner already exists").
func Error(w http.ResponseWriter, r *http.Request, log logger.Logger, err error, entity string) {
	status := Status(err)
	msg := err.Error()
	if status == http.StatusConflict && strings.TrimSpace(entity) != "" {
		msg = entity + " already exists"
	}

	kind := "fail"
	if status >= 500 {
		kind = "error"
		if r != nil {
			log = logger.FromContext(r.Context(), log)
		}
		if log != nil {
			log.Error("request failed", map[string]any{"entity": entity, "error": err})
		}
	}
	JSON(w, status, Message{Status: kind, Message: msg})
}

// Affected responde 200 con el conteo, o 404 si no hubo filas.
func Affected(w http.ResponseWriter, n int64, entity string) {
	if n == 0 {
		JSON(w, http.StatusNotFound, Message{Status: "fail", Message: entity + " not found"})
		return
	}
	JSON(w, http.StatusOK, RowsAffected{Status: "success", RowsAffected: n})
}

// Decode lee el body JSON; los errores salen como NotValid.
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.NewNotValid(err, "invalid json")
	}
	return nil
}

// DecodePatch decodifica el body en v y devuelve también el JSON crudo por campo,
// para distinguir "campo": null de campo no enviado.
func DecodePatch(r *http.Request, v any) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
		return nil, errors.NewNotValid(err, "invalid json")
	}

	// Re-marshal para reutilizar los tags del struct
	b, _ := json.Marshal(raw)
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return nil, errors.NewNotValid(err, "invalid json")
	}
	return raw, nil
}

// IsNull indica si el campo vino explícitamente como null.
func IsNull(raw map[string]json.RawMessage, key string) (present, null bool) {
	v, ok := raw[key]
	if !ok {
		return false, false
	}
	return true, string(bytes.TrimSpace(v)) == "null"
}

// Page lee ?page=&limit= con defaults (1, 10) como el frontend original.
func Page(r *http.Request) (page, limit int, err error) {
	page, limit = 1, 10
	if v := strings.TrimSpace(r.URL.Query().Get("page")); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 1 {
			return 0, 0, errors.NotValidf("page %q", v)
		}
		page = n
	}
	if v := strings.TrimSpace(r.URL.Query().Get("limit")); v != "" {
		n, convErr := strconv.Atoi(v)
		if convErr != nil || n < 1 || n > 200 {
			return 0, 0, errors.NotValidf("limit %q", v)
		}
		limit = n
	}
	return page, limit, nil
}

// Offset convierte page (desde 1) a offset.
func Offset(page, limit int) int {
	if page < 1 {
		return 0
	}
	return (page - 1) * limit
}

// TotalPages redondea hacia arriba.
func TotalPages(total int64, limit int) int64 {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + int64(limit) - 1) / int64(limit)
}
