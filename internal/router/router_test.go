package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"vet-clinic-records/internal/adapters/storage/sqlstore"
	"vet-clinic-records/internal/platform/metrics"
	"vet-clinic-records/internal/router"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	m := metrics.NewCollector()
	reg, err := metrics.NewRegistry(m)
	require.NoError(t, err)

	db, err := sqlstore.Open(context.Background(), sqlstore.Config{
		Driver:  "sqlite",
		DSN:     filepath.Join(t.TempDir(), "api.db"),
		Metrics: m,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, db.InitSchema(context.Background()))

	ts := httptest.NewServer(router.NewRouter(router.Options{DB: db, Metrics: m, Registry: reg}))
	t.Cleanup(ts.Close)
	return ts
}

func TestHTTP_EndToEnd_ServiceInstanceLifecycle(t *testing.T) {
	ts := newTestServer(t)

	// 1) Dueño, veterinario y mascota
	ownerID := createID(t, ts.URL, "/api/owners", "owner_id", map[string]any{
		"owner_name":  "Ana Torres",
		"owner_email": "Ana@Example.com",
	})
	vetID := createID(t, ts.URL, "/api/vets", "vet_id", map[string]any{
		"vet_name":           "Dr. Ruiz",
		"vet_email":          "ruiz@clinic.test",
		"vet_phone_number":   "555-0199",
		"vet_license_number": "LIC-1",
	})
	petID := createID(t, ts.URL, "/api/pets", "pet_id", map[string]any{
		"pet_name":       "Milo",
		"pet_type":       "Dog",
		"pet_birth_date": "2020-03-01",
		"pet_weight":     12.5,
		"owner_id":       ownerID,
	})

	// 2) Servicio con todos los hijos
	st, body := doReq(t, ts.URL, "POST", "/api/services", map[string]any{
		"service_instance_id": "si-1",
		"service_date":        "2024-03-10",
		"service_type":        []string{"grooming", "surgery"},
		"service_reason":      "control anual",
		"general_diagnosis":   "sano",
		"requires_followup":   true,
		"followup_date":       "2024-04-10",
		"pet_id":              petID,
		"grooming_type":       []string{"bath"},
		"preventive_care":     map[string]any{"treatment": []string{"rabies", "parvo"}, "vet_id": vetID},
		"surgery":             map[string]any{"surgery_name": "spay", "vet_id": vetID},
	})
	require.Equal(t, http.StatusCreated, st, string(body))

	created := decode(t, body)
	assert.Equal(t, "si-1", created["service_instance_id"])
	assert.Len(t, created["grooming"], 1)
	assert.Len(t, created["preventive_care"], 2)
	surgery := created["surgery"].(map[string]any)
	assert.Equal(t, vetID, surgery["vet_id"])

	// 3) Detalle con el veterinario embebido
	st, body = doReq(t, ts.URL, "GET", "/api/services/si-1", nil)
	require.Equal(t, http.StatusOK, st, string(body))

	detail := decode(t, body)
	assert.Equal(t, []any{"grooming", "surgery"}, detail["service_type"])
	assert.Equal(t, "2024-04-10", detail["followup_date"])
	pcs := detail["preventive_care"].([]any)
	require.Len(t, pcs, 2)
	vet := pcs[0].(map[string]any)["vet"].(map[string]any)
	assert.Equal(t, "Dr. Ruiz", vet["vet_name"])
	assert.Equal(t, "LIC-1", vet["vet_license_number"])
	assert.Equal(t, "Dr. Ruiz", detail["surgery"].(map[string]any)["vet"].(map[string]any)["vet_name"])
	surgeryID := int64(surgery["surgery_id"].(float64))
	groomingID := int64(created["grooming"].([]any)[0].(map[string]any)["grooming_id"].(float64))

	// 4) PATCH: reemplaza etiquetas y limpia followup_date
	st, body = doReq(t, ts.URL, "PATCH", "/api/services/si-1", map[string]any{
		"service_type":      []string{"surgery", "checkup"},
		"followup_date":     nil,
		"requires_followup": false,
	})
	require.Equal(t, http.StatusOK, st, string(body))
	assert.EqualValues(t, 1, decode(t, body)["rows_affected"])

	_, body = doReq(t, ts.URL, "GET", "/api/services/si-1", nil)
	detail = decode(t, body)
	assert.Equal(t, []any{"surgery", "checkup"}, detail["service_type"])
	assert.Nil(t, detail["followup_date"])
	assert.Equal(t, "control anual", detail["service_reason"])

	// 5) Historial de la mascota
	st, body = doReq(t, ts.URL, "GET", "/api/pets/"+petID+"/services?start_date=2024-01-01&end_date=2024-12-31", nil)
	require.Equal(t, http.StatusOK, st, string(body))
	services := decode(t, body)["services"].([]any)
	require.Len(t, services, 1)
	assert.Len(t, services[0].(map[string]any)["service_type"], 2)

	// 6) Una segunda cirugía choca
	st, body = doReq(t, ts.URL, "POST", "/api/services/si-1/surgery", map[string]any{
		"surgery_name": "again", "vet_id": vetID,
	})
	assert.Equal(t, http.StatusConflict, st, string(body))

	st, body = doReq(t, ts.URL, "PATCH", "/api/surgeries/"+itoa(surgeryID), map[string]any{
		"outcome": "recuperado",
	})
	require.Equal(t, http.StatusOK, st, string(body))

	// 7) Hijos adicionales y borrado por id
	st, body = doReq(t, ts.URL, "POST", "/api/services/si-1/groomings", map[string]any{
		"grooming_type": []string{"nails", "ears"},
	})
	require.Equal(t, http.StatusCreated, st, string(body))

	st, _ = doReq(t, ts.URL, "DELETE", "/api/groomings/"+itoa(groomingID), nil)
	assert.Equal(t, http.StatusOK, st)
	st, _ = doReq(t, ts.URL, "DELETE", "/api/groomings/"+itoa(groomingID), nil)
	assert.Equal(t, http.StatusNotFound, st)

	_, body = doReq(t, ts.URL, "GET", "/api/services/si-1", nil)
	detail = decode(t, body)
	assert.Len(t, detail["grooming"], 2)
	assert.Equal(t, "recuperado", detail["surgery"].(map[string]any)["outcome"])

	// 8) Borrar el agregado
	st, _ = doReq(t, ts.URL, "DELETE", "/api/services/si-1", nil)
	assert.Equal(t, http.StatusOK, st)
	st, _ = doReq(t, ts.URL, "GET", "/api/services/si-1", nil)
	assert.Equal(t, http.StatusNotFound, st)
}

func TestHTTP_CreateServiceIsAtomic(t *testing.T) {
	ts := newTestServer(t)

	ownerID := createID(t, ts.URL, "/api/owners", "owner_id", map[string]any{
		"owner_name": "Ana", "owner_email": "ana@example.com",
	})
	petID := createID(t, ts.URL, "/api/pets", "pet_id", map[string]any{
		"pet_name": "Milo", "pet_type": "Dog", "owner_id": ownerID,
	})

	st, body := doReq(t, ts.URL, "POST", "/api/services", map[string]any{
		"service_type":      []string{"preventive"},
		"service_reason":    "vacunas",
		"general_diagnosis": "ok",
		"pet_id":            petID,
		"grooming_type":     []string{"bath"},
		"preventive_care":   map[string]any{"treatment": []string{"rabies"}, "vet_id": "no-such-vet"},
	})
	require.Equal(t, http.StatusInternalServerError, st, string(body))
	assert.Equal(t, "error", decode(t, body)["status"])

	st, body = doReq(t, ts.URL, "GET", "/api/pets/"+petID+"/services", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Empty(t, decode(t, body)["services"])

	st, body = doReq(t, ts.URL, "GET", "/api/statistics/services", nil)
	require.Equal(t, http.StatusOK, st)
	assert.Equal(t, "[]\n", string(body))
}

func TestHTTP_Validation(t *testing.T) {
	ts := newTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"blank reason", "POST", "/api/services", map[string]any{"pet_id": "p", "general_diagnosis": "d"}, http.StatusBadRequest},
		{"unknown field", "POST", "/api/services", map[string]any{"nope": 1}, http.StatusBadRequest},
		{"bad date", "POST", "/api/services", map[string]any{"service_date": "10/03/2024"}, http.StatusBadRequest},
		{"child id not int", "DELETE", "/api/groomings/abc", nil, http.StatusBadRequest},
		{"bad page", "GET", "/api/owners?page=0", nil, http.StatusBadRequest},
		{"bad history range", "GET", "/api/pets/p/services?start_date=2024-02-01&end_date=2024-01-01", nil, http.StatusBadRequest},
		{"missing service", "GET", "/api/services/none", nil, http.StatusNotFound},
		{"patch missing service", "PATCH", "/api/services/none", map[string]any{"service_reason": "x"}, http.StatusNotFound},
		{"missing vet", "GET", "/api/vets/none", nil, http.StatusNotFound},
		{"grooming on missing service", "POST", "/api/services/none/groomings", map[string]any{"grooming_type": []string{"bath"}}, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			st, body := doReq(t, ts.URL, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.want, st, string(body))
		})
	}
}

func TestHTTP_OwnersAndVets(t *testing.T) {
	ts := newTestServer(t)

	ownerID := createID(t, ts.URL, "/api/owners", "owner_id", map[string]any{
		"owner_name": "Ana", "owner_email": "ana@example.com",
	})
	st, body := doReq(t, ts.URL, "POST", "/api/owners", map[string]any{
		"owner_name": "Otra", "owner_email": "ANA@example.com",
	})
	require.Equal(t, http.StatusConflict, st)
	assert.Equal(t, "owner already exists", decode(t, body)["message"])

	for _, name := range []string{"Rex", "Bella"} {
		createID(t, ts.URL, "/api/pets", "pet_id", map[string]any{
			"pet_name": name, "pet_type": "Dog", "owner_id": ownerID,
		})
	}

	st, body = doReq(t, ts.URL, "GET", "/api/owners/"+ownerID, nil)
	require.Equal(t, http.StatusOK, st, string(body))
	got := decode(t, body)
	assert.Equal(t, "ana@example.com", got["owner_email"])
	pets := got["pets"].([]any)
	require.Len(t, pets, 2)
	assert.Equal(t, "Bella", pets[0].(map[string]any)["pet_name"])

	st, body = doReq(t, ts.URL, "GET", "/api/owners?search=an&limit=1", nil)
	require.Equal(t, http.StatusOK, st)
	list := decode(t, body)
	assert.EqualValues(t, 1, list["total"])
	assert.EqualValues(t, 1, list["total_pages"])

	createID(t, ts.URL, "/api/vets", "vet_id", map[string]any{
		"vet_name": "Dr. Ruiz", "vet_email": "ruiz@clinic.test", "vet_license_number": "LIC-1",
	})
	st, body = doReq(t, ts.URL, "GET", "/api/vets/options", nil)
	require.Equal(t, http.StatusOK, st)
	var opts []map[string]any
	require.NoError(t, json.Unmarshal(body, &opts))
	require.Len(t, opts, 1)
	assert.Equal(t, "Dr. Ruiz", opts[0]["vet_name"])

	st, _ = doReq(t, ts.URL, "PATCH", "/api/owners/"+ownerID, map[string]any{"owner_address": "Calle 2"})
	assert.Equal(t, http.StatusOK, st)
	st, _ = doReq(t, ts.URL, "DELETE", "/api/owners/nope", nil)
	assert.Equal(t, http.StatusNotFound, st)
}

func TestHTTP_Infrastructure(t *testing.T) {
	ts := newTestServer(t)

	st, body := doReq(t, ts.URL, "GET", "/health", nil)
	assert.Equal(t, http.StatusOK, st)
	assert.Equal(t, "ok", string(body))

	st, body = doReq(t, ts.URL, "GET", "/api", nil)
	assert.Equal(t, http.StatusOK, st)
	assert.Equal(t, "success", decode(t, body)["status"])

	st, body = doReq(t, ts.URL, "GET", "/api/health_check", nil)
	assert.Equal(t, http.StatusOK, st)
	assert.Equal(t, "database is healthy", decode(t, body)["message"])

	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/pets", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", "POST")
	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	_ = res.Body.Close()
	assert.Equal(t, http.StatusNoContent, res.StatusCode)
	assert.Equal(t, "*", res.Header.Get("Access-Control-Allow-Origin"))

	st, body = doReq(t, ts.URL, "GET", "/metrics", nil)
	require.Equal(t, http.StatusOK, st)
	text := string(body)
	assert.Contains(t, text, "vetclinic_http_requests_total")
	assert.True(t, strings.Contains(text, `route="/api/health_check"`), "route label missing")
	assert.Contains(t, text, "vetclinic_store_operation_duration_seconds")
}

// -------------------------
// Helpers
// -------------------------

func createID(t *testing.T, baseURL, path, idField string, payload map[string]any) string {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", path, payload)
	require.Equal(t, http.StatusCreated, st, "POST %s body=%s", path, string(body))

	id, _ := decode(t, body)[idField].(string)
	require.NotEmpty(t, id, "POST %s: missing %s body=%s", path, idField, string(body))
	return id
}

func decode(t *testing.T, body []byte) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out), string(body))
	return out
}

func itoa(n int64) string { return strconv.FormatInt(n, 10) }

func doReq(t *testing.T, baseURL, method, path string, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
