package respond

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vet-clinic-records/internal/platform/logger"

	"github.com/juju/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, Status(errors.NotValidf("x")))
	assert.Equal(t, http.StatusNotFound, Status(errors.NotFoundf("x")))
	assert.Equal(t, http.StatusConflict, Status(errors.AlreadyExistsf("x")))
	assert.Equal(t, http.StatusInternalServerError, Status(errors.New("boom")))
	assert.Equal(t, http.StatusNotFound, Status(errors.Annotate(errors.NotFoundf("pet"), "get")))
}

func TestError_ConflictAndServerErrors(t *testing.T) {
	var buf bytes.Buffer
	log := logger.New(logger.Options{Level: logger.Info, Output: &buf})

	rr := httptest.NewRecorder()
	Error(rr, nil, log, errors.NewAlreadyExists(errors.New("UNIQUE constraint failed"), "owners.create"), "owner")
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.JSONEq(t, `{"status":"fail","message":"owner already exists"}`, rr.Body.String())
	assert.Empty(t, buf.String())

	rr = httptest.NewRecorder()
	Error(rr, nil, log, errors.New("disk full"), "pet")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"status":"error","message":"disk full"}`, rr.Body.String())
	assert.Contains(t, buf.String(), "entity=pet")
}

func TestError_PrefersRequestLogger(t *testing.T) {
	var fallback, scoped bytes.Buffer
	base := logger.New(logger.Options{Level: logger.Info, Output: &fallback})
	reqLog := logger.WithRequestID(logger.New(logger.Options{Level: logger.Info, Output: &scoped}), "req-7")

	req := httptest.NewRequest(http.MethodDelete, "/api/vets/v-1", nil)
	req = req.WithContext(logger.WithContext(req.Context(), reqLog))

	rr := httptest.NewRecorder()
	Error(rr, req, base, errors.New("connection reset"), "vet")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Empty(t, fallback.String())
	assert.Contains(t, scoped.String(), "request_id=req-7")
	assert.Contains(t, scoped.String(), "entity=vet")
}

func TestAffected(t *testing.T) {
	rr := httptest.NewRecorder()
	Affected(rr, 0, "surgery")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.JSONEq(t, `{"status":"fail","message":"surgery not found"}`, rr.Body.String())

	rr = httptest.NewRecorder()
	Affected(rr, 2, "surgery")
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"success","rows_affected":2}`, rr.Body.String())
}

func TestDecodePatch_DetectsExplicitNull(t *testing.T) {
	var v struct {
		Name *string `json:"name"`
		Date *string `json:"date"`
	}
	r := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"name":"Milo","date":null}`))

	raw, err := DecodePatch(r, &v)
	require.NoError(t, err)
	require.NotNil(t, v.Name)
	assert.Equal(t, "Milo", *v.Name)

	present, null := IsNull(raw, "date")
	assert.True(t, present)
	assert.True(t, null)

	present, _ = IsNull(raw, "other")
	assert.False(t, present)

	r = httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"unknown":1}`))
	_, err = DecodePatch(r, &v)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestDecode_RejectsUnknownFields(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","extra":true}`))
	err := Decode(r, &v)
	assert.True(t, errors.Is(err, errors.NotValid))
}

func TestPage(t *testing.T) {
	cases := []struct {
		query       string
		page, limit int
		ok          bool
	}{
		{"", 1, 10, true},
		{"page=3&limit=25", 3, 25, true},
		{"page=0", 0, 0, false},
		{"limit=201", 0, 0, false},
		{"limit=abc", 0, 0, false},
	}
	for _, tc := range cases {
		r := httptest.NewRequest(http.MethodGet, "/?"+tc.query, nil)
		page, limit, err := Page(r)
		if !tc.ok {
			assert.True(t, errors.Is(err, errors.NotValid), tc.query)
			continue
		}
		require.NoError(t, err, tc.query)
		assert.Equal(t, tc.page, page, tc.query)
		assert.Equal(t, tc.limit, limit, tc.query)
	}

	assert.Equal(t, 20, Offset(3, 10))
	assert.EqualValues(t, 3, TotalPages(21, 10))
	assert.EqualValues(t, 0, TotalPages(0, 10))
}

func TestJSON_SetsContentType(t *testing.T) {
	rr := httptest.NewRecorder()
	JSON(rr, http.StatusCreated, map[string]int{"a": 1})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var got map[string]int
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, 1, got["a"])
}
