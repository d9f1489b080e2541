package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/space-reservation/internal/booking"
	"github.com/iliyamo/space-reservation/internal/middleware"
	"github.com/iliyamo/space-reservation/internal/model"
)

func newTestContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestFieldErrorsShape(t *testing.T) {
	c, rec := newTestContext(t)

	err := fieldErrors(c, "nombre", "el nombre es obligatorio", "fecha", "la fecha no es válida")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"el nombre es obligatorio"}, body.Errors["nombre"])
	assert.Equal(t, []string{"la fecha no es válida"}, body.Errors["fecha"])
}

func TestValidationJSONKeyedByField(t *testing.T) {
	c, rec := newTestContext(t)

	verr := &booking.ValidationError{Field: "hora_inicio", Message: "el espacio ya está reservado en este horario"}
	require.NoError(t, validationJSON(c, verr))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body struct {
		Errors map[string][]string `json:"errors"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, []string{"el espacio ya está reservado en este horario"}, body.Errors["hora_inicio"])
}

func TestGetUserID(t *testing.T) {
	c, _ := newTestContext(t)

	_, err := getUserID(c)
	assert.ErrorIs(t, err, errNoPrincipal)

	c.Set(middleware.CtxUserID, uint64(42))
	id, err := getUserID(c)
	require.NoError(t, err)
	assert.Equal(t, uint64(42), id)
}

func TestGetRole(t *testing.T) {
	c, _ := newTestContext(t)
	assert.Equal(t, model.Role(""), getRole(c))

	c.Set(middleware.CtxRole, model.RoleAdmin)
	assert.Equal(t, model.RoleAdmin, getRole(c))
}
