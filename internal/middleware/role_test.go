package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/utils"
)

func okHandler(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func TestRequireRole(t *testing.T) {
	e := echo.New()

	tests := []struct {
		name     string
		set      interface{}
		allowed  []model.Role
		wantCode int
	}{
		{"admin allowed", model.RoleAdmin, []model.Role{model.RoleAdmin}, http.StatusOK},
		{"user forbidden on admin route", model.RoleUser, []model.Role{model.RoleAdmin}, http.StatusForbidden},
		{"either role allowed", model.RoleUser, []model.Role{model.RoleUser, model.RoleAdmin}, http.StatusOK},
		{"missing role forbidden", nil, []model.Role{model.RoleUser}, http.StatusForbidden},
		{"wrong type forbidden", "admin", []model.Role{model.RoleAdmin}, http.StatusForbidden},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)
			if tc.set != nil {
				c.Set(CtxRole, tc.set)
			}
			h := RequireRole(tc.allowed...)(okHandler)
			require.NoError(t, h(c))
			assert.Equal(t, tc.wantCode, rec.Code)
		})
	}
}

func TestJWTAuthInjectsPrincipal(t *testing.T) {
	const secret = "mw-secret"
	e := echo.New()

	tok, err := utils.NewAccessToken(secret, 9, model.RoleUser, 15)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	var gotID uint64
	var gotRole model.Role
	h := JWTAuth(secret)(func(c echo.Context) error {
		gotID, _ = c.Get(CtxUserID).(uint64)
		gotRole, _ = c.Get(CtxRole).(model.Role)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(9), gotID)
	assert.Equal(t, model.RoleUser, gotRole)
}

func TestJWTAuthRejectsBadTokens(t *testing.T) {
	e := echo.New()
	h := JWTAuth("right-secret")(okHandler)

	for _, header := range []string{"", "Bearer not-a-jwt", "Token abc"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)
		require.NoError(t, h(c))
		assert.Equal(t, http.StatusUnauthorized, rec.Code, "header %q", header)
	}

	// Token signed with a different secret is rejected.
	tok, err := utils.NewAccessToken("wrong-secret", 1, model.RoleUser, 15)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok.Token)
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
