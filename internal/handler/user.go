package handler

import (
	"database/sql"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/config"
	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/repository"
)

// UserHandler serves the /users resource.  Create is an open endpoint
// (self-service registration); listing is admin-only; update and delete
// require self-or-admin.
type UserHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
}

func NewUserHandler(cfg config.Config, users *repository.UserRepo) *UserHandler {
	if users == nil {
		panic("nil repository passed to NewUserHandler")
	}
	return &UserHandler{Cfg: cfg, Users: users}
}

type createUserReq struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

type updateUserReq struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

// Create registers a new user.  The route carries no JWT middleware so
// anyone may self-register with role "user"; creating an admin requires a
// valid bearer token belonging to an admin.  A duplicate email yields 409.
func (h *UserHandler) Create(c echo.Context) error {
	var req createUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Role == "" {
		req.Role = string(model.RoleUser)
	}
	role, ok := model.ParseRole(req.Role)
	if !ok {
		return fieldErrors(c, "role", "el rol no es válido")
	}
	if role == model.RoleAdmin && !h.bearerIsAdmin(c) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "No autorizado para crear usuarios con rol admin."})
	}

	pairs := []string{}
	if req.Name == "" {
		pairs = append(pairs, "name", "el nombre es obligatorio")
	}
	if req.Email == "" || !strings.Contains(req.Email, "@") {
		pairs = append(pairs, "email", "el email no es válido")
	}
	if len(req.Password) < 8 {
		pairs = append(pairs, "password", "la contraseña debe tener al menos 8 caracteres")
	}
	if len(pairs) > 0 {
		return fieldErrors(c, pairs...)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Users.Create(ctx, req.Name, req.Email, req.Password, role, h.Cfg.BcryptCost)
	if err != nil {
		if err == repository.ErrEmailExists {
			return c.JSON(http.StatusConflict, echo.Map{"message": "El correo ya está en uso."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al crear el usuario."})
	}
	return c.JSON(http.StatusCreated, userPart{ID: id, Name: req.Name, Email: req.Email, Role: role})
}

// List returns all users.  The admin gate lives in the route middleware.
func (h *UserHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()
	users, err := h.Users.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al obtener los usuarios."})
	}
	out := make([]userPart, 0, len(users))
	for _, u := range users {
		out = append(out, toUserPart(u))
	}
	return c.JSON(http.StatusOK, out)
}

// Get returns one user by id.
func (h *UserHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Usuario no encontrado."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al obtener el usuario."})
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// Update patches a user.  Only the user themselves or an admin may do
// this.
func (h *UserHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	if !h.selfOrAdmin(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "No autorizado"})
	}

	var req updateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	pairs := []string{}
	if req.Email != nil && !strings.Contains(*req.Email, "@") {
		pairs = append(pairs, "email", "el email no es válido")
	}
	if req.Password != nil && len(*req.Password) < 8 {
		pairs = append(pairs, "password", "la contraseña debe tener al menos 8 caracteres")
	}
	if len(pairs) > 0 {
		return fieldErrors(c, pairs...)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	patch := repository.UserPatch{Name: req.Name, Email: req.Email, Password: req.Password}
	if err := h.Users.Update(ctx, id, patch, h.Cfg.BcryptCost); err != nil {
		switch err {
		case repository.ErrEmailExists:
			return c.JSON(http.StatusConflict, echo.Map{"message": "El correo ya está en uso."})
		case sql.ErrNoRows:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Usuario no encontrado."})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al actualizar el usuario."})
		}
	}
	u, err := h.Users.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al actualizar el usuario."})
	}
	return c.JSON(http.StatusOK, toUserPart(u))
}

// Delete removes a user; self-or-admin only.
func (h *UserHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid user id"})
	}
	if !h.selfOrAdmin(c, id) {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "No autorizado"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()
	if err := h.Users.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Usuario no encontrado."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al eliminar el usuario."})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Usuario eliminado correctamente."})
}

func (h *UserHandler) selfOrAdmin(c echo.Context, targetID uint64) bool {
	uid, err := getUserID(c)
	if err != nil {
		return false
	}
	return uid == targetID || getRole(c) == model.RoleAdmin
}

// bearerIsAdmin inspects an optional Authorization header on the open
// registration route and reports whether it carries a valid admin token.
func (h *UserHandler) bearerIsAdmin(c echo.Context) bool {
	auth := c.Request().Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return false
	}
	raw := strings.TrimPrefix(auth, "Bearer ")
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, echo.ErrUnauthorized
		}
		return []byte(h.Cfg.JWTSecret), nil
	})
	if err != nil || !tok.Valid {
		return false
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	role, _ := claims["role"].(string)
	return model.Role(role) == model.RoleAdmin
}
