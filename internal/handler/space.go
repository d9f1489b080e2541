package handler

import (
	"database/sql"
	"encoding/base64"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/booking"
	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/repository"
	"github.com/iliyamo/space-reservation/internal/storage"
)

// SpaceHandler serves the /espacios resource.  Listing is available to
// any authenticated user; create/update/delete sit behind the admin role
// gate in the router.  Images travel as base64 strings and are persisted
// in the blob store, with only the generated name kept on the row.
type SpaceHandler struct {
	Spaces *repository.SpaceRepo
	Blobs  storage.BlobStore
}

func NewSpaceHandler(spaces *repository.SpaceRepo, blobs storage.BlobStore) *SpaceHandler {
	if spaces == nil || blobs == nil {
		panic("nil dependency passed to NewSpaceHandler")
	}
	return &SpaceHandler{Spaces: spaces, Blobs: blobs}
}

type spaceReq struct {
	Nombre      *string `json:"nombre"`
	Descripcion *string `json:"descripcion"`
	Capacidad   *uint32 `json:"capacidad"`
	Imagen      *string `json:"imagen"` // base64, optionally a data URI
}

type spaceResp struct {
	ID          uint64    `json:"id"`
	Nombre      string    `json:"nombre"`
	Descripcion string    `json:"descripcion"`
	Capacidad   uint32    `json:"capacidad"`
	Imagen      *string   `json:"imagen"` // blob key; Get returns a data URI instead
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type spacePage struct {
	Data    []spaceResp `json:"data"`
	Total   int64       `json:"total"`
	Page    int         `json:"page"`
	PerPage int         `json:"per_page"`
}

func toSpaceResp(s model.Space) spaceResp {
	return spaceResp{
		ID: s.ID, Nombre: s.Nombre, Descripcion: s.Descripcion,
		Capacidad: s.Capacidad, Imagen: s.Imagen,
		CreatedAt: s.CreatedAt, UpdatedAt: s.UpdatedAt,
	}
}

// List returns a filtered, paginated page of espacios.  Query parameters:
// nombre (substring), capacidad (minimum), fecha (exclude fully booked
// spaces on that date), page and per_page.
func (h *SpaceHandler) List(c echo.Context) error {
	q := repository.SpaceQuery{
		Nombre:  strings.TrimSpace(c.QueryParam("nombre")),
		Page:    1,
		PerPage: 10,
	}
	if v := c.QueryParam("capacidad"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return fieldErrors(c, "capacidad", "la capacidad no es válida")
		}
		q.Capacidad = uint32(n)
	}
	if v := c.QueryParam("fecha"); v != "" {
		if _, err := time.Parse(booking.FechaLayout, v); err != nil {
			return fieldErrors(c, "fecha", "la fecha no es válida")
		}
		q.Fecha = v
	}
	if v := c.QueryParam("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.Page = n
		}
	}
	if v := c.QueryParam("per_page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			q.PerPage = n
		}
	}
	if q.PerPage > 100 {
		q.PerPage = 100
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	spaces, total, err := h.Spaces.List(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al obtener los espacios."})
	}
	out := make([]spaceResp, 0, len(spaces))
	for _, s := range spaces {
		out = append(out, toSpaceResp(s))
	}
	return c.JSON(http.StatusOK, spacePage{Data: out, Total: total, Page: q.Page, PerPage: q.PerPage})
}

// Get returns one espacio with its image re-encoded as a base64 data URI.
func (h *SpaceHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid espacio id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	s, err := h.Spaces.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Espacio no encontrado."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al obtener el espacio."})
	}

	resp := toSpaceResp(s)
	if s.Imagen != nil {
		data, err := h.Blobs.Get(ctx, *s.Imagen)
		switch err {
		case nil:
			uri := "data:" + http.DetectContentType(data) + ";base64," + base64.StdEncoding.EncodeToString(data)
			resp.Imagen = &uri
		case storage.ErrNotFound:
			// Orphaned reference; serve the record without the image.
			resp.Imagen = nil
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al obtener el espacio."})
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// Create inserts a new espacio.  When an image is supplied the blob is
// written first and removed again if the row insert fails, so no
// committed row ever references a missing blob.
func (h *SpaceHandler) Create(c echo.Context) error {
	var req spaceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	pairs := []string{}
	if req.Nombre == nil || strings.TrimSpace(*req.Nombre) == "" {
		pairs = append(pairs, "nombre", "el nombre es obligatorio")
	}
	if req.Descripcion == nil {
		pairs = append(pairs, "descripcion", "la descripción es obligatoria")
	}
	if req.Capacidad == nil || *req.Capacidad == 0 {
		pairs = append(pairs, "capacidad", "la capacidad debe ser un entero positivo")
	}
	var imgData []byte
	if req.Imagen != nil && *req.Imagen != "" {
		var err error
		imgData, err = decodeImagen(*req.Imagen)
		if err != nil {
			pairs = append(pairs, "imagen", "la imagen no es un base64 válido")
		}
	}
	if len(pairs) > 0 {
		return fieldErrors(c, pairs...)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s := model.Space{
		Nombre:      strings.TrimSpace(*req.Nombre),
		Descripcion: *req.Descripcion,
		Capacidad:   *req.Capacidad,
	}
	if imgData != nil {
		name := storage.NewImageName()
		if err := h.Blobs.Put(ctx, name, imgData); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al crear el espacio."})
		}
		s.Imagen = &name
	}
	if err := h.Spaces.Create(ctx, &s); err != nil {
		if s.Imagen != nil {
			// Compensating cleanup so the blob does not leak.
			if derr := h.Blobs.Delete(ctx, *s.Imagen); derr != nil {
				log.Printf("espacios: orphan blob cleanup failed for %s: %v", *s.Imagen, derr)
			}
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al crear el espacio."})
	}
	return c.JSON(http.StatusCreated, toSpaceResp(s))
}

// Update patches an espacio.  A new image replaces the stored blob; the
// old blob is removed only after the row update succeeds.
func (h *SpaceHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid espacio id"})
	}
	var req spaceReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	pairs := []string{}
	if req.Nombre != nil && strings.TrimSpace(*req.Nombre) == "" {
		pairs = append(pairs, "nombre", "el nombre es obligatorio")
	}
	if req.Capacidad != nil && *req.Capacidad == 0 {
		pairs = append(pairs, "capacidad", "la capacidad debe ser un entero positivo")
	}
	var imgData []byte
	if req.Imagen != nil && *req.Imagen != "" {
		imgData, err = decodeImagen(*req.Imagen)
		if err != nil {
			pairs = append(pairs, "imagen", "la imagen no es un base64 válido")
		}
	}
	if len(pairs) > 0 {
		return fieldErrors(c, pairs...)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Spaces.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Espacio no encontrado."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al actualizar el espacio."})
	}

	patch := repository.SpacePatch{Descripcion: req.Descripcion, Capacidad: req.Capacidad}
	if req.Nombre != nil {
		trimmed := strings.TrimSpace(*req.Nombre)
		patch.Nombre = &trimmed
	}
	if imgData != nil {
		name := storage.NewImageName()
		if err := h.Blobs.Put(ctx, name, imgData); err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al actualizar el espacio."})
		}
		patch.Imagen = &name
		patch.SetImagen = true
	}

	if err := h.Spaces.Update(ctx, id, patch); err != nil {
		if patch.SetImagen {
			if derr := h.Blobs.Delete(ctx, *patch.Imagen); derr != nil {
				log.Printf("espacios: orphan blob cleanup failed for %s: %v", *patch.Imagen, derr)
			}
		}
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Espacio no encontrado."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al actualizar el espacio."})
	}
	// Row now points at the new blob; the old one can go.
	if patch.SetImagen && existing.Imagen != nil {
		if derr := h.Blobs.Delete(ctx, *existing.Imagen); derr != nil {
			log.Printf("espacios: stale blob cleanup failed for %s: %v", *existing.Imagen, derr)
		}
	}

	s, err := h.Spaces.GetByID(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al actualizar el espacio."})
	}
	return c.JSON(http.StatusOK, toSpaceResp(s))
}

// Delete removes an espacio and, afterwards, its stored image blob.
func (h *SpaceHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid espacio id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Spaces.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Espacio no encontrado."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al eliminar el espacio."})
	}
	if err := h.Spaces.Delete(ctx, id); err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Espacio no encontrado."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al eliminar el espacio."})
	}
	if existing.Imagen != nil {
		if derr := h.Blobs.Delete(ctx, *existing.Imagen); derr != nil {
			log.Printf("espacios: blob cleanup failed for %s: %v", *existing.Imagen, derr)
		}
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Espacio eliminado correctamente."})
}

// decodeImagen accepts plain base64 or a full data URI and returns the
// raw image bytes.
func decodeImagen(s string) ([]byte, error) {
	if strings.HasPrefix(s, "data:") {
		if i := strings.Index(s, ";base64,"); i >= 0 {
			s = s[i+len(";base64,"):]
		}
	}
	return base64.StdEncoding.DecodeString(strings.TrimSpace(s))
}
