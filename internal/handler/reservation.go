package handler

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/space-reservation/internal/booking"
	"github.com/iliyamo/space-reservation/internal/model"
	"github.com/iliyamo/space-reservation/internal/queue"
	"github.com/iliyamo/space-reservation/internal/repository"
)

// ReservationHandler serves /reservas.  Create and Update run the booking
// validator inside a transaction shared with the write, so the overlap
// check and the insert/update are atomic against concurrent bookings.
type ReservationHandler struct {
	Reservas  *repository.ReservationRepo
	Spaces    *repository.SpaceRepo
	Validator *booking.Validator
}

func NewReservationHandler(reservas *repository.ReservationRepo, spaces *repository.SpaceRepo, v *booking.Validator) *ReservationHandler {
	if reservas == nil || spaces == nil || v == nil {
		panic("nil dependency passed to NewReservationHandler")
	}
	return &ReservationHandler{Reservas: reservas, Spaces: spaces, Validator: v}
}

type reservaReq struct {
	Nombre     string `json:"nombre"`
	EspacioID  uint64 `json:"espacio_id"`
	Fecha      string `json:"fecha"`
	HoraInicio string `json:"hora_inicio"`
	HoraFin    string `json:"hora_fin"`
}

type reservaResp struct {
	ID         uint64    `json:"id"`
	Nombre     string    `json:"nombre"`
	EspacioID  uint64    `json:"espacio_id"`
	UserID     uint64    `json:"user_id"`
	Fecha      string    `json:"fecha"`
	HoraInicio string    `json:"hora_inicio"`
	HoraFin    string    `json:"hora_fin"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

func toReservaResp(rv model.Reservation) reservaResp {
	return reservaResp{
		ID: rv.ID, Nombre: rv.Nombre, EspacioID: rv.EspacioID, UserID: rv.UserID,
		Fecha: rv.Fecha, HoraInicio: rv.HoraInicio, HoraFin: rv.HoraFin,
		CreatedAt: rv.CreatedAt, UpdatedAt: rv.UpdatedAt,
	}
}

// List returns the caller's reservas, or every reserva of one espacio
// when ?espacio_id= is given.
func (h *ReservationHandler) List(c echo.Context) error {
	ctx, cancel := reqCtx(c)
	defer cancel()

	if v := c.QueryParam("espacio_id"); v != "" {
		espacioID, err := strconv.ParseUint(v, 10, 64)
		if err != nil || espacioID == 0 {
			return fieldErrors(c, "espacio_id", "el espacio no es válido")
		}
		list, err := h.Reservas.ListBySpace(ctx, espacioID)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al obtener las reservas."})
		}
		return c.JSON(http.StatusOK, toReservaList(list))
	}

	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No autorizado"})
	}
	list, err := h.Reservas.ListByUser(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al obtener las reservas."})
	}
	return c.JSON(http.StatusOK, toReservaList(list))
}

func toReservaList(list []model.Reservation) []reservaResp {
	out := make([]reservaResp, 0, len(list))
	for _, rv := range list {
		out = append(out, toReservaResp(rv))
	}
	return out
}

// Get returns one reserva by id.
func (h *ReservationHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid reserva id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	rv, err := h.Reservas.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Reserva no encontrada."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al obtener la reserva."})
	}
	return c.JSON(http.StatusOK, toReservaResp(rv))
}

// Create validates and inserts a new reserva.  Validation and the insert
// share one transaction: the overlap query locks the competing rows, so
// two concurrent requests for the same window serialize and the loser
// sees the winner's row.  On success an event goes to the broker.
func (h *ReservationHandler) Create(c echo.Context) error {
	var req reservaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No autorizado"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	cand := booking.Candidate{
		Nombre:     strings.TrimSpace(req.Nombre),
		EspacioID:  req.EspacioID,
		Fecha:      req.Fecha,
		HoraInicio: req.HoraInicio,
		HoraFin:    req.HoraFin,
	}

	tx, err := h.Reservas.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al crear la reserva."})
	}
	defer func() { _ = tx.Rollback() }()

	cand, err = h.Validator.Validate(ctx, repository.NewBookingTx(tx), cand, 0)
	if err != nil {
		if verr, ok := err.(*booking.ValidationError); ok {
			return validationJSON(c, verr)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al crear la reserva."})
	}

	rv := model.Reservation{
		Nombre:     cand.Nombre,
		EspacioID:  cand.EspacioID,
		UserID:     userID,
		Fecha:      cand.Fecha,
		HoraInicio: cand.HoraInicio,
		HoraFin:    cand.HoraFin,
	}
	if err := h.Reservas.CreateTx(ctx, tx, &rv); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al crear la reserva."})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al crear la reserva."})
	}

	h.publishConfirmada(rv)
	return c.JSON(http.StatusCreated, toReservaResp(rv))
}

// publishConfirmada emits the confirmation event in the background so
// broker availability never delays or fails the HTTP response.
func (h *ReservationHandler) publishConfirmada(rv model.Reservation) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		event := queue.ReservaConfirmadaEvent{
			ReservaID:   rv.ID,
			UserID:      rv.UserID,
			EspacioID:   rv.EspacioID,
			Nombre:      rv.Nombre,
			Fecha:       rv.Fecha,
			HoraInicio:  rv.HoraInicio,
			HoraFin:     rv.HoraFin,
			ConfirmedAt: time.Now().UTC().Format(time.RFC3339),
		}
		if s, err := h.Spaces.GetByID(ctx, rv.EspacioID); err == nil {
			event.EspacioNombre = s.Nombre
		}
		if err := queue.PublishReservaConfirmada(ctx, event); err != nil {
			log.Printf("reservas: publish confirmada for %d failed: %v", rv.ID, err)
		}
	}()
}

// Update revalidates and rewrites an existing reserva.  Only its owner
// may edit it; the reserva never conflicts with itself.
func (h *ReservationHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid reserva id"})
	}
	var req reservaReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid body"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No autorizado"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	existing, err := h.Reservas.GetByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "Reserva no encontrada."})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al actualizar la reserva."})
	}
	if existing.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "No autorizado"})
	}

	cand := booking.Candidate{
		Nombre:     strings.TrimSpace(req.Nombre),
		EspacioID:  req.EspacioID,
		Fecha:      req.Fecha,
		HoraInicio: req.HoraInicio,
		HoraFin:    req.HoraFin,
	}

	tx, err := h.Reservas.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al actualizar la reserva."})
	}
	defer func() { _ = tx.Rollback() }()

	cand, err = h.Validator.Validate(ctx, repository.NewBookingTx(tx), cand, id)
	if err != nil {
		if verr, ok := err.(*booking.ValidationError); ok {
			return validationJSON(c, verr)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al actualizar la reserva."})
	}

	rv := model.Reservation{
		ID:         id,
		Nombre:     cand.Nombre,
		EspacioID:  cand.EspacioID,
		UserID:     existing.UserID,
		Fecha:      cand.Fecha,
		HoraInicio: cand.HoraInicio,
		HoraFin:    cand.HoraFin,
	}
	if err := h.Reservas.UpdateTx(ctx, tx, &rv); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al actualizar la reserva."})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al actualizar la reserva."})
	}
	return c.JSON(http.StatusOK, toReservaResp(rv))
}

// Delete removes a reserva its owner created.
func (h *ReservationHandler) Delete(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid reserva id"})
	}
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "No autorizado"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	switch err := h.Reservas.Delete(ctx, id, userID); err {
	case nil:
		return c.JSON(http.StatusOK, echo.Map{"message": "Reserva eliminada correctamente."})
	case repository.ErrForbidden:
		return c.JSON(http.StatusForbidden, echo.Map{"message": "No autorizado"})
	case sql.ErrNoRows:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "Reserva no encontrada."})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "Error al eliminar la reserva."})
	}
}
