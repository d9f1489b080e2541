// Package booking implements the reservation validation engine: shape
// checks, the future-start rule, full-day detection and the overlap test
// against existing reservas for the same espacio and fecha.  The validator
// is pure; it reads through a Store the caller binds to an open
// transaction so that validation and the subsequent write form one atomic
// section.
package booking

import (
	"context"
	"fmt"
	"time"

	"github.com/iliyamo/space-reservation/internal/model"
)

// Wire formats for fecha and hora fields.
const (
	FechaLayout = "2006-01-02"
	HoraLayout  = "15:04"
)

// Candidate is a proposed reserva before persistence.  FullDay is filled
// in by Validate.
type Candidate struct {
	Nombre     string
	EspacioID  uint64
	Fecha      string
	HoraInicio string
	HoraFin    string
	FullDay    bool
}

// ValidationError reports the first violated rule, keyed by the request
// field it concerns.  Handlers turn it into a 422 response shaped like
// {"errors": {field: [message]}}.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func fieldErr(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// Store supplies the read side of validation.  In production it is a
// repository.BookingTx over the booking transaction; tests stub it.
type Store interface {
	// SpaceExists reports whether the referenced espacio exists.
	SpaceExists(ctx context.Context, espacioID uint64) (bool, error)
	// FindOverlapping returns the reservas conflicting with the window,
	// excluding excludeID when non-zero.  When fullDay is true every
	// reserva on (espacioID, fecha) conflicts.
	FindOverlapping(ctx context.Context, espacioID uint64, fecha string, fullDay bool, horaInicio, horaFin string, excludeID uint64) ([]model.Reservation, error)
}

// Validator checks booking candidates.  now is injectable for tests and
// defaults to time.Now.
type Validator struct {
	now func() time.Time
}

// NewValidator returns a Validator using the wall clock.
func NewValidator() *Validator { return &Validator{now: time.Now} }

// NewValidatorAt returns a Validator with a fixed clock source.
func NewValidatorAt(now func() time.Time) *Validator { return &Validator{now: now} }

// Validate applies the booking rules in order and returns the first
// violation as a *ValidationError.  excludeID names the reserva being
// edited so it never conflicts with itself; pass 0 on create.  On success
// the returned candidate is normalized and ready for persistence.
func (v *Validator) Validate(ctx context.Context, store Store, cand Candidate, excludeID uint64) (Candidate, error) {
	if cand.Nombre == "" {
		return cand, fieldErr("nombre", "el nombre es obligatorio")
	}
	if cand.EspacioID == 0 {
		return cand, fieldErr("espacio_id", "el espacio es obligatorio")
	}
	exists, err := store.SpaceExists(ctx, cand.EspacioID)
	if err != nil {
		return cand, err
	}
	if !exists {
		return cand, fieldErr("espacio_id", "el espacio no existe")
	}
	fecha, err := time.ParseInLocation(FechaLayout, cand.Fecha, time.Local)
	if err != nil {
		return cand, fieldErr("fecha", "la fecha no es válida")
	}
	inicio, err := time.Parse(HoraLayout, cand.HoraInicio)
	if err != nil {
		return cand, fieldErr("hora_inicio", "la hora de inicio no es válida")
	}
	fin, err := time.Parse(HoraLayout, cand.HoraFin)
	if err != nil {
		return cand, fieldErr("hora_fin", "la hora de fin no es válida")
	}
	if !fin.After(inicio) {
		return cand, fieldErr("hora_fin", "la hora de fin debe ser posterior a la hora de inicio")
	}

	// Normalize so downstream comparisons and storage see canonical forms.
	cand.Fecha = fecha.Format(FechaLayout)
	cand.HoraInicio = inicio.Format(HoraLayout)
	cand.HoraFin = fin.Format(HoraLayout)

	// The instant fecha+hora_inicio must lie strictly in the future.
	start := time.Date(fecha.Year(), fecha.Month(), fecha.Day(),
		inicio.Hour(), inicio.Minute(), 0, 0, time.Local)
	if !start.After(v.now()) {
		return cand, fieldErr("hora_inicio", "la hora de inicio debe ser en el futuro")
	}

	cand.FullDay = cand.HoraInicio == model.HoraInicioFullDay && cand.HoraFin == model.HoraFinFullDay

	conflicts, err := store.FindOverlapping(ctx, cand.EspacioID, cand.Fecha, cand.FullDay, cand.HoraInicio, cand.HoraFin, excludeID)
	if err != nil {
		return cand, err
	}
	if len(conflicts) > 0 {
		return cand, fieldErr("hora_inicio", "el espacio ya está reservado en este horario")
	}
	return cand, nil
}

// Overlaps reports whether two [inicio, fin] windows on the same espacio
// and fecha share any instant, with inclusive boundaries: touching
// endpoints count as a conflict.  The SQL in repository.BookingTx encodes
// the same predicate; this form exists for in-process filtering and tests.
func Overlaps(aInicio, aFin, bInicio, bFin string) bool {
	return aInicio <= bFin && aFin >= bInicio
}
