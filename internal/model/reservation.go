package model

import "time"

// HoraInicioFullDay and HoraFinFullDay delimit a full-day booking.  A
// reservation spanning exactly this window blocks the entire date for its
// space.
const (
	HoraInicioFullDay = "00:00"
	HoraFinFullDay    = "23:59"
)

// Reservation records a user's time-bounded claim on a space for a given
// date.  Times are naive wall-clock values stored as HH:MM strings, the
// same shape they cross the wire in.  For a fixed (EspacioID, Fecha) no
// two reservations may overlap; the booking validator enforces this before
// any row is written.
//
// Fields:
//  ID        – primary key identifier.
//  Nombre    – label the user gave the booking.
//  EspacioID – space being reserved.
//  UserID    – user who made the reservation; never client-supplied.
//  Fecha     – calendar date of the booking (YYYY-MM-DD).
//  HoraInicio – start time (HH:MM).
//  HoraFin    – end time (HH:MM), strictly after HoraInicio.
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Reservation struct {
	ID         uint64    // reservas.id
	Nombre     string    // reservas.nombre
	EspacioID  uint64    // reservas.espacio_id
	UserID     uint64    // reservas.user_id
	Fecha      string    // reservas.fecha
	HoraInicio string    // reservas.hora_inicio
	HoraFin    string    // reservas.hora_fin
	CreatedAt  time.Time // reservas.created_at
	UpdatedAt  time.Time // reservas.updated_at
}

// FullDay reports whether the reservation occupies the whole of Fecha.
func (r Reservation) FullDay() bool {
	return r.HoraInicio == HoraInicioFullDay && r.HoraFin == HoraFinFullDay
}
