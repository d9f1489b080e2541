package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/space-reservation/internal/model"
)

// ReservationRepo provides CRUD operations for reservas.  Writes that
// depend on the overlap check run through the ...Tx variants so the check
// and the insert/update share one transaction; see BookingTx below.
// Dates and times are formatted in SQL so rows scan straight into the
// model's string fields.
type ReservationRepo struct{ db *sql.DB }

// NewReservationRepo returns a new ReservationRepo bound to the given database.
func NewReservationRepo(db *sql.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// DB exposes the underlying handle for opening booking transactions.
func (r *ReservationRepo) DB() *sql.DB { return r.db }

const reservaColumns = `id, nombre, espacio_id, user_id,
	DATE_FORMAT(fecha, '%Y-%m-%d'), TIME_FORMAT(hora_inicio, '%H:%i'),
	TIME_FORMAT(hora_fin, '%H:%i'), created_at, updated_at`

func scanReserva(sc interface{ Scan(...any) error }) (model.Reservation, error) {
	var rv model.Reservation
	err := sc.Scan(&rv.ID, &rv.Nombre, &rv.EspacioID, &rv.UserID,
		&rv.Fecha, &rv.HoraInicio, &rv.HoraFin, &rv.CreatedAt, &rv.UpdatedAt)
	return rv, err
}

// GetByID fetches one reserva.  Returns sql.ErrNoRows when absent.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (model.Reservation, error) {
	return scanReserva(r.db.QueryRowContext(ctx,
		"SELECT "+reservaColumns+" FROM reservas WHERE id=? LIMIT 1", id))
}

// ListByUser returns all reservas created by the given user, newest date
// first.  When none exist an empty slice is returned.
func (r *ReservationRepo) ListByUser(ctx context.Context, userID uint64) ([]model.Reservation, error) {
	return r.list(ctx,
		"SELECT "+reservaColumns+" FROM reservas WHERE user_id=? ORDER BY fecha DESC, hora_inicio", userID)
}

// ListBySpace returns all reservas for the given espacio ordered by date
// and start time.
func (r *ReservationRepo) ListBySpace(ctx context.Context, espacioID uint64) ([]model.Reservation, error) {
	return r.list(ctx,
		"SELECT "+reservaColumns+" FROM reservas WHERE espacio_id=? ORDER BY fecha, hora_inicio", espacioID)
}

func (r *ReservationRepo) list(ctx context.Context, query string, args ...any) ([]model.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		rv, err := scanReserva(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

// CreateTx inserts a reserva within the scope of an existing transaction
// and populates the generated ID.  The caller must have set UserID to the
// authenticated identity and must commit or roll back the transaction.
func (r *ReservationRepo) CreateTx(ctx context.Context, tx *sql.Tx, rv *model.Reservation) error {
	res, err := tx.ExecContext(ctx,
		"INSERT INTO reservas (nombre, espacio_id, user_id, fecha, hora_inicio, hora_fin) VALUES (?,?,?,?,?,?)",
		rv.Nombre, rv.EspacioID, rv.UserID, rv.Fecha, rv.HoraInicio, rv.HoraFin)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rv.ID = uint64(id)
	// Query back the full row to populate timestamps
	const sel = "SELECT " + reservaColumns + " FROM reservas WHERE id=?"
	got, err := scanReserva(tx.QueryRowContext(ctx, sel, rv.ID))
	if err != nil {
		return err
	}
	*rv = got
	return nil
}

// UpdateTx rewrites the mutable columns of a reserva within a transaction.
// Ownership must be verified by the caller before the transaction starts.
func (r *ReservationRepo) UpdateTx(ctx context.Context, tx *sql.Tx, rv *model.Reservation) error {
	_, err := tx.ExecContext(ctx,
		"UPDATE reservas SET nombre=?, espacio_id=?, fecha=?, hora_inicio=?, hora_fin=? WHERE id=?",
		rv.Nombre, rv.EspacioID, rv.Fecha, rv.HoraInicio, rv.HoraFin, rv.ID)
	if err != nil {
		return err
	}
	const sel = "SELECT " + reservaColumns + " FROM reservas WHERE id=?"
	got, err := scanReserva(tx.QueryRowContext(ctx, sel, rv.ID))
	if err != nil {
		return err
	}
	*rv = got
	return nil
}

// Delete removes a reserva owned by requesterID.  It returns ErrForbidden
// when the row belongs to someone else and sql.ErrNoRows when it does not
// exist; on either error the row is left intact.
func (r *ReservationRepo) Delete(ctx context.Context, id, requesterID uint64) error {
	var ownerID uint64
	err := r.db.QueryRowContext(ctx,
		"SELECT user_id FROM reservas WHERE id=? LIMIT 1", id).Scan(&ownerID)
	if err != nil {
		return err
	}
	if ownerID != requesterID {
		return ErrForbidden
	}
	_, err = r.db.ExecContext(ctx, "DELETE FROM reservas WHERE id=? AND user_id=?", id, requesterID)
	return err
}

// BookingTx adapts one open transaction to the lookups the booking
// validator needs.  The overlap query locks the matching rows with
// FOR UPDATE so that two concurrent bookings for the same espacio and
// fecha serialize on the database instead of both passing validation.
type BookingTx struct{ Tx *sql.Tx }

// NewBookingTx wraps an open transaction for use by the booking validator.
func NewBookingTx(tx *sql.Tx) *BookingTx { return &BookingTx{Tx: tx} }

// SpaceExists reports whether the espacio row exists, locking it in share
// mode so it cannot vanish before the reserva row is written.
func (b *BookingTx) SpaceExists(ctx context.Context, espacioID uint64) (bool, error) {
	var id uint64
	err := b.Tx.QueryRowContext(ctx,
		"SELECT id FROM espacios WHERE id=? LOCK IN SHARE MODE", espacioID).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// FindOverlapping returns the reservas on (espacioID, fecha) that conflict
// with the [horaInicio, horaFin] window.  A full-day candidate conflicts
// with every reserva on the date.  Otherwise two windows conflict when
// they intersect with inclusive boundaries, so touching endpoints count.
// excludeID, when non-zero, skips the reserva being edited.
func (b *BookingTx) FindOverlapping(ctx context.Context, espacioID uint64, fecha string, fullDay bool, horaInicio, horaFin string, excludeID uint64) ([]model.Reservation, error) {
	query := "SELECT " + reservaColumns + " FROM reservas WHERE espacio_id=? AND fecha=?"
	args := []any{espacioID, fecha}
	if !fullDay {
		query += " AND hora_inicio <= ? AND hora_fin >= ?"
		args = append(args, horaFin, horaInicio)
	}
	if excludeID != 0 {
		query += " AND id <> ?"
		args = append(args, excludeID)
	}
	query += " FOR UPDATE"

	rows, err := b.Tx.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Reservation, 0)
	for rows.Next() {
		rv, err := scanReserva(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}
