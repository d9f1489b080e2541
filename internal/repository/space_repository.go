package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/space-reservation/internal/model"
)

// SpaceRepo provides CRUD operations and the filtered, paginated listing
// over the `espacios` table.  The listing's fecha filter reuses the
// full-day reservation rule: a space with a 00:00-23:59 booking on that
// date is excluded, partial-day bookings do not hide it.
type SpaceRepo struct{ db *sql.DB }

// NewSpaceRepo returns a new SpaceRepo bound to the given database.
func NewSpaceRepo(db *sql.DB) *SpaceRepo { return &SpaceRepo{db: db} }

// DB exposes the underlying handle so handlers can open transactions that
// span the booking validation and the reservation write.
func (r *SpaceRepo) DB() *sql.DB { return r.db }

// SpaceQuery defines filters & pagination for listing espacios.
type SpaceQuery struct {
	Nombre    string // case-insensitive substring match on nombre
	Capacidad uint32 // inclusive lower bound, 0 disables the filter
	Fecha     string // exclude spaces fully booked on this date (YYYY-MM-DD)
	Page      int
	PerPage   int
}

const spaceColumns = "id, nombre, descripcion, capacidad, imagen, created_at, updated_at"

// List returns one page of espacios matching the query plus the total
// number of matches.  Results are ordered by id for deterministic paging.
func (r *SpaceRepo) List(ctx context.Context, q SpaceQuery) ([]model.Space, int64, error) {
	where := []string{}
	args := []any{}

	if q.Nombre != "" {
		where = append(where, "LOWER(nombre) LIKE ?")
		args = append(args, "%"+strings.ToLower(q.Nombre)+"%")
	}
	if q.Capacidad > 0 {
		where = append(where, "capacidad >= ?")
		args = append(args, q.Capacidad)
	}
	if q.Fecha != "" {
		// A full-day reserva blocks the whole date, so the space is not
		// offerable and drops out of the listing.
		where = append(where, `NOT EXISTS (
			SELECT 1 FROM reservas rv
			WHERE rv.espacio_id = espacios.id
			  AND rv.fecha = ?
			  AND rv.hora_inicio = ? AND rv.hora_fin = ?)`)
		args = append(args, q.Fecha, model.HoraInicioFullDay, model.HoraFinFullDay)
	}

	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	countSQL := `SELECT COUNT(*) FROM espacios WHERE ` + cond
	if err := r.db.QueryRowContext(ctx, countSQL, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit := q.PerPage
	offset := (q.Page - 1) * q.PerPage

	dataSQL := `SELECT ` + spaceColumns + `
		FROM espacios
		WHERE ` + cond + `
		ORDER BY id ASC
		LIMIT ? OFFSET ?`
	argsData := append(append([]any{}, args...), limit, offset)

	rows, err := r.db.QueryContext(ctx, dataSQL, argsData...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := make([]model.Space, 0, limit)
	for rows.Next() {
		s, err := scanSpace(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func scanSpace(rows *sql.Rows) (model.Space, error) {
	var s model.Space
	var imagen sql.NullString
	err := rows.Scan(&s.ID, &s.Nombre, &s.Descripcion, &s.Capacidad, &imagen, &s.CreatedAt, &s.UpdatedAt)
	if imagen.Valid {
		img := imagen.String
		s.Imagen = &img
	}
	return s, err
}

// GetByID fetches a single espacio.  Returns sql.ErrNoRows when absent.
func (r *SpaceRepo) GetByID(ctx context.Context, id uint64) (model.Space, error) {
	var s model.Space
	var imagen sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT "+spaceColumns+" FROM espacios WHERE id=? LIMIT 1", id).
		Scan(&s.ID, &s.Nombre, &s.Descripcion, &s.Capacidad, &imagen, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return model.Space{}, err
	}
	if imagen.Valid {
		img := imagen.String
		s.Imagen = &img
	}
	return s, nil
}

// Exists reports whether an espacio row with the given id exists.
func (r *SpaceRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM espacios WHERE id=?)", id).Scan(&exists)
	return exists, err
}

// Create inserts an espacio and populates the generated ID.
func (r *SpaceRepo) Create(ctx context.Context, s *model.Space) error {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO espacios (nombre, descripcion, capacidad, imagen) VALUES (?,?,?,?)",
		s.Nombre, s.Descripcion, s.Capacidad, nullable(s.Imagen))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	return nil
}

// SpacePatch carries the optional fields of an espacio update.  Nil fields
// are left untouched.  SetImagen distinguishes "replace the image key"
// (including clearing it with nil Imagen) from "leave it alone".
type SpacePatch struct {
	Nombre      *string
	Descripcion *string
	Capacidad   *uint32
	Imagen      *string
	SetImagen   bool
}

// Update applies a patch to an espacio row.  Returns sql.ErrNoRows when
// the row does not exist.
func (r *SpaceRepo) Update(ctx context.Context, id uint64, patch SpacePatch) error {
	set := make([]string, 0, 4)
	args := make([]any, 0, 5)
	if patch.Nombre != nil {
		set = append(set, "nombre=?")
		args = append(args, *patch.Nombre)
	}
	if patch.Descripcion != nil {
		set = append(set, "descripcion=?")
		args = append(args, *patch.Descripcion)
	}
	if patch.Capacidad != nil {
		set = append(set, "capacidad=?")
		args = append(args, *patch.Capacidad)
	}
	if patch.SetImagen {
		set = append(set, "imagen=?")
		args = append(args, nullable(patch.Imagen))
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	res, err := r.db.ExecContext(ctx,
		"UPDATE espacios SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var exists bool
		if qerr := r.db.QueryRowContext(ctx,
			"SELECT EXISTS(SELECT 1 FROM espacios WHERE id=?)", id).Scan(&exists); qerr == nil && !exists {
			return sql.ErrNoRows
		}
	}
	return nil
}

// Delete removes an espacio row.  Returns sql.ErrNoRows when absent.
// Reservas referencing the espacio go with it, cascaded by the foreign
// key in the schema.
func (r *SpaceRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM espacios WHERE id=?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
