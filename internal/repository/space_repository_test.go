package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/space-reservation/internal/model"
)

func newMockSpaceRepo(t *testing.T) (*SpaceRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewSpaceRepo(db), mock
}

func spaceRows(now time.Time) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "nombre", "descripcion", "capacidad", "imagen", "created_at", "updated_at"}).
		AddRow(1, "Sala Norte", "Sala de reuniones", 12, nil, now, now)
}

// A fecha filter must exclude espacios carrying a full-day reserva on
// that date: both listing queries carry the NOT EXISTS subquery bound to
// the 00:00/23:59 window.
func TestListFechaFilterExcludesFullDayReservations(t *testing.T) {
	repo, mock := newMockSpaceRepo(t)
	now := time.Now()

	mock.ExpectQuery(`(?s)SELECT COUNT\(\*\) FROM espacios WHERE\s+NOT EXISTS.*rv\.fecha = \?\s+AND rv\.hora_inicio = \? AND rv\.hora_fin = \?`).
		WithArgs("2024-10-09", model.HoraInicioFullDay, model.HoraFinFullDay).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`(?s)SELECT id, nombre, descripcion, capacidad, imagen, created_at, updated_at\s+FROM espacios\s+WHERE\s+NOT EXISTS.*LIMIT \? OFFSET \?`).
		WithArgs("2024-10-09", model.HoraInicioFullDay, model.HoraFinFullDay, 10, 0).
		WillReturnRows(spaceRows(now))

	spaces, total, err := repo.List(context.Background(),
		SpaceQuery{Fecha: "2024-10-09", Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, spaces, 1)
	assert.Equal(t, "Sala Norte", spaces[0].Nombre)
	assert.Nil(t, spaces[0].Imagen)

	assert.NoError(t, mock.ExpectationsWereMet())
}

// Without a fecha filter the listing must not pay for the reservation
// subquery at all.
func TestListWithoutFechaSkipsReservationSubquery(t *testing.T) {
	repo, mock := newMockSpaceRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM espacios WHERE 1=1`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`(?s)SELECT id, nombre, descripcion, capacidad, imagen, created_at, updated_at\s+FROM espacios\s+WHERE 1=1\s+ORDER BY id ASC\s+LIMIT \? OFFSET \?`).
		WithArgs(10, 0).
		WillReturnRows(spaceRows(now))

	_, total, err := repo.List(context.Background(), SpaceQuery{Page: 1, PerPage: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestListCombinesNombreAndCapacidadFilters(t *testing.T) {
	repo, mock := newMockSpaceRepo(t)
	now := time.Now()

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM espacios WHERE LOWER\(nombre\) LIKE \? AND capacidad >= \?`).
		WithArgs("%norte%", 10).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(`(?s)FROM espacios\s+WHERE LOWER\(nombre\) LIKE \? AND capacidad >= \?`).
		WithArgs("%norte%", 10, 5, 5).
		WillReturnRows(spaceRows(now))

	_, _, err := repo.List(context.Background(),
		SpaceQuery{Nombre: "Norte", Capacidad: 10, Page: 2, PerPage: 5})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
