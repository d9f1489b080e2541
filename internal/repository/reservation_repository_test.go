package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockReservationRepo(t *testing.T) (*ReservationRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewReservationRepo(db), mock
}

func TestDeleteByNonOwnerForbiddenAndRowIntact(t *testing.T) {
	repo, mock := newMockReservationRepo(t)

	// The reserva belongs to user 3; user 4 asks for its deletion.
	mock.ExpectQuery(`SELECT user_id FROM reservas WHERE id=\? LIMIT 1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(3))

	err := repo.Delete(context.Background(), 7, 4)
	assert.ErrorIs(t, err, ErrForbidden)

	// No DELETE was expected and none may have run.
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteByOwnerRemovesRow(t *testing.T) {
	repo, mock := newMockReservationRepo(t)

	mock.ExpectQuery(`SELECT user_id FROM reservas WHERE id=\? LIMIT 1`).
		WithArgs(7).
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(4))
	mock.ExpectExec(`DELETE FROM reservas WHERE id=\? AND user_id=\?`).
		WithArgs(7, 4).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 7, 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteMissingReserva(t *testing.T) {
	repo, mock := newMockReservationRepo(t)

	mock.ExpectQuery(`SELECT user_id FROM reservas WHERE id=\? LIMIT 1`).
		WithArgs(99).
		WillReturnError(sql.ErrNoRows)

	err := repo.Delete(context.Background(), 99, 4)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}
