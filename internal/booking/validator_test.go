package booking

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/space-reservation/internal/model"
)

// stubStore implements Store against an in-memory slice, applying the same
// conflict predicate the SQL does.
type stubStore struct {
	spaces   map[uint64]bool
	reservas []model.Reservation
}

func (s *stubStore) SpaceExists(_ context.Context, espacioID uint64) (bool, error) {
	return s.spaces[espacioID], nil
}

func (s *stubStore) FindOverlapping(_ context.Context, espacioID uint64, fecha string, fullDay bool, horaInicio, horaFin string, excludeID uint64) ([]model.Reservation, error) {
	var out []model.Reservation
	for _, rv := range s.reservas {
		if rv.EspacioID != espacioID || rv.Fecha != fecha {
			continue
		}
		if excludeID != 0 && rv.ID == excludeID {
			continue
		}
		if fullDay || Overlaps(rv.HoraInicio, rv.HoraFin, horaInicio, horaFin) {
			out = append(out, rv)
		}
	}
	return out, nil
}

// fixedNow is the validation-time "now" used across the tests; bookings on
// fechaFuture are always in the future relative to it.
var fixedNow = time.Date(2024, 10, 1, 12, 0, 0, 0, time.Local)

const fechaFuture = "2024-10-09"

func newTestValidator() *Validator {
	return NewValidatorAt(func() time.Time { return fixedNow })
}

func okCandidate() Candidate {
	return Candidate{
		Nombre:     "Evento Corporativo",
		EspacioID:  1,
		Fecha:      fechaFuture,
		HoraInicio: "15:00",
		HoraFin:    "17:00",
	}
}

func TestValidateShapeErrors(t *testing.T) {
	store := &stubStore{spaces: map[uint64]bool{1: true}}
	v := newTestValidator()

	tests := []struct {
		name    string
		mutate  func(*Candidate)
		field   string
		message string
	}{
		{"missing nombre", func(c *Candidate) { c.Nombre = "" }, "nombre", "el nombre es obligatorio"},
		{"missing espacio", func(c *Candidate) { c.EspacioID = 0 }, "espacio_id", "el espacio es obligatorio"},
		{"unknown espacio", func(c *Candidate) { c.EspacioID = 99 }, "espacio_id", "el espacio no existe"},
		{"bad fecha", func(c *Candidate) { c.Fecha = "09/10/2024" }, "fecha", "la fecha no es válida"},
		{"bad hora_inicio", func(c *Candidate) { c.HoraInicio = "25:00" }, "hora_inicio", "la hora de inicio no es válida"},
		{"bad hora_fin", func(c *Candidate) { c.HoraFin = "half past" }, "hora_fin", "la hora de fin no es válida"},
		{"fin before inicio", func(c *Candidate) { c.HoraFin = "14:00" }, "hora_fin", "la hora de fin debe ser posterior a la hora de inicio"},
		{"fin equals inicio", func(c *Candidate) { c.HoraFin = c.HoraInicio }, "hora_fin", "la hora de fin debe ser posterior a la hora de inicio"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cand := okCandidate()
			tc.mutate(&cand)
			_, err := v.Validate(context.Background(), store, cand, 0)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
			assert.Equal(t, tc.message, verr.Message)
		})
	}
}

func TestValidatePastStartFailsRegardlessOfOverlap(t *testing.T) {
	store := &stubStore{spaces: map[uint64]bool{1: true}}
	v := newTestValidator()

	cand := okCandidate()
	cand.Fecha = "2024-09-30" // the day before fixedNow
	_, err := v.Validate(context.Background(), store, cand, 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "hora_inicio", verr.Field)
	assert.Equal(t, "la hora de inicio debe ser en el futuro", verr.Message)

	// Same date as now but an earlier hour is also in the past.
	cand = okCandidate()
	cand.Fecha = fixedNow.Format(FechaLayout)
	cand.HoraInicio = "11:00"
	cand.HoraFin = "11:30"
	_, err = v.Validate(context.Background(), store, cand, 0)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "la hora de inicio debe ser en el futuro", verr.Message)
}

func TestValidateOverlapConflicts(t *testing.T) {
	existing := model.Reservation{
		ID: 7, EspacioID: 1, UserID: 3,
		Fecha: fechaFuture, HoraInicio: "15:00", HoraFin: "17:00",
	}
	store := &stubStore{
		spaces:   map[uint64]bool{1: true, 2: true},
		reservas: []model.Reservation{existing},
	}
	v := newTestValidator()

	tests := []struct {
		name     string
		inicio   string
		fin      string
		conflict bool
	}{
		{"plain overlap", "16:00", "18:00", true},
		{"touching endpoint counts", "17:00", "18:00", true},
		{"touching start counts", "14:00", "15:00", true},
		{"contained candidate", "15:30", "16:30", true},
		{"containing candidate", "14:00", "18:00", true},
		{"disjoint before", "13:00", "14:30", false},
		{"disjoint after", "17:30", "18:30", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cand := okCandidate()
			cand.HoraInicio = tc.inicio
			cand.HoraFin = tc.fin
			_, err := v.Validate(context.Background(), store, cand, 0)
			if tc.conflict {
				var verr *ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, "hora_inicio", verr.Field)
				assert.Equal(t, "el espacio ya está reservado en este horario", verr.Message)
			} else {
				require.NoError(t, err)
			}
		})
	}

	t.Run("other space does not conflict", func(t *testing.T) {
		cand := okCandidate()
		cand.EspacioID = 2
		_, err := v.Validate(context.Background(), store, cand, 0)
		require.NoError(t, err)
	})

	t.Run("other date does not conflict", func(t *testing.T) {
		cand := okCandidate()
		cand.Fecha = "2024-10-10"
		_, err := v.Validate(context.Background(), store, cand, 0)
		require.NoError(t, err)
	})
}

func TestValidateExcludeIDAllowsSelfUpdate(t *testing.T) {
	existing := model.Reservation{
		ID: 7, EspacioID: 1, UserID: 3,
		Fecha: "2024-10-19", HoraInicio: "16:00", HoraFin: "17:00",
	}
	store := &stubStore{
		spaces:   map[uint64]bool{1: true},
		reservas: []model.Reservation{existing},
	}
	v := newTestValidator()

	cand := Candidate{
		Nombre: "Cumpleaños", EspacioID: 1,
		Fecha: "2024-10-19", HoraInicio: "16:00", HoraFin: "17:00",
	}
	// Updating the reserva onto its own slot succeeds only when excluded.
	_, err := v.Validate(context.Background(), store, cand, existing.ID)
	require.NoError(t, err)

	_, err = v.Validate(context.Background(), store, cand, 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "el espacio ya está reservado en este horario", verr.Message)
}

func TestValidateFullDay(t *testing.T) {
	store := &stubStore{spaces: map[uint64]bool{1: true}}
	v := newTestValidator()

	// A full-day candidate on an empty date validates and is flagged.
	cand := okCandidate()
	cand.HoraInicio = model.HoraInicioFullDay
	cand.HoraFin = model.HoraFinFullDay
	got, err := v.Validate(context.Background(), store, cand, 0)
	require.NoError(t, err)
	assert.True(t, got.FullDay)

	// Persist it; now every other attempt on that date conflicts, even a
	// window that would not intersect a partial booking at those hours.
	store.reservas = append(store.reservas, model.Reservation{
		ID: 1, EspacioID: 1, Fecha: fechaFuture,
		HoraInicio: model.HoraInicioFullDay, HoraFin: model.HoraFinFullDay,
	})
	cand = okCandidate()
	cand.HoraInicio = "09:00"
	cand.HoraFin = "10:00"
	_, err = v.Validate(context.Background(), store, cand, 0)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "el espacio ya está reservado en este horario", verr.Message)

	// And the reverse: a full-day candidate conflicts with any existing
	// partial booking on the date.
	store.reservas = []model.Reservation{{
		ID: 2, EspacioID: 1, Fecha: fechaFuture,
		HoraInicio: "15:00", HoraFin: "17:00",
	}}
	cand = okCandidate()
	cand.HoraInicio = model.HoraInicioFullDay
	cand.HoraFin = model.HoraFinFullDay
	_, err = v.Validate(context.Background(), store, cand, 0)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "hora_inicio", verr.Field)
}

func TestValidateNormalizesCandidate(t *testing.T) {
	store := &stubStore{spaces: map[uint64]bool{1: true}}
	v := newTestValidator()

	cand := okCandidate()
	got, err := v.Validate(context.Background(), store, cand, 0)
	require.NoError(t, err)
	assert.Equal(t, fechaFuture, got.Fecha)
	assert.Equal(t, "15:00", got.HoraInicio)
	assert.Equal(t, "17:00", got.HoraFin)
	assert.False(t, got.FullDay)
}

func TestOverlaps(t *testing.T) {
	assert.True(t, Overlaps("15:00", "17:00", "16:00", "18:00"))
	assert.True(t, Overlaps("15:00", "17:00", "17:00", "18:00")) // endpoint touch
	assert.True(t, Overlaps("15:00", "17:00", "14:00", "15:00")) // endpoint touch
	assert.True(t, Overlaps("15:00", "17:00", "15:30", "16:30")) // containment
	assert.False(t, Overlaps("15:00", "17:00", "17:01", "18:00"))
	assert.False(t, Overlaps("15:00", "17:00", "13:00", "14:59"))
}
