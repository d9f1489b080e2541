package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRole(t *testing.T) {
	cases := []struct {
		in   string
		want Role
		ok   bool
	}{
		{"user", RoleUser, true},
		{"admin", RoleAdmin, true},
		{"ADMIN", RoleAdmin, true},
		{" user ", RoleUser, true},
		{"", "", false},
		{"root", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseRole(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.Equal(t, tc.want, got, "input %q", tc.in)
		}
	}
}

func TestRoleValid(t *testing.T) {
	assert.True(t, RoleUser.Valid())
	assert.True(t, RoleAdmin.Valid())
	assert.False(t, Role("guest").Valid())
	assert.False(t, Role("").Valid())
}

func TestReservationFullDay(t *testing.T) {
	rv := Reservation{HoraInicio: HoraInicioFullDay, HoraFin: HoraFinFullDay}
	assert.True(t, rv.FullDay())

	rv.HoraFin = "18:00"
	assert.False(t, rv.FullDay())
}
