// Package queue defines the message payloads exchanged over the broker
// plus the publisher and background consumer for them.
package queue

// ReservaQueueName is the durable queue reservation events travel on.
const ReservaQueueName = "reserva.confirmada"

// ReservaConfirmadaEvent is published when a reserva is successfully
// created.  It carries enough information for downstream consumers to
// log or notify without querying the primary database.
type ReservaConfirmadaEvent struct {
	ReservaID     uint64 `json:"reserva_id"`
	UserID        uint64 `json:"user_id"`
	EspacioID     uint64 `json:"espacio_id"`
	EspacioNombre string `json:"espacio_nombre"`
	Nombre        string `json:"nombre"`
	Fecha         string `json:"fecha"`
	HoraInicio    string `json:"hora_inicio"`
	HoraFin       string `json:"hora_fin"`
	ConfirmedAt   string `json:"confirmed_at"`
}
