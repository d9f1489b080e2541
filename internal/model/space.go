package model

import "time"

// Space describes a reservable physical resource as stored in the
// `espacios` table.  A space owns zero or more reservations and may carry
// an optional image stored in the blob store under the name referenced by
// Imagen.
//
// Fields:
//  ID          – primary key identifier.
//  Nombre      – display name (non-empty).
//  Descripcion – free-form description.
//  Capacidad   – maximum number of people (positive).
//  Imagen      – blob store key of the attached image (nullable).
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Space struct {
	ID          uint64    // espacios.id
	Nombre      string    // espacios.nombre
	Descripcion string    // espacios.descripcion
	Capacidad   uint32    // espacios.capacidad
	Imagen      *string   // espacios.imagen (nullable blob key)
	CreatedAt   time.Time // espacios.created_at
	UpdatedAt   time.Time // espacios.updated_at
}
