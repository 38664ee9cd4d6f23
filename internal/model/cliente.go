package model

import (
	"time"

	"github.com/google/uuid"
)

// Cliente is a distributor customer.
// CondicionIVA: "responsable_inscripto" | "monotributo" | "exento" | "consumidor_final"
type Cliente struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	RazonSocial  string    `gorm:"not null"`
	CUIT         string    `gorm:"type:varchar(20);uniqueIndex;not null;column:cuit"`
	Email        *string
	Telefono     *string
	Direccion    *string
	Localidad    *string
	Provincia    *string
	CondicionIVA string `gorm:"type:varchar(30);not null;column:condicion_iva"`
	// Moneda is the default currency for this customer's documents
	Moneda    string `gorm:"type:varchar(3);not null;default:'ARS'"`
	Activo    bool   `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CuentaTesoreria is a treasury account receipts are collected into.
// Tipo: "banco" | "caja"
type CuentaTesoreria struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Nombre string    `gorm:"not null"`
	Tipo   string    `gorm:"type:varchar(10);not null"`
	Banco  *string
	CBU    *string `gorm:"type:varchar(30);column:cbu"`
	Moneda string  `gorm:"type:varchar(3);not null;default:'ARS'"`
	Activa bool    `gorm:"not null;default:true"`

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides GORM's default pluralization (cuenta_tesorerias → cuentas_tesoreria).
func (CuentaTesoreria) TableName() string { return "cuentas_tesoreria" }
