package entity

import "time"

// Supplier representa un proveedor (laboratorio o droguería mayorista).
type Supplier struct {
	ID        string
	Name      string
	TaxID     string // NIT
	Phone     string
	Email     string
	CreatedAt time.Time
}
