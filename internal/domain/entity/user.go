package entity

import "time"

// Roles válidos para User.
const (
	RoleAdmin        = "admin"
	RoleFarmaceutico = "farmaceutico"
	RoleCajero       = "cajero"
)

// User representa un usuario del sistema.
type User struct {
	ID           string
	Email        string
	PasswordHash string // bcrypt hash, nunca plano en dominio después de persistir
	Name         string
	Role         string // admin, farmaceutico, cajero
	Status       string // active, inactive, suspended
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Capabilities capacidades de un usuario sobre los flujos de recepción y baja.
// Se derivan del rol una sola vez (en el middleware de auth) y se pasan como
// dato a cada operación, en lugar de repetir chequeos de rol en cada caso de uso.
type Capabilities struct {
	CanReceive bool // puede registrar actas de recepción
	CanApprove bool // puede aprobar/rechazar recepciones y bajas
}

// CapabilitiesForRole mapea rol -> capacidades.
// admin: recibe y aprueba. farmaceutico: solo recibe. cajero: ninguna.
func CapabilitiesForRole(role string) Capabilities {
	switch role {
	case RoleAdmin:
		return Capabilities{CanReceive: true, CanApprove: true}
	case RoleFarmaceutico:
		return Capabilities{CanReceive: true}
	default:
		return Capabilities{}
	}
}
