// Package event define los eventos que el núcleo emite hacia colaboradores
// externos. La entrega y el fan-out (a quién se notifica, por qué canal) quedan
// fuera del núcleo: aquí solo se emiten eventos bien tipados.
package event

import "context"

// ReceptionPendingApproval se emite al registrar un acta de recepción que
// espera aprobación administrativa.
type ReceptionPendingApproval struct {
	ActID      string
	SupplierID string
	ReceiverID string
}

// BajaPendingApproval se emite al registrar una baja que espera aprobación.
type BajaPendingApproval struct {
	BajaID      string
	LotID       string
	ProductName string
}

// LowStock se emite cuando una operación deja un producto en o por debajo de su
// stock mínimo.
type LowStock struct {
	ProductID   string
	ProductName string
	StockTotal  int64
	StockMinimo int64
}

// Notifier puerto de notificaciones consumido por los flujos del núcleo.
type Notifier interface {
	ReceptionPending(ctx context.Context, ev ReceptionPendingApproval)
	BajaPending(ctx context.Context, ev BajaPendingApproval)
	StockLow(ctx context.Context, ev LowStock)
}
