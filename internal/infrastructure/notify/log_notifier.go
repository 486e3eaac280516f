// Package notify contiene adaptadores del puerto event.Notifier.
package notify

import (
	"context"

	"github.com/farmaplus/farmacia-api/internal/domain/event"
	"github.com/farmaplus/farmacia-api/pkg/logger"
)

var _ event.Notifier = (*LogNotifier)(nil)

// LogNotifier adaptador que registra cada evento en el log estructurado.
// Sirve como implementación por defecto mientras no exista un canal real
// (correo, webhook); el núcleo solo conoce el puerto.
type LogNotifier struct {
	log *logger.Logger
}

// NewLogNotifier construye el notificador basado en logs.
func NewLogNotifier(log *logger.Logger) *LogNotifier {
	return &LogNotifier{log: log.Component("notifier")}
}

// ReceptionPending registra un acta de recepción pendiente de aprobación.
func (n *LogNotifier) ReceptionPending(_ context.Context, ev event.ReceptionPendingApproval) {
	n.log.Info().
		Str("event", "reception_pending_approval").
		Str("act_id", ev.ActID).
		Str("supplier_id", ev.SupplierID).
		Str("receiver_id", ev.ReceiverID).
		Msg("Acta de recepción pendiente de aprobación")
}

// BajaPending registra una baja pendiente de aprobación.
func (n *LogNotifier) BajaPending(_ context.Context, ev event.BajaPendingApproval) {
	n.log.Info().
		Str("event", "baja_pending_approval").
		Str("baja_id", ev.BajaID).
		Str("lot_id", ev.LotID).
		Str("product", ev.ProductName).
		Msg("Baja pendiente de aprobación")
}

// StockLow registra un producto en o por debajo de su stock mínimo.
func (n *LogNotifier) StockLow(_ context.Context, ev event.LowStock) {
	n.log.Warn().
		Str("event", "low_stock").
		Str("product_id", ev.ProductID).
		Str("product", ev.ProductName).
		Int64("stock_total", ev.StockTotal).
		Int64("stock_minimo", ev.StockMinimo).
		Msg("Producto en stock mínimo")
}
