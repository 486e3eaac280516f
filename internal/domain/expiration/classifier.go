// Package expiration clasifica lotes por riesgo de vencimiento (servicio de dominio puro).
package expiration

import (
	"math"
	"time"
)

// Category categoría discreta de riesgo de vencimiento.
type Category string

const (
	CategoryExpired Category = "EXPIRED"
	CategoryRed     Category = "RED"
	CategoryYellow  Category = "YELLOW"
	CategoryOrange  Category = "ORANGE"
	CategoryGreen   Category = "GREEN"
)

// Thresholds límites en días para cada categoría. Los límites son inclusivos
// hacia la categoría más severa: un lote que vence exactamente en RedDays días
// es RED, no YELLOW. Más allá de OrangeDays es GREEN.
type Thresholds struct {
	RedDays    int
	YellowDays int
	OrangeDays int
}

// DefaultThresholds valores típicos de farmacia: 6 meses, 1 año, 2 años.
func DefaultThresholds() Thresholds {
	return Thresholds{RedDays: 180, YellowDays: 365, OrangeDays: 730}
}

// DaysUntil días que faltan hasta el vencimiento, redondeando hacia arriba
// (techo de la diferencia en días). Negativo si ya venció.
func DaysUntil(expiration, today time.Time) int {
	diff := expiration.Sub(today)
	return int(math.Ceil(diff.Hours() / 24))
}

// Classify mapea fecha de vencimiento y fecha de referencia a una categoría.
// Sin efectos; debe reevaluarse bajo demanda porque "hoy" cambia.
func Classify(expiration, today time.Time, th Thresholds) Category {
	days := DaysUntil(expiration, today)
	switch {
	case days < 0:
		return CategoryExpired
	case days <= th.RedDays:
		return CategoryRed
	case days <= th.YellowDays:
		return CategoryYellow
	case days <= th.OrangeDays:
		return CategoryOrange
	default:
		return CategoryGreen
	}
}
