// Package pricing holds the pure cost and delivery-time rules.
package pricing

import (
	"time"

	"medicart/internal/domain/catalog"
)

// DeliveryFee is the flat fee added to every order (₹5 × 83.5).
const DeliveryFee = 417.5

const (
	cutoffHour   = 15
	deliveryHour = 18
)

// TotalCost sums unit price times quantity over the given lines and adds the
// flat delivery fee. Lines whose medicine is absent from the catalog or whose
// quantity exceeds current stock are skipped, not rejected; the authoritative
// stock check happens at order placement.
func TotalCost(items map[string]int, cat catalog.Catalog) float64 {
	var total float64
	for name, qty := range items {
		m, ok := cat[name]
		if !ok || m.Stock < qty {
			continue
		}
		total += m.UnitPrice * float64(qty)
	}
	return total + DeliveryFee
}

// DeliveryTime applies the 15:00 cutoff: orders before the cutoff are
// delivered today at 18:00, orders at or after it tomorrow at 18:00.
func DeliveryTime(now time.Time) time.Time {
	delivery := time.Date(now.Year(), now.Month(), now.Day(), deliveryHour, 0, 0, 0, now.Location())
	if now.Hour() < cutoffHour {
		// Unreachable while the cutoff precedes the delivery hour.
		if now.Hour() >= deliveryHour {
			delivery = delivery.AddDate(0, 0, 1)
		}
	} else {
		delivery = delivery.AddDate(0, 0, 1)
	}
	return delivery
}
