package pricing

import (
	"booking-wizard/internal/domain/booking"
	"booking-wizard/internal/domain/catalog"
)

// priceRelevantFields are the aggregate fields whose change triggers a
// recomputation. Edits to anything else leave the total untouched.
var priceRelevantFields = map[string]struct{}{
	booking.FieldLocation:           {},
	booking.FieldVehicle:            {},
	booking.FieldVariant:            {},
	booking.FieldComponents:         {},
	booking.FieldCoreInsurance:      {},
	booking.FieldAdditionalCoverage: {},
}

// AffectsPrice reports whether any of the merged fields requires a price
// recomputation.
func AffectsPrice(fields []string) bool {
	for _, f := range fields {
		if _, ok := priceRelevantFields[f]; ok {
			return true
		}
	}
	return false
}

// ComputeTotal recomputes the total price from the aggregate and the catalog.
// Idempotent and side-effect-free; unresolved lookups contribute 0 so callers
// can price before the catalog arrives.
//
// total = base + variant delta + components + insurance
func ComputeTotal(data booking.FormData, cat *catalog.Catalog) int {
	total := cat.PriceForVehicle(data.SelectedVehicle, data.Location)

	if v := cat.VariantByID(data.SelectedVariant); v != nil {
		total += v.PriceAddition
	}

	for _, id := range data.OptionalComponents {
		if comp := cat.ComponentByID(id); comp != nil {
			total += comp.Price
		}
	}

	// A plan id contributes once, however many selection lists carry it
	seen := make(map[int]struct{})
	addPlan := func(id int) {
		if _, ok := seen[id]; ok {
			return
		}
		seen[id] = struct{}{}
		if plan := cat.PlanByID(id); plan != nil {
			total += plan.Price
		}
	}
	for _, id := range data.SelectedCoreInsurance {
		addPlan(id)
	}
	for _, id := range data.SelectedAdditionalCoverage {
		addPlan(id)
	}

	return total
}
