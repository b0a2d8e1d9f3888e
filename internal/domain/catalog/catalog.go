package catalog

import "strconv"

// Plan types for insurance plans
const (
	PlanTypeCore       = "CORE"
	PlanTypeAdditional = "ADDITIONAL"
)

// Component types for optional components
const (
	ComponentTypeAccessory = "accessory"
	ComponentTypePackage   = "package"
	ComponentTypeWarranty  = "warranty"
	ComponentTypeService   = "service"
)

// Vehicle is a purchasable model. Immutable once fetched.
type Vehicle struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ModelCode string `json:"model_code"`
}

// Variant belongs to exactly one vehicle and adds to its base price.
type Variant struct {
	ID            string `json:"id"`
	ModelID       string `json:"model_id"`
	Name          string `json:"name"`
	PriceAddition int    `json:"price_addition"`
}

// Color belongs to exactly one vehicle.
type Color struct {
	ID      string `json:"id"`
	ModelID string `json:"model_id"`
	Name    string `json:"name"`
	HexCode string `json:"hex_code"`
}

// Component is an optional add-on. Required components must always be
// present in the selection set for their vehicle.
type Component struct {
	ID            string `json:"id"`
	ModelID       string `json:"model_id"`
	Name          string `json:"name"`
	Price         int    `json:"price"`
	IsRequired    bool   `json:"is_required"`
	ComponentType string `json:"component_type"`
}

// InsurancePlan is a CORE or ADDITIONAL coverage plan. CORE plans may be
// individually required.
type InsurancePlan struct {
	ID           int    `json:"id"`
	ProviderID   int    `json:"provider_id"`
	Name         string `json:"name"`
	PlanType     string `json:"plan_type"`
	Price        int    `json:"price"`
	IsRequired   bool   `json:"is_required"`
	TenureMonths int    `json:"tenure_months"`
}

// PricingRow maps a vehicle to its base price within a pincode range.
type PricingRow struct {
	ModelID      string `json:"model_id"`
	BasePrice    int    `json:"base_price"`
	PincodeStart int    `json:"pincode_start"`
	PincodeEnd   int    `json:"pincode_end"`
	City         string `json:"city"`
	State        string `json:"state"`
}

// Catalog holds the fetched product data. Read-only for the session; all
// lookups return empty collections or zero values rather than failing, so
// callers are safe before data arrives.
type Catalog struct {
	Models         []Vehicle       `json:"models"`
	Variants       []Variant       `json:"variants"`
	Colors         []Color         `json:"colors"`
	Components     []Component     `json:"components"`
	InsurancePlans []InsurancePlan `json:"insurance_plans"`
	Pricing        []PricingRow    `json:"pricing"`
}

// VehicleByID returns the vehicle with the given id, or nil.
func (c *Catalog) VehicleByID(id string) *Vehicle {
	if c == nil {
		return nil
	}
	for i := range c.Models {
		if c.Models[i].ID == id {
			return &c.Models[i]
		}
	}
	return nil
}

// VariantsForVehicle returns all variants belonging to the vehicle.
func (c *Catalog) VariantsForVehicle(vehicleID string) []Variant {
	var out []Variant
	if c == nil {
		return out
	}
	for _, v := range c.Variants {
		if v.ModelID == vehicleID {
			out = append(out, v)
		}
	}
	return out
}

// VariantByID returns the variant with the given id, or nil.
func (c *Catalog) VariantByID(id string) *Variant {
	if c == nil {
		return nil
	}
	for i := range c.Variants {
		if c.Variants[i].ID == id {
			return &c.Variants[i]
		}
	}
	return nil
}

// ColorsForVehicle returns all colors belonging to the vehicle.
func (c *Catalog) ColorsForVehicle(vehicleID string) []Color {
	var out []Color
	if c == nil {
		return out
	}
	for _, col := range c.Colors {
		if col.ModelID == vehicleID {
			out = append(out, col)
		}
	}
	return out
}

// ComponentsForVehicle returns all optional components for the vehicle.
func (c *Catalog) ComponentsForVehicle(vehicleID string) []Component {
	var out []Component
	if c == nil {
		return out
	}
	for _, comp := range c.Components {
		if comp.ModelID == vehicleID {
			out = append(out, comp)
		}
	}
	return out
}

// RequiredComponentsForVehicle returns the ids of components that must be
// present in the selection whenever the vehicle is selected.
func (c *Catalog) RequiredComponentsForVehicle(vehicleID string) []string {
	var out []string
	for _, comp := range c.ComponentsForVehicle(vehicleID) {
		if comp.IsRequired {
			out = append(out, comp.ID)
		}
	}
	return out
}

// ComponentByID returns the component with the given id, or nil.
func (c *Catalog) ComponentByID(id string) *Component {
	if c == nil {
		return nil
	}
	for i := range c.Components {
		if c.Components[i].ID == id {
			return &c.Components[i]
		}
	}
	return nil
}

// Plans returns insurance plans, optionally filtered by plan type. An empty
// planType returns every plan.
func (c *Catalog) Plans(planType string) []InsurancePlan {
	var out []InsurancePlan
	if c == nil {
		return out
	}
	for _, p := range c.InsurancePlans {
		if planType == "" || p.PlanType == planType {
			out = append(out, p)
		}
	}
	return out
}

// RequiredCorePlans returns the ids of CORE plans flagged as required.
func (c *Catalog) RequiredCorePlans() []int {
	var out []int
	for _, p := range c.Plans(PlanTypeCore) {
		if p.IsRequired {
			out = append(out, p.ID)
		}
	}
	return out
}

// PlanByID returns the insurance plan with the given id, or nil.
func (c *Catalog) PlanByID(id int) *InsurancePlan {
	if c == nil {
		return nil
	}
	for i := range c.InsurancePlans {
		if c.InsurancePlans[i].ID == id {
			return &c.InsurancePlans[i]
		}
	}
	return nil
}

// PriceForVehicle resolves the location-aware base price for a vehicle.
// When the pincode parses and falls inside a pricing row's range that row
// wins; otherwise the first row for the model applies. Unresolvable vehicles
// price at 0.
func (c *Catalog) PriceForVehicle(vehicleID, pincode string) int {
	if c == nil || vehicleID == "" {
		return 0
	}

	var fallback *PricingRow
	pin, pinErr := strconv.Atoi(pincode)

	for i := range c.Pricing {
		row := &c.Pricing[i]
		if row.ModelID != vehicleID {
			continue
		}
		if fallback == nil {
			fallback = row
		}
		if pinErr == nil && pin >= row.PincodeStart && pin <= row.PincodeEnd {
			return row.BasePrice
		}
	}

	if fallback != nil {
		return fallback.BasePrice
	}
	return 0
}
