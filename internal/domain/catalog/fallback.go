package catalog

// Fallback returns the bundled static catalog served when the catalog
// endpoint is unreachable. Booking must never hard-fail on a catalog outage,
// so this data keeps the wizard usable offline.
func Fallback() *Catalog {
	return &Catalog{
		Models: []Vehicle{
			{ID: "km3000", Name: "KM3000", ModelCode: "KM3000"},
			{ID: "km4000", Name: "KM4000", ModelCode: "KM4000"},
			{ID: "km5000", Name: "KM5000", ModelCode: "KM5000"},
		},
		Variants: []Variant{
			{ID: "km3000-standard", ModelID: "km3000", Name: "Standard", PriceAddition: 0},
			{ID: "km3000-extended", ModelID: "km3000", Name: "Extended Range", PriceAddition: 15500},
			{ID: "km4000-standard", ModelID: "km4000", Name: "Standard", PriceAddition: 0},
			{ID: "km4000-extended", ModelID: "km4000", Name: "Extended Range", PriceAddition: 19500},
			{ID: "km5000-standard", ModelID: "km5000", Name: "Standard", PriceAddition: 0},
		},
		Colors: []Color{
			{ID: "km3000-black", ModelID: "km3000", Name: "Midnight Black", HexCode: "#101010"},
			{ID: "km3000-red", ModelID: "km3000", Name: "Crimson Red", HexCode: "#b01030"},
			{ID: "km4000-black", ModelID: "km4000", Name: "Midnight Black", HexCode: "#101010"},
			{ID: "km4000-white", ModelID: "km4000", Name: "Pearl White", HexCode: "#f4f4f0"},
			{ID: "km5000-silver", ModelID: "km5000", Name: "Titan Silver", HexCode: "#c0c0c8"},
		},
		Components: []Component{
			{ID: "helmet", ModelID: "km3000", Name: "Smart Helmet", Price: 0, IsRequired: true, ComponentType: ComponentTypeAccessory},
			{ID: "charger-portable", ModelID: "km3000", Name: "Portable Charger", Price: 8500, IsRequired: false, ComponentType: ComponentTypeAccessory},
			{ID: "care-package", ModelID: "km3000", Name: "KM Care Package", Price: 4999, IsRequired: false, ComponentType: ComponentTypePackage},
			{ID: "helmet-km4000", ModelID: "km4000", Name: "Smart Helmet", Price: 0, IsRequired: true, ComponentType: ComponentTypeAccessory},
			{ID: "extended-warranty", ModelID: "km4000", Name: "Extended Warranty", Price: 11000, IsRequired: false, ComponentType: ComponentTypeWarranty},
			{ID: "service-plus", ModelID: "km5000", Name: "Service Plus", Price: 6500, IsRequired: false, ComponentType: ComponentTypeService},
		},
		InsurancePlans: []InsurancePlan{
			{ID: 1, ProviderID: 1, Name: "Comprehensive Cover", PlanType: PlanTypeCore, Price: 9942, IsRequired: true, TenureMonths: 12},
			{ID: 2, ProviderID: 1, Name: "Third Party Cover", PlanType: PlanTypeCore, Price: 4210, IsRequired: false, TenureMonths: 12},
			{ID: 3, ProviderID: 2, Name: "Zero Depreciation", PlanType: PlanTypeAdditional, Price: 3150, IsRequired: false, TenureMonths: 12},
			{ID: 4, ProviderID: 2, Name: "Roadside Assistance", PlanType: PlanTypeAdditional, Price: 1499, IsRequired: false, TenureMonths: 12},
		},
		Pricing: []PricingRow{
			{ModelID: "km3000", BasePrice: 190000, PincodeStart: 110001, PincodeEnd: 140604, City: "Delhi", State: "Delhi"},
			{ModelID: "km3000", BasePrice: 192500, PincodeStart: 400001, PincodeEnd: 445402, City: "Mumbai", State: "Maharashtra"},
			{ModelID: "km4000", BasePrice: 240000, PincodeStart: 110001, PincodeEnd: 140604, City: "Delhi", State: "Delhi"},
			{ModelID: "km4000", BasePrice: 243500, PincodeStart: 400001, PincodeEnd: 445402, City: "Mumbai", State: "Maharashtra"},
			{ModelID: "km5000", BasePrice: 320000, PincodeStart: 110001, PincodeEnd: 140604, City: "Delhi", State: "Delhi"},
		},
	}
}
