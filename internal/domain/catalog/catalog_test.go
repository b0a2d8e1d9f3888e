package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCatalog_Lookups(t *testing.T) {
	c := Fallback()

	v := c.VehicleByID("km3000")
	assert.NotNil(t, v)
	assert.Equal(t, "KM3000", v.Name)

	assert.Nil(t, c.VehicleByID("unknown"))

	variants := c.VariantsForVehicle("km3000")
	assert.Len(t, variants, 2)

	colors := c.ColorsForVehicle("km4000")
	assert.Len(t, colors, 2)

	comps := c.ComponentsForVehicle("km3000")
	assert.Len(t, comps, 3)
}

func TestCatalog_NilSafeBeforeLoad(t *testing.T) {
	var c *Catalog

	assert.Nil(t, c.VehicleByID("km3000"))
	assert.Empty(t, c.VariantsForVehicle("km3000"))
	assert.Empty(t, c.ColorsForVehicle("km3000"))
	assert.Empty(t, c.ComponentsForVehicle("km3000"))
	assert.Empty(t, c.Plans(""))
	assert.Equal(t, 0, c.PriceForVehicle("km3000", "110001"))
}

func TestCatalog_PlanFilters(t *testing.T) {
	c := Fallback()

	core := c.Plans(PlanTypeCore)
	assert.Len(t, core, 2)
	for _, p := range core {
		assert.Equal(t, PlanTypeCore, p.PlanType)
	}

	all := c.Plans("")
	assert.Len(t, all, 4)

	required := c.RequiredCorePlans()
	assert.Equal(t, []int{1}, required)
}

func TestCatalog_RequiredComponents(t *testing.T) {
	c := Fallback()

	assert.Equal(t, []string{"helmet"}, c.RequiredComponentsForVehicle("km3000"))
	assert.Empty(t, c.RequiredComponentsForVehicle("km5000"))
}

func TestCatalog_PriceForVehicle(t *testing.T) {
	tests := []struct {
		name      string
		vehicleID string
		pincode   string
		want      int
	}{
		{name: "delhi pincode in range", vehicleID: "km3000", pincode: "110001", want: 190000},
		{name: "mumbai pincode in range", vehicleID: "km3000", pincode: "400050", want: 192500},
		{name: "unmatched pincode falls back to first row", vehicleID: "km3000", pincode: "999999", want: 190000},
		{name: "unparseable pincode falls back to first row", vehicleID: "km3000", pincode: "", want: 190000},
		{name: "unknown vehicle prices at zero", vehicleID: "nope", pincode: "110001", want: 0},
		{name: "empty vehicle prices at zero", vehicleID: "", pincode: "110001", want: 0},
	}

	c := Fallback()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.PriceForVehicle(tt.vehicleID, tt.pincode))
		})
	}
}
