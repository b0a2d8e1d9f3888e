package catalogclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"booking-wizard/internal/common/logger"
)

const validEnvelope = `{
	"status": "success",
	"data": {
		"models": [{"id": "km3000", "name": "KM3000", "model_code": "KM3000"}],
		"variants": [{"id": "km3000-extended", "model_id": "km3000", "price_addition": 15500}],
		"colors": [],
		"components": [{"id": "helmet", "model_id": "km3000", "price": 0, "is_required": true, "component_type": "accessory"}],
		"insurance_plans": [{"id": 1, "provider_id": 1, "plan_type": "CORE", "price": 9942, "is_required": true, "tenure_months": 12}],
		"pricing": [{"model_id": "km3000", "base_price": 190000, "pincode_start": 110001, "pincode_end": 140604, "city": "Delhi", "state": "Delhi"}]
	}
}`

func TestStore_LoadSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(validEnvelope))
	}))
	defer server.Close()

	store := NewStore(server.URL, logger.NewMockLogger())
	err := store.Load(context.Background())

	require.NoError(t, err)
	assert.True(t, store.Resolved())
	assert.False(t, store.UsingFallback())

	cat := store.Catalog()
	require.NotNil(t, cat)
	assert.Equal(t, "KM3000", cat.VehicleByID("km3000").Name)
	assert.Equal(t, 190000, cat.PriceForVehicle("km3000", "110001"))
}

func TestStore_Http500FallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store := NewStore(server.URL, logger.NewMockLogger())
	err := store.Load(context.Background())

	var fetchErr *FetchError
	require.ErrorAs(t, err, &fetchErr)
	assert.True(t, store.Resolved())
	assert.True(t, store.UsingFallback())

	// Fallback must keep the wizard priceable
	cat := store.Catalog()
	require.NotNil(t, cat)
	assert.NotEmpty(t, cat.Models)
	assert.Equal(t, 190000, cat.PriceForVehicle("km3000", "110001"))
}

func TestStore_MalformedEnvelopeFallsBack(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "wrong status", body: `{"status": "error", "data": {}}`},
		{name: "missing data", body: `{"status": "success"}`},
		{name: "not json", body: `<html>oops</html>`},
		{name: "empty body", body: ``},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			store := NewStore(server.URL, logger.NewMockLogger())
			err := store.Load(context.Background())

			assert.Error(t, err)
			assert.True(t, store.UsingFallback())
			assert.NotNil(t, store.Catalog())
		})
	}
}

func TestStore_UnreachableEndpointFallsBack(t *testing.T) {
	store := NewStore("http://127.0.0.1:1/none", logger.NewMockLogger())
	err := store.Load(context.Background())

	assert.Error(t, err)
	assert.True(t, store.Resolved())
	assert.True(t, store.UsingFallback())
}

func TestStore_ReloadSwitchesEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(validEnvelope))
	}))
	defer server.Close()

	store := NewStore("http://127.0.0.1:1/none", logger.NewMockLogger())
	_ = store.Load(context.Background())
	assert.True(t, store.UsingFallback())

	err := store.Reload(context.Background(), server.URL)
	require.NoError(t, err)
	assert.False(t, store.UsingFallback())
}

func TestStore_OnLoadHookFires(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(validEnvelope))
	}))
	defer server.Close()

	store := NewStore(server.URL, logger.NewMockLogger())
	calls := 0
	store.SetOnLoad(func() { calls++ })

	require.NoError(t, store.Load(context.Background()))
	assert.Equal(t, 1, calls)

	// The fallback path resolves a load too, so it reprices as well
	err := store.Reload(context.Background(), "http://127.0.0.1:1/none")
	assert.Error(t, err)
	assert.Equal(t, 2, calls)
}

func TestStore_NotResolvedBeforeLoad(t *testing.T) {
	store := NewStore("http://example.invalid", logger.NewMockLogger())

	assert.False(t, store.Resolved())
	assert.Nil(t, store.Catalog())
	// Nil-safe: callers can price against an unloaded store
	assert.Equal(t, 0, store.Catalog().PriceForVehicle("km3000", "110001"))
}
