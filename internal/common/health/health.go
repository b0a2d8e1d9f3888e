package health

import "context"

type HealthChecker interface {
	Check(ctx context.Context) HealthStatus
}

type HealthStatus struct {
	Status  string `json:"status"`
	Catalog string `json:"catalog"`
}

// CatalogAware reports whether the catalog backing the wizard has resolved
// (either a live fetch or the bundled fallback).
type CatalogAware interface {
	Resolved() bool
	UsingFallback() bool
}

type ServiceHealthChecker struct {
	catalog CatalogAware
}

func NewServiceHealthChecker(catalog CatalogAware) *ServiceHealthChecker {
	return &ServiceHealthChecker{catalog: catalog}
}

// Check performs a health check
func (sh *ServiceHealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Status: "healthy", Catalog: "pending"}
	if sh.catalog != nil && sh.catalog.Resolved() {
		if sh.catalog.UsingFallback() {
			status.Catalog = "fallback"
		} else {
			status.Catalog = "live"
		}
	}
	return status
}
