package service

import (
	"bugprint/internal/services/registry/domain"
)

// Service defines the service contract for the registry
type Service interface{ domain.ServicePort }

// Svc joins the fingerprint engine with a registry
type Svc struct {
	Engine
	*Registry
}

var _ Service = (*Svc)(nil)

// New creates a registry service
func New(reg *Registry) *Svc {
	if reg == nil {
		panic("registry.Service requires a non nil Registry")
	}
	return &Svc{Registry: reg}
}
