// Package module defines what a mountable module exposes and how its ports are found
package module

import phttp "bugprint/internal/platform/net/http"

// Module mounts routes and exposes a port set for other modules and the binaries
type Module interface {
	MountRoutes(r phttp.Router)
	Ports() any
	Name() string
}
