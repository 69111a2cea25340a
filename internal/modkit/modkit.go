// Package modkit assembles API modules from shared deps and options
package modkit

import "bugprint/internal/modkit/module"

// Module is the surface the composition root mounts
type Module = module.Module
