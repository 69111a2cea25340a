package httpkit

import (
	"net/http"
	"strings"

	"bugprint/internal/platform/net/middleware"
)

// MountAPI mounts a subrouter under /api/{version} with mw applied, then calls mount on it
func MountAPI(r Router, version string, mw []func(http.Handler) http.Handler, mount func(Router)) {
	r.Route("/api/"+strings.TrimPrefix(version, "/"), func(api Router) {
		if len(mw) > 0 {
			api.Use(mw...)
		}
		mount(api)
	})
}

// MountAPIV1 is MountAPI for v1
func MountAPIV1(r Router, mw []func(http.Handler) http.Handler, mount func(Router)) {
	MountAPI(r, "v1", mw, mount)
}

// Protected groups routes under bearer auth; a nil port leaves them open
func Protected(r Router, p middleware.AuthPort, fn func(Router)) {
	r.Group(func(gr Router) {
		gr.Use(Auth(p))
		fn(gr)
	})
}
