// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"

	"go.astrophena.name/tinyweb/route"
	"go.astrophena.name/tinyweb/version"
	"go.astrophena.name/tinyweb/wire"
)

// System is a controller with the endpoints every server has:
//
//   - GET /health reports {"status":"ok"};
//   - GET /version reports the build information.
type System struct{}

type health struct {
	Status string `json:"status"`
}

// Mapping implements [route.Controller].
func (System) Mapping() route.Mapping {
	return route.Mapping{
		Endpoints: []route.Endpoint{
			route.Get("/health", HandleJSON(func(context.Context, route.Args) (health, error) {
				return health{Status: "ok"}, nil
			})).Produces(wire.JSONContentType),
			route.Get("/version", HandleJSON(func(context.Context, route.Args) (version.Info, error) {
				return version.Version(), nil
			})).Produces(wire.JSONContentType),
		},
	}
}
