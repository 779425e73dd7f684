// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"

	"go.astrophena.name/tinyweb/logger"
	"go.astrophena.name/tinyweb/route"
	"go.astrophena.name/tinyweb/wire"
)

// Dispatcher turns a parsed request into a response using the routes of a
// registry.
type Dispatcher struct {
	Routes *route.Registry
}

// Dispatch finds the route for req, binds its arguments and runs its
// handler. It always returns a response:
//
//   - 404 with [NotFoundPage] when no route matches, including for methods
//     other than GET and POST;
//   - 500 with [ErrorPage] when binding fails, or the handler returns an
//     error or panics;
//   - 200 otherwise, with the handler's result as the body. A result that
//     starts with "{" is sent as JSON unless the endpoint declared its own
//     content type.
func (d *Dispatcher) Dispatch(ctx context.Context, req *wire.Request) *wire.Response {
	resp := wire.NewResponse()

	var (
		rt *route.Route
		ok bool
	)
	if d.Routes != nil {
		rt, ok = d.Routes.Lookup(req.Method, req.Path)
	}
	if !ok {
		respondNotFound(ctx, resp)
		return resp
	}

	body, err := invoke(ctx, rt, req)
	if err != nil {
		respondError(ctx, resp, req, err)
		return resp
	}
	if body == "" {
		return resp
	}
	resp.SetBody(body)
	switch {
	case rt.ContentType != "":
		resp.SetContentType(rt.ContentType)
	case strings.HasPrefix(body, "{"):
		resp.SetContentType(wire.JSONContentType)
	}
	return resp
}

func invoke(ctx context.Context, rt *route.Route, req *wire.Request) (body string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.Debug(ctx, "handler panicked", slog.String("stack", string(debug.Stack())))
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	args, err := rt.Bind(req)
	if err != nil {
		return "", err
	}
	return rt.Handler(ctx, args)
}
