// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package route maps request paths to handlers.
//
// Controllers describe their endpoints with a [Mapping]; a [Registry] holds
// one exact-match table per method and is read concurrently by the server
// once registration is done.
package route

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/go4org/hashtriemap"

	"go.astrophena.name/tinyweb/logger"
	"go.astrophena.name/tinyweb/wire"
)

// Supported methods.
const (
	MethodGet  = "GET"
	MethodPost = "POST"
)

// HandlerFunc handles a request given its bound arguments. An empty result
// leaves the response body unset.
type HandlerFunc func(ctx context.Context, args Args) (string, error)

// Endpoint describes one handler of a controller.
type Endpoint struct {
	Method  string
	Path    string // relative to the controller's base path
	Params  []Param
	Handler HandlerFunc
	// ContentType, if set, is used for every non-empty result instead of
	// guessing from the body.
	ContentType string
}

// Get returns a GET endpoint.
func Get(path string, h HandlerFunc, params ...Param) Endpoint {
	return Endpoint{Method: MethodGet, Path: path, Params: params, Handler: h}
}

// Post returns a POST endpoint.
func Post(path string, h HandlerFunc, params ...Param) Endpoint {
	return Endpoint{Method: MethodPost, Path: path, Params: params, Handler: h}
}

// Produces returns a copy of e with its ContentType set.
func (e Endpoint) Produces(contentType string) Endpoint {
	e.ContentType = contentType
	return e
}

// Mapping is what a controller exposes.
type Mapping struct {
	BasePath  string
	Endpoints []Endpoint
}

// Controller is a value whose endpoints can be registered. All of its
// handlers share the controller value; shared mutable state must be
// synchronized by the controller.
type Controller interface {
	Mapping() Mapping
}

// ErrInvalidController is wrapped by errors returned from [Registry.Register].
var ErrInvalidController = errors.New("invalid controller")

// Route is a registered endpoint.
type Route struct {
	Method      string
	Path        string // full path
	Params      []Param
	Handler     HandlerFunc
	ContentType string
	Controller  string // controller type, for logs
}

// Bind resolves the route's arguments from req.
func (r *Route) Bind(req *wire.Request) (Args, error) {
	args := make(Args, len(r.Params))
	for i, p := range r.Params {
		v, err := p.bind(req)
		if err != nil {
			return nil, err
		}
		args[i] = v
	}
	return args, nil
}

// Registry holds the registered routes. The zero value is ready to use.
//
// Register must not be called concurrently with Lookup.
type Registry struct {
	get  hashtriemap.HashTrieMap[string, *Route]
	post hashtriemap.HashTrieMap[string, *Route]
}

func (r *Registry) table(method string) *hashtriemap.HashTrieMap[string, *Route] {
	switch method {
	case MethodGet:
		return &r.get
	case MethodPost:
		return &r.post
	}
	return nil
}

// Register adds every endpoint of c. Either all endpoints are added or,
// when one of them is invalid, none is.
//
// A path registered twice for the same method keeps the later handler.
func (r *Registry) Register(ctx context.Context, c Controller) error {
	if c == nil {
		return fmt.Errorf("%w: nil controller", ErrInvalidController)
	}
	var (
		m      = c.Mapping()
		name   = fmt.Sprintf("%T", c)
		routes = make([]*Route, 0, len(m.Endpoints))
	)
	for _, e := range m.Endpoints {
		rt, err := newRoute(name, m.BasePath, e)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidController, name, err)
		}
		routes = append(routes, rt)
	}

	for _, rt := range routes {
		if prev, loaded := r.table(rt.Method).Swap(rt.Path, rt); loaded {
			logger.Warn(ctx, "route registered twice, replacing previous handler",
				slog.String("method", rt.Method),
				slog.String("path", rt.Path),
				slog.String("previous", prev.Controller),
				slog.String("controller", rt.Controller),
			)
		}
		logger.Debug(ctx, "registered route",
			slog.String("method", rt.Method),
			slog.String("path", rt.Path),
			slog.String("controller", rt.Controller),
		)
	}
	return nil
}

func newRoute(controller, base string, e Endpoint) (*Route, error) {
	if e.Method != MethodGet && e.Method != MethodPost {
		return nil, fmt.Errorf("unsupported method %q for %q", e.Method, base+e.Path)
	}
	if e.Handler == nil {
		return nil, fmt.Errorf("nil handler for %s %q", e.Method, base+e.Path)
	}
	path := base + e.Path
	if path == "" {
		return nil, fmt.Errorf("empty path for %s endpoint", e.Method)
	}
	for _, p := range e.Params {
		if err := p.validate(); err != nil {
			return nil, fmt.Errorf("%s %q: %v", e.Method, path, err)
		}
	}
	return &Route{
		Method:      e.Method,
		Path:        path,
		Params:      slices.Clone(e.Params),
		Handler:     e.Handler,
		ContentType: e.ContentType,
		Controller:  controller,
	}, nil
}

// Lookup returns the route registered for method and path. Only GET and
// POST have tables; any other method finds nothing.
func (r *Registry) Lookup(method, path string) (*Route, bool) {
	t := r.table(method)
	if t == nil {
		return nil, false
	}
	return t.Load(path)
}

// Routes returns every registered route ordered by path, then method.
func (r *Registry) Routes() []*Route {
	var routes []*Route
	collect := func(_ string, rt *Route) bool {
		routes = append(routes, rt)
		return true
	}
	r.get.Range(collect)
	r.post.Range(collect)
	slices.SortFunc(routes, func(a, b *Route) int {
		return cmp.Or(strings.Compare(a.Path, b.Path), strings.Compare(a.Method, b.Method))
	})
	return routes
}
