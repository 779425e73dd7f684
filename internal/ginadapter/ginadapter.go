// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package ginadapter serves a [route.Registry] with gin and net/http
// instead of the built-in connection server.
//
// Every request still goes through a [web.Dispatcher], so responses are
// the same as those of [web.Server]; only the transport differs, and it
// supports keep-alive.
package ginadapter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"go.astrophena.name/tinyweb/logger"
	"go.astrophena.name/tinyweb/route"
	"go.astrophena.name/tinyweb/systemd"
	"go.astrophena.name/tinyweb/web"
	"go.astrophena.name/tinyweb/wire"
)

func init() { gin.SetMode(gin.ReleaseMode) }

// New returns a gin engine that serves reg. Every registered route with a
// plain path is mounted on the engine; everything else reaches the
// dispatcher through the engine's NoRoute handler.
func New(reg *route.Registry) *gin.Engine {
	e := gin.New()
	e.RedirectTrailingSlash = false
	e.RedirectFixedPath = false
	e.Use(logRequests)

	h := dispatch(&web.Dispatcher{Routes: reg})
	if reg != nil {
		for _, rt := range reg.Routes() {
			if mountable(rt.Path) {
				e.Handle(rt.Method, rt.Path, h)
			}
		}
	}
	e.NoRoute(h)
	return e
}

// mountable reports whether gin accepts path as a static route.
func mountable(path string) bool {
	return strings.HasPrefix(path, "/") && !strings.ContainsAny(path, ":*")
}

func logRequests(c *gin.Context) {
	start := time.Now()
	c.Next()
	logger.Info(c.Request.Context(), "handled request",
		slog.String("remote", c.Request.RemoteAddr),
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.EscapedPath()),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", time.Since(start)),
	)
}

func dispatch(d *web.Dispatcher) gin.HandlerFunc {
	return func(c *gin.Context) {
		req, err := toWire(c.Request)
		if err != nil {
			logger.Error(c.Request.Context(), "reading request failed", slog.Any("err", err))
			c.AbortWithStatus(http.StatusBadRequest)
			return
		}
		resp := d.Dispatch(c.Request.Context(), req)
		h := c.Writer.Header()
		for _, f := range resp.Header {
			h.Set(f.Name, f.Value)
		}
		c.Data(resp.Status, resp.Header.Get("Content-Type"), resp.Body)
	}
}

// toWire converts r to the request the dispatcher expects.
func toWire(r *http.Request) (*wire.Request, error) {
	req := &wire.Request{
		Method:  r.Method,
		Path:    r.URL.EscapedPath(),
		Version: r.Proto,
		Header:  make(map[string]string, len(r.Header)+1),
		Query:   wire.ParseQuery(r.URL.RawQuery),
	}
	for name, values := range r.Header {
		if len(values) > 0 {
			req.Header[strings.ToLower(name)] = strings.TrimSpace(values[len(values)-1])
		}
	}
	if r.Host != "" {
		req.Header["host"] = r.Host
	}
	if r.ContentLength > 0 {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		req.Body = body
		req.Header["content-length"] = strconv.Itoa(len(body))
	}
	return req, nil
}

// Server serves a registry over net/http until its context is canceled.
type Server struct {
	// Addr is "host:port" or "sd-socket:<name>".
	Addr   string
	Routes *route.Registry
	// Ready specifies an optional function to be called when the server is
	// ready to serve requests.
	Ready func()
}

var errNoAddr = errors.New("server.Addr is empty")

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.Addr == "" {
		return errNoAddr
	}
	l, err := systemd.Listen(ctx, s.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	logger.Info(ctx, "listening",
		slog.String("addr", "http://"+l.Addr().String()),
		slog.String("engine", "gin"),
	)

	httpSrv := &http.Server{
		ErrorLog:    log.New(logger.Printf(ctx, slog.LevelError), "", 0),
		Handler:     New(s.Routes),
		BaseContext: func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	errCh := make(chan error, 1)
	go func() {
		if err := httpSrv.Serve(l); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	systemd.Notify(ctx, systemd.Ready)
	if s.Ready != nil {
		s.Ready()
	}

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		logger.Info(ctx, "shutting down")
		systemd.Notify(ctx, systemd.Stopping)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 30*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	}
}
