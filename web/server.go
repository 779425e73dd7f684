// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"go.astrophena.name/tinyweb/logger"
	"go.astrophena.name/tinyweb/route"
	"go.astrophena.name/tinyweb/syncx"
	"go.astrophena.name/tinyweb/systemd"
	"go.astrophena.name/tinyweb/wire"
)

// DefaultWorkers is the number of workers used when Server.Workers is not
// positive.
const DefaultWorkers = 10

// Server accepts TCP connections and answers one request on each.
//
// Fields of Server must not be modified after [Server.ListenAndServe] is
// called.
type Server struct {
	// Addr is the address to listen on, in the form "host:port", or
	// "sd-socket:<name>" to use a socket passed by systemd.
	Addr string
	// Routes is the registry requests are dispatched with. A nil registry
	// answers every request with 404.
	Routes *route.Registry
	// Workers is the number of connections served at the same time. Accepted
	// connections beyond that wait in an unbounded queue.
	Workers int
	// Ready specifies an optional function to be called when the server is
	// accepting connections.
	Ready func()

	running atomic.Bool

	mu  sync.Mutex
	ln  net.Listener
	ctx context.Context // of ListenAndServe, for logging from Shutdown
}

var (
	errNoAddr = errors.New("server.Addr is empty")
	errListen = errors.New("failed to listen")
)

// Maximum delay between accept retries.
const maxAcceptDelay = time.Second

// ListenAndServe listens on s.Addr and serves connections until
// [Server.Shutdown] is called or ctx is canceled. It returns nil after a
// shutdown. Requests in flight at that moment are not waited for, but
// they keep running with a context that is not canceled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s.Addr == "" {
		return errNoAddr
	}
	l, err := systemd.Listen(ctx, s.Addr)
	if err != nil {
		return fmt.Errorf("%w: %v", errListen, err)
	}

	s.mu.Lock()
	s.ln, s.ctx = l, ctx
	s.mu.Unlock()
	s.running.Store(true)

	var (
		pool = syncx.NewPool(positiveOr(s.Workers, DefaultWorkers))
		d    = &Dispatcher{Routes: s.Routes}
		addr = l.Addr().String()
	)

	logger.Info(ctx, "listening",
		slog.String("addr", "http://"+addr),
		slog.Int("workers", pool.Size()),
	)
	if s.Routes != nil {
		for _, rt := range s.Routes.Routes() {
			logger.Info(ctx, "serving route",
				slog.String("method", rt.Method),
				slog.String("path", rt.Path),
				slog.String("controller", rt.Controller),
			)
		}
	}

	systemd.Notify(ctx, systemd.Ready)
	systemd.Notify(ctx, systemd.Status("serving on "+addr))
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()
	systemd.Watchdog(wctx)

	stop := context.AfterFunc(ctx, func() { s.Shutdown() })
	defer stop()

	if s.Ready != nil {
		s.Ready()
	}

	// Accepted connections run to completion after ctx is cancelled.
	connCtx := context.WithoutCancel(ctx)
	var delay time.Duration
	for {
		conn, err := l.Accept()
		if err != nil {
			if !s.running.Load() || errors.Is(err, net.ErrClosed) {
				s.running.Store(false)
				return nil
			}
			delay = min(max(2*delay, 5*time.Millisecond), maxAcceptDelay)
			logger.Error(ctx, "accept failed",
				slog.Any("err", err),
				slog.Duration("retry_in", delay),
			)
			time.Sleep(delay)
			continue
		}
		delay = 0
		pool.Go(func() { s.serveConn(connCtx, d, conn) })
	}
}

func (s *Server) serveConn(ctx context.Context, d *Dispatcher, conn net.Conn) {
	defer conn.Close()
	start := time.Now()
	remote := slog.String("remote", conn.RemoteAddr().String())

	req, err := wire.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		logger.Error(ctx, "reading request failed", remote, slog.Any("err", err))
		return
	}
	logger.Debug(ctx, "received request",
		remote,
		slog.String("method", req.Method),
		slog.String("path", req.Path),
	)

	resp := d.Dispatch(ctx, req)
	resp.Header.Set("Connection", "close")
	if err := resp.Write(conn); err != nil {
		logger.Error(ctx, "writing response failed", remote, slog.Any("err", err))
		return
	}

	logger.Info(ctx, "handled request",
		remote,
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.Int("status", resp.Status),
		slog.Duration("duration", time.Since(start)),
	)
}

// Shutdown stops accepting connections and makes ListenAndServe return.
// It is safe to call more than once and before the server started; only
// the first call after startup has an effect.
func (s *Server) Shutdown() error {
	if !s.running.CompareAndSwap(true, false) {
		return nil
	}
	s.mu.Lock()
	l, ctx := s.ln, s.ctx
	s.mu.Unlock()

	logger.Info(ctx, "shutting down")
	systemd.Notify(ctx, systemd.Stopping)
	if err := l.Close(); err != nil {
		logger.Error(ctx, "closing listener failed", slog.Any("err", err))
	}
	return nil
}

// Running reports whether the server is accepting connections.
func (s *Server) Running() bool { return s.running.Load() }

// ListenAddr returns the address the server listens on, or nil before
// ListenAndServe has bound it.
func (s *Server) ListenAddr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ln == nil {
		return nil
	}
	return s.ln.Addr()
}

func positiveOr(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}
