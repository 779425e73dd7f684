// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import (
	"cmp"
	"context"
	_ "embed"
	"flag"
	"fmt"
	"io"
	"log/slog"

	"go.astrophena.name/tinyweb/cli"
	"go.astrophena.name/tinyweb/config"
	"go.astrophena.name/tinyweb/internal/controllers"
	"go.astrophena.name/tinyweb/internal/ginadapter"
	"go.astrophena.name/tinyweb/logger"
	"go.astrophena.name/tinyweb/route"
	"go.astrophena.name/tinyweb/store"
	"go.astrophena.name/tinyweb/web"
)

//go:embed doc.go
var doc []byte

func main() {
	cli.SetDocComment(doc)
	cli.Main(new(app))
}

type app struct {
	addr    string
	workers int
	gin     bool
	verbose bool

	ready func() // used in tests
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.StringVar(&a.addr, "addr", "", "Listen on `host:port` or sd-socket:<name>. Overrides HOST and PORT.")
	fs.IntVar(&a.workers, "workers", 0, "Serve `n` connections at a time. Overrides WORKERS.")
	fs.BoolVar(&a.gin, "gin", false, "Serve with gin and net/http instead of the built-in server.")
	fs.BoolVar(&a.verbose, "v", false, "Log debug messages.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	if len(env.Args) > 0 {
		return fmt.Errorf("%w: unexpected arguments %q", cli.ErrInvalidArgs, env.Args)
	}
	if a.workers < 0 {
		return fmt.Errorf("%w: -workers must be positive", cli.ErrInvalidArgs)
	}

	l := logger.New(nil)
	if a.verbose {
		l.Level.Set(slog.LevelDebug)
	}
	l.Attach(logger.NewConsoleHandler(env.Stderr, l.Level))
	ctx = logger.Put(ctx, l)

	cfg := config.Load(ctx)
	counter, err := newCounter(ctx, cfg.RedisAddr)
	if err != nil {
		return err
	}
	if c, ok := counter.(io.Closer); ok {
		defer c.Close()
	}

	reg := new(route.Registry)
	for _, c := range append([]route.Controller{web.System{}}, controllers.All(counter)...) {
		if err := reg.Register(ctx, c); err != nil {
			return err
		}
	}

	addr := cmp.Or(a.addr, cfg.Addr())
	if a.gin {
		s := &ginadapter.Server{Addr: addr, Routes: reg, Ready: a.ready}
		return s.ListenAndServe(ctx)
	}
	s := &web.Server{
		Addr:    addr,
		Routes:  reg,
		Workers: cmp.Or(a.workers, cfg.Workers),
		Ready:   a.ready,
	}
	return s.ListenAndServe(ctx)
}

func newCounter(ctx context.Context, redisAddr string) (store.Counter, error) {
	if redisAddr == "" {
		return new(store.Memory), nil
	}
	r, err := store.NewRedis(ctx, redisAddr)
	if err != nil {
		return nil, err
	}
	logger.Info(ctx, "keeping counters in redis", slog.String("addr", redisAddr))
	return r, nil
}
