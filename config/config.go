// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package config reads server settings from the environment.
package config

import (
	"context"
	"log/slog"
	"net"
	"strconv"

	"go.astrophena.name/tinyweb/cli"
	"go.astrophena.name/tinyweb/logger"
)

// Defaults used when the environment does not say otherwise.
const (
	DefaultPort    = 8080
	DefaultWorkers = 10
)

// Config is the process configuration.
type Config struct {
	// Host is the interface to listen on. Empty means all interfaces.
	Host string
	// Port is in the range 1..65535.
	Port int
	// Workers is the number of connections handled concurrently.
	Workers int
	// RedisAddr, when set, selects the Redis-backed counter store.
	RedisAddr string
}

// Load reads the configuration from the environment in ctx (see
// [cli.GetEnv]). Invalid values are logged and replaced with defaults.
func Load(ctx context.Context) Config {
	getenv := cli.GetEnv(ctx).Getenv
	return Config{
		Host:      getenv("HOST"),
		Port:      intVar(ctx, getenv, "PORT", DefaultPort, 65535),
		Workers:   intVar(ctx, getenv, "WORKERS", DefaultWorkers, 0),
		RedisAddr: getenv("REDIS_ADDR"),
	}
}

// Addr returns the address to listen on in host:port form.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// intVar parses the variable key as an integer in 1..upper (unbounded when
// upper is zero), falling back to def.
func intVar(ctx context.Context, getenv func(string) string, key string, def, upper int) int {
	s := getenv(key)
	if s == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 || (upper > 0 && n > upper) {
		logger.Warn(ctx, "ignoring invalid environment variable",
			slog.String("key", key),
			slog.String("value", s),
			slog.Int("default", def),
		)
		return def
	}
	return n
}
