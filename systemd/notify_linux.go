// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

//go:build linux

package systemd

import (
	"context"
	"log/slog"
	"net"
	"strconv"
	"time"

	"go.astrophena.name/tinyweb/cli"
	"go.astrophena.name/tinyweb/logger"
)

// Notify sends state to the service manager if NOTIFY_SOCKET is set.
// Failures are logged.
func Notify(ctx context.Context, state State) {
	name := cli.GetEnv(ctx).Getenv("NOTIFY_SOCKET")
	if name == "" {
		return
	}
	if err := notify(name, state); err != nil {
		logger.Error(ctx, "sd_notify failed", slog.String("state", string(state)), slog.Any("err", err))
	}
}

func notify(name string, state State) error {
	conn, err := net.DialUnix("unixgram", nil, &net.UnixAddr{Name: name, Net: "unixgram"})
	if err != nil {
		return err
	}
	defer conn.Close()
	_, err = conn.Write([]byte(state))
	return err
}

// Watchdog pings the service manager at half the WATCHDOG_USEC interval
// until ctx is done. It returns immediately if the watchdog is not enabled.
func Watchdog(ctx context.Context) {
	interval := watchdogInterval(cli.GetEnv(ctx).Getenv)
	if interval <= 0 {
		return
	}
	go func() {
		t := time.NewTicker(interval / 2)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				Notify(ctx, watchdog)
			case <-ctx.Done():
				return
			}
		}
	}()
}

func watchdogInterval(getenv func(string) string) time.Duration {
	usec, err := strconv.Atoi(getenv("WATCHDOG_USEC"))
	if err != nil || usec <= 0 {
		return 0
	}
	return time.Duration(usec) * time.Microsecond
}
