// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

//go:build !linux

package systemd

import (
	"context"
	"errors"
	"net"
)

// Notify does nothing outside of Linux.
func Notify(context.Context, State) {}

// Watchdog does nothing outside of Linux.
func Watchdog(context.Context) {}

func socket(context.Context, string) (net.Listener, error) {
	return nil, errors.New("systemd: socket activation is only supported on Linux")
}
