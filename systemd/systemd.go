// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package systemd lets a server cooperate with systemd: receive its
// listening socket through socket activation and report its state with the
// sd_notify protocol. Outside of systemd every function is a no-op or
// returns an error.
package systemd

import (
	"context"
	"net"
	"strings"
)

// State is an sd_notify assignment.
// See https://www.freedesktop.org/software/systemd/man/latest/sd_notify.html#Well-known%20assignments.
type State string

const (
	// Ready reports that startup finished and connections are accepted.
	Ready State = "READY=1"
	// Stopping reports that the service is shutting down.
	Stopping State = "STOPPING=1"

	watchdog State = "WATCHDOG=1"
)

// Status returns a State carrying a free-form status line shown by
// systemctl status.
func Status(status string) State {
	return State("STATUS=" + strings.ReplaceAll(status, "\n", " "))
}

// SocketPrefix marks a listen address that names a socket passed by
// systemd, as in "sd-socket:http".
const SocketPrefix = "sd-socket:"

// Listen returns a listener for addr. An address starting with
// [SocketPrefix] is looked up with [Socket]; anything else is a TCP
// address.
func Listen(ctx context.Context, addr string) (net.Listener, error) {
	if name, ok := strings.CutPrefix(addr, SocketPrefix); ok {
		return Socket(ctx, name)
	}
	return net.Listen("tcp", addr)
}

// Socket returns the listener systemd passed under name (the
// FileDescriptorName= of the socket unit).
//
// Socket activation is only implemented on Linux.
func Socket(ctx context.Context, name string) (net.Listener, error) {
	return socket(ctx, name)
}
