// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

//go:build linux

package systemd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"slices"
	"strconv"
	"strings"

	"go.astrophena.name/tinyweb/cli"
)

// listenFDsStart is SD_LISTEN_FDS_START.
const listenFDsStart = 3

func socket(ctx context.Context, name string) (net.Listener, error) {
	names, err := listenFDNames(cli.GetEnv(ctx).Getenv)
	if err != nil {
		return nil, err
	}
	i := slices.Index(names, name)
	if i < 0 {
		return nil, fmt.Errorf("systemd: socket name %q not found in LISTEN_FDNAMES", name)
	}

	fd := listenFDsStart + i
	f := os.NewFile(uintptr(fd), name)
	if f == nil {
		return nil, fmt.Errorf("systemd: bad file descriptor %d", fd)
	}
	return net.FileListener(f)
}

// listenFDNames validates the socket activation variables and returns the
// name of every passed descriptor, in order.
func listenFDNames(getenv func(string) string) ([]string, error) {
	rawPID := getenv("LISTEN_PID")
	if rawPID == "" {
		return nil, errors.New("systemd: LISTEN_PID not set, not running under systemd socket activation?")
	}
	pid, err := strconv.Atoi(rawPID)
	if err != nil {
		return nil, fmt.Errorf("systemd: invalid LISTEN_PID: %w", err)
	}
	if pid != os.Getpid() {
		return nil, fmt.Errorf("systemd: LISTEN_PID (%d) does not match current PID (%d)", pid, os.Getpid())
	}

	n, err := strconv.Atoi(getenv("LISTEN_FDS"))
	if err != nil {
		return nil, fmt.Errorf("systemd: invalid LISTEN_FDS: %w", err)
	}
	if n < 1 {
		return nil, errors.New("systemd: no file descriptors received")
	}

	rawNames := getenv("LISTEN_FDNAMES")
	if rawNames == "" {
		return nil, errors.New("systemd: LISTEN_FDNAMES not set")
	}
	names := strings.Split(rawNames, ":")
	if len(names) != n {
		return nil, fmt.Errorf("systemd: got %d names in LISTEN_FDNAMES for %d descriptors", len(names), n)
	}
	return names, nil
}
