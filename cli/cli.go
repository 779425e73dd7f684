// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package cli bootstraps single-command programs: flag parsing, the
// -version flag, signal handling and an injectable environment.
package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.astrophena.name/tinyweb/logger"
	"go.astrophena.name/tinyweb/syncx"
	"go.astrophena.name/tinyweb/version"
)

// Main runs app until it returns or the process receives SIGINT or SIGTERM,
// in which case the context passed to app is cancelled. A non-nil error is
// printed to stderr and the process exits with status 1.
func Main(app App) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := Run(ctx, app)
	if err == nil || errors.Is(err, ErrExitVersion) {
		return
	}
	if isPrintableError(err) {
		fmt.Fprintln(os.Stderr, err)
	}
	stop()
	os.Exit(1)
}

type unprintableError struct{ err error }

func (e *unprintableError) Error() string { return e.err.Error() }
func (e *unprintableError) Unwrap() error { return e.err }

func isPrintableError(err error) bool {
	if errors.Is(err, flag.ErrHelp) {
		return false
	}
	var ue *unprintableError
	return !errors.As(err, &ue)
}

// ErrExitVersion is returned by [Run] after the -version flag printed the
// build information.
var ErrExitVersion = &unprintableError{errors.New("version flag exit")}

// ErrInvalidArgs is wrapped by errors about bad command-line arguments.
var ErrInvalidArgs = errors.New("invalid arguments")

// App is a runnable program.
type App interface {
	Run(context.Context) error
}

// HasFlags is an App with its own command-line flags.
type HasFlags interface {
	App

	// Flags registers flags with the given FlagSet.
	Flags(*flag.FlagSet)
}

// AppFunc adapts an ordinary function to App.
type AppFunc func(context.Context) error

// Run calls f(ctx).
func (f AppFunc) Run(ctx context.Context) error { return f(ctx) }

type ctxKey int

var envKey ctxKey

// GetEnv returns the Env carried by ctx, or one describing the current
// process if there is none.
func GetEnv(ctx context.Context) *Env {
	if e, ok := ctx.Value(envKey).(*Env); ok {
		return e
	}
	return OSEnv()
}

// WithEnv returns a copy of ctx carrying e.
func WithEnv(ctx context.Context, e *Env) context.Context {
	return context.WithValue(ctx, envKey, e)
}

// Env is everything a program reads from its surroundings. Tests substitute
// their own.
type Env struct {
	Args   []string
	Getenv func(string) string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	logf syncx.Lazy[logger.Logf]
}

// Logf prints a formatted line to e.Stderr.
func (e *Env) Logf(format string, args ...any) {
	e.logf.Get(func() logger.Logf {
		return log.New(e.Stderr, "", 0).Printf
	})(format, args...)
}

// OSEnv returns an Env for the current process.
func OSEnv() *Env {
	return &Env{
		Args:   os.Args[1:],
		Getenv: os.Getenv,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Run parses the flags in the Env from ctx, handles -version and then runs
// app with the remaining arguments.
func Run(ctx context.Context, app App) error {
	env := GetEnv(ctx)

	flags := flag.NewFlagSet(version.CmdName(), flag.ContinueOnError)
	if fa, ok := app.(HasFlags); ok {
		fa.Flags(flags)
	}
	var showVersion bool
	if flags.Lookup("version") == nil {
		flags.BoolVar(&showVersion, "version", false, "Show version.")
	}
	flags.SetOutput(env.Stderr)
	flags.Usage = usage(flags, env.Stderr)

	if err := flags.Parse(env.Args); err != nil {
		// The flag package has already reported it.
		return &unprintableError{err}
	}
	if showVersion {
		fmt.Fprint(env.Stderr, version.Version())
		return ErrExitVersion
	}

	env.Args = flags.Args()
	return app.Run(WithEnv(ctx, env))
}

func usage(flags *flag.FlagSet, w io.Writer) func() {
	return func() {
		if docSrc != nil {
			fmt.Fprintf(w, "%s\n", parseDocComment(docSrc))
		}
		fmt.Fprint(w, "Available flags:\n\n")
		flags.PrintDefaults()
	}
}

var docSrc []byte

// SetDocComment sets the text printed by -help. src is a Go source file
// whose block comment (between lines holding only "/*" and "*/") is used,
// typically embedded with //go:embed doc.go.
func SetDocComment(src []byte) { docSrc = src }

func parseDocComment(src []byte) string {
	var (
		s         = bufio.NewScanner(bytes.NewReader(src))
		b         bytes.Buffer
		inComment bool
	)
	for s.Scan() {
		switch line := s.Text(); {
		case line == "/*":
			inComment = true
		case line == "*/":
			return b.String()
		case inComment:
			b.WriteString(line)
			b.WriteByte('\n')
		}
	}
	return b.String()
}
