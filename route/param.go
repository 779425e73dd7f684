// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package route

import (
	"errors"
	"fmt"
	"strconv"

	"go.astrophena.name/tinyweb/wire"
)

// Type is the Go type a query parameter is converted to.
type Type int

// Supported parameter types.
const (
	String  Type = iota // string
	Int                 // int, 32-bit range
	Int64               // int64
	Float64             // float64
	Bool                // bool
)

func (t Type) String() string {
	switch t {
	case String:
		return "string"
	case Int:
		return "int"
	case Int64:
		return "int64"
	case Float64:
		return "float64"
	case Bool:
		return "bool"
	}
	return "Type(" + strconv.Itoa(int(t)) + ")"
}

type converter func(string) (any, error)

func (t Type) converter() converter {
	switch t {
	case Int:
		return func(s string) (any, error) {
			n, err := strconv.ParseInt(s, 10, 32)
			return int(n), err
		}
	case Int64:
		return func(s string) (any, error) { return strconv.ParseInt(s, 10, 64) }
	case Float64:
		return func(s string) (any, error) { return strconv.ParseFloat(s, 64) }
	case Bool:
		return func(s string) (any, error) { return strconv.ParseBool(s) }
	case String:
		return func(s string) (any, error) { return s, nil }
	}
	return nil
}

// ErrBadParam is wrapped by errors about query values that could not be
// converted to the declared type.
var ErrBadParam = errors.New("bad parameter")

// Param describes one positional argument of a handler.
type Param struct {
	// Name is the query parameter name. It is empty for the raw request.
	Name string
	// Type is the declared type of a query parameter.
	Type Type

	raw        bool
	def        string
	hasDefault bool
	conv       converter
}

// RawRequest returns a Param that binds the parsed request itself.
func RawRequest() Param { return Param{raw: true} }

// Query returns a Param that binds the query parameter name converted to t.
func Query(name string, t Type) Param {
	return Param{Name: name, Type: t, conv: t.converter()}
}

// Default returns a copy of p that uses value when the query parameter is
// absent. An empty value declares no default.
func (p Param) Default(value string) Param {
	p.def = value
	p.hasDefault = value != ""
	return p
}

func (p Param) String() string {
	if p.raw {
		return "request"
	}
	if p.hasDefault {
		return fmt.Sprintf("%s %s = %q", p.Name, p.Type, p.def)
	}
	return p.Name + " " + p.Type.String()
}

func (p Param) validate() error {
	if p.raw {
		return nil
	}
	if p.Name == "" {
		return errors.New("query parameter without a name")
	}
	if p.conv == nil {
		return fmt.Errorf("parameter %q has unsupported type %v", p.Name, p.Type)
	}
	return nil
}

func (p Param) bind(req *wire.Request) (any, error) {
	if p.raw {
		return req, nil
	}
	v, ok := req.Param(p.Name)
	if !ok && p.hasDefault {
		v, ok = p.def, true
	}
	if !ok {
		return nil, nil
	}
	val, err := p.conv(v)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrBadParam, p.Name, err)
	}
	return val, nil
}

// Args holds the values bound for a handler, one per declared Param and in
// the same order. A nil entry is an absent query parameter.
type Args []any

func arg[T any](a Args, i int) (T, bool) {
	var zero T
	if i < 0 || i >= len(a) {
		return zero, false
	}
	v, ok := a[i].(T)
	return v, ok
}

// Request returns argument i as the raw request.
func (a Args) Request(i int) (*wire.Request, bool) { return arg[*wire.Request](a, i) }

// String returns argument i as a string.
func (a Args) String(i int) (string, bool) { return arg[string](a, i) }

// Int returns argument i as an int.
func (a Args) Int(i int) (int, bool) { return arg[int](a, i) }

// Int64 returns argument i as an int64.
func (a Args) Int64(i int) (int64, bool) { return arg[int64](a, i) }

// Float64 returns argument i as a float64.
func (a Args) Float64(i int) (float64, bool) { return arg[float64](a, i) }

// Bool returns argument i as a bool.
func (a Args) Bool(i int) (bool, bool) { return arg[bool](a, i) }
