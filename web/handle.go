// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.astrophena.name/tinyweb/route"
	"go.astrophena.name/tinyweb/wire"
)

// Validatable is implemented by request bodies that can check themselves.
// See [DecodeJSON].
type Validatable interface {
	Validate() error
}

// HandleJSON adapts logic to a [route.HandlerFunc] whose result is the
// JSON encoding of the value logic returns. Errors from logic are returned
// unchanged, so the dispatcher answers them with a 500.
func HandleJSON[Resp any](logic func(ctx context.Context, args route.Args) (Resp, error)) route.HandlerFunc {
	return func(ctx context.Context, args route.Args) (string, error) {
		resp, err := logic(ctx, args)
		if err != nil {
			return "", err
		}
		b, err := json.Marshal(resp)
		if err != nil {
			return "", fmt.Errorf("encoding response: %w", err)
		}
		return string(b), nil
	}
}

// ErrNoBody is returned by [DecodeJSON] for a request without a body.
var ErrNoBody = errors.New("request body is required")

// DecodeJSON decodes the body of req into a Req. If Req implements
// [Validatable], it is validated as well.
func DecodeJSON[Req any](req *wire.Request) (Req, error) {
	var v Req
	if req == nil || !req.HasBody() {
		return v, ErrNoBody
	}
	if err := json.Unmarshal(req.Body, &v); err != nil {
		return v, fmt.Errorf("decoding request body: %w", err)
	}
	if vv, ok := any(v).(Validatable); ok {
		if err := vv.Validate(); err != nil {
			return v, fmt.Errorf("validation failed: %w", err)
		}
	}
	return v, nil
}
