// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/a-h/templ"

	"go.astrophena.name/tinyweb/logger"
	"go.astrophena.name/tinyweb/wire"
)

// NotFoundPage renders the body of a 404 response.
func NotFoundPage() templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := io.WriteString(w, "<html><body><h1>404 - Page Not Found</h1></body></html>")
		return err
	})
}

// ErrorPage renders the body of a 500 response. msg is escaped.
func ErrorPage(msg string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w,
			"<html><body><h1>500 - Internal Server Error</h1><p>%s</p></body></html>",
			templ.EscapeString(msg),
		)
		return err
	})
}

func render(ctx context.Context, c templ.Component) string {
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		logger.Error(ctx, "rendering page failed", slog.Any("err", err))
	}
	return buf.String()
}

func respondNotFound(ctx context.Context, resp *wire.Response) {
	resp.SetStatus(404, "Not Found")
	resp.SetBody(render(ctx, NotFoundPage()))
}

func respondError(ctx context.Context, resp *wire.Response, req *wire.Request, err error) {
	logger.Error(ctx, "handler failed",
		slog.String("method", req.Method),
		slog.String("path", req.Path),
		slog.Any("err", err),
	)
	resp.SetStatus(500, "Internal Server Error")
	resp.SetContentType(wire.DefaultContentType)
	resp.SetBody(render(ctx, ErrorPage(err.Error())))
}
