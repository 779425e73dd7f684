// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package ginadapter

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.astrophena.name/tinyweb/logger"
	"go.astrophena.name/tinyweb/route"
	"go.astrophena.name/tinyweb/testutil"
	"go.astrophena.name/tinyweb/web"
	"go.astrophena.name/tinyweb/wire"
)

type testController route.Mapping

func (c testController) Mapping() route.Mapping { return route.Mapping(c) }

func testRegistry(t *testing.T) *route.Registry {
	t.Helper()
	reg := new(route.Registry)
	for _, c := range []route.Controller{
		web.System{},
		testController{
			Endpoints: []route.Endpoint{
				route.Get("/greeting", func(_ context.Context, args route.Args) (string, error) {
					name, _ := args.String(0)
					return "Hello, " + name + "!", nil
				}, route.Query("name", route.String).Default("World")),
				route.Post("/echo", func(_ context.Context, args route.Args) (string, error) {
					req, _ := args.Request(0)
					return req.Get("x-tag") + ":" + string(req.Body), nil
				}, route.RawRequest()),
				route.Get("/user/:id", func(context.Context, route.Args) (string, error) {
					return "literal", nil
				}),
			},
		},
	} {
		if err := reg.Register(context.Background(), c); err != nil {
			t.Fatal(err)
		}
	}
	return reg
}

func TestEngine(t *testing.T) {
	e := New(testRegistry(t))

	cases := map[string]struct {
		method, target string
		body           string
		header         map[string]string
		wantStatus     int
		wantBody       string
		wantType       string
	}{
		"health": {
			method: "GET", target: "/health",
			wantStatus: 200, wantBody: `{"status":"ok"}`, wantType: wire.JSONContentType,
		},
		"query": {
			method: "GET", target: "/greeting?name=Jos%C3%A9",
			wantStatus: 200, wantBody: "Hello, José!", wantType: wire.DefaultContentType,
		},
		"post body and header": {
			method: "POST", target: "/echo", body: "hi", header: map[string]string{"X-Tag": "t1"},
			wantStatus: 200, wantBody: "t1:hi",
		},
		"literal colon path is not a parameter": {
			method: "GET", target: "/user/:id",
			wantStatus: 200, wantBody: "literal",
		},
		"colon path does not match other values": {
			method: "GET", target: "/user/7",
			wantStatus: 404, wantBody: "<html><body><h1>404 - Page Not Found</h1></body></html>",
		},
		"not found": {
			method: "GET", target: "/missing",
			wantStatus: 404, wantBody: "<html><body><h1>404 - Page Not Found</h1></body></html>",
			wantType: wire.DefaultContentType,
		},
		"no trailing slash redirect": {
			method: "GET", target: "/health/",
			wantStatus: 404,
		},
		"wrong method": {
			method: "PUT", target: "/health",
			wantStatus: 404,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			var body io.Reader
			if tc.body != "" {
				body = strings.NewReader(tc.body)
			}
			r := httptest.NewRequest(tc.method, tc.target, body)
			for k, v := range tc.header {
				r.Header.Set(k, v)
			}
			w := httptest.NewRecorder()
			e.ServeHTTP(w, r)

			testutil.AssertEqual(t, w.Code, tc.wantStatus)
			if tc.wantBody != "" {
				testutil.AssertEqual(t, w.Body.String(), tc.wantBody)
			}
			if tc.wantType != "" {
				testutil.AssertEqual(t, w.Header().Get("Content-Type"), tc.wantType)
			}
			testutil.AssertContains(t, w.Header().Get("Server"), "tinyweb/")
		})
	}
}

func TestToWire(t *testing.T) {
	r := httptest.NewRequest("POST", "http://example.com/a%20b?q=1&q=2&bad=%zz", strings.NewReader("body"))
	r.Header.Add("X-Multi", "first")
	r.Header.Add("X-Multi", "second")

	req, err := toWire(r)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, req.Method, "POST")
	testutil.AssertEqual(t, req.Path, "/a%20b")
	testutil.AssertEqual(t, req.Version, "HTTP/1.1")
	testutil.AssertEqual(t, req.Query, map[string]string{"q": "2"})
	testutil.AssertEqual(t, req.Get("x-multi"), "second")
	testutil.AssertEqual(t, req.Get("Host"), "example.com")
	testutil.AssertEqual(t, req.Get("Content-Length"), "4")
	testutil.AssertEqual(t, string(req.Body), "body")
}

func TestServer(t *testing.T) {
	ln, err := net.Listen("tcp", "localhost:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	var logs bytes.Buffer
	l := logger.New(nil)
	l.Attach(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: l.Level}))
	ctx, cancel := context.WithCancel(logger.Put(context.Background(), l))
	defer cancel()

	ready := make(chan struct{})
	s := &Server{Addr: addr, Routes: testRegistry(t), Ready: func() { close(ready) }}
	errCh := make(chan error, 1)
	go func() { errCh <- s.ListenAndServe(ctx) }()

	select {
	case err := <-errCh:
		t.Fatalf("ListenAndServe: %v", err)
	case <-ready:
	}

	resp, err := http.Get(fmt.Sprintf("http://%s/greeting?name=Ana", addr))
	if err != nil {
		t.Fatal(err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, resp.StatusCode, 200)
	testutil.AssertEqual(t, string(body), "Hello, Ana!")

	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Fatalf("ListenAndServe returned an error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}

	out := logs.String()
	testutil.AssertContains(t, out, "engine=gin")
	testutil.AssertContains(t, out, "msg=\"handled request\"")
	testutil.AssertContains(t, out, "path=/greeting status=200")
}

func TestServerNoAddr(t *testing.T) {
	if err := new(Server).ListenAndServe(context.Background()); err != errNoAddr {
		t.Fatalf("want %v, got %v", errNoAddr, err)
	}
}
