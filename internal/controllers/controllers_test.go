// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package controllers

import (
	"bufio"
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"go.astrophena.name/tinyweb/route"
	"go.astrophena.name/tinyweb/store"
	"go.astrophena.name/tinyweb/testutil"
	"go.astrophena.name/tinyweb/web"
	"go.astrophena.name/tinyweb/wire"
)

type fixture struct {
	d       *web.Dispatcher
	counter *store.Memory
	api     *API
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	counter := new(store.Memory)
	f := &fixture{d: &web.Dispatcher{Routes: new(route.Registry)}, counter: counter}
	for _, c := range All(counter) {
		if api, ok := c.(*API); ok {
			f.api = api
		}
		if err := f.d.Routes.Register(context.Background(), c); err != nil {
			t.Fatal(err)
		}
	}
	return f
}

// do sends a request through the codec and the dispatcher.
func (f *fixture) do(t *testing.T, method, target, body string) *wire.Response {
	t.Helper()
	raw := fmt.Sprintf("%s %s HTTP/1.1\r\n", method, target)
	if body != "" {
		raw += fmt.Sprintf("Content-Type: application/json\r\nContent-Length: %d\r\n", len(body))
	}
	raw += "\r\n" + body
	req, err := wire.ReadRequest(bufio.NewReader(strings.NewReader(raw)))
	if err != nil {
		t.Fatal(err)
	}
	return f.d.Dispatch(context.Background(), req)
}

func TestHelloAndGreeting(t *testing.T) {
	f := newFixture(t)

	cases := map[string]struct {
		target string
		want   string
	}{
		"hello":            {target: "/hello", want: "Hello Docker!"},
		"default greeting": {target: "/greeting", want: "Hello, World!"},
		"named greeting":   {target: "/greeting?name=Ana", want: "Hello, Ana!"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp := f.do(t, "GET", tc.target, "")
			testutil.AssertEqual(t, resp.Status, 200)
			testutil.AssertEqual(t, string(resp.Body), tc.want)
			testutil.AssertEqual(t, resp.Header.Get("Content-Type"), wire.DefaultContentType)
		})
	}

	n, err := f.counter.Get(context.Background(), greetingsKey)
	if err != nil {
		t.Fatal(err)
	}
	testutil.AssertEqual(t, n, int64(2))
}

func TestAPIUser(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "GET", "/api/user?id=42", "")
	testutil.AssertEqual(t, resp.Status, 200)
	testutil.AssertEqual(t, resp.Header.Get("Content-Type"), wire.JSONContentType)
	testutil.AssertEqual(t, string(resp.Body), `{"id":42,"name":"User 42","email":"user42@example.com","active":true}`)

	resp = f.do(t, "GET", "/api/user", "")
	testutil.AssertEqual(t, resp.Status, 500)
	testutil.AssertContains(t, string(resp.Body), "id is required")

	resp = f.do(t, "GET", "/api/user?id=forty", "")
	testutil.AssertEqual(t, resp.Status, 500)
	testutil.AssertContains(t, string(resp.Body), "bad parameter")
}

func TestAPIUsers(t *testing.T) {
	f := newFixture(t)

	cases := map[string]struct {
		target     string
		wantStatus int
		wantTotal  int
	}{
		"default limit": {target: "/api/users", wantStatus: 200, wantTotal: 5},
		"limit":         {target: "/api/users?limit=2", wantStatus: 200, wantTotal: 2},
		"zero":          {target: "/api/users?limit=0", wantStatus: 200, wantTotal: 0},
		"negative":      {target: "/api/users?limit=-3", wantStatus: 200, wantTotal: 0},
		"too many":      {target: "/api/users?limit=1000000", wantStatus: 500},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp := f.do(t, "GET", tc.target, "")
			testutil.AssertEqual(t, resp.Status, tc.wantStatus)
			if tc.wantStatus != 200 {
				return
			}
			list := testutil.UnmarshalJSON[UserList](t, resp.Body)
			testutil.AssertEqual(t, list.Total, tc.wantTotal)
			testutil.AssertEqual(t, len(list.Users), tc.wantTotal)
			for i, u := range list.Users {
				testutil.AssertEqual(t, u, demoUser(int64(i+1)))
			}
		})
	}
}

func TestAPICreateUser(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "POST", "/api/users", `{"name":"Ana","email":"ana@example.com"}`)
	testutil.AssertEqual(t, resp.Status, 200)
	testutil.AssertEqual(t, testutil.UnmarshalJSON[User](t, resp.Body), User{ID: 1, Name: "Ana", Email: "ana@example.com", Active: true})

	resp = f.do(t, "POST", "/api/users", `{"name":"Bo","email":"bo@example.com"}`)
	testutil.AssertEqual(t, testutil.UnmarshalJSON[User](t, resp.Body).ID, int64(2))

	for name, body := range map[string]string{
		"no body":       "",
		"bad json":      "{",
		"no name":       `{"email":"x@example.com"}`,
		"invalid email": `{"name":"X","email":"nope"}`,
	} {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, f.do(t, "POST", "/api/users", body).Status, 500)
		})
	}
}

func TestAPIGreeting(t *testing.T) {
	f := newFixture(t)

	cases := map[string]struct {
		target string
		want   apiGreeting
	}{
		"default": {target: "/api/greeting", want: apiGreeting{Message: "Hello from the custom API!", Language: "en"}},
		"spanish": {target: "/api/greeting?lang=es", want: apiGreeting{Message: "Hola desde el API personalizado!", Language: "es"}},
		"french":  {target: "/api/greeting?lang=FR", want: apiGreeting{Message: "Bonjour depuis l'API personnalisé!", Language: "FR"}},
		"unknown": {target: "/api/greeting?lang=de", want: apiGreeting{Message: "Hello from the custom API!", Language: "de"}},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			resp := f.do(t, "GET", tc.target, "")
			testutil.AssertEqual(t, resp.Status, 200)
			testutil.AssertEqual(t, testutil.UnmarshalJSON[apiGreeting](t, resp.Body), tc.want)
		})
	}
}

func TestAPIStats(t *testing.T) {
	f := newFixture(t)
	f.api.now = func() time.Time { return f.api.started.Add(90 * time.Second) }
	f.do(t, "GET", "/greeting", "")

	resp := f.do(t, "GET", "/api/stats", "")
	testutil.AssertEqual(t, resp.Status, 200)
	s := testutil.UnmarshalJSON[Stats](t, resp.Body)
	testutil.AssertEqual(t, s.Server.Uptime, int64(90))
	testutil.AssertEqual(t, s.Greetings, int64(1))
	if s.Server.Processors < 1 || s.Server.Goroutines < 1 || s.Server.Memory.Total == 0 {
		t.Fatalf("implausible stats: %+v", s)
	}
}

func TestAPIEcho(t *testing.T) {
	f := newFixture(t)

	resp := f.do(t, "POST", "/api/echo?x=1", `{"ping":true}`)
	testutil.AssertEqual(t, resp.Status, 200)
	testutil.AssertEqual(t, testutil.UnmarshalJSON[echo](t, resp.Body), echo{
		Method:  "POST",
		Path:    "/api/echo",
		Query:   map[string]string{"x": "1"},
		Headers: map[string]string{"content-type": "application/json", "content-length": "13"},
		Body:    `{"ping":true}`,
		Length:  13,
	})

	testutil.AssertEqual(t, f.do(t, "GET", "/api/echo", "").Status, 404)
}
