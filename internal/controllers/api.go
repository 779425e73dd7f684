// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package controllers

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"runtime"
	"strings"
	"time"

	"go.astrophena.name/tinyweb/route"
	"go.astrophena.name/tinyweb/store"
	"go.astrophena.name/tinyweb/web"
	"go.astrophena.name/tinyweb/wire"
)

// MaxUsers limits the size of a /api/users listing.
const MaxUsers = 1000

// usersKey allocates ids of created users.
const usersKey = "users"

// API serves the JSON endpoints under /api.
type API struct {
	counter store.Counter
	started time.Time
	now     func() time.Time
}

// NewAPI returns an API that reads and updates counters in c.
func NewAPI(c store.Counter) *API {
	return &API{counter: c, started: time.Now(), now: time.Now}
}

// Mapping implements [route.Controller].
func (a *API) Mapping() route.Mapping {
	json := func(e route.Endpoint) route.Endpoint { return e.Produces(wire.JSONContentType) }
	return route.Mapping{
		BasePath: "/api",
		Endpoints: []route.Endpoint{
			json(route.Get("/user", web.HandleJSON(a.user), route.Query("id", route.Int))),
			json(route.Get("/users", web.HandleJSON(a.users), route.Query("limit", route.Int).Default("5"))),
			json(route.Post("/users", web.HandleJSON(a.createUser), route.RawRequest())),
			json(route.Get("/stats", web.HandleJSON(a.stats))),
			json(route.Get("/greeting", web.HandleJSON(a.greeting), route.Query("lang", route.String).Default("en"))),
			json(route.Post("/echo", web.HandleJSON(a.echo), route.RawRequest())),
		},
	}
}

// User is a demo user record.
type User struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Active bool   `json:"active,omitempty"`
}

func demoUser(id int64) User {
	return User{
		ID:    id,
		Name:  fmt.Sprintf("User %d", id),
		Email: fmt.Sprintf("user%d@example.com", id),
	}
}

var errNoID = errors.New("id is required")

func (a *API) user(_ context.Context, args route.Args) (User, error) {
	id, ok := args.Int(0)
	if !ok {
		return User{}, errNoID
	}
	u := demoUser(int64(id))
	u.Active = true
	return u, nil
}

// UserList is the result of GET /api/users.
type UserList struct {
	Users []User `json:"users"`
	Total int    `json:"total"`
}

func (a *API) users(_ context.Context, args route.Args) (UserList, error) {
	limit, _ := args.Int(0)
	if limit > MaxUsers {
		return UserList{}, fmt.Errorf("limit %d is larger than %d", limit, MaxUsers)
	}
	list := UserList{Users: []User{}, Total: max(limit, 0)}
	for i := 1; i <= limit; i++ {
		list.Users = append(list.Users, demoUser(int64(i)))
	}
	return list, nil
}

type newUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (u newUser) Validate() error {
	if strings.TrimSpace(u.Name) == "" {
		return errors.New("name is empty")
	}
	if _, err := mail.ParseAddress(u.Email); err != nil {
		return fmt.Errorf("invalid email %q", u.Email)
	}
	return nil
}

func (a *API) createUser(ctx context.Context, args route.Args) (User, error) {
	req, _ := args.Request(0)
	nu, err := web.DecodeJSON[newUser](req)
	if err != nil {
		return User{}, err
	}
	id, err := a.counter.Incr(ctx, usersKey)
	if err != nil {
		return User{}, fmt.Errorf("allocating user id: %w", err)
	}
	return User{ID: id, Name: nu.Name, Email: nu.Email, Active: true}, nil
}

// Stats is the result of GET /api/stats.
type Stats struct {
	Server struct {
		Uptime     int64 `json:"uptime"` // seconds
		Goroutines int   `json:"goroutines"`
		Processors int   `json:"processors"`
		Memory     struct {
			Total uint64 `json:"total"`
			Used  uint64 `json:"used"`
			Free  uint64 `json:"free"`
		} `json:"memory"`
	} `json:"server"`
	Greetings int64 `json:"greetings"`
}

func (a *API) stats(ctx context.Context, _ route.Args) (Stats, error) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	var s Stats
	s.Server.Uptime = int64(a.now().Sub(a.started) / time.Second)
	s.Server.Goroutines = runtime.NumGoroutine()
	s.Server.Processors = runtime.NumCPU()
	s.Server.Memory.Total = ms.Sys
	s.Server.Memory.Used = ms.HeapAlloc
	s.Server.Memory.Free = ms.Sys - min(ms.HeapAlloc, ms.Sys)

	n, err := a.counter.Get(ctx, greetingsKey)
	if err != nil {
		return Stats{}, fmt.Errorf("reading greetings: %w", err)
	}
	s.Greetings = n
	return s, nil
}

type apiGreeting struct {
	Message  string `json:"message"`
	Language string `json:"language"`
}

var greetings = map[string]string{
	"en": "Hello from the custom API!",
	"es": "Hola desde el API personalizado!",
	"fr": "Bonjour depuis l'API personnalisé!",
}

func (a *API) greeting(_ context.Context, args route.Args) (apiGreeting, error) {
	lang, _ := args.String(0)
	msg, ok := greetings[strings.ToLower(lang)]
	if !ok {
		msg = greetings["en"]
	}
	return apiGreeting{Message: msg, Language: lang}, nil
}

type echo struct {
	Method  string            `json:"method"`
	Path    string            `json:"path"`
	Query   map[string]string `json:"query,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    string            `json:"body"`
	Length  int               `json:"length"`
}

func (a *API) echo(_ context.Context, args route.Args) (echo, error) {
	req, _ := args.Request(0)
	return echo{
		Method:  req.Method,
		Path:    req.Path,
		Query:   req.Query,
		Headers: req.Header,
		Body:    string(req.Body),
		Length:  len(req.Body),
	}, nil
}
