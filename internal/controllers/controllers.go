// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

// Package controllers contains the demo endpoints served by tinyweb.
package controllers

import (
	"context"
	"fmt"

	"go.astrophena.name/tinyweb/route"
	"go.astrophena.name/tinyweb/store"
)

// All returns every controller, sharing counter.
func All(counter store.Counter) []route.Controller {
	return []route.Controller{
		Hello{},
		&Greeting{Counter: counter},
		NewAPI(counter),
	}
}

// Hello answers GET /hello.
type Hello struct{}

// Mapping implements [route.Controller].
func (Hello) Mapping() route.Mapping {
	return route.Mapping{
		Endpoints: []route.Endpoint{
			route.Get("/hello", func(context.Context, route.Args) (string, error) {
				return "Hello Docker!", nil
			}),
		},
	}
}

// greetingsKey counts the greetings served by /greeting.
const greetingsKey = "greetings"

// Greeting answers GET /greeting?name=... and counts how many times it did.
type Greeting struct {
	Counter store.Counter
}

// Mapping implements [route.Controller].
func (g *Greeting) Mapping() route.Mapping {
	return route.Mapping{
		Endpoints: []route.Endpoint{
			route.Get("/greeting", g.greet, route.Query("name", route.String).Default("World")),
		},
	}
}

func (g *Greeting) greet(ctx context.Context, args route.Args) (string, error) {
	name, _ := args.String(0)
	if g.Counter != nil {
		if _, err := g.Counter.Incr(ctx, greetingsKey); err != nil {
			return "", fmt.Errorf("counting greeting: %w", err)
		}
	}
	return fmt.Sprintf("Hello, %s!", name), nil
}
