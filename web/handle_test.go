// © 2025 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package web

import (
	"context"
	"errors"
	"testing"

	"go.astrophena.name/tinyweb/route"
	"go.astrophena.name/tinyweb/testutil"
	"go.astrophena.name/tinyweb/wire"
)

type user struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

func (u user) Validate() error {
	if u.Name == "" {
		return errors.New("name is empty")
	}
	return nil
}

func TestHandleJSON(t *testing.T) {
	errLookup := errors.New("lookup failed")

	cases := map[string]struct {
		h       route.HandlerFunc
		want    string
		wantErr error
	}{
		"struct": {
			h: HandleJSON(func(context.Context, route.Args) (user, error) {
				return user{ID: 1, Name: "Ana"}, nil
			}),
			want: `{"id":1,"name":"Ana"}`,
		},
		"slice": {
			h: HandleJSON(func(context.Context, route.Args) ([]int, error) {
				return []int{1, 2}, nil
			}),
			want: `[1,2]`,
		},
		"logic error": {
			h: HandleJSON(func(context.Context, route.Args) (*user, error) {
				return nil, errLookup
			}),
			wantErr: errLookup,
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := tc.h(context.Background(), nil)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("want error %v, got %v", tc.wantErr, err)
			}
			testutil.AssertEqual(t, got, tc.want)
		})
	}

	t.Run("unencodable", func(t *testing.T) {
		h := HandleJSON(func(context.Context, route.Args) (chan int, error) {
			return make(chan int), nil
		})
		if _, err := h(context.Background(), nil); err == nil {
			t.Fatal("want an error for a channel result")
		}
	})
}

func TestDecodeJSON(t *testing.T) {
	cases := map[string]struct {
		body    []byte
		want    user
		wantErr bool
	}{
		"valid":      {body: []byte(`{"id":7,"name":"Ana"}`), want: user{ID: 7, Name: "Ana"}},
		"no body":    {body: nil, wantErr: true},
		"not json":   {body: []byte(`id=7`), wantErr: true},
		"validation": {body: []byte(`{"id":7}`), wantErr: true},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeJSON[user](&wire.Request{Method: "POST", Body: tc.body})
			testutil.AssertEqual(t, err != nil, tc.wantErr)
			if !tc.wantErr {
				testutil.AssertEqual(t, got, tc.want)
			}
		})
	}

	_, err := DecodeJSON[user](nil)
	if !errors.Is(err, ErrNoBody) {
		t.Fatalf("want ErrNoBody, got %v", err)
	}
}
