// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package version

import (
	"runtime"
	"strings"
	"testing"

	"go.astrophena.name/tinyweb/testutil"
)

func TestVersion(t *testing.T) {
	v := Version()
	testutil.AssertEqual(t, v.Go, runtime.Version())
	if v.Version == "" {
		t.Fatal("Version must not be empty")
	}
	if strings.ContainsAny(Product(), " ()") {
		t.Fatalf("Product() = %q is not a valid product token", Product())
	}
	if !strings.HasPrefix(Product(), Name+"/") {
		t.Fatalf("Product() = %q must start with %q", Product(), Name+"/")
	}
}

func TestInfoString(t *testing.T) {
	cases := map[string]struct {
		in   Info
		want string
	}{
		"release": {
			in:   Info{Name: "tinyweb", Version: "v1.0.0", Go: "go1.26.0"},
			want: "tinyweb v1.0.0\nbuilt with go1.26.0\n",
		},
		"dirty tree": {
			in:   Info{Name: "tinyweb", Version: "dev", Commit: "abcdef012345", Modified: true, Go: "go1.26.0"},
			want: "tinyweb dev (abcdef012345, modified)\nbuilt with go1.26.0\n",
		},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, tc.in.String(), tc.want)
		})
	}
}
