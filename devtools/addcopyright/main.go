// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Addcopyright adds the license header to Go files that lack one.

Usage:

	$ go tool addcopyright [-check] [dir]

It walks dir (the current directory by default), skipping hidden
directories, testdata and directories starting with an underscore. With
-check it only lists the files missing a header and fails if there are any.
*/
package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.astrophena.name/tinyweb/cli"
)

const (
	header   = "// ©"
	template = `// © %d Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

`
)

var errMissing = errors.New("files without a license header")

func main() { cli.Main(new(app)) }

type app struct {
	check bool
}

func (a *app) Flags(fs *flag.FlagSet) {
	fs.BoolVar(&a.check, "check", false, "Only report files without a header.")
}

func (a *app) Run(ctx context.Context) error {
	env := cli.GetEnv(ctx)
	root := "."
	switch len(env.Args) {
	case 0:
	case 1:
		root = env.Args[0]
	default:
		return fmt.Errorf("%w: at most one directory expected", cli.ErrInvalidArgs)
	}

	var missing int
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skipDir(d.Name()) {
				return filepath.SkipDir
			}
			return nil
		}
		if filepath.Ext(path) != ".go" {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if bytes.HasPrefix(content, []byte(header)) {
			return nil
		}
		if a.check {
			missing++
			env.Logf("%s: no license header", path)
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		content = append(fmt.Appendf(nil, template, info.ModTime().Year()), content...)
		return os.WriteFile(path, content, info.Mode().Perm())
	})
	if err != nil {
		return err
	}
	if missing > 0 {
		return fmt.Errorf("%w: %d", errMissing, missing)
	}
	return nil
}

func skipDir(name string) bool {
	return name == "testdata" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")
}
