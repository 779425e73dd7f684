// © 2024 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package web serves the routes of a [route.Registry] over plain TCP.

A [Server] accepts connections and hands each one to a fixed number of
workers. A worker reads one request, runs it through a [Dispatcher] and
writes the response before closing the connection. There is no keep-alive.

# Usage

	var reg route.Registry
	if err := reg.Register(ctx, web.System{}); err != nil {
		return err
	}
	s := &web.Server{
		Addr:    ":8080",
		Routes:  &reg,
		Workers: 10,
	}
	// Returns after ctx is canceled or s.Shutdown is called.
	return s.ListenAndServe(ctx)
*/
package web
