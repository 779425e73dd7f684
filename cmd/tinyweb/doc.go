// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Tinyweb is a minimal HTTP/1.1 server with a few demo endpoints.

Usage:

	$ tinyweb [flags]

It reads one request per connection, answers it and closes the connection.
Requests are handled by a fixed number of workers.

Endpoints:

	GET  /hello
	GET  /greeting?name=World
	GET  /health
	GET  /version
	GET  /api/user?id=1
	GET  /api/users?limit=5
	POST /api/users
	GET  /api/stats
	GET  /api/greeting?lang=en
	POST /api/echo

Environment variables:

	PORT        port to listen on (default 8080)
	HOST        interface to listen on (default all)
	WORKERS     number of workers (default 10)
	REDIS_ADDR  keep counters in Redis at this address instead of memory

Flags override the environment. With -gin the same endpoints are served by
gin and net/http instead.
*/
package main
