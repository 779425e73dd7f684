// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Package wire reads HTTP/1.1 requests from and writes HTTP/1.1 responses to
a byte stream.

It covers only what a one-request-per-connection server needs: a request
line, headers, an optional Content-Length body on the way in, and a status
line, headers and a body on the way out. There is no keep-alive, chunked
encoding or streaming.

	req, err := wire.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		return err
	}
	resp := wire.NewResponse()
	resp.SetBody("Hello, " + req.Query["name"])
	return resp.Write(conn)
*/
package wire
