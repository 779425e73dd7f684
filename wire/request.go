// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package wire

import (
	"bufio"
	"errors"
	"io"
	"net/url"
	"strconv"
	"strings"
)

// Request is an HTTP request read from a connection by [ReadRequest].
//
// A Request is not modified after parsing and belongs to the goroutine
// serving its connection.
type Request struct {
	// Method is the request method, such as "GET". It is empty if the request
	// line was malformed.
	Method string
	// Path is the part of the request target before the first '?'. It is
	// never percent-decoded.
	Path string
	// Version is the protocol version token, passed through as is.
	Version string
	// Header maps lowercased header names to trimmed values. When a header
	// is repeated, the last value wins.
	Header map[string]string
	// Query maps decoded query parameter names to decoded values. When a
	// parameter is repeated, the last value wins.
	Query map[string]string
	// Body is the request body. It is nil when the request has no
	// Content-Length header or a non-positive one.
	Body []byte
}

// Get returns the value of the named header. The lookup is case-insensitive.
func (r *Request) Get(name string) string {
	return r.Header[strings.ToLower(name)]
}

// Param returns the value of the named query parameter and whether it was
// present.
func (r *Request) Param(name string) (string, bool) {
	v, ok := r.Query[name]
	return v, ok
}

// HasBody reports whether the request carried a body.
func (r *Request) HasBody() bool { return r.Body != nil }

// ReadRequest reads exactly one request from br.
//
// Parsing is permissive: a short request line leaves Method, Path and Version
// empty, malformed header lines are skipped and an invalid Content-Length
// means no body is read. A connection closed before sending anything yields
// an empty Request and a nil error. Only failures of the underlying reader
// are returned as errors.
func ReadRequest(br *bufio.Reader) (*Request, error) {
	req := &Request{
		Header: make(map[string]string),
		Query:  make(map[string]string),
	}

	line, err := readLine(br)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return req, nil
		}
		return nil, err
	}
	if parts := strings.Split(line, " "); len(parts) >= 3 {
		req.Method = parts[0]
		req.Path, req.Query = splitTarget(parts[1])
		req.Version = parts[2]
	}

	for {
		line, err := readLine(br)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return req, nil
			}
			return nil, err
		}
		if line == "" {
			break
		}
		i := strings.IndexByte(line, ':')
		if i <= 0 {
			continue
		}
		name := strings.ToLower(strings.TrimSpace(line[:i]))
		req.Header[name] = strings.TrimSpace(line[i+1:])
	}

	n := contentLength(req.Header)
	if n <= 0 {
		return req, nil
	}
	// Grow the buffer as bytes arrive instead of trusting the declared length
	// up front. A body cut short by the peer is kept as is.
	body, err := io.ReadAll(io.LimitReader(br, int64(n)))
	if err != nil {
		return nil, err
	}
	req.Body = body
	return req, nil
}

// readLine returns the next line without its terminator. A final line with
// no terminator is returned with a nil error; io.EOF is returned only when
// nothing at all was left to read.
func readLine(br *bufio.Reader) (string, error) {
	line, err := br.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r"), nil
}

func splitTarget(target string) (path string, query map[string]string) {
	path, rawQuery, _ := strings.Cut(target, "?")
	return path, ParseQuery(rawQuery)
}

// ParseQuery decodes a query string the way [ReadRequest] does. Pairs
// without '=' or with an empty name are ignored, as are pairs with broken
// percent-escapes. Later pairs overwrite earlier ones.
func ParseQuery(raw string) map[string]string {
	query := make(map[string]string)
	if raw == "" {
		return query
	}
	for pair := range strings.SplitSeq(raw, "&") {
		i := strings.IndexByte(pair, '=')
		if i <= 0 {
			continue
		}
		key, err := url.QueryUnescape(pair[:i])
		if err != nil {
			continue
		}
		value, err := url.QueryUnescape(pair[i+1:])
		if err != nil {
			continue
		}
		query[key] = value
	}
	return query
}

func contentLength(h map[string]string) int {
	v, ok := h["content-length"]
	if !ok || v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}
