// © 2026 Ilya Mateyko. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package wire

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.astrophena.name/tinyweb/version"
)

// Default header values of a fresh [Response].
const (
	DefaultContentType = "text/html; charset=UTF-8"
	JSONContentType    = "application/json"
)

// Field is a single response header.
type Field struct {
	Name  string
	Value string
}

// Header is an ordered set of response headers. Names are matched
// case-insensitively; the spelling of the first Set wins.
type Header []Field

// Get returns the value of the named header, or an empty string.
func (h Header) Get(name string) string {
	if i := h.index(name); i >= 0 {
		return h[i].Value
	}
	return ""
}

// Has reports whether the named header is set.
func (h Header) Has(name string) bool { return h.index(name) >= 0 }

// Set replaces the value of the named header or appends it.
func (h *Header) Set(name, value string) {
	if i := h.index(name); i >= 0 {
		(*h)[i].Value = value
		return
	}
	*h = append(*h, Field{Name: name, Value: value})
}

// Del removes the named header.
func (h *Header) Del(name string) {
	if i := h.index(name); i >= 0 {
		*h = append((*h)[:i], (*h)[i+1:]...)
	}
}

func (h Header) index(name string) int {
	for i, f := range h {
		if strings.EqualFold(f.Name, name) {
			return i
		}
	}
	return -1
}

// Response is an HTTP response under construction. It belongs to the
// goroutine serving its connection.
type Response struct {
	Version string
	Status  int
	Message string
	Header  Header
	Body    []byte
}

// NewResponse returns a "200 OK" response with an HTML content type, the
// Server header set to [version.Product] and an empty body.
func NewResponse() *Response {
	return &Response{
		Version: "HTTP/1.1",
		Status:  200,
		Message: "OK",
		Header: Header{
			{Name: "Content-Type", Value: DefaultContentType},
			{Name: "Server", Value: version.Product()},
		},
	}
}

// SetStatus sets the status code and reason phrase.
func (r *Response) SetStatus(code int, message string) {
	r.Status = code
	r.Message = message
}

// SetBody replaces the body and updates Content-Length to its length in
// bytes.
func (r *Response) SetBody(body string) {
	r.Body = []byte(body)
	r.Header.Set("Content-Length", strconv.Itoa(len(r.Body)))
}

// SetContentType sets the Content-Type header.
func (r *Response) SetContentType(contentType string) {
	r.Header.Set("Content-Type", contentType)
}

// Write serializes r to w and flushes it. The body is written as is;
// Content-Length is whatever the last [Response.SetBody] left.
func (r *Response) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s %d %s\r\n", r.Version, r.Status, r.Message)
	for _, f := range r.Header {
		fmt.Fprintf(bw, "%s: %s\r\n", f.Name, f.Value)
	}
	bw.WriteString("\r\n")
	bw.Write(r.Body)
	return bw.Flush()
}
