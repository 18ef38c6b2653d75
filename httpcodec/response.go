package httpcodec

import (
	"fmt"
	"strconv"
	"strings"
)

// Response is a builder for the bytes sent back to the client. Every
// response this server sends is framed as status-line, headers,
// CRLFCRLF, body, and always closes the connection afterward per
// spec.md §4.7 — there is no persistent-connection support.
type Response struct {
	Status  int
	Reason  string
	Headers map[string]string
	Body    []byte
}

var reasonPhrases = map[int]string{
	200: "OK",
	400: "Bad Request",
	404: "Not Found",
	405: "Method Not Allowed",
	408: "Request Timeout",
	413: "Payload Too Large",
	429: "Too Many Requests",
	500: "Internal Server Error",
	501: "Not Implemented",
	503: "Service Unavailable",
}

func newResponse(status int, contentType string, body []byte) *Response {
	reason, ok := reasonPhrases[status]
	if !ok {
		reason = "Unknown"
	}
	r := &Response{
		Status: status,
		Reason: reason,
		Headers: map[string]string{
			"Content-Type":   contentType,
			"Content-Length": strconv.Itoa(len(body)),
			"Connection":     "close",
		},
		Body: body,
	}
	return r
}

// Text builds a 200 OK plain-text response.
func Text(body string) *Response {
	return newResponse(200, "text/plain; charset=utf-8", []byte(body))
}

// HTML builds a 200 OK text/html response.
func HTML(body []byte) *Response {
	return newResponse(200, "text/html; charset=utf-8", body)
}

// JSON builds a 200 OK application/json response from already-encoded
// bytes; callers marshal upstream so this package stays codec-agnostic.
func JSON(body []byte) *Response {
	return newResponse(200, "application/json", body)
}

// Binary builds a 200 OK response carrying an arbitrary content type,
// for static assets like images.
func Binary(contentType string, body []byte) *Response {
	return newResponse(200, contentType, body)
}

// WithHeader sets or overrides a single header and returns r for
// chaining.
func (r *Response) WithHeader(name, value string) *Response {
	r.Headers[name] = value
	return r
}

func BadRequest(reason string) *Response {
	return newResponse(400, "text/plain; charset=utf-8", []byte(reason))
}

func NotFound() *Response {
	return newResponse(404, "text/plain; charset=utf-8", []byte("not found"))
}

func RequestTimeout() *Response {
	return newResponse(408, "text/plain; charset=utf-8", []byte("request timeout"))
}

func PayloadTooLarge() *Response {
	return newResponse(413, "text/plain; charset=utf-8", []byte("payload too large"))
}

func TooManyRequests() *Response {
	return newResponse(429, "text/plain; charset=utf-8", []byte("too many requests"))
}

func InternalServerError() *Response {
	return newResponse(500, "text/plain; charset=utf-8", []byte("internal server error"))
}

func NotImplemented() *Response {
	return newResponse(501, "text/plain; charset=utf-8", []byte("not implemented"))
}

func ServiceUnavailable() *Response {
	return newResponse(503, "text/plain; charset=utf-8", []byte("service unavailable"))
}

// MethodNotAllowed builds a 405 with the required Allow header listing
// the methods the target URL does support.
func MethodNotAllowed(allowed ...string) *Response {
	r := newResponse(405, "text/plain; charset=utf-8", []byte("method not allowed"))
	r.Headers["Allow"] = strings.Join(allowed, ", ")
	return r
}

// Bytes serializes the response to the wire format: status-line,
// headers in map order (Go's map iteration is unordered, which is
// harmless here since HTTP header order carries no semantics for this
// server's clients), CRLFCRLF, body.
func (r *Response) Bytes() []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "HTTP/1.1 %d %s\r\n", r.Status, r.Reason)
	for k, v := range r.Headers {
		fmt.Fprintf(&b, "%s: %s\r\n", k, v)
	}
	b.WriteString("\r\n")

	out := make([]byte, 0, b.Len()+len(r.Body))
	out = append(out, b.String()...)
	out = append(out, r.Body...)
	return out
}
