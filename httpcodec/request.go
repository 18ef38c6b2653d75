// Package httpcodec implements the HTTP/1.1 request parser and
// response builder of spec.md §4.2 and §4.7: a strict, allocation-light
// codec for the subset of HTTP/1.1 this server speaks, framed entirely
// by the bytes accumulated from non-blocking reads.
package httpcodec

import (
	"bytes"
	"strings"

	"github.com/Under-Bordet-AB/weatherserver/werrors"
)

// Method is the small enum of request methods this server recognizes.
type Method int

const (
	MethodUnknown Method = iota
	MethodGET
	MethodPOST
)

func (m Method) String() string {
	switch m {
	case MethodGET:
		return "GET"
	case MethodPOST:
		return "POST"
	default:
		return "UNKNOWN"
	}
}

// MaxURLLength bounds the request-target length per spec.md §4.2.
const MaxURLLength = 256

// crlfcrlf is the header/body frame terminator.
var crlfcrlf = []byte("\r\n\r\n")

// FindFrame reports whether buf contains a complete header block,
// returning the index just past the terminating CRLFCRLF. Callers
// accumulate bytes from non-blocking reads and call FindFrame after
// each one until it reports found.
func FindFrame(buf []byte) (headerEnd int, found bool) {
	idx := bytes.Index(buf, crlfcrlf)
	if idx < 0 {
		return 0, false
	}
	return idx + len(crlfcrlf), true
}

// Request is a parsed HTTP/1.1 request: the status line, headers, and
// whatever body bytes were already available in the frame.
type Request struct {
	Method   Method
	URL      string
	Protocol string
	Headers  map[string]string
	Body     []byte
}

// Header looks up a header by name, case-insensitively.
func (r *Request) Header(name string) (string, bool) {
	for k, v := range r.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// Parse decodes a complete header block (as located by FindFrame) plus
// any trailing body bytes already read. A malformed status line
// returns ParserMalformed; an oversized request-target returns
// ParserURLTooLong. A malformed header line does not fail the request:
// parsing stops at that line and whatever headers decoded before it
// are kept.
func Parse(frame []byte) (*Request, werrors.Error) {
	headerBlock := frame
	var body []byte
	if idx := bytes.Index(frame, crlfcrlf); idx >= 0 {
		headerBlock = frame[:idx]
		body = frame[idx+len(crlfcrlf):]
	}

	lines := strings.Split(string(headerBlock), "\r\n")
	if len(lines) == 0 || lines[0] == "" {
		return nil, werrors.New(werrors.ParserMalformed)
	}

	req, err := parseStatusLine(lines[0])
	if err != nil {
		return nil, err
	}
	req.Body = body

	headers := make(map[string]string, len(lines)-1)
	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		k, v, ok := strings.Cut(line, ": ")
		if !ok {
			// A valid status line already parsed; stop at the first
			// malformed header and keep whatever was decoded so far.
			break
		}
		headers[k] = v
	}
	req.Headers = headers

	return req, nil
}

func parseStatusLine(line string) (*Request, werrors.Error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return nil, werrors.New(werrors.ParserMalformed)
	}

	methodStr, url, protocol := parts[0], parts[1], parts[2]
	if methodStr == "" || url == "" || protocol == "" {
		return nil, werrors.New(werrors.ParserMalformed)
	}
	if len(url) > MaxURLLength {
		return nil, werrors.New(werrors.ParserURLTooLong)
	}

	method := MethodUnknown
	switch methodStr {
	case "GET":
		method = MethodGET
	case "POST":
		method = MethodPOST
	}

	return &Request{Method: method, URL: url, Protocol: protocol}, nil
}
