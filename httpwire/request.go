package httpwire

import (
	"encoding"
	"errors"
	"fmt"
	"io"
	"strings"
)

type Header struct{ Key, Value string }

// Request is a bodiless http 1.1 request.
type Request struct {
	Method, Path string
	Headers      []Header
}

var ( // assert interfaces are implemented at compile time.
	_ io.WriterTo            = (*Request)(nil)
	_ fmt.Stringer           = (*Request)(nil)
	_ encoding.TextMarshaler = Request{}
)

// NewGet builds the one request this client ever sends:
//
//	GET <path> HTTP/1.1
//	Host: <host:port>
//
// no User-Agent, no Accept, no Connection.
func NewGet(t Target) *Request {
	return &Request{Method: "GET", Path: t.Path, Headers: []Header{{"Host", t.HostPort}}}
}

// Host returns the value of the Host header, or "" if no Host header is present.
func (r *Request) Host() string {
	for _, h := range r.Headers {
		if h.Key == "Host" {
			return h.Value
		}
	}
	return ""
}

// WriteTo writes the Request to the given io.Writer.
func (r *Request) WriteTo(w io.Writer) (n int64, err error) {
	// write & count bytes written.
	printf := func(format string, args ...any) error {
		m, err := fmt.Fprintf(w, format, args...)
		n += int64(m)
		return err
	}

	if err := printf("%s %s HTTP/1.1\r\n", r.Method, r.Path); err != nil {
		return n, err
	}
	for _, h := range r.Headers {
		if err := printf("%s: %s\r\n", h.Key, h.Value); err != nil {
			return n, err
		}
	}
	err = printf("\r\n") // empty line terminates the headers; we never send a body.
	return n, err
}

// String returns the Request as a HTTP/1.1 request string.
func (r *Request) String() string { b := new(strings.Builder); r.WriteTo(b); return b.String() }

// MarshalText returns the Request as a HTTP/1.1 request string. It returns an error if the Request is invalid.
func (r Request) MarshalText() ([]byte, error) {
	if r.Method == "" {
		return nil, errors.New("empty method")
	}
	if !strings.HasPrefix(r.Path, "/") {
		return nil, fmt.Errorf("path %q should start with /", r.Path)
	}
	if len(r.Headers) == 0 || r.Headers[0].Key != "Host" {
		return nil, errors.New("missing Host header")
	}
	return []byte(r.String()), nil
}
