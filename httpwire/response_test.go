package httpwire

import (
	"bufio"
	"errors"
	"io"
	"strings"
	"testing"
	"time"
)

func read(t *testing.T, raw string, verbose bool) *Response {
	t.Helper()
	resp, err := ReadResponse(bufio.NewReader(strings.NewReader(raw)), time.Now(), verbose)
	if err != nil {
		t.Fatalf("ReadResponse(%q): %v", raw, err)
	}
	return resp
}

func TestReadResponse(t *testing.T) {
	for _, tt := range []struct {
		name, raw  string
		status     string
		code       int
		ok, closed bool
		body       string
	}{
		{
			name:   "fixed length",
			raw:    "HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhello",
			status: "200 OK", code: 200, ok: true,
			body: "hello",
		},
		{
			name:   "chunked",
			raw:    "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n6\r\n world\r\n0\r\n\r\n",
			status: "200 OK", code: 200, ok: true,
			body: "hello world",
		},
		{
			name:   "not found, empty body",
			raw:    "HTTP/1.1 404 Not Found\r\nContent-Length: 0\r\n\r\n",
			status: "404 Not Found", code: 404,
		},
		{
			name:   "chunked wins over content-length",
			raw:    "HTTP/1.1 200 OK\r\nContent-Length: 3\r\nTransfer-Encoding: chunked\r\n\r\n2\r\nhi\r\n0\r\n\r\n",
			status: "200 OK", code: 200, ok: true,
			body: "hi",
		},
		{
			name:   "chunked before content-length still wins",
			raw:    "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\nContent-Length: 3\r\n\r\n2\r\nhi\r\n0\r\n\r\n",
			status: "200 OK", code: 200, ok: true,
			body: "hi",
		},
		{
			name:   "chunk extensions and upper-case hex",
			raw:    "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nA;name=value\r\n0123456789\r\n0\r\n\r\n",
			status: "200 OK", code: 200, ok: true,
			body: "0123456789",
		},
		{
			name:   "blank lines before the status line are skipped",
			raw:    "\r\n\r\nHTTP/1.1 201 Created\r\nContent-Length: 2\r\n\r\nok",
			status: "201 Created", code: 201, ok: true,
			body: "ok",
		},
		{
			name:   "header names are case-sensitive",
			raw:    "HTTP/1.1 200 OK\r\ncontent-length: 5\r\n\r\nhello",
			status: "200 OK", code: 200, ok: true, closed: true,
			body: "hello",
		},
		{
			name:   "no framing: read until close",
			raw:    "HTTP/1.1 200 OK\r\nServer: test\r\n\r\nall of it",
			status: "200 OK", code: 200, ok: true, closed: true,
			body: "all of it",
		},
		{
			name:   "no content",
			raw:    "HTTP/1.1 204 No Content\r\n\r\n",
			status: "204 No Content", code: 204, ok: true,
		},
		{
			name:   "not modified",
			raw:    "HTTP/1.1 304 Not Modified\r\nETag: \"x\"\r\n\r\n",
			status: "304 Not Modified", code: 304,
		},
		{
			name:   "interim response is skipped",
			raw:    "HTTP/1.1 103 Early Hints\r\nLink: </style.css>\r\n\r\nHTTP/1.1 200 OK\r\nContent-Length: 4\r\n\r\nbody",
			status: "200 OK", code: 200, ok: true,
			body: "body",
		},
		{
			name:   "status without reason phrase",
			raw:    "HTTP/1.1 500\r\nContent-Length: 0\r\n\r\n",
			status: "500", code: 500,
		},
	} {
		t.Run(tt.name, func(t *testing.T) {
			resp := read(t, tt.raw, true)
			if resp.Status != tt.status {
				t.Errorf("Status = %q, want %q", resp.Status, tt.status)
			}
			if resp.StatusCode != tt.code {
				t.Errorf("StatusCode = %d, want %d", resp.StatusCode, tt.code)
			}
			if resp.Succeeded() != tt.ok {
				t.Errorf("Succeeded() = %v, want %v", resp.Succeeded(), tt.ok)
			}
			if resp.Closed != tt.closed {
				t.Errorf("Closed = %v, want %v", resp.Closed, tt.closed)
			}
			if string(resp.Body) != tt.body {
				t.Errorf("Body = %q, want %q", resp.Body, tt.body)
			}
			if resp.Bytes != int64(len(tt.raw)) {
				t.Errorf("Bytes = %d, want %d (every byte on the wire)", resp.Bytes, len(tt.raw))
			}
		})
	}
}

func TestReadResponseHead(t *testing.T) {
	const head = "HTTP/1.1 200 OK\r\nContent-Type: text/plain\r\nContent-Length: 5\r\n\r\n"
	resp := read(t, head+"hello", true)
	if string(resp.Head) != head {
		t.Fatalf("Head = %q, want %q", resp.Head, head)
	}
	want := []Header{{"Content-Type", "text/plain"}, {"Content-Length", "5"}}
	if len(resp.Headers) != len(want) {
		t.Fatalf("Headers = %v, want %v", resp.Headers, want)
	}
	for i := range want {
		if resp.Headers[i] != want[i] {
			t.Errorf("Headers[%d] = %v, want %v", i, resp.Headers[i], want[i])
		}
	}
}

func TestReadResponseQuiet(t *testing.T) {
	const raw = "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n0\r\n\r\n"
	resp := read(t, raw, false)
	if resp.Head != nil || resp.Headers != nil || resp.Body != nil {
		t.Fatalf("quiet mode kept head %q, headers %v, body %q", resp.Head, resp.Headers, resp.Body)
	}
	if resp.Bytes != int64(len(raw)) {
		t.Fatalf("Bytes = %d, want %d", resp.Bytes, len(raw))
	}
}

// successive calls on the same reader must each consume exactly one response.
func TestReadResponseSequential(t *testing.T) {
	responses := []string{
		"HTTP/1.1 200 OK\r\nContent-Length: 3\r\n\r\none",
		"HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n3\r\ntwo\r\n0\r\n\r\n",
		"HTTP/1.1 404 Not Found\r\nContent-Length: 5\r\n\r\nthree",
	}
	src := bufio.NewReader(strings.NewReader(strings.Join(responses, "")))
	for i, want := range []string{"one", "two", "three"} {
		resp, err := ReadResponse(src, time.Now(), true)
		if err != nil {
			t.Fatalf("response %d: %v", i, err)
		}
		if string(resp.Body) != want {
			t.Errorf("response %d: Body = %q, want %q", i, resp.Body, want)
		}
		if resp.Bytes != int64(len(responses[i])) {
			t.Errorf("response %d: Bytes = %d, want %d", i, resp.Bytes, len(responses[i]))
		}
	}
	if _, err := ReadResponse(src, time.Now(), true); !errors.Is(err, ErrConnClosed) {
		t.Fatalf("reading past the last response: got %v, want %v", err, ErrConnClosed)
	}
}

func TestReadResponseElapsed(t *testing.T) {
	start := time.Now().Add(-50 * time.Millisecond)
	resp, err := ReadResponse(bufio.NewReader(strings.NewReader("HTTP/1.1 200 OK\r\nContent-Length: 0\r\n\r\n")), start, false)
	if err != nil {
		t.Fatal(err)
	}
	if resp.Elapsed < 50*time.Millisecond {
		t.Fatalf("Elapsed = %s, want at least 50ms", resp.Elapsed)
	}
}

func TestReadResponseErrors(t *testing.T) {
	for _, tt := range []struct {
		name, raw string
		want      error
	}{
		{"empty", "", ErrConnClosed},
		{"bad content-length", "HTTP/1.1 200 OK\r\nContent-Length: five\r\n\r\nhello", ErrBadContentLength},
		{"negative content-length", "HTTP/1.1 200 OK\r\nContent-Length: -1\r\n\r\n", ErrBadContentLength},
		{"bad chunk size", "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\nzz\r\nhello\r\n0\r\n\r\n", ErrBadChunkSize},
		{"short body", "HTTP/1.1 200 OK\r\nContent-Length: 10\r\n\r\nhello", io.ErrUnexpectedEOF},
		{"short chunk", "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhel", io.ErrUnexpectedEOF},
		{"missing last chunk", "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n5\r\nhello\r\n", io.ErrUnexpectedEOF},
		{"huge content-length", "HTTP/1.1 200 OK\r\nContent-Length: 9223372036854775807\r\n\r\nhello", io.ErrUnexpectedEOF},
		{"huge chunk", "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n7fffffffffffffff\r\nhello", io.ErrUnexpectedEOF},
		{"truncated head", "HTTP/1.1 200 OK\r\nContent-Len", io.ErrUnexpectedEOF},
	} {
		t.Run(tt.name, func(t *testing.T) {
			for _, verbose := range []bool{true, false} {
				_, err := ReadResponse(bufio.NewReader(strings.NewReader(tt.raw)), time.Now(), verbose)
				if !errors.Is(err, tt.want) {
					t.Errorf("verbose=%v: got error %v, want %v", verbose, err, tt.want)
				}
			}
		})
	}
}
