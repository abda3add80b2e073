package httpwire

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"
)

// Response is a single HTTP/1.1 response as read off the wire by ReadResponse.
type Response struct {
	Status     string        // status token: everything after "HTTP/1.1", trimmed. e.g, "200 OK".
	StatusCode int           // numeric status, or 0 if the status token didn't start with one.
	Elapsed    time.Duration // from the request write to receipt of the status line.
	Bytes      int64         // every byte read for this response: head, chunk sizes, chunk CRLFs, body.
	Closed     bool          // the body was delimited by the server closing the connection.

	// only populated in verbose mode.
	Head    []byte   // every line of the head, verbatim, CRLFs included.
	Headers []Header // "Key: Value" lines of the head, in order.
	Body    []byte   // the body with any chunk framing removed.
}

// Succeeded reports whether the status token starts with a 2.
func (resp *Response) Succeeded() bool { return strings.HasPrefix(resp.Status, "2") }

var (
	// ErrConnClosed is returned by ReadResponse when the connection closes before a single byte of the response arrives.
	ErrConnClosed = errors.New("connection closed before response")
	// ErrBadContentLength is wrapped by ReadResponse when a Content-Length header isn't an unsigned decimal integer.
	ErrBadContentLength = errors.New("malformed Content-Length")
	// ErrBadChunkSize is wrapped by ReadResponse when a chunk-size line isn't an unsigned hexadecimal integer.
	ErrBadChunkSize = errors.New("malformed chunk size")
)

const (
	statusPrefix        = "HTTP/1.1"
	contentLengthPrefix = "Content-Length:"
	chunkedLine         = "Transfer-Encoding: chunked\r\n"
	blankLine           = "\r\n"
)

// framing is how the body of a response is delimited.
type framing uint8

const (
	framingNone framing = iota
	framingFixed
	framingChunked
)

// reader holds the transient state for one call to ReadResponse.
type reader struct {
	src     *bufio.Reader
	start   time.Time
	verbose bool
	resp    *Response

	headerStarted bool
	timed         bool
	contentLength int64 // -1 if absent
	chunked       bool
}

// ReadResponse consumes exactly one HTTP/1.1 response from src, leaving src positioned at the start of the next one.
// start is when the caller wrote the request; the elapsed time stops when the status line is read.
// If verbose, the raw head, parsed headers, and body are kept on the Response; otherwise the body is counted and discarded.
//
// Header matching is by exact, case-sensitive prefix:
//   - "HTTP/1.1" starts the response; the rest of the line is the status.
//   - "Content-Length:" sets a fixed-length body.
//   - "Transfer-Encoding: chunked" sets a chunked body. It wins over Content-Length if both are present.
//   - a blank line after the status line ends the head. Blank lines before it are skipped.
//
// Responses with neither framing header have no body if their status is 1xx, 204, or 304,
// and are read until EOF otherwise. A 1xx response is followed by the real one, which is read as part of the same Response.
//
// Any error leaves src in an undefined position; the connection should not be reused.
func ReadResponse(src *bufio.Reader, start time.Time, verbose bool) (*Response, error) {
	r := &reader{src: src, start: start, verbose: verbose, resp: new(Response), contentLength: -1}
	for {
		if err := r.readHead(); err != nil {
			return nil, err
		}
		if !r.interim() {
			break
		}
		// 1xx: the real response follows on the wire. keep counting into the same Response.
		r.headerStarted, r.contentLength, r.chunked = false, -1, false
	}
	var err error
	switch r.framing() {
	case framingChunked:
		err = r.readChunked()
	case framingFixed:
		err = r.readFixed(r.contentLength)
	default:
		if !r.bodiless() {
			err = r.readUntilEOF()
		}
	}
	if err != nil {
		return nil, err
	}
	return r.resp, nil
}

// readHead reads lines up to and including the blank line that ends the head.
func (r *reader) readHead() error {
	for {
		line, err := r.readLine()
		if err != nil {
			return err
		}
		if r.verbose {
			r.resp.Head = append(r.resp.Head, line...)
		}
		switch {
		case strings.HasPrefix(line, statusPrefix):
			r.headerStarted = true
			if r.resp.Status == "" || r.interimStatus() {
				if !r.timed {
					r.resp.Elapsed, r.timed = time.Since(r.start), true
				}
				r.resp.Status = strings.TrimSpace(line[len(statusPrefix):])
				r.resp.StatusCode = statusCode(r.resp.Status)
			}
		case strings.HasPrefix(line, contentLengthPrefix):
			n, err := strconv.ParseUint(strings.TrimSpace(line[len(contentLengthPrefix):]), 10, 63)
			if err != nil {
				return fmt.Errorf("%w: %q: %v", ErrBadContentLength, strings.TrimSpace(line), err)
			}
			r.contentLength = int64(n)
			r.keepHeader(line)
		case line == chunkedLine:
			r.chunked = true
			r.keepHeader(line)
		case line == blankLine:
			if r.headerStarted {
				return nil
			}
		case r.headerStarted:
			r.keepHeader(line)
		}
	}
}

func (r *reader) keepHeader(line string) {
	if !r.verbose {
		return
	}
	key, val, ok := strings.Cut(strings.TrimRight(line, "\r\n"), ":")
	if !ok {
		return
	}
	r.resp.Headers = append(r.resp.Headers, Header{Key: key, Value: strings.TrimSpace(val)})
}

// readLine reads through the next '\n', counting the bytes read.
func (r *reader) readLine() (string, error) {
	line, err := r.src.ReadString('\n')
	r.resp.Bytes += int64(len(line))
	switch {
	case err == nil:
		return line, nil
	case errors.Is(err, io.EOF) && r.resp.Bytes == 0:
		return "", ErrConnClosed
	case errors.Is(err, io.EOF):
		return "", fmt.Errorf("reading line after %d bytes: %w", r.resp.Bytes, io.ErrUnexpectedEOF)
	default:
		return "", fmt.Errorf("reading line after %d bytes: %w", r.resp.Bytes, err)
	}
}

// readFixed reads exactly n body bytes.
func (r *reader) readFixed(n int64) error {
	if _, err := r.copyBody(n); err != nil {
		return fmt.Errorf("reading %d-byte body: %w", n, err)
	}
	return nil
}

// readChunked reads chunks until (and including) the zero-length one.
// Trailers after the last chunk are not supported: the CRLF that follows the zero-length chunk is consumed as its data terminator.
func (r *reader) readChunked() error {
	for i := 0; ; i++ {
		line, err := r.readLine()
		if err != nil {
			return fmt.Errorf("chunk %d: size: %w", i, err)
		}
		size, _, _ := strings.Cut(strings.TrimSpace(line), ";") // ignore chunk extensions
		n, err := strconv.ParseUint(strings.TrimSpace(size), 16, 63)
		if err != nil {
			return fmt.Errorf("chunk %d: %w: %q: %v", i, ErrBadChunkSize, strings.TrimSpace(line), err)
		}
		if _, err := r.copyBody(int64(n)); err != nil {
			return fmt.Errorf("chunk %d: reading %d bytes: %w", i, n, err)
		}
		var crlf [2]byte // the CRLF after the chunk's data is counted, never kept.
		m, err := io.ReadFull(r.src, crlf[:])
		r.resp.Bytes += int64(m)
		if err != nil {
			return fmt.Errorf("chunk %d: reading terminator: %w", i, unexpected(err))
		}
		if n == 0 {
			return nil
		}
	}
}

// readUntilEOF reads a body delimited by the server closing the connection.
func (r *reader) readUntilEOF() error {
	r.resp.Closed = true
	if !r.verbose {
		n, err := io.Copy(io.Discard, r.src)
		r.resp.Bytes += n
		if err != nil {
			return fmt.Errorf("reading body until close: %w", err)
		}
		return nil
	}
	b, err := io.ReadAll(r.src)
	r.resp.Body = append(r.resp.Body, b...)
	r.resp.Bytes += int64(len(b))
	if err != nil {
		return fmt.Errorf("reading body until close: %w", err)
	}
	return nil
}

// copyBody reads exactly n bytes from the source, keeping them in verbose mode.
func (r *reader) copyBody(n int64) (int64, error) {
	if !r.verbose {
		m, err := io.CopyN(io.Discard, r.src, n)
		r.resp.Bytes += m
		return m, unexpected(err)
	}
	// n comes from the server: grow as bytes arrive rather than trusting it up front.
	buf := bytes.NewBuffer(r.resp.Body)
	m, err := io.CopyN(buf, r.src, n)
	r.resp.Body = buf.Bytes()
	r.resp.Bytes += m
	return m, unexpected(err)
}

func (r *reader) framing() framing {
	switch {
	case r.chunked:
		return framingChunked
	case r.contentLength >= 0:
		return framingFixed
	default:
		return framingNone
	}
}

// interimStatus reports whether the status read so far is informational (1xx).
func (r *reader) interimStatus() bool { return strings.HasPrefix(r.resp.Status, "1") }

// interim reports whether the head just read belongs to a 1xx response, which is followed by the final response.
// 101 Switching Protocols is final: whatever comes next isn't HTTP.
func (r *reader) interim() bool { return r.interimStatus() && r.resp.StatusCode != 101 }

// bodiless reports whether the status forbids a body (RFC 9112 §6.3).
func (r *reader) bodiless() bool {
	code := r.resp.StatusCode
	return r.interimStatus() || code == 204 || code == 304
}

// statusCode parses the leading three-digit code of a status token, e.g. "404 Not Found" -> 404.
// It returns 0 if there isn't one.
func statusCode(status string) int {
	code, _, _ := strings.Cut(status, " ")
	n, err := strconv.Atoi(code)
	if err != nil || n < 100 || n > 999 {
		return 0
	}
	return n
}

// unexpected converts io.EOF into io.ErrUnexpectedEOF: we only ever read bytes we were promised.
func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
