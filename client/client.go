// Package client drives a run of httpget: one TCP connection, the same GET request written N times,
// and exactly one response read back for each.
package client

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"gitlab.com/efronlicht/httpget/httpwire"
	"gitlab.com/efronlicht/httpget/observability/trace"
	"gitlab.com/efronlicht/httpget/stats"
	"go.uber.org/zap"
)

// Config is a single run of httpget.
type Config struct {
	URL string
	// Count is the number of requests to send. Zero means 1.
	Count int
	// Profile prints one status line per response and a statistics block at the end, rather than the full head and body.
	Profile bool
	// DialTimeout bounds the TCP connect. Zero means no timeout.
	DialTimeout time.Duration
	// Resolver looks up the target's host. nil means net.DefaultResolver.
	Resolver Resolver
}

// ErrEarlyClose is returned by Run when the server ends a response by closing the connection while requests remain.
var ErrEarlyClose = errors.New("server closed the connection with requests remaining")

// Run sends cfg.Count identical GET requests to cfg.URL over a single connection and writes the results to stdout.
// Any error (dialing, reading, writing, or framing a response) ends the run: there are no retries, and no partial statistics.
// Cancelling ctx closes the connection, unblocking any read or write in progress.
func Run(ctx context.Context, cfg Config, stdout io.Writer, logger *zap.Logger) ([]stats.Sample, error) {
	if cfg.Count < 0 {
		return nil, fmt.Errorf("count must be positive, got %d", cfg.Count)
	}
	if cfg.Count == 0 {
		cfg.Count = 1
	}
	if cfg.Resolver == nil {
		cfg.Resolver = net.DefaultResolver
	}
	t := trace.FromCtxOrNew(ctx)
	logger = logger.With(zap.Stringer("trace_id", t.TraceID))

	target := httpwire.ParseTarget(cfg.URL)
	request, err := httpwire.NewGet(target).MarshalText()
	if err != nil {
		return nil, fmt.Errorf("building request for %q: %w", cfg.URL, err)
	}

	conn, err := dial(ctx, cfg.Resolver, target, cfg.DialTimeout)
	if err != nil {
		return nil, err
	}
	defer conn.Close()
	stop := context.AfterFunc(ctx, func() { conn.Close() })
	defer stop()
	logger.Info("connected", zap.String("host", target.HostPort), zap.Stringer("remote_addr", conn.RemoteAddr()))

	if _, err := fmt.Fprintf(stdout, "Sending %d request(s):\n%s", cfg.Count, request); err != nil {
		return nil, fmt.Errorf("writing output: %w", err)
	}

	src := bufio.NewReader(conn)
	samples := make([]stats.Sample, 0, cfg.Count)
	for i := 0; i < cfg.Count; i++ {
		reqID := t.NewRequestID()
		start := time.Now()
		if _, err := conn.Write(request); err != nil {
			return nil, cancelled(ctx, fmt.Errorf("request %d/%d: writing request: %w", i+1, cfg.Count, err))
		}
		resp, err := httpwire.ReadResponse(src, start, !cfg.Profile)
		if err != nil {
			return nil, cancelled(ctx, fmt.Errorf("request %d/%d: reading response: %w", i+1, cfg.Count, err))
		}
		logger.Debug("received response",
			zap.Stringer("request_id", reqID),
			zap.Int("n", i+1),
			zap.String("status", resp.Status),
			zap.Duration("elapsed", resp.Elapsed),
			zap.Int64("bytes", resp.Bytes),
		)
		samples = append(samples, stats.Sample{Elapsed: resp.Elapsed, Bytes: uint64(resp.Bytes), Succeeded: resp.Succeeded()})
		if err := printResponse(stdout, resp, cfg.Profile); err != nil {
			return nil, fmt.Errorf("writing output: %w", err)
		}
		if resp.Closed && i+1 < cfg.Count {
			return nil, fmt.Errorf("after request %d/%d: %w", i+1, cfg.Count, ErrEarlyClose)
		}
	}

	if cfg.Profile {
		if _, err := stats.Summarize(samples).WriteTo(stdout); err != nil {
			return nil, fmt.Errorf("writing output: %w", err)
		}
	}
	logger.Info("done", zap.Int("requests", len(samples)))
	return samples, nil
}

// printResponse writes a single response.
// In profile mode that's one line with the status; otherwise it's the whole head, verbatim, and the decoded body.
func printResponse(w io.Writer, resp *httpwire.Response, profile bool) error {
	ms := resp.Elapsed.Milliseconds()
	if profile {
		_, err := fmt.Fprintf(w, "Received response (in %d ms): %s\n", ms, resp.Status)
		return err
	}
	_, err := fmt.Fprintf(w, "Received response (in %d ms):\n%s%s\n", ms, resp.Head, httpwire.DecodeBody(resp.Body))
	return err
}

// cancelled prefers the context's error when ctx was cancelled mid-read: the I/O error is just a symptom of us closing the connection.
func cancelled(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%w (%v)", ctxErr, err)
	}
	return err
}
