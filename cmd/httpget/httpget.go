// httpget sends one or more GET requests to a URL over a single raw TCP connection, speaking HTTP/1.1 by hand.
// With a single request, it prints the response's head and body.
// With -profile N, it sends N requests and prints a line per response, then timing and size statistics.
//
// usage: httpget -url URL [-profile N]
//
// https:// URLs are accepted, but the connection is always plaintext on the given (or default 80) port.
//
// environment:
//
//	HTTPGET_LOG_LEVEL     level for diagnostics on stderr: debug, info, warn (default), error
//	HTTPGET_DIAL_TIMEOUT  timeout for the TCP connect, e.g. 5s. default: none
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"time"

	"gitlab.com/efronlicht/enve"
	"gitlab.com/efronlicht/httpget/client"
	"gitlab.com/efronlicht/httpget/observability/logging"
	"gitlab.com/efronlicht/httpget/observability/meta"
	"gitlab.com/efronlicht/httpget/observability/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const name = "httpget"

var (
	errMissingURL = errors.New("missing required flag -url")
	errBadCount   = errors.New("invalid -profile count")
	// errFlags wraps errors the flag package has already printed, along with the usage.
	errFlags = errors.New("bad flags")
)

// args are the parsed command line.
type args struct {
	url     string
	count   int
	profile bool // -profile was given; its value is count.
	version bool
}

func parseArgs(argv []string, stderr io.Writer) (args, error) {
	var a args
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVar(&a.url, "url", "", "URL to GET (required), e.g. http://example.com:8080/path")
	rawCount := fs.String("profile", "", "send `N` requests and print statistics instead of the response")
	fs.BoolVar(&a.version, "version", false, "print the version and exit")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "usage: %s -url URL [-profile N]\n", name)
		fs.PrintDefaults()
	}
	if err := fs.Parse(argv); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return a, err
		}
		return a, fmt.Errorf("%w: %w", errFlags, err)
	}
	if a.version {
		return a, nil
	}
	if fs.NArg() > 0 {
		return a, fmt.Errorf("unexpected arguments: %q", fs.Args())
	}
	// presence of -profile, not its value, selects profiling mode.
	fs.Visit(func(f *flag.Flag) { a.profile = a.profile || f.Name == "profile" })
	a.count = 1
	if a.profile {
		n, err := strconv.ParseUint(*rawCount, 10, 31)
		if err != nil {
			return a, fmt.Errorf("%w %q: expected a positive integer", errBadCount, *rawCount)
		}
		if n == 0 {
			return a, fmt.Errorf("%w %d: must be at least 1", errBadCount, n)
		}
		a.count = int(n)
	}
	if a.url == "" {
		return a, errMissingURL
	}
	return a, nil
}

// logLevel reads HTTPGET_LOG_LEVEL, defaulting to warn.
// A missing envvar is fine; an invalid one is returned alongside the default so the caller can complain about it.
func logLevel() (zapcore.Level, error) {
	level, err := enve.Lookup(logging.ParseLevel, "HTTPGET_LOG_LEVEL")
	var missing enve.MissingKeyError
	switch {
	case err == nil:
		return level, nil
	case errors.As(err, &missing):
		return zapcore.WarnLevel, nil
	default:
		return zapcore.WarnLevel, fmt.Errorf("invalid HTTPGET_LOG_LEVEL: %w", err)
	}
}

func main() {
	info := meta.New(name)
	a, err := parseArgs(os.Args[1:], os.Stderr)
	switch {
	case errors.Is(err, flag.ErrHelp):
		os.Exit(0)
	case errors.Is(err, errFlags):
		os.Exit(2)
	case err != nil:
		fmt.Fprintf(os.Stderr, "%s: %v\n", name, err)
		os.Exit(2)
	case a.version:
		fmt.Println(info)
		return
	}

	level, levelErr := logLevel()
	logger := logging.New(zapcore.Lock(os.Stderr), level, info.Field())
	defer logger.Sync()
	if levelErr != nil {
		logger.Warn("ignoring HTTPGET_LOG_LEVEL", zap.Stringer("level", level), zap.Error(levelErr))
	}
	logger.Debug("metadata dump", zap.Reflect("meta", info))

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx = trace.SaveCtx(ctx, trace.New())

	cfg := client.Config{
		URL:         a.url,
		Count:       a.count,
		Profile:     a.profile,
		DialTimeout: enve.DurationOr("HTTPGET_DIAL_TIMEOUT", 0),
	}
	start := time.Now()
	if _, err := client.Run(ctx, cfg, os.Stdout, logger); err != nil {
		cancel()
		logger.Fatal("run failed", zap.String("url", a.url), zap.Duration("elapsed", time.Since(start)), zap.Error(err))
	}
}
