package stats

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Sample is what we keep from a single response.
type Sample struct {
	Elapsed   time.Duration // time to the status line.
	Bytes     uint64        // bytes read for the response, head included.
	Succeeded bool          // 2xx status.
}

// Summary is the statistics block printed after a profiling run.
type Summary struct {
	Total, Succeeded int

	MeanMS, MedianMS float64
	MinMS, MaxMS     uint64

	MinBytes, MaxBytes uint64
}

// Summarize reduces samples to a Summary. Elapsed times are truncated to whole milliseconds first.
// It panics if samples is empty.
func Summarize(samples []Sample) Summary {
	mustNotBeEmpty(len(samples))
	ms := make([]uint64, len(samples))
	sizes := make([]uint64, len(samples))
	var s Summary
	for i, sample := range samples {
		ms[i] = uint64(sample.Elapsed.Milliseconds())
		sizes[i] = sample.Bytes
		if sample.Succeeded {
			s.Succeeded++
		}
	}
	s.Total = len(samples)
	s.MeanMS, s.MedianMS = Mean(ms), Median(ms)
	s.MinMS, s.MaxMS = Min(ms), Max(ms)
	s.MinBytes, s.MaxBytes = Min(sizes), Max(sizes)
	return s
}

// SuccessPercent is the percentage of responses that succeeded, in [0, 100].
func (s Summary) SuccessPercent() float64 {
	if s.Total == 0 {
		return 0
	}
	return 100 * float64(s.Succeeded) / float64(s.Total)
}

// WriteTo writes the statistics block:
//
//	Received 3 (100.00%) successful responses
//	Response time:
//		Mean: 1.33 ms
//		...
func (s Summary) WriteTo(w io.Writer) (n int64, err error) {
	printf := func(format string, args ...any) error {
		m, err := fmt.Fprintf(w, format, args...)
		n += int64(m)
		return err
	}
	for _, line := range []struct {
		format string
		args   []any
	}{
		{"Received %d (%.2f%%) successful responses\n", []any{s.Succeeded, s.SuccessPercent()}},
		{"Response time:\n", nil},
		{"\tMean: %.2f ms\n", []any{s.MeanMS}},
		{"\tMedian: %.2f ms\n", []any{s.MedianMS}},
		{"\tMin: %d ms\n", []any{s.MinMS}},
		{"\tMax: %d ms\n", []any{s.MaxMS}},
		{"Response size:\n", nil},
		{"\tMin: %d bytes\n", []any{s.MinBytes}},
		{"\tMax: %d bytes\n", []any{s.MaxBytes}},
	} {
		if err := printf(line.format, line.args...); err != nil {
			return n, err
		}
	}
	return n, nil
}

func (s Summary) String() string { b := new(strings.Builder); s.WriteTo(b); return b.String() }
