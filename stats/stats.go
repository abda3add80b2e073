// Package stats reduces a run's samples to the numbers we print at the end of it.
package stats

import (
	"slices"
)

// Number is any integer or floating-point type.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr |
		~float32 | ~float64
}

// Mean returns the arithmetic mean of s. It panics if s is empty.
func Mean[T Number](s []T) float64 {
	mustNotBeEmpty(len(s))
	var sum float64 // summing as float64 can't overflow the way summing T can.
	for _, v := range s {
		sum += float64(v)
	}
	return sum / float64(len(s))
}

// Median returns the middle element of a sorted copy of s, or the mean of the two middle elements if len(s) is even.
// s itself is left untouched. It panics if s is empty.
func Median[T Number](s []T) float64 {
	mustNotBeEmpty(len(s))
	sorted := slices.Clone(s)
	slices.Sort(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return float64(sorted[mid])
	}
	return (float64(sorted[mid-1]) + float64(sorted[mid])) / 2
}

// Min returns the smallest element of s. It panics if s is empty.
func Min[T Number](s []T) T { mustNotBeEmpty(len(s)); return slices.Min(s) }

// Max returns the largest element of s. It panics if s is empty.
func Max[T Number](s []T) T { mustNotBeEmpty(len(s)); return slices.Max(s) }

func mustNotBeEmpty(n int) {
	if n == 0 {
		panic("stats: empty sample")
	}
}
