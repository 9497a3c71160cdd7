package testutil

import (
	"errors"
	"fmt"
)

// Common test errors for exercising failure paths.
var (
	ErrSourceFailed  = errors.New("test source failed")
	ErrSinkFailed    = errors.New("test sink failed")
	ErrHandlerFailed = errors.New("test handler failed")
)

// Ints returns the sequence 0..n-1.
func Ints(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i
	}
	return out
}

// Strings returns n generated strings "item-0".."item-<n-1>".
func Strings(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("item-%d", i)
	}
	return out
}

// Words is a small fixed vocabulary for string stream tests.
var Words = []string{"alpha", "bravo", "charlie", "delta", "echo"}
