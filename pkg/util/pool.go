package util

import "runtime"

const (
	minWorkers = 2
	maxWorkers = 16
)

// WorkerCount returns how many files are extracted in parallel during a
// batch scan.
//
// Parsing goes through cgo and extraction is CPU bound, so the count follows
// runtime.NumCPU() clamped to [2, 16]. Each worker holds its own parser, so
// the upper bound also caps parser memory.
//
// If override > 0 it is returned unchanged.
func WorkerCount(override int) int {
	if override > 0 {
		return override
	}

	n := runtime.NumCPU()
	if n < minWorkers {
		n = minWorkers
	}
	if n > maxWorkers {
		n = maxWorkers
	}
	return n
}
