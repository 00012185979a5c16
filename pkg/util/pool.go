package util

import "runtime"

// GetOptimalPoolSize returns the worker count for CPU-bound parallel work.
//
// Formula: min(max(runtime.NumCPU() * 2, 4), 32)
//
// 2× cores keeps the CPU busy while CGO parse calls block a goroutine;
// the floor guarantees some parallelism on small machines and the cap
// bounds parser memory on large ones.
func GetOptimalPoolSize() int {
	size := runtime.NumCPU() * 2

	if size < 4 {
		size = 4
	}
	if size > 32 {
		size = 32
	}

	return size
}

// GetOptimalPoolSizeWithOverride returns pool size with optional override.
//
// If override > 0, uses the override value (for testing/tuning).
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
