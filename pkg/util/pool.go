package util

import "runtime"

// GetOptimalPoolSize returns the worker and parser pool size for CPU-bound
// extraction: 2x the core count, clamped to [4, 32].
//
// Parsing spends most of its time in cgo, so twice the cores keeps every core
// busy while a goroutine is blocked in tree-sitter. The cap bounds the memory
// held by pooled parsers on large machines.
func GetOptimalPoolSize() int {
	poolSize := runtime.NumCPU() * 2
	if poolSize < 4 {
		poolSize = 4
	}
	if poolSize > 32 {
		poolSize = 32
	}
	return poolSize
}

// GetOptimalPoolSizeWithOverride returns override when it is positive and
// GetOptimalPoolSize() otherwise.
func GetOptimalPoolSizeWithOverride(override int) int {
	if override > 0 {
		return override
	}
	return GetOptimalPoolSize()
}
