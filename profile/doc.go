// Package profile provides optional runtime profiling for the mial
// interpreter.
//
// # Overview
//
// This package integrates [github.com/pkg/profile] with conditional
// compilation. Profiling must be enabled at build time using the "pprof"
// build tag:
//
//	go build -tags pprof -o mial .
//
// Without the tag, [Modes] is empty and [Start] returns a no-op
// controller, so callers never need their own build constraints.
//
// # Available Profiling Modes
//
//   - allocs:    Memory allocation profiling (all allocations)
//   - block:     Block (synchronization) profiling
//   - clock:     Wall-clock profiling
//   - cpu:       CPU profiling
//   - goroutine: Goroutine profiling
//   - heap:      Heap memory profiling (live allocations)
//   - mem:       General memory profiling
//   - mutex:     Mutex contention profiling
//   - thread:    Thread creation profiling
//   - trace:     Execution trace profiling
//
// # Using File-Based Profiling
//
// Profiling starts from [Settings] and runs until stopped:
//
//	defer profile.Start(profile.Settings{Mode: "cpu", Dir: "/tmp/profiles"}).Stop()
//
// Profile files are written to the configured directory with names matching
// the profiling mode (e.g., cpu.pprof, mem.pprof).
//
// # Command-Line Usage
//
//	# Profile a long-running program
//	mial --pprof-mode cpu run examples/learning.mial
//
//	# Analyze the result
//	go tool pprof -http=: ~/.cache/mial/pprof/cpu.pprof
//
// The default output directory is the "pprof" subdirectory of the user cache
// directory.
package profile

// Tag is the build tag required to enable pprof profiling, and the name of
// the default output subdirectory.
const Tag = `pprof`
