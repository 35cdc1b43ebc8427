//go:build pprof

package profile

import (
	"iter"
	"maps"
	"slices"
	"sync"

	"github.com/pkg/profile"
)

// Modes returns the supported profiling modes in sorted order.
func Modes() iter.Seq[string] {
	return slices.Values(slices.Sorted(maps.Keys(modes)))
}

var modes = map[string]func(*profile.Profile){
	"block":     profile.BlockProfile,
	"cpu":       profile.CPUProfile,
	"clock":     profile.ClockProfile,
	"goroutine": profile.GoroutineProfile,
	"mem":       profile.MemProfile,
	"allocs":    profile.MemProfileAllocs,
	"heap":      profile.MemProfileHeap,
	"mutex":     profile.MutexProfile,
	"thread":    profile.ThreadcreationProfile,
	"trace":     profile.TraceProfile,
}

// options translates s into pkg/profile options. It reports false for an
// unknown mode.
func options(s Settings) ([]func(*profile.Profile), bool) {
	mode, ok := modes[s.Mode]
	if !ok {
		return nil, false
	}

	// Signal handling is left to the command's context.
	opts := []func(*profile.Profile){mode, profile.NoShutdownHook}

	if s.Dir != "" {
		opts = append(opts, profile.ProfilePath(s.Dir))
	}

	if s.Quiet {
		opts = append(opts, profile.Quiet)
	}

	return opts, true
}

func start(s Settings) Stopper {
	opts, ok := options(s)
	if !ok {
		return nop{}
	}

	p := profile.Start(opts...)

	return stopOnce{once: new(sync.Once), stop: p.Stop}
}

// stopOnce makes a profiler safe to stop repeatedly.
type stopOnce struct {
	once *sync.Once
	stop func()
}

func (s stopOnce) Stop() { s.once.Do(s.stop) }
