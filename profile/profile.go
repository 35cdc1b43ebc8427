package profile

// Settings select what to profile and where profiles are written.
type Settings struct {
	Mode  string // one of [Modes]; empty disables profiling
	Dir   string // output directory; empty uses the working directory
	Quiet bool   // suppress the profiler's own log messages
}

// Stopper ends a profiling session and flushes its profile.
type Stopper interface{ Stop() }

// Start begins profiling with s.
//
// Without the pprof build tag, or with an empty or unknown mode, Start
// returns a no-op Stopper. Stop is always safe to call, more than once.
func Start(s Settings) Stopper {
	if s.Mode == "" {
		return nop{}
	}

	return start(s)
}

type nop struct{}

func (nop) Stop() {}
