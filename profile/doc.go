// Package profile provides optional runtime profiling for prex.
//
// Profiling is backed by [github.com/pkg/profile] and compiled in only when
// building with the "pprof" tag:
//
//	go build -tags pprof .
//
// Without the tag, [Profiler.Start] returns a no-op and [Modes] is empty, so
// callers never need their own build constraints.
//
//	p := profile.Profiler{Mode: "cpu", Path: "/tmp/prex"}
//	defer p.Start().Stop()
//
// Supported modes are allocs, block, clock, cpu, goroutine, heap, mem, mutex,
// thread and trace. Each writes <mode>.pprof (or trace.out) into Path, which
// can be inspected with:
//
//	go tool pprof -http=: /tmp/prex/cpu.pprof
//
// Builds with the tag also register the net/http/pprof handlers.
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
