// Package pprof adds profiling support to exline.
package pprof

import (
	"fmt"
	"os"
	"runtime/pprof"

	"src.exline.sh/pkg/prog"
)

// Profiles from runtime/pprof that are written when the program finishes.
var snapshots = []struct {
	name, flag, desc string
}{
	{"allocs", "allocsprofile", "memory allocation"},
	{"heap", "heapprofile", "heap"},
	{"goroutine", "goroutineprofile", "goroutine"},
}

// Program adds support for the -cpuprofile flag and flags that write
// snapshot profiles. It always lets the next program run.
type Program struct {
	cpuProfile string
	paths      []string
}

func (p *Program) RegisterFlags(f *prog.FlagSet) {
	f.StringVar(&p.cpuProfile, "cpuprofile", "", "write CPU profile to file")
	p.paths = make([]string, len(snapshots))
	for i, s := range snapshots {
		f.StringVar(&p.paths[i], s.flag, "", "write "+s.desc+" profile to file")
	}
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	var cleanups []func([3]*os.File)
	if p.cpuProfile != "" {
		f, err := os.Create(p.cpuProfile)
		if err != nil {
			fmt.Fprintln(fds[2], "Warning: cannot create CPU profile:", err)
			fmt.Fprintln(fds[2], "Continuing without CPU profiling.")
		} else {
			pprof.StartCPUProfile(f)
			cleanups = append(cleanups, func([3]*os.File) {
				pprof.StopCPUProfile()
				f.Close()
			})
		}
	}
	for i, s := range snapshots {
		if p.paths[i] == "" {
			continue
		}
		f, err := os.Create(p.paths[i])
		if err != nil {
			fmt.Fprintf(fds[2], "Warning: cannot create %s profile: %v\n", s.desc, err)
			fmt.Fprintf(fds[2], "Continuing without %s profiling.\n", s.desc)
			continue
		}
		name := s.name
		cleanups = append(cleanups, func(fds [3]*os.File) {
			if err := pprof.Lookup(name).WriteTo(f, 0); err != nil {
				fmt.Fprintf(fds[2], "Warning: cannot write %s profile: %v\n", name, err)
			}
			f.Close()
		})
	}
	return prog.NextProgram(cleanups...)
}
