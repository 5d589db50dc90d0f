package pprof_test

import (
	"os"
	"path/filepath"
	"testing"

	"src.exline.sh/pkg/pprof"
	"src.exline.sh/pkg/prog"
	"src.exline.sh/pkg/prog/progtest"
	"src.exline.sh/pkg/testutil"
)

var (
	Test       = progtest.Test
	ThatExline = progtest.ThatExline
)

func TestProgram(t *testing.T) {
	dir := testutil.TempDir(t)
	cpuProfile := filepath.Join(dir, "cpuprof")
	allocsProfile := filepath.Join(dir, "allocsprof")
	heapProfile := filepath.Join(dir, "heapprof")

	Test(t, prog.Composite(&pprof.Program{}, noopProgram{}),
		ThatExline("-cpuprofile", cpuProfile,
			"-allocsprofile", allocsProfile, "-heapprofile", heapProfile).DoesNothing(),
		ThatExline("-cpuprofile", "/a/bad/path").
			WritesStderrContaining("Warning: cannot create CPU profile:"),
		ThatExline("-allocsprofile", "/a/bad/path").
			WritesStderrContaining("Warning: cannot create memory allocation profile:"),
	)

	// Check for the effect of the flags. There isn't much to test beyond a
	// sanity check that the profile files now exist.
	for _, name := range []string{cpuProfile, allocsProfile, heapProfile} {
		if _, err := os.Stat(name); err != nil {
			t.Errorf("profile file does not exist: %v", err)
		}
	}
}

type noopProgram struct{}

func (noopProgram) RegisterFlags(*prog.FlagSet)     {}
func (noopProgram) Run([3]*os.File, []string) error { return nil }
