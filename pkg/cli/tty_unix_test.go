//go:build !windows && !plan9

package cli

import (
	"os"
	"testing"
	"time"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"

	"src.exline.sh/pkg/cli/term"
	"src.exline.sh/pkg/testutil"
)

func TestTTYSignal(t *testing.T) {
	tty := NewTTY(os.Stdin, os.Stderr)
	sigch := tty.NotifySignals()

	err := unix.Kill(unix.Getpid(), unix.SIGUSR1)
	if err != nil {
		t.Skip("cannot send SIGUSR1 to myself:", err)
	}

	timeout := time.After(testutil.Scaled(time.Second))
	for {
		select {
		case sig := <-sigch:
			if sig != unix.SIGUSR1 {
				// Other signals, such as SIGURG used by the runtime.
				continue
			}
			tty.StopSignals()
			return
		case <-timeout:
			t.Fatal("SIGUSR1 not relayed")
		}
	}
}

func TestTTY_ReadEventFromPty(t *testing.T) {
	ptmx, pts, err := pty.Open()
	if err != nil {
		t.Skip("cannot open pty:", err)
	}
	defer ptmx.Close()
	defer pts.Close()
	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: 30, Cols: 100}); err != nil {
		t.Fatal(err)
	}

	tty := NewTTY(pts, pts)
	restore, err := tty.Setup()
	if err != nil {
		t.Fatal(err)
	}
	defer restore()
	defer tty.CloseReader()

	if h, w := tty.Size(); h != 30 || w != 100 {
		t.Errorf("Size -> (%d, %d), want (30, 100)", h, w)
	}

	ptmx.WriteString("a\033[Z")
	for _, want := range []term.Event{term.K('a'), term.K(term.Tab, term.Shift)} {
		ev, err := tty.ReadEvent()
		if err != nil || ev != want {
			t.Errorf("ReadEvent -> %v, %v, want %v", ev, err, want)
		}
	}
}
