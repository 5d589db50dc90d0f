//go:build !windows && !plan9

package shell

import (
	"io"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"golang.org/x/sys/unix"
	"src.exline.sh/pkg/sys"
)

// Handles signals until the returned function is called. SIGINT and SIGTERM
// end a script; an interactive session only ends on SIGHUP, since the
// command line handles Ctrl-C itself.
func initSignal(stderr io.Writer, interactive bool) func() {
	sigCh := sys.NotifySignals()
	go func() {
		for sig := range sigCh {
			if ignoreSignal(sig) {
				continue
			}
			logger.Println("signal", signalName(sig))
			handleSignal(sig, stderr, interactive)
		}
	}()
	return func() {
		signal.Stop(sigCh)
		close(sigCh)
	}
}

func ignoreSignal(sig os.Signal) bool {
	// SIGURG isn't interesting since it is used internally by the Go runtime on UNIX and occurs
	// with great frequency.
	return sig.(syscall.Signal) == syscall.SIGURG
}

func signalName(sig os.Signal) string {
	return unix.SignalName(sig.(syscall.Signal))
}

var exit = os.Exit

func handleSignal(sig os.Signal, stderr io.Writer, interactive bool) {
	switch sig {
	case syscall.SIGHUP:
		exit(0)
	case syscall.SIGINT, syscall.SIGTERM:
		if !interactive {
			exit(128 + int(sig.(syscall.Signal)))
		}
	case syscall.SIGUSR1:
		stderr.Write(dumpStack())
	}
}

// Returns the stacks of all goroutines.
func dumpStack() []byte {
	buf := make([]byte, 1024)
	for {
		n := runtime.Stack(buf, true)
		if n < len(buf) {
			return buf[:n]
		}
		buf = make([]byte, 2*len(buf))
	}
}
