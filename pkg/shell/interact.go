package shell

import (
	"fmt"
	"io"
	"os"
	"time"

	"src.exline.sh/pkg/cli"
	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/eval"
	"src.exline.sh/pkg/messages"
	"src.exline.sh/pkg/prog"
	"src.exline.sh/pkg/sys"
)

// Configuration for the interactive mode.
type interactCfg struct {
	Paths prog.Paths
	// Path of the database; empty means the default.
	DB string
}

// Runs an interactive session: commands are read from the terminal with the
// command line, or line by line when stdin is not a terminal.
func interact(fds [3]*os.File, cfg *interactCfg) error {
	echoer := messages.NewEchoer(fds[1], sys.IsATTY(fds[1].Fd()), nil)
	db := cfg.DB
	if db == "" {
		var err error
		db, err = DBPath()
		if err != nil {
			fmt.Fprintln(fds[2], "Warning:", err)
		}
	}
	s, cleanup := newSession(echoer, fds[2], sessionCfg{Config: cfg.Paths.Config, DB: db})
	defer cleanup()

	var ed editor
	if sys.IsATTY(fds[0].Fd()) {
		ed = cli.NewApp(cli.AppSpec{
			TTY:     cli.NewTTY(fds[0], fds[2]),
			Options: s.Options,
			History: s.History,
			Complete: func(c *complete.Context) {
				c.Fork("ex", 0, s.Evaler.CompleteEx)
			},
		})
	} else {
		ed = newMinEditor(fds[0], fds[2])
	}

	if !cfg.Paths.NoRC {
		rc := cfg.Paths.RC
		if rc == "" {
			var err error
			rc, err = RCPath()
			if err != nil {
				fmt.Fprintln(fds[2], "Warning:", err)
			}
		}
		if rc != "" {
			sourceRC(s.Evaler, rc)
		}
	}

	cooldown := time.Second
	for {
		line, err := ed.ReadCommand()
		if err == io.EOF {
			break
		} else if err != nil {
			fmt.Fprintln(fds[2], "Editor error:", err)
			if _, isMinEditor := ed.(*minEditor); !isMinEditor {
				fmt.Fprintln(fds[2], "Falling back to basic line editor")
				ed = newMinEditor(fds[0], fds[2])
			} else {
				fmt.Fprintln(fds[2], "Don't know what to do, pid is", os.Getpid())
				fmt.Fprintln(fds[2], "Restarting editor in", cooldown)
				time.Sleep(cooldown)
				if cooldown < time.Minute {
					cooldown *= 2
				}
			}
			continue
		}

		// No error; reset cooldown.
		cooldown = time.Second

		// Errors are reported through the echoer.
		s.Evaler.ExecuteLine(line)
	}
	return nil
}

// Sources the startup script if it exists.
func sourceRC(ev *eval.Evaler, rc string) {
	if _, err := os.Stat(rc); os.IsNotExist(err) {
		logger.Println("no startup script at", rc)
		return
	}
	if err := ev.Source(rc, false); err != nil {
		logger.Println("sourcing", rc, "failed:", err)
	}
}
