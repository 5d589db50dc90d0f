package shell

import (
	"fmt"
	"io"

	"src.exline.sh/pkg/cli/histutil"
	"src.exline.sh/pkg/eval"
	"src.exline.sh/pkg/messages"
	"src.exline.sh/pkg/options"
	"src.exline.sh/pkg/sanitize"
	"src.exline.sh/pkg/store"
)

// Everything the commands of a session share.
type session struct {
	Evaler  *eval.Evaler
	Options *options.Table
	History *histutil.HybridStore
}

type sessionCfg struct {
	// Path of the YAML file with option values; empty means the default.
	Config string
	// Path of the database; empty means no database.
	DB string
}

// Creates the Evaler with all commands installed, and loads option values.
// Problems that leave the session usable are written to stderr as warnings.
// The returned function closes the database.
func newSession(echoer *messages.Echoer, stderr io.Writer, cfg sessionCfg) (*session, func()) {
	warn := func(err error) { fmt.Fprintln(stderr, "Warning:", err) }
	ev := eval.NewEvaler(echoer)
	cleanup := func() {}

	var db store.DBStore
	if cfg.DB != "" {
		st, err := store.NewStore(cfg.DB)
		if err != nil {
			warn(fmt.Errorf("cannot open database %s: %w", cfg.DB, err))
			fmt.Fprintln(stderr, "The command history and option values will not be saved.")
		} else {
			db = st
			cleanup = func() {
				if err := st.Close(); err != nil {
					logger.Println("closing database:", err)
				}
			}
		}
	}

	var histDB histutil.DB
	if db != nil {
		histDB = db
	}
	history, err := histutil.NewHybridStore(histDB, ev.HasPrivateData)
	if err != nil {
		warn(err)
	}

	opts := options.NewTable()
	opts.OnChange(func(o *options.Option) {
		if o.HasName("messages") {
			echoer.History().SetMax(opts.Int("messages"))
		}
	})
	install := []error{
		options.InstallCommands(ev, opts),
		histutil.InstallCommands(ev, history),
		sanitize.InstallCommands(ev, sanitize.New(ev, history), opts),
	}
	for _, err := range install {
		if err != nil {
			// Only name clashes between built-in commands can fail.
			panic(err)
		}
	}

	config := cfg.Config
	if config == "" {
		config, err = ConfigPath()
		if err != nil {
			warn(err)
		}
	}
	if config != "" {
		if err := opts.LoadFile(config); err != nil {
			warn(err)
		}
	}
	if db != nil {
		if err := opts.SetStore(db); err != nil {
			warn(err)
		}
	}
	echoer.History().SetMax(opts.Int("messages"))

	return &session{ev, opts, history}, cleanup
}
