// Package shell is the entry point for the Ex shell. It executes a script
// given as an argument or with -c, and reads commands from the terminal
// otherwise.
package shell

import (
	"os"

	"src.exline.sh/pkg/logutil"
	"src.exline.sh/pkg/prog"
)

var logger = logutil.GetLogger("[shell] ")

// Program is the shell subprogram.
type Program struct {
	codeInArg   bool
	compileOnly bool
	db          string
	json        *bool
	paths       *prog.Paths
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.codeInArg, "c", false,
		"take first argument as code to execute")
	fs.BoolVar(&p.compileOnly, "compileonly", false,
		"check the script for errors without executing it")
	fs.StringVar(&p.db, "db", "",
		"path to the database of the command history and option values")
	p.json = fs.JSON()
	p.paths = fs.Paths()
}

func (p *Program) Run(fds [3]*os.File, args []string) error {
	if p.paths == nil {
		p.paths = &prog.Paths{}
	}
	if len(args) == 0 {
		if p.codeInArg {
			return prog.BadUsage("-c requires an argument")
		}
		if p.compileOnly {
			return prog.BadUsage("-compileonly requires a script")
		}
		cleanup := initSignal(fds[2], true)
		defer cleanup()
		return interact(fds, &interactCfg{Paths: *p.paths, DB: p.db})
	}
	if len(args) > 1 {
		return prog.BadUsage("arguments after the script are not supported")
	}

	cleanup := initSignal(fds[2], false)
	defer cleanup()
	json := p.json != nil && *p.json
	return prog.Exit(script(fds, args[0], &scriptCfg{
		Cmd: p.codeInArg, CompileOnly: p.compileOnly, JSON: json,
		Config: p.paths.Config}))
}
