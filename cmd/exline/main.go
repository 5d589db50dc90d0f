// Exline reads and executes Ex commands: interactively on a terminal with
// completion and history, from scripts, or as a language server for Ex
// scripts.
package main

import (
	"os"

	"src.exline.sh/pkg/buildinfo"
	"src.exline.sh/pkg/lsp"
	"src.exline.sh/pkg/pprof"
	"src.exline.sh/pkg/prog"
	"src.exline.sh/pkg/shell"
)

func main() {
	os.Exit(prog.Run(
		[3]*os.File{os.Stdin, os.Stdout, os.Stderr}, os.Args,
		prog.Composite(
			&pprof.Program{}, &buildinfo.Program{}, &lsp.Program{},
			&shell.Program{})))
}
