// Package lsp implements a language server for Ex scripts.
package lsp

import (
	"context"
	"io"
	"os"

	"github.com/sourcegraph/jsonrpc2"
	"src.exline.sh/pkg/logutil"
	"src.exline.sh/pkg/prog"
)

var logger = logutil.GetLogger("[lsp] ")

// Program is the LSP subprogram.
type Program struct {
	run   bool
	paths *prog.Paths
}

func (p *Program) RegisterFlags(fs *prog.FlagSet) {
	fs.BoolVar(&p.run, "lsp", false, "run language server instead of shell")
	p.paths = fs.Paths()
}

func (p *Program) Run(fds [3]*os.File, _ []string) error {
	if !p.run {
		return prog.ErrNextProgram
	}
	s := newServer()
	// User commands defined in the startup script are known to the checker
	// and completer, but only when the script is named explicitly.
	if p.paths != nil && p.paths.RC != "" && !p.paths.NoRC {
		if err := s.evaler.Source(p.paths.RC, true); err != nil {
			logger.Println("sourcing", p.paths.RC, "failed:", err)
		}
	}
	serve(context.Background(), transport{fds[0], fds[1]}, s)
	return nil
}

// Serves LSP requests on rwc until the peer disconnects.
func serve(ctx context.Context, rwc io.ReadWriteCloser, s *server) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	conn := jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}),
		handler(s))
	<-conn.DisconnectNotify()
}

type transport struct{ in, out *os.File }

func (c transport) Read(p []byte) (int, error)  { return c.in.Read(p) }
func (c transport) Write(p []byte) (int, error) { return c.out.Write(p) }

func (c transport) Close() error {
	if err := c.in.Close(); err != nil {
		c.out.Close()
		return err
	}
	return c.out.Close()
}
