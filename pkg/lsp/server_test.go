package lsp

import (
	"context"
	"encoding/json"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	lsp "github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"

	"src.exline.sh/pkg/testutil"
)

const testURI = lsp.DocumentURI("file:///rc.ex")

// A client connected to a server through an in-memory pipe.
type client struct {
	t     *testing.T
	conn  *jsonrpc2.Conn
	diags chan lsp.PublishDiagnosticsParams
}

func setup(t *testing.T) *client {
	serverSide, clientSide := net.Pipe()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		serve(ctx, serverSide, newServer())
		close(done)
	}()

	c := &client{t: t, diags: make(chan lsp.PublishDiagnosticsParams, 10)}
	c.conn = jsonrpc2.NewConn(ctx,
		jsonrpc2.NewBufferedStream(clientSide, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(c.handle))
	t.Cleanup(func() {
		c.conn.Close()
		cancel()
		<-done
	})
	return c
}

func (c *client) handle(_ context.Context, _ *jsonrpc2.Conn, req *jsonrpc2.Request) (any, error) {
	if req.Method == "textDocument/publishDiagnostics" && req.Params != nil {
		var params lsp.PublishDiagnosticsParams
		if err := json.Unmarshal(*req.Params, &params); err == nil {
			c.diags <- params
		}
	}
	return nil, nil
}

func (c *client) call(method string, params, result any) error {
	c.t.Helper()
	return c.conn.Call(context.Background(), method, params, result)
}

func (c *client) open(text string) {
	c.t.Helper()
	err := c.call("textDocument/didOpen", lsp.DidOpenTextDocumentParams{
		TextDocument: lsp.TextDocumentItem{URI: testURI, Text: text}}, nil)
	if err != nil {
		c.t.Fatal(err)
	}
}

func (c *client) nextDiagnostics() []lsp.Diagnostic {
	c.t.Helper()
	select {
	case params := <-c.diags:
		if params.URI != testURI {
			c.t.Errorf("got diagnostics for %q", params.URI)
		}
		return params.Diagnostics
	case <-time.After(testutil.Scaled(2 * time.Second)):
		c.t.Fatal("timed out waiting for diagnostics")
		return nil
	}
}

func pos(line, char int) lsp.Position { return lsp.Position{Line: line, Character: char} }

func TestInitialize(t *testing.T) {
	c := setup(t)
	var result lsp.InitializeResult
	if err := c.call("initialize", lsp.InitializeParams{}, &result); err != nil {
		t.Fatal(err)
	}
	caps := result.Capabilities
	if !caps.HoverProvider || caps.CompletionProvider == nil {
		t.Errorf("got capabilities %+v", caps)
	}
	if sync := caps.TextDocumentSync; sync == nil || sync.Options == nil || sync.Options.Change != lsp.TDSKFull {
		t.Errorf("got text document sync %+v", sync)
	}
}

func TestUnknownMethod(t *testing.T) {
	c := setup(t)
	err := c.call("textDocument/rename", struct{}{}, nil)
	var rpcErr *jsonrpc2.Error
	if e, ok := err.(*jsonrpc2.Error); ok {
		rpcErr = e
	}
	if rpcErr == nil || rpcErr.Code != jsonrpc2.CodeMethodNotFound {
		t.Errorf("got error %v, want method not found", err)
	}
}

func TestDiagnostics(t *testing.T) {
	c := setup(t)
	c.open("echo a\nNope x\n")
	want := []lsp.Diagnostic{{
		Range:    lsp.Range{Start: pos(1, 0), End: pos(1, 6)},
		Severity: lsp.Error,
		Source:   "exline",
		Message:  "E492: Not a command: Nope",
	}}
	if diff := cmp.Diff(want, c.nextDiagnostics()); diff != "" {
		t.Errorf("diagnostics (-want +got):\n%s", diff)
	}

	err := c.call("textDocument/didChange", lsp.DidChangeTextDocumentParams{
		TextDocument: lsp.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: testURI}},
		ContentChanges: []lsp.TextDocumentContentChangeEvent{{Text: "echo a\r\necho b\r\n"}},
	}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if diags := c.nextDiagnostics(); len(diags) != 0 {
		t.Errorf("got diagnostics %v, want none", diags)
	}
}

func TestDidChange_InvalidParams(t *testing.T) {
	c := setup(t)
	err := c.call("textDocument/didChange", lsp.DidChangeTextDocumentParams{
		TextDocument: lsp.VersionedTextDocumentIdentifier{
			TextDocumentIdentifier: lsp.TextDocumentIdentifier{URI: testURI}},
	}, nil)
	if e, ok := err.(*jsonrpc2.Error); !ok || e.Code != jsonrpc2.CodeInvalidParams {
		t.Errorf("got error %v, want invalid params", err)
	}
}

func (c *client) complete(p lsp.Position) []lsp.CompletionItem {
	c.t.Helper()
	var items []lsp.CompletionItem
	err := c.call("textDocument/completion", lsp.CompletionParams{
		TextDocumentPositionParams: lsp.TextDocumentPositionParams{
			TextDocument: lsp.TextDocumentIdentifier{URI: testURI},
			Position:     p,
		}}, &items)
	if err != nil {
		c.t.Fatal(err)
	}
	return items
}

func labels(items []lsp.CompletionItem) []string {
	var texts []string
	for _, item := range items {
		texts = append(texts, item.Label)
	}
	return texts
}

func TestCompletion_CommandName(t *testing.T) {
	c := setup(t)
	c.open("echo a\n:ech\n")
	c.nextDiagnostics()

	items := c.complete(pos(1, 4))
	if diff := cmp.Diff([]string{"echo", "echoerr", "echomsg"}, labels(items)); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}
	item := items[0]
	if item.Kind != lsp.CIKFunction || item.Detail != "Echo the arguments" {
		t.Errorf("got kind %v, detail %q", item.Kind, item.Detail)
	}
	wantEdit := &lsp.TextEdit{
		Range:   lsp.Range{Start: pos(1, 1), End: pos(1, 4)},
		NewText: "echo",
	}
	if diff := cmp.Diff(wantEdit, item.TextEdit); diff != "" {
		t.Errorf("text edit (-want +got):\n%s", diff)
	}
}

func TestCompletion_Option(t *testing.T) {
	c := setup(t)
	c.open("command -na")
	c.nextDiagnostics()

	items := c.complete(pos(0, 11))
	if diff := cmp.Diff([]string{"-nargs"}, labels(items)); diff != "" {
		t.Fatalf("labels (-want +got):\n%s", diff)
	}
	if items[0].Kind != lsp.CIKProperty {
		t.Errorf("got kind %v", items[0].Kind)
	}
	if r := items[0].TextEdit.Range; r.Start != pos(0, 8) {
		t.Errorf("got range %+v", r)
	}
}

func TestCompletion_UnknownDocument(t *testing.T) {
	c := setup(t)
	items := c.complete(pos(0, 0))
	for _, item := range items {
		if item.Kind != lsp.CIKFunction {
			t.Errorf("got item %+v, want only command names", item)
		}
	}
}

func (c *client) hover(p lsp.Position) lsp.Hover {
	c.t.Helper()
	var h lsp.Hover
	err := c.call("textDocument/hover", lsp.TextDocumentPositionParams{
		TextDocument: lsp.TextDocumentIdentifier{URI: testURI},
		Position:     p,
	}, &h)
	if err != nil {
		c.t.Fatal(err)
	}
	return h
}

func TestHover(t *testing.T) {
	c := setup(t)
	c.open("echo a\n  :so ~/x.ex\nnope\n")
	c.nextDiagnostics()

	h := c.hover(pos(1, 5))
	if len(h.Contents) != 1 || !strings.Contains(h.Contents[0].Value, "so[urce]") ||
		!strings.Contains(h.Contents[0].Value, "Read Ex commands from a file") {
		t.Errorf("got hover %+v", h)
	}
	wantRange := &lsp.Range{Start: pos(1, 0), End: pos(1, 12)}
	if diff := cmp.Diff(wantRange, h.Range); diff != "" {
		t.Errorf("range (-want +got):\n%s", diff)
	}

	if h := c.hover(pos(2, 1)); len(h.Contents) != 0 {
		t.Errorf("got hover %+v for unknown command", h)
	}
}

func TestPositionConversion(t *testing.T) {
	s := "a\r\nb好\n𝄞c"
	for _, tc := range []struct {
		idx int
		pos lsp.Position
	}{
		{0, pos(0, 0)},
		{1, pos(0, 1)},
		{4, pos(1, 1)},
		{7, pos(1, 2)},
		{8, pos(2, 0)},
		{12, pos(2, 2)},
		{13, pos(2, 3)},
	} {
		if got := lspPositionFromIdx(s, tc.idx); got != tc.pos {
			t.Errorf("lspPositionFromIdx(%d) = %v, want %v", tc.idx, got, tc.pos)
		}
		if got := lspPositionToIdx(s, tc.pos); got != tc.idx {
			t.Errorf("lspPositionToIdx(%v) = %d, want %d", tc.pos, got, tc.idx)
		}
	}
	// Both bytes of "\r\n" start the second line.
	for _, idx := range []int{2, 3} {
		if got := lspPositionFromIdx(s, idx); got != pos(1, 0) {
			t.Errorf("lspPositionFromIdx(%d) = %v, want 1:0", idx, got)
		}
	}
}
