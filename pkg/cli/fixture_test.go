package cli

import (
	"context"
	"sync"
	"testing"
	"time"

	"src.exline.sh/pkg/cli/histutil"
	"src.exline.sh/pkg/cli/term"
	"src.exline.sh/pkg/complete"
	"src.exline.sh/pkg/options"
	"src.exline.sh/pkg/testutil"
)

// A CommandLine whose posted functions are queued until the test runs them.
type fixture struct {
	t    *testing.T
	cl   *CommandLine
	opts *options.Table

	mu    sync.Mutex
	queue []func()

	beeps     int
	submitted []string
	canceled  []string
}

func setup(t *testing.T, history histutil.Store, completer func(*complete.Context)) *fixture {
	f := &fixture{t: t, opts: options.NewTable()}
	f.cl = NewCommandLine(Config{
		Options: f.opts,
		Post:    f.post,
		History: history,
		Beep:    func() { f.beeps++ },
	})
	f.cl.RegisterCallbacks(ModeEx, Callbacks{
		Submit:   func(text string) { f.submitted = append(f.submitted, text) },
		Cancel:   func(text string) { f.canceled = append(f.canceled, text) },
		Complete: completer,
	})
	return f
}

func (f *fixture) post(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queue = append(f.queue, fn)
}

// Runs the queued functions, including those queued while running.
func (f *fixture) drain() {
	for {
		f.mu.Lock()
		queue := f.queue
		f.queue = nil
		f.mu.Unlock()
		if len(queue) == 0 {
			return
		}
		for _, fn := range queue {
			fn()
		}
	}
}

// Runs queued functions until cond holds.
func (f *fixture) waitFor(what string, cond func() bool) {
	f.t.Helper()
	deadline := time.Now().Add(testutil.Scaled(2 * time.Second))
	for {
		f.drain()
		if cond() {
			return
		}
		if time.Now().After(deadline) {
			f.t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(time.Millisecond)
	}
}

func (f *fixture) open(text string) {
	f.t.Helper()
	if err := f.cl.Open(":", "", ModeEx); err != nil {
		f.t.Fatal(err)
	}
	if text != "" {
		f.cl.SetText(text, len(text))
	}
}

// Presses and releases Tab.
func (f *fixture) tab(mods ...term.Mod) {
	k := term.K(term.Tab, mods...)
	f.cl.Key(k)
	f.cl.KeyUp(k)
}

func (f *fixture) typeText(s string) {
	for _, r := range s {
		f.cl.Key(term.K(r))
	}
}

func (f *fixture) testText(want string) {
	f.t.Helper()
	if got := f.cl.Text(); got != want {
		f.t.Errorf("got text %q, want %q", got, want)
	}
}

// Completes the whole text against a fixed list of command names.
func completeNames(names ...string) func(*complete.Context) {
	return func(c *complete.Context) {
		c.Fork("ex", 0, func(sub *complete.Context) error {
			sub.Title = "Ex Command"
			sub.SetCompletions(complete.Texts(names...))
			return nil
		})
	}
}

// Like completeNames, but the names are produced on another goroutine once
// release is closed.
func completeNamesAsync(release <-chan struct{}, names ...string) func(*complete.Context) {
	return func(c *complete.Context) {
		c.Fork("ex", 0, func(sub *complete.Context) error {
			sub.Generate(func(ctx context.Context, _ string) ([]complete.Item, error) {
				select {
				case <-release:
					return complete.Texts(names...), nil
				case <-ctx.Done():
					return nil, ctx.Err()
				}
			})
			return nil
		})
	}
}
