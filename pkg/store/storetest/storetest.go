// Package storetest keeps test suites against storedefs.Store.
package storetest

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"src.exline.sh/pkg/store/storedefs"
)

var (
	cmds     = []string{"echo foo", "echo bar", "set wildmode=full", "echo foo"}
	baseTime = time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
)

func matchErr(e1, e2 error) bool {
	return (e1 == nil && e2 == nil) || (e1 != nil && e2 != nil && e1.Error() == e2.Error())
}

// TestCmd tests the command history functionality of a Store.
func TestCmd(t *testing.T, store storedefs.Store) {
	t.Helper()

	startSeq, err := store.NextCmdSeq()
	if startSeq != 1 || !matchErr(err, nil) {
		t.Errorf("store.NextCmdSeq() -> %v, %v, want %v, %v", startSeq, err, 1, nil)
	}

	// AddCmd
	for i, cmd := range cmds {
		wantSeq := startSeq + i
		seq, err := store.AddCmd(storedefs.Cmd{Text: cmd, Time: baseTime.Add(time.Duration(i) * time.Hour)})
		if seq != wantSeq || !matchErr(err, nil) {
			t.Errorf("store.AddCmd(%v) -> %v, %v, want %v, %v", cmd, seq, err, wantSeq, nil)
		}
	}

	endSeq, err := store.NextCmdSeq()
	wantedEndSeq := startSeq + len(cmds)
	if endSeq != wantedEndSeq || !matchErr(err, nil) {
		t.Errorf("store.NextCmdSeq() -> %v, %v, want %v, %v", endSeq, err, wantedEndSeq, nil)
	}

	// Cmd
	for i, wantCmd := range cmds {
		seq := i + startSeq
		cmd, err := store.Cmd(seq)
		if cmd.Text != wantCmd || !cmd.Time.Equal(baseTime.Add(time.Duration(i)*time.Hour)) || !matchErr(err, nil) {
			t.Errorf("store.Cmd(%v) -> %v, %v, want %v, %v", seq, cmd, err, wantCmd, nil)
		}
	}

	// CmdsWithSeq
	wantCmdWithSeqs := []storedefs.Cmd{
		{Text: cmds[1], Seq: startSeq + 1, Time: baseTime.Add(time.Hour)},
		{Text: cmds[2], Seq: startSeq + 2, Time: baseTime.Add(2 * time.Hour)},
	}
	cmdWithSeqs, err := store.CmdsWithSeq(startSeq+1, startSeq+3)
	if diff := cmp.Diff(wantCmdWithSeqs, cmdWithSeqs); diff != "" || !matchErr(err, nil) {
		t.Errorf("store.CmdsWithSeq -> %v (-want +got):\n%s", err, diff)
	}

	// NextCmd and PrevCmd
	tt := []struct {
		reverse  bool
		seq      int
		prefix   string
		wantText string
		wantSeq  int
		wantErr  error
	}{
		{false, startSeq, "echo", "echo foo", startSeq, nil},
		{false, startSeq, "echo b", "echo bar", startSeq + 1, nil},
		{false, startSeq + 1, "echo f", "echo foo", startSeq + 3, nil},
		{false, startSeq, "nope", "", 0, storedefs.ErrNoMatchingCmd},
		{true, endSeq, "echo", "echo foo", startSeq + 3, nil},
		{true, endSeq, "set", "set wildmode=full", startSeq + 2, nil},
		{true, startSeq + 3, "echo f", "echo foo", startSeq, nil},
		{true, endSeq + 10, "echo b", "echo bar", startSeq + 1, nil},
		{true, startSeq, "echo", "", 0, storedefs.ErrNoMatchingCmd},
	}
	for _, tc := range tt {
		f, name := store.NextCmd, "NextCmd"
		if tc.reverse {
			f, name = store.PrevCmd, "PrevCmd"
		}
		cmd, err := f(tc.seq, tc.prefix)
		if cmd.Text != tc.wantText || cmd.Seq != tc.wantSeq || !matchErr(err, tc.wantErr) {
			t.Errorf("store.%s(%v, %q) -> (%q, %v), %v, want (%q, %v), %v",
				name, tc.seq, tc.prefix, cmd.Text, cmd.Seq, err, tc.wantText, tc.wantSeq, tc.wantErr)
		}
	}

	// PrivateData
	privSeq, err := store.AddCmd(storedefs.Cmd{Text: "open example.com", Time: baseTime, PrivateData: true})
	if err != nil {
		t.Errorf("store.AddCmd with private data -> %v", err)
	}
	if cmd, err := store.Cmd(privSeq); !cmd.PrivateData || cmd.Text != "open example.com" || err != nil {
		t.Errorf("store.Cmd(%v) -> %+v, %v, want private data kept", privSeq, cmd, err)
	}
	if cmd, err := store.PrevCmd(privSeq+1, "open"); cmd.Seq != privSeq || !cmd.PrivateData || err != nil {
		t.Errorf("store.PrevCmd(%v, %q) -> %+v, %v", privSeq+1, "open", cmd, err)
	}
	if cmd, _ := store.Cmd(startSeq); cmd.PrivateData {
		t.Errorf("store.Cmd(%v) has private data", startSeq)
	}
	if err := store.DelCmd(privSeq); err != nil {
		t.Errorf("store.DelCmd(%v) -> %v", privSeq, err)
	}

	// DelCmd
	for i := range cmds {
		seq := i + startSeq
		if err := store.DelCmd(seq); !matchErr(err, nil) {
			t.Errorf("store.DelCmd(%v) -> %v, want %v", seq, err, nil)
		}
		if _, err := store.Cmd(seq); !matchErr(err, storedefs.ErrNoMatchingCmd) {
			t.Errorf("store.Cmd(%v) after DelCmd -> error %v, want %v", seq, err, storedefs.ErrNoMatchingCmd)
		}
	}
}

// TestOption tests the option storage functionality of a Store.
func TestOption(t *testing.T, store storedefs.Store) {
	t.Helper()

	if _, err := store.Option("wildmode"); !matchErr(err, storedefs.ErrNoOption) {
		t.Errorf("store.Option of a missing option -> error %v, want %v", err, storedefs.ErrNoOption)
	}
	for name, value := range map[string]string{"wildmode": "list:full", "messages": "50"} {
		if err := store.SetOption(name, value); err != nil {
			t.Errorf("store.SetOption(%q, %q) -> %v", name, value, err)
		}
	}
	if v, err := store.Option("wildmode"); v != "list:full" || err != nil {
		t.Errorf("store.Option(wildmode) -> %q, %v", v, err)
	}
	if err := store.DelOption("messages"); err != nil {
		t.Errorf("store.DelOption(messages) -> %v", err)
	}
	values, err := store.Options()
	if diff := cmp.Diff(map[string]string{"wildmode": "list:full"}, values); diff != "" || err != nil {
		t.Errorf("store.Options() -> %v (-want +got):\n%s", err, diff)
	}
}
