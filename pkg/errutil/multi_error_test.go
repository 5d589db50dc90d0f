package errutil

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

var (
	err1 = errors.New("E492: Not a command: foo")
	err2 = errors.New("E488: Trailing characters")
	err3 = errors.New("E471: Argument required")
)

func TestMulti(t *testing.T) {
	if err := Multi(); err != nil {
		t.Errorf("Multi() -> %v, want nil", err)
	}
	if err := Multi(nil, nil); err != nil {
		t.Errorf("Multi(nil, nil) -> %v, want nil", err)
	}
	if err := Multi(nil, err1, nil); err != err1 {
		t.Errorf("Multi(nil, err1, nil) -> %v, want err1", err)
	}

	err := Multi(Multi(err1, err2), err3)
	want := "E492: Not a command: foo\nE488: Trailing characters\nE471: Argument required"
	if err.Error() != want {
		t.Errorf("got message %q, want %q", err.Error(), want)
	}
}

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want []error
	}{
		{"nil", nil, nil},
		{"single", err1, []error{err1}},
		{"multi", Multi(err1, Multi(err2, err3)), []error{err1, err2, err3}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got := Errors(test.err)
			if diff := cmp.Diff(test.want, got, cmpopts.EquateErrors()); diff != "" {
				t.Errorf("Errors (-want +got):\n%s", diff)
			}
		})
	}
}
