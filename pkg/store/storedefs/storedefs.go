// Package storedefs contains definitions of the store API.
//
// It is a separate package so that packages that only depend on the store API
// does not need to depend on the concrete implementation.
package storedefs

import (
	"errors"
	"time"
)

// ErrNoMatchingCmd is the error returned when a Cmd, NextCmd or PrevCmd query
// completes with no result.
var ErrNoMatchingCmd = errors.New("no matching command line")

// ErrNoOption is returned by Option when no value is stored for the option.
var ErrNoOption = errors.New("no such option")

// Store is an interface satisfied by the storage service.
type Store interface {
	NextCmdSeq() (int, error)
	AddCmd(cmd Cmd) (int, error)
	DelCmd(seq int) error
	Cmd(seq int) (Cmd, error)
	CmdsWithSeq(from, upto int) ([]Cmd, error)
	NextCmd(from int, prefix string) (Cmd, error)
	PrevCmd(upto int, prefix string) (Cmd, error)

	Option(name string) (string, error)
	SetOption(name, value string) error
	DelOption(name string) error
	Options() (map[string]string, error)
}

// Cmd is an entry in the command history. Seq is assigned by the store; a
// zero Time is replaced with the time the command is added. PrivateData marks
// commands that :sanitize history removes.
type Cmd struct {
	Text        string
	Seq         int
	Time        time.Time
	PrivateData bool
}
