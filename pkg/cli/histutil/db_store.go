package histutil

import (
	"errors"

	"src.exline.sh/pkg/store/storedefs"
)

// NewDBStore returns a Store over the commands the database holds when it is
// called. Commands added later through the Store are written to the database
// but stay out of AllCmds and Cursor.
func NewDBStore(db DB) (Store, error) {
	end, err := db.NextCmdSeq()
	if err != nil {
		return nil, err
	}
	return frozenDB{db, end}, nil
}

type frozenDB struct {
	db  DB
	end int
}

func (s frozenDB) AllCmds() ([]storedefs.Cmd, error) {
	return s.db.CmdsWithSeq(0, s.end)
}

func (s frozenDB) AddCmd(cmd storedefs.Cmd) (int, error) {
	return s.db.AddCmd(cmd)
}

func (s frozenDB) Cursor(prefix string) Cursor {
	edge := storedefs.Cmd{Seq: s.end}
	return &frozenDBCursor{s, prefix, edge, ErrEndOfHistory}
}

// The position is cmd.Seq: -1 before the oldest match, s.end after the
// newest.
type frozenDBCursor struct {
	s      frozenDB
	prefix string
	cmd    storedefs.Cmd
	err    error
}

func (c *frozenDBCursor) Prev() {
	if c.cmd.Seq < 0 {
		return
	}
	cmd, err := c.s.db.PrevCmd(c.cmd.Seq, c.prefix)
	c.land(cmd, err, -1)
}

func (c *frozenDBCursor) Next() {
	if c.cmd.Seq >= c.s.end {
		return
	}
	cmd, err := c.s.db.NextCmd(c.cmd.Seq+1, c.prefix)
	if err == nil && cmd.Seq >= c.s.end {
		err = storedefs.ErrNoMatchingCmd
	}
	c.land(cmd, err, c.s.end)
}

// Moves to cmd, or past the edge when nothing matched. Other errors keep the
// position.
func (c *frozenDBCursor) land(cmd storedefs.Cmd, err error, edge int) {
	switch {
	case err == nil:
		c.cmd, c.err = cmd, nil
	case errors.Is(err, storedefs.ErrNoMatchingCmd):
		c.cmd, c.err = storedefs.Cmd{Seq: edge}, ErrEndOfHistory
	default:
		c.err = err
	}
}

func (c *frozenDBCursor) Get() (storedefs.Cmd, error) {
	return c.cmd, c.err
}
