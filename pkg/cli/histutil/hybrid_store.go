package histutil

import (
	"src.exline.sh/pkg/store/storedefs"
)

// NewHybridStore returns a Store that provides a view of all the commands that
// exists in the database, plus a in-memory session history. Commands for
// which private returns true are marked with PrivateData before they are
// added; private may be nil.
func NewHybridStore(db DB, private func(text string) bool) (*HybridStore, error) {
	session := NewMemStore().(*memStore)
	if db == nil {
		return &HybridStore{nil, nil, session, private}, nil
	}
	dbStore, err := NewDBStore(db)
	if err != nil {
		return &HybridStore{nil, nil, session, private}, err
	}
	return &HybridStore{db, dbStore, session, private}, nil
}

// HybridStore is the Store returned by NewHybridStore.
type HybridStore struct {
	db      DB
	shared  Store
	session *memStore
	private func(text string) bool
}

var (
	_ Filterer  = (*HybridStore)(nil)
	_ Truncater = (*HybridStore)(nil)
)

// AddCmd adds a command to the session history and to the database. The
// sequence number is the one assigned by the database, or -1 when the command
// is only in the session.
func (s *HybridStore) AddCmd(cmd storedefs.Cmd) (int, error) {
	if s.private != nil && s.private(cmd.Text) {
		cmd.PrivateData = true
	}
	seq := -1
	var err error
	if s.shared != nil {
		seq, err = s.shared.AddCmd(cmd)
		if err != nil {
			seq = -1
		}
	}
	cmd.Seq = seq
	s.session.add(cmd)
	return seq, err
}

// AllCmds returns the commands of the database followed by those of the
// session.
func (s *HybridStore) AllCmds() ([]storedefs.Cmd, error) {
	var shared []storedefs.Cmd
	var err error
	if s.shared != nil {
		shared, err = s.shared.AllCmds()
	}
	session, _ := s.session.AllCmds()
	if len(shared) == 0 {
		return session, err
	}
	return append(shared, session...), err
}

// SessionCmds returns the commands added in this session.
func (s *HybridStore) SessionCmds() []storedefs.Cmd {
	cmds, _ := s.session.AllCmds()
	return cmds
}

// ForgetSession removes the session commands for which keep returns false,
// and returns how many were removed.
func (s *HybridStore) ForgetSession(keep func(storedefs.Cmd) bool) int {
	return s.session.filter(keep)
}

// Filter removes the commands for which keep returns false, from the session
// and from the database. It returns how many commands were removed.
func (s *HybridStore) Filter(keep func(storedefs.Cmd) bool) (int, error) {
	removed := 0
	var err error
	if s.db != nil {
		var cmds []storedefs.Cmd
		cmds, err = s.dbCmds()
		for _, cmd := range cmds {
			if keep(cmd) {
				continue
			}
			if err = s.db.DelCmd(cmd.Seq); err != nil {
				break
			}
			removed++
		}
	}
	s.session.filter(func(cmd storedefs.Cmd) bool {
		if keep(cmd) {
			return true
		}
		if cmd.Seq < 0 || s.db == nil {
			removed++
		}
		return false
	})
	return removed, err
}

// Truncate removes the oldest commands of the database and of the session
// until each holds at most max commands.
func (s *HybridStore) Truncate(max int) (int, error) {
	removed := 0
	if s.db != nil {
		cmds, err := s.dbCmds()
		if err != nil {
			return 0, err
		}
		for i := 0; i < len(cmds)-max; i++ {
			if err := s.db.DelCmd(cmds[i].Seq); err != nil {
				return removed, err
			}
			removed++
		}
	}
	if excess := len(s.SessionCmds()) - max; excess > 0 {
		i := 0
		s.session.filter(func(cmd storedefs.Cmd) bool {
			i++
			if i > excess {
				return true
			}
			if cmd.Seq < 0 || s.db == nil {
				removed++
			}
			return false
		})
	}
	return removed, nil
}

func (s *HybridStore) dbCmds() ([]storedefs.Cmd, error) {
	next, err := s.db.NextCmdSeq()
	if err != nil {
		return nil, err
	}
	return s.db.CmdsWithSeq(0, next)
}

func (s *HybridStore) Cursor(prefix string) Cursor {
	if s.shared == nil {
		return s.session.Cursor(prefix)
	}
	return &hybridStoreCursor{
		s.shared.Cursor(prefix), s.session.Cursor(prefix), false}
}

type hybridStoreCursor struct {
	shared    Cursor
	session   Cursor
	useShared bool
}

func (c *hybridStoreCursor) Prev() {
	if !c.useShared {
		c.session.Prev()
		if _, err := c.session.Get(); err == ErrEndOfHistory {
			c.useShared = true
			c.shared.Prev()
		}
	} else {
		c.shared.Prev()
	}
}

func (c *hybridStoreCursor) Next() {
	if c.useShared {
		c.shared.Next()
		if _, err := c.shared.Get(); err == ErrEndOfHistory {
			c.useShared = false
			c.session.Next()
		}
	} else {
		c.session.Next()
	}
}

func (c *hybridStoreCursor) Get() (storedefs.Cmd, error) {
	if c.useShared {
		return c.shared.Get()
	}
	return c.session.Get()
}
