package histutil

import (
	"strings"

	"src.exline.sh/pkg/store/storedefs"
)

// DB is the part of storedefs.Store used for command history.
type DB interface {
	NextCmdSeq() (int, error)
	AddCmd(cmd storedefs.Cmd) (int, error)
	DelCmd(seq int) error
	CmdsWithSeq(from, upto int) ([]storedefs.Cmd, error)
	PrevCmd(upto int, prefix string) (storedefs.Cmd, error)
	NextCmd(from int, prefix string) (storedefs.Cmd, error)
}

// TestDB is an in-memory implementation of DB for tests. Sequence numbers
// are indices into AllCmds; deleted commands are replaced by empty strings.
// When OneOffError is set, the next call returns it.
type TestDB struct {
	AllCmds []string

	OneOffError error

	// Sequence numbers of commands added with PrivateData.
	private map[int]bool
}

func (s *TestDB) cmd(i int) storedefs.Cmd {
	return storedefs.Cmd{Text: s.AllCmds[i], Seq: i, PrivateData: s.private[i]}
}

func (s *TestDB) has(i int, prefix string) bool {
	return s.AllCmds[i] != "" && strings.HasPrefix(s.AllCmds[i], prefix)
}

func (s *TestDB) error() error {
	err := s.OneOffError
	s.OneOffError = nil
	return err
}

func (s *TestDB) NextCmdSeq() (int, error) {
	return len(s.AllCmds), s.error()
}

func (s *TestDB) AddCmd(cmd storedefs.Cmd) (int, error) {
	if s.OneOffError != nil {
		return -1, s.error()
	}
	s.AllCmds = append(s.AllCmds, cmd.Text)
	seq := len(s.AllCmds) - 1
	if cmd.PrivateData {
		if s.private == nil {
			s.private = make(map[int]bool)
		}
		s.private[seq] = true
	}
	return seq, nil
}

func (s *TestDB) DelCmd(seq int) error {
	if s.OneOffError != nil {
		return s.error()
	}
	if seq >= 0 && seq < len(s.AllCmds) {
		s.AllCmds[seq] = ""
		delete(s.private, seq)
	}
	return nil
}

func (s *TestDB) CmdsWithSeq(from, upto int) ([]storedefs.Cmd, error) {
	if upto > len(s.AllCmds) {
		upto = len(s.AllCmds)
	}
	var cmds []storedefs.Cmd
	for i := from; i < upto; i++ {
		if s.has(i, "") {
			cmds = append(cmds, s.cmd(i))
		}
	}
	return cmds, s.error()
}

func (s *TestDB) PrevCmd(upto int, prefix string) (storedefs.Cmd, error) {
	if s.OneOffError != nil {
		return storedefs.Cmd{}, s.error()
	}
	if upto < 0 || upto > len(s.AllCmds) {
		upto = len(s.AllCmds)
	}
	for i := upto - 1; i >= 0; i-- {
		if s.has(i, prefix) {
			return s.cmd(i), nil
		}
	}
	return storedefs.Cmd{}, storedefs.ErrNoMatchingCmd
}

func (s *TestDB) NextCmd(from int, prefix string) (storedefs.Cmd, error) {
	if s.OneOffError != nil {
		return storedefs.Cmd{}, s.error()
	}
	if from < 0 {
		from = 0
	}
	for i := from; i < len(s.AllCmds); i++ {
		if s.has(i, prefix) {
			return s.cmd(i), nil
		}
	}
	return storedefs.Cmd{}, storedefs.ErrNoMatchingCmd
}
