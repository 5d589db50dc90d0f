package histutil

import (
	"strings"
	"sync"

	"src.exline.sh/pkg/store/storedefs"
)

// NewMemStore returns a Store that stores command history in memory.
func NewMemStore(texts ...string) Store {
	cmds := make([]storedefs.Cmd, len(texts))
	for i, text := range texts {
		cmds[i] = storedefs.Cmd{Text: text, Seq: i}
	}
	return &memStore{cmds: cmds}
}

type memStore struct {
	mu   sync.Mutex
	cmds []storedefs.Cmd
}

func (s *memStore) AllCmds() ([]storedefs.Cmd, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]storedefs.Cmd(nil), s.cmds...), nil
}

func (s *memStore) AddCmd(cmd storedefs.Cmd) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cmd.Seq < 0 {
		cmd.Seq = len(s.cmds) + 1
	}
	s.cmds = append(s.cmds, cmd)
	return cmd.Seq, nil
}

// Adds a command keeping its sequence number.
func (s *memStore) add(cmd storedefs.Cmd) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.cmds = append(s.cmds, cmd)
}

// Removes the commands for which keep returns false.
func (s *memStore) filter(keep func(storedefs.Cmd) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.cmds[:0]
	for _, cmd := range s.cmds {
		if keep(cmd) {
			kept = append(kept, cmd)
		}
	}
	removed := len(s.cmds) - len(kept)
	s.cmds = kept
	return removed
}

func (s *memStore) Filter(keep func(storedefs.Cmd) bool) (int, error) {
	return s.filter(keep), nil
}

func (s *memStore) Truncate(max int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	excess := len(s.cmds) - max
	if excess <= 0 {
		return 0, nil
	}
	s.cmds = append([]storedefs.Cmd(nil), s.cmds[excess:]...)
	return excess, nil
}

func (s *memStore) Cursor(prefix string) Cursor {
	cmds, _ := s.AllCmds()
	return &memStoreCursor{cmds, prefix, len(cmds)}
}

type memStoreCursor struct {
	cmds   []storedefs.Cmd
	prefix string
	index  int
}

func (c *memStoreCursor) Prev() {
	if c.index < 0 {
		return
	}
	for c.index--; c.index >= 0; c.index-- {
		if strings.HasPrefix(c.cmds[c.index].Text, c.prefix) {
			return
		}
	}
}

func (c *memStoreCursor) Next() {
	if c.index >= len(c.cmds) {
		return
	}
	for c.index++; c.index < len(c.cmds); c.index++ {
		if strings.HasPrefix(c.cmds[c.index].Text, c.prefix) {
			return
		}
	}
}

func (c *memStoreCursor) Get() (storedefs.Cmd, error) {
	if c.index < 0 || c.index >= len(c.cmds) {
		return storedefs.Cmd{}, ErrEndOfHistory
	}
	return c.cmds[c.index], nil
}
