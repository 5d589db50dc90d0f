package eval

import "sync"

// UnnamedRegister is the register written when no register is named.
const UnnamedRegister = `"`

// Registers is a store of named text registers.
type Registers interface {
	Get(name string) (string, bool)
	Set(name, value string)
}

// MemRegisters keeps registers in memory. It is safe for concurrent use.
type MemRegisters struct {
	mu sync.Mutex
	m  map[string]string
}

// NewMemRegisters creates an empty MemRegisters.
func NewMemRegisters() *MemRegisters {
	return &MemRegisters{m: make(map[string]string)}
}

func (r *MemRegisters) Get(name string) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	v, ok := r.m[name]
	return v, ok
}

func (r *MemRegisters) Set(name, value string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.m[name] = value
}
