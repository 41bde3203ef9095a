package port

import "sync"

// Mem is an in-memory register model of an AVR-style port.
// External levels default to all-high (pulled up).
type Mem struct {
	mu     sync.Mutex
	dir    uint8
	latch  uint8
	ext    uint8
	writes int
}

func NewMem() *Mem { return &Mem{ext: 0xFF} }

func (m *Mem) SetDirection(mask uint8) error {
	m.mu.Lock()
	m.dir = mask
	m.mu.Unlock()
	return nil
}

func (m *Mem) Read() (uint8, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return (m.ext &^ m.dir) | (m.latch & m.dir), nil
}

func (m *Mem) Write(v uint8) error {
	m.mu.Lock()
	m.latch = v
	m.writes++
	m.mu.Unlock()
	return nil
}

// SetExternal sets the levels presented on the pins from outside.
func (m *Mem) SetExternal(v uint8) {
	m.mu.Lock()
	m.ext = v
	m.mu.Unlock()
}

// SetLine drives a single external line.
func (m *Mem) SetLine(bit uint8, high bool) {
	m.mu.Lock()
	if high {
		m.ext |= 1 << (bit & 7)
	} else {
		m.ext &^= 1 << (bit & 7)
	}
	m.mu.Unlock()
}

func (m *Mem) Latch() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.latch
}

func (m *Mem) Direction() uint8 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.dir
}

// Writes counts latch writes since creation.
func (m *Mem) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}
