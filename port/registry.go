package port

import (
	"sync"

	"latchfw/errcode"
	"latchfw/types"
)

// defaultBus is used by expander ports that do not name a bus.
const defaultBus = "i2c0"

// Provider turns a port reference into a live port.
type Provider interface {
	Open(ref types.PortRef) (Port, error)
}

// Registry hands out ports by name and enforces single ownership.
// Opened ports stay cached so that a re-claim after release reuses the same
// hardware binding.
type Registry struct {
	mu     sync.Mutex
	prov   Provider
	ports  map[string]Port
	owners map[string]string // port name -> owner
}

func NewRegistry(p Provider) *Registry {
	return &Registry{
		prov:   p,
		ports:  map[string]Port{},
		owners: map[string]string{},
	}
}

// Claim opens (or reuses) the port named by ref for owner.
func (r *Registry) Claim(owner string, ref types.PortRef) (Port, error) {
	if ref.Name == "" {
		return nil, errcode.InvalidParams
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.owners[ref.Name]; ok && cur != owner {
		return nil, errcode.PortInUse
	}
	p, ok := r.ports[ref.Name]
	if !ok {
		var err error
		p, err = r.prov.Open(ref)
		if err != nil {
			return nil, err
		}
		r.ports[ref.Name] = p
	}
	r.owners[ref.Name] = owner
	return p, nil
}

// Release drops owner's claim on name. A port that was never opened is
// unknown_port; one held by someone else is left alone and reported as
// port_in_use. Releasing an unclaimed port is a no-op.
func (r *Registry) Release(owner, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.ports[name]; !ok {
		return errcode.UnknownPort
	}
	switch cur, ok := r.owners[name]; {
	case !ok:
		return nil
	case cur != owner:
		return errcode.PortInUse
	}
	delete(r.owners, name)
	return nil
}

// Lookup returns an already opened port.
func (r *Registry) Lookup(name string) (Port, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.ports[name]
	return p, ok
}
