// Package registry implements the name registry of the system: a
// standalone process mapping logical service names to live network
// addresses so clients never need to know where a service runs. The
// mapping is in-memory only; a restart loses all registrations and
// services are expected to re-register (there is no expiry either).
package registry

import "sync"

// Address is a registered network location.
type Address struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// Registry owns the name -> address mapping. It is constructed
// explicitly and injected where needed, so tests can run independent
// instances side by side.
type Registry struct {
	mu       sync.RWMutex
	services map[string]Address
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{services: make(map[string]Address)}
}

// Register records the address for a service name. Registration is an
// unconditional upsert: re-registering a name overwrites the previous
// address, which is how a restarted service announces its new location.
func (r *Registry) Register(name, host string, port int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.services[name] = Address{Host: host, Port: port}
}

// Lookup returns the most recent registration for a name. A false
// second return means the service has not registered yet; callers must
// treat that as a normal outcome, not a fault.
func (r *Registry) Lookup(name string) (Address, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	addr, ok := r.services[name]
	return addr, ok
}

// Len reports the number of registered services.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.services)
}
