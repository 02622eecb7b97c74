package registry

import (
	"slices"
	"sync"

	"github.com/martinsuchenak/devcalc/internal/model"
)

// PortSynthesizer builds the port records of a device from the request and
// the address sampled for it
type PortSynthesizer func(req model.DeviceRequest, ip string) []model.PortRecord

// Registry maps device types to their port synthesizers
type Registry struct {
	mu sync.RWMutex

	synthesizers map[string]PortSynthesizer

	// Used for any device type without a dedicated synthesizer
	fallback PortSynthesizer
}

// NewRegistry creates a registry that uses fallback for unregistered types
func NewRegistry(fallback PortSynthesizer) *Registry {
	return &Registry{
		synthesizers: make(map[string]PortSynthesizer),
		fallback:     fallback,
	}
}

// Register registers the synthesizer for a device type, replacing any
// previous one
func (r *Registry) Register(deviceType string, synth PortSynthesizer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.synthesizers[deviceType] = synth
}

// Get returns the synthesizer registered for a device type
func (r *Registry) Get(deviceType string) (PortSynthesizer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	synth, exists := r.synthesizers[deviceType]
	return synth, exists
}

// Lookup returns the synthesizer for a device type, or the fallback
func (r *Registry) Lookup(deviceType string) PortSynthesizer {
	if synth, ok := r.Get(deviceType); ok {
		return synth
	}
	return r.fallback
}

// Types returns the registered device types in sorted order
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	types := make([]string, 0, len(r.synthesizers))
	for t := range r.synthesizers {
		types = append(types, t)
	}
	slices.Sort(types)
	return types
}
