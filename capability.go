package edureport

import (
	"context"
	"fmt"
	"sync"
)

// Capability identifies an optional rendering dependency loaded on demand.
type Capability int

const (
	// DocumentDrawing draws text, lines and images into PDF pages.
	DocumentDrawing Capability = iota + 1
	// RegionCapture rasterizes page regions into images.
	RegionCapture
)

func (c Capability) String() string {
	switch c {
	case DocumentDrawing:
		return "document-drawing"
	case RegionCapture:
		return "region-capture"
	default:
		return fmt.Sprintf("capability(%d)", int(c))
	}
}

// CapabilityState is the lifecycle position of a capability.
type CapabilityState int

const (
	StateUnloaded CapabilityState = iota
	StateLoading
	StateReady
	StateFailed
)

func (s CapabilityState) String() string {
	switch s {
	case StateUnloaded:
		return "unloaded"
	case StateLoading:
		return "loading"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// CapabilityLoader brings a capability into service.
type CapabilityLoader interface {
	// Available reports whether the capability is already usable,
	// in which case Load is never called.
	Available() bool
	// Load performs the one-time initialization.
	Load(ctx context.Context) error
}

// capabilitySlot tracks one capability. done is closed when a load finishes.
type capabilitySlot struct {
	loader CapabilityLoader
	state  CapabilityState
	done   chan struct{}
	err    error
}

// Registry ensures each registered capability is loaded at most once.
// Concurrent Ensure calls during a load share the same attempt.
// A failed load is terminal: later calls report the same failure.
type Registry struct {
	mu    sync.Mutex
	slots map[Capability]*capabilitySlot
	loads map[Capability]int
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		slots: make(map[Capability]*capabilitySlot),
		loads: make(map[Capability]int),
	}
}

// Register binds a loader to a capability, replacing any previous binding
// that has not started loading yet.
func (r *Registry) Register(id Capability, loader CapabilityLoader) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if s, ok := r.slots[id]; ok && s.state != StateUnloaded {
		return
	}
	r.slots[id] = &capabilitySlot{loader: loader, state: StateUnloaded}
}

// State returns the current state of a capability.
func (r *Registry) State(id Capability) CapabilityState {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.slots[id]
	if !ok {
		return StateUnloaded
	}
	return s.state
}

// LoadAttempts returns how many times the loader of id has been invoked.
func (r *Registry) LoadAttempts(id Capability) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loads[id]
}

// Ensure blocks until the capability is ready or has failed.
// The load runs detached from ctx so that one impatient caller cannot
// fail the attempt for the others; ctx only bounds this caller's wait.
func (r *Registry) Ensure(ctx context.Context, id Capability) error {
	r.mu.Lock()
	s, ok := r.slots[id]
	if !ok {
		r.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownCapability, id)
	}

	switch s.state {
	case StateReady:
		r.mu.Unlock()
		return nil
	case StateFailed:
		err := s.err
		r.mu.Unlock()
		return err
	case StateUnloaded:
		if s.loader.Available() {
			s.state = StateReady
			r.mu.Unlock()
			return nil
		}
		s.state = StateLoading
		s.done = make(chan struct{})
		r.loads[id]++
		go r.load(context.WithoutCancel(ctx), id, s)
	}
	done := s.done
	r.mu.Unlock()

	select {
	case <-done:
	case <-ctx.Done():
		return ctx.Err()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return s.err
}

func (r *Registry) load(ctx context.Context, id Capability, s *capabilitySlot) {
	err := s.loader.Load(ctx)

	r.mu.Lock()
	if err != nil {
		s.state = StateFailed
		s.err = &CapabilityError{ID: id, Err: err}
	} else {
		s.state = StateReady
	}
	close(s.done)
	r.mu.Unlock()
}

// LoaderFunc adapts a function to CapabilityLoader. The capability is never
// considered pre-loaded.
type LoaderFunc func(ctx context.Context) error

// Available implements CapabilityLoader.
func (f LoaderFunc) Available() bool { return false }

// Load implements CapabilityLoader.
func (f LoaderFunc) Load(ctx context.Context) error { return f(ctx) }
