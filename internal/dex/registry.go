package dex

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

// Registry holds the protocols a discovery run scans, in a fixed order.
type Registry struct {
	ordered   []Protocol
	byName    map[string]int
	byProgram map[solana.PublicKey]int
}

// NewRegistry validates the given protocols and fixes their scan order.
func NewRegistry(protocols ...Protocol) (*Registry, error) {
	r := &Registry{
		ordered:   make([]Protocol, 0, len(protocols)),
		byName:    make(map[string]int, len(protocols)),
		byProgram: make(map[solana.PublicKey]int, len(protocols)),
	}
	for _, p := range protocols {
		if p.Name == "" {
			return nil, fmt.Errorf("protocol with empty name")
		}
		if p.Program.IsZero() {
			return nil, fmt.Errorf("protocol %s: zero program id", p.Name)
		}
		if err := p.Layout.validate(); err != nil {
			return nil, fmt.Errorf("protocol %s: %w", p.Name, err)
		}
		if _, dup := r.byName[p.Name]; dup {
			return nil, fmt.Errorf("duplicate protocol name %s", p.Name)
		}
		if _, dup := r.byProgram[p.Program]; dup {
			return nil, fmt.Errorf("duplicate program id for %s", p.Name)
		}
		r.byName[p.Name] = len(r.ordered)
		r.byProgram[p.Program] = len(r.ordered)
		r.ordered = append(r.ordered, p)
	}
	return r, nil
}

// DefaultRegistry returns the built-in protocol set in scan order.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(
		RaydiumV4,
		RaydiumCPMM,
		RaydiumCLMM,
		OrcaWhirlpool,
		OrcaTokenSwap,
		MeteoraDLMM,
		PumpAMM,
		SaberStableSwap,
	)
	if err != nil {
		panic(fmt.Sprintf("built-in protocol table: %v", err))
	}
	return r
}

// All returns the protocols in registration order. Callers must not mutate
// the returned slice.
func (r *Registry) All() []Protocol {
	return r.ordered
}

// Len returns the number of registered protocols.
func (r *Registry) Len() int {
	return len(r.ordered)
}

// ByName looks a protocol up by its registry name.
func (r *Registry) ByName(name string) (Protocol, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Protocol{}, false
	}
	return r.ordered[i], true
}

// ByProgram looks a protocol up by its on-chain program id.
func (r *Registry) ByProgram(program solana.PublicKey) (Protocol, bool) {
	i, ok := r.byProgram[program]
	if !ok {
		return Protocol{}, false
	}
	return r.ordered[i], true
}

// Filter returns a registry restricted to the named protocols, preserving
// the receiver's order. Unknown names are an error.
func (r *Registry) Filter(names []string) (*Registry, error) {
	if len(names) == 0 {
		return r, nil
	}
	want := make(map[string]bool, len(names))
	for _, name := range names {
		if _, ok := r.byName[name]; !ok {
			return nil, fmt.Errorf("unknown protocol %q", name)
		}
		want[name] = true
	}
	kept := make([]Protocol, 0, len(want))
	for _, p := range r.ordered {
		if want[p.Name] {
			kept = append(kept, p)
		}
	}
	return NewRegistry(kept...)
}
