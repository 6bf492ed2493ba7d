// Package provider implements RSD's provider registry and dispatch (spec.md
// 4.4): a lookup from provider id to the Gather/Render capability pair, a
// parallel gather-all fold with per-provider failure isolation, and the
// external-subprocess Provider adapter for out-of-tree providers.
package provider

import (
	"context"
	"sort"
	"sync"

	"github.com/ready-set-deploy/rsd/internal/component"
	"github.com/ready-set-deploy/rsd/internal/rsderrors"
	"github.com/ready-set-deploy/rsd/internal/system"
)

// Provider is the capability pair spec.md 4.4 requires of every provider,
// in-tree or external: Gather inspects the host and emits FULL components of
// this provider's type; Render turns a diff/full/absent component into shell
// commands.
type Provider interface {
	ID() string
	Gather(ctx context.Context, qualifier []string) (system.System, error)
	Render(ctx context.Context, diff component.Component) ([]string, error)
}

// Registry maps provider ids to implementations. A zero Registry is not
// usable; construct one with NewRegistry.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
}

func NewRegistry() *Registry {
	return &Registry{providers: map[string]Provider{}}
}

// Register adds or replaces the provider under its own ID().
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.ID()] = p
}

// Lookup resolves a provider id, failing with ErrUnknownProvider.
func (r *Registry) Lookup(id string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.providers[id]
	if !ok {
		return nil, rsderrors.Wrap(rsderrors.ErrUnknownProvider, rsderrors.Key{Type: id}, "no provider registered for %q", id)
	}
	return p, nil
}

// IDs returns every registered provider id, sorted -- the canonical order
// spec.md's determinism requirement (section 5, design note 9) names for
// combining gather-all's per-provider results.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.providers))
	for id := range r.providers {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
