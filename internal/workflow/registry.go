package workflow

import (
	"sort"
	"strings"
	"sync"

	"github.com/valetapp/valet/internal/config"
	"github.com/valetapp/valet/internal/logging"
)

// Registry resolves workflow identifiers to endpoint URLs sourced from
// configuration. URLs are never hardcoded.
type Registry struct {
	mu          sync.RWMutex
	endpoints   map[string]string     // id → URL (may be blank if misconfigured)
	descriptors map[string]Descriptor // id → declared contract
	log         *logging.Logger
}

// NewRegistry builds a registry from the workflows config section and the
// built-in descriptors.
func NewRegistry(cfg map[string]config.WorkflowEntry, log *logging.Logger) *Registry {
	r := &Registry{
		endpoints:   make(map[string]string),
		descriptors: make(map[string]Descriptor),
		log:         log.Sub("workflow.registry"),
	}
	for _, d := range BuiltinDescriptors {
		r.descriptors[d.ID] = d
	}
	for id, entry := range cfg {
		r.endpoints[id] = entry.URL
		if _, known := r.descriptors[id]; !known {
			// Endpoint configured for a workflow we have no descriptor for.
			// Register a bare descriptor so the router can still offer it.
			r.descriptors[id] = Descriptor{ID: id}
		}
	}
	return r
}

// Declare registers (or replaces) a workflow descriptor.
func (r *Registry) Declare(d Descriptor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.descriptors[d.ID] = d
	r.log.Debug().Str("workflow", d.ID).Msg("workflow declared")
}

// Endpoint returns the webhook URL for a workflow. A missing or blank
// mapping yields a *ConfigurationError naming both the identifier and the
// expected config key; no network call should be attempted after that.
func (r *Registry) Endpoint(id string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	url, ok := r.endpoints[id]
	if !ok || strings.TrimSpace(url) == "" {
		return "", &ConfigurationError{
			WorkflowID: id,
			ConfigKey:  "workflows." + id + ".url",
		}
	}
	return url, nil
}

// IsConfigured reports whether a workflow has a usable endpoint.
func (r *Registry) IsConfigured(id string) bool {
	_, err := r.Endpoint(id)
	return err == nil
}

// Descriptors returns all declared workflows sorted by ID.
func (r *Registry) Descriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.descriptors))
	for _, d := range r.descriptors {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}
