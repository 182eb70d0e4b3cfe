package dex

// Registry holds the configured adapters and enumerates them in the fixed
// priority order. It is built once at startup and read-only afterwards.
type Registry struct {
	byName map[string]Adapter
}

// NewRegistry creates a Registry from the given adapters.
func NewRegistry(adapters ...Adapter) *Registry {
	byName := make(map[string]Adapter, len(adapters))
	for _, a := range adapters {
		byName[a.Name()] = a
	}
	return &Registry{byName: byName}
}

// Get returns the adapter with the given name, if registered.
func (r *Registry) Get(name string) (Adapter, bool) {
	a, ok := r.byName[name]
	return a, ok
}

// InPriorityOrder returns the registered adapters ordered by the fixed
// priority list. Unregistered names are skipped.
func (r *Registry) InPriorityOrder() []Adapter {
	out := make([]Adapter, 0, len(r.byName))
	for _, name := range Priority() {
		if a, ok := r.byName[name]; ok {
			out = append(out, a)
		}
	}
	return out
}

// Names returns the registered adapter names in priority order.
func (r *Registry) Names() []string {
	adapters := r.InPriorityOrder()
	names := make([]string, 0, len(adapters))
	for _, a := range adapters {
		names = append(names, a.Name())
	}
	return names
}
