package probe

// Registry is the explicit, static list of probes the engine knows how to
// run, keyed by classname. Config decides which of these are actually
// enabled for a given process; the registry itself is fixed at build time,
// replacing runtime subclass discovery with a pure function of config.
type Registry struct {
	probes map[string]Probe
	order  []string
}

// NewRegistry builds a Registry from an explicit, ordered probe list.
// Duplicate classnames are not rejected: the last probe registered under a
// classname replaces the earlier one and keeps the earlier one's position.
func NewRegistry(probes ...Probe) *Registry {
	r := &Registry{probes: make(map[string]Probe, len(probes))}
	for _, p := range probes {
		if _, exists := r.probes[p.Classname()]; !exists {
			r.order = append(r.order, p.Classname())
		}
		r.probes[p.Classname()] = p
	}
	return r
}

// Enabled returns, in registration order, every registered probe whose
// ConfigID is enabled according to isEnabled.
func (r *Registry) Enabled(isEnabled func(configID string) bool) []Probe {
	out := make([]Probe, 0, len(r.order))
	for _, classname := range r.order {
		p := r.probes[classname]
		if isEnabled(p.ConfigID()) {
			out = append(out, p)
		}
	}
	return out
}

// Names returns classname -> display name for every registered probe,
// regardless of enabled state. Orchestrator.RunStream does not use it: the
// stream's leading names map lists only the enabled roster.
func (r *Registry) Names() map[string]string {
	out := make(map[string]string, len(r.order))
	for _, classname := range r.order {
		out[classname] = r.probes[classname].Name()
	}
	return out
}
