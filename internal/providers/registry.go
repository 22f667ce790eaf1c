package providers

import "github.com/rotisserie/eris"

// Registry maps each strategy to the provider that implements it.
type Registry struct {
	providers map[Strategy]Provider
}

func NewRegistry(list ...Provider) *Registry {
	r := &Registry{providers: make(map[Strategy]Provider, len(list))}
	for _, p := range list {
		r.Register(p)
	}
	return r
}

// Register adds p, replacing any provider already registered for its
// strategy.
func (r *Registry) Register(p Provider) {
	r.providers[p.Name()] = p
}

func (r *Registry) Get(s Strategy) (Provider, bool) {
	p, ok := r.providers[s]
	return p, ok
}

// Select returns the providers for strategies in the order given. A strategy
// with no registered provider is an error.
func (r *Registry) Select(strategies []Strategy) ([]Provider, error) {
	out := make([]Provider, 0, len(strategies))
	for _, s := range strategies {
		p, ok := r.Get(s)
		if !ok {
			return nil, eris.Wrapf(ErrUnknownStrategy, "%s is not configured", s)
		}
		out = append(out, p)
	}
	return out, nil
}

// Strategies lists the registered strategies in dispatch order.
func (r *Registry) Strategies() []Strategy {
	var out []Strategy
	for _, s := range AllStrategies {
		if _, ok := r.providers[s]; ok {
			out = append(out, s)
		}
	}
	return out
}
