package registry

import "github.com/harrison/srbaslam/internal/models"

// Factory builds the handler for a configuration a matcher accepted
type Factory func(p models.Params) Handler

// Exact returns a matcher accepting exactly the given combination.
// The observation tag is compared case-sensitively.
func Exact(c models.Combination, build Factory) Matcher {
	return func(p models.Params) (Handler, bool) {
		if p.Combination() != c {
			return nil, false
		}
		return build(p), true
	}
}

// RegisterExact registers an Exact matcher described by the flags that select it
func (r *Registry) RegisterExact(c models.Combination, build Factory) {
	r.Register(Exact(c, build), c.String())
}
