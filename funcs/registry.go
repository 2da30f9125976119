package funcs

import "github.com/squigglygo/squiggly/engine"

// NewDefaultRegistry returns a MapRegistry seeded with the built-in
// key/value functions plus the expr-lang and goja bridges.
func NewDefaultRegistry() engine.MapRegistry {
	r := engine.MapRegistry{}
	r.Register(trimFunc)
	r.Register(upperFunc)
	r.Register(lowerFunc)
	r.Register(defaultFunc)
	r.Register(joinFunc)
	r.Register(NewExprFunction())
	r.Register(NewJSFunction())
	return r
}
