package engine

import (
	"context"

	"github.com/squigglygo/squiggly/types"
)

// Engine is the entry point that ties parsing, caching and function
// invocation together behind the Config collaborators.
type Engine struct {
	cfg     types.Config
	cache   *ParseCache
	invoker types.FunctionInvoker
}

// New builds an Engine from cfg. A nil cfg.Invoker falls back to a
// SequentialInvoker over cfg.FunctionRegistry (an empty MapRegistry if
// that is also nil).
func New(cfg types.Config) *Engine {
	invoker := cfg.Invoker
	if invoker == nil {
		registry := cfg.FunctionRegistry
		if registry == nil {
			registry = MapRegistry{}
		}
		invoker = NewSequentialInvoker(registry)
	}
	return &Engine{
		cfg:     cfg,
		cache:   NewParseCache(cfg.ParseCacheMaxEntries),
		invoker: invoker,
	}
}

// Parse parses text into a Filter, transparently through the engine's
// bounded parse cache.
func (e *Engine) Parse(text string) (*Filter, error) {
	return e.cache.Parse(text, e.cfg.ViewSource, ViewOptions{
		ImplicitlyIncludeBaseFields: e.cfg.FilterImplicitlyIncludeBaseFieldsInView,
		PropagateToNestedFilters:    e.cfg.FilterPropagateViewToNestedFilters,
	})
}

// Apply projects root through one or more filter texts, applying them
// in sequence: each filter text sees the output of the one before it.
// Statements within a single filter text are combined by union instead,
// per Match's own doc comment.
//
// Apply is a package-level function rather than an *Engine method
// because Go methods cannot carry their own type parameters.
func Apply[T any](ctx context.Context, e *Engine, root types.JsonNode[T], filters ...string) (types.JsonNode[T], error) {
	return ApplyContext[T](ctx, e, root, nil, filters...)
}

// ApplyContext is Apply plus the context-appended filter feature: when
// the engine has a FilterContextProvider and AppendContextInNodeFilter
// is enabled, the provider is asked for an extra filter text keyed on
// beanClass, which is applied last, after every caller-supplied filter.
func ApplyContext[T any](ctx context.Context, e *Engine, root types.JsonNode[T], beanClass any, filters ...string) (types.JsonNode[T], error) {
	all := filters
	if e.cfg.AppendContextInNodeFilter && e.cfg.FilterContextProvider != nil {
		if extra, ok := e.cfg.FilterContextProvider.FilterFor(beanClass); ok && extra != "" {
			all = make([]string, 0, len(filters)+1)
			all = append(all, filters...)
			all = append(all, extra)
		}
	}

	current := root
	for _, text := range all {
		if err := ctx.Err(); err != nil {
			return current, err
		}

		f, err := e.Parse(text)
		if err != nil {
			return current, err
		}
		out, err := Walk[T](current, f, e.invoker, e.cfg.Logger, e.cfg.BestEffort)
		if err != nil {
			return current, err
		}
		current = out
	}
	return current, nil
}
