/*
 * Copyright 2025 The Squiggly Authors.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

// Config holds the engine's tunable behavior, plus the collaborator
// hooks it needs at construction. Built with functional options rather
// than a struct literal.
type Config struct {
	// AppendContextInNodeFilter, when true, resolves and applies an
	// ambient filter derived from the root document's bean class after
	// the caller's own filters.
	AppendContextInNodeFilter bool
	// FilterImplicitlyIncludeBaseFieldsInView controls whether a
	// resolved view implicitly includes the host's declared base
	// fields alongside its own.
	FilterImplicitlyIncludeBaseFieldsInView bool
	// FilterPropagateViewToNestedFilters controls whether a view
	// selected at one level is propagated to nested object filters. A
	// nested filter's own sibling field always wins over a colliding
	// propagated view field of the same name.
	FilterPropagateViewToNestedFilters bool
	// PropertyAddNonAnnotatedFieldsToBaseView controls whether
	// properties the host declares but does not annotate with a view
	// are folded into the base view. Consumed by
	// viewsource.NewStaticViewSourceFromConfig rather than by the core
	// engine, since applying it requires a concrete ViewSource's full
	// view-to-fields table.
	PropertyAddNonAnnotatedFieldsToBaseView bool
	// ParseCacheMaxEntries bounds the parse cache's LRU size.
	ParseCacheMaxEntries int
	// BestEffort, when true, makes the walker log a FunctionError and
	// keep the affected node's original key or value. When false, Apply
	// returns the error and discards the failing filter text's output.
	// All statements of one filter text share a single walk, so an error
	// is not confined to one statement.
	BestEffort bool

	// ViewSource resolves named views at parse time. May be nil, in
	// which case bare identifiers are never treated as views.
	ViewSource ViewSource
	// FunctionRegistry resolves function names for the default
	// FunctionInvoker. Ignored if Invoker is set explicitly.
	FunctionRegistry FunctionRegistry
	// Invoker overrides the default FunctionInvoker entirely.
	Invoker FunctionInvoker
	// FilterContextProvider supplies the ambient context filter used
	// when AppendContextInNodeFilter is true.
	FilterContextProvider FilterContextProvider
	// Logger receives diagnostic output. Defaults to DefaultLogger().
	Logger Logger
}

// Option mutates a Config being built by NewConfig.
type Option func(*Config) error

// NewConfig applies defaults, then opts in order, mirroring the
// functional-options constructor used throughout this codebase.
func NewConfig(opts ...Option) (Config, error) {
	c := Config{
		AppendContextInNodeFilter:               true,
		FilterImplicitlyIncludeBaseFieldsInView: true,
		FilterPropagateViewToNestedFilters:       false,
		PropertyAddNonAnnotatedFieldsToBaseView:  true,
		ParseCacheMaxEntries:                     10000,
		BestEffort:                               true,
	}
	for _, opt := range opts {
		if err := opt(&c); err != nil {
			return Config{}, err
		}
	}
	if c.Logger == nil {
		c.Logger = DefaultLogger()
	}
	return c, nil
}

// WithAppendContextInNodeFilter sets AppendContextInNodeFilter.
func WithAppendContextInNodeFilter(v bool) Option {
	return func(c *Config) error { c.AppendContextInNodeFilter = v; return nil }
}

// WithFilterImplicitlyIncludeBaseFieldsInView sets FilterImplicitlyIncludeBaseFieldsInView.
func WithFilterImplicitlyIncludeBaseFieldsInView(v bool) Option {
	return func(c *Config) error { c.FilterImplicitlyIncludeBaseFieldsInView = v; return nil }
}

// WithFilterPropagateViewToNestedFilters sets FilterPropagateViewToNestedFilters.
func WithFilterPropagateViewToNestedFilters(v bool) Option {
	return func(c *Config) error { c.FilterPropagateViewToNestedFilters = v; return nil }
}

// WithPropertyAddNonAnnotatedFieldsToBaseView sets PropertyAddNonAnnotatedFieldsToBaseView.
func WithPropertyAddNonAnnotatedFieldsToBaseView(v bool) Option {
	return func(c *Config) error { c.PropertyAddNonAnnotatedFieldsToBaseView = v; return nil }
}

// WithParseCacheMaxEntries sets ParseCacheMaxEntries.
func WithParseCacheMaxEntries(n int) Option {
	return func(c *Config) error { c.ParseCacheMaxEntries = n; return nil }
}

// WithBestEffort sets BestEffort.
func WithBestEffort(v bool) Option {
	return func(c *Config) error { c.BestEffort = v; return nil }
}

// WithViewSource sets ViewSource.
func WithViewSource(vs ViewSource) Option {
	return func(c *Config) error { c.ViewSource = vs; return nil }
}

// WithFunctionRegistry sets FunctionRegistry.
func WithFunctionRegistry(r FunctionRegistry) Option {
	return func(c *Config) error { c.FunctionRegistry = r; return nil }
}

// WithFunctionInvoker overrides the default FunctionInvoker.
func WithFunctionInvoker(inv FunctionInvoker) Option {
	return func(c *Config) error { c.Invoker = inv; return nil }
}

// WithFilterContextProvider sets FilterContextProvider.
func WithFilterContextProvider(p FilterContextProvider) Option {
	return func(c *Config) error { c.FilterContextProvider = p; return nil }
}

// WithLogger sets Logger.
func WithLogger(l Logger) Option {
	return func(c *Config) error { c.Logger = l; return nil }
}
