package engine

import "github.com/squigglygo/squiggly/types"

// SequentialInvoker is the default types.FunctionInvoker: it looks up
// each FunctionCall in a registry and runs the chain left to right,
// threading each function's return value into the next as its value
// argument.
type SequentialInvoker struct {
	Registry types.FunctionRegistry
}

// NewSequentialInvoker returns an invoker backed by registry.
func NewSequentialInvoker(registry types.FunctionRegistry) *SequentialInvoker {
	return &SequentialInvoker{Registry: registry}
}

// Invoke implements types.FunctionInvoker.
func (i *SequentialInvoker) Invoke(key, value, parent any, calls []types.FunctionCall) (any, error) {
	current := value
	for _, call := range calls {
		fn, ok := i.Registry.Lookup(call.Name)
		if !ok {
			return value, types.NewFunctionError(call.Name, errUnknownFunction(call.Name))
		}
		fctx := types.FunctionContext{Key: key, Value: current, Parent: parent}
		result, err := fn.Call(fctx, call.Arguments)
		if err != nil {
			return value, types.NewFunctionError(call.Name, err)
		}
		current = result
	}
	return current, nil
}

type unknownFunctionError string

func (e unknownFunctionError) Error() string { return "unknown function " + string(e) }

func errUnknownFunction(name string) error { return unknownFunctionError(name) }

// MapRegistry is a plain map-backed types.FunctionRegistry.
type MapRegistry map[string]types.Function

// Lookup implements types.FunctionRegistry.
func (r MapRegistry) Lookup(name string) (types.Function, bool) {
	fn, ok := r[name]
	return fn, ok
}

// Register adds or replaces a function by its own Name().
func (r MapRegistry) Register(fn types.Function) {
	r[fn.Name()] = fn
}
