package engine

import (
	"fmt"

	"github.com/squigglygo/squiggly/types"
)

// walkState carries the per-Apply-call state a transform callback closes
// over: the statement roots it matches against, the invoker used to run
// key/value functions, and an error sink for BestEffort handling (spec
// §4.4 step 5; TransformFunc has no error return, so failures collected
// here are surfaced by the caller after Transform completes).
type walkState struct {
	roots     []*ExpressionNode
	invoker   types.FunctionInvoker
	logger    types.Logger
	bestEffort bool
	errs      []error
}

// newTransformCallback builds the depth-first transform callback for one
// Filter application, in five steps:
//  1. the document root itself always passes through unchanged
//  2. array-index path elements pass through without a match test
//  3. the matcher decides Include/Exclude/Never for every property
//  4. Exclude and Never both prune the node from its parent
//  5. Include applies key functions (with rename) and value functions
func newTransformCallback[T any](state *walkState) types.TransformFunc[T] {
	return func(ctx *types.NodeContext[T], node types.JsonNode[T]) types.JsonNode[T] {
		if len(ctx.Path) == 0 && ctx.Key == nil {
			return node
		}

		fullPath := appendKey(ctx.Path, ctx.Key)
		if last, ok := fullPath.Last(); ok && last.Kind == types.PathIndex {
			return node
		}

		result := Match(fullPath, state.roots)
		switch result.Kind {
		case MatchExclude, MatchNever:
			return nil
		}

		expr := result.Expr
		if expr == nil {
			return node
		}

		var parentVal any
		if ctx.Parent != nil {
			parentVal = ctx.Parent.Value()
		}

		if expr.Rename != "" || len(expr.KeyFunctions) > 0 {
			newKey := ctx.Key
			if expr.Rename != "" {
				newKey = expr.Rename
			}
			if len(expr.KeyFunctions) > 0 {
				computed, err := state.invoker.Invoke(newKey, newKey, parentVal, expr.KeyFunctions)
				if err != nil {
					state.recordFunctionError(expr.KeyFunctions, err)
				} else {
					newKey = computed
				}
			}
			ctx.Key = coerceKey(newKey)
		}

		if len(expr.ValueFunctions) > 0 {
			newVal, err := state.invoker.Invoke(ctx.Key, node.Value(), parentVal, expr.ValueFunctions)
			if err != nil {
				state.recordFunctionError(expr.ValueFunctions, err)
			} else {
				node = node.Create(newVal)
			}
		}

		return node
	}
}

func (s *walkState) recordFunctionError(calls []types.FunctionCall, err error) {
	name := "?"
	if len(calls) > 0 {
		name = calls[0].Name
	}
	fnErr := types.NewFunctionError(name, err)
	if s.bestEffort {
		if s.logger != nil {
			s.logger.Printf("squiggly: function %q failed, keeping original value: %v", name, err)
		}
		return
	}
	s.errs = append(s.errs, fnErr)
}

// appendKey extends path with ctx.Key, which is nil at the document
// root, a string for object properties, and an int for array elements.
func appendKey(path types.DocumentPath, key any) types.DocumentPath {
	switch k := key.(type) {
	case string:
		return path.Property(k, nil)
	case int:
		return path.Index(k)
	default:
		return path
	}
}

// coerceKey implements the walker's key-as-string coercion: a key
// function or rename may hand back any value, but object keys in the
// output document are always strings.
func coerceKey(v any) any {
	switch k := v.(type) {
	case string:
		return k
	case nil:
		return v
	default:
		return fmt.Sprintf("%v", k)
	}
}

// Walk applies one already-parsed Filter to root using the depth-first
// transform callback, returning the transformed node and any function
// errors encountered when cfg is not in best-effort mode.
func Walk[T any](root types.JsonNode[T], filter *Filter, invoker types.FunctionInvoker, logger types.Logger, bestEffort bool) (types.JsonNode[T], error) {
	if len(filter.Statements) == 0 {
		return root.Create(emptyValueLike(root.Value())), nil
	}

	state := &walkState{
		roots:      statementRoots(filter),
		invoker:    invoker,
		logger:     logger,
		bestEffort: bestEffort,
	}
	out := root.Transform(newTransformCallback[T](state))
	if len(state.errs) > 0 {
		return out, state.errs[0]
	}
	return out, nil
}

// emptyValueLike returns the empty projection for an empty filter: an
// empty object for object-shaped documents, and the value unchanged for
// anything else, since an empty projection of a scalar or array has no
// well-defined shape.
func emptyValueLike(v any) any {
	switch v.(type) {
	case map[string]any:
		return map[string]any{}
	default:
		return v
	}
}
