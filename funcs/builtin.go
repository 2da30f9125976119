package funcs

import (
	"fmt"
	"strings"

	"github.com/squigglygo/squiggly/internal/argdecode"
	"github.com/squigglygo/squiggly/types"
)

// simpleFunc adapts a plain Go func to types.Function, for the small
// value transforms that don't need expr-lang or goja.
type simpleFunc struct {
	name string
	call func(fctx types.FunctionContext, args []types.Argument) (any, error)
}

func (f simpleFunc) Name() string { return f.name }
func (f simpleFunc) Call(fctx types.FunctionContext, args []types.Argument) (any, error) {
	return f.call(fctx, args)
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

var trimFunc = simpleFunc{name: "trim", call: func(fctx types.FunctionContext, args []types.Argument) (any, error) {
	s, ok := asString(fctx.Value)
	if !ok {
		return fctx.Value, nil
	}
	return strings.TrimSpace(s), nil
}}

var upperFunc = simpleFunc{name: "upper", call: func(fctx types.FunctionContext, args []types.Argument) (any, error) {
	s, ok := asString(fctx.Value)
	if !ok {
		return fctx.Value, nil
	}
	return strings.ToUpper(s), nil
}}

var lowerFunc = simpleFunc{name: "lower", call: func(fctx types.FunctionContext, args []types.Argument) (any, error) {
	s, ok := asString(fctx.Value)
	if !ok {
		return fctx.Value, nil
	}
	return strings.ToLower(s), nil
}}

// defaultFunc substitutes its single argument when the current value is
// nil or an empty string.
var defaultFunc = simpleFunc{name: "default", call: func(fctx types.FunctionContext, args []types.Argument) (any, error) {
	if fctx.Value != nil {
		if s, ok := fctx.Value.(string); !ok || s != "" {
			return fctx.Value, nil
		}
	}
	if len(args) == 0 {
		return fctx.Value, nil
	}
	return argdecode.Literal(args[0])
}}

// joinFunc joins a []any value with the separator given as its
// argument (", " if omitted).
var joinFunc = simpleFunc{name: "join", call: func(fctx types.FunctionContext, args []types.Argument) (any, error) {
	items, ok := fctx.Value.([]any)
	if !ok {
		return fctx.Value, nil
	}
	sep := ", "
	if len(args) > 0 {
		v, err := argdecode.Literal(args[0])
		if err != nil {
			return nil, err
		}
		if s, ok := v.(string); ok {
			sep = s
		}
	}
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%v", it)
	}
	return strings.Join(parts, sep), nil
}}
