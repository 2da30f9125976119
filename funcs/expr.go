// Package funcs provides the built-in key/value functions available to
// the filter DSL's `@name(args)` production, plus the expr-lang and
// goja bridges used to embed general-purpose expressions and scripts.
package funcs

import (
	"fmt"
	"sync"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/squigglygo/squiggly/internal/argdecode"
	"github.com/squigglygo/squiggly/types"
)

// ExprFunction evaluates an expr-lang expression against the current
// key/value/parent. It compiles lazily per distinct expression text and
// caches the *vm.Program, since a filter's `@expr(...)` call site only
// reveals its expression text at call time.
type ExprFunction struct {
	programs sync.Map // string -> *vm.Program
}

// NewExprFunction returns a ready-to-register ExprFunction.
func NewExprFunction() *ExprFunction { return &ExprFunction{} }

// Name implements types.Function.
func (f *ExprFunction) Name() string { return "expr" }

// Call implements types.Function. args[0] must be the expression text;
// the expression sees `key`, `value` and `parent` as environment
// variables and its result becomes the function's return value.
func (f *ExprFunction) Call(fctx types.FunctionContext, args []types.Argument) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("expr: requires an expression string argument")
	}
	text, err := argdecode.Literal(args[0])
	if err != nil {
		return nil, err
	}
	exprText, ok := text.(string)
	if !ok {
		return nil, fmt.Errorf("expr: expression argument must be a string")
	}

	program, err := f.compile(exprText)
	if err != nil {
		return nil, err
	}

	env := map[string]any{
		"key":    fctx.Key,
		"value":  fctx.Value,
		"parent": fctx.Parent,
	}
	return vm.Run(program, env)
}

func (f *ExprFunction) compile(exprText string) (*vm.Program, error) {
	if cached, ok := f.programs.Load(exprText); ok {
		return cached.(*vm.Program), nil
	}
	program, err := expr.Compile(exprText, expr.AllowUndefinedVariables())
	if err != nil {
		return nil, fmt.Errorf("expr: compiling %q: %w", exprText, err)
	}
	f.programs.Store(exprText, program)
	return program, nil
}
