package funcs

import (
	"fmt"
	"sync"

	"github.com/dop251/goja"

	"github.com/squigglygo/squiggly/internal/argdecode"
	"github.com/squigglygo/squiggly/types"
)

// JSFunction evaluates a JavaScript snippet against the current
// key/value/parent, grounded on GojaJsEngine's compiled-program cache
// and pooled *goja.Runtime instances (js_engine.go's jsUdfProgramCache
// and vmPool). A pooled runtime serves one call at a time; key, value
// and parent are rebound on every call, and any other global a script
// defines stays in that runtime for its next use.
type JSFunction struct {
	programs sync.Map // string -> *goja.Program
	vms      sync.Pool
}

// NewJSFunction returns a ready-to-register JSFunction.
func NewJSFunction() *JSFunction {
	f := &JSFunction{}
	f.vms = sync.Pool{New: func() any { return goja.New() }}
	return f
}

// Name implements types.Function.
func (f *JSFunction) Name() string { return "js" }

// Call implements types.Function. args[0] must be the script text,
// evaluated with `key`, `value` and `parent` bound as globals; the
// script's completion value becomes the function's return value.
func (f *JSFunction) Call(fctx types.FunctionContext, args []types.Argument) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("js: requires a script string argument")
	}
	text, err := argdecode.Literal(args[0])
	if err != nil {
		return nil, err
	}
	script, ok := text.(string)
	if !ok {
		return nil, fmt.Errorf("js: script argument must be a string")
	}

	program, err := f.compile(script)
	if err != nil {
		return nil, err
	}

	vm := f.vms.Get().(*goja.Runtime)
	defer f.vms.Put(vm)

	if err := vm.Set("key", fctx.Key); err != nil {
		return nil, err
	}
	if err := vm.Set("value", fctx.Value); err != nil {
		return nil, err
	}
	if err := vm.Set("parent", fctx.Parent); err != nil {
		return nil, err
	}

	result, err := vm.RunProgram(program)
	if err != nil {
		return nil, fmt.Errorf("js: running script: %w", err)
	}
	return result.Export(), nil
}

func (f *JSFunction) compile(script string) (*goja.Program, error) {
	if cached, ok := f.programs.Load(script); ok {
		return cached.(*goja.Program), nil
	}
	program, err := goja.Compile("", script, true)
	if err != nil {
		return nil, fmt.Errorf("js: compiling script: %w", err)
	}
	f.programs.Store(script, program)
	return program, nil
}
