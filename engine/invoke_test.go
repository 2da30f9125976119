package engine

import (
	"strings"
	"testing"

	"github.com/squigglygo/squiggly/types"
)

type fnFunc struct {
	name string
	call func(fctx types.FunctionContext, args []types.Argument) (any, error)
}

func (f fnFunc) Name() string { return f.name }
func (f fnFunc) Call(fctx types.FunctionContext, args []types.Argument) (any, error) {
	return f.call(fctx, args)
}

func TestSequentialInvokerChainsLeftToRight(t *testing.T) {
	registry := MapRegistry{}
	registry.Register(fnFunc{name: "trim", call: func(fctx types.FunctionContext, args []types.Argument) (any, error) {
		s, _ := fctx.Value.(string)
		return strings.TrimSpace(s), nil
	}})
	registry.Register(fnFunc{name: "upper", call: func(fctx types.FunctionContext, args []types.Argument) (any, error) {
		s, _ := fctx.Value.(string)
		return strings.ToUpper(s), nil
	}})

	inv := NewSequentialInvoker(registry)
	out, err := inv.Invoke("k", "  hi  ", nil, []types.FunctionCall{{Name: "trim"}, {Name: "upper"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "HI" {
		t.Fatalf("expected HI, got %v", out)
	}
}

func TestSequentialInvokerUnknownFunction(t *testing.T) {
	inv := NewSequentialInvoker(MapRegistry{})
	_, err := inv.Invoke("k", "v", nil, []types.FunctionCall{{Name: "nope"}})
	if err == nil {
		t.Fatal("expected an error for an unknown function")
	}
	if !types.IsFunctionError(err) {
		t.Fatalf("expected a FunctionError, got %T: %v", err, err)
	}
}

func TestSequentialInvokerPropagatesUnderlyingError(t *testing.T) {
	registry := MapRegistry{}
	boom := fnFunc{name: "boom", call: func(fctx types.FunctionContext, args []types.Argument) (any, error) {
		return nil, errBoom{}
	}}
	registry.Register(boom)
	inv := NewSequentialInvoker(registry)
	_, err := inv.Invoke("k", "v", nil, []types.FunctionCall{{Name: "boom"}})
	if !types.IsFunctionError(err) {
		t.Fatalf("expected a FunctionError, got %T: %v", err, err)
	}
}

type errBoom struct{}

func (errBoom) Error() string { return "boom" }
