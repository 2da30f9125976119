package funcs

import (
	"fmt"
	"testing"

	"github.com/squigglygo/squiggly/types"
)

func TestBuiltinTrimUpperLower(t *testing.T) {
	cases := []struct {
		fn   types.Function
		in   any
		want any
	}{
		{trimFunc, "  hi  ", "hi"},
		{upperFunc, "hi", "HI"},
		{lowerFunc, "HI", "hi"},
	}
	for _, c := range cases {
		got, err := c.fn.Call(types.FunctionContext{Value: c.in}, nil)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", c.fn.Name(), err)
		}
		if got != c.want {
			t.Fatalf("%s: got %v, want %v", c.fn.Name(), got, c.want)
		}
	}
}

func TestDefaultFuncSubstitutesEmpty(t *testing.T) {
	got, err := defaultFunc.Call(types.FunctionContext{Value: ""}, []types.Argument{{Kind: types.ArgLiteral, Literal: "fallback"}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "fallback" {
		t.Fatalf("expected fallback, got %v", got)
	}

	got, err = defaultFunc.Call(types.FunctionContext{Value: "present"}, []types.Argument{{Kind: types.ArgLiteral, Literal: "fallback"}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "present" {
		t.Fatalf("expected the original value to survive, got %v", got)
	}
}

func TestJoinFunc(t *testing.T) {
	got, err := joinFunc.Call(types.FunctionContext{Value: []any{"a", "b", "c"}}, []types.Argument{{Kind: types.ArgLiteral, Literal: "-"}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "a-b-c" {
		t.Fatalf("got %v", got)
	}
}

func TestExprFunctionEvaluatesAgainstValue(t *testing.T) {
	f := NewExprFunction()
	got, err := f.Call(types.FunctionContext{Value: 5}, []types.Argument{{Kind: types.ArgLiteral, Literal: "value * 2"}})
	if err != nil {
		t.Fatal(err)
	}
	if fmt.Sprintf("%v", got) != "10" {
		t.Fatalf("got %v", got)
	}
}

func TestExprFunctionCachesCompiledProgram(t *testing.T) {
	f := NewExprFunction()
	for i := 0; i < 3; i++ {
		got, err := f.Call(types.FunctionContext{Value: i}, []types.Argument{{Kind: types.ArgLiteral, Literal: "value + 1"}})
		if err != nil {
			t.Fatal(err)
		}
		if fmt.Sprintf("%v", got) != fmt.Sprintf("%v", i+1) {
			t.Fatalf("iteration %d: got %v", i, got)
		}
	}
}

func TestJSFunctionEvaluatesScript(t *testing.T) {
	f := NewJSFunction()
	got, err := f.Call(types.FunctionContext{Value: "abc"}, []types.Argument{{Kind: types.ArgLiteral, Literal: "value.toUpperCase()"}})
	if err != nil {
		t.Fatal(err)
	}
	if got != "ABC" {
		t.Fatalf("got %v", got)
	}
}

func TestNewDefaultRegistryLooksUpAllBuiltins(t *testing.T) {
	r := NewDefaultRegistry()
	for _, name := range []string{"trim", "upper", "lower", "default", "join", "expr", "js"} {
		if _, ok := r.Lookup(name); !ok {
			t.Fatalf("expected registry to contain %q", name)
		}
	}
}
