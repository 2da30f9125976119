// Package argdecode binds a Function's positional []types.Argument list
// onto a typed configuration struct, using the same map-to-struct
// decoding approach a node's JSON configuration would use, but sourced
// from the filter DSL's argument grammar instead of a decoded JSON
// object.
package argdecode

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/squigglygo/squiggly/types"
)

// Resolver turns one Argument into a concrete Go value: a literal
// returns itself, a ref is looked up against the calling context, and a
// nested call is evaluated recursively by the caller-supplied invoker.
type Resolver func(arg types.Argument) (any, error)

// Bind resolves args positionally against paramNames and decodes the
// resulting map into out (which must be a pointer to a struct) using
// mapstructure, so config structs can use ordinary field tags:
//
//	type dateArgs struct {
//		Layout string `mapstructure:"layout"`
//		Zone   string `mapstructure:"zone"`
//	}
//	argdecode.Bind([]string{"layout", "zone"}, call.Arguments, resolve, &cfg)
//
// It is not an error for args to be shorter than paramNames: missing
// trailing parameters are simply left at their zero value.
func Bind(paramNames []string, args []types.Argument, resolve Resolver, out any) error {
	if len(args) > len(paramNames) {
		return fmt.Errorf("argdecode: got %d arguments, function accepts at most %d", len(args), len(paramNames))
	}

	m := make(map[string]any, len(args))
	for i, arg := range args {
		v, err := resolve(arg)
		if err != nil {
			return fmt.Errorf("argdecode: resolving argument %d (%s): %w", i, paramNames[i], err)
		}
		m[paramNames[i]] = v
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(m)
}

// Literal resolves an Argument that is guaranteed not to be a Ref or a
// nested Call, returning its Literal value directly. Useful for
// functions whose arguments are always constants.
func Literal(arg types.Argument) (any, error) {
	if arg.Kind != types.ArgLiteral {
		return nil, fmt.Errorf("argdecode: expected a literal argument, got %v", arg.Kind)
	}
	return arg.Literal, nil
}
