// Package reqctx is the narrow escape hatch for hosts that cannot
// thread a context.Context down to a JsonNode[T].Create callback
// invoked deep inside a third-party marshaler. The core itself never
// uses this package — every public entry point in package engine takes
// an explicit context.Context. Since Go has no thread-local storage, a
// token is minted with gofrs/uuid, handed to the third-party call, and
// looked up from inside the callback it eventually invokes.
package reqctx

import (
	"context"
	"sync"

	"github.com/gofrs/uuid/v5"
)

var store sync.Map // uuid.UUID -> context.Context

// Token identifies one scoped context registration.
type Token uuid.UUID

// Set registers ctx under a freshly minted token and returns it. The
// caller must Clear the token once the third-party call it wraps has
// returned, typically via defer.
func Set(ctx context.Context) (Token, error) {
	id, err := uuid.NewV4()
	if err != nil {
		return Token{}, err
	}
	store.Store(id, ctx)
	return Token(id), nil
}

// Get returns the context registered under token, if any.
func Get(token Token) (context.Context, bool) {
	v, ok := store.Load(uuid.UUID(token))
	if !ok {
		return nil, false
	}
	return v.(context.Context), true
}

// Clear removes token's registration.
func Clear(token Token) {
	store.Delete(uuid.UUID(token))
}

// Scoped registers ctx for the duration of fn, passing fn the token so
// it can hand it to a third-party API that will later call back into
// code needing the context (e.g. through Get). The registration is
// always cleared before Scoped returns, even if fn panics or errors.
func Scoped(ctx context.Context, fn func(Token) error) error {
	token, err := Set(ctx)
	if err != nil {
		return err
	}
	defer Clear(token)
	return fn(token)
}
