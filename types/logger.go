package types

import (
	"log"
	"os"
)

// Logger is the minimal logging capability the engine needs. It is
// satisfied by *log.Logger so embedders can pass their own without
// pulling in a logging framework.
type Logger interface {
	Printf(format string, v ...interface{})
}

// this is a safeguard, breaking on compile time in case
// `log.Logger` does not adhere to our `Logger` interface.
// see https://golang.org/doc/faq#guarantee_satisfies_interface
var _ Logger = &log.Logger{}

// DefaultLogger returns the Logger used when none is configured.
func DefaultLogger() *log.Logger {
	return log.New(os.Stderr, "squiggly: ", log.LstdFlags)
}

// NewLogger returns custom if non-nil, otherwise DefaultLogger().
func NewLogger(custom Logger) Logger {
	if custom != nil {
		return custom
	}
	return DefaultLogger()
}
