// Command httpfilter runs the HTTP filter adapter standalone: POST a
// JSON document to /filter?filter=<expression> and get back the
// projected document, or connect to /stream for the websocket variant.
package main

import (
	"flag"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"github.com/squigglygo/squiggly/adapter/httpfilter"
	"github.com/squigglygo/squiggly/engine"
	"github.com/squigglygo/squiggly/funcs"
	"github.com/squigglygo/squiggly/types"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	cacheEntries := flag.Int("cache-entries", 10000, "parse cache size")
	flag.Parse()

	logger := types.DefaultLogger()
	cfg, err := types.NewConfig(
		types.WithAppendContextInNodeFilter(false),
		types.WithParseCacheMaxEntries(*cacheEntries),
		types.WithFunctionRegistry(funcs.NewDefaultRegistry()),
		types.WithLogger(logger),
	)
	if err != nil {
		logger.Printf("configuring engine: %v", err)
		return
	}

	eng := engine.New(cfg)
	handler := httpfilter.New(eng, logger)

	router := httprouter.New()
	handler.Register(router)

	logger.Printf("httpfilter listening on %s", *addr)
	if err := http.ListenAndServe(*addr, router); err != nil {
		logger.Printf("serving: %v", err)
	}
}
