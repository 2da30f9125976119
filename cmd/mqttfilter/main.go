// Command mqttfilter runs the MQTT filter adapter standalone: messages
// published to -in-topic are filtered through -filter and republished
// to -out-topic.
package main

import (
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/squigglygo/squiggly/adapter/mqttfilter"
	"github.com/squigglygo/squiggly/engine"
	"github.com/squigglygo/squiggly/funcs"
	"github.com/squigglygo/squiggly/types"
)

func main() {
	server := flag.String("server", "tcp://127.0.0.1:1883", "mqtt broker address")
	inTopic := flag.String("in-topic", "squiggly/in", "topic to consume raw documents from")
	outTopic := flag.String("out-topic", "squiggly/out", "topic to publish filtered documents to")
	filterText := flag.String("filter", "**", "filter expression applied to every message")
	username := flag.String("username", "", "mqtt username")
	password := flag.String("password", "", "mqtt password")
	flag.Parse()

	logger := types.DefaultLogger()
	cfg, err := types.NewConfig(
		types.WithAppendContextInNodeFilter(false),
		types.WithFunctionRegistry(funcs.NewDefaultRegistry()),
		types.WithLogger(logger),
	)
	if err != nil {
		logger.Printf("configuring engine: %v", err)
		return
	}

	adapter, err := mqttfilter.New(mqttfilter.Config{
		Server:     *server,
		Username:   *username,
		Password:   *password,
		InTopic:    *inTopic,
		OutTopic:   *outTopic,
		FilterText: *filterText,
	}, engine.New(cfg), logger)
	if err != nil {
		logger.Printf("connecting: %v", err)
		return
	}
	defer adapter.Close()

	logger.Printf("mqttfilter bridging %s -> %s", *inTopic, *outTopic)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
}
