// Package mqttfilter is an example MQTT adapter: it subscribes to a
// topic of JSON documents, applies a configured filter, and republishes
// the projected result. It runs a single engine.Engine against a fixed
// in-topic/out-topic pair instead of a topic->handler registry, since a
// filter adapter has exactly one thing to do per message.
package mqttfilter

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/gofrs/uuid/v5"

	"github.com/squigglygo/squiggly/adapter/stdjson"
	"github.com/squigglygo/squiggly/engine"
	"github.com/squigglygo/squiggly/types"
)

// Config configures an Adapter's broker connection and topic wiring.
type Config struct {
	Server               string
	Username             string
	Password             string
	ClientID             string
	MaxReconnectInterval time.Duration
	CleanSession         bool
	InTopic              string
	OutTopic             string
	QoS                  byte
	FilterText           string
}

// Adapter bridges an MQTT broker to a squiggly Engine: every message
// received on InTopic is parsed as JSON, filtered through FilterText,
// and republished as JSON to OutTopic.
type Adapter struct {
	cfg    Config
	client paho.Client
	engine *engine.Engine
	logger types.Logger
}

// New connects to the broker described by cfg. It retries the initial
// connection indefinitely, since a filter adapter started before its
// broker is reachable should keep trying rather than fail construction
// outright.
func New(cfg Config, eng *engine.Engine, logger types.Logger) (*Adapter, error) {
	if cfg.InTopic == "" || cfg.OutTopic == "" {
		return nil, fmt.Errorf("mqttfilter: InTopic and OutTopic are required")
	}
	logger = types.NewLogger(logger)

	a := &Adapter{cfg: cfg, engine: eng, logger: logger}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Server)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetCleanSession(cfg.CleanSession)
	if cfg.ClientID == "" {
		id, err := uuid.NewV4()
		if err != nil {
			return nil, err
		}
		opts.SetClientID("squiggly/" + id.String())
	} else {
		opts.SetClientID(cfg.ClientID)
	}
	maxReconnect := cfg.MaxReconnectInterval
	if maxReconnect <= 0 {
		maxReconnect = time.Minute
	}
	opts.SetMaxReconnectInterval(maxReconnect)
	opts.SetOnConnectHandler(a.onConnected)
	opts.SetConnectionLostHandler(a.onConnectionLost)

	a.client = paho.NewClient(opts)
	for {
		if token := a.client.Connect(); token.Wait() && token.Error() != nil {
			logger.Printf("mqttfilter: connecting to broker failed, retrying: %v", token.Error())
			time.Sleep(2 * time.Second)
			continue
		}
		break
	}
	return a, nil
}

func (a *Adapter) onConnected(paho.Client) {
	a.logger.Printf("mqttfilter: connected, subscribing to %s", a.cfg.InTopic)
	for {
		token := a.client.Subscribe(a.cfg.InTopic, a.cfg.QoS, a.onMessage)
		if token.Wait() && token.Error() != nil {
			a.logger.Printf("mqttfilter: subscribe failed, retrying: %v", token.Error())
			time.Sleep(2 * time.Second)
			continue
		}
		break
	}
}

func (a *Adapter) onConnectionLost(_ paho.Client, reason error) {
	a.logger.Printf("mqttfilter: connection lost: %v", reason)
}

func (a *Adapter) onMessage(_ paho.Client, msg paho.Message) {
	out, err := a.filterPayload(msg.Payload())
	if err != nil {
		a.logger.Printf("mqttfilter: dropping message on %s: %v", msg.Topic(), err)
		return
	}
	if token := a.client.Publish(a.cfg.OutTopic, a.cfg.QoS, false, out); token.Wait() && token.Error() != nil {
		a.logger.Printf("mqttfilter: publish to %s failed: %v", a.cfg.OutTopic, token.Error())
	}
}

// filterPayload unmarshals a JSON message, applies the adapter's
// configured filter, and re-marshals the result. Split out of
// onMessage so the filtering logic can be exercised without a live
// broker connection.
func (a *Adapter) filterPayload(payload []byte) ([]byte, error) {
	var doc any
	if err := json.Unmarshal(payload, &doc); err != nil {
		return nil, fmt.Errorf("invalid json: %w", err)
	}

	out, err := engine.Apply[any](context.Background(), a.engine, stdjson.New(doc), a.cfg.FilterText)
	if err != nil {
		return nil, fmt.Errorf("filter failed: %w", err)
	}

	result, err := json.Marshal(out.Value())
	if err != nil {
		return nil, fmt.Errorf("marshaling filtered result: %w", err)
	}
	return result, nil
}

// Close unsubscribes and disconnects from the broker.
func (a *Adapter) Close() {
	a.client.Unsubscribe(a.cfg.InTopic)
	a.client.Disconnect(250)
}
