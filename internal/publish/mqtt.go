// Package publish forwards tether records to an MQTT broker.
package publish

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/cjeanneret/gpcam/internal/config"
	"github.com/cjeanneret/gpcam/internal/debug"
	"github.com/cjeanneret/gpcam/internal/tether"
)

const publishTimeout = 2 * time.Second

// Client is the subset of pahomqtt.Client used by the publisher.
type Client interface {
	Connect() pahomqtt.Token
	Disconnect(quiesce uint)
	IsConnected() bool
	Publish(topic string, qos byte, retained bool, payload any) pahomqtt.Token
}

// Publisher sends every record to <prefix>/events and keeps an
// online/offline availability message on <prefix>/status.
type Publisher struct {
	cfg    config.MQTTConfig
	client Client

	mu      sync.Mutex
	started bool
}

var _ tether.Sink = (*Publisher)(nil)

// New builds a publisher with a paho client for cfg.Broker.
func New(cfg config.MQTTConfig) *Publisher {
	opts := pahomqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetUsername(cfg.Username).
		SetPassword(cfg.Password).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(topic(cfg, "status"), "offline", 1, true).
		SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
			debug.Error(fmt.Errorf("mqtt connection lost: %w", err))
		})
	return NewWithClient(cfg, pahomqtt.NewClient(opts))
}

// NewWithClient uses an existing client.
func NewWithClient(cfg config.MQTTConfig, c Client) *Publisher {
	return &Publisher{cfg: cfg, client: c}
}

func topic(cfg config.MQTTConfig, leaf string) string {
	return cfg.TopicPrefix + "/" + leaf
}

// Start connects to the broker and announces the publisher online.
func (p *Publisher) Start() error {
	token := p.client.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	p.mu.Lock()
	p.started = true
	p.mu.Unlock()

	debug.Info("MQTT publisher connected to %s", p.cfg.Broker)
	return p.send(topic(p.cfg, "status"), "online", true)
}

// Stop announces offline and disconnects.
func (p *Publisher) Stop() {
	p.mu.Lock()
	started := p.started
	p.started = false
	p.mu.Unlock()
	if !started {
		return
	}
	if p.client.IsConnected() {
		if err := p.send(topic(p.cfg, "status"), "offline", true); err != nil {
			debug.Error(err)
		}
		p.client.Disconnect(1000)
	}
}

// Publish implements tether.Sink. Failures are logged, not returned.
func (p *Publisher) Publish(r tether.Record) {
	p.mu.Lock()
	started := p.started
	p.mu.Unlock()
	if !started {
		return
	}

	data, err := json.Marshal(r)
	if err != nil {
		debug.Error(fmt.Errorf("mqtt encode record: %w", err))
		return
	}
	if err := p.send(topic(p.cfg, "events"), data, false); err != nil {
		debug.Error(err)
		return
	}
	debug.Trace("MQTT published %s for session %s", r.Event.Kind, r.Session)
}

func (p *Publisher) send(t string, payload any, retained bool) error {
	token := p.client.Publish(t, p.cfg.QoS, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("publish %s: timed out after %s", t, publishTimeout)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish %s: %w", t, err)
	}
	return nil
}
