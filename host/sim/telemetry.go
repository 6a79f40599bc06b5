package sim

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/cenkalti/backoff/v4"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
)

// Publisher sends a payload to a topic
type Publisher interface {
	Publish(topic string, payload []byte) error
	Close()
}

// MQTTPublisher publishes over an MQTT client
type MQTTPublisher struct {
	client mqtt.Client
}

// ConnectMQTT connects to the broker, retrying with exponential backoff
func ConnectMQTT(ctx context.Context, cfg MQTTConfig) (*MQTTPublisher, error) {
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "feeder-sim-" + uuid.NewString()
	}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetUsername(cfg.Username)
	opts.SetPassword(cfg.Password)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 30 * time.Second

	var client mqtt.Client
	err := backoff.Retry(func() error {
		client = mqtt.NewClient(opts)
		if token := client.Connect(); token.Wait() && token.Error() != nil {
			log.Printf("Failed to connect to MQTT broker: %v", token.Error())
			return token.Error()
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(bo, uint64(cfg.ConnectRetries)), ctx))
	if err != nil {
		return nil, fmt.Errorf("could not connect to MQTT broker %s: %w", cfg.Broker, err)
	}

	log.Printf("Connected to MQTT broker at %s as %s", cfg.Broker, clientID)
	return &MQTTPublisher{client: client}, nil
}

// Publish sends payload with QoS 0
func (p *MQTTPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, 0, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("failed to publish to %s: %w", topic, err)
	}
	return nil
}

// Close disconnects from the broker
func (p *MQTTPublisher) Close() {
	if p.client.IsConnected() {
		p.client.Disconnect(250)
		log.Println("MQTT client disconnected")
	}
}

// Telemetry periodically publishes simulator snapshots. Publishing goes
// through a circuit breaker so a dead broker does not stall every tick.
type Telemetry struct {
	sim      *Simulator
	pub      Publisher
	topic    string
	interval time.Duration
	cb       *gobreaker.CircuitBreaker
	metrics  *Metrics
}

// NewTelemetry creates a publisher loop. metrics may be nil.
func NewTelemetry(sim *Simulator, pub Publisher, cfg MQTTConfig, metrics *Metrics) *Telemetry {
	t := &Telemetry{
		sim:      sim,
		pub:      pub,
		topic:    cfg.Topic,
		interval: cfg.Interval,
		metrics:  metrics,
	}
	t.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "telemetry",
		Timeout: cfg.BreakerTimeout,
		ReadyToTrip: func(c gobreaker.Counts) bool {
			return c.ConsecutiveFailures >= uint32(cfg.BreakerFailures)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("Circuit breaker %s: %s -> %s", name, from, to)
			if t.metrics != nil {
				t.metrics.SetBreakerState(float64(to))
			}
		},
	})
	return t
}

// PublishOnce publishes the current snapshot
func (t *Telemetry) PublishOnce() error {
	payload, err := json.Marshal(t.sim.Status())
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	_, err = t.cb.Execute(func() (interface{}, error) {
		return nil, t.pub.Publish(t.topic, payload)
	})
	return err
}

// State returns the breaker state
func (t *Telemetry) State() gobreaker.State { return t.cb.State() }

// Run publishes every interval until ctx is done
func (t *Telemetry) Run(ctx context.Context) error {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	defer t.pub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := t.PublishOnce(); err != nil {
				log.Printf("Telemetry publish failed: %v", err)
			}
		}
	}
}
