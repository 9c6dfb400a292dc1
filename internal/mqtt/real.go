package mqtt

import (
	"fmt"
	"log"
	"sync"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
)

// backlogSize bounds the messages held while the broker is unreachable.
const backlogSize = 256

// Options configures a RealPublisher.
type Options struct {
	Broker      string
	ClientID    string
	ReportTopic string
	SystemTopic string
}

// RealPublisher publishes to an actual MQTT broker. Messages emitted while
// disconnected are queued and replayed in order once the client reconnects.
type RealPublisher struct {
	client      paho.Client
	reportTopic string
	systemTopic string

	mu      sync.Mutex
	pending *backlog
}

// NewRealPublisher creates a publisher for the given broker. An unreachable
// broker is not an error: the client keeps retrying in the background and
// queues messages until it connects.
func NewRealPublisher(o Options) (*RealPublisher, error) {
	if o.ClientID == "" {
		o.ClientID = "thermostat"
	}
	if o.ReportTopic == "" {
		o.ReportTopic = TopicReport
	}
	if o.SystemTopic == "" {
		o.SystemTopic = TopicSystem
	}

	p := &RealPublisher{
		reportTopic: o.ReportTopic,
		systemTopic: o.SystemTopic,
		pending:     newBacklog(backlogSize),
	}

	will, err := FormatSystemPayload(SystemEvent{Timestamp: time.Now(), Event: "OFFLINE", Reason: "LWT"})
	if err != nil {
		return nil, fmt.Errorf("format will payload: %w", err)
	}

	opts := paho.NewClientOptions().
		AddBroker(o.Broker).
		SetClientID(o.ClientID).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5*time.Second).
		SetWill(o.SystemTopic, string(will), 1, true).
		SetOnConnectHandler(p.onConnect).
		SetConnectionLostHandler(func(_ paho.Client, err error) {
			log.Printf("mqtt: connection lost: %v", err)
		})

	p.client = paho.NewClient(opts)
	token := p.client.Connect()
	if !token.WaitTimeout(10 * time.Second) {
		log.Printf("mqtt: broker %s not reachable yet, retrying in background", o.Broker)
		return p, nil
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("connect to broker: %w", err)
	}

	return p, nil
}

func (p *RealPublisher) onConnect(c paho.Client) {
	p.mu.Lock()
	queued := p.pending.drain()
	p.mu.Unlock()

	log.Printf("mqtt: connected, replaying %d queued messages", len(queued))
	for _, m := range queued {
		token := c.Publish(m.topic, m.qos, m.retained, m.payload)
		if !token.WaitTimeout(5 * time.Second) {
			log.Printf("mqtt: replay timeout on %s", m.topic)
			continue
		}
		if err := token.Error(); err != nil {
			log.Printf("mqtt: replay: %v", err)
		}
	}
}

// IsConnected reports whether the client currently has a live connection.
func (p *RealPublisher) IsConnected() bool {
	return p.client.IsConnectionOpen()
}

// Emit publishes a report line (QoS 0, not retained) without waiting.
func (p *RealPublisher) Emit(line string) {
	p.send(message{topic: p.reportTopic, payload: []byte(line)})
}

// send publishes m, or queues it while disconnected. The connection check
// and the push happen under mu so onConnect cannot drain in between.
func (p *RealPublisher) send(m message) {
	p.mu.Lock()
	if !p.client.IsConnectionOpen() {
		p.pending.push(m)
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()
	p.client.Publish(m.topic, m.qos, m.retained, m.payload)
}

// PublishSystem sends a system lifecycle event to the MQTT broker.
func (p *RealPublisher) PublishSystem(event SystemEvent) error {
	payload, err := FormatSystemPayload(event)
	if err != nil {
		return fmt.Errorf("format system payload: %w", err)
	}

	m := message{topic: p.systemTopic, payload: payload, qos: 1, retained: event.Retained}
	if !p.client.IsConnectionOpen() {
		p.send(m)
		return nil
	}

	// QoS 1 (at-least-once) - lifecycle events should not be lost
	token := p.client.Publish(m.topic, m.qos, m.retained, m.payload)
	if !token.WaitTimeout(5 * time.Second) {
		return fmt.Errorf("publish system timeout")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish system: %w", err)
	}

	return nil
}

// Close disconnects from the broker.
func (p *RealPublisher) Close() error {
	p.client.Disconnect(1000) // 1 second timeout
	return nil
}
