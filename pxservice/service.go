// Package pxservice runs the vectorizer as a long-lived MQTT worker: it
// subscribes to an input topic carrying PNG image payloads, vectorizes
// each one, and publishes the resulting GeoJSON to an output topic. The
// connect/retry and publish plumbing mirrors the teacher's mqtt.go and
// publisher.go.
package pxservice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/kwv/pxvectorize/imageio"
	"github.com/kwv/pxvectorize/pxconfig"
	"github.com/kwv/pxvectorize/pxgeojson"
	"github.com/kwv/pxvectorize/vectorize"
)

// Service owns an MQTT connection that turns incoming PNG payloads into
// published GeoJSON feature collections.
type Service struct {
	client mqtt.Client
	cfg    pxconfig.Config

	mu          sync.RWMutex
	isConnected bool
}

// New connects to the broker named in cfg.MQTT.Broker and subscribes to
// cfg.MQTT.InputTopic. Connection happens synchronously with bounded
// retry, so a misconfigured broker fails fast instead of leaving the
// caller unsure whether the service is live.
func New(cfg pxconfig.Config) (*Service, error) {
	if cfg.MQTT.Broker == "" {
		return nil, fmt.Errorf("mqtt.broker must be set to run as a service")
	}

	s := &Service{cfg: cfg}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.MQTT.Broker)

	clientID := cfg.MQTT.ClientID
	if clientID == "" {
		clientID = "pxvectorize"
	}
	opts.SetClientID(clientID)

	if cfg.MQTT.Username != "" {
		opts.SetUsername(cfg.MQTT.Username)
		opts.SetPassword(cfg.MQTT.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetMaxReconnectInterval(60 * time.Second)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOrderMatters(false)

	opts.SetOnConnectHandler(func(c mqtt.Client) {
		s.setConnected(true)
		topic := cfg.MQTT.InputTopic
		if topic == "" {
			return
		}
		log.Printf("pxservice: subscribing to %s", topic)
		token := c.Subscribe(topic, 0, s.onImageMessage)
		if token.WaitTimeout(5*time.Second) && token.Error() != nil {
			log.Printf("pxservice: error subscribing to %s: %v", topic, token.Error())
		}
	})
	opts.SetConnectionLostHandler(func(c mqtt.Client, err error) {
		log.Printf("pxservice: connection interrupted (%v), auto-reconnect will retry", err)
		s.setConnected(false)
	})

	s.client = mqtt.NewClient(opts)

	if err := s.connectWithRetry(3, 2*time.Second); err != nil {
		return nil, err
	}

	return s, nil
}

// connectWithRetry attempts to connect up to maxAttempts times, doubling
// the delay between attempts, and returns the last error if none succeed.
func (s *Service) connectWithRetry(maxAttempts int, delay time.Duration) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		token := s.client.Connect()
		if token.WaitTimeout(10*time.Second) && token.Error() == nil {
			return nil
		}
		lastErr = token.Error()
		if lastErr == nil {
			lastErr = fmt.Errorf("connection attempt %d timed out", attempt)
		}
		log.Printf("pxservice: connect attempt %d/%d failed: %v", attempt, maxAttempts, lastErr)
		if attempt < maxAttempts {
			time.Sleep(delay)
			delay *= 2
		}
	}
	return fmt.Errorf("connecting to %s: %w", s.cfg.MQTT.Broker, lastErr)
}

func (s *Service) setConnected(v bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.isConnected = v
}

// IsConnected reports whether the broker connection is currently up.
func (s *Service) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

func (s *Service) onImageMessage(_ mqtt.Client, msg mqtt.Message) {
	log.Printf("pxservice: received %d bytes on %s", len(msg.Payload()), msg.Topic())
	out, err := s.HandleImage(msg.Payload())
	if err != nil {
		log.Printf("pxservice: handling message from %s: %v", msg.Topic(), err)
		return
	}
	if err := s.publish(out); err != nil {
		log.Printf("pxservice: publishing result for %s: %v", msg.Topic(), err)
	}
}

// HandleImage decodes a PNG payload, vectorizes it, and returns the
// resulting GeoJSON FeatureCollection encoded as JSON. Exported so
// callers (and tests) can exercise the decode-vectorize-encode pipeline
// without a live broker.
func (s *Service) HandleImage(payload []byte) ([]byte, error) {
	width, height, pixels, err := imageio.DecodePNG(bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("decoding image payload: %w", err)
	}

	shapes, err := vectorize.Vectorize(s.cfg.ToVectorizeConfig(), width, height, pixels)
	if err != nil {
		return nil, fmt.Errorf("vectorizing image: %w", err)
	}

	fc := pxgeojson.ShapesToFeatureCollection(shapes)
	out, err := json.Marshal(fc)
	if err != nil {
		return nil, fmt.Errorf("marshaling feature collection: %w", err)
	}
	return out, nil
}

func (s *Service) publish(payload []byte) error {
	topic := s.cfg.MQTT.OutputTopic
	if topic == "" {
		return fmt.Errorf("mqtt.output_topic not configured")
	}
	if !s.client.IsConnected() {
		return fmt.Errorf("mqtt client not connected")
	}
	token := s.client.Publish(topic, 0, false, payload)
	if token.WaitTimeout(2*time.Second) && token.Error() != nil {
		return fmt.Errorf("publishing to %s: %w", topic, token.Error())
	}
	return nil
}

// Close disconnects from the broker, quiescing briefly so in-flight
// publishes have a chance to land.
func (s *Service) Close() {
	if s.client != nil && s.client.IsConnected() {
		s.client.Disconnect(250)
	}
	s.setConnected(false)
}
