package sink

import (
	"context"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/bronystylecrazy/gokeyence/internal/config"
)

const mqttConnectTimeout = 5 * time.Second

// MQTTSink publishes events to <topic>/<plc>/<monitor name>.
type MQTTSink struct {
	client pahomqtt.Client
	topic  string
	qos    byte
}

// NewMQTTSink connects to the broker.
func NewMQTTSink(cfg config.MQTTConfig) (*MQTTSink, error) {
	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", cfg.Broker, cfg.Port))
	opts.SetClientID(cfg.ClientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetKeepAlive(30 * time.Second)

	client := pahomqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(mqttConnectTimeout) {
		return nil, fmt.Errorf("mqtt: connection to %s:%d timed out", cfg.Broker, cfg.Port)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt: %w", err)
	}

	return &MQTTSink{client: client, topic: cfg.Topic, qos: cfg.QoS}, nil
}

func (s *MQTTSink) Name() string { return "mqtt" }

// Topic returns the topic an event is published to
func (s *MQTTSink) Topic(evt Event) string {
	return TopicFor(s.topic, evt)
}

func (s *MQTTSink) Publish(ctx context.Context, evt Event) error {
	payload, err := evt.Encode()
	if err != nil {
		return err
	}
	// Retained so late subscribers get the latest state.
	token := s.client.Publish(s.Topic(evt), s.qos, true, payload)
	select {
	case <-token.Done():
		return token.Error()
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *MQTTSink) Close() error {
	s.client.Disconnect(250)
	return nil
}

// TopicFor joins root, plc and monitor name into an MQTT topic.
func TopicFor(root string, evt Event) string {
	return fmt.Sprintf("%s/%s/%s", root, evt.PLC, evt.Name)
}
