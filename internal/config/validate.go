package config

import (
	"fmt"

	"github.com/bronystylecrazy/gokeyence"
)

// Validate checks configuration correctness.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	p := cfg.PLC
	if p.Host == "" {
		return fmt.Errorf("plc: host is required")
	}
	if p.Port < 1 || p.Port > 65535 {
		return fmt.Errorf("plc: port %d out of range", p.Port)
	}
	switch p.Network {
	case "udp", "tcp":
	default:
		return fmt.Errorf("plc: network must be udp or tcp, got %q", p.Network)
	}
	switch p.Scheme {
	case "fixed", "packed":
	default:
		return fmt.Errorf("plc: scheme must be fixed or packed, got %q", p.Scheme)
	}
	if _, err := gokeyence.ParseByteOrder(p.ByteOrder); err != nil {
		return fmt.Errorf("plc: %w", err)
	}
	if p.TimeoutMs < 0 {
		return fmt.Errorf("plc: timeout_ms must not be negative")
	}

	if len(cfg.Monitors) == 0 && !cfg.Heartbeat.Enabled() {
		return fmt.Errorf("nothing to do: no monitors and no heartbeat configured")
	}

	names := make(map[string]struct{}, len(cfg.Monitors))
	for i, m := range cfg.Monitors {
		if _, err := gokeyence.ParseRegister(m.Address); err != nil {
			return fmt.Errorf("monitor %d: %w", i, err)
		}
		if m.Count < 1 || m.Count > gokeyence.MAX_READ_COUNT {
			return fmt.Errorf("monitor %q: count %d out of range", m.Name, m.Count)
		}
		if m.IntervalMs < 0 {
			return fmt.Errorf("monitor %q: interval_ms must not be negative", m.Name)
		}
		if _, dup := names[m.Name]; dup {
			return fmt.Errorf("monitor name %q used twice", m.Name)
		}
		names[m.Name] = struct{}{}
	}

	if cfg.Heartbeat.Enabled() {
		if _, err := gokeyence.ParseRegister(cfg.Heartbeat.Address); err != nil {
			return fmt.Errorf("heartbeat: %w", err)
		}
		// The beat is an integer write.
		if p.Scheme != "fixed" {
			return fmt.Errorf("heartbeat: requires the fixed scheme")
		}
	}

	s := cfg.Sinks
	if s.MQTT.Enabled && s.MQTT.Broker == "" {
		return fmt.Errorf("sinks.mqtt: broker is required")
	}
	if s.MQTT.QoS > 2 {
		return fmt.Errorf("sinks.mqtt: qos must be 0, 1 or 2")
	}
	if s.Redis.Enabled && s.Redis.Address == "" {
		return fmt.Errorf("sinks.redis: address is required")
	}
	if s.Kafka.Enabled && len(s.Kafka.Brokers) == 0 {
		return fmt.Errorf("sinks.kafka: at least one broker is required")
	}

	return nil
}
