package config

import "strings"

const (
	DefaultPort        = 8501
	DefaultIntervalMs  = 1000
	DefaultMQTTPort    = 1883
	DefaultTopic       = "gokeyence"
	DefaultRedisPrefix = "gokeyence"
)

// Normalize fills defaults. It only touches fields left empty.
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	p := &cfg.PLC
	if p.Name == "" {
		p.Name = p.Host
	}
	if p.Port == 0 {
		p.Port = DefaultPort
	}
	p.Network = strings.ToLower(p.Network)
	if p.Network == "" {
		p.Network = "udp"
	}
	p.Scheme = strings.ToLower(p.Scheme)
	if p.Scheme == "" {
		p.Scheme = "fixed"
	}
	p.ByteOrder = strings.ToLower(p.ByteOrder)
	if p.ByteOrder == "" {
		p.ByteOrder = "little"
	}

	for i := range cfg.Monitors {
		m := &cfg.Monitors[i]
		if m.Name == "" {
			m.Name = m.Address
		}
		if m.Count == 0 {
			m.Count = 1
		}
		if m.IntervalMs == 0 {
			m.IntervalMs = DefaultIntervalMs
		}
	}

	if cfg.Heartbeat.Enabled() && cfg.Heartbeat.IntervalMs == 0 {
		cfg.Heartbeat.IntervalMs = DefaultIntervalMs
	}

	mq := &cfg.Sinks.MQTT
	if mq.Port == 0 {
		mq.Port = DefaultMQTTPort
	}
	if mq.Topic == "" {
		mq.Topic = DefaultTopic
	}
	if mq.ClientID == "" {
		mq.ClientID = "gokeyence-watch"
	}

	if cfg.Sinks.Redis.Channel == "" {
		cfg.Sinks.Redis.Channel = DefaultRedisPrefix
	}
	if cfg.Sinks.Kafka.Topic == "" {
		cfg.Sinks.Kafka.Topic = DefaultTopic
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}
