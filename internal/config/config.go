// Package config loads the watcher configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	PLC       PLCConfig       `yaml:"plc"`
	Monitors  []MonitorConfig `yaml:"monitors"`
	Heartbeat HeartbeatConfig `yaml:"heartbeat"`
	Sinks     SinksConfig     `yaml:"sinks"`
	Log       LogConfig       `yaml:"log"`
}

// ---- CONTROLLER ----

type PLCConfig struct {
	Name      string `yaml:"name"`
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Network   string `yaml:"network"`    // udp | tcp
	Scheme    string `yaml:"scheme"`     // fixed | packed
	ByteOrder string `yaml:"byte_order"` // little | big (packed scheme only)
	TimeoutMs int    `yaml:"timeout_ms"` // per operation; 0 waits forever
}

// Address returns "host:port"
func (p PLCConfig) Address() string {
	return fmt.Sprintf("%s:%d", p.Host, p.Port)
}

func (p PLCConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMs) * time.Millisecond
}

// ---- MONITORS ----

type MonitorConfig struct {
	Name       string `yaml:"name"`
	Address    string `yaml:"address"`
	Count      int    `yaml:"count"`
	IntervalMs int    `yaml:"interval_ms"`
}

func (m MonitorConfig) Interval() time.Duration {
	return time.Duration(m.IntervalMs) * time.Millisecond
}

// ---- HEARTBEAT ----

// HeartbeatConfig is optional; an empty address disables it.
type HeartbeatConfig struct {
	Address    string `yaml:"address"`
	IntervalMs int    `yaml:"interval_ms"`
}

func (h HeartbeatConfig) Enabled() bool {
	return h.Address != ""
}

func (h HeartbeatConfig) Interval() time.Duration {
	return time.Duration(h.IntervalMs) * time.Millisecond
}

// ---- SINKS ----

type SinksConfig struct {
	MQTT  MQTTConfig  `yaml:"mqtt"`
	Redis RedisConfig `yaml:"redis"`
	Kafka KafkaConfig `yaml:"kafka"`
}

type MQTTConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port"`
	ClientID string `yaml:"client_id"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	Topic    string `yaml:"topic"` // root topic; events go to <topic>/<monitor name>
	QoS      byte   `yaml:"qos"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db"`
	Channel  string `yaml:"channel"` // PUBLISH channel; latest values are SET under <channel>:<monitor name>
}

type KafkaConfig struct {
	Enabled bool     `yaml:"enabled"`
	Brokers []string `yaml:"brokers"`
	Topic   string   `yaml:"topic"`
}

// ---- LOGGING ----

type LogConfig struct {
	Level       string `yaml:"level"` // debug | info | warn | error
	Development bool   `yaml:"development"`
}

// Load reads, normalizes and validates a configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes YAML configuration, then normalizes and validates it.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	Normalize(cfg)
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
