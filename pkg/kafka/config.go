package kafka

import "time"

// Config holds Kafka configuration
type Config struct {
	Brokers       []string
	ConsumerGroup string
	ClientID      string

	// Producer settings
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int // 0: no ack, 1: leader ack, -1: all replicas ack

	// Consumer settings
	MinBytes int
	MaxBytes int
	MaxWait  time.Duration
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Brokers:       []string{"localhost:9092"},
		ConsumerGroup: "fleet-service-group",
		ClientID:      "fleet-service",

		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: -1,

		MinBytes: 1,
		MaxBytes: 10e6,
		MaxWait:  500 * time.Millisecond,
	}
}

// Topics contains the fleet Kafka topic names
var Topics = struct {
	RobotEvents   string
	TaskEvents    string
	StationEvents string
	FleetEvents   string
}{
	RobotEvents:   "fleet.robots.events",
	TaskEvents:    "fleet.tasks.events",
	StationEvents: "fleet.stations.events",
	FleetEvents:   "fleet.fleet.events",
}

// TopicConfig holds provisioning configuration for a Kafka topic
type TopicConfig struct {
	Name              string
	Partitions        int
	ReplicationFactor int
	RetentionMs       int64
}

// DefaultTopicConfigs returns default configurations for the fleet topics
func DefaultTopicConfigs() []TopicConfig {
	const week = 7 * 24 * 60 * 60 * 1000
	return []TopicConfig{
		{Name: Topics.RobotEvents, Partitions: 12, ReplicationFactor: 3, RetentionMs: week},
		{Name: Topics.TaskEvents, Partitions: 12, ReplicationFactor: 3, RetentionMs: week},
		{Name: Topics.StationEvents, Partitions: 6, ReplicationFactor: 3, RetentionMs: week},
		{Name: Topics.FleetEvents, Partitions: 6, ReplicationFactor: 3, RetentionMs: week},
	}
}
