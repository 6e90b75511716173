// Package config provides configuration types and loading for boardpulse.
package config

import "github.com/boardpulse/boardpulse/internal/sse"

// Config is the root configuration struct.
// Top-level groups: API, Backoff, Feeds, Kafka, Slack, Paths.
type Config struct {
	API     APIConfig         `json:"api"`
	Backoff sse.BackoffConfig `json:"backoff"`
	Feeds   FeedsConfig       `json:"feeds"`
	Kafka   KafkaConfig       `json:"kafka"`
	Slack   SlackConfig       `json:"slack"`
	Paths   PathsConfig       `json:"paths"`
}

// APIConfig points the client at one board on one server.
type APIConfig struct {
	BaseURL string `json:"baseUrl" envconfig:"BASE_URL"`
	Board   string `json:"board" envconfig:"BOARD"`
	Token   string `json:"token" envconfig:"TOKEN"`
}

// FeedsConfig bounds the history backfill.
type FeedsConfig struct {
	PageSize int `json:"pageSize" envconfig:"PAGE_SIZE"`
	MaxPages int `json:"maxPages" envconfig:"MAX_PAGES"`
}

// KafkaConfig enables the broker-mirrored event source.
type KafkaConfig struct {
	Enabled       bool     `json:"enabled" envconfig:"ENABLED"`
	Brokers       string   `json:"brokers" envconfig:"BROKERS"`
	ConsumerGroup string   `json:"consumerGroup" envconfig:"CONSUMER_GROUP"`
	Topics        []string `json:"topics" envconfig:"TOPICS"`
}

// SlackConfig enables forwarding selected feed items to a Slack channel.
type SlackConfig struct {
	Token   string   `json:"token" envconfig:"TOKEN"`
	Channel string   `json:"channel" envconfig:"CHANNEL"`
	Kinds   []string `json:"kinds" envconfig:"KINDS"`
}

// PathsConfig groups filesystem locations.
type PathsConfig struct {
	ArchivePath string `json:"archivePath" envconfig:"ARCHIVE_PATH"`
}

// DefaultConfig returns a config with sane defaults.
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080",
			Board:   "default",
		},
		Backoff: sse.DefaultBackoff(),
		Feeds: FeedsConfig{
			PageSize: 50,
			MaxPages: 4,
		},
		Kafka: KafkaConfig{
			ConsumerGroup: "boardpulse",
		},
		Slack: SlackConfig{
			Kinds: []string{"approval.created", "approval.approved", "approval.rejected", "board.chat"},
		},
	}
}
