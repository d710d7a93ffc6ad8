package kafka

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Driver string

const (
	DriverNone  Driver = "none"
	DriverKafka Driver = "kafka"
)

// ReloadConfig configures the exclusion update consumer.
//
// Exclusions live in process memory, so every process must see every update
// from the start of the topic. The consumer group is therefore private to
// the process (GroupPrefix plus InstanceID) and always starts at the oldest
// offset; a restarted process replays the topic onto its startup baseline.
type ReloadConfig struct {
	Enabled bool   `yaml:"enabled"`
	Driver  Driver `yaml:"driver"`

	Brokers     []string `yaml:"brokers"`
	Topic       string   `yaml:"topic"`
	GroupPrefix string   `yaml:"group_prefix"`

	// InstanceID is generated per process when empty.
	InstanceID string `yaml:"-"`

	SessionTimeout   time.Duration `yaml:"session_timeout"`
	Heartbeat        time.Duration `yaml:"heartbeat"`
	RebalanceTimeout time.Duration `yaml:"rebalance_timeout"`

	FlushAttempts int           `yaml:"flush_attempts"`
	FlushBackoff  time.Duration `yaml:"flush_backoff"`
}

func FromEnv() ReloadConfig {
	return ReloadConfig{
		Enabled:          envBool("RELOAD_ENABLED"),
		Driver:           Driver(envOr("RELOAD_DRIVER", string(DriverNone))),
		Brokers:          split(envOr("KAFKA_BROKERS", "localhost:9092")),
		Topic:            envOr("RELOAD_TOPIC", "crs-exclusions"),
		GroupPrefix:      envOr("KAFKA_GROUP_ID", "crs-transform"),
		SessionTimeout:   envDuration("RELOAD_SESSION_TIMEOUT", 30*time.Second),
		Heartbeat:        envDuration("RELOAD_HEARTBEAT", 3*time.Second),
		RebalanceTimeout: envDuration("RELOAD_REBALANCE_TIMEOUT", 30*time.Second),
		FlushAttempts:    3,
		FlushBackoff:     200 * time.Millisecond,
	}
}

// withDefaults fills zero values and assigns the instance ID.
func (c ReloadConfig) withDefaults() ReloadConfig {
	if c.GroupPrefix == "" {
		c.GroupPrefix = "crs-transform"
	}
	if c.InstanceID == "" {
		c.InstanceID = uuid.Must(uuid.NewV7()).String()
	}
	if c.SessionTimeout <= 0 {
		c.SessionTimeout = 30 * time.Second
	}
	if c.Heartbeat <= 0 {
		c.Heartbeat = 3 * time.Second
	}
	if c.RebalanceTimeout <= 0 {
		c.RebalanceTimeout = 30 * time.Second
	}
	if c.FlushAttempts <= 0 {
		c.FlushAttempts = 1
	}
	return c
}

// GroupID is the consumer group of this process.
func (c ReloadConfig) GroupID() string {
	return c.GroupPrefix + "." + c.InstanceID
}

func (c ReloadConfig) active() bool {
	return c.Enabled && c.Driver == DriverKafka
}

func envOr(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func envBool(k string) bool {
	b, err := strconv.ParseBool(strings.TrimSpace(os.Getenv(k)))
	return err == nil && b
}

func envDuration(k string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(strings.TrimSpace(os.Getenv(k))); err == nil && d > 0 {
		return d
	}
	return def
}

func split(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if x := strings.TrimSpace(p); x != "" {
			out = append(out, x)
		}
	}
	return out
}
