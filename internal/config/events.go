package config

import (
	"log/slog"
	"strings"

	"github.com/formforge/formbuilder-service/internal/events"
)

// EventConfig holds configuration for event publishing
type EventConfig struct {
	Enabled      bool   `env:"EVENTS_ENABLED" envDefault:"false"`
	Publisher    string `env:"EVENTS_PUBLISHER" envDefault:"kafka"` // kafka or noop
	KafkaBrokers string `env:"KAFKA_BROKERS" envDefault:"localhost:9092"`
	FormsTopic   string `env:"FORMS_TOPIC" envDefault:"form-events"`
}

// GetKafkaBrokers returns Kafka brokers as a slice
func (c *EventConfig) GetKafkaBrokers() []string {
	return strings.Split(c.KafkaBrokers, ",")
}

// CreateEventPublisher creates an event publisher based on configuration
func (c *EventConfig) CreateEventPublisher(logger *slog.Logger) (events.EventPublisher, error) {
	if !c.Enabled {
		logger.Info("Event publishing disabled, using noop publisher")
		return events.NoopPublisher{}, nil
	}

	switch c.Publisher {
	case "kafka":
		logger.Info("Creating Kafka event publisher",
			"brokers", c.KafkaBrokers,
			"topic", c.FormsTopic)

		return events.NewKafkaEventPublisher(events.PublisherConfig{
			KafkaBrokers: c.GetKafkaBrokers(),
			TopicName:    c.FormsTopic,
			Logger:       logger,
		})
	case "noop":
		logger.Info("Using noop event publisher")
		return events.NoopPublisher{}, nil
	default:
		logger.Warn("Unknown event publisher type, falling back to noop", "publisher", c.Publisher)
		return events.NoopPublisher{}, nil
	}
}
