package eventbus

import (
	"os"
	"strings"

	"booking-wizard/internal/common/configs"
)

// NewEventBus creates an EventBus instance. EVENT_BUS_MODE=kafka selects the
// kafka-backed bus; anything else gets the in-memory bus. Kafka brokers come
// from KAFKA_BROKERS, comma-separated: "broker1:9092,broker2:9092".
func NewEventBus() (EventBus, error) {
	if configs.GetEventBusMode() != "kafka" {
		return NewInMemoryEventBus(), nil
	}

	brokersEnv := os.Getenv(configs.KafkaBrokersEnvKey)
	var brokers []string

	if brokersEnv != "" {
		brokers = strings.Split(brokersEnv, ",")
		for i := range brokers {
			brokers[i] = strings.TrimSpace(brokers[i])
		}
	}

	return newKafkaEventBus(brokers)
}
