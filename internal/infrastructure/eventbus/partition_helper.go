package eventbus

import (
	"fmt"
	"hash/fnv"

	"booking-wizard/internal/domain/events"
)

// GetPartition routes every event of a session to the same partition so a
// session's lifecycle is consumed in order.
func GetPartition(event events.Event, numPartitions int) (int, error) {
	if numPartitions <= 0 {
		return 0, fmt.Errorf("invalid number of partitions: %d", numPartitions)
	}

	sessionID := event.SessionID()
	if sessionID == "" {
		return 0, fmt.Errorf("cannot determine partition: event %s has no session id", event.Type())
	}

	return hashKey(sessionID) % numPartitions, nil
}

func hashKey(key string) int {
	h := fnv.New32a()
	h.Write([]byte(key))
	return int(h.Sum32() % uint32(1<<31))
}
