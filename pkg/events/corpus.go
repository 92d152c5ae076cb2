package events

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// CorpusReloadedPayload announces that the sales corpus snapshot was
// replaced and derived state (chunks, index, caches) must be rebuilt.
type CorpusReloadedPayload struct {
	RepCount   int       `json:"rep_count"`
	ReloadedAt time.Time `json:"reloaded_at"`
}

// PublishCorpusReloaded emits the rebuild event on the given topic.
func PublishCorpusReloaded(publisher message.Publisher, topic string, repCount int) error {
	payload, err := json.Marshal(CorpusReloadedPayload{
		RepCount:   repCount,
		ReloadedAt: time.Now(),
	})
	if err != nil {
		return err
	}

	return publisher.Publish(topic, message.NewMessage(watermill.NewUUID(), payload))
}
