package service

import (
	"context"
	"encoding/json"

	"ai-sales-assistant-be/internal/constant"
	"ai-sales-assistant-be/internal/pkg/logger"
	"ai-sales-assistant-be/internal/repository/memory"
	"ai-sales-assistant-be/pkg/events"
	"ai-sales-assistant-be/pkg/rag/chunk"
	"ai-sales-assistant-be/pkg/rag/index"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService rebuilds the retrieval state when the corpus
// changes. The index swap is atomic, so readers never observe a
// half-rebuilt index; the search cache is purged in the same handler
// so stale retrieval text cannot outlive the corpus that produced it.
type consumerService struct {
	pubSub      *gochannel.GoChannel
	topicName   string
	salesRepo   *memory.SalesRepository
	salesIndex  *index.Index
	searchCache *index.LRUCache
	sysLogger   logger.ILogger
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	salesRepo *memory.SalesRepository,
	salesIndex *index.Index,
	searchCache *index.LRUCache,
	sysLogger logger.ILogger,
) IConsumerService {
	return &consumerService{
		pubSub:      pubSub,
		topicName:   topicName,
		salesRepo:   salesRepo,
		salesIndex:  salesIndex,
		searchCache: searchCache,
		sysLogger:   sysLogger,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(msg *message.Message) {
	var payload events.CorpusReloadedPayload
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		cs.sysLogger.Error(constant.ModuleConsumer, "Failed to unmarshal reload event", map[string]interface{}{
			"error": err.Error(),
		})
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	reps := cs.salesRepo.GetSalesReps()
	chunks := chunk.BuildChunks(reps)

	if err := cs.salesIndex.Build(chunks); err != nil {
		cs.sysLogger.Error(constant.ModuleConsumer, "Index rebuild failed, keeping previous index", map[string]interface{}{
			"error":  err.Error(),
			"chunks": len(chunks),
		})
		msg.Ack() // Nack would hot-loop on gochannel; the next reload retries
		return
	}

	cs.searchCache.Purge()

	cs.sysLogger.Info(constant.ModuleConsumer, "Index rebuilt after corpus reload", map[string]interface{}{
		"reps":   payload.RepCount,
		"chunks": len(chunks),
	})
	msg.Ack()
}
