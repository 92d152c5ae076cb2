package service

import (
	"context"
	"errors"
	"io"
	"log"
	"sync/atomic"
	"testing"
	"time"

	"ai-sales-assistant-be/internal/dto"
	"ai-sales-assistant-be/pkg/embedding"
	"ai-sales-assistant-be/pkg/events"
	"ai-sales-assistant-be/pkg/rag/chunk"
	"ai-sales-assistant-be/pkg/rag/index"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyEmbedder succeeds until told to fail, counting batch calls so
// tests can detect redelivery loops.
type flakyEmbedder struct {
	inner   *embedding.HashingProvider
	failing atomic.Bool
	batch   atomic.Int32
}

func (f *flakyEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	if f.failing.Load() {
		return nil, errors.New("embedder down")
	}
	return f.inner.Generate(text, taskType)
}

func (f *flakyEmbedder) GenerateBatch(texts []string, taskType string) ([]*embedding.EmbeddingResponse, error) {
	f.batch.Add(1)
	if f.failing.Load() {
		return nil, errors.New("embedder down")
	}
	return f.inner.GenerateBatch(texts, taskType)
}

func TestConsumerRebuildsIndexOnReload(t *testing.T) {
	h := newTestHarness(t, &scriptedLLM{})
	require.Equal(t, 2, h.index.Size(), "profile and deals chunks for one rep")

	consumer := NewConsumerService(h.pubSub, "CORPUS_RELOADED", h.salesRepo, h.index, h.cache, h.sysLogger())
	require.NoError(t, consumer.Consume(context.Background()))

	// Shrink the corpus on disk, then reload through the service.
	h.rewriteSalesFile(t, `{"salesReps": [{"id": 9, "name": "Carol Nguyen", "role": "Account Executive", "region": "Asia-Pacific", "skills": ["Enterprise Sales"]}]}`)

	res, err := h.service.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.RepCount)

	assert.Eventually(t, func() bool {
		return h.index.Size() == 1
	}, 2*time.Second, 10*time.Millisecond, "index should shrink to the new corpus")
}

func TestConsumerPurgesSearchCache(t *testing.T) {
	model := &scriptedLLM{responses: []string{"From the data: Alice Smith."}}
	h := newTestHarness(t, model)

	consumer := NewConsumerService(h.pubSub, "CORPUS_RELOADED", h.salesRepo, h.index, h.cache, h.sysLogger())
	require.NoError(t, consumer.Consume(context.Background()))

	_, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "Tell me about Alice", SessionId: "s1"})
	require.NoError(t, err)
	require.Equal(t, 1, h.cache.Len(), "retrieval result is memoized")

	_, err = h.service.Reload(context.Background())
	require.NoError(t, err)

	assert.Eventually(t, func() bool {
		return h.cache.Len() == 0
	}, 2*time.Second, 10*time.Millisecond, "reload must drop memoized retrievals")
}

func TestConsumerKeepsOldIndexWhenRebuildFails(t *testing.T) {
	h := newTestHarness(t, &scriptedLLM{})

	embedder := &flakyEmbedder{inner: embedding.NewHashingProvider(64)}
	idx := index.NewIndex(embedder, 0.25, log.New(io.Discard, "", 0))
	require.NoError(t, idx.Build(chunk.BuildChunks(h.salesRepo.GetSalesReps())))
	require.Equal(t, 2, idx.Size())

	consumer := NewConsumerService(h.pubSub, "CORPUS_RELOADED", h.salesRepo, idx, h.cache, h.sysLogger())
	require.NoError(t, consumer.Consume(context.Background()))

	embedder.failing.Store(true)
	require.NoError(t, events.PublishCorpusReloaded(h.pubSub, "CORPUS_RELOADED", 1))

	assert.Eventually(t, func() bool {
		return embedder.batch.Load() == 2
	}, 2*time.Second, 10*time.Millisecond, "one initial build plus one failed rebuild attempt")

	// A nacked message would be redelivered and retried in a loop.
	time.Sleep(200 * time.Millisecond)
	assert.Equal(t, int32(2), embedder.batch.Load(), "failed rebuild must be acked, not retried")
	assert.Equal(t, 2, idx.Size(), "previous index stays serviceable")
}
