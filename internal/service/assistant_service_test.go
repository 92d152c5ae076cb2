package service

import (
	"context"
	"errors"
	"io"
	"log"
	"os"
	"path/filepath"
	"testing"
	"time"

	"ai-sales-assistant-be/internal/dto"
	"ai-sales-assistant-be/internal/pkg/logger"
	"ai-sales-assistant-be/internal/pkg/serverutils"
	"ai-sales-assistant-be/internal/repository/memory"
	"ai-sales-assistant-be/pkg/ai/pipeline"
	"ai-sales-assistant-be/pkg/ai/router"
	"ai-sales-assistant-be/pkg/embedding"
	"ai-sales-assistant-be/pkg/llm"
	"ai-sales-assistant-be/pkg/rag/chunk"
	"ai-sales-assistant-be/pkg/rag/index"
	"ai-sales-assistant-be/pkg/rag/retriever"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedLLM pops one scripted response per call. A nil err with an
// exhausted script returns the last response again.
type scriptedLLM struct {
	responses []string
	err       error
	calls     int
}

func (s *scriptedLLM) next() string {
	if len(s.responses) == 0 {
		return ""
	}
	if s.calls > len(s.responses) {
		return s.responses[len(s.responses)-1]
	}
	return s.responses[s.calls-1]
}

func (s *scriptedLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	s.calls++
	return s.next(), s.err
}

func (s *scriptedLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	s.calls++
	return s.next(), s.err
}

const testSalesJSON = `{
  "salesReps": [
    {
      "id": 1,
      "name": "Alice Smith",
      "role": "Senior Sales Representative",
      "region": "North America",
      "skills": ["Negotiation"],
      "deals": [{"client": "Acme Corp", "value": 120000, "status": "Closed Won"}],
      "clients": []
    }
  ]
}`

type testHarness struct {
	service   IAssistantService
	model     *scriptedLLM
	convRepo  *memory.ConversationRepository
	salesRepo *memory.SalesRepository
	index     *index.Index
	cache     *index.LRUCache
	pubSub    *gochannel.GoChannel
	sysLog    logger.ILogger
	salesPath string
}

func (h *testHarness) sysLogger() logger.ILogger { return h.sysLog }

func (h *testHarness) rewriteSalesFile(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(h.salesPath, []byte(content), 0644))
}

func newTestHarness(t *testing.T, model *scriptedLLM) *testHarness {
	t.Helper()

	dir := t.TempDir()
	salesPath := filepath.Join(dir, "salesData.json")
	require.NoError(t, os.WriteFile(salesPath, []byte(testSalesJSON), 0644))

	sysLogger := logger.NewZapLogger(filepath.Join(dir, "test.log"), false)
	llmLogger := log.New(io.Discard, "", 0)

	salesRepo := memory.NewSalesRepository(salesPath, sysLogger)
	convRepo := memory.NewConversationRepository(5, time.Minute)

	embedder := embedding.NewHashingProvider(64)
	salesIndex := index.NewIndex(embedder, 0.25, llmLogger)
	require.NoError(t, salesIndex.Build(chunk.BuildChunks(salesRepo.GetSalesReps())))

	searchCache := index.NewLRUCache(10)
	ret := retriever.NewRetriever(salesIndex, salesRepo, searchCache, retriever.DefaultConfig(), llmLogger)

	questionRouter := router.NewRouter(salesRepo, model, llmLogger)
	ragPipeline := pipeline.NewRAGPipeline(model, ret, llmLogger)
	chatPipeline := pipeline.NewChatPipeline(model, "You are a helpful assistant.", llmLogger)

	pubSub := gochannel.NewGoChannel(gochannel.Config{}, watermill.NopLogger{})

	svc := NewAssistantService(
		salesRepo, convRepo, questionRouter, ragPipeline, chatPipeline,
		pubSub, "CORPUS_RELOADED", sysLogger, llmLogger,
	)

	return &testHarness{
		service:   svc,
		model:     model,
		convRepo:  convRepo,
		salesRepo: salesRepo,
		index:     salesIndex,
		cache:     searchCache,
		pubSub:    pubSub,
		sysLog:    sysLogger,
		salesPath: salesPath,
	}
}

func TestAskRejectsEmptyQuestion(t *testing.T) {
	h := newTestHarness(t, &scriptedLLM{})

	_, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "   ", SessionId: "s1"})

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 400, appErr.Code)
	assert.Equal(t, "Question must not be empty", appErr.Message)
	assert.Zero(t, h.model.calls, "validation must run before any model call")
	assert.False(t, h.convRepo.HasSession("s1"))
}

func TestAskSalesRouteAnswersFromData(t *testing.T) {
	model := &scriptedLLM{responses: []string{"Alice Smith closed Acme Corp for $120,000."}}
	h := newTestHarness(t, model)

	res, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "What deals did Alice close?", SessionId: "s1"})
	require.NoError(t, err)

	assert.Equal(t, "sales", res.RouteType)
	assert.Equal(t, "Alice Smith closed Acme Corp for $120,000.", res.Answer)
	assert.Equal(t, "s1", res.SessionId)
	assert.Equal(t, 1, model.calls, "keyword-routed question needs exactly one generation call")
	assert.GreaterOrEqual(t, res.ProcessingTime, 0.0)
}

func TestAskGeneralRouteSkipsRetrieval(t *testing.T) {
	model := &scriptedLLM{responses: []string{"general", "Paris is the capital of France."}}
	h := newTestHarness(t, model)

	res, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "What is the capital of France?", SessionId: "s1"})
	require.NoError(t, err)

	assert.Equal(t, "general", res.RouteType)
	assert.Equal(t, "Paris is the capital of France.", res.Answer)
	assert.Equal(t, 2, model.calls, "one classification call plus one chat call")
	assert.Equal(t, 0, h.cache.Len(), "general questions must not touch retrieval")
}

func TestAskGeneratesSessionIdWhenMissing(t *testing.T) {
	model := &scriptedLLM{responses: []string{"general", "Hello!"}}
	h := newTestHarness(t, model)

	res, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "Say hello"})
	require.NoError(t, err)

	assert.NotEmpty(t, res.SessionId)
	assert.True(t, h.convRepo.HasSession(res.SessionId))
}

func TestAskRecordsExchangeForFollowUps(t *testing.T) {
	model := &scriptedLLM{responses: []string{"general", "Nice to meet you, Bob!", "general", "Your name is Bob."}}
	h := newTestHarness(t, model)

	_, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "My name is Bob", SessionId: "s1"})
	require.NoError(t, err)

	res, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "What is my name?", SessionId: "s1"})
	require.NoError(t, err)

	assert.Equal(t, "Your name is Bob.", res.Answer)
	ctx := h.convRepo.GetContext("s1")
	assert.Contains(t, ctx, "User: My name is Bob")
	assert.Contains(t, ctx, "Assistant: Your name is Bob.")
}

func TestAskFailedGenerationRecordsNothing(t *testing.T) {
	model := &scriptedLLM{err: errors.New("provider down")}
	h := newTestHarness(t, model)

	// Keyword routing picks the sales path without a model call, so
	// the failure comes from generation itself.
	_, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "Tell me about Alice", SessionId: "s1"})

	var appErr *serverutils.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, 500, appErr.Code)
	assert.Equal(t, "Failed to process question. Please try again.", appErr.Message)
	assert.False(t, h.convRepo.HasSession("s1"), "failed exchanges must not enter memory")
}

func TestClearSessionForgetsHistory(t *testing.T) {
	model := &scriptedLLM{responses: []string{"general", "Hi Bob!"}}
	h := newTestHarness(t, model)

	_, err := h.service.Ask(context.Background(), &dto.AskRequest{Question: "My name is Bob", SessionId: "s1"})
	require.NoError(t, err)
	require.True(t, h.convRepo.HasSession("s1"))

	require.NoError(t, h.service.ClearSession(context.Background(), "s1"))

	assert.False(t, h.convRepo.HasSession("s1"))

	var appErr *serverutils.AppError
	require.ErrorAs(t, h.service.ClearSession(context.Background(), "s1"), &appErr)
	assert.Equal(t, 404, appErr.Code)
}

func TestGetSalesData(t *testing.T) {
	h := newTestHarness(t, &scriptedLLM{})

	data := h.service.GetSalesData(context.Background())

	require.Len(t, data.SalesReps, 1)
	assert.Equal(t, "Alice Smith", data.SalesReps[0].Name)
}

func TestReloadPublishesEvent(t *testing.T) {
	h := newTestHarness(t, &scriptedLLM{})

	messages, err := h.pubSub.Subscribe(context.Background(), "CORPUS_RELOADED")
	require.NoError(t, err)

	res, err := h.service.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, res.RepCount)

	select {
	case msg := <-messages:
		assert.Contains(t, string(msg.Payload), `"rep_count":1`)
		msg.Ack()
	case <-time.After(time.Second):
		t.Fatal("expected a corpus reload event")
	}
}
