package bootstrap

import (
	"log"
	"os"
	"path/filepath"

	"ai-sales-assistant-be/internal/config"
	"ai-sales-assistant-be/internal/constant"
	"ai-sales-assistant-be/internal/controller"
	"ai-sales-assistant-be/internal/pkg/logger"
	"ai-sales-assistant-be/internal/repository/memory"
	"ai-sales-assistant-be/internal/service"
	"ai-sales-assistant-be/pkg/ai/pipeline"
	"ai-sales-assistant-be/pkg/ai/router"
	"ai-sales-assistant-be/pkg/embedding"
	"ai-sales-assistant-be/pkg/llm/factory"
	"ai-sales-assistant-be/pkg/rag/chunk"
	"ai-sales-assistant-be/pkg/rag/index"
	"ai-sales-assistant-be/pkg/rag/retriever"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	AssistantController controller.IAssistantController
	SalesRepController  controller.ISalesRepController

	// Background Services (Exposed for main.go to run)
	ConsumerService service.IConsumerService
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	llmLogger := initLLMLogger()

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// 3. Repositories
	salesRepo := memory.NewSalesRepository(cfg.Data.SalesFilePath, sysLogger)
	convRepo := memory.NewConversationRepository(cfg.Memory.MaxExchanges, cfg.Memory.SessionTimeout)

	// 4. AI Providers
	// Initialize Embedding Provider based on Config
	var embeddingProvider embedding.EmbeddingProvider
	switch cfg.Ai.EmbeddingProvider {
	case "ollama":
		embeddingProvider = embedding.NewOllamaProvider(
			cfg.Ai.OllamaBaseURL,
			cfg.Ai.EmbeddingModel,
		)
		log.Printf("[INFO] Using Embedding Provider: OLLAMA (%s)", cfg.Ai.EmbeddingModel)
	case "offline":
		embeddingProvider = embedding.NewHashingProvider(cfg.Ai.EmbeddingDimension)
		log.Printf("[INFO] Using Embedding Provider: OFFLINE HASHING (dim=%d)", cfg.Ai.EmbeddingDimension)
	default:
		provider, err := embedding.NewOpenAIProvider(
			cfg.Ai.OpenAIAPIKey,
			cfg.Ai.EmbeddingModel,
			cfg.Ai.EmbeddingDimension,
		)
		if err != nil {
			log.Fatalf("[FATAL] Failed to initialize Embedding Provider: %v", err)
		}
		embeddingProvider = provider
		log.Printf("[INFO] Using Embedding Provider: OPENAI (%s)", cfg.Ai.EmbeddingModel)
	}

	// Initialize LLM Provider based on Config
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OpenAIAPIKey,
		cfg.Ai.OllamaBaseURL,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	// 5. Retrieval State
	salesIndex := index.NewIndex(embeddingProvider, cfg.Ai.SearchThreshold, llmLogger)
	searchCache := index.NewLRUCache(cfg.Ai.SearchCacheSize)

	// Initial build is synchronous so the first question sees the
	// corpus. A build failure leaves an empty index: the assistant
	// still answers, with the no-data fallback on the sales path.
	chunks := chunk.BuildChunks(salesRepo.GetSalesReps())
	if err := salesIndex.Build(chunks); err != nil {
		sysLogger.Error(constant.ModuleData, "Initial index build failed", map[string]interface{}{
			"error":  err.Error(),
			"chunks": len(chunks),
		})
	}

	ret := retriever.NewRetriever(
		salesIndex,
		salesRepo,
		searchCache,
		retriever.Config{
			TopK:       cfg.Ai.SearchTopK,
			MaxChunks:  cfg.Ai.RetrievalMaxChunks,
			MaxChars:   cfg.Ai.RetrievalMaxChars,
			TruncateTo: cfg.Ai.RetrievalTruncateTo,
		},
		llmLogger,
	)

	// 6. Pipelines & Router
	questionRouter := router.NewRouter(salesRepo, llmProvider, llmLogger)
	ragPipeline := pipeline.NewRAGPipeline(llmProvider, ret, llmLogger)
	chatPipeline := pipeline.NewChatPipeline(llmProvider, constant.ChatSystemInstruction, llmLogger)

	// 7. Services
	assistantService := service.NewAssistantService(
		salesRepo,
		convRepo,
		questionRouter,
		ragPipeline,
		chatPipeline,
		pubSub,
		cfg.Data.ReloadTopic,
		sysLogger,
		llmLogger,
	)
	consumerService := service.NewConsumerService(
		pubSub,
		cfg.Data.ReloadTopic,
		salesRepo,
		salesIndex,
		searchCache,
		sysLogger,
	)

	// 8. Controllers
	return &Container{
		AssistantController: controller.NewAssistantController(assistantService),
		SalesRepController:  controller.NewSalesRepController(assistantService),

		ConsumerService: consumerService,
	}
}

func initLLMLogger() *log.Logger {
	logPath := filepath.Join(".", "logs", "llm_rag.log")
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		log.Printf("Failed to create logs directory: %v", err)
	}
	file, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(os.Stdout, "[LLM-RAG] ", log.LstdFlags)
	}
	return log.New(file, "", log.LstdFlags)
}
