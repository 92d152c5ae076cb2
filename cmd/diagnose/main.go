package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"ai-sales-assistant-be/internal/config"
	"ai-sales-assistant-be/internal/pkg/logger"
	"ai-sales-assistant-be/internal/repository/memory"
	"ai-sales-assistant-be/pkg/ai/router"
	"ai-sales-assistant-be/pkg/embedding"
	"ai-sales-assistant-be/pkg/llm/ollama"
	"ai-sales-assistant-be/pkg/rag/chunk"
	"ai-sales-assistant-be/pkg/rag/index"
	"ai-sales-assistant-be/pkg/rag/retriever"

	"github.com/fatih/color"
)

// Offline retrieval diagnostic: builds the index with the hashing
// embedder (no API key needed) and shows exactly which chunks a
// question retrieves and which routing tier fires.
func main() {
	question := flag.String("q", "", "question to diagnose")
	flag.Parse()
	if *question == "" {
		fmt.Println("usage: diagnose -q \"your question\"")
		os.Exit(1)
	}

	cfg := config.Load()
	quiet := log.New(os.Stderr, "", 0)

	color.Cyan("🔍 Retrieval Diagnostic\n")

	color.Yellow("\n[1] Loading sales data from %s", cfg.Data.SalesFilePath)
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, false)
	salesRepo := memory.NewSalesRepository(cfg.Data.SalesFilePath, sysLogger)
	reps := salesRepo.GetSalesReps()
	color.Green("Loaded %d sales reps", len(reps))

	color.Yellow("\n[2] Building index (offline hashing embedder, dim=%d)", cfg.Ai.EmbeddingDimension)
	embedder := embedding.NewHashingProvider(cfg.Ai.EmbeddingDimension)
	salesIndex := index.NewIndex(embedder, cfg.Ai.SearchThreshold, quiet)
	chunks := chunk.BuildChunks(reps)
	if err := salesIndex.Build(chunks); err != nil {
		color.Red("Index build failed: %v", err)
		os.Exit(1)
	}
	color.Green("Indexed %d chunks", salesIndex.Size())

	color.Yellow("\n[3] Routing tier")
	// Ollama so the model tier degrades gracefully when no server runs.
	llmProvider := ollama.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.LLMModel)
	questionRouter := router.NewRouter(salesRepo, llmProvider, quiet)
	decision := questionRouter.Classify(context.Background(), *question, "")
	color.Green("Route: %s (confidence %.2f): %s", decision.RouteType, decision.Confidence, decision.Reasoning)

	color.Yellow("\n[4] Retrieval")
	searchCache := index.NewLRUCache(cfg.Ai.SearchCacheSize)
	ret := retriever.NewRetriever(salesIndex, salesRepo, searchCache, retriever.Config{
		TopK:       cfg.Ai.SearchTopK,
		MaxChunks:  cfg.Ai.RetrievalMaxChunks,
		MaxChars:   cfg.Ai.RetrievalMaxChars,
		TruncateTo: cfg.Ai.RetrievalTruncateTo,
	}, quiet)

	text, err := ret.SearchSalesData(*question)
	if err != nil {
		color.Red("Retrieval failed: %v", err)
		os.Exit(1)
	}
	color.Green("Retrieved %d chars:", len(text))
	for _, line := range strings.Split(text, "\n") {
		fmt.Printf("  • %s\n", line)
	}
}
