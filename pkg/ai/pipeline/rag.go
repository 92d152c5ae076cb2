package pipeline

import (
	"context"
	"log"

	"ai-sales-assistant-be/pkg/llm"
	"ai-sales-assistant-be/pkg/rag/prompt"
	"ai-sales-assistant-be/pkg/rag/retriever"
)

// RAGPipeline answers sales-routed questions from retrieved corpus
// chunks. Generation failures propagate; the orchestrator decides what
// the caller sees.
type RAGPipeline struct {
	llmProvider llm.LLMProvider
	retriever   *retriever.Retriever
	logger      *log.Logger
}

func NewRAGPipeline(llmProvider llm.LLMProvider, ret *retriever.Retriever, logger *log.Logger) *RAGPipeline {
	return &RAGPipeline{
		llmProvider: llmProvider,
		retriever:   ret,
		logger:      logger,
	}
}

// Execute retrieves bounded sales data, composes the grounded prompt
// and generates the answer.
func (p *RAGPipeline) Execute(ctx context.Context, question, history string) (string, error) {
	salesData, err := p.retriever.SearchSalesData(question)
	if err != nil {
		return "", err
	}
	p.logger.Printf("[RAG] Retrieved %d chars of sales data", len(salesData))

	salesPrompt := prompt.NewSalesBuilder(question, salesData, history).Build()

	answer, err := p.llmProvider.Generate(ctx, salesPrompt,
		llm.WithTemperature(0.3),
		llm.WithMaxTokens(800),
	)
	if err != nil {
		p.logger.Printf("[RAG] Generation failed: %v", err)
		return "", err
	}

	p.logger.Printf("[RAG] Response generated successfully")
	return answer, nil
}
