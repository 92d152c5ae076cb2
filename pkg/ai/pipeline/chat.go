package pipeline

import (
	"context"
	"log"

	"ai-sales-assistant-be/pkg/llm"
	"ai-sales-assistant-be/pkg/rag/prompt"
)

// ChatPipeline answers general-routed questions from the system
// instruction and conversation history alone. No corpus access.
type ChatPipeline struct {
	llmProvider       llm.LLMProvider
	systemInstruction string
	logger            *log.Logger
}

func NewChatPipeline(llmProvider llm.LLMProvider, systemInstruction string, logger *log.Logger) *ChatPipeline {
	return &ChatPipeline{
		llmProvider:       llmProvider,
		systemInstruction: systemInstruction,
		logger:            logger,
	}
}

// Execute composes the conversational prompt and generates the answer.
func (p *ChatPipeline) Execute(ctx context.Context, question, history string) (string, error) {
	chatPrompt := prompt.NewChatBuilder(p.systemInstruction, question, history).Build()

	answer, err := p.llmProvider.Generate(ctx, chatPrompt,
		llm.WithTemperature(0.7),
		llm.WithMaxTokens(800),
	)
	if err != nil {
		p.logger.Printf("[CHAT] Generation failed: %v", err)
		return "", err
	}

	p.logger.Printf("[CHAT] Response generated successfully")
	return answer, nil
}
