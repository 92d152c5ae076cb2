package embedding

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIProvider generates embeddings via the OpenAI API, truncated to
// a fixed dimension so the index shape is stable across models.
type OpenAIProvider struct {
	client    *openai.Client
	Model     string
	Dimension int
}

var _ EmbeddingProvider = &OpenAIProvider{}

func NewOpenAIProvider(apiKey, model string, dimension int) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai api key is required")
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	if dimension <= 0 {
		dimension = 384
	}
	return &OpenAIProvider{
		client:    openai.NewClient(apiKey),
		Model:     model,
		Dimension: dimension,
	}, nil
}

func (p *OpenAIProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	responses, err := p.GenerateBatch([]string{text}, taskType)
	if err != nil {
		return nil, err
	}
	return responses[0], nil
}

func (p *OpenAIProvider) GenerateBatch(texts []string, taskType string) ([]*EmbeddingResponse, error) {
	// TaskType is a Gemini concept; OpenAI embeddings are symmetric.
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := p.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input:      texts,
		Model:      openai.EmbeddingModel(p.Model),
		Dimensions: p.Dimension,
	})
	if err != nil {
		return nil, fmt.Errorf("openai embeddings: %w", err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("openai embeddings: got %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	responses := make([]*EmbeddingResponse, len(resp.Data))
	for i, d := range resp.Data {
		responses[i] = &EmbeddingResponse{
			Embedding: EmbeddingResponseEmbedding{
				Values: NormalizeVector(d.Embedding),
			},
		}
	}
	return responses, nil
}
