package embedding

// EmbeddingResponseEmbedding holds the raw vector values.
type EmbeddingResponseEmbedding struct {
	Values []float32 `json:"values"`
}

// EmbeddingResponse wraps a single embedding result.
type EmbeddingResponse struct {
	Embedding EmbeddingResponseEmbedding `json:"embedding"`
}

// EmbeddingProvider defines the interface for generating text embeddings.
// Implementations return L2-normalized vectors so that inner product
// equals cosine similarity.
type EmbeddingProvider interface {
	Generate(text string, taskType string) (*EmbeddingResponse, error)
	GenerateBatch(texts []string, taskType string) ([]*EmbeddingResponse, error)
}
