package embedding

import (
	"hash/fnv"
	"strings"
)

// HashingProvider is a deterministic, dependency-free embedder: a
// hashed bag-of-words projected into a fixed dimension. It has no
// semantic power beyond token overlap, which is enough for offline
// diagnostics and tests where the real providers are unreachable.
type HashingProvider struct {
	Dimension int
}

var _ EmbeddingProvider = &HashingProvider{}

func NewHashingProvider(dimension int) *HashingProvider {
	if dimension <= 0 {
		dimension = 384
	}
	return &HashingProvider{Dimension: dimension}
}

func (p *HashingProvider) Generate(text string, taskType string) (*EmbeddingResponse, error) {
	values := make([]float32, p.Dimension)
	for _, token := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		values[int(h.Sum32())%p.Dimension]++
	}

	return &EmbeddingResponse{
		Embedding: EmbeddingResponseEmbedding{
			Values: NormalizeVector(values),
		},
	}, nil
}

func (p *HashingProvider) GenerateBatch(texts []string, taskType string) ([]*EmbeddingResponse, error) {
	responses := make([]*EmbeddingResponse, len(texts))
	for i, text := range texts {
		resp, err := p.Generate(text, taskType)
		if err != nil {
			return nil, err
		}
		responses[i] = resp
	}
	return responses, nil
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		isLetter := r >= 'a' && r <= 'z'
		isDigit := r >= '0' && r <= '9'
		return !isLetter && !isDigit
	})
}
