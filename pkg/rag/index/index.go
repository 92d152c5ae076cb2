package index

import (
	"fmt"
	"log"
	"regexp"
	"sort"
	"sync"

	"ai-sales-assistant-be/pkg/embedding"
	"ai-sales-assistant-be/pkg/rag/chunk"
)

// ScoredChunk is a retrieval hit with its cosine similarity.
type ScoredChunk struct {
	Chunk chunk.Chunk
	Score float32
}

// Index is an in-memory cosine-similarity index over chunk embeddings.
// Chunks and vectors are parallel slices and are only ever swapped
// together under the write lock, so readers always observe matching
// lengths.
type Index struct {
	mu                sync.RWMutex
	embeddingProvider embedding.EmbeddingProvider
	threshold         float64
	logger            *log.Logger

	chunks  []chunk.Chunk
	vectors [][]float32
}

// NewIndex creates an empty index. Results scoring below threshold are
// discarded even when top-k slots remain unfilled; weak matches are
// worse than no matches here.
func NewIndex(embeddingProvider embedding.EmbeddingProvider, threshold float64, logger *log.Logger) *Index {
	return &Index{
		embeddingProvider: embeddingProvider,
		threshold:         threshold,
		logger:            logger,
	}
}

// Build embeds all chunk texts and replaces the index contents in one
// atomic swap. An empty chunk set yields an empty, queryable index.
func (idx *Index) Build(chunks []chunk.Chunk) error {
	if len(chunks) == 0 {
		idx.mu.Lock()
		idx.chunks = nil
		idx.vectors = nil
		idx.mu.Unlock()
		idx.logger.Printf("[INDEX] Built empty index")
		return nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}

	responses, err := idx.embeddingProvider.GenerateBatch(texts, "RETRIEVAL_DOCUMENT")
	if err != nil {
		return fmt.Errorf("embed chunks: %w", err)
	}

	vectors := make([][]float32, len(responses))
	dimension := len(responses[0].Embedding.Values)
	for i, resp := range responses {
		if len(resp.Embedding.Values) != dimension {
			return fmt.Errorf("embedding dimension mismatch: chunk %d has %d, want %d",
				i, len(resp.Embedding.Values), dimension)
		}
		vectors[i] = resp.Embedding.Values
	}

	idx.mu.Lock()
	idx.chunks = chunks
	idx.vectors = vectors
	idx.mu.Unlock()

	idx.logger.Printf("[INDEX] Built index with %d chunks (dim=%d)", len(chunks), dimension)
	return nil
}

// Search returns up to topK chunks by descending cosine similarity,
// dropping anything below the threshold. An empty index returns an
// empty result set.
func (idx *Index) Search(query string, topK int) ([]ScoredChunk, error) {
	if topK <= 0 {
		topK = 5
	}

	idx.mu.RLock()
	chunks := idx.chunks
	vectors := idx.vectors
	idx.mu.RUnlock()

	if len(chunks) == 0 {
		return nil, nil
	}

	queryResp, err := idx.embeddingProvider.Generate(query, "RETRIEVAL_QUERY")
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVec := queryResp.Embedding.Values
	if len(queryVec) != len(vectors[0]) {
		return nil, fmt.Errorf("query embedding dimension %d does not match index dimension %d",
			len(queryVec), len(vectors[0]))
	}

	scored := make([]ScoredChunk, 0, len(chunks))
	for i := range vectors {
		score := dot(vectors[i], queryVec)
		if float64(score) > idx.threshold {
			scored = append(scored, ScoredChunk{Chunk: chunks[i], Score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// SearchByKeyword returns chunks whose text contains keyword as a
// whole word, case-insensitive, in corpus order, capped at maxMatches.
func (idx *Index) SearchByKeyword(keyword string, maxMatches int) []chunk.Chunk {
	if maxMatches <= 0 {
		maxMatches = 5
	}

	pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(keyword) + `\b`)
	if err != nil {
		return nil
	}

	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var matches []chunk.Chunk
	for _, c := range idx.chunks {
		if pattern.MatchString(c.Text) {
			matches = append(matches, c)
			if len(matches) >= maxMatches {
				break
			}
		}
	}
	return matches
}

// Size reports the number of indexed chunks.
func (idx *Index) Size() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.chunks)
}

// dot assumes equal lengths; Build and Search enforce that before any
// scoring happens.
func dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
