package retriever

import (
	"io"
	"log"
	"strings"
	"testing"
	"unicode/utf8"

	"ai-sales-assistant-be/internal/entity"
	"ai-sales-assistant-be/pkg/embedding"
	"ai-sales-assistant-be/pkg/rag/chunk"
	"ai-sales-assistant-be/pkg/rag/index"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingEmbedder wraps the hashing embedder and counts query
// embeddings, so tests can prove the memoization short-circuits.
type countingEmbedder struct {
	inner         *embedding.HashingProvider
	generateCalls int
}

func (c *countingEmbedder) Generate(text, taskType string) (*embedding.EmbeddingResponse, error) {
	c.generateCalls++
	return c.inner.Generate(text, taskType)
}

func (c *countingEmbedder) GenerateBatch(texts []string, taskType string) ([]*embedding.EmbeddingResponse, error) {
	return c.inner.GenerateBatch(texts, taskType)
}

type staticKeywords []string

func (s staticKeywords) Keywords() []string { return s }

func testReps() []entity.SalesRep {
	return []entity.SalesRep{
		{
			Id: 1, Name: "Alice Smith", Role: "Senior Sales Representative", Region: "North America",
			Skills: []string{"Negotiation"},
			Deals:  []entity.Deal{{Client: "Acme Corp", Value: 120000, Status: "Closed Won"}},
		},
		{
			Id: 2, Name: "Bob Johnson", Role: "Sales Representative", Region: "Europe",
			Skills: []string{"Cold Calling"},
			Deals:  []entity.Deal{{Client: "Umbrella AG", Value: 60000, Status: "In Progress"}},
		},
	}
}

func newTestRetriever(t *testing.T, reps []entity.SalesRep, keywords []string, cfg Config) (*Retriever, *countingEmbedder) {
	t.Helper()

	embedder := &countingEmbedder{inner: embedding.NewHashingProvider(64)}
	idx := index.NewIndex(embedder, 0.25, log.New(io.Discard, "", 0))
	require.NoError(t, idx.Build(chunk.BuildChunks(reps)))

	ret := NewRetriever(idx, staticKeywords(keywords), index.NewLRUCache(10), cfg, log.New(io.Discard, "", 0))
	return ret, embedder
}

func TestSearchSalesDataKeywordPath(t *testing.T) {
	ret, embedder := newTestRetriever(t, testReps(), []string{"Alice", "Bob"}, DefaultConfig())

	got, err := ret.SearchSalesData("What deals is Alice working on?")
	require.NoError(t, err)

	assert.Contains(t, got, "Alice Smith deals")
	assert.NotContains(t, got, "Bob Johnson")
	assert.Zero(t, embedder.generateCalls, "keyword path must not embed the question")
}

func TestSearchSalesDataMultiEntityUnion(t *testing.T) {
	ret, _ := newTestRetriever(t, testReps(), []string{"Alice", "Bob"}, DefaultConfig())

	got, err := ret.SearchSalesData("Compare Alice and Bob")
	require.NoError(t, err)

	assert.Contains(t, got, "Alice Smith")
	assert.Contains(t, got, "Bob Johnson")
}

func TestSearchSalesDataKeywordIsWholeWord(t *testing.T) {
	ret, embedder := newTestRetriever(t, testReps(), []string{"Ali"}, DefaultConfig())

	// "Ali" must not match "Alice"; with no keyword hit the vector
	// path runs instead.
	_, err := ret.SearchSalesData("Tell me about Alice")
	require.NoError(t, err)
	assert.Equal(t, 1, embedder.generateCalls)
}

func TestSearchSalesDataChunkCap(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxChunks = 1
	ret, _ := newTestRetriever(t, testReps(), []string{"Alice", "Bob"}, cfg)

	got, err := ret.SearchSalesData("Compare Alice and Bob")
	require.NoError(t, err)

	assert.Len(t, strings.Split(got, "\n"), 1)
}

func TestSearchSalesDataTruncation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxChars = 100
	cfg.TruncateTo = 80
	ret, _ := newTestRetriever(t, testReps(), []string{"Alice"}, cfg)

	got, err := ret.SearchSalesData("Alice")
	require.NoError(t, err)

	assert.Len(t, got, 80)
}

func TestSearchSalesDataTruncationKeepsRunesIntact(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxChars = 100
	cfg.TruncateTo = 20

	reps := []entity.SalesRep{
		{Id: 1, Name: strings.Repeat("\u00e9", 40), Role: "Agent", Region: "EU", Skills: []string{"Negotiation"}},
	}
	ret, _ := newTestRetriever(t, reps, []string{"Rep"}, cfg)

	got, err := ret.SearchSalesData("Rep")
	require.NoError(t, err)

	// Byte 20 lands inside a two-byte rune; the cut backs off to 19.
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "Sales Rep: \u00e9\u00e9\u00e9\u00e9", got)
}

func TestSearchSalesDataMemoization(t *testing.T) {
	ret, embedder := newTestRetriever(t, testReps(), nil, DefaultConfig())

	first, err := ret.SearchSalesData("What does a sales representative do?")
	require.NoError(t, err)
	require.Equal(t, 1, embedder.generateCalls)

	// Same question modulo case and whitespace hits the cache.
	second, err := ret.SearchSalesData("  WHAT DOES A SALES REPRESENTATIVE DO?  ")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, embedder.generateCalls, "cached question must not re-embed")
}

func TestSearchSalesDataNoDataFallback(t *testing.T) {
	ret, _ := newTestRetriever(t, nil, nil, DefaultConfig())

	got, err := ret.SearchSalesData("Who is the best rep?")
	require.NoError(t, err)

	assert.Equal(t, NoDataFallback, got)
}
