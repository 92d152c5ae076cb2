package retriever

import (
	"log"
	"regexp"
	"strings"
	"unicode/utf8"

	"ai-sales-assistant-be/pkg/rag/index"
)

// NoDataFallback is returned when neither keyword nor vector search
// surfaces anything relevant. Answering from nothing beats answering
// from weak matches.
const NoDataFallback = "Limited sales rep data available."

// KeywordSource supplies the corpus vocabulary (name tokens, roles,
// regions, skills, client names).
type KeywordSource interface {
	Keywords() []string
}

// Config bounds the retrieval output.
type Config struct {
	TopK       int // vector search candidates
	MaxChunks  int // hard cap on chunks entering the prompt
	MaxChars   int // ceiling that triggers truncation
	TruncateTo int // size after truncation
}

func DefaultConfig() Config {
	return Config{
		TopK:       6,
		MaxChunks:  6,
		MaxChars:   3000,
		TruncateTo: 2500,
	}
}

// Retriever runs the composite sales-data retrieval: exact keyword
// matches first, vector search as the fallback, memoized per question.
type Retriever struct {
	index    *index.Index
	keywords KeywordSource
	cache    *index.LRUCache
	config   Config
	logger   *log.Logger
}

func NewRetriever(
	idx *index.Index,
	keywords KeywordSource,
	cache *index.LRUCache,
	config Config,
	logger *log.Logger,
) *Retriever {
	return &Retriever{
		index:    idx,
		keywords: keywords,
		cache:    cache,
		config:   config,
		logger:   logger,
	}
}

// SearchSalesData returns the bounded sales-data text for a question.
// Truncation at the ceiling is lossy; it trades tail chunks for a
// bounded generation input.
func (r *Retriever) SearchSalesData(question string) (string, error) {
	cacheKey := strings.ToLower(strings.TrimSpace(question))
	if cached, found := r.cache.Get(cacheKey); found {
		r.logger.Printf("[RETRIEVER] Cache hit for %q", truncateLog(cacheKey, 40))
		return cached, nil
	}

	texts, err := r.collectChunks(question)
	if err != nil {
		return "", err
	}

	result := NoDataFallback
	if len(texts) > 0 {
		result = strings.Join(texts, "\n")
	}

	if len(result) > r.config.MaxChars {
		cut := r.config.TruncateTo
		if cut > len(result) {
			cut = len(result)
		}
		// Back off to a rune boundary; corpus text may hold
		// multi-byte names.
		for cut > 0 && cut < len(result) && !utf8.RuneStart(result[cut]) {
			cut--
		}
		r.logger.Printf("[RETRIEVER] Truncating result: %d chars -> %d", len(result), cut)
		result = result[:cut]
	}

	r.cache.Set(cacheKey, result)
	return result, nil
}

func (r *Retriever) collectChunks(question string) ([]string, error) {
	matched := r.matchedKeywords(question)

	if len(matched) > 0 {
		r.logger.Printf("[RETRIEVER] Keyword path: %d keywords matched", len(matched))
		return r.unionKeywordResults(matched), nil
	}

	r.logger.Printf("[RETRIEVER] Vector path: no corpus keywords in question")
	scored, err := r.index.Search(question, r.config.TopK)
	if err != nil {
		return nil, err
	}

	texts := make([]string, 0, len(scored))
	for _, sc := range scored {
		texts = append(texts, sc.Chunk.Text)
		if len(texts) >= r.config.MaxChunks {
			break
		}
	}
	return texts, nil
}

// matchedKeywords finds corpus keywords mentioned in the question,
// whole-word and case-insensitive. Strict matching here keeps
// wrong-entity chunks out of the prompt.
func (r *Retriever) matchedKeywords(question string) []string {
	var matched []string
	for _, kw := range r.keywords.Keywords() {
		pattern, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(kw) + `\b`)
		if err != nil {
			continue
		}
		if pattern.MatchString(question) {
			matched = append(matched, kw)
		}
	}
	return matched
}

// unionKeywordResults merges keyword hits across all matched keywords
// so multi-entity questions surface every mentioned entity.
func (r *Retriever) unionKeywordResults(keywords []string) []string {
	seen := make(map[string]bool)
	var texts []string

	for _, kw := range keywords {
		for _, c := range r.index.SearchByKeyword(kw, r.config.MaxChunks) {
			if seen[c.Text] {
				continue
			}
			seen[c.Text] = true
			texts = append(texts, c.Text)
			if len(texts) >= r.config.MaxChunks {
				return texts
			}
		}
	}
	return texts
}

func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
