package memory

import (
	"encoding/json"
	"os"
	"sort"
	"strings"
	"sync"

	"ai-sales-assistant-be/internal/entity"
	"ai-sales-assistant-be/internal/pkg/logger"
)

// minKeywordLen keeps trivial tokens ("of", "jr") out of the
// vocabulary; the router matches by substring and short keywords would
// fire on everything.
const minKeywordLen = 3

// SalesRepository owns the structured sales corpus: read-only
// snapshots after load, plus the derived keyword vocabulary. A missing
// or malformed corpus file degrades to an empty corpus so routing and
// chat keep working without sales data.
type SalesRepository struct {
	mu       sync.RWMutex
	filePath string
	logger   logger.ILogger

	data     entity.SalesData
	keywords []string
}

func NewSalesRepository(filePath string, log logger.ILogger) *SalesRepository {
	r := &SalesRepository{
		filePath: filePath,
		logger:   log,
	}
	r.load()
	return r
}

func (r *SalesRepository) load() {
	data := entity.SalesData{SalesReps: []entity.SalesRep{}}

	raw, err := os.ReadFile(r.filePath)
	if err != nil {
		r.logger.Warn("DATA", "Sales data file not readable, starting with empty corpus", map[string]interface{}{
			"path":  r.filePath,
			"error": err.Error(),
		})
	} else if err := json.Unmarshal(raw, &data); err != nil {
		data = entity.SalesData{SalesReps: []entity.SalesRep{}}
		r.logger.Warn("DATA", "Sales data file malformed, starting with empty corpus", map[string]interface{}{
			"path":  r.filePath,
			"error": err.Error(),
		})
	} else {
		r.logger.Info("DATA", "Sales data loaded", map[string]interface{}{
			"path":  r.filePath,
			"count": len(data.SalesReps),
		})
	}

	keywords := extractKeywords(data.SalesReps)

	r.mu.Lock()
	r.data = data
	r.keywords = keywords
	r.mu.Unlock()
}

// GetSalesData returns the corpus snapshot. Records are immutable
// after load, so sharing the backing slices is safe.
func (r *SalesRepository) GetSalesData() entity.SalesData {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data
}

func (r *SalesRepository) GetSalesReps() []entity.SalesRep {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.data.SalesReps
}

// Reload re-reads the corpus file and replaces the snapshot. The
// caller is responsible for rebuilding anything derived from it.
func (r *SalesRepository) Reload() entity.SalesData {
	r.load()
	return r.GetSalesData()
}

// Keywords returns the sorted corpus vocabulary: rep name tokens,
// roles, regions, skills, client names and deal-client names.
func (r *SalesRepository) Keywords() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.keywords
}

func extractKeywords(reps []entity.SalesRep) []string {
	seen := make(map[string]bool)
	var keywords []string

	add := func(value string) {
		value = strings.TrimSpace(value)
		if len(value) < minKeywordLen {
			return
		}
		key := strings.ToLower(value)
		if seen[key] {
			return
		}
		seen[key] = true
		keywords = append(keywords, value)
	}

	for _, rep := range reps {
		for _, token := range strings.Fields(rep.Name) {
			add(token)
		}
		add(rep.Role)
		add(rep.Region)
		for _, skill := range rep.Skills {
			add(skill)
		}
		for _, client := range rep.Clients {
			add(client.Name)
		}
		for _, deal := range rep.Deals {
			add(deal.Client)
		}
	}

	sort.Slice(keywords, func(i, j int) bool {
		return strings.ToLower(keywords[i]) < strings.ToLower(keywords[j])
	})
	return keywords
}
