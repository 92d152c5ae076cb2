package router

import (
	"context"
	"fmt"
	"log"
	"strings"

	"ai-sales-assistant-be/pkg/llm"
	"ai-sales-assistant-be/pkg/rag/prompt"
)

// RouteType is the binary classification of an incoming question.
type RouteType string

const (
	RouteSales   RouteType = "sales"
	RouteGeneral RouteType = "general"
)

// Tier confidences. Keyword hits are near-certain; model answers are
// trusted slightly less; unparseable or failed classifications degrade.
const (
	keywordConfidence   = 0.95
	modelConfidence     = 0.9
	ambiguousConfidence = 0.5
	errorConfidence     = 0.3
)

// maxKeywordSample bounds how much vocabulary the classification
// prompt carries.
const maxKeywordSample = 15

// RouteDecision is the per-request routing result.
type RouteDecision struct {
	RouteType  RouteType
	Confidence float64
	Reasoning  string
}

// KeywordSource supplies the corpus vocabulary the keyword tier
// matches against.
type KeywordSource interface {
	Keywords() []string
}

// Router classifies questions as sales or general. Tier 1 is a direct
// vocabulary scan; tier 2 asks the model. Classification never fails
// hard: any tier-2 error resolves to a general route.
type Router struct {
	keywords    KeywordSource
	llmProvider llm.LLMProvider
	logger      *log.Logger
}

func NewRouter(keywords KeywordSource, llmProvider llm.LLMProvider, logger *log.Logger) *Router {
	return &Router{
		keywords:    keywords,
		llmProvider: llmProvider,
		logger:      logger,
	}
}

// Classify decides the route for a question, consulting conversation
// history only on the model tier.
func (r *Router) Classify(ctx context.Context, question, history string) RouteDecision {
	if kw, found := r.matchKeyword(question); found {
		r.logger.Printf("[ROUTER] Keyword tier hit: %q -> sales", kw)
		return RouteDecision{
			RouteType:  RouteSales,
			Confidence: keywordConfidence,
			Reasoning:  fmt.Sprintf("Question mentions sales data keyword %q", kw),
		}
	}

	return r.classifyWithModel(ctx, question, history)
}

// matchKeyword scans the corpus vocabulary with loose substring
// containment. Looser than the retrieval matcher on purpose: a false
// sales route still answers from real data, a missed one costs a
// model call.
func (r *Router) matchKeyword(question string) (string, bool) {
	lowered := strings.ToLower(question)
	for _, kw := range r.keywords.Keywords() {
		if strings.Contains(lowered, strings.ToLower(kw)) {
			return kw, true
		}
	}
	return "", false
}

func (r *Router) classifyWithModel(ctx context.Context, question, history string) RouteDecision {
	sample := r.keywords.Keywords()
	if len(sample) > maxKeywordSample {
		sample = sample[:maxKeywordSample]
	}

	routingPrompt := prompt.NewRoutingBuilder(question, sample, history).Build()

	response, err := r.llmProvider.Generate(ctx, routingPrompt,
		llm.WithTemperature(0.1),
		llm.WithMaxTokens(100),
	)
	if err != nil {
		r.logger.Printf("[ROUTER] Classification call failed: %v", err)
		return RouteDecision{
			RouteType:  RouteGeneral,
			Confidence: errorConfidence,
			Reasoning:  fmt.Sprintf("Routing failed, defaulting to general: %v", err),
		}
	}

	routeText := strings.ToLower(strings.TrimSpace(response))
	switch {
	case strings.Contains(routeText, "sales"):
		return RouteDecision{
			RouteType:  RouteSales,
			Confidence: modelConfidence,
			Reasoning:  "AI classified as sales",
		}
	case strings.Contains(routeText, "general"):
		return RouteDecision{
			RouteType:  RouteGeneral,
			Confidence: modelConfidence,
			Reasoning:  "AI classified as general",
		}
	default:
		r.logger.Printf("[ROUTER] Unclear classification response: %q", truncateLog(routeText, 50))
		return RouteDecision{
			RouteType:  RouteGeneral,
			Confidence: ambiguousConfidence,
			Reasoning:  fmt.Sprintf("Unclear classification %q, defaulting to general", truncateLog(routeText, 50)),
		}
	}
}

// truncateLog truncates string for logging
func truncateLog(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
