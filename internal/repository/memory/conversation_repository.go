package memory

import (
	"strings"
	"time"

	"ai-sales-assistant-be/internal/entity"

	"github.com/patrickmn/go-cache"
)

// ConversationRepository is the bounded per-session conversation
// memory. Sessions live in a go-cache store created without a janitor:
// expiry is enforced lazily by the DeleteExpired sweep every operation
// runs first, so no background timer exists.
type ConversationRepository struct {
	sessions     *cache.Cache
	maxExchanges int
}

type sessionState struct {
	Exchanges []entity.Exchange
}

func NewConversationRepository(maxExchanges int, sessionTimeout time.Duration) *ConversationRepository {
	if maxExchanges <= 0 {
		maxExchanges = 5
	}
	if sessionTimeout <= 0 {
		sessionTimeout = 30 * time.Minute
	}
	// Cleanup interval 0 disables the janitor goroutine on purpose.
	return &ConversationRepository{
		sessions:     cache.New(sessionTimeout, 0),
		maxExchanges: maxExchanges,
	}
}

// AddExchange appends a question/answer turn, evicting the oldest
// exchange beyond the cap. Writing refreshes the session's idle timer.
// A stored state is never mutated: the new turn goes into a fresh
// slice and a fresh state, so concurrent readers holding the previous
// pointer always see a complete snapshot. Two writers racing on one
// session resolve last-writer-wins.
func (r *ConversationRepository) AddExchange(sessionID, userMessage, aiResponse string) {
	r.sessions.DeleteExpired()

	var prior []entity.Exchange
	if existing, found := r.sessions.Get(sessionID); found {
		prior = existing.(*sessionState).Exchanges
	}

	exchanges := make([]entity.Exchange, 0, len(prior)+1)
	exchanges = append(exchanges, prior...)
	exchanges = append(exchanges, entity.Exchange{
		UserMessage: userMessage,
		AiResponse:  aiResponse,
		Timestamp:   time.Now(),
	})
	if len(exchanges) > r.maxExchanges {
		exchanges = exchanges[len(exchanges)-r.maxExchanges:]
	}

	r.sessions.Set(sessionID, &sessionState{Exchanges: exchanges}, cache.DefaultExpiration)
}

// GetContext renders the session history as alternating User/Assistant
// lines in chronological order. Unknown or expired sessions render
// empty. Reading does not refresh the idle timer.
func (r *ConversationRepository) GetContext(sessionID string) string {
	r.sessions.DeleteExpired()

	existing, found := r.sessions.Get(sessionID)
	if !found {
		return ""
	}
	state := existing.(*sessionState)
	if len(state.Exchanges) == 0 {
		return ""
	}

	parts := make([]string, 0, len(state.Exchanges)*2)
	for _, ex := range state.Exchanges {
		parts = append(parts, "User: "+ex.UserMessage)
		parts = append(parts, "Assistant: "+ex.AiResponse)
	}
	return strings.Join(parts, "\n")
}

// HasSession reports whether a session is known, non-empty and not
// expired.
func (r *ConversationRepository) HasSession(sessionID string) bool {
	r.sessions.DeleteExpired()

	existing, found := r.sessions.Get(sessionID)
	if !found {
		return false
	}
	return len(existing.(*sessionState).Exchanges) > 0
}

// ClearSession removes a session explicitly.
func (r *ConversationRepository) ClearSession(sessionID string) {
	r.sessions.Delete(sessionID)
}
