package entity

import "time"

// SalesRep is one record of the structured sales corpus.
// Records are immutable after load; the sales repository owns them.
type SalesRep struct {
	Id      int      `json:"id"`
	Name    string   `json:"name"`
	Role    string   `json:"role"`
	Region  string   `json:"region"`
	Skills  []string `json:"skills"`
	Deals   []Deal   `json:"deals,omitempty"`
	Clients []Client `json:"clients,omitempty"`
}

type Deal struct {
	Client string `json:"client"`
	Value  int64  `json:"value"`
	Status string `json:"status"`
}

type Client struct {
	Name     string `json:"name"`
	Industry string `json:"industry"`
	Contact  string `json:"contact"`
}

// SalesData mirrors the corpus file layout ({"salesReps": [...]}).
type SalesData struct {
	SalesReps []SalesRep `json:"salesReps"`
}

// Exchange is a single question/answer turn inside a conversation
// session. Exchanges are append-only; eviction drops whole exchanges.
type Exchange struct {
	UserMessage string    `json:"user_message"`
	AiResponse  string    `json:"ai_response"`
	Timestamp   time.Time `json:"timestamp"`
}
