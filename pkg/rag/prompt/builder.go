package prompt

import (
	"strings"
)

// SalesBuilder composes the retrieval-augmented prompt. The model is
// told to answer only from the supplied data and to organize
// per-person when several people are mentioned.
type SalesBuilder struct {
	question  string
	salesData string
	history   string
}

func NewSalesBuilder(question, salesData, history string) *SalesBuilder {
	return &SalesBuilder{
		question:  question,
		salesData: salesData,
		history:   history,
	}
}

func (b *SalesBuilder) Build() string {
	var prompt strings.Builder

	prompt.WriteString("You are a sales data assistant. Answer the question using the provided sales data.\n\n")

	if b.history != "" {
		prompt.WriteString("Previous conversation:\n")
		prompt.WriteString(b.history)
		prompt.WriteString("\n\n")
	}

	prompt.WriteString("Sales Data:\n")
	prompt.WriteString(b.salesData)
	prompt.WriteString("\n\n")

	prompt.WriteString("Question: ")
	prompt.WriteString(b.question)
	prompt.WriteString("\n\n")

	prompt.WriteString("Answer using only the sales data above. ")
	prompt.WriteString("If the question mentions multiple people, organize the answer per person. ")
	prompt.WriteString("Provide a concise, accurate answer based on the sales data:")

	return prompt.String()
}

// ChatBuilder composes the general conversational prompt. No corpus
// data is involved on this path.
type ChatBuilder struct {
	systemInstruction string
	question          string
	history           string
}

func NewChatBuilder(systemInstruction, question, history string) *ChatBuilder {
	return &ChatBuilder{
		systemInstruction: systemInstruction,
		question:          question,
		history:           history,
	}
}

func (b *ChatBuilder) Build() string {
	var prompt strings.Builder

	prompt.WriteString(b.systemInstruction)
	prompt.WriteString("\n\n")

	if b.history != "" {
		prompt.WriteString("Previous conversation:\n")
		prompt.WriteString(b.history)
		prompt.WriteString("\n\n")
	}

	prompt.WriteString("User question: ")
	prompt.WriteString(b.question)
	prompt.WriteString("\n\n")
	prompt.WriteString("Provide a helpful, clear response:")

	return prompt.String()
}

// RoutingBuilder composes the classification prompt. The model is
// constrained to a one-word answer that the router parses loosely.
type RoutingBuilder struct {
	question      string
	keywordSample []string
	history       string
}

func NewRoutingBuilder(question string, keywordSample []string, history string) *RoutingBuilder {
	return &RoutingBuilder{
		question:      question,
		keywordSample: keywordSample,
		history:       history,
	}
}

func (b *RoutingBuilder) Build() string {
	var prompt strings.Builder

	prompt.WriteString("Analyze this user question and determine if it's about:\n")
	prompt.WriteString("1. SALES - questions about sales representatives, clients, deals, performance, or company sales data\n")
	prompt.WriteString("2. GENERAL - general questions, greetings, explanations, or topics unrelated to sales data\n\n")

	if len(b.keywordSample) > 0 {
		prompt.WriteString("Known sales data keywords: ")
		prompt.WriteString(strings.Join(b.keywordSample, ", "))
		prompt.WriteString("\n\n")
	}

	if b.history != "" {
		prompt.WriteString("Previous conversation:\n")
		prompt.WriteString(b.history)
		prompt.WriteString("\n\n")
	}

	prompt.WriteString("Question: ")
	prompt.WriteString(b.question)
	prompt.WriteString("\n\n")
	prompt.WriteString("Respond with ONLY one word: either 'sales' or 'general'")

	return prompt.String()
}
