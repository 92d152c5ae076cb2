package constant

// Log module names used with the zap logger.
const (
	ModuleAssistant = "ASSISTANT"
	ModuleRouter    = "ROUTER"
	ModuleRAG       = "RAG"
	ModuleChat      = "CHAT"
	ModuleData      = "DATA"
	ModuleConsumer  = "CONSUMER"
)

// ChatSystemInstruction frames the general conversational path.
const ChatSystemInstruction = "You are a helpful AI assistant for a sales organization. " +
	"Answer general questions clearly and concisely. " +
	"If a question is about the company's sales representatives, clients, or deals, " +
	"suggest the user ask about them directly so the sales data can be consulted."

// ErrMsgEmptyQuestion is the fixed client-visible message for blank input.
const ErrMsgEmptyQuestion = "Question must not be empty"
