package model

// ChatRole is the author of a chat message sent to a model provider.
type ChatRole string

const (
	RoleSystem    ChatRole = "system"
	RoleUser      ChatRole = "user"
	RoleAssistant ChatRole = "assistant"
)

// ChatMessage is a single message in a completion request.
type ChatMessage struct {
	Role    ChatRole
	Content string
}

// CompletionOptions tunes a single completion request. Zero values let the
// provider pick its defaults.
type CompletionOptions struct {
	Model       string
	MaxTokens   int
	Temperature float64
	JSONOutput  bool
}

// Completion is the text returned by a model provider.
type Completion struct {
	Content string
}
