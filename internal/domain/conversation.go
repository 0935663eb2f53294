package domain

// State is the position of a conversation in the image-request flow.
type State int

const (
	StateAwaitingPrompt State = iota
	StateAwaitingCount
	StateAwaitingSize
	StateAwaitingStyle
	StateAwaitingPriceDecision
	StateAwaitingPrice
)

// String returns a readable name for logging.
func (s State) String() string {
	switch s {
	case StateAwaitingPrompt:
		return "awaiting_prompt"
	case StateAwaitingCount:
		return "awaiting_count"
	case StateAwaitingSize:
		return "awaiting_size"
	case StateAwaitingStyle:
		return "awaiting_style"
	case StateAwaitingPriceDecision:
		return "awaiting_price_decision"
	case StateAwaitingPrice:
		return "awaiting_price"
	default:
		return "unknown"
	}
}

// Conversation holds the fields accumulated across one user's request.
// A field is only meaningful once the state that produces it has passed.
type Conversation struct {
	State        State
	Prompt       string
	Count        int
	Size         string
	Style        string
	LastArtifact string
	Username     string
	TelegramID   int64
}
