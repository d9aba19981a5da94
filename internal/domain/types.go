package domain

// DefaultTopK is the number of chunks retrieved per query when the caller
// does not set a positive limit. One value for every front end and store.
const DefaultTopK = 4

// Chunk is a stored unit of documentation text with its source metadata.
type Chunk struct {
	ID         string
	Text       string
	Source     string
	ChunkIndex int
}

// SearchResult is a matching chunk with its similarity score.
type SearchResult struct {
	Chunk Chunk
	Score float64
}

// Role tags a transcript message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one turn of a chat transcript.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}
