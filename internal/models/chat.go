package models

const RoleUser = "user"

// ChatMessage represents a single message in a conversation.
type ChatMessage struct {
	Role    string `json:"role"` // "user" or "assistant"
	Content string `json:"content"`
}

// ChatRequest is the payload posted to the Peerwave chat endpoint.
type ChatRequest struct {
	Model    string        `json:"model"`
	Messages []ChatMessage `json:"messages"`
}

// ChatResponse is the success body of the Peerwave chat endpoint. Fields are
// pointers so a body missing them can be told apart from an empty reply.
type ChatResponse struct {
	Message *ChatReply `json:"message"`
}

type ChatReply struct {
	Content *string `json:"content"`
}
