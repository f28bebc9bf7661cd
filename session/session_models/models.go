package session_models

import (
	"github.com/mbenkhaled/telerag/internal/store"
)

// Role identifies who produced a conversation turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is one entry in a session transcript. Assistant turns carry the
// retrieval provenance alongside the answer; user turns have no sources.
// Nothing enforces strict user/assistant alternation.
type Turn struct {
	Role    Role                 `json:"role"`
	Content string               `json:"content"`
	Sources []store.SearchResult `json:"sources,omitempty"`
}

// previewLength is the fixed display length for source excerpts.
const previewLength = 300

// Snippet truncates source text for display: at most 300 characters, with an
// ellipsis marker appended when the text was cut.
func Snippet(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLength {
		return s
	}
	return string(runes[:previewLength]) + "..."
}
