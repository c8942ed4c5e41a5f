// Package memory persists per-user conversation records across requests.
package memory

import "github.com/sinema-chat/sinema/src/chatapi"

// PersonaPreamble is the fixed system turn that seeds every new record. It is
// never removed by truncation.
const PersonaPreamble = "You are Sinema, a friendly Kenyan movie and TV recommendation assistant. " +
	"You know Hollywood, Nollywood, Riverwood and global cinema, and you help people pick " +
	"what to watch next. Keep answers short and conversational. If you are not sure a title " +
	"exists, say so instead of guessing."

// MaxTurns is the cap on stored conversation length. When a record grows past
// it, the system turn plus the most recent MaxTurns-1 turns are kept.
const MaxTurns = 20

// Turn is one role-tagged message in a stored conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ConversationRecord is the per-user persisted state. The first turn is
// always the system persona turn.
type ConversationRecord struct {
	UserID       string `json:"userId"`
	LastProject  string `json:"lastProject,omitempty"`
	LastTask     string `json:"lastTask,omitempty"`
	Conversation []Turn `json:"conversation"`
}

// NewRecord returns a fresh record for userID seeded with the persona turn.
func NewRecord(userID string) *ConversationRecord {
	return &ConversationRecord{
		UserID: userID,
		Conversation: []Turn{
			{Role: chatapi.RoleSystem, Content: PersonaPreamble},
		},
	}
}

// Append adds one turn to the conversation.
func (r *ConversationRecord) Append(role, content string) {
	r.Conversation = append(r.Conversation, Turn{Role: role, Content: content})
}

// Truncate drops older turns once the conversation exceeds MaxTurns, keeping
// the system turn and the most recent MaxTurns-1 turns in original order.
func (r *ConversationRecord) Truncate() {
	if len(r.Conversation) <= MaxTurns {
		return
	}
	kept := make([]Turn, 0, MaxTurns)
	kept = append(kept, r.Conversation[0])
	kept = append(kept, r.Conversation[len(r.Conversation)-(MaxTurns-1):]...)
	r.Conversation = kept
}

// Valid reports whether a loaded record is usable: it must carry at least the
// seed system turn. Corrupt or empty records are replaced with defaults.
func (r *ConversationRecord) Valid() bool {
	return r != nil && len(r.Conversation) > 0 && r.Conversation[0].Role == chatapi.RoleSystem
}

// Messages converts the stored conversation into outbound chat messages.
// toneInstruction, when non-empty, is appended to the system turn's content
// for this call only; the stored record is not mutated.
func (r *ConversationRecord) Messages(toneInstruction string) []*chatapi.Message {
	msgs := make([]*chatapi.Message, 0, len(r.Conversation))
	for i, turn := range r.Conversation {
		content := turn.Content
		if i == 0 && turn.Role == chatapi.RoleSystem && toneInstruction != "" {
			content += toneInstruction
		}
		msgs = append(msgs, &chatapi.Message{Role: turn.Role, Content: content})
	}
	return msgs
}
