package domain

import "time"

// Session is one conversation window. The message slice is the sliding-window
// history owned by the intent router; nothing else mutates it.
type Session struct {
	ID        string                `json:"id"`
	Key       string                `json:"key"`
	CreatedAt time.Time             `json:"createdAt"`
	UpdatedAt time.Time             `json:"updatedAt"`
	Messages  []ConversationMessage `json:"messages"`
}
