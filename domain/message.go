// Package domain contains core concepts of the chat system.
// This file defines Message, EditRecord and Notification entities.
package domain

import (
	"time"
)

// Message is a chat message, optionally replying to a parent message of the
// same conversation. Only Content and the edit metadata ever change.
type Message struct {
	ID             string     `json:"id"`
	ConversationID string     `json:"conversation_id"`
	SenderID       string     `json:"sender_id"`
	ReceiverID     string     `json:"receiver_id,omitempty"` // empty for group conversations
	ParentID       *string    `json:"parent_id,omitempty"`
	Content        string     `json:"content"`
	CreatedAt      time.Time  `json:"created_at"`
	Edited         bool       `json:"edited"`
	EditedAt       *time.Time `json:"edited_at,omitempty"`
	EditedBy       string     `json:"edited_by,omitempty"`
}

func (m Message) IsRoot() bool {
	return m.ParentID == nil
}

// Before orders messages by creation time, then by identifier.
func (m Message) Before(other Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}

// EditRecord is the immutable snapshot of a message's content before an edit.
type EditRecord struct {
	ID              string    `json:"id"`
	MessageID       string    `json:"message_id"`
	PreviousContent string    `json:"previous_content"`
	NewContent      string    `json:"new_content"`
	EditorID        string    `json:"editor_id"`
	LoggedAt        time.Time `json:"logged_at"`
}

// Notification tells a recipient that a new message is waiting.
// At most one exists per (message, recipient).
type Notification struct {
	ID          string    `json:"id"`
	RecipientID string    `json:"recipient_id"`
	MessageID   string    `json:"message_id"`
	Read        bool      `json:"read"`
	CreatedAt   time.Time `json:"created_at"`
}

// OrphanPolicy decides what happens to the replies of a deleted message.
type OrphanPolicy string

const (
	// OrphanCascade deletes the whole reply subtree.
	OrphanCascade OrphanPolicy = "cascade"
	// OrphanDetach turns direct replies into new thread roots.
	OrphanDetach OrphanPolicy = "detach"
)

func ToOrphanPolicy(s string) (OrphanPolicy, bool) {
	switch OrphanPolicy(s) {
	case OrphanCascade, OrphanDetach:
		return OrphanPolicy(s), true
	default:
		return "", false
	}
}
