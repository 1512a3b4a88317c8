package domain

import (
	"slices"
	"time"
)

type Conversation struct {
	ID           string    `json:"id"`
	Participants []string  `json:"participants"` // sorted, unique
	CreatedAt    time.Time `json:"created_at"`
}

// NewConversation deduplicates and sorts participants.
func NewConversation(id string, participants []string, now time.Time) Conversation {
	members := slices.Clone(participants)
	slices.Sort(members)
	return Conversation{
		ID:           id,
		Participants: slices.Compact(members),
		CreatedAt:    now,
	}
}

func (c Conversation) IsParticipant(userID string) bool {
	_, found := slices.BinarySearch(c.Participants, userID)
	return found
}

// IsDirect is true for two-participant conversations.
func (c Conversation) IsDirect() bool {
	return len(c.Participants) == 2
}

// ReceiverFor returns the other participant of a direct conversation,
// or an empty string for group conversations.
func (c Conversation) ReceiverFor(senderID string) string {
	if !c.IsDirect() {
		return ""
	}
	for _, p := range c.Participants {
		if p != senderID {
			return p
		}
	}
	return ""
}

// Recipients lists everyone who must be notified about a message from senderID.
func (c Conversation) Recipients(senderID string) []string {
	var res []string
	for _, p := range c.Participants {
		if p != senderID {
			res = append(res, p)
		}
	}
	return res
}

// Without returns a copy of the conversation minus userID.
func (c Conversation) Without(userID string) Conversation {
	c.Participants = slices.DeleteFunc(slices.Clone(c.Participants), func(p string) bool {
		return p == userID
	})
	return c
}
