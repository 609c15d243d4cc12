package models

import "time"

// ChatMessage is one message in a group's chat, chronological.
type ChatMessage struct {
	ID        string    `db:"id" json:"id"`
	GroupID   string    `db:"group_id" json:"group_id"`
	SenderID  string    `db:"sender_id" json:"sender_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (m ChatMessage) EntityID() string           { return m.ID }
func (m ChatMessage) EntityCreatedAt() time.Time { return m.CreatedAt }
