package models

import "time"

// BoardPost is one entry on a group's shared trip board, newest first.
type BoardPost struct {
	ID        string        `db:"id" json:"id"`
	GroupID   string        `db:"group_id" json:"group_id"`
	AuthorID  string        `db:"author_id" json:"author_id"`
	Content   string        `db:"content" json:"content"`
	CreatedAt time.Time     `db:"created_at" json:"created_at"`
	Comments  []PostComment `db:"-" json:"comments,omitempty"`
}

func (p BoardPost) EntityID() string           { return p.ID }
func (p BoardPost) EntityCreatedAt() time.Time { return p.CreatedAt }

// PostComment is a comment below a board post, chronological.
type PostComment struct {
	ID        string    `db:"id" json:"id"`
	PostID    string    `db:"post_id" json:"post_id"`
	AuthorID  string    `db:"author_id" json:"author_id"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (c PostComment) EntityID() string           { return c.ID }
func (c PostComment) EntityCreatedAt() time.Time { return c.CreatedAt }
