package models

import "time"

// Group is a travel group whose members share a board and a chat.
type Group struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	OwnerID   string    `db:"owner_id" json:"owner_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (g Group) EntityID() string           { return g.ID }
func (g Group) EntityCreatedAt() time.Time { return g.CreatedAt }

// GroupMember is one membership row.
type GroupMember struct {
	GroupID  string    `db:"group_id" json:"group_id"`
	UserID   string    `db:"user_id" json:"user_id"`
	Username string    `db:"username" json:"username"`
	Role     string    `db:"role" json:"role"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}

func (m GroupMember) EntityID() string           { return m.UserID }
func (m GroupMember) EntityCreatedAt() time.Time { return m.JoinedAt }

// Member roles.
const (
	RoleOwner  = "owner"
	RoleMember = "member"
)
