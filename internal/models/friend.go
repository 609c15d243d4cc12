package models

import "time"

// Invite status values.
const (
	InvitePending  = "pending"
	InviteRejected = "rejected"
)

// Friend is one confirmed friendship as seen by a particular user.
type Friend struct {
	ID        string    `db:"friend_id" json:"id"` // the friend's user id
	Username  string    `db:"username" json:"username"`
	AvatarURL string    `db:"avatar_url" json:"avatar_url,omitempty"`
	Since     time.Time `db:"created_at" json:"since"`
}

// EntityID implements the synced-entity shape.
func (f Friend) EntityID() string { return f.ID }

// EntityCreatedAt implements the synced-entity shape.
func (f Friend) EntityCreatedAt() time.Time { return f.Since }

// FriendInvite is a pending or rejected friend request.
type FriendInvite struct {
	ID        string    `db:"id" json:"id"`
	InviterID string    `db:"inviter_id" json:"inviter_id"`
	InviteeID string    `db:"invitee_id" json:"invitee_id"`
	Status    string    `db:"status" json:"status"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (i FriendInvite) EntityID() string           { return i.ID }
func (i FriendInvite) EntityCreatedAt() time.Time { return i.CreatedAt }
