package models

import "encoding/json"

// Change-feed event types.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Change-feed table names. Scope ids narrow a subscription to one group,
// one post, or one user.
const (
	TableFriends      = "friends"
	TableGroups       = "groups"
	TableGroupMembers = "group_members"
	TableBoardPosts   = "board_posts"
	TablePostComments = "post_comments"
	TableChatMessages = "chat_messages"
)

// ChangeEvent is one row-change notification pushed over the realtime feed.
// New carries the row after INSERT/UPDATE, Old the row before UPDATE/DELETE.
type ChangeEvent struct {
	Table   string          `json:"table"`
	ScopeID string          `json:"scope_id"`
	Type    string          `json:"type"`
	New     json.RawMessage `json:"new,omitempty"`
	Old     json.RawMessage `json:"old,omitempty"`
}

// SubscribeFrame is what a realtime client sends to attach to a filter.
type SubscribeFrame struct {
	Table   string `json:"table"`
	ScopeID string `json:"scope_id"`
}
