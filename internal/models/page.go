package models

// PostPage is a cursor page of board posts.
type PostPage struct {
	Items      []BoardPost `json:"items"`
	NextCursor string      `json:"next_cursor,omitempty"`
	HasMore    bool        `json:"has_more"`
}

// MessagePage is a cursor page of chat messages. Items are ascending within
// the page even though pages walk backward through history.
type MessagePage struct {
	Items      []ChatMessage `json:"items"`
	NextCursor string        `json:"next_cursor,omitempty"`
	HasMore    bool          `json:"has_more"`
}
