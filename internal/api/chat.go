package api

import (
	"context"
	"net/http"

	"tripboard/internal/models"
)

// ListMessages returns one backward page of a group chat. Items within a page
// are ascending; the cursor walks toward older history.
func (c *Client) ListMessages(ctx context.Context, groupID, cursor string, limit int) (models.MessagePage, error) {
	var out models.MessagePage
	path := "/groups/" + groupID + "/messages" + pageQuery(cursor, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return models.MessagePage{}, err
	}
	return out, nil
}

// PostMessage sends a chat message to the group.
func (c *Client) PostMessage(ctx context.Context, groupID, content string) (*models.ChatMessage, error) {
	var out models.ChatMessage
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, "/groups/"+groupID+"/messages", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
