package api

import (
	"context"
	"net/http"

	"tripboard/internal/models"
)

// ListPosts returns one cursor page of a group's board, newest first.
func (c *Client) ListPosts(ctx context.Context, groupID, cursor string, limit int) (models.PostPage, error) {
	var out models.PostPage
	path := "/groups/" + groupID + "/posts" + pageQuery(cursor, limit)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return models.PostPage{}, err
	}
	return out, nil
}

// CreatePost publishes a post to a group's board.
func (c *Client) CreatePost(ctx context.Context, groupID, content string) (*models.BoardPost, error) {
	var out models.BoardPost
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, "/groups/"+groupID+"/posts", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePost removes a post the caller authored.
func (c *Client) DeletePost(ctx context.Context, postID string) error {
	return c.do(ctx, http.MethodDelete, "/posts/"+postID, nil, nil)
}

// ListComments returns a post's comments, oldest first.
func (c *Client) ListComments(ctx context.Context, postID string) ([]models.PostComment, error) {
	var out []models.PostComment
	if err := c.do(ctx, http.MethodGet, "/posts/"+postID+"/comments", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateComment adds a comment to a post.
func (c *Client) CreateComment(ctx context.Context, postID, content string) (*models.PostComment, error) {
	var out models.PostComment
	body := map[string]string{"content": content}
	if err := c.do(ctx, http.MethodPost, "/posts/"+postID+"/comments", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
