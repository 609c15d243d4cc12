package api

import (
	"context"
	"net/http"

	"tripboard/internal/models"
)

// ListGroups returns the groups the caller belongs to.
func (c *Client) ListGroups(ctx context.Context) ([]models.Group, error) {
	var out []models.Group
	if err := c.do(ctx, http.MethodGet, "/groups", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// CreateGroup creates a trip group owned by the caller.
func (c *Client) CreateGroup(ctx context.Context, name string) (*models.Group, error) {
	var out models.Group
	if err := c.do(ctx, http.MethodPost, "/groups", map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RenameGroup changes a group's name and returns the updated row.
func (c *Client) RenameGroup(ctx context.Context, groupID, name string) (*models.Group, error) {
	var out models.Group
	if err := c.do(ctx, http.MethodPatch, "/groups/"+groupID, map[string]string{"name": name}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// LeaveGroup removes the caller from the group.
func (c *Client) LeaveGroup(ctx context.Context, groupID string) error {
	return c.do(ctx, http.MethodDelete, "/groups/"+groupID+"/members/me", nil, nil)
}

// ListMembers returns a group's membership.
func (c *Client) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	var out []models.GroupMember
	if err := c.do(ctx, http.MethodGet, "/groups/"+groupID+"/members", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AddMember adds a user to the group.
func (c *Client) AddMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error) {
	var out models.GroupMember
	body := map[string]string{"user_id": userID}
	if err := c.do(ctx, http.MethodPost, "/groups/"+groupID+"/members", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveMember removes a user from the group.
func (c *Client) RemoveMember(ctx context.Context, groupID, userID string) error {
	return c.do(ctx, http.MethodDelete, "/groups/"+groupID+"/members/"+userID, nil, nil)
}
