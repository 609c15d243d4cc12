package api

import (
	"context"
	"net/http"

	"tripboard/internal/models"
)

// ListFriends returns the caller's confirmed friends.
func (c *Client) ListFriends(ctx context.Context) ([]models.Friend, error) {
	var out []models.Friend
	if err := c.do(ctx, http.MethodGet, "/friends", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListIncomingInvites returns invites addressed to the caller.
func (c *Client) ListIncomingInvites(ctx context.Context) ([]models.FriendInvite, error) {
	var out []models.FriendInvite
	if err := c.do(ctx, http.MethodGet, "/friends/invites/incoming", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListOutgoingInvites returns invites the caller has sent.
func (c *Client) ListOutgoingInvites(ctx context.Context) ([]models.FriendInvite, error) {
	var out []models.FriendInvite
	if err := c.do(ctx, http.MethodGet, "/friends/invites/outgoing", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SendInvite creates a pending invite to the given user.
func (c *Client) SendInvite(ctx context.Context, inviteeID string) (*models.FriendInvite, error) {
	var out models.FriendInvite
	body := map[string]string{"invitee_id": inviteeID}
	if err := c.do(ctx, http.MethodPost, "/friends/invites", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// AcceptInvite accepts an incoming invite. The response carries no body;
// callers refresh friends and invites afterwards.
func (c *Client) AcceptInvite(ctx context.Context, inviteID string) error {
	return c.do(ctx, http.MethodPost, "/friends/invites/"+inviteID+"/accept", nil, nil)
}

// RejectInvite rejects an incoming invite.
func (c *Client) RejectInvite(ctx context.Context, inviteID string) error {
	return c.do(ctx, http.MethodPost, "/friends/invites/"+inviteID+"/reject", nil, nil)
}

// CancelInvite withdraws an outgoing invite.
func (c *Client) CancelInvite(ctx context.Context, inviteID string) error {
	return c.do(ctx, http.MethodDelete, "/friends/invites/"+inviteID, nil, nil)
}

// RemoveFriend severs a confirmed friendship.
func (c *Client) RemoveFriend(ctx context.Context, friendID string) error {
	return c.do(ctx, http.MethodDelete, "/friends/"+friendID, nil, nil)
}
