package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripboard/internal/models"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *Client) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return srv, NewClient(srv.URL, "session-token")
}

func TestClientSendsBearerToken(t *testing.T) {
	var gotAuth string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]models.Friend{})
	})

	_, err := client.ListFriends(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer session-token", gotAuth)
}

func TestClientDecodesErrorBody(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		json.NewEncoder(w).Encode(map[string]string{"error": "invite already exists"})
	})

	_, err := client.SendInvite(context.Background(), "u2")
	require.Error(t, err)
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusConflict, apiErr.Status)
	assert.Equal(t, "invite already exists", apiErr.Message)
}

func TestClientListPostsPassesCursorAndLimit(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	var gotPath, gotQuery string
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		json.NewEncoder(w).Encode(models.PostPage{
			Items:      []models.BoardPost{{ID: "p1", GroupID: "g1", Content: "beach day", CreatedAt: now}},
			NextCursor: "abc",
			HasMore:    true,
		})
	})

	page, err := client.ListPosts(context.Background(), "g1", "cur", 20)
	require.NoError(t, err)
	assert.Equal(t, "/groups/g1/posts", gotPath)
	assert.Equal(t, "cursor=cur&limit=20", gotQuery)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "p1", page.Items[0].ID)
	assert.True(t, page.HasMore)
	assert.Equal(t, "abc", page.NextCursor)
}

func TestClientAcceptInviteTolerates204(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/friends/invites/inv1/accept", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.AcceptInvite(context.Background(), "inv1"))
}

func TestClientRealtimeToken(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/realtime/token", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]string{"token": "rt-1"})
	})

	token, err := client.RealtimeToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "rt-1", token)
}

func TestClientContextCancellationAborts(t *testing.T) {
	_, client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.ListGroups(ctx)
	require.Error(t, err)
}
