package stores

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tripboard/internal/models"
	"tripboard/internal/state"
)

type fakeChatAPI struct {
	pages   map[string]models.MessagePage
	sendErr error
}

func (f *fakeChatAPI) ListMessages(_ context.Context, _, cursor string, _ int) (models.MessagePage, error) {
	return f.pages[cursor], nil
}

func (f *fakeChatAPI) PostMessage(_ context.Context, groupID, content string) (*models.ChatMessage, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	m := models.ChatMessage{ID: "m-new", GroupID: groupID, SenderID: "me", Content: content, CreatedAt: time.Now().UTC()}
	return &m, nil
}

func msg(id, sender string, createdAt time.Time) models.ChatMessage {
	return models.ChatMessage{ID: id, GroupID: "g1", SenderID: sender, Content: "text " + id, CreatedAt: createdAt}
}

func insertChatEvent(t *testing.T, m models.ChatMessage) models.ChangeEvent {
	t.Helper()
	raw, err := json.Marshal(m)
	require.NoError(t, err)
	return models.ChangeEvent{Table: models.TableChatMessages, ScopeID: "g1", Type: models.EventInsert, New: raw}
}

func TestChatStoreOpenLoadsNewestPageAscending(t *testing.T) {
	now := time.Now().UTC()
	api := &fakeChatAPI{pages: map[string]models.MessagePage{
		"": {Items: []models.ChatMessage{msg("m2", "u2", now.Add(-2*time.Minute)), msg("m3", "u2", now.Add(-time.Minute))}, NextCursor: "older", HasMore: true},
	}}
	s := NewChatStore(api, "g1", "me", nil)

	require.NoError(t, s.Open(context.Background(), nil))
	assert.Equal(t, []string{"m2", "m3"}, s.Messages.IDs())
	assert.True(t, s.HasMore())
}

func TestChatStoreLoadOlderPrependsHistory(t *testing.T) {
	now := time.Now().UTC()
	api := &fakeChatAPI{pages: map[string]models.MessagePage{
		"":      {Items: []models.ChatMessage{msg("m3", "u2", now.Add(-time.Minute))}, NextCursor: "older", HasMore: true},
		"older": {Items: []models.ChatMessage{msg("m1", "u2", now.Add(-3*time.Minute)), msg("m2", "u2", now.Add(-2*time.Minute))}, HasMore: false},
	}}
	tracker := state.NewUnreadTracker()
	s := NewChatStore(api, "g1", "me", tracker)

	require.NoError(t, s.Open(context.Background(), nil))
	require.NoError(t, s.LoadOlder(context.Background()))

	assert.Equal(t, []string{"m1", "m2", "m3"}, s.Messages.IDs())
	assert.False(t, s.HasMore())
	assert.Equal(t, 0, tracker.UnreadCount(), "history never counts as unread")
}

func TestChatStoreDirectAppendDeduplicatesByID(t *testing.T) {
	now := time.Now().UTC()
	api := &fakeChatAPI{pages: map[string]models.MessagePage{
		"": {Items: []models.ChatMessage{msg("m1", "u2", now.Add(-time.Minute))}, HasMore: false},
	}}
	feed := newFakeFeed()
	s := NewChatStore(api, "g1", "me", nil)
	require.NoError(t, s.Open(context.Background(), feed))

	feed.push(insertChatEvent(t, msg("m2", "u2", now)))
	feed.push(insertChatEvent(t, msg("m2", "u2", now))) // duplicate delivery

	assert.Equal(t, []string{"m1", "m2"}, s.Messages.IDs())
}

func TestChatStoreInsertEventReconcilesOptimisticTemp(t *testing.T) {
	now := time.Now().UTC()
	api := &fakeChatAPI{pages: map[string]models.MessagePage{}}
	s := NewChatStore(api, "g1", "me", nil)

	temp := models.ChatMessage{ID: state.NewTempID("msg"), GroupID: "g1", SenderID: "me", Content: "on my way", CreatedAt: now}
	s.Messages.Insert(temp)

	confirmed := models.ChatMessage{ID: "m9", GroupID: "g1", SenderID: "me", Content: "on my way", CreatedAt: now.Add(time.Second)}
	s.Append(confirmed)

	assert.Equal(t, []string{"m9"}, s.Messages.IDs(), "matching temp must be replaced, not duplicated")
}

func TestChatStoreNonInsertEventTriggersDebouncedReload(t *testing.T) {
	now := time.Now().UTC()
	api := &fakeChatAPI{pages: map[string]models.MessagePage{
		"": {Items: []models.ChatMessage{msg("m1", "u2", now.Add(-time.Minute))}, HasMore: false},
	}}
	feed := newFakeFeed()
	s := NewChatStore(api, "g1", "me", nil)
	require.NoError(t, s.Open(context.Background(), feed))

	// the edited row shows up on the next authoritative load
	edited := msg("m1", "u2", now.Add(-time.Minute))
	edited.Content = "edited"
	api.pages[""] = models.MessagePage{Items: []models.ChatMessage{edited}, HasMore: false}

	feed.push(models.ChangeEvent{Table: models.TableChatMessages, ScopeID: "g1", Type: models.EventUpdate})

	require.Eventually(t, func() bool {
		m, ok := s.Messages.Get("m1")
		return ok && m.Content == "edited"
	}, time.Second, 10*time.Millisecond)
}

func TestChatStoreSendRollsBackOnError(t *testing.T) {
	api := &fakeChatAPI{pages: map[string]models.MessagePage{}, sendErr: errors.New("muted")}
	s := NewChatStore(api, "g1", "me", nil)

	_, err := s.Send(context.Background(), "hello")
	require.Error(t, err)
	assert.Equal(t, 0, s.Messages.Len())
}

func TestChatStoreUnreadCountsOnlyOtherSenders(t *testing.T) {
	now := time.Now().UTC()
	api := &fakeChatAPI{pages: map[string]models.MessagePage{
		"": {Items: []models.ChatMessage{msg("m1", "u2", now.Add(-time.Minute))}, HasMore: false},
	}}
	tracker := state.NewUnreadTracker()
	s := NewChatStore(api, "g1", "me", tracker)
	require.NoError(t, s.Open(context.Background(), nil))
	require.Equal(t, 0, tracker.UnreadCount(), "initial load baselines")

	s.Append(msg("m2", "u2", now))
	assert.Equal(t, 1, tracker.UnreadCount())

	own := models.ChatMessage{ID: "m3", GroupID: "g1", SenderID: "me", Content: "mine", CreatedAt: now.Add(time.Second)}
	s.Append(own)
	assert.Equal(t, 1, tracker.UnreadCount(), "own messages never badge")

	s.MarkRead()
	assert.Equal(t, 0, tracker.UnreadCount())
}
