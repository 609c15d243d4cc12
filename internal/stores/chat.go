package stores

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tripboard/internal/models"
	"tripboard/internal/realtime"
	"tripboard/internal/state"
)

// DefaultMessagePageSize is how many messages one chat page requests.
const DefaultMessagePageSize = 50

// ChatAPI is the backend surface the chat store consumes.
type ChatAPI interface {
	ListMessages(ctx context.Context, groupID, cursor string, limit int) (models.MessagePage, error)
	PostMessage(ctx context.Context, groupID, content string) (*models.ChatMessage, error)
}

// ChatStore owns one group's chat: chronological messages, paged backward
// through history. Unlike every other domain, INSERT feed events append their
// payload straight into the collection instead of triggering a refetch, so a
// message round-trips to the screen without an extra request. All other
// event types fall back to the usual debounced reload.
type ChatStore struct {
	api     ChatAPI
	groupID string
	selfID  string

	Messages *state.Collection[models.ChatMessage]
	pager    *state.Pager[models.ChatMessage]
	tracker  *state.UnreadTracker

	debounce *state.Debouncer
	loads    *loadGuard
	unsub    func()
	log      *logrus.Entry
}

// NewChatStore builds the store for one group's chat. The tracker is the
// group's unread tracker, usually shared with the group store; nil disables
// unread accounting.
func NewChatStore(api ChatAPI, groupID, selfID string, tracker *state.UnreadTracker) *ChatStore {
	s := &ChatStore{
		api:      api,
		groupID:  groupID,
		selfID:   selfID,
		Messages: state.NewCollection[models.ChatMessage](state.OldestFirst[models.ChatMessage]),
		tracker:  tracker,
		debounce: state.NewDebouncer(0),
		loads:    newLoadGuard(),
		log:      logrus.WithFields(logrus.Fields{"store": "chat", "group": groupID}),
	}
	s.pager = state.NewPager(func(ctx context.Context, cursor string, limit int) (state.Page[models.ChatMessage], error) {
		page, err := s.api.ListMessages(ctx, s.groupID, cursor, limit)
		if err != nil {
			return state.Page[models.ChatMessage]{}, err
		}
		return state.Page[models.ChatMessage]{Items: page.Items, NextCursor: page.NextCursor, HasMore: page.HasMore}, nil
	}, DefaultMessagePageSize)
	return s
}

// Open loads the newest page and attaches the change-feed subscription.
func (s *ChatStore) Open(ctx context.Context, feed Feed) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	if feed != nil && s.unsub == nil {
		scope := realtime.Scope{Table: models.TableChatMessages, ScopeID: s.groupID}
		s.unsub = feed.Subscribe(scope, s.onEvent)
	}
	return nil
}

// Close detaches the subscription and cancels pending work.
func (s *ChatStore) Close() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	s.debounce.Stop()
	s.loads.stop()
}

func (s *ChatStore) onEvent(ev models.ChangeEvent) {
	if ev.Type != models.EventInsert {
		s.debounce.Schedule("chat:"+s.groupID, func() {
			if err := s.Refresh(context.Background()); err != nil {
				s.log.WithError(err).Debug("feed-triggered refresh failed")
			}
		})
		return
	}

	var msg models.ChatMessage
	if err := json.Unmarshal(ev.New, &msg); err != nil || msg.ID == "" {
		s.log.WithError(err).Debug("unparseable insert payload, falling back to reload")
		s.debounce.Schedule("chat:"+s.groupID, func() {
			if err := s.Refresh(context.Background()); err != nil {
				s.log.WithError(err).Debug("feed-triggered refresh failed")
			}
		})
		return
	}
	s.Append(msg)
}

// Append folds one confirmed message into the collection: already-present
// ids are ignored, a matching optimistic temp is replaced in place, anything
// else is inserted at its chronological position. Messages from other
// senders count as unread.
func (s *ChatStore) Append(msg models.ChatMessage) {
	if _, ok := s.Messages.Get(msg.ID); ok {
		return
	}
	replaced := false
	for _, existing := range s.Messages.Items() {
		if state.IsTempID(existing.ID) && matchMessage(existing, msg) {
			replaced = s.Messages.Replace(existing.ID, msg)
			break
		}
	}
	if !replaced {
		s.Messages.Insert(msg)
	}
	if msg.SenderID == s.selfID {
		s.observeWithoutBadging()
	} else {
		s.observeBadging()
	}
}

// The two observe helpers always feed the collection's full id set into the
// shared group tracker. A Refresh evicts paged-out history from the known
// set, so a later LoadOlder re-observes those ids as "new" — that path goes
// through observeWithoutBadging, which marks them read in the same step, so
// eviction plus re-observe can never badge old history.

// observeBadging folds the current ids into the tracker; unknown ids from
// other senders become unread.
func (s *ChatStore) observeBadging() {
	if s.tracker != nil {
		s.tracker.Observe(s.Messages.IDs())
	}
}

// observeWithoutBadging makes the current ids known without marking any of
// them unread, for own messages and history pages.
func (s *ChatStore) observeWithoutBadging() {
	if s.tracker == nil {
		return
	}
	if newly := s.tracker.Observe(s.Messages.IDs()); len(newly) > 0 {
		s.tracker.MarkRead(newly...)
	}
}

func matchMessage(temp, server models.ChatMessage) bool {
	return temp.SenderID == server.SenderID &&
		strings.TrimSpace(temp.Content) == strings.TrimSpace(server.Content) &&
		state.WithinMatchWindow(temp, server)
}

// Refresh rewinds to the newest page and reconciles it against local state.
func (s *ChatStore) Refresh(ctx context.Context) error {
	ctx, done := s.loads.begin(ctx, "chat")
	defer done()

	s.pager.Reset()
	page, err := s.pager.NextPage(ctx)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	s.Messages.SetItems(state.MergeReplace(page.Items, s.Messages.Items(), s.Messages.Less(), matchMessage))
	s.observeBadging()
	return nil
}

// LoadOlder fetches the next page of history and unions it in by id. History
// never counts as unread.
func (s *ChatStore) LoadOlder(ctx context.Context) error {
	ctx, done := s.loads.begin(ctx, "chat:older")
	defer done()

	page, err := s.pager.NextPage(ctx)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	s.Messages.SetItems(state.MergeAppend(page.Items, s.Messages.Items(), s.Messages.Less(), nil))
	s.observeWithoutBadging()
	return nil
}

// HasMore reports whether older history remains.
func (s *ChatStore) HasMore() bool { return s.pager.HasMore() }

// Send posts a message optimistically; the confirmed row replaces the temp
// in place, or the INSERT event arriving first reconciles it via Append.
func (s *ChatStore) Send(ctx context.Context, content string) (models.ChatMessage, error) {
	confirmed, err := state.Mutation[models.ChatMessage]{
		Collection: s.Messages,
		Optimistic: func() models.ChatMessage {
			return models.ChatMessage{
				ID:        state.NewTempID("msg"),
				GroupID:   s.groupID,
				SenderID:  s.selfID,
				Content:   content,
				CreatedAt: time.Now().UTC(),
			}
		},
		Call: func(ctx context.Context) (*models.ChatMessage, error) {
			return s.api.PostMessage(ctx, s.groupID, content)
		},
	}.Do(ctx)
	if err != nil {
		return models.ChatMessage{}, err
	}
	s.observeWithoutBadging()
	return confirmed, nil
}

// MarkRead clears the group's chat badge.
func (s *ChatStore) MarkRead() {
	if s.tracker != nil {
		s.tracker.MarkRead()
	}
}
