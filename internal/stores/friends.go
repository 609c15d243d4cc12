package stores

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"tripboard/internal/models"
	"tripboard/internal/realtime"
	"tripboard/internal/state"
)

// Relation is the computed relationship between the current user and another
// user, as shown on profile and search surfaces.
type Relation string

const (
	RelationNone            Relation = "none"
	RelationOutgoingPending Relation = "outgoing_pending"
	RelationIncomingPending Relation = "incoming_pending"
	RelationFriends         Relation = "friends"
	RelationRejected        Relation = "rejected"
	// RelationExcluded marks users no relationship can be formed with, i.e.
	// the current user themselves.
	RelationExcluded Relation = "excluded"
)

// FriendAPI is the backend surface the friend store consumes.
type FriendAPI interface {
	ListFriends(ctx context.Context) ([]models.Friend, error)
	ListIncomingInvites(ctx context.Context) ([]models.FriendInvite, error)
	ListOutgoingInvites(ctx context.Context) ([]models.FriendInvite, error)
	SendInvite(ctx context.Context, inviteeID string) (*models.FriendInvite, error)
	AcceptInvite(ctx context.Context, inviteID string) error
	RejectInvite(ctx context.Context, inviteID string) error
	CancelInvite(ctx context.Context, inviteID string) error
	RemoveFriend(ctx context.Context, friendID string) error
}

// FriendStore owns the friends list and both invite directions, and keeps
// them current over the change feed.
type FriendStore struct {
	api    FriendAPI
	selfID string

	Friends  *state.Collection[models.Friend]
	Incoming *state.Collection[models.FriendInvite]
	Outgoing *state.Collection[models.FriendInvite]

	debounce *state.Debouncer
	loads    *loadGuard
	unsub    func()
	log      *logrus.Entry
}

// NewFriendStore builds the store for the given user.
func NewFriendStore(api FriendAPI, selfID string) *FriendStore {
	return &FriendStore{
		api:      api,
		selfID:   selfID,
		Friends:  state.NewCollection[models.Friend](state.NewestFirst[models.Friend]),
		Incoming: state.NewCollection[models.FriendInvite](state.NewestFirst[models.FriendInvite]),
		Outgoing: state.NewCollection[models.FriendInvite](state.NewestFirst[models.FriendInvite]),
		debounce: state.NewDebouncer(0),
		loads:    newLoadGuard(),
		log:      logrus.WithField("store", "friends"),
	}
}

// Start loads all three lists and attaches the change-feed subscription.
func (s *FriendStore) Start(ctx context.Context, feed Feed) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	if feed != nil && s.unsub == nil {
		scope := realtime.Scope{Table: models.TableFriends, ScopeID: s.selfID}
		s.unsub = feed.Subscribe(scope, func(models.ChangeEvent) {
			s.debounce.Schedule("friends", func() {
				if err := s.Refresh(context.Background()); err != nil {
					s.log.WithError(err).Debug("feed-triggered refresh failed")
				}
			})
		})
	}
	return nil
}

// Close detaches the subscription and cancels pending work.
func (s *FriendStore) Close() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
	s.debounce.Stop()
	s.loads.stop()
}

// Refresh refetches friends and both invite directions. In-flight optimistic
// invites survive the merge until the server page confirms them.
func (s *FriendStore) Refresh(ctx context.Context) error {
	if err := s.reloadFriends(ctx); err != nil {
		return err
	}
	return s.reloadInvites(ctx)
}

func (s *FriendStore) reloadFriends(ctx context.Context) error {
	ctx, done := s.loads.begin(ctx, "friends")
	defer done()
	items, err := s.api.ListFriends(ctx)
	if ctx.Err() != nil {
		return nil // superseded, drop silently
	}
	if err != nil {
		return err
	}
	s.Friends.SetItems(items)
	return nil
}

func (s *FriendStore) reloadInvites(ctx context.Context) error {
	ctx, done := s.loads.begin(ctx, "invites")
	defer done()

	incoming, err := s.api.ListIncomingInvites(ctx)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	outgoing, err := s.api.ListOutgoingInvites(ctx)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}

	s.Incoming.SetItems(incoming)
	s.Outgoing.SetItems(state.MergeReplace(outgoing, s.Outgoing.Items(), s.Outgoing.Less(), matchInvite))
	return nil
}

// matchInvite pairs an in-flight optimistic invite with its server row.
func matchInvite(temp, server models.FriendInvite) bool {
	return temp.InviteeID == server.InviteeID && state.WithinMatchWindow(temp, server)
}

// SendInvite creates an invite optimistically; on failure the temp entry is
// rolled back and the error surfaced.
func (s *FriendStore) SendInvite(ctx context.Context, inviteeID string) (models.FriendInvite, error) {
	return state.Mutation[models.FriendInvite]{
		Collection: s.Outgoing,
		Optimistic: func() models.FriendInvite {
			return models.FriendInvite{
				ID:        state.NewTempID("invite"),
				InviterID: s.selfID,
				InviteeID: inviteeID,
				Status:    models.InvitePending,
				CreatedAt: time.Now().UTC(),
			}
		},
		Call: func(ctx context.Context) (*models.FriendInvite, error) {
			return s.api.SendInvite(ctx, inviteeID)
		},
	}.Do(ctx)
}

// Accept accepts an incoming invite. The endpoint confirms nothing, so on
// success both the friends list and the invite lists are refetched.
func (s *FriendStore) Accept(ctx context.Context, inviteID string) error {
	err := state.SnapshotMutation(ctx, s.Incoming,
		func() { s.Incoming.Remove(inviteID) },
		func(ctx context.Context) error { return s.api.AcceptInvite(ctx, inviteID) },
	)
	if err != nil {
		return err
	}
	if err := s.reloadFriends(ctx); err != nil {
		s.log.WithError(err).Debug("post-accept friends reload failed")
	}
	if err := s.reloadInvites(ctx); err != nil {
		s.log.WithError(err).Debug("post-accept invites reload failed")
	}
	return nil
}

// Reject declines an incoming invite.
func (s *FriendStore) Reject(ctx context.Context, inviteID string) error {
	return state.SnapshotMutation(ctx, s.Incoming,
		func() { s.Incoming.Remove(inviteID) },
		func(ctx context.Context) error { return s.api.RejectInvite(ctx, inviteID) },
	)
}

// Cancel withdraws an outgoing invite.
func (s *FriendStore) Cancel(ctx context.Context, inviteID string) error {
	return state.SnapshotMutation(ctx, s.Outgoing,
		func() { s.Outgoing.Remove(inviteID) },
		func(ctx context.Context) error { return s.api.CancelInvite(ctx, inviteID) },
	)
}

// RemoveFriend severs a friendship.
func (s *FriendStore) RemoveFriend(ctx context.Context, friendID string) error {
	return state.SnapshotMutation(ctx, s.Friends,
		func() { s.Friends.Remove(friendID) },
		func(ctx context.Context) error { return s.api.RemoveFriend(ctx, friendID) },
	)
}

// RelationTo projects the relationship to the given user from the current
// lists. It is recomputed on every call and never cached, so it can not
// drift from the collections it is derived from.
func (s *FriendStore) RelationTo(userID string) Relation {
	if userID == s.selfID {
		return RelationExcluded
	}
	if _, ok := s.Friends.Get(userID); ok {
		return RelationFriends
	}
	for _, inv := range s.Incoming.Items() {
		if inv.InviterID == userID && inv.Status == models.InvitePending {
			return RelationIncomingPending
		}
	}
	for _, inv := range s.Outgoing.Items() {
		if inv.InviteeID != userID {
			continue
		}
		switch inv.Status {
		case models.InvitePending:
			return RelationOutgoingPending
		case models.InviteRejected:
			return RelationRejected
		}
	}
	return RelationNone
}
