package stores

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"tripboard/internal/models"
	"tripboard/internal/realtime"
	"tripboard/internal/state"
)

// GroupAPI is the backend surface the group store consumes.
type GroupAPI interface {
	ListGroups(ctx context.Context) ([]models.Group, error)
	CreateGroup(ctx context.Context, name string) (*models.Group, error)
	RenameGroup(ctx context.Context, groupID, name string) (*models.Group, error)
	LeaveGroup(ctx context.Context, groupID string) error
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)
	AddMember(ctx context.Context, groupID, userID string) (*models.GroupMember, error)
	RemoveMember(ctx context.Context, groupID, userID string) error
}

// GroupStore owns the caller's group list, per-group membership, and the
// per-group unread trackers that aggregate badges roll up from.
type GroupStore struct {
	api    GroupAPI
	selfID string

	Groups *state.Collection[models.Group]

	mu      sync.Mutex
	members map[string]*state.Collection[models.GroupMember]
	unread  map[string]*state.UnreadTracker

	debounce *state.Debouncer
	loads    *loadGuard
	unsubs   []func()
	log      *logrus.Entry
}

// NewGroupStore builds the store for the given user.
func NewGroupStore(api GroupAPI, selfID string) *GroupStore {
	return &GroupStore{
		api:      api,
		selfID:   selfID,
		Groups:   state.NewCollection[models.Group](state.NewestFirst[models.Group]),
		members:  make(map[string]*state.Collection[models.GroupMember]),
		unread:   make(map[string]*state.UnreadTracker),
		debounce: state.NewDebouncer(0),
		loads:    newLoadGuard(),
		log:      logrus.WithField("store", "groups"),
	}
}

// Start loads the group list and attaches the change-feed subscription.
func (s *GroupStore) Start(ctx context.Context, feed Feed) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	if feed != nil {
		scope := realtime.Scope{Table: models.TableGroups, ScopeID: s.selfID}
		s.unsubs = append(s.unsubs, feed.Subscribe(scope, func(models.ChangeEvent) {
			s.debounce.Schedule("groups", func() {
				if err := s.Refresh(context.Background()); err != nil {
					s.log.WithError(err).Debug("feed-triggered refresh failed")
				}
			})
		}))
	}
	return nil
}

// Close detaches subscriptions and cancels pending work.
func (s *GroupStore) Close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	s.debounce.Stop()
	s.loads.stop()
}

// Refresh refetches the group list, keeping in-flight optimistic creates.
func (s *GroupStore) Refresh(ctx context.Context) error {
	ctx, done := s.loads.begin(ctx, "groups")
	defer done()
	items, err := s.api.ListGroups(ctx)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	s.Groups.SetItems(state.MergeReplace(items, s.Groups.Items(), s.Groups.Less(), matchGroup))
	return nil
}

func matchGroup(temp, server models.Group) bool {
	return temp.OwnerID == server.OwnerID && temp.Name == server.Name && state.WithinMatchWindow(temp, server)
}

// Members returns the membership collection for a group, creating it empty
// on first use.
func (s *GroupStore) Members(groupID string) *state.Collection[models.GroupMember] {
	s.mu.Lock()
	defer s.mu.Unlock()
	col, ok := s.members[groupID]
	if !ok {
		col = state.NewCollection[models.GroupMember](state.OldestFirst[models.GroupMember])
		s.members[groupID] = col
	}
	return col
}

// LoadMembers refetches a group's membership and subscribes it to the feed.
func (s *GroupStore) LoadMembers(ctx context.Context, groupID string, feed Feed) error {
	ctx, done := s.loads.begin(ctx, "members:"+groupID)
	defer done()
	items, err := s.api.ListMembers(ctx, groupID)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	s.Members(groupID).SetItems(items)

	if feed != nil {
		scope := realtime.Scope{Table: models.TableGroupMembers, ScopeID: groupID}
		s.unsubs = append(s.unsubs, feed.Subscribe(scope, func(models.ChangeEvent) {
			s.debounce.Schedule("members:"+groupID, func() {
				if err := s.LoadMembers(context.Background(), groupID, nil); err != nil {
					s.log.WithError(err).Debug("feed-triggered member reload failed")
				}
			})
		}))
	}
	return nil
}

// Create creates a group optimistically.
func (s *GroupStore) Create(ctx context.Context, name string) (models.Group, error) {
	return state.Mutation[models.Group]{
		Collection: s.Groups,
		Optimistic: func() models.Group {
			return models.Group{
				ID:        state.NewTempID("group"),
				Name:      name,
				OwnerID:   s.selfID,
				CreatedAt: time.Now().UTC(),
			}
		},
		Call: func(ctx context.Context) (*models.Group, error) {
			return s.api.CreateGroup(ctx, name)
		},
	}.Do(ctx)
}

// Rename applies the new name locally, restores the previous list verbatim
// if the call fails, and folds in the server row on success.
func (s *GroupStore) Rename(ctx context.Context, groupID, name string) error {
	var updated *models.Group
	err := state.SnapshotMutation(ctx, s.Groups,
		func() {
			s.Groups.Update(groupID, func(g models.Group) models.Group {
				g.Name = name
				return g
			})
		},
		func(ctx context.Context) error {
			var err error
			updated, err = s.api.RenameGroup(ctx, groupID, name)
			return err
		},
	)
	if err != nil {
		return err
	}
	if updated != nil {
		s.Groups.Replace(groupID, *updated)
	}
	return nil
}

// Leave removes the caller from the group, rolling back if the call fails.
func (s *GroupStore) Leave(ctx context.Context, groupID string) error {
	err := state.SnapshotMutation(ctx, s.Groups,
		func() { s.Groups.Remove(groupID) },
		func(ctx context.Context) error { return s.api.LeaveGroup(ctx, groupID) },
	)
	if err != nil {
		return err
	}
	s.Tracker(groupID).MarkRead()
	return nil
}

// AddMember inserts the member optimistically and restores the list verbatim
// on failure. The optimistic row carries the real user id, so a conflicting
// add (the user is already in the collection) must not let a rollback-by-id
// erase the pre-existing row.
func (s *GroupStore) AddMember(ctx context.Context, groupID, userID, username string) (models.GroupMember, error) {
	col := s.Members(groupID)
	var confirmed *models.GroupMember
	err := state.SnapshotMutation(ctx, col,
		func() {
			col.Insert(models.GroupMember{
				GroupID:  groupID,
				UserID:   userID,
				Username: username,
				Role:     models.RoleMember,
				JoinedAt: time.Now().UTC(),
			})
		},
		func(ctx context.Context) error {
			var err error
			confirmed, err = s.api.AddMember(ctx, groupID, userID)
			return err
		},
	)
	if err != nil {
		return models.GroupMember{}, err
	}
	if confirmed != nil {
		col.Replace(userID, *confirmed)
	}
	member, _ := col.Get(userID)
	return member, nil
}

// RemoveMember removes a member, restoring the list verbatim on failure.
func (s *GroupStore) RemoveMember(ctx context.Context, groupID, userID string) error {
	col := s.Members(groupID)
	return state.SnapshotMutation(ctx, col,
		func() { col.Remove(userID) },
		func(ctx context.Context) error { return s.api.RemoveMember(ctx, groupID, userID) },
	)
}

// Tracker returns the unread tracker for a group, creating it on first use.
func (s *GroupStore) Tracker(groupID string) *state.UnreadTracker {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.unread[groupID]
	if !ok {
		t = state.NewUnreadTracker()
		s.unread[groupID] = t
	}
	return t
}

// GroupUnread is the badge count for one group.
func (s *GroupStore) GroupUnread(groupID string) int {
	return s.Tracker(groupID).UnreadCount()
}

// MarkGroupRead clears a group's badge.
func (s *GroupStore) MarkGroupRead(groupID string) {
	s.Tracker(groupID).MarkRead()
}

// TotalUnread sums every group's unread set. The aggregate is always derived
// from the per-group sets, never maintained as its own counter.
func (s *GroupStore) TotalUnread() int {
	s.mu.Lock()
	trackers := make([]*state.UnreadTracker, 0, len(s.unread))
	for _, t := range s.unread {
		trackers = append(trackers, t)
	}
	s.mu.Unlock()
	return state.TotalUnread(trackers...)
}
