package stores

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"tripboard/internal/models"
	"tripboard/internal/realtime"
	"tripboard/internal/state"
)

// DefaultPostPageSize is how many posts one board page requests.
const DefaultPostPageSize = 20

// BoardAPI is the backend surface the board store consumes.
type BoardAPI interface {
	ListPosts(ctx context.Context, groupID, cursor string, limit int) (models.PostPage, error)
	CreatePost(ctx context.Context, groupID, content string) (*models.BoardPost, error)
	DeletePost(ctx context.Context, postID string) error
	CreateComment(ctx context.Context, postID, content string) (*models.PostComment, error)
}

// BoardStore owns one group's board: cursor-paged posts newest first, each
// carrying its comments. One store per open board.
type BoardStore struct {
	api     BoardAPI
	groupID string
	selfID  string

	Posts *state.Collection[models.BoardPost]
	pager *state.Pager[models.BoardPost]

	debounce *state.Debouncer
	loads    *loadGuard
	unsubs   []func()
	log      *logrus.Entry
}

// NewBoardStore builds the store for one group's board.
func NewBoardStore(api BoardAPI, groupID, selfID string) *BoardStore {
	s := &BoardStore{
		api:      api,
		groupID:  groupID,
		selfID:   selfID,
		Posts:    state.NewCollection[models.BoardPost](state.NewestFirst[models.BoardPost]),
		debounce: state.NewDebouncer(0),
		loads:    newLoadGuard(),
		log:      logrus.WithFields(logrus.Fields{"store": "board", "group": groupID}),
	}
	s.pager = state.NewPager(func(ctx context.Context, cursor string, limit int) (state.Page[models.BoardPost], error) {
		page, err := s.api.ListPosts(ctx, s.groupID, cursor, limit)
		if err != nil {
			return state.Page[models.BoardPost]{}, err
		}
		return state.Page[models.BoardPost]{Items: page.Items, NextCursor: page.NextCursor, HasMore: page.HasMore}, nil
	}, DefaultPostPageSize)
	return s
}

// Open loads the first page and attaches post and comment subscriptions.
// Events of either table trigger one debounced authoritative refetch.
func (s *BoardStore) Open(ctx context.Context, feed Feed) error {
	if err := s.Refresh(ctx); err != nil {
		return err
	}
	if feed != nil && len(s.unsubs) == 0 {
		reload := func(models.ChangeEvent) {
			s.debounce.Schedule("board:"+s.groupID, func() {
				if err := s.Refresh(context.Background()); err != nil {
					s.log.WithError(err).Debug("feed-triggered refresh failed")
				}
			})
		}
		s.unsubs = append(s.unsubs,
			feed.Subscribe(realtime.Scope{Table: models.TableBoardPosts, ScopeID: s.groupID}, reload),
			feed.Subscribe(realtime.Scope{Table: models.TablePostComments, ScopeID: s.groupID}, reload),
		)
	}
	return nil
}

// Close detaches subscriptions and cancels pending work.
func (s *BoardStore) Close() {
	for _, unsub := range s.unsubs {
		unsub()
	}
	s.unsubs = nil
	s.debounce.Stop()
	s.loads.stop()
}

// Refresh rewinds to the first page and reconciles it against local state:
// the server page wins, unconfirmed optimistic posts survive.
func (s *BoardStore) Refresh(ctx context.Context) error {
	ctx, done := s.loads.begin(ctx, "board")
	defer done()

	s.pager.Reset()
	page, err := s.pager.NextPage(ctx)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	s.Posts.SetItems(state.MergeReplace(page.Items, s.Posts.Items(), s.Posts.Less(), matchPost))
	return nil
}

// LoadMore fetches the next page and unions it in by id. Posts already
// present keep their locally accrued comments merged with the incoming ones.
func (s *BoardStore) LoadMore(ctx context.Context) error {
	ctx, done := s.loads.begin(ctx, "board:more")
	defer done()

	page, err := s.pager.NextPage(ctx)
	if ctx.Err() != nil {
		return nil
	}
	if err != nil {
		return err
	}
	merged := state.MergeAppend(page.Items, s.Posts.Items(), s.Posts.Less(), func(old, incoming models.BoardPost) models.BoardPost {
		incoming.Comments = mergeComments(old.Comments, incoming.Comments)
		return incoming
	})
	s.Posts.SetItems(merged)
	return nil
}

// HasMore reports whether older posts remain.
func (s *BoardStore) HasMore() bool { return s.pager.HasMore() }

// matchPost pairs an in-flight optimistic post with its server row. The
// server id is unknown while the create is in flight, so author plus trimmed
// content plus time proximity stands in for it.
func matchPost(temp, server models.BoardPost) bool {
	return temp.AuthorID == server.AuthorID &&
		strings.TrimSpace(temp.Content) == strings.TrimSpace(server.Content) &&
		state.WithinMatchWindow(temp, server)
}

// mergeComments unions two comment lists by id, chronological. Comments
// present on both sides take the incoming row.
func mergeComments(old, incoming []models.PostComment) []models.PostComment {
	index := make(map[string]int, len(old))
	out := make([]models.PostComment, len(old))
	copy(out, old)
	for i, c := range out {
		index[c.ID] = i
	}
	for _, c := range incoming {
		if i, ok := index[c.ID]; ok {
			out[i] = c
			continue
		}
		index[c.ID] = len(out)
		out = append(out, c)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

// CreatePost publishes a post optimistically. Comments added to the pending
// post while the create is in flight are carried onto the confirmed post and
// then flushed to the backend.
func (s *BoardStore) CreatePost(ctx context.Context, content string) (models.BoardPost, error) {
	final, err := state.Mutation[models.BoardPost]{
		Collection: s.Posts,
		Optimistic: func() models.BoardPost {
			return models.BoardPost{
				ID:        state.NewTempID("post"),
				GroupID:   s.groupID,
				AuthorID:  s.selfID,
				Content:   content,
				CreatedAt: time.Now().UTC(),
			}
		},
		Call: func(ctx context.Context) (*models.BoardPost, error) {
			return s.api.CreatePost(ctx, s.groupID, content)
		},
		Carry: func(local, confirmed models.BoardPost) models.BoardPost {
			confirmed.Comments = mergeComments(local.Comments, confirmed.Comments)
			return confirmed
		},
	}.Do(ctx)
	if err != nil {
		return models.BoardPost{}, err
	}
	s.flushPendingComments(ctx, final.ID)
	final, _ = s.Posts.Get(final.ID)
	return final, nil
}

// flushPendingComments sends comments that were queued on the post while it
// was still temporary.
func (s *BoardStore) flushPendingComments(ctx context.Context, postID string) {
	post, ok := s.Posts.Get(postID)
	if !ok {
		return
	}
	for _, c := range post.Comments {
		if !state.IsTempID(c.ID) {
			continue
		}
		confirmed, err := s.api.CreateComment(ctx, postID, c.Content)
		if err != nil {
			s.log.WithError(err).Debug("queued comment flush failed")
			s.removeComment(postID, c.ID)
			continue
		}
		s.replaceComment(postID, c.ID, *confirmed)
	}
}

// CreateComment adds a comment optimistically. Commenting on a post that is
// itself still in flight queues the comment locally; it is flushed once the
// post confirms.
func (s *BoardStore) CreateComment(ctx context.Context, postID, content string) (models.PostComment, error) {
	temp := models.PostComment{
		ID:        state.NewTempID("comment"),
		PostID:    postID,
		AuthorID:  s.selfID,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	if !s.appendComment(postID, temp) {
		return models.PostComment{}, ErrPostGone
	}
	if state.IsTempID(postID) {
		return temp, nil
	}

	confirmed, err := s.api.CreateComment(ctx, postID, content)
	if err == nil && ctx.Err() != nil {
		err = ctx.Err()
	}
	if err != nil {
		s.removeComment(postID, temp.ID)
		return models.PostComment{}, err
	}
	s.replaceComment(postID, temp.ID, *confirmed)
	return *confirmed, nil
}

// DeletePost removes a post, restoring the board verbatim on failure.
func (s *BoardStore) DeletePost(ctx context.Context, postID string) error {
	return state.SnapshotMutation(ctx, s.Posts,
		func() { s.Posts.Remove(postID) },
		func(ctx context.Context) error { return s.api.DeletePost(ctx, postID) },
	)
}

func (s *BoardStore) appendComment(postID string, c models.PostComment) bool {
	return s.Posts.Update(postID, func(p models.BoardPost) models.BoardPost {
		p.Comments = mergeComments(p.Comments, []models.PostComment{c})
		return p
	})
}

func (s *BoardStore) removeComment(postID, commentID string) {
	s.Posts.Update(postID, func(p models.BoardPost) models.BoardPost {
		out := p.Comments[:0:0]
		for _, c := range p.Comments {
			if c.ID != commentID {
				out = append(out, c)
			}
		}
		p.Comments = out
		return p
	})
}

func (s *BoardStore) replaceComment(postID, commentID string, replacement models.PostComment) {
	s.Posts.Update(postID, func(p models.BoardPost) models.BoardPost {
		for i, c := range p.Comments {
			if c.ID == commentID {
				p.Comments[i] = replacement
				return p
			}
		}
		p.Comments = mergeComments(p.Comments, []models.PostComment{replacement})
		return p
	})
}
