package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"tripboard/internal/models"
	"tripboard/internal/state"
)

var (
	ErrPostNotFound    = errors.New("post not found")
	ErrCommentNotFound = errors.New("comment not found")
)

// DefaultPageLimit caps page sizes when the caller asks for nothing sane.
const DefaultPageLimit = 20

// MaxPageLimit is the hard ceiling on one page.
const MaxPageLimit = 100

// BoardRepository abstracts board-post and comment persistence.
type BoardRepository interface {
	ListPosts(ctx context.Context, groupID string, cursor state.Cursor, limit int) ([]models.BoardPost, bool, error)
	CreatePost(ctx context.Context, groupID, authorID, content string) (models.BoardPost, error)
	GetPost(ctx context.Context, postID string) (models.BoardPost, error)
	DeletePost(ctx context.Context, postID, authorID string) error
	ListComments(ctx context.Context, postID string) ([]models.PostComment, error)
	CreateComment(ctx context.Context, postID, authorID, content string) (models.PostComment, error)
}

// BoardRepo is a sqlx implementation of BoardRepository.
type BoardRepo struct {
	db *sqlx.DB
}

// NewBoardRepo constructs a BoardRepo.
func NewBoardRepo(db *sqlx.DB) *BoardRepo {
	return &BoardRepo{db: db}
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return DefaultPageLimit
	}
	if limit > MaxPageLimit {
		return MaxPageLimit
	}
	return limit
}

// ListPosts returns one page of a group's board, newest first, with comments
// attached. It fetches limit+1 rows and trims: the extra row is how hasMore
// is decided without a count query.
func (r *BoardRepo) ListPosts(ctx context.Context, groupID string, cursor state.Cursor, limit int) ([]models.BoardPost, bool, error) {
	limit = clampLimit(limit)

	var posts []models.BoardPost
	var err error
	if cursor.ID == "" {
		query := `SELECT id, group_id, author_id, content, created_at FROM board_posts
            WHERE group_id=$1
            ORDER BY created_at DESC, id DESC LIMIT $2`
		err = r.db.SelectContext(ctx, &posts, query, groupID, limit+1)
	} else {
		query := `SELECT id, group_id, author_id, content, created_at FROM board_posts
            WHERE group_id=$1 AND (created_at, id) < ($2, $3::uuid)
            ORDER BY created_at DESC, id DESC LIMIT $4`
		err = r.db.SelectContext(ctx, &posts, query, groupID, cursor.CreatedAt, cursor.ID, limit+1)
	}
	if err != nil {
		return nil, false, err
	}

	hasMore := len(posts) > limit
	if hasMore {
		posts = posts[:limit]
	}
	if err := r.attachComments(ctx, posts); err != nil {
		return nil, false, err
	}
	return posts, hasMore, nil
}

func (r *BoardRepo) attachComments(ctx context.Context, posts []models.BoardPost) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]string, len(posts))
	index := make(map[string]int, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		index[p.ID] = i
	}

	query, args, err := sqlx.In(`SELECT id, post_id, author_id, content, created_at FROM post_comments
        WHERE post_id IN (?) ORDER BY created_at ASC, id ASC`, ids)
	if err != nil {
		return err
	}
	var comments []models.PostComment
	if err := r.db.SelectContext(ctx, &comments, r.db.Rebind(query), args...); err != nil {
		return err
	}
	for _, c := range comments {
		i := index[c.PostID]
		posts[i].Comments = append(posts[i].Comments, c)
	}
	return nil
}

// CreatePost publishes a post to the group's board.
func (r *BoardRepo) CreatePost(ctx context.Context, groupID, authorID, content string) (models.BoardPost, error) {
	var post models.BoardPost
	err := r.db.GetContext(ctx, &post,
		`INSERT INTO board_posts (group_id, author_id, content) VALUES ($1, $2, $3)
         RETURNING id, group_id, author_id, content, created_at`, groupID, authorID, content)
	return post, err
}

// GetPost fetches a post by id, comments included.
func (r *BoardRepo) GetPost(ctx context.Context, postID string) (models.BoardPost, error) {
	var post models.BoardPost
	err := r.db.GetContext(ctx, &post,
		`SELECT id, group_id, author_id, content, created_at FROM board_posts WHERE id=$1`, postID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.BoardPost{}, ErrPostNotFound
	}
	if err != nil {
		return models.BoardPost{}, err
	}
	comments, err := r.ListComments(ctx, postID)
	if err != nil {
		return models.BoardPost{}, err
	}
	post.Comments = comments
	return post, nil
}

// DeletePost removes a post if the caller authored it.
func (r *BoardRepo) DeletePost(ctx context.Context, postID, authorID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM board_posts WHERE id=$1 AND author_id=$2`, postID, authorID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrPostNotFound
	}
	return err
}

// ListComments returns a post's comments, oldest first.
func (r *BoardRepo) ListComments(ctx context.Context, postID string) ([]models.PostComment, error) {
	var comments []models.PostComment
	query := `SELECT id, post_id, author_id, content, created_at FROM post_comments
        WHERE post_id=$1 ORDER BY created_at ASC, id ASC`
	err := r.db.SelectContext(ctx, &comments, query, postID)
	return comments, err
}

// CreateComment adds a comment to a post.
func (r *BoardRepo) CreateComment(ctx context.Context, postID, authorID, content string) (models.PostComment, error) {
	var comment models.PostComment
	err := r.db.GetContext(ctx, &comment,
		`INSERT INTO post_comments (post_id, author_id, content) VALUES ($1, $2, $3)
         RETURNING id, post_id, author_id, content, created_at`, postID, authorID, content)
	return comment, err
}
