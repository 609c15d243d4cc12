package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"tripboard/internal/models"
)

var (
	ErrInviteNotFound = errors.New("invite not found")
	ErrInviteExists   = errors.New("invite already exists")
	ErrAlreadyFriends = errors.New("already friends")
	ErrNotFriends     = errors.New("not friends")
)

// FriendRepository abstracts friendship and invite persistence.
type FriendRepository interface {
	ListFriends(ctx context.Context, userID string) ([]models.Friend, error)
	ListIncoming(ctx context.Context, userID string) ([]models.FriendInvite, error)
	ListOutgoing(ctx context.Context, userID string) ([]models.FriendInvite, error)
	CreateInvite(ctx context.Context, inviterID, inviteeID string) (models.FriendInvite, error)
	GetInvite(ctx context.Context, inviteID string) (models.FriendInvite, error)
	AcceptInvite(ctx context.Context, inviteID string) error
	RejectInvite(ctx context.Context, inviteID string) error
	DeleteInvite(ctx context.Context, inviteID string) error
	RemoveFriend(ctx context.Context, userID, friendID string) error
	AreFriends(ctx context.Context, userID, friendID string) (bool, error)
}

// FriendRepo is a sqlx implementation of FriendRepository.
type FriendRepo struct {
	db *sqlx.DB
}

// NewFriendRepo constructs a FriendRepo.
func NewFriendRepo(db *sqlx.DB) *FriendRepo {
	return &FriendRepo{db: db}
}

// ListFriends returns the user's confirmed friends, newest friendship first.
func (r *FriendRepo) ListFriends(ctx context.Context, userID string) ([]models.Friend, error) {
	var friends []models.Friend
	query := `SELECT f.friend_id, u.username, u.avatar_url, f.created_at
        FROM friendships f JOIN users u ON u.id = f.friend_id
        WHERE f.user_id=$1
        ORDER BY f.created_at DESC, f.friend_id DESC`
	err := r.db.SelectContext(ctx, &friends, query, userID)
	return friends, err
}

// ListIncoming returns pending invites addressed to the user.
func (r *FriendRepo) ListIncoming(ctx context.Context, userID string) ([]models.FriendInvite, error) {
	var invites []models.FriendInvite
	query := `SELECT id, inviter_id, invitee_id, status, created_at FROM friend_invites
        WHERE invitee_id=$1 AND status='pending'
        ORDER BY created_at DESC, id DESC`
	err := r.db.SelectContext(ctx, &invites, query, userID)
	return invites, err
}

// ListOutgoing returns invites the user has sent, rejected ones included so
// the sender can see the outcome.
func (r *FriendRepo) ListOutgoing(ctx context.Context, userID string) ([]models.FriendInvite, error) {
	var invites []models.FriendInvite
	query := `SELECT id, inviter_id, invitee_id, status, created_at FROM friend_invites
        WHERE inviter_id=$1
        ORDER BY created_at DESC, id DESC`
	err := r.db.SelectContext(ctx, &invites, query, userID)
	return invites, err
}

// CreateInvite creates a pending invite unless one exists or the two users
// are already friends.
func (r *FriendRepo) CreateInvite(ctx context.Context, inviterID, inviteeID string) (models.FriendInvite, error) {
	friends, err := r.AreFriends(ctx, inviterID, inviteeID)
	if err != nil {
		return models.FriendInvite{}, err
	}
	if friends {
		return models.FriendInvite{}, ErrAlreadyFriends
	}

	var invite models.FriendInvite
	err = r.db.GetContext(ctx, &invite,
		`INSERT INTO friend_invites (inviter_id, invitee_id) VALUES ($1, $2)
         RETURNING id, inviter_id, invitee_id, status, created_at`, inviterID, inviteeID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return models.FriendInvite{}, ErrInviteExists
	}
	return invite, err
}

// GetInvite fetches an invite by id.
func (r *FriendRepo) GetInvite(ctx context.Context, inviteID string) (models.FriendInvite, error) {
	var invite models.FriendInvite
	err := r.db.GetContext(ctx, &invite,
		`SELECT id, inviter_id, invitee_id, status, created_at FROM friend_invites WHERE id=$1`, inviteID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.FriendInvite{}, ErrInviteNotFound
	}
	return invite, err
}

// AcceptInvite deletes the invite and records the friendship in both
// directions, atomically.
func (r *FriendRepo) AcceptInvite(ctx context.Context, inviteID string) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var invite models.FriendInvite
	err = tx.GetContext(ctx, &invite,
		`DELETE FROM friend_invites WHERE id=$1 AND status='pending'
         RETURNING id, inviter_id, invitee_id, status, created_at`, inviteID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrInviteNotFound
	}
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO friendships (user_id, friend_id) VALUES ($1, $2), ($2, $1)
         ON CONFLICT DO NOTHING`, invite.InviterID, invite.InviteeID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// RejectInvite marks a pending invite rejected.
func (r *FriendRepo) RejectInvite(ctx context.Context, inviteID string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE friend_invites SET status='rejected' WHERE id=$1 AND status='pending'`, inviteID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrInviteNotFound
	}
	return err
}

// DeleteInvite removes an invite, used when the inviter withdraws it.
func (r *FriendRepo) DeleteInvite(ctx context.Context, inviteID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM friend_invites WHERE id=$1`, inviteID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrInviteNotFound
	}
	return err
}

// RemoveFriend deletes the friendship in both directions.
func (r *FriendRepo) RemoveFriend(ctx context.Context, userID, friendID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM friendships WHERE (user_id=$1 AND friend_id=$2) OR (user_id=$2 AND friend_id=$1)`,
		userID, friendID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrNotFriends
	}
	return err
}

// AreFriends checks whether a confirmed friendship exists.
func (r *FriendRepo) AreFriends(ctx context.Context, userID, friendID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM friendships WHERE user_id=$1 AND friend_id=$2)`, userID, friendID)
	return exists, err
}
