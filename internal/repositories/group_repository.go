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
	ErrGroupNotFound  = errors.New("group not found")
	ErrMemberNotFound = errors.New("member not found")
	ErrMemberExists   = errors.New("member already exists")
)

// GroupRepository abstracts travel-group persistence.
type GroupRepository interface {
	CreateGroup(ctx context.Context, name, ownerID string) (models.Group, error)
	GetGroup(ctx context.Context, groupID string) (models.Group, error)
	RenameGroup(ctx context.Context, groupID, name string) (models.Group, error)
	ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error)
	AddMember(ctx context.Context, groupID, userID string) (models.GroupMember, error)
	RemoveMember(ctx context.Context, groupID, userID string) error
}

// GroupRepo is a sqlx implementation of GroupRepository.
type GroupRepo struct {
	db *sqlx.DB
}

// NewGroupRepo constructs a GroupRepo.
func NewGroupRepo(db *sqlx.DB) *GroupRepo {
	return &GroupRepo{db: db}
}

// CreateGroup creates a group and enrolls the owner, atomically.
func (r *GroupRepo) CreateGroup(ctx context.Context, name, ownerID string) (models.Group, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Group{}, err
	}
	defer tx.Rollback()

	var group models.Group
	err = tx.GetContext(ctx, &group,
		`INSERT INTO groups (name, owner_id) VALUES ($1, $2)
         RETURNING id, name, owner_id, created_at`, name, ownerID)
	if err != nil {
		return models.Group{}, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO group_members (group_id, user_id, role) VALUES ($1, $2, 'owner')`,
		group.ID, ownerID)
	if err != nil {
		return models.Group{}, err
	}
	return group, tx.Commit()
}

// GetGroup fetches a group by id.
func (r *GroupRepo) GetGroup(ctx context.Context, groupID string) (models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group,
		`SELECT id, name, owner_id, created_at FROM groups WHERE id=$1`, groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}

// RenameGroup updates the name and returns the updated row.
func (r *GroupRepo) RenameGroup(ctx context.Context, groupID, name string) (models.Group, error) {
	var group models.Group
	err := r.db.GetContext(ctx, &group,
		`UPDATE groups SET name=$2 WHERE id=$1 RETURNING id, name, owner_id, created_at`, groupID, name)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Group{}, ErrGroupNotFound
	}
	return group, err
}

// ListGroupsForUser returns the groups the user belongs to, newest first.
func (r *GroupRepo) ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	var groups []models.Group
	query := `SELECT g.id, g.name, g.owner_id, g.created_at
        FROM groups g JOIN group_members m ON m.group_id = g.id
        WHERE m.user_id=$1
        ORDER BY g.created_at DESC, g.id DESC`
	err := r.db.SelectContext(ctx, &groups, query, userID)
	return groups, err
}

// IsMember checks whether the user belongs to the group.
func (r *GroupRepo) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM group_members WHERE group_id=$1 AND user_id=$2)`, groupID, userID)
	return exists, err
}

// ListMembers returns the group's membership, oldest join first.
func (r *GroupRepo) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	var members []models.GroupMember
	query := `SELECT m.group_id, m.user_id, u.username, m.role, m.joined_at
        FROM group_members m JOIN users u ON u.id = m.user_id
        WHERE m.group_id=$1
        ORDER BY m.joined_at ASC, m.user_id ASC`
	err := r.db.SelectContext(ctx, &members, query, groupID)
	return members, err
}

// AddMember enrolls a user in the group.
func (r *GroupRepo) AddMember(ctx context.Context, groupID, userID string) (models.GroupMember, error) {
	var member models.GroupMember
	err := r.db.GetContext(ctx, &member,
		`WITH inserted AS (
            INSERT INTO group_members (group_id, user_id) VALUES ($1, $2)
            RETURNING group_id, user_id, role, joined_at
        )
        SELECT i.group_id, i.user_id, u.username, i.role, i.joined_at
        FROM inserted i JOIN users u ON u.id = i.user_id`, groupID, userID)
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code.Name() {
		case "unique_violation":
			return models.GroupMember{}, ErrMemberExists
		case "foreign_key_violation":
			return models.GroupMember{}, ErrGroupNotFound
		}
	}
	return member, err
}

// RemoveMember drops a user from the group.
func (r *GroupRepo) RemoveMember(ctx context.Context, groupID, userID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM group_members WHERE group_id=$1 AND user_id=$2`, groupID, userID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		return ErrMemberNotFound
	}
	return err
}
