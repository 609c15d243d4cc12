package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"tripboard/internal/models"
	"tripboard/internal/state"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) CreateUser(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, id string) (models.User, error) {
	args := m.Called(ctx, id)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) CreateSession(ctx context.Context, userID string, ttl time.Duration) (models.Session, error) {
	args := m.Called(ctx, userID, ttl)
	var session models.Session
	if val := args.Get(0); val != nil {
		session = val.(models.Session)
	}
	return session, args.Error(1)
}

func (m *UserRepositoryMock) GetSession(ctx context.Context, token string) (models.Session, error) {
	args := m.Called(ctx, token)
	var session models.Session
	if val := args.Get(0); val != nil {
		session = val.(models.Session)
	}
	return session, args.Error(1)
}

type FriendRepositoryMock struct {
	mock.Mock
}

func (m *FriendRepositoryMock) ListFriends(ctx context.Context, userID string) ([]models.Friend, error) {
	args := m.Called(ctx, userID)
	var list []models.Friend
	if val := args.Get(0); val != nil {
		list = val.([]models.Friend)
	}
	return list, args.Error(1)
}

func (m *FriendRepositoryMock) ListIncoming(ctx context.Context, userID string) ([]models.FriendInvite, error) {
	args := m.Called(ctx, userID)
	var list []models.FriendInvite
	if val := args.Get(0); val != nil {
		list = val.([]models.FriendInvite)
	}
	return list, args.Error(1)
}

func (m *FriendRepositoryMock) ListOutgoing(ctx context.Context, userID string) ([]models.FriendInvite, error) {
	args := m.Called(ctx, userID)
	var list []models.FriendInvite
	if val := args.Get(0); val != nil {
		list = val.([]models.FriendInvite)
	}
	return list, args.Error(1)
}

func (m *FriendRepositoryMock) CreateInvite(ctx context.Context, inviterID, inviteeID string) (models.FriendInvite, error) {
	args := m.Called(ctx, inviterID, inviteeID)
	var invite models.FriendInvite
	if val := args.Get(0); val != nil {
		invite = val.(models.FriendInvite)
	}
	return invite, args.Error(1)
}

func (m *FriendRepositoryMock) GetInvite(ctx context.Context, inviteID string) (models.FriendInvite, error) {
	args := m.Called(ctx, inviteID)
	var invite models.FriendInvite
	if val := args.Get(0); val != nil {
		invite = val.(models.FriendInvite)
	}
	return invite, args.Error(1)
}

func (m *FriendRepositoryMock) AcceptInvite(ctx context.Context, inviteID string) error {
	args := m.Called(ctx, inviteID)
	return args.Error(0)
}

func (m *FriendRepositoryMock) RejectInvite(ctx context.Context, inviteID string) error {
	args := m.Called(ctx, inviteID)
	return args.Error(0)
}

func (m *FriendRepositoryMock) DeleteInvite(ctx context.Context, inviteID string) error {
	args := m.Called(ctx, inviteID)
	return args.Error(0)
}

func (m *FriendRepositoryMock) RemoveFriend(ctx context.Context, userID, friendID string) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *FriendRepositoryMock) AreFriends(ctx context.Context, userID, friendID string) (bool, error) {
	args := m.Called(ctx, userID, friendID)
	return args.Bool(0), args.Error(1)
}

type GroupRepositoryMock struct {
	mock.Mock
}

func (m *GroupRepositoryMock) CreateGroup(ctx context.Context, name, ownerID string) (models.Group, error) {
	args := m.Called(ctx, name, ownerID)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) GetGroup(ctx context.Context, groupID string) (models.Group, error) {
	args := m.Called(ctx, groupID)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) RenameGroup(ctx context.Context, groupID, name string) (models.Group, error) {
	args := m.Called(ctx, groupID, name)
	var group models.Group
	if val := args.Get(0); val != nil {
		group = val.(models.Group)
	}
	return group, args.Error(1)
}

func (m *GroupRepositoryMock) ListGroupsForUser(ctx context.Context, userID string) ([]models.Group, error) {
	args := m.Called(ctx, userID)
	var list []models.Group
	if val := args.Get(0); val != nil {
		list = val.([]models.Group)
	}
	return list, args.Error(1)
}

func (m *GroupRepositoryMock) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	args := m.Called(ctx, groupID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *GroupRepositoryMock) ListMembers(ctx context.Context, groupID string) ([]models.GroupMember, error) {
	args := m.Called(ctx, groupID)
	var list []models.GroupMember
	if val := args.Get(0); val != nil {
		list = val.([]models.GroupMember)
	}
	return list, args.Error(1)
}

func (m *GroupRepositoryMock) AddMember(ctx context.Context, groupID, userID string) (models.GroupMember, error) {
	args := m.Called(ctx, groupID, userID)
	var member models.GroupMember
	if val := args.Get(0); val != nil {
		member = val.(models.GroupMember)
	}
	return member, args.Error(1)
}

func (m *GroupRepositoryMock) RemoveMember(ctx context.Context, groupID, userID string) error {
	args := m.Called(ctx, groupID, userID)
	return args.Error(0)
}

type BoardRepositoryMock struct {
	mock.Mock
}

func (m *BoardRepositoryMock) ListPosts(ctx context.Context, groupID string, cursor state.Cursor, limit int) ([]models.BoardPost, bool, error) {
	args := m.Called(ctx, groupID, cursor, limit)
	var list []models.BoardPost
	if val := args.Get(0); val != nil {
		list = val.([]models.BoardPost)
	}
	return list, args.Bool(1), args.Error(2)
}

func (m *BoardRepositoryMock) CreatePost(ctx context.Context, groupID, authorID, content string) (models.BoardPost, error) {
	args := m.Called(ctx, groupID, authorID, content)
	var post models.BoardPost
	if val := args.Get(0); val != nil {
		post = val.(models.BoardPost)
	}
	return post, args.Error(1)
}

func (m *BoardRepositoryMock) GetPost(ctx context.Context, postID string) (models.BoardPost, error) {
	args := m.Called(ctx, postID)
	var post models.BoardPost
	if val := args.Get(0); val != nil {
		post = val.(models.BoardPost)
	}
	return post, args.Error(1)
}

func (m *BoardRepositoryMock) DeletePost(ctx context.Context, postID, authorID string) error {
	args := m.Called(ctx, postID, authorID)
	return args.Error(0)
}

func (m *BoardRepositoryMock) ListComments(ctx context.Context, postID string) ([]models.PostComment, error) {
	args := m.Called(ctx, postID)
	var list []models.PostComment
	if val := args.Get(0); val != nil {
		list = val.([]models.PostComment)
	}
	return list, args.Error(1)
}

func (m *BoardRepositoryMock) CreateComment(ctx context.Context, postID, authorID, content string) (models.PostComment, error) {
	args := m.Called(ctx, postID, authorID, content)
	var comment models.PostComment
	if val := args.Get(0); val != nil {
		comment = val.(models.PostComment)
	}
	return comment, args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, groupID string, cursor state.Cursor, limit int) ([]models.ChatMessage, bool, error) {
	args := m.Called(ctx, groupID, cursor, limit)
	var list []models.ChatMessage
	if val := args.Get(0); val != nil {
		list = val.([]models.ChatMessage)
	}
	return list, args.Bool(1), args.Error(2)
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, groupID, senderID, content string) (models.ChatMessage, error) {
	args := m.Called(ctx, groupID, senderID, content)
	var msg models.ChatMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.ChatMessage)
	}
	return msg, args.Error(1)
}
