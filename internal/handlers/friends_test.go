package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tripboard/internal/mocks"
	"tripboard/internal/models"
	"tripboard/internal/repositories"
)

func setupFriendRouter(handler *FriendHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userID", "u1")
		c.Next()
	})
	r.GET("/friends", handler.ListFriends)
	r.DELETE("/friends/:friend_id", handler.RemoveFriend)
	r.GET("/friends/invites/incoming", handler.ListIncoming)
	r.GET("/friends/invites/outgoing", handler.ListOutgoing)
	r.POST("/friends/invites", handler.SendInvite)
	r.POST("/friends/invites/:invite_id/accept", handler.AcceptInvite)
	r.POST("/friends/invites/:invite_id/reject", handler.RejectInvite)
	r.DELETE("/friends/invites/:invite_id", handler.CancelInvite)
	return r
}

func TestListFriendsSuccess(t *testing.T) {
	friendRepo := new(mocks.FriendRepositoryMock)
	router := setupFriendRouter(NewFriendHandler(friendRepo, nil, nil))

	friendRepo.On("ListFriends", mock.Anything, "u1").
		Return([]models.Friend{{ID: "u2", Username: "bob"}}, nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/friends", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var friends []models.Friend
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&friends))
	require.Len(t, friends, 1)
	require.Equal(t, "bob", friends[0].Username)
	friendRepo.AssertExpectations(t)
}

func TestListFriendsEmptyIsArray(t *testing.T) {
	friendRepo := new(mocks.FriendRepositoryMock)
	router := setupFriendRouter(NewFriendHandler(friendRepo, nil, nil))

	friendRepo.On("ListFriends", mock.Anything, "u1").
		Return(([]models.Friend)(nil), nil).Once()

	req := httptest.NewRequest(http.MethodGet, "/friends", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.JSONEq(t, "[]", rec.Body.String())
}

func TestSendInviteSuccess(t *testing.T) {
	friendRepo := new(mocks.FriendRepositoryMock)
	router := setupFriendRouter(NewFriendHandler(friendRepo, nil, nil))

	invite := models.FriendInvite{ID: "i1", InviterID: "u1", InviteeID: "u2", Status: models.InvitePending}
	friendRepo.On("CreateInvite", mock.Anything, "u1", "u2").Return(invite, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/friends/invites", bytes.NewBufferString(`{"invitee_id":"u2"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	friendRepo.AssertExpectations(t)
}

func TestSendInviteToSelf(t *testing.T) {
	friendRepo := new(mocks.FriendRepositoryMock)
	router := setupFriendRouter(NewFriendHandler(friendRepo, nil, nil))

	req := httptest.NewRequest(http.MethodPost, "/friends/invites", bytes.NewBufferString(`{"invitee_id":"u1"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	friendRepo.AssertNotCalled(t, "CreateInvite")
}

func TestSendInviteDuplicate(t *testing.T) {
	friendRepo := new(mocks.FriendRepositoryMock)
	router := setupFriendRouter(NewFriendHandler(friendRepo, nil, nil))

	friendRepo.On("CreateInvite", mock.Anything, "u1", "u2").
		Return(models.FriendInvite{}, repositories.ErrInviteExists).Once()

	req := httptest.NewRequest(http.MethodPost, "/friends/invites", bytes.NewBufferString(`{"invitee_id":"u2"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusConflict, rec.Code)
}

func TestAcceptInviteSuccess(t *testing.T) {
	friendRepo := new(mocks.FriendRepositoryMock)
	router := setupFriendRouter(NewFriendHandler(friendRepo, nil, nil))

	invite := models.FriendInvite{ID: "i1", InviterID: "u2", InviteeID: "u1", Status: models.InvitePending}
	friendRepo.On("GetInvite", mock.Anything, "i1").Return(invite, nil).Once()
	friendRepo.On("AcceptInvite", mock.Anything, "i1").Return(nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/friends/invites/i1/accept", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	friendRepo.AssertExpectations(t)
}

func TestAcceptInviteNotInvitee(t *testing.T) {
	friendRepo := new(mocks.FriendRepositoryMock)
	router := setupFriendRouter(NewFriendHandler(friendRepo, nil, nil))

	invite := models.FriendInvite{ID: "i1", InviterID: "u1", InviteeID: "u3", Status: models.InvitePending}
	friendRepo.On("GetInvite", mock.Anything, "i1").Return(invite, nil).Once()

	req := httptest.NewRequest(http.MethodPost, "/friends/invites/i1/accept", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	friendRepo.AssertNotCalled(t, "AcceptInvite")
}

func TestAcceptInviteNotFound(t *testing.T) {
	friendRepo := new(mocks.FriendRepositoryMock)
	router := setupFriendRouter(NewFriendHandler(friendRepo, nil, nil))

	friendRepo.On("GetInvite", mock.Anything, "missing").
		Return(models.FriendInvite{}, repositories.ErrInviteNotFound).Once()

	req := httptest.NewRequest(http.MethodPost, "/friends/invites/missing/accept", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCancelInviteNotInviter(t *testing.T) {
	friendRepo := new(mocks.FriendRepositoryMock)
	router := setupFriendRouter(NewFriendHandler(friendRepo, nil, nil))

	invite := models.FriendInvite{ID: "i1", InviterID: "u9", InviteeID: "u1", Status: models.InvitePending}
	friendRepo.On("GetInvite", mock.Anything, "i1").Return(invite, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/friends/invites/i1", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusForbidden, rec.Code)
	friendRepo.AssertNotCalled(t, "DeleteInvite")
}

func TestRemoveFriendNotFriends(t *testing.T) {
	friendRepo := new(mocks.FriendRepositoryMock)
	router := setupFriendRouter(NewFriendHandler(friendRepo, nil, nil))

	friendRepo.On("RemoveFriend", mock.Anything, "u1", "u2").
		Return(repositories.ErrNotFriends).Once()

	req := httptest.NewRequest(http.MethodDelete, "/friends/u2", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListIncomingRepoError(t *testing.T) {
	friendRepo := new(mocks.FriendRepositoryMock)
	router := setupFriendRouter(NewFriendHandler(friendRepo, nil, nil))

	friendRepo.On("ListIncoming", mock.Anything, "u1").
		Return(([]models.FriendInvite)(nil), assert.AnError).Once()

	req := httptest.NewRequest(http.MethodGet, "/friends/invites/incoming", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
}
