package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"forum-realtime/internal/mocks"
	"forum-realtime/internal/models"
	"forum-realtime/internal/repositories"
)

func newHistoryRouter(h *HistoryHandler, userID int64) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/chat/global/messages", h.GetGlobalMessages)
	router.GET("/chats/:peer_id/messages", func(c *gin.Context) {
		c.Set("userID", userID)
	}, h.GetConversationMessages)
	return router
}

func TestGetGlobalMessages(t *testing.T) {
	globalRepo := new(mocks.GlobalMessageRepositoryMock)
	globalRepo.On("ListRecent", mock.Anything, 50).Return([]models.GlobalMessage{
		{ID: 1, SenderID: 7, Content: "hello", CreatedAt: time.Now().UTC()},
	}, nil)

	h := NewHistoryHandler(new(mocks.ConversationRepositoryMock), globalRepo, new(mocks.UserRepositoryMock), new(mocks.AttachmentRepositoryMock))
	router := newHistoryRouter(h, 0)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chat/global/messages", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Messages []models.GlobalMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Messages, 1)
	require.Equal(t, "hello", body.Messages[0].Content)
}

func TestGetGlobalMessagesRejectsBadLimit(t *testing.T) {
	globalRepo := new(mocks.GlobalMessageRepositoryMock)
	h := NewHistoryHandler(new(mocks.ConversationRepositoryMock), globalRepo, new(mocks.UserRepositoryMock), new(mocks.AttachmentRepositoryMock))
	router := newHistoryRouter(h, 0)

	for _, raw := range []string{"0", "-5", "201", "abc"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/chat/global/messages?limit="+raw, nil)
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusBadRequest, w.Code, "limit=%s", raw)
	}
	globalRepo.AssertNotCalled(t, "ListRecent", mock.Anything, mock.Anything)
}

func TestGetConversationMessages(t *testing.T) {
	conversations := new(mocks.ConversationRepositoryMock)
	conversations.On("FindByParticipants", mock.Anything, int64(1), int64(2)).Return(models.Conversation{ID: 3, User1ID: 1, User2ID: 2}, nil)
	conversations.On("ListMessages", mock.Anything, int64(3)).Return([]models.PrivateMessage{
		{ID: 10, ConversationID: 3, SenderID: 1, Content: "hey"},
	}, nil)
	conversations.On("GetReadMarks", mock.Anything, int64(3)).Return([]models.ReadMark{
		{ConversationID: 3, UserID: 2, LastReadAt: time.Now().UTC()},
	}, nil)

	h := NewHistoryHandler(conversations, new(mocks.GlobalMessageRepositoryMock), new(mocks.UserRepositoryMock), new(mocks.AttachmentRepositoryMock))
	router := newHistoryRouter(h, 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chats/2/messages", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		ConversationID int64                   `json:"conversation_id"`
		Messages       []models.PrivateMessage `json:"messages"`
		ReadMarks      []models.ReadMark       `json:"read_marks"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, int64(3), body.ConversationID)
	require.Len(t, body.Messages, 1)
	require.Len(t, body.ReadMarks, 1)
}

func TestGetConversationMessagesMissingConversation(t *testing.T) {
	conversations := new(mocks.ConversationRepositoryMock)
	conversations.On("FindByParticipants", mock.Anything, int64(1), int64(2)).Return(models.Conversation{}, repositories.ErrConversationNotFound)

	h := NewHistoryHandler(conversations, new(mocks.GlobalMessageRepositoryMock), new(mocks.UserRepositoryMock), new(mocks.AttachmentRepositoryMock))
	router := newHistoryRouter(h, 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chats/2/messages", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Messages []models.PrivateMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Empty(t, body.Messages)
	conversations.AssertNotCalled(t, "ListMessages", mock.Anything, mock.Anything)
}

func TestGetConversationMessagesInvalidPeer(t *testing.T) {
	h := NewHistoryHandler(new(mocks.ConversationRepositoryMock), new(mocks.GlobalMessageRepositoryMock), new(mocks.UserRepositoryMock), new(mocks.AttachmentRepositoryMock))
	router := newHistoryRouter(h, 1)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/chats/abc/messages", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
