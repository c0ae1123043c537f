package handlers

import (
	"database/sql"
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

func newPresenceRouter(h *PresenceHandler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/presence/:user_id", h.GetPresence)
	return router
}

func TestGetPresenceOnlineUser(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	users.On("GetUser", mock.Anything, int64(7)).Return(models.User{ID: 7, IsOnline: true}, nil)

	router := newPresenceRouter(NewPresenceHandler(users))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/presence/7", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, true, body["is_online"])
	require.NotContains(t, body, "last_seen")
}

func TestGetPresenceOfflineUserHasLastSeen(t *testing.T) {
	lastSeen := time.Now().UTC().Truncate(time.Second)
	users := new(mocks.UserRepositoryMock)
	users.On("GetUser", mock.Anything, int64(7)).Return(models.User{
		ID:       7,
		IsOnline: false,
		LastSeen: sql.NullTime{Time: lastSeen, Valid: true},
	}, nil)

	router := newPresenceRouter(NewPresenceHandler(users))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/presence/7", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, false, body["is_online"])
	require.Contains(t, body, "last_seen")
}

func TestGetPresenceUnknownUser(t *testing.T) {
	users := new(mocks.UserRepositoryMock)
	users.On("GetUser", mock.Anything, int64(404)).Return(models.User{}, repositories.ErrUserNotFound)

	router := newPresenceRouter(NewPresenceHandler(users))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/presence/404", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetPresenceInvalidID(t *testing.T) {
	router := newPresenceRouter(NewPresenceHandler(new(mocks.UserRepositoryMock)))
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/presence/abc", nil)
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
}
