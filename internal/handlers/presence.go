package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"forum-realtime/internal/repositories"
)

// PresenceHandler serves presence lookups for collaborators that cannot hold
// a socket open.
type PresenceHandler struct {
	users repositories.UserRepository
}

// NewPresenceHandler builds a PresenceHandler.
func NewPresenceHandler(users repositories.UserRepository) *PresenceHandler {
	return &PresenceHandler{users: users}
}

// GetPresence returns a user's online flag and last-seen timestamp.
func (h *PresenceHandler) GetPresence(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("user_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load presence"})
		return
	}

	resp := gin.H{"user_id": user.ID, "is_online": user.IsOnline}
	if lastSeen := user.LastSeenAt(); !lastSeen.IsZero() {
		resp["last_seen"] = lastSeen
	}
	c.JSON(http.StatusOK, resp)
}
