package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"forum-realtime/internal/models"
	"forum-realtime/internal/repositories"
)

const defaultHistoryLimit = 50

// HistoryHandler serves read-only message history. Live fan-out stays on the
// socket; rejoining clients page through these endpoints.
type HistoryHandler struct {
	conversations repositories.ConversationRepository
	globalRepo    repositories.GlobalMessageRepository
	users         repositories.UserRepository
	attachments   repositories.AttachmentRepository
}

// NewHistoryHandler builds a HistoryHandler.
func NewHistoryHandler(conversations repositories.ConversationRepository, globalRepo repositories.GlobalMessageRepository, users repositories.UserRepository, attachments repositories.AttachmentRepository) *HistoryHandler {
	return &HistoryHandler{
		conversations: conversations,
		globalRepo:    globalRepo,
		users:         users,
		attachments:   attachments,
	}
}

// GetGlobalMessages returns the most recent broadcast messages, oldest
// first. Open to anonymous readers, matching the socket's broadcast room.
func (h *HistoryHandler) GetGlobalMessages(c *gin.Context) {
	limit := defaultHistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 200 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	msgs, err := h.globalRepo.ListRecent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": msgs})
}

// GetConversationMessages returns the caller's conversation with a peer,
// messages in send order plus both read marks.
func (h *HistoryHandler) GetConversationMessages(c *gin.Context) {
	peerID, err := strconv.ParseInt(c.Param("peer_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid peer id"})
		return
	}

	userID := c.GetInt64("userID")
	conv, err := h.conversations.FindByParticipants(c.Request.Context(), userID, peerID)
	if err != nil {
		if errors.Is(err, repositories.ErrConversationNotFound) {
			c.JSON(http.StatusOK, gin.H{"messages": []models.PrivateMessage{}, "read_marks": []models.ReadMark{}})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load conversation"})
		return
	}
	if !conv.HasParticipant(userID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "not a participant"})
		return
	}

	msgs, err := h.conversations.ListMessages(c.Request.Context(), conv.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load messages"})
		return
	}
	marks, err := h.conversations.GetReadMarks(c.Request.Context(), conv.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load read marks"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"conversation_id": conv.ID,
		"messages":        msgs,
		"read_marks":      marks,
	})
}
