package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"forum-realtime/internal/models"
	"forum-realtime/internal/registry"
	"forum-realtime/internal/repositories"
)

type ConversationRepositoryMock struct {
	mock.Mock
}

func (m *ConversationRepositoryMock) FindByParticipants(ctx context.Context, userID, peerID int64) (models.Conversation, error) {
	args := m.Called(ctx, userID, peerID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) CreateOrGet(ctx context.Context, userID, peerID int64) (models.Conversation, error) {
	args := m.Called(ctx, userID, peerID)
	var conv models.Conversation
	if val := args.Get(0); val != nil {
		conv = val.(models.Conversation)
	}
	return conv, args.Error(1)
}

func (m *ConversationRepositoryMock) AppendMessage(ctx context.Context, conversationID, senderID int64, content string, attachmentIDs []int64) (models.PrivateMessage, error) {
	args := m.Called(ctx, conversationID, senderID, content, attachmentIDs)
	var msg models.PrivateMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.PrivateMessage)
	}
	return msg, args.Error(1)
}

func (m *ConversationRepositoryMock) ListMessages(ctx context.Context, conversationID int64) ([]models.PrivateMessage, error) {
	args := m.Called(ctx, conversationID)
	var msgs []models.PrivateMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.PrivateMessage)
	}
	return msgs, args.Error(1)
}

func (m *ConversationRepositoryMock) UpsertReadMark(ctx context.Context, conversationID, userID int64) (models.ReadMark, error) {
	args := m.Called(ctx, conversationID, userID)
	var mark models.ReadMark
	if val := args.Get(0); val != nil {
		mark = val.(models.ReadMark)
	}
	return mark, args.Error(1)
}

func (m *ConversationRepositoryMock) GetReadMarks(ctx context.Context, conversationID int64) ([]models.ReadMark, error) {
	args := m.Called(ctx, conversationID)
	var marks []models.ReadMark
	if val := args.Get(0); val != nil {
		marks = val.([]models.ReadMark)
	}
	return marks, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int64) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) SetOnline(ctx context.Context, userID int64, socketID string) error {
	args := m.Called(ctx, userID, socketID)
	return args.Error(0)
}

func (m *UserRepositoryMock) SetOffline(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type GlobalMessageRepositoryMock struct {
	mock.Mock
}

func (m *GlobalMessageRepositoryMock) Create(ctx context.Context, senderID int64, content string, attachmentIDs []int64) (models.GlobalMessage, error) {
	args := m.Called(ctx, senderID, content, attachmentIDs)
	var msg models.GlobalMessage
	if val := args.Get(0); val != nil {
		msg = val.(models.GlobalMessage)
	}
	return msg, args.Error(1)
}

func (m *GlobalMessageRepositoryMock) ListRecent(ctx context.Context, limit int) ([]models.GlobalMessage, error) {
	args := m.Called(ctx, limit)
	var msgs []models.GlobalMessage
	if val := args.Get(0); val != nil {
		msgs = val.([]models.GlobalMessage)
	}
	return msgs, args.Error(1)
}

type AttachmentRepositoryMock struct {
	mock.Mock
}

func (m *AttachmentRepositoryMock) GetByIDs(ctx context.Context, ids []int64) ([]models.Attachment, error) {
	args := m.Called(ctx, ids)
	var attachments []models.Attachment
	if val := args.Get(0); val != nil {
		attachments = val.([]models.Attachment)
	}
	return attachments, args.Error(1)
}

type RegistryMock struct {
	mock.Mock
}

func (m *RegistryMock) Register(ctx context.Context, userID int64, connID string) error {
	args := m.Called(ctx, userID, connID)
	return args.Error(0)
}

func (m *RegistryMock) Lookup(ctx context.Context, userID int64) (string, bool, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *RegistryMock) Unregister(ctx context.Context, userID int64, connID string) error {
	args := m.Called(ctx, userID, connID)
	return args.Error(0)
}

var _ repositories.ConversationRepository = (*ConversationRepositoryMock)(nil)
var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.GlobalMessageRepository = (*GlobalMessageRepositoryMock)(nil)
var _ repositories.AttachmentRepository = (*AttachmentRepositoryMock)(nil)
var _ registry.Registry = (*RegistryMock)(nil)
