package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"realtime-service/internal/models"
)

type RoomRepositoryMock struct {
	mock.Mock
}

func (m *RoomRepositoryMock) CreateOrGetRoom(ctx context.Context, userID, otherUserID int) (models.Room, error) {
	args := m.Called(ctx, userID, otherUserID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) GetRoom(ctx context.Context, roomID int) (models.Room, error) {
	args := m.Called(ctx, roomID)
	var room models.Room
	if val := args.Get(0); val != nil {
		room = val.(models.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepositoryMock) IsParticipant(ctx context.Context, roomID, userID int) (bool, error) {
	args := m.Called(ctx, roomID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepositoryMock) ListRooms(ctx context.Context, userID int) ([]models.RoomSummary, error) {
	args := m.Called(ctx, userID)
	var list []models.RoomSummary
	if val := args.Get(0); val != nil {
		list = val.([]models.RoomSummary)
	}
	return list, args.Error(1)
}

func (m *RoomRepositoryMock) TouchRoom(ctx context.Context, roomID int) error {
	args := m.Called(ctx, roomID)
	return args.Error(0)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) CreateMessage(ctx context.Context, roomID, senderID int, content string) (models.Message, error) {
	args := m.Called(ctx, roomID, senderID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) ListMessages(ctx context.Context, roomID int) ([]models.MessageView, error) {
	args := m.Called(ctx, roomID)
	var msgs []models.MessageView
	if val := args.Get(0); val != nil {
		msgs = val.([]models.MessageView)
	}
	return msgs, args.Error(1)
}

type NotificationRepositoryMock struct {
	mock.Mock
}

func (m *NotificationRepositoryMock) CreateNotification(ctx context.Context, userID int, title, typ string, payload json.RawMessage) (models.Notification, error) {
	args := m.Called(ctx, userID, title, typ, payload)
	var n models.Notification
	if val := args.Get(0); val != nil {
		n = val.(models.Notification)
	}
	return n, args.Error(1)
}

func (m *NotificationRepositoryMock) ListNotifications(ctx context.Context, userID, limit int) ([]models.Notification, error) {
	args := m.Called(ctx, userID, limit)
	var list []models.Notification
	if val := args.Get(0); val != nil {
		list = val.([]models.Notification)
	}
	return list, args.Error(1)
}

func (m *NotificationRepositoryMock) UnreadNotifications(ctx context.Context, userID int) ([]models.Notification, error) {
	args := m.Called(ctx, userID)
	var list []models.Notification
	if val := args.Get(0); val != nil {
		list = val.([]models.Notification)
	}
	return list, args.Error(1)
}

func (m *NotificationRepositoryMock) MarkRead(ctx context.Context, notificationID, userID int) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) MarkAllRead(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) MarkRoomRead(ctx context.Context, userID, roomID int) error {
	args := m.Called(ctx, userID, roomID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) DeleteNotification(ctx context.Context, notificationID, userID int) error {
	args := m.Called(ctx, notificationID, userID)
	return args.Error(0)
}

func (m *NotificationRepositoryMock) DeleteAllNotifications(ctx context.Context, userID int) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

type SettingsRepositoryMock struct {
	mock.Mock
}

func (m *SettingsRepositoryMock) GetOrCreateSettings(ctx context.Context, userID int) (models.NotificationSettings, error) {
	args := m.Called(ctx, userID)
	var s models.NotificationSettings
	if val := args.Get(0); val != nil {
		s = val.(models.NotificationSettings)
	}
	return s, args.Error(1)
}

func (m *SettingsRepositoryMock) UpdateSettings(ctx context.Context, settings models.NotificationSettings) (models.NotificationSettings, error) {
	args := m.Called(ctx, settings)
	var s models.NotificationSettings
	if val := args.Get(0); val != nil {
		s = val.(models.NotificationSettings)
	}
	return s, args.Error(1)
}

type PresenceRepositoryMock struct {
	mock.Mock
}

func (m *PresenceRepositoryMock) UpsertStatus(ctx context.Context, userID int, isOnline bool) (models.PresenceRecord, error) {
	args := m.Called(ctx, userID, isOnline)
	var rec models.PresenceRecord
	if val := args.Get(0); val != nil {
		rec = val.(models.PresenceRecord)
	}
	return rec, args.Error(1)
}

func (m *PresenceRepositoryMock) GetStatus(ctx context.Context, userID int) (models.PresenceRecord, error) {
	args := m.Called(ctx, userID)
	var rec models.PresenceRecord
	if val := args.Get(0); val != nil {
		rec = val.(models.PresenceRecord)
	}
	return rec, args.Error(1)
}

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) GetUser(ctx context.Context, userID int) (models.User, error) {
	args := m.Called(ctx, userID)
	var u models.User
	if val := args.Get(0); val != nil {
		u = val.(models.User)
	}
	return u, args.Error(1)
}

func (m *UserRepositoryMock) SearchUsers(ctx context.Context, selfID int, query string) ([]models.UserSearchResult, error) {
	args := m.Called(ctx, selfID, query)
	var users []models.UserSearchResult
	if val := args.Get(0); val != nil {
		users = val.([]models.UserSearchResult)
	}
	return users, args.Error(1)
}

type PresenceSetterMock struct {
	mock.Mock
}

func (m *PresenceSetterMock) SetOnline(ctx context.Context, userID int, isOnline bool) error {
	args := m.Called(ctx, userID, isOnline)
	return args.Error(0)
}
