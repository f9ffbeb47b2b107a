package notify

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"realtime-service/internal/mocks"
	"realtime-service/internal/models"
	"realtime-service/internal/ws"
)

func TestNotifyDisabledPreferenceIsSilent(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	settingsRepo := new(mocks.SettingsRepositoryMock)
	router := NewRouter(notifRepo, settingsRepo, ws.NewRegistry())

	settingsRepo.On("GetOrCreateSettings", mock.Anything, 5).
		Return(models.NotificationSettings{UserID: 5, ChatNotification: false, CommentNotification: true}, nil).Once()

	err := router.Notify(context.Background(), 5, models.NotificationTypeMessage, "New message",
		models.NotificationPayload{Message: "hi", RoomID: 3})
	require.NoError(t, err)

	notifRepo.AssertNotCalled(t, "CreateNotification", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	settingsRepo.AssertExpectations(t)
}

func TestNotifyStoresRowWhenAllowed(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	settingsRepo := new(mocks.SettingsRepositoryMock)
	router := NewRouter(notifRepo, settingsRepo, ws.NewRegistry())

	settingsRepo.On("GetOrCreateSettings", mock.Anything, 5).
		Return(models.NotificationSettings{UserID: 5, ChatNotification: true, CommentNotification: true}, nil).Once()
	notifRepo.On("CreateNotification", mock.Anything, 5, "New message", models.NotificationTypeMessage,
		mock.MatchedBy(func(raw json.RawMessage) bool {
			var p models.NotificationPayload
			return json.Unmarshal(raw, &p) == nil && p.RoomID == 3 && p.Message == "hi"
		})).
		Return(models.Notification{ID: 11, UserID: 5}, nil).Once()

	err := router.Notify(context.Background(), 5, models.NotificationTypeMessage, "New message",
		models.NotificationPayload{Message: "hi", RoomID: 3})
	require.NoError(t, err)

	notifRepo.AssertExpectations(t)
	settingsRepo.AssertExpectations(t)
}

func TestNotifyCommentGateIndependentOfChatGate(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	settingsRepo := new(mocks.SettingsRepositoryMock)
	router := NewRouter(notifRepo, settingsRepo, ws.NewRegistry())

	settingsRepo.On("GetOrCreateSettings", mock.Anything, 5).
		Return(models.NotificationSettings{UserID: 5, ChatNotification: false, CommentNotification: true}, nil).Once()
	notifRepo.On("CreateNotification", mock.Anything, 5, "New comment", models.NotificationTypeComment, mock.Anything).
		Return(models.Notification{ID: 12}, nil).Once()

	err := router.Notify(context.Background(), 5, models.NotificationTypeComment, "New comment",
		models.NotificationPayload{Message: "bob commented", PostID: 8})
	require.NoError(t, err)

	notifRepo.AssertExpectations(t)
}

func TestUnreadCountWeightsCollapsedMessages(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	settingsRepo := new(mocks.SettingsRepositoryMock)
	router := NewRouter(notifRepo, settingsRepo, ws.NewRegistry())

	notifRepo.On("UnreadNotifications", mock.Anything, 5).Return([]models.Notification{
		{ID: 1, Type: models.NotificationTypeMessage, Payload: json.RawMessage(`{"roomId":3,"messageCount":4}`)},
		{ID: 2, Type: models.NotificationTypeMessage, Payload: json.RawMessage(`{"roomId":4}`)},
		{ID: 3, Type: models.NotificationTypeComment, Payload: json.RawMessage(`{"postId":8}`)},
		{ID: 4, Type: models.NotificationTypeMessage, Payload: json.RawMessage(`not json`)},
	}, nil).Once()

	count, err := router.UnreadCount(context.Background(), 5)
	require.NoError(t, err)
	// 4 collapsed + 1 without a count + 1 comment + 1 unparsable
	require.Equal(t, 7, count)

	notifRepo.AssertExpectations(t)
}

func TestUnreadCountEmpty(t *testing.T) {
	notifRepo := new(mocks.NotificationRepositoryMock)
	router := NewRouter(notifRepo, new(mocks.SettingsRepositoryMock), ws.NewRegistry())

	notifRepo.On("UnreadNotifications", mock.Anything, 5).Return([]models.Notification{}, nil).Once()

	count, err := router.UnreadCount(context.Background(), 5)
	require.NoError(t, err)
	require.Equal(t, 0, count)
}
