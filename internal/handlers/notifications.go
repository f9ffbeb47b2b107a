package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"realtime-service/internal/models"
	"realtime-service/internal/notify"
	"realtime-service/internal/repositories"
)

const notificationListLimit = 50

// NotificationHandler manages the notification REST surface.
type NotificationHandler struct {
	router           *notify.Router
	notificationRepo repositories.NotificationRepository
	settingsRepo     repositories.SettingsRepository
}

// NewNotificationHandler builds a NotificationHandler.
func NewNotificationHandler(router *notify.Router, notificationRepo repositories.NotificationRepository, settingsRepo repositories.SettingsRepository) *NotificationHandler {
	return &NotificationHandler{
		router:           router,
		notificationRepo: notificationRepo,
		settingsRepo:     settingsRepo,
	}
}

// UnreadCount returns the payload-weighted unread badge value.
func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	userID := c.GetInt("userID")

	count, err := h.router.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to load unread count")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "unreadCount": count})
}

// List returns the newest notifications. Collapsed message
// notifications get their title rewritten to show the message count.
func (h *NotificationHandler) List(c *gin.Context) {
	userID := c.GetInt("userID")

	notifications, err := h.notificationRepo.ListNotifications(c.Request.Context(), userID, notificationListLimit)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to load notifications")
		return
	}

	for i, n := range notifications {
		if n.Type != models.NotificationTypeMessage {
			continue
		}
		var payload models.NotificationPayload
		if err := json.Unmarshal(n.Payload, &payload); err != nil {
			continue
		}
		if payload.MessageCount > 1 {
			notifications[i].Title = fmt.Sprintf("New messages (%d)", payload.MessageCount)
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications})
}

// GetSettings returns the caller's preferences, creating the
// all-enabled defaults on first read.
func (h *NotificationHandler) GetSettings(c *gin.Context) {
	userID := c.GetInt("userID")

	settings, err := h.settingsRepo.GetOrCreateSettings(c.Request.Context(), userID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to load settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "settings": settings})
}

// UpdateSettings upserts the preference flags.
func (h *NotificationHandler) UpdateSettings(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		ChatNotification    *looseBool `json:"chat_notification"`
		CommentNotification *looseBool `json:"comment_notification"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ChatNotification == nil || req.CommentNotification == nil {
		fail(c, http.StatusBadRequest, "invalid settings payload")
		return
	}

	settings, err := h.settingsRepo.UpdateSettings(c.Request.Context(), models.NotificationSettings{
		UserID:              userID,
		ChatNotification:    bool(*req.ChatNotification),
		CommentNotification: bool(*req.CommentNotification),
	})
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to save settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "settings saved", "settings": settings})
}

// MarkRead flips one notification to read.
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	userID := c.GetInt("userID")
	notificationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid notification id")
		return
	}

	err = h.notificationRepo.MarkRead(c.Request.Context(), notificationID, userID)
	if errors.Is(err, repositories.ErrNotificationNotFound) {
		fail(c, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to mark notification read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "notification marked read"})
}

// MarkAllRead flips every unread notification.
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	userID := c.GetInt("userID")

	if err := h.notificationRepo.MarkAllRead(c.Request.Context(), userID); err != nil {
		fail(c, http.StatusInternalServerError, "failed to mark notifications read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "all notifications marked read"})
}

// MarkRoomRead flips unread message notifications for one room only;
// notifications for other rooms stay untouched.
func (h *NotificationHandler) MarkRoomRead(c *gin.Context) {
	userID := c.GetInt("userID")
	roomID, err := strconv.Atoi(c.Param("roomId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid room id")
		return
	}

	if err := h.notificationRepo.MarkRoomRead(c.Request.Context(), userID, roomID); err != nil {
		fail(c, http.StatusInternalServerError, "failed to mark room notifications read")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "room notifications marked read"})
}

// Delete removes one notification.
func (h *NotificationHandler) Delete(c *gin.Context) {
	userID := c.GetInt("userID")
	notificationID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid notification id")
		return
	}

	err = h.notificationRepo.DeleteNotification(c.Request.Context(), notificationID, userID)
	if errors.Is(err, repositories.ErrNotificationNotFound) {
		fail(c, http.StatusNotFound, "notification not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to delete notification")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "notification deleted"})
}

// ClearAll deletes every notification for the caller.
func (h *NotificationHandler) ClearAll(c *gin.Context) {
	userID := c.GetInt("userID")

	if err := h.notificationRepo.DeleteAllNotifications(c.Request.Context(), userID); err != nil {
		fail(c, http.StatusInternalServerError, "failed to delete notifications")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "all notifications deleted"})
}

// CommentEvent is the seam the forum CRUD service calls after storing a
// comment. The caller has already skipped self-comments; failures here
// never unwind the comment, so the endpoint reports success and logs.
func (h *NotificationHandler) CommentEvent(c *gin.Context) {
	var req struct {
		RecipientID   int    `json:"recipientId" binding:"required"`
		PostID        int    `json:"postId" binding:"required"`
		CommentID     int    `json:"commentId" binding:"required"`
		PostTitle     string `json:"postTitle" binding:"required"`
		CommenterName string `json:"commenterName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid comment event")
		return
	}

	payload := models.NotificationPayload{
		Message:    fmt.Sprintf("%s commented on %q.", req.CommenterName, req.PostTitle),
		PostID:     req.PostID,
		CommentID:  req.CommentID,
		SenderName: req.CommenterName,
	}
	if err := h.router.Notify(c.Request.Context(), req.RecipientID, models.NotificationTypeComment, "New comment", payload); err != nil {
		log.Printf("comment notification for user %d: %v", req.RecipientID, err)
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
