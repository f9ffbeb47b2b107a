package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"realtime-service/internal/models"
	"realtime-service/internal/notify"
	"realtime-service/internal/observability"
	"realtime-service/internal/repositories"
	"realtime-service/internal/ws"
)

const messagePreviewLimit = 100

// PresenceSetter lets the status endpoint drive the presence tracker.
type PresenceSetter interface {
	SetOnline(ctx context.Context, userID int, isOnline bool) error
}

// ChatHandler manages the private chat endpoints and the message relay
// pipeline.
type ChatHandler struct {
	roomRepo    repositories.RoomRepository
	messageRepo repositories.MessageRepository
	userRepo    repositories.UserRepository
	notifRepo   repositories.NotificationRepository
	router      *notify.Router
	registry    *ws.Registry
	presence    PresenceSetter
}

// NewChatHandler builds a ChatHandler.
func NewChatHandler(roomRepo repositories.RoomRepository, messageRepo repositories.MessageRepository,
	userRepo repositories.UserRepository, notifRepo repositories.NotificationRepository,
	router *notify.Router, registry *ws.Registry, presence PresenceSetter) *ChatHandler {
	return &ChatHandler{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		notifRepo:   notifRepo,
		router:      router,
		registry:    registry,
		presence:    presence,
	}
}

// SearchUsers finds chat partners by name, online users first.
func (h *ChatHandler) SearchUsers(c *gin.Context) {
	userID := c.GetInt("userID")

	query := strings.TrimSpace(c.Query("query"))
	if len([]rune(query)) < 2 {
		c.JSON(http.StatusOK, gin.H{"success": true, "users": []models.UserSearchResult{}})
		return
	}

	users, err := h.userRepo.SearchUsers(c.Request.Context(), userID, query)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to search users")
		return
	}
	if users == nil {
		users = []models.UserSearchResult{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "users": users})
}

// ListRooms returns the caller's rooms, newest activity first, with the
// other participant's presence and the last message attached.
func (h *ChatHandler) ListRooms(c *gin.Context) {
	userID := c.GetInt("userID")

	rooms, err := h.roomRepo.ListRooms(c.Request.Context(), userID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to load rooms")
		return
	}
	if rooms == nil {
		rooms = []models.RoomSummary{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "rooms": rooms})
}

// CreateRoom finds or creates the room with another user.
func (h *ChatHandler) CreateRoom(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		OtherUserID int `json:"otherUserId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}
	if req.OtherUserID == userID {
		fail(c, http.StatusBadRequest, "cannot chat with yourself")
		return
	}

	otherUser, err := h.userRepo.GetUser(c.Request.Context(), req.OtherUserID)
	if errors.Is(err, repositories.ErrUserNotFound) {
		fail(c, http.StatusNotFound, "user not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to load user")
		return
	}

	room, err := h.roomRepo.CreateOrGetRoom(c.Request.Context(), userID, req.OtherUserID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to create room")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "roomId": room.ID, "otherUser": otherUser})
}

// Messages returns a room's history for a participant.
func (h *ChatHandler) Messages(c *gin.Context) {
	userID := c.GetInt("userID")
	roomID, err := strconv.Atoi(c.Param("roomId"))
	if err != nil {
		fail(c, http.StatusBadRequest, "invalid room id")
		return
	}

	member, err := h.roomRepo.IsParticipant(c.Request.Context(), roomID, userID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to verify membership")
		return
	}
	if !member {
		fail(c, http.StatusForbidden, "not a room member")
		return
	}

	messages, err := h.messageRepo.ListMessages(c.Request.Context(), roomID)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to load messages")
		return
	}
	if messages == nil {
		messages = []models.MessageView{}
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "messages": messages})
}

// PostMessage persists a message and fans it out: a chat_message push
// to the recipient always, plus a notification unless the recipient is
// looking at the room right now. Push failures never fail the send.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		RoomID  int    `json:"roomId" binding:"required"`
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	content := strings.TrimSpace(req.Message)
	if content == "" {
		fail(c, http.StatusBadRequest, "message is empty")
		return
	}

	room, err := h.roomRepo.GetRoom(c.Request.Context(), req.RoomID)
	if errors.Is(err, repositories.ErrRoomNotFound) {
		fail(c, http.StatusNotFound, "room not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to load room")
		return
	}
	if !room.HasParticipant(userID) {
		fail(c, http.StatusForbidden, "not a room member")
		return
	}

	msg, err := h.messageRepo.CreateMessage(c.Request.Context(), room.ID, userID, content)
	if err != nil {
		fail(c, http.StatusInternalServerError, "failed to store message")
		return
	}

	if err := h.roomRepo.TouchRoom(c.Request.Context(), room.ID); err != nil {
		log.Printf("touch room %d: %v", room.ID, err)
	}

	h.relayMessage(c.Request.Context(), room, msg, userID)

	c.JSON(http.StatusOK, gin.H{"success": true, "messageId": msg.ID, "message": msg})
}

// relayMessage runs the delivery side of a sent message. Everything in
// here is secondary to the already-persisted message; failures are
// logged, never surfaced.
func (h *ChatHandler) relayMessage(ctx context.Context, room models.Room, msg models.Message, senderID int) {
	recipientID := room.OtherParticipant(senderID)

	senderName := ""
	if sender, err := h.userRepo.GetUser(ctx, senderID); err == nil {
		senderName = sender.DisplayName()
	}

	if h.registry.IsViewingRoom(recipientID, room.ID) {
		// the recipient is looking at this room: a toast would be
		// redundant, but any stale unread rows for the room should
		// clear so the badge stays consistent
		observability.IncNotificationSuppressed(models.NotificationTypeMessage, "viewing")
		if err := h.notifRepo.MarkRoomRead(ctx, recipientID, room.ID); err != nil {
			log.Printf("mark room %d read for user %d: %v", room.ID, recipientID, err)
		}
	} else {
		payload := models.NotificationPayload{
			Message:    truncate(msg.Content, messagePreviewLimit),
			RoomID:     room.ID,
			SenderID:   senderID,
			SenderName: senderName,
		}
		if err := h.router.Notify(ctx, recipientID, models.NotificationTypeMessage, "New message", payload); err != nil {
			log.Printf("message notification for user %d: %v", recipientID, err)
		}
	}

	// delivered regardless of suppression so an open room list updates
	// live; clients dedupe by message id
	h.registry.SendToUser(recipientID, models.NewChatMessageEvent(room.ID, msg))
}

// SetStatus persists an explicit online/offline change and broadcasts
// it.
func (h *ChatHandler) SetStatus(c *gin.Context) {
	userID := c.GetInt("userID")

	var req struct {
		IsOnline *looseBool `json:"isOnline"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.IsOnline == nil {
		fail(c, http.StatusBadRequest, "invalid request")
		return
	}

	if err := h.presence.SetOnline(c.Request.Context(), userID, bool(*req.IsOnline)); err != nil {
		fail(c, http.StatusInternalServerError, "failed to update status")
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
