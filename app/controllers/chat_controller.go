package controllers

import (
	"encoding/json"
	"net/http"
	"strconv"

	apperrors "github.com/mo7ami/backend-go/internal/errors"
	"github.com/mo7ami/backend-go/internal/services"
)

// ChatController 法律问答控制器
type ChatController struct {
	BaseController
	chatService  *services.ChatService
	convService  *services.ConversationService
	quotaService *services.QuotaService
}

func (c *ChatController) Prepare() {
	if r := GetRegistry(); r != nil {
		c.chatService = r.Chat
		c.convService = r.Conversations
		c.quotaService = r.Quota
	}
}

type askRequest struct {
	Message        string  `json:"message" validate:"max=2000"`
	Language       string  `json:"language,omitempty" validate:"omitempty,oneof=ar fr"`
	ConversationID *string `json:"conversation_id,omitempty"`
	VoiceInput     bool    `json:"voice_input,omitempty"`
}

// POST /api/chat
func (c *ChatController) Ask() {
	var req askRequest
	if err := json.Unmarshal(c.Ctx.Input.RequestBody, &req); err != nil {
		c.JSONError(http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validate.Struct(&req); err != nil {
		c.JSONError(http.StatusBadRequest, err.Error())
		return
	}

	userID, clientToken := c.identity()

	resp, err := c.chatService.Ask(c.Ctx.Request.Context(), &services.ChatRequest{
		Question:       req.Message,
		Language:       req.Language,
		ConversationID: req.ConversationID,
		UserID:         userID,
		ClientToken:    clientToken,
		VoiceUsed:      req.VoiceInput,
	})
	if err != nil {
		c.ServeAppError(err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GET /api/chat/history
func (c *ChatController) History() {
	userID, clientToken := c.identity()
	if userID == nil && clientToken == nil {
		c.ServeAppError(apperrors.NewIdentityMissingError())
		return
	}

	limit, _ := strconv.Atoi(c.GetString("limit", "50"))
	conversations, err := c.convService.ListConversations(c.Ctx.Request.Context(), userID, clientToken, limit)
	if err != nil {
		c.ServeAppError(err)
		return
	}

	c.JSONSuccess(map[string]interface{}{
		"conversations": conversations,
		"total":         len(conversations),
	})
}

// GET /api/chat/history/:id
func (c *ChatController) GetConversation() {
	userID, clientToken := c.identity()
	if userID == nil && clientToken == nil {
		c.ServeAppError(apperrors.NewIdentityMissingError())
		return
	}

	conversationID := c.Ctx.Input.Param(":id")
	detail, err := c.convService.GetConversation(c.Ctx.Request.Context(), conversationID, userID, clientToken)
	if err != nil {
		c.ServeAppError(err)
		return
	}

	c.JSONSuccess(detail)
}

// GET /api/chat/quota
func (c *ChatController) Quota() {
	userID, clientToken := c.identity()
	if userID == nil && clientToken == nil {
		c.ServeAppError(apperrors.NewIdentityMissingError())
		return
	}

	status, err := c.quotaService.Status(c.Ctx.Request.Context(), userID, clientToken)
	if err != nil {
		c.ServeAppError(err)
		return
	}

	c.JSONSuccess(status)
}
