package chathandler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"tutor-server/internal/domain/conversation"
	"tutor-server/internal/utils/platformerrors"
)

// ChatHandler exposes the three conversation operations over plain text HTTP:
// fetch history, post a message, reset.
type ChatHandler struct {
	service *conversation.Service
	log     zerolog.Logger
}

// NewChatHandler creates a new chat handler
func NewChatHandler(service *conversation.Service, log zerolog.Logger) *ChatHandler {
	return &ChatHandler{
		service: service,
		log:     log,
	}
}

// GetHistory returns the transcript verbatim as newline-joined lines. An empty
// conversation yields an empty body.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	conversationID := c.Param("id")

	history, err := h.service.History(c.Request.Context(), conversationID)
	if err != nil {
		h.respondError(c, err, "failed to fetch history")
		return
	}
	c.String(http.StatusOK, "%s", history)
}

// PostMessage reads the raw message text from the body, commits one full turn
// and returns the assistant reply as plain text.
func (h *ChatHandler) PostMessage(c *gin.Context) {
	conversationID := c.Param("id")

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.respondError(c, platformerrors.NewError(c.Request.Context(), platformerrors.LayerHandler,
			platformerrors.ErrorTypeValidation, "failed to read message body", err,
			"f3b9a7d1-2c64-4e08-bb5a-8e01d4c27a36"), "failed to read message body")
		return
	}

	reply, err := h.service.Post(c.Request.Context(), conversationID, string(body))
	if err != nil {
		h.respondError(c, err, "failed to post message")
		return
	}
	c.String(http.StatusOK, "%s", reply)
}

// Reset clears the conversation and acknowledges with plain text.
func (h *ChatHandler) Reset(c *gin.Context) {
	conversationID := c.Param("id")

	if err := h.service.Reset(c.Request.Context(), conversationID); err != nil {
		h.respondError(c, err, "failed to reset conversation")
		return
	}
	c.String(http.StatusOK, "OK")
}

func (h *ChatHandler) respondError(c *gin.Context, err error, message string) {
	var platformErr *platformerrors.PlatformError
	if errors.As(err, &platformErr) {
		platformerrors.LogError(h.log, platformErr)
	} else {
		h.log.Error().Err(err).Msg(message)
	}
	c.String(platformerrors.StatusFor(err), "%s", message)
}
