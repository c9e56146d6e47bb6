package api

import (
	"errors"
	"net/http"

	"github.com/ml4teachers/helf/internal/assistant"

	"github.com/gin-gonic/gin"
)

// AssistantHandler holds the generation and post-processing dependencies.
type AssistantHandler struct {
	generator assistant.Generator
	processor *assistant.Processor
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(generator assistant.Generator, processor *assistant.Processor) *AssistantHandler {
	return &AssistantHandler{generator: generator, processor: processor}
}

// --- DTOs for API (Data Transfer Objects) ---

// MessageRequest carries the conversation so far; the last message is the
// user's new turn.
type MessageRequest struct {
	Messages []assistant.Message `json:"messages" binding:"required,min=1,dive"`
}

// MessageResponse mirrors assistant.Result for the wire: the raw text plus
// the outcome of structured-block processing.
type MessageResponse struct {
	Content string            `json:"content"`
	Success bool              `json:"success"`
	Message string            `json:"message,omitempty"`
	Type    string            `json:"type,omitempty"`
	Data    assistant.Payload `json:"data,omitempty"`
}

// --- Handler Methods ---

// SendMessage generates an assistant reply for the conversation and runs it
// through the payload processor before returning it.
func (h *AssistantHandler) SendMessage(c *gin.Context) {
	var req MessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	reply, err := h.generator.Generate(c.Request.Context(), req.Messages)
	if err != nil {
		if errors.Is(err, assistant.ErrGenerationTimeout) {
			abortWithError(c, http.StatusGatewayTimeout, "Assistant did not respond in time.")
		} else {
			abortWithError(c, http.StatusBadGateway, "Assistant request failed.")
		}
		return
	}

	result := h.processor.Process(c.Request.Context(), reply)
	c.JSON(http.StatusOK, MessageResponse{
		Content: result.Content,
		Success: result.Success,
		Message: result.Message,
		Type:    result.Type,
		Data:    result.Payload,
	})
}
