// handlers_chat.go - Chat handler: retrieval plus answer generation
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/expense-assistant/backend/internal/llm"
	"github.com/expense-assistant/backend/internal/retrieval"
)

// chatResponse is the successful chat payload.
type chatResponse struct {
	Answer  string   `json:"answer"`
	Sources []string `json:"sources"`
}

// ChatHandlerImpl implements the ChatHandler interface
type ChatHandlerImpl struct {
	assembler *retrieval.Assembler
	generator llm.Generator
}

// NewChatHandler creates a new chat handler instance
func NewChatHandler(assembler *retrieval.Assembler, generator llm.Generator) ChatHandler {
	return &ChatHandlerImpl{
		assembler: assembler,
		generator: generator,
	}
}

// HandleChat answers a question about the user's uploaded expenses. The
// generator is only invoked once a non-empty context has been assembled.
func (h *ChatHandlerImpl) HandleChat(c echo.Context) error {
	var req chatRequest
	if err := c.Bind(&req); err != nil {
		return NewBadRequestError("invalid JSON body", err)
	}

	if err := req.validate(); err != nil {
		return err
	}

	ctx := c.Request().Context()

	prompt, err := h.assembler.Assemble(ctx, req.UserID, req.Question)
	if err != nil {
		return err // translated by the error handler
	}

	answer, err := h.generator.Complete(ctx, prompt.Context, prompt.Question)
	if err != nil {
		return NewUpstreamError("answer generation failed", err)
	}

	return c.JSON(http.StatusOK, chatResponse{
		Answer:  answer,
		Sources: prompt.Sources(),
	})
}
