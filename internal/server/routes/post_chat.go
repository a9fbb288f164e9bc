package routes

import (
	"net/http"

	"github.com/nwsirlp/skillgraph/internal/server/middleware"
	serverutil "github.com/nwsirlp/skillgraph/internal/server/util"
	"github.com/nwsirlp/skillgraph/pkg/ai"
	"github.com/nwsirlp/skillgraph/pkg/assist"
	"github.com/nwsirlp/skillgraph/pkg/logger"

	_ "github.com/go-playground/validator"
	"github.com/labstack/echo/v4"
)

// ChatHandler answers one assistant conversation turn. The assistant itself
// degrades internally, so this handler only fails on malformed requests.
func ChatHandler(c echo.Context) error {
	type chatMessage struct {
		Message string `json:"message" validate:"required"`
		Role    string `json:"role" validate:"required,oneof=user assistant"`
	}

	type chatBody struct {
		Messages []chatMessage `json:"messages" validate:"required,min=1,dive"`
	}

	type chatResponse struct {
		Answer    string                     `json:"answer"`
		Citations []serverutil.CitationData  `json:"citations"`
		Trace     assist.SearchTraceSnapshot `json:"trace"`
	}

	data := new(chatBody)
	if err := c.Bind(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}
	if err := c.Validate(data); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request body"})
	}

	msgs := make([]ai.ChatMessage, 0, len(data.Messages))
	for _, m := range data.Messages {
		msgs = append(msgs, ai.ChatMessage{Message: m.Message, Role: m.Role})
	}

	ctx := c.Request().Context()
	app := c.(*middleware.AppContext).App

	trace := assist.NewSearchTrace()
	answer := app.Assistant.Chat(ctx, msgs, trace)

	citations, err := serverutil.ResolveEmployeeCitations(ctx, app.Store, answer)
	if err != nil {
		// The answer is still useful without its candidate cards.
		logger.Error("Failed to resolve citations", "err", err)
		citations = nil
	}
	if citations == nil {
		citations = []serverutil.CitationData{}
	}

	return c.JSON(http.StatusOK, chatResponse{
		Answer:    answer,
		Citations: citations,
		Trace:     trace.Snapshot(),
	})
}
