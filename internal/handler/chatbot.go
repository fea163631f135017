package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Answerer is implemented by *chatbot.Bot.
type Answerer interface {
	Answer(ctx context.Context, question string) (string, error)
}

// ChatbotHandler answers FAQ questions.
type ChatbotHandler struct {
	bot Answerer
	log *zap.Logger
}

func NewChatbotHandler(bot Answerer, log *zap.Logger) *ChatbotHandler {
	return &ChatbotHandler{bot: bot, log: log.Named("chatbot")}
}

type askReq struct {
	Question string `json:"question"`
}

type askResp struct {
	Answer string `json:"answer"`
}

// Ask: {question} -> {answer}.  A blank question is rejected.
func (h *ChatbotHandler) Ask(c echo.Context) error {
	var req askReq
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "invalid body")
	}
	if strings.TrimSpace(req.Question) == "" {
		return badRequest(c, "question is required")
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	answer, err := h.bot.Answer(ctx, req.Question)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(http.StatusOK, askResp{Answer: answer})
}
