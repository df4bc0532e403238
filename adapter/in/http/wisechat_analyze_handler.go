package http

import (
	"strings"
	"unicode/utf8"

	"wisechat_server/core/port/in"
	"wisechat_server/pkg/apperr"

	"github.com/gofiber/fiber/v2"
)

const maxAnalyzeRunes = 4000

// AnalyzeHandler exposes the local classifier on its own.
type AnalyzeHandler struct {
	analyzer in.Analyzer
}

func NewAnalyzeHandler(analyzer in.Analyzer) *AnalyzeHandler {
	return &AnalyzeHandler{analyzer: analyzer}
}

func (h *AnalyzeHandler) Register(router fiber.Router) {
	router.Post("/analyze", h.Analyze)
}

type analyzeRequest struct {
	Text string `json:"text"`
}

func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	var req analyzeRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return apperr.MissingField("text")
	}
	if utf8.RuneCountInString(text) > maxAnalyzeRunes {
		return apperr.InvalidInput("text", "too long")
	}

	return c.JSON(h.analyzer.Classify(text))
}
