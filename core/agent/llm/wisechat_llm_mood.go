package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"wisechat_server/core/domain"
	"wisechat_server/pkg/resilience"
)

var (
	// ErrUnavailable is returned when no key is configured or the breaker is open.
	ErrUnavailable = errors.New("llm: completion unavailable")
	// ErrMalformedResponse covers undecodable JSON and unknown labels.
	ErrMalformedResponse = errors.New("llm: malformed mood response")
)

const moodSystemPrompt = `Eres WiseChat, un asistente empático de bienestar emocional que conversa en español.
Analiza el mensaje del usuario y responde SOLO con un objeto JSON con este formato exacto:
{
  "sentimiento": "positivo|negativo|neutro",
  "nivel_urgencia": "baja|normal|alta",
  "puntaje_urgencia": 0-3,
  "emoji_reaccion": "un emoji o cadena vacía",
  "respuesta": "respuesta breve, cálida y en español"
}

Reglas:
- puntaje_urgencia 3 y nivel_urgencia "alta" solo ante riesgo para la vida o autolesión.
- Si el nivel es "alta", la respuesta debe recomendar la línea de emergencia 123 y buscar a una persona de confianza.
- No des diagnósticos médicos.`

// moodResponse mirrors the JSON object requested in moodSystemPrompt.
type moodResponse struct {
	Sentiment    string   `json:"sentimiento"`
	UrgencyLevel string   `json:"nivel_urgencia"`
	UrgencyScore *float64 `json:"puntaje_urgencia"`
	Emoji        string   `json:"emoji_reaccion"`
	Reply        string   `json:"respuesta"`
}

// MoodCompletion classifies and answers a message with one remote call.
// It satisfies out.CompletionProvider.
type MoodCompletion struct {
	client  *Client
	breaker *resilience.Breaker
	timeout time.Duration
	hasKey  bool
}

// NewMoodCompletion builds the provider. A nil breaker gets the defaults.
func NewMoodCompletion(cfg CompletionConfig, breaker *resilience.Breaker) *MoodCompletion {
	cfg = cfg.withDefaults()
	if breaker == nil {
		breaker = resilience.NewBreaker(resilience.DefaultBreakerConfig("openai"))
	}
	return &MoodCompletion{
		client:  NewClient(cfg),
		breaker: breaker,
		timeout: cfg.Timeout,
		hasKey:  strings.TrimSpace(cfg.APIKey) != "",
	}
}

// IsAvailable is true iff a key is configured and the breaker is not open.
func (m *MoodCompletion) IsAvailable() bool {
	return m.hasKey && m.breaker.Allow()
}

// Complete performs at most one remote call bounded by the configured timeout.
func (m *MoodCompletion) Complete(ctx context.Context, text string) (*domain.ClassificationResult, error) {
	if !m.IsAvailable() {
		return nil, ErrUnavailable
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	return resilience.Do(m.breaker, func() (*domain.ClassificationResult, error) {
		raw, err := m.client.CompleteJSON(ctx, moodSystemPrompt, text)
		if err != nil {
			return nil, fmt.Errorf("mood completion: %w", err)
		}
		return parseMoodResponse(raw)
	})
}

func parseMoodResponse(raw string) (*domain.ClassificationResult, error) {
	raw = strings.TrimSpace(raw)
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	var resp moodResponse
	if err := json.Unmarshal([]byte(raw), &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	sentiment, ok := domain.ParseSentiment(resp.Sentiment)
	if !ok {
		return nil, fmt.Errorf("%w: unknown sentimiento %q", ErrMalformedResponse, resp.Sentiment)
	}
	level, ok := domain.ParseUrgencyLevel(resp.UrgencyLevel)
	if !ok {
		return nil, fmt.Errorf("%w: unknown nivel_urgencia %q", ErrMalformedResponse, resp.UrgencyLevel)
	}
	reply := strings.TrimSpace(resp.Reply)
	if reply == "" {
		return nil, fmt.Errorf("%w: empty respuesta", ErrMalformedResponse)
	}

	var score int
	if resp.UrgencyScore != nil {
		score = int(math.Round(*resp.UrgencyScore))
	} else {
		score = scoreForLevel(level)
	}

	result := domain.ClassificationResult{
		Sentiment:    sentiment,
		UrgencyLevel: level,
		UrgencyScore: score,
		Emoji:        strings.TrimSpace(resp.Emoji),
		ReplyText:    reply,
	}.Normalize()
	return &result, nil
}

func scoreForLevel(level domain.UrgencyLevel) int {
	switch level {
	case domain.UrgencyHigh:
		return 3
	case domain.UrgencyNormal:
		return 2
	default:
		return 0
	}
}
