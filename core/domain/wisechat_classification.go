package domain

import "strings"

// =============================================================================
// Classification - 메시지 감정/긴급도 분류 결과
// =============================================================================

type Sentiment string

const (
	SentimentPositive Sentiment = "positivo"
	SentimentNegative Sentiment = "negativo"
	SentimentNeutral  Sentiment = "neutro"
)

type UrgencyLevel string

const (
	UrgencyLow    UrgencyLevel = "baja"
	UrgencyNormal UrgencyLevel = "normal"
	UrgencyHigh   UrgencyLevel = "alta"
)

// AlertThreshold is the urgency score at which a message raises an alert.
const AlertThreshold = 3

// MaxUrgencyScore bounds UrgencyScore.
const MaxUrgencyScore = 3

// ClassificationResult is the terminal output of the mood pipeline.
// UrgencyScore >= 3 holds exactly when UrgencyLevel is UrgencyHigh.
type ClassificationResult struct {
	Sentiment    Sentiment    `json:"sentimiento"`
	UrgencyLevel UrgencyLevel `json:"nivel_urgencia"`
	UrgencyScore int          `json:"puntaje_urgencia"`
	Emoji        string       `json:"emoji_reaccion,omitempty"`
	ReplyText    string       `json:"respuesta,omitempty"`
}

// NeutralResult is the classification carried by assistant messages.
func NeutralResult() ClassificationResult {
	return ClassificationResult{
		Sentiment:    SentimentNeutral,
		UrgencyLevel: UrgencyLow,
		UrgencyScore: 0,
	}
}

// TriggersAlert reports whether the score reached the alert threshold.
func (r ClassificationResult) TriggersAlert() bool {
	return r.UrgencyScore >= AlertThreshold
}

// WithReply returns a copy of r carrying reply.
func (r ClassificationResult) WithReply(reply string) ClassificationResult {
	r.ReplyText = reply
	return r
}

// Normalize clamps the score to 0..3 and derives the level from it
// (0-1 LOW, 2 NORMAL, 3 HIGH). The score wins whenever the two disagree.
func (r ClassificationResult) Normalize() ClassificationResult {
	if r.UrgencyScore < 0 {
		r.UrgencyScore = 0
	}
	if r.UrgencyScore > MaxUrgencyScore {
		r.UrgencyScore = MaxUrgencyScore
	}

	r.UrgencyLevel = UrgencyLevelForScore(r.UrgencyScore)

	if r.Sentiment == "" {
		r.Sentiment = SentimentNeutral
	}
	return r
}

// UrgencyLevelForScore maps a score to its canonical level.
func UrgencyLevelForScore(score int) UrgencyLevel {
	switch {
	case score >= AlertThreshold:
		return UrgencyHigh
	case score == 2:
		return UrgencyNormal
	default:
		return UrgencyLow
	}
}

// ParseSentiment accepts the Spanish labels and their English equivalents.
func ParseSentiment(s string) (Sentiment, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "positivo", "positive":
		return SentimentPositive, true
	case "negativo", "negative":
		return SentimentNegative, true
	case "neutro", "neutral":
		return SentimentNeutral, true
	default:
		return "", false
	}
}

// ParseUrgencyLevel accepts the Spanish labels and their English equivalents.
func ParseUrgencyLevel(s string) (UrgencyLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "baja", "low":
		return UrgencyLow, true
	case "normal", "media", "medium":
		return UrgencyNormal, true
	case "alta", "high":
		return UrgencyHigh, true
	default:
		return "", false
	}
}
