package sentiment

import (
	"testing"

	"wisechat_server/core/domain"
)

func TestClassify(t *testing.T) {
	c := NewClassifier(nil)

	tests := []struct {
		name      string
		text      string
		sentiment domain.Sentiment
		level     domain.UrgencyLevel
		score     int
		emoji     string
		rule      string
	}{
		{"urgent request", "Necesito ayuda urgente", domain.SentimentNegative, domain.UrgencyHigh, 3, "🚨", "urgent"},
		{"urgent dominates positive", "gracias, pero quiero morir", domain.SentimentNegative, domain.UrgencyHigh, 3, "🚨", "urgent"},
		{"urgent dominates negative", "estoy triste, es una emergencia", domain.SentimentNegative, domain.UrgencyHigh, 3, "🚨", "urgent"},
		{"negative only", "hoy estoy triste", domain.SentimentNegative, domain.UrgencyNormal, 2, "😢", "negative"},
		{"positive only", "Gracias, me siento excelente", domain.SentimentPositive, domain.UrgencyLow, 1, "😊", "positive"},
		{"mixed is neutral", "estoy feliz pero triste", domain.SentimentNeutral, domain.UrgencyLow, 0, "", "neutral"},
		{"greeting", "hola", domain.SentimentNeutral, domain.UrgencyLow, 0, "", "neutral"},
		{"empty", "", domain.SentimentNeutral, domain.UrgencyLow, 0, "", "neutral"},
		{"upper case", "ESTOY FELIZ", domain.SentimentPositive, domain.UrgencyLow, 1, "😊", "positive"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule := c.Evaluate(tt.text)
			if got.Sentiment != tt.sentiment {
				t.Errorf("Sentiment = %s, want %s", got.Sentiment, tt.sentiment)
			}
			if got.UrgencyLevel != tt.level {
				t.Errorf("UrgencyLevel = %s, want %s", got.UrgencyLevel, tt.level)
			}
			if got.UrgencyScore != tt.score {
				t.Errorf("UrgencyScore = %d, want %d", got.UrgencyScore, tt.score)
			}
			if got.Emoji != tt.emoji {
				t.Errorf("Emoji = %q, want %q", got.Emoji, tt.emoji)
			}
			if got.ReplyText != "" {
				t.Errorf("ReplyText = %q, want empty", got.ReplyText)
			}
			if rule != tt.rule {
				t.Errorf("rule = %s, want %s", rule, tt.rule)
			}
		})
	}
}

func TestClassifyInvariants(t *testing.T) {
	c := NewClassifier(NewLexicon(MatchWord, nil))
	inputs := []string{
		"", " ", "hola", "no aguanto más", "me siento sola", "qué bien", "bien y mal",
		"😀", "¿cómo me siento?", "suicidio", "estoy cansado pero contento",
	}

	for _, in := range inputs {
		r := c.Classify(in)
		if r.UrgencyScore < 0 || r.UrgencyScore > domain.MaxUrgencyScore {
			t.Errorf("Classify(%q) score %d out of range", in, r.UrgencyScore)
		}
		if (r.UrgencyScore >= 3) != (r.UrgencyLevel == domain.UrgencyHigh) {
			t.Errorf("Classify(%q) score %d disagrees with level %s", in, r.UrgencyScore, r.UrgencyLevel)
		}
		if r.UrgencyLevel == domain.UrgencyHigh && r.Sentiment != domain.SentimentNegative {
			t.Errorf("Classify(%q) high urgency must be negative, got %s", in, r.Sentiment)
		}
	}
}

func TestClassifyModesDiffer(t *testing.T) {
	text := "normalmente duermo"

	if got := NewClassifier(NewLexicon(MatchSubstring, nil)).Classify(text); got.Sentiment != domain.SentimentNegative {
		t.Errorf("substring mode: Sentiment = %s, want negativo", got.Sentiment)
	}
	if got := NewClassifier(NewLexicon(MatchWord, nil)).Classify(text); got.Sentiment != domain.SentimentNeutral {
		t.Errorf("word mode: Sentiment = %s, want neutro", got.Sentiment)
	}
}
