package domain

import (
	"testing"

	"github.com/google/uuid"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   ClassificationResult
		want ClassificationResult
	}{
		{
			name: "score above range clamps and forces high",
			in:   ClassificationResult{Sentiment: SentimentNegative, UrgencyLevel: UrgencyNormal, UrgencyScore: 7},
			want: ClassificationResult{Sentiment: SentimentNegative, UrgencyLevel: UrgencyHigh, UrgencyScore: 3},
		},
		{
			name: "negative score clamps to zero",
			in:   ClassificationResult{Sentiment: SentimentNeutral, UrgencyLevel: UrgencyLow, UrgencyScore: -2},
			want: ClassificationResult{Sentiment: SentimentNeutral, UrgencyLevel: UrgencyLow, UrgencyScore: 0},
		},
		{
			name: "high level with low score follows the score",
			in:   ClassificationResult{Sentiment: SentimentNegative, UrgencyLevel: UrgencyHigh, UrgencyScore: 1},
			want: ClassificationResult{Sentiment: SentimentNegative, UrgencyLevel: UrgencyLow, UrgencyScore: 1},
		},
		{
			name: "normal level with zero score follows the score",
			in:   ClassificationResult{Sentiment: SentimentNegative, UrgencyLevel: UrgencyNormal, UrgencyScore: 0},
			want: ClassificationResult{Sentiment: SentimentNegative, UrgencyLevel: UrgencyLow, UrgencyScore: 0},
		},
		{
			name: "low level with score two becomes normal",
			in:   ClassificationResult{Sentiment: SentimentNegative, UrgencyLevel: UrgencyLow, UrgencyScore: 2},
			want: ClassificationResult{Sentiment: SentimentNegative, UrgencyLevel: UrgencyNormal, UrgencyScore: 2},
		},
		{
			name: "consistent result is unchanged",
			in:   ClassificationResult{Sentiment: SentimentPositive, UrgencyLevel: UrgencyLow, UrgencyScore: 1, Emoji: "😊"},
			want: ClassificationResult{Sentiment: SentimentPositive, UrgencyLevel: UrgencyLow, UrgencyScore: 1, Emoji: "😊"},
		},
		{
			name: "missing fields fill with neutral defaults",
			in:   ClassificationResult{UrgencyScore: 2},
			want: ClassificationResult{Sentiment: SentimentNeutral, UrgencyLevel: UrgencyNormal, UrgencyScore: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if got != tt.want {
				t.Errorf("Normalize() = %+v, want %+v", got, tt.want)
			}
			if got.UrgencyLevel != UrgencyLevelForScore(got.UrgencyScore) {
				t.Errorf("score %d and level %s disagree", got.UrgencyScore, got.UrgencyLevel)
			}
		})
	}
}

func TestTriggersAlert(t *testing.T) {
	for score := 0; score <= MaxUrgencyScore; score++ {
		r := ClassificationResult{UrgencyScore: score}
		if got, want := r.TriggersAlert(), score >= 3; got != want {
			t.Errorf("score %d: TriggersAlert() = %v, want %v", score, got, want)
		}
	}
}

func TestParseLabels(t *testing.T) {
	sentiments := map[string]Sentiment{
		"positivo": SentimentPositive,
		"NEGATIVE": SentimentNegative,
		" neutro ": SentimentNeutral,
	}
	for in, want := range sentiments {
		got, ok := ParseSentiment(in)
		if !ok || got != want {
			t.Errorf("ParseSentiment(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseSentiment("confuso"); ok {
		t.Error("ParseSentiment(confuso) should fail")
	}

	levels := map[string]UrgencyLevel{
		"baja":   UrgencyLow,
		"media":  UrgencyNormal,
		"HIGH":   UrgencyHigh,
		"normal": UrgencyNormal,
	}
	for in, want := range levels {
		got, ok := ParseUrgencyLevel(in)
		if !ok || got != want {
			t.Errorf("ParseUrgencyLevel(%q) = %q, %v; want %q", in, got, ok, want)
		}
	}
	if _, ok := ParseUrgencyLevel("extrema"); ok {
		t.Error("ParseUrgencyLevel(extrema) should fail")
	}
}

func TestMessageConstructors(t *testing.T) {
	r := ClassificationResult{Sentiment: SentimentNegative, UrgencyLevel: UrgencyHigh, UrgencyScore: 3, Emoji: "🚨"}
	chat := NewChat(uuid.New(), "diario", "")

	user := NewUserMessage(1, chat.UserID, "no aguanto más", r, chat.CreatedAt)
	if !user.AlertTriggered {
		t.Error("user message with score 3 should trigger an alert")
	}
	if user.Status != MessageStatusSent {
		t.Errorf("Status = %q, want %q", user.Status, MessageStatusSent)
	}

	bot := NewBotMessage(1, chat.UserID, "respuesta", user.CreatedAt)
	if !bot.IsBot || bot.AlertTriggered || bot.UrgencyScore != 0 || bot.Emoji != "" {
		t.Errorf("bot message should carry neutral defaults, got %+v", bot)
	}
	if bot.Sentiment != SentimentNeutral || bot.UrgencyLevel != UrgencyLow {
		t.Errorf("bot classification = %s/%s, want neutro/baja", bot.Sentiment, bot.UrgencyLevel)
	}
	if !bot.CreatedAt.After(user.CreatedAt) {
		t.Error("bot message must sort after the user message")
	}
}

func TestChatAggregate(t *testing.T) {
	chat := NewChat(uuid.New(), "chat", "desc")
	if chat.SentimentGeneral != SentimentNeutral || chat.UrgencyGeneral != UrgencyLow {
		t.Fatalf("new chat aggregate = %s/%s, want neutro/baja", chat.SentimentGeneral, chat.UrgencyGeneral)
	}

	chat.ApplyAggregate(ClassificationResult{Sentiment: SentimentNegative, UrgencyLevel: UrgencyHigh, UrgencyScore: 3})
	chat.ApplyAggregate(ClassificationResult{Sentiment: SentimentPositive, UrgencyLevel: UrgencyLow, UrgencyScore: 1})

	if got := chat.Aggregate(); got.Sentiment != SentimentPositive || got.UrgencyLevel != UrgencyLow {
		t.Errorf("aggregate after two writes = %+v, want last write", got)
	}
}
