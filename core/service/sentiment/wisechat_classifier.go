package sentiment

import (
	"wisechat_server/core/domain"
)

// =============================================================================
// Classifier - 규칙 테이블 기반 분류기
// =============================================================================

// signals are the lexicon hits for one text.
type signals struct {
	negative bool
	positive bool
	urgent   bool
}

type rule struct {
	name   string
	when   func(s signals) bool
	result domain.ClassificationResult
}

// rules are evaluated in order; the first match wins and the last rule
// always matches.
var rules = []rule{
	{
		name:   "urgent",
		when:   func(s signals) bool { return s.urgent },
		result: domain.ClassificationResult{Sentiment: domain.SentimentNegative, UrgencyLevel: domain.UrgencyHigh, UrgencyScore: 3, Emoji: "🚨"},
	},
	{
		name:   "negative",
		when:   func(s signals) bool { return s.negative && !s.positive },
		result: domain.ClassificationResult{Sentiment: domain.SentimentNegative, UrgencyLevel: domain.UrgencyNormal, UrgencyScore: 2, Emoji: "😢"},
	},
	{
		name:   "positive",
		when:   func(s signals) bool { return s.positive && !s.negative },
		result: domain.ClassificationResult{Sentiment: domain.SentimentPositive, UrgencyLevel: domain.UrgencyLow, UrgencyScore: 1, Emoji: "😊"},
	},
	{
		// mixed or no signal
		name:   "neutral",
		when:   func(signals) bool { return true },
		result: domain.NeutralResult(),
	},
}

// Classifier maps text to a ClassificationResult with no reply. It never fails.
type Classifier struct {
	lexicon *Lexicon
}

// NewClassifier creates a classifier; a nil lexicon uses the default
// substring lexicon.
func NewClassifier(lexicon *Lexicon) *Classifier {
	if lexicon == nil {
		lexicon = NewLexicon(MatchSubstring, nil)
	}
	return &Classifier{lexicon: lexicon}
}

// Classify returns the result of the first matching rule.
func (c *Classifier) Classify(text string) domain.ClassificationResult {
	result, _ := c.Evaluate(text)
	return result
}

// Evaluate is Classify plus the name of the rule that fired.
func (c *Classifier) Evaluate(text string) (domain.ClassificationResult, string) {
	s := signals{
		negative: c.lexicon.Matches(text, CategoryNegative),
		positive: c.lexicon.Matches(text, CategoryPositive),
		urgent:   c.lexicon.Matches(text, CategoryUrgent),
	}
	for _, r := range rules {
		if r.when(s) {
			return r.result, r.name
		}
	}
	return domain.NeutralResult(), "neutral"
}
