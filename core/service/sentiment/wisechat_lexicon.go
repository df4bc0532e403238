// Package sentiment implements the local, keyword based mood classifier.
package sentiment

import (
	"fmt"
	"regexp"
	"strings"
)

// =============================================================================
// Lexicon - 감정 키워드 사전
// =============================================================================

type Category string

const (
	CategoryNegative Category = "negative"
	CategoryPositive Category = "positive"
	CategoryUrgent   Category = "urgent"
)

// MatchMode selects how lexicon terms are located in the text.
type MatchMode string

const (
	// MatchSubstring is plain case-insensitive containment.
	MatchSubstring MatchMode = "substring"
	// MatchWord anchors each term at a word start and allows a short
	// inflection suffix, so "mal" no longer fires inside "normalmente".
	MatchWord MatchMode = "word"
)

// maxInflection is the number of trailing letters MatchWord tolerates after a
// term ("deprimid" matches "deprimidas").
const maxInflection = 4

// ParseMatchMode parses a configuration value. Empty means MatchSubstring.
func ParseMatchMode(s string) (MatchMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(MatchSubstring):
		return MatchSubstring, nil
	case string(MatchWord):
		return MatchWord, nil
	default:
		return "", fmt.Errorf("unknown lexicon match mode %q", s)
	}
}

// DefaultWordLists returns the curated Spanish lists. Entries are lower-case;
// some are stems ("deprimid") and some are phrases ("me dejó").
func DefaultWordLists() map[Category][]string {
	return map[Category][]string{
		CategoryNegative: {
			"triste", "tristeza", "deprimid", "preocupad", "ansiedad", "ansios",
			"miedo", "solo", "sola", "soledad", "mal", "malo", "enojad", "rabia",
			"conflicto", "pelea", "discusión", "ruptura", "terminamos", "me dejó",
			"llorar", "lloro", "estresad", "estrés", "cansad", "frustrad",
			"decepcionad", "dolor", "angustia",
		},
		CategoryPositive: {
			"feliz", "felicidad", "contento", "contenta", "alegre", "alegría",
			"bien", "genial", "excelente", "maravillos", "agradecid", "gracias",
			"tranquil", "motivad", "emocionad", "orgullos", "bueno", "buena",
			"increíble", "amor",
		},
		CategoryUrgent: {
			"urgente", "emergencia", "ayuda urgente", "suicid", "matarme",
			"quitarme la vida", "hacerme daño", "autolesi", "no puedo más",
			"no aguanto más", "ya no quiero vivir", "quiero morir", "crisis",
		},
	}
}

// Lexicon answers keyword membership questions. It is immutable after
// construction and safe for concurrent use.
type Lexicon struct {
	mode     MatchMode
	terms    map[Category][]string
	patterns map[Category]*regexp.Regexp
}

// NewLexicon builds a lexicon over lists. A nil map selects DefaultWordLists.
func NewLexicon(mode MatchMode, lists map[Category][]string) *Lexicon {
	if lists == nil {
		lists = DefaultWordLists()
	}
	if mode == "" {
		mode = MatchSubstring
	}

	l := &Lexicon{
		mode:     mode,
		terms:    make(map[Category][]string, len(lists)),
		patterns: make(map[Category]*regexp.Regexp, len(lists)),
	}
	for cat, words := range lists {
		normalized := make([]string, 0, len(words))
		for _, w := range words {
			if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
				normalized = append(normalized, w)
			}
		}
		l.terms[cat] = normalized
		if mode == MatchWord && len(normalized) > 0 {
			l.patterns[cat] = wordPattern(normalized)
		}
	}
	return l
}

func wordPattern(terms []string) *regexp.Regexp {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return regexp.MustCompile(fmt.Sprintf(`(?:^|[^\p{L}])(?:%s)\p{L}{0,%d}(?:[^\p{L}]|$)`,
		strings.Join(quoted, "|"), maxInflection))
}

// Mode returns the configured match mode.
func (l *Lexicon) Mode() MatchMode {
	return l.mode
}

// Matches reports whether text contains any term of category.
func (l *Lexicon) Matches(text string, category Category) bool {
	lower := strings.ToLower(text)

	if l.mode == MatchWord {
		re, ok := l.patterns[category]
		return ok && re.MatchString(lower)
	}

	for _, term := range l.terms[category] {
		if strings.Contains(lower, term) {
			return true
		}
	}
	return false
}
