// Package responder produces canned, sentiment aware replies in Spanish.
package responder

import (
	"hash/fnv"
	"regexp"
	"strings"
	"unicode"

	"wisechat_server/core/domain"
)

// =============================================================================
// Template Responder - 의도 패턴 테이블 기반 응답
// =============================================================================

type Intent string

const (
	IntentCrisis       Intent = "crisis"
	IntentGreeting     Intent = "greeting"
	IntentHelp         Intent = "help"
	IntentDistress     Intent = "distress"
	IntentRelationship Intent = "relationship"
	IntentPositive     Intent = "positive"
	IntentFeeling      Intent = "feeling"
	IntentShort        Intent = "short"
	IntentGratitude    Intent = "gratitude"
	IntentDefault      Intent = "default"
)

// shortReplyMaxRunes is the length at or below which a trimmed message is
// treated as a short acknowledgement.
const shortReplyMaxRunes = 5

// intentRule matches against the trimmed, lower-cased text.
type intentRule struct {
	intent  Intent
	match   func(text string) bool
	replies []string
}

// Responder is immutable after construction and safe for concurrent use.
type Responder struct {
	crisis   *regexp.Regexp
	rules    []intentRule
	defaults map[domain.Sentiment][]string
}

// New creates a responder with the built-in Spanish intent table.
func New() *Responder {
	ackTokens := map[string]bool{
		"ok": true, "si": true, "sí": true, "no": true, "vale": true,
		"ya": true, "aja": true, "ajá": true, "mmm": true, "bueno": true,
	}

	return &Responder{
		crisis: phrases(
			"urgente", "emergencia", "suicid", "matarme", "quitarme la vida",
			"hacerme daño", "autolesi", "no puedo más", "no puedo mas",
			"no aguanto más", "no aguanto mas", "ya no quiero vivir", "quiero morir",
			"crisis",
		),
		rules: []intentRule{
			{
				intent: IntentGreeting,
				match: words("hola", "buenas", "buenos días", "buenos dias", "buenas tardes",
					"buenas noches", "hey", "saludos").MatchString,
				replies: []string{greetingReply},
			},
			{
				intent: IntentHelp,
				match: phrases("necesito ayuda", "ayúdame", "ayudame", "puedes ayudarme",
					"qué hago", "que hago", "no sé qué hacer", "no se que hacer", "consejo").MatchString,
				replies: helpReplies,
			},
			{
				intent: IntentDistress,
				match: or(
					stems("triste", "tristeza", "deprimid", "ansiedad", "ansios", "llorar", "lloro",
						"estrés", "estres", "angustia", "miedo", "agobiad"),
					words("solo", "sola", "mal"),
				),
				replies: distressReplies,
			},
			{
				intent: IntentRelationship,
				match: stems("pareja", "novio", "novia", "ruptura", "terminamos", "pelea",
					"discusión", "discusion", "me dejó", "me dejo", "conflicto").MatchString,
				replies: relationshipReplies,
			},
			{
				intent: IntentPositive,
				match: or(
					stems("feliz", "contento", "contenta", "alegre", "genial", "excelente",
						"maravillos", "increíble", "increible"),
					words("bien"),
				),
				replies: positiveReplies,
			},
			{
				intent: IntentFeeling,
				match: phrases("cómo me siento", "como me siento", "qué siento", "que siento",
					"por qué me siento", "por que me siento", "qué me pasa", "que me pasa").MatchString,
				replies: []string{feelingReply},
			},
			{
				intent: IntentShort,
				match: func(text string) bool {
					if len([]rune(text)) <= shortReplyMaxRunes {
						return true
					}
					return ackTokens[strings.TrimFunc(text, unicode.IsPunct)]
				},
				replies: shortReplies,
			},
			{
				intent:  IntentGratitude,
				match:   phrases("gracias", "te agradezco", "muy amable").MatchString,
				replies: gratitudeReplies,
			},
		},
		defaults: map[domain.Sentiment][]string{
			domain.SentimentPositive: defaultPositiveReplies,
			domain.SentimentNegative: defaultNegativeReplies,
			domain.SentimentNeutral:  defaultNeutralReplies,
		},
	}
}

// Respond returns prior with a reply attached. The classification fields are
// passed through untouched.
func (r *Responder) Respond(text string, prior domain.ClassificationResult) domain.ClassificationResult {
	reply, _ := r.Reply(text, prior)
	return prior.WithReply(reply)
}

// Reply picks the reply text and reports which intent produced it. The
// crisis check runs before every other rule.
func (r *Responder) Reply(text string, prior domain.ClassificationResult) (string, Intent) {
	normalized := strings.ToLower(strings.TrimSpace(text))

	if prior.UrgencyLevel == domain.UrgencyHigh || r.crisis.MatchString(normalized) {
		return pick(crisisReplies, normalized), IntentCrisis
	}

	for _, rule := range r.rules {
		if rule.match(normalized) {
			return pick(rule.replies, normalized), rule.intent
		}
	}

	replies, ok := r.defaults[prior.Sentiment]
	if !ok {
		replies = defaultNeutralReplies
	}
	return pick(replies, normalized), IntentDefault
}

// pick chooses a variant deterministically from the text.
func pick(variants []string, text string) string {
	if len(variants) == 1 {
		return variants[0]
	}
	h := fnv.New32a()
	_, _ = h.Write([]byte(text))
	return variants[h.Sum32()%uint32(len(variants))]
}

// =============================================================================
// Pattern helpers
// =============================================================================

const letterBoundary = `(?:^|[^\p{L}])`

func alternation(terms []string) string {
	quoted := make([]string, len(terms))
	for i, t := range terms {
		quoted[i] = regexp.QuoteMeta(t)
	}
	return "(?:" + strings.Join(quoted, "|") + ")"
}

// words matches whole words or phrases.
func words(terms ...string) *regexp.Regexp {
	return regexp.MustCompile(letterBoundary + alternation(terms) + `(?:[^\p{L}]|$)`)
}

// stems matches terms at a word start with any continuation.
func stems(terms ...string) *regexp.Regexp {
	return regexp.MustCompile(letterBoundary + alternation(terms))
}

// phrases matches plain containment.
func phrases(terms ...string) *regexp.Regexp {
	return regexp.MustCompile(alternation(terms))
}

func or(patterns ...*regexp.Regexp) func(string) bool {
	return func(text string) bool {
		for _, p := range patterns {
			if p.MatchString(text) {
				return true
			}
		}
		return false
	}
}
