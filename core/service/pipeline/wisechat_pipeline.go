// Package pipeline orchestrates classification and reply generation for one message.
package pipeline

import (
	"context"
	"errors"
	"strings"
	"time"

	"wisechat_server/core/domain"
	"wisechat_server/core/port/out"
	"wisechat_server/core/service/responder"
	"wisechat_server/core/service/sentiment"
	"wisechat_server/pkg/logger"
	"wisechat_server/pkg/metrics"
)

// =============================================================================
// Pipeline
// =============================================================================
//
// CLASSIFIED -> EXTERNAL_ATTEMPTED -> RESPONDED
//            \                     \-> FALLBACK -> RESPONDED
//             \-> FALLBACK -> RESPONDED (provider unavailable)

// Source tells where a reply came from. It is used for logs and metrics only.
type Source string

const (
	SourceEnhanced Source = "enhanced"
	SourceTemplate Source = "template"
)

// Outcome is the result of processing one message.
type Outcome struct {
	Result         domain.ClassificationResult
	Source         Source
	AlertTriggered bool
}

// Deps holds the pipeline collaborators. Only Classifier and Responder are
// required; a nil Completion means templates only.
type Deps struct {
	Classifier *sentiment.Classifier
	Responder  *responder.Responder
	Completion out.CompletionProvider
	Metrics    *metrics.PipelineMetrics
}

// Pipeline holds no mutable state and is safe for concurrent use.
type Pipeline struct {
	classifier *sentiment.Classifier
	responder  *responder.Responder
	completion out.CompletionProvider
	metrics    *metrics.PipelineMetrics
}

func New(deps Deps) *Pipeline {
	p := &Pipeline{
		classifier: deps.Classifier,
		responder:  deps.Responder,
		completion: deps.Completion,
		metrics:    deps.Metrics,
	}
	if p.classifier == nil {
		p.classifier = sentiment.NewClassifier(nil)
	}
	if p.responder == nil {
		p.responder = responder.New()
	}
	return p
}

// Classify runs the local classifier. It never fails.
func (p *Pipeline) Classify(text string) domain.ClassificationResult {
	result := p.classifier.Classify(text)
	p.metrics.RecordClassification(string(result.Sentiment), string(result.UrgencyLevel))
	return result
}

// GenerateReply returns an enhanced result when the external provider
// succeeds, otherwise prior with a template reply. It never fails and the
// reply is never empty.
func (p *Pipeline) GenerateReply(ctx context.Context, text string, prior domain.ClassificationResult) domain.ClassificationResult {
	result, _ := p.generate(ctx, text, prior)
	return result
}

// Process classifies the text, generates a reply and evaluates the alert threshold.
func (p *Pipeline) Process(ctx context.Context, text string) Outcome {
	local := p.Classify(text)
	result, source := p.generate(ctx, text, local)

	outcome := Outcome{
		Result:         result,
		Source:         source,
		AlertTriggered: result.TriggersAlert(),
	}
	if outcome.AlertTriggered {
		p.metrics.RecordAlert()
	}
	return outcome
}

func (p *Pipeline) generate(ctx context.Context, text string, prior domain.ClassificationResult) (domain.ClassificationResult, Source) {
	start := time.Now()

	if p.completion != nil && p.completion.IsAvailable() {
		enhanced, err := p.completion.Complete(ctx, text)
		if err == nil && enhanced != nil && strings.TrimSpace(enhanced.ReplyText) != "" {
			p.metrics.RecordReply(string(SourceEnhanced), time.Since(start))
			return enhanced.Normalize(), SourceEnhanced
		}
		if err == nil {
			err = errors.New("empty enhanced reply")
		}

		logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"reason":     failureReason(err),
			"sentiment":  prior.Sentiment,
			"urgency":    prior.UrgencyLevel,
			"elapsed_ms": time.Since(start).Milliseconds(),
		}).Warn("[Pipeline.GenerateReply] external completion failed, using templates")
		p.metrics.RecordExternalFailure(failureReason(err))
	}

	result := p.responder.Respond(text, prior)
	p.metrics.RecordReply(string(SourceTemplate), time.Since(start))
	return result, SourceTemplate
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "canceled"
	default:
		return "error"
	}
}
