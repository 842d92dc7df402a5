package psychescan

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LLMLogger records the LLM traffic of a single report generation.
// Prompts and raw responses only go out at debug level.
type LLMLogger struct {
	log       *zap.Logger
	requestID string
	started   time.Time
}

// NewLLMLogger creates a transcript logger for one generation request
func NewLLMLogger(base *zap.Logger, tone Tone, numAnswers int) *LLMLogger {
	if base == nil {
		base = Logger()
	}
	requestID := uuid.NewString()
	ll := &LLMLogger{
		log:       base.With(zap.String("request_id", requestID)),
		requestID: requestID,
		started:   time.Now(),
	}
	ll.log.Info("report generation started",
		zap.String("tone", tone.Key()),
		zap.Int("answers", numAnswers),
	)
	return ll
}

// RequestID returns the correlation ID attached to every entry
func (ll *LLMLogger) RequestID() string {
	return ll.requestID
}

// LogLLMRequest logs an LLM request
func (ll *LLMLogger) LogLLMRequest(stage, model, prompt string) {
	ll.log.Debug("llm request",
		zap.String("stage", stage),
		zap.String("model", model),
		zap.String("prompt", prompt),
	)
}

// LogLLMResponse logs an LLM response
func (ll *LLMLogger) LogLLMResponse(stage, response string, elapsed time.Duration) {
	ll.log.Debug("llm response",
		zap.String("stage", stage),
		zap.Int("bytes", len(response)),
		zap.String("response", response),
		zap.Duration("elapsed", elapsed),
	)
}

// LogImageResult logs the outcome of the illustration stage
func (ll *LLMLogger) LogImageResult(mimeType string, size int, elapsed time.Duration) {
	ll.log.Debug("llm image",
		zap.String("mime_type", mimeType),
		zap.Int("bytes", size),
		zap.Duration("elapsed", elapsed),
	)
}

// Failed logs a fatal failure of the generation
func (ll *LLMLogger) Failed(stage string, err error) {
	ll.log.Error("report generation failed",
		zap.String("stage", stage),
		zap.Error(err),
		zap.Duration("elapsed", time.Since(ll.started)),
	)
}

// Degraded logs a failure that the generation recovered from
func (ll *LLMLogger) Degraded(stage string, err error) {
	ll.log.Warn("report generation degraded",
		zap.String("stage", stage),
		zap.Error(err),
	)
}

// Done logs the end of the generation
func (ll *LLMLogger) Done(withImage bool) {
	ll.log.Info("report generation complete",
		zap.Bool("image", withImage),
		zap.Duration("elapsed", time.Since(ll.started)),
	)
}
