package psychescan

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

var (
	// ErrReportGenerationFailed matches every failure of the text stage
	ErrReportGenerationFailed = errors.New("report generation failed")
	// ErrNoImage is returned by image backends when the response carries no image
	ErrNoImage = errors.New("no image in response")
)

const (
	stageText  = "text"
	stageImage = "image"
)

// ReportGenerationError wraps the cause of a failed report generation
type ReportGenerationError struct {
	Stage string
	Err   error
}

func (e *ReportGenerationError) Error() string {
	return fmt.Sprintf("report generation failed (%s): %v", e.Stage, e.Err)
}

func (e *ReportGenerationError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrReportGenerationFailed) hold for every ReportGenerationError
func (e *ReportGenerationError) Is(target error) bool {
	return target == ErrReportGenerationFailed
}

// TextRequest is a schema-constrained text generation call
type TextRequest struct {
	Prompt            string
	SystemInstruction string
	Schema            []SchemaField
}

// TextGenerator produces JSON text matching the request schema
type TextGenerator interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// Image is an inline image payload returned by an image backend
type Image struct {
	MIMEType string
	Data     []byte
}

// DataURI encodes the image as a displayable data reference
func (img *Image) DataURI() string {
	mime := img.MIMEType
	if mime == "" {
		mime = "image/png"
	}
	return fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(img.Data))
}

// ImageGenerator produces a single illustration for a prompt
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (*Image, error)
}

// ReportMakerOptions tunes a ReportMaker
type ReportMakerOptions struct {
	// DisableImages skips the illustration stage entirely
	DisableImages bool
	TextTimeout   time.Duration
	ImageTimeout  time.Duration
	Logger        *zap.Logger
}

// ReportMaker turns quiz answers into a personality report
type ReportMaker struct {
	text  TextGenerator
	image ImageGenerator
	opts  ReportMakerOptions
}

// NewReportMaker creates a report maker. image may be nil, in which case
// reports never carry an illustration.
func NewReportMaker(text TextGenerator, image ImageGenerator, opts ReportMakerOptions) *ReportMaker {
	return &ReportMaker{
		text:  text,
		image: image,
		opts:  opts,
	}
}

// GenerateReport runs the text stage and then the best-effort image stage.
// Only a text stage failure is returned; it always matches ErrReportGenerationFailed.
func (rm *ReportMaker) GenerateReport(ctx context.Context, answers []Answer, tone Tone) (*PersonalityReport, error) {
	logger := NewLLMLogger(rm.opts.Logger, tone, len(answers))

	if !tone.Valid() {
		err := &ReportGenerationError{Stage: stageText, Err: fmt.Errorf("unknown tone %q", tone)}
		logger.Failed(stageText, err.Err)
		return nil, err
	}
	if len(answers) == 0 {
		err := &ReportGenerationError{Stage: stageText, Err: errors.New("no answers to analyze")}
		logger.Failed(stageText, err.Err)
		return nil, err
	}

	report, err := rm.generateText(ctx, answers, tone, logger)
	if err != nil {
		logger.Failed(stageText, err)
		return nil, &ReportGenerationError{Stage: stageText, Err: err}
	}

	if rm.image != nil && !rm.opts.DisableImages {
		imageURL, err := rm.generateImage(ctx, report.FictionalCharacter, tone, logger)
		if err != nil {
			// The text report is the deliverable; the illustration is best effort.
			logger.Degraded(stageImage, err)
		} else {
			report.ImageURL = imageURL
		}
	}

	logger.Done(report.HasImage())
	return report, nil
}

func (rm *ReportMaker) generateText(ctx context.Context, answers []Answer, tone Tone, logger *LLMLogger) (*PersonalityReport, error) {
	ctx, cancel := withOptionalTimeout(ctx, rm.opts.TextTimeout)
	defer cancel()

	prompt := BuildReportPrompt(answers, tone)
	logger.LogLLMRequest(stageText, backendName(rm.text), prompt)

	start := time.Now()
	text, err := rm.text.GenerateText(ctx, TextRequest{
		Prompt:            prompt,
		SystemInstruction: SystemInstruction,
		Schema:            ReportSchema,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to generate report text: %w", err)
	}
	logger.LogLLMResponse(stageText, text, time.Since(start))

	return ParseReport(text)
}

func (rm *ReportMaker) generateImage(ctx context.Context, character string, tone Tone, logger *LLMLogger) (string, error) {
	ctx, cancel := withOptionalTimeout(ctx, rm.opts.ImageTimeout)
	defer cancel()

	prompt := BuildImagePrompt(character, tone)
	logger.LogLLMRequest(stageImage, backendName(rm.image), prompt)

	start := time.Now()
	img, err := rm.image.GenerateImage(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate image: %w", err)
	}
	if img == nil || len(img.Data) == 0 {
		return "", ErrNoImage
	}
	logger.LogImageResult(img.MIMEType, len(img.Data), time.Since(start))

	return img.DataURI(), nil
}

func withOptionalTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

func backendName(backend any) string {
	if s, ok := backend.(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%T", backend)
}
