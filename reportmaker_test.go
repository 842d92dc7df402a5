package psychescan

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func exampleAnswers() []Answer {
	return []Answer{
		{QuestionID: 1, QuestionText: "Friday night move", AnswerText: "Small dinner with 1-2 close friends to vent."},
		{QuestionID: 2, QuestionText: "Wrong order", AnswerText: "Politely correct them immediately."},
		{QuestionID: 3, QuestionText: "Group role", AnswerText: "The Leader: I organize everything."},
		{QuestionID: 4, QuestionText: "Fear", AnswerText: "Being forgotten"},
		{QuestionID: 5, QuestionText: "Skill", AnswerText: "Playing piano"},
	}
}

func TestGenerateReportExampleScenario(t *testing.T) {
	text := &fakeText{response: sampleReportJSON}
	maker := NewReportMaker(text, nil, ReportMakerOptions{})

	report, err := maker.GenerateReport(context.Background(), exampleAnswers(), ToneSarcastic)
	require.NoError(t, err)

	require.Equal(t, 1, text.calls())
	req := text.requests[0]

	// every pair verbatim and in order
	last := -1
	for _, a := range exampleAnswers() {
		pair := "- Q: " + a.QuestionText + "\n  A: " + a.AnswerText
		idx := strings.Index(req.Prompt, pair)
		require.GreaterOrEqual(t, idx, 0, "prompt is missing %q", pair)
		assert.Greater(t, idx, last, "pairs must keep answer order")
		last = idx
	}
	assert.Contains(t, req.Prompt, ToneSarcastic.Instruction())
	assert.Contains(t, req.Prompt, `"Roast Master"`)
	assert.Equal(t, SystemInstruction, req.SystemInstruction)

	var fields []string
	for _, f := range req.Schema {
		fields = append(fields, f.Name)
	}
	assert.ElementsMatch(t,
		[]string{"title", "summary", "strengths", "weaknesses", "careerSuggestions", "fictionalCharacter"},
		fields)

	if diff := cmp.Diff(sampleReport(), report); diff != "" {
		t.Errorf("report mismatch (-want +got):\n%s", diff)
	}
	assert.Empty(t, report.ImageURL)
}

func TestGenerateReportAttachesImage(t *testing.T) {
	text := &fakeText{response: sampleReportJSON}
	image := &fakeImage{image: &Image{MIMEType: "image/png", Data: []byte("png-bytes")}}
	maker := NewReportMaker(text, image, ReportMakerOptions{})

	report, err := maker.GenerateReport(context.Background(), exampleAnswers(), TonePoetic)
	require.NoError(t, err)

	require.Len(t, image.prompts, 1)
	assert.Contains(t, image.prompts[0], "Sherlock Holmes")
	assert.Contains(t, image.prompts[0], TonePoetic.ImageStyle())
	assert.Equal(t, "data:image/png;base64,cG5nLWJ5dGVz", report.ImageURL)
}

func TestGenerateReportSwallowsImageFailure(t *testing.T) {
	tests := []struct {
		name  string
		image *fakeImage
	}{
		{"error", &fakeImage{err: errBackendDown}},
		{"no image", &fakeImage{}},
		{"empty payload", &fakeImage{image: &Image{MIMEType: "image/png"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			maker := NewReportMaker(&fakeText{response: sampleReportJSON}, tt.image, ReportMakerOptions{})

			report, err := maker.GenerateReport(context.Background(), exampleAnswers(), ToneGenZ)
			require.NoError(t, err)
			assert.Equal(t, "Sherlock Holmes", report.FictionalCharacter)
			assert.False(t, report.HasImage())
		})
	}
}

func TestGenerateReportSkipsImagesWhenDisabled(t *testing.T) {
	image := &fakeImage{image: &Image{Data: []byte("x")}}
	maker := NewReportMaker(&fakeText{response: sampleReportJSON}, image, ReportMakerOptions{DisableImages: true})

	report, err := maker.GenerateReport(context.Background(), exampleAnswers(), ToneFormal)
	require.NoError(t, err)
	assert.Empty(t, image.prompts)
	assert.False(t, report.HasImage())
}

func TestGenerateReportTextFailures(t *testing.T) {
	tests := []struct {
		name string
		text *fakeText
	}{
		{"backend error", &fakeText{err: errBackendDown}},
		{"empty text", &fakeText{response: ""}},
		{"not json", &fakeText{response: "I am a psychologist, not a JSON emitter."}},
		{"missing field", &fakeText{response: `{"title":"t","summary":"s","strengths":["a"],"weaknesses":["b"],"careerSuggestions":["c"]}`}},
		{"wrong type", &fakeText{response: `{"title":"t","summary":"s","strengths":"a","weaknesses":["b"],"careerSuggestions":["c"],"fictionalCharacter":"x"}`}},
		{"empty field", &fakeText{response: `{"title":"","summary":"s","strengths":["a"],"weaknesses":["b"],"careerSuggestions":["c"],"fictionalCharacter":"x"}`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			image := &fakeImage{image: &Image{Data: []byte("x")}}
			maker := NewReportMaker(tt.text, image, ReportMakerOptions{})

			report, err := maker.GenerateReport(context.Background(), exampleAnswers(), ToneFormal)
			assert.Nil(t, report)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrReportGenerationFailed))
			assert.Empty(t, image.prompts, "image stage must not run after a text failure")
		})
	}
}

func TestGenerateReportKeepsBackendCause(t *testing.T) {
	maker := NewReportMaker(&fakeText{err: errBackendDown}, nil, ReportMakerOptions{})

	_, err := maker.GenerateReport(context.Background(), exampleAnswers(), ToneFormal)
	assert.ErrorIs(t, err, errBackendDown)

	var genErr *ReportGenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, "text", genErr.Stage)
}

func TestGenerateReportRejectsBadInput(t *testing.T) {
	text := &fakeText{response: sampleReportJSON}
	maker := NewReportMaker(text, nil, ReportMakerOptions{})

	_, err := maker.GenerateReport(context.Background(), exampleAnswers(), Tone("Pirate"))
	assert.ErrorIs(t, err, ErrReportGenerationFailed)

	_, err = maker.GenerateReport(context.Background(), nil, ToneFormal)
	assert.ErrorIs(t, err, ErrReportGenerationFailed)

	assert.Zero(t, text.calls())
}

type slowText struct{}

func (slowText) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	<-ctx.Done()
	return "", ctx.Err()
}

func TestGenerateReportTextTimeout(t *testing.T) {
	maker := NewReportMaker(slowText{}, nil, ReportMakerOptions{TextTimeout: 10 * time.Millisecond})

	_, err := maker.GenerateReport(context.Background(), exampleAnswers(), ToneFormal)
	assert.ErrorIs(t, err, ErrReportGenerationFailed)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestImageDataURIDefaultsToPNG(t *testing.T) {
	img := &Image{Data: []byte{0x01}}
	assert.Equal(t, "data:image/png;base64,AQ==", img.DataURI())

	img.MIMEType = "image/jpeg"
	assert.True(t, strings.HasPrefix(img.DataURI(), "data:image/jpeg;base64,"))
}
