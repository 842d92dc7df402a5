package psychescan

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type geminiStub struct {
	mu      sync.Mutex
	paths   []string
	bodies  []map[string]any
	respond func(path string) (int, any)
}

func (s *geminiStub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var body map[string]any
	_ = json.NewDecoder(r.Body).Decode(&body)

	s.mu.Lock()
	s.paths = append(s.paths, r.URL.Path)
	s.bodies = append(s.bodies, body)
	s.mu.Unlock()

	status, payload := s.respond(r.URL.Path)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func textCandidate(text string) map[string]any {
	return map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": text}},
				},
			},
		},
	}
}

func newGeminiForTest(t *testing.T, stub *geminiStub) *GeminiBackend {
	t.Helper()
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	backend, err := NewGeminiBackend(context.Background(), GeminiConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
	})
	require.NoError(t, err)
	return backend
}

func TestGeminiGenerateText(t *testing.T) {
	stub := &geminiStub{respond: func(string) (int, any) {
		return http.StatusOK, textCandidate(sampleReportJSON)
	}}
	backend := newGeminiForTest(t, stub)

	text, err := backend.GenerateText(context.Background(), TextRequest{
		Prompt:            "analyze me",
		SystemInstruction: SystemInstruction,
		Schema:            ReportSchema,
	})
	require.NoError(t, err)

	report, err := ParseReport(text)
	require.NoError(t, err)
	assert.Equal(t, "Sherlock Holmes", report.FictionalCharacter)

	require.Len(t, stub.paths, 1)
	assert.True(t, strings.HasSuffix(stub.paths[0], "models/"+DefaultGeminiTextModel+":generateContent"), stub.paths[0])

	cfg, ok := stub.bodies[0]["generationConfig"].(map[string]any)
	require.True(t, ok, "request must carry a generation config")
	assert.Equal(t, "application/json", cfg["responseMimeType"])
	schema, ok := cfg["responseSchema"].(map[string]any)
	require.True(t, ok)
	assert.ElementsMatch(t, RequiredFields(), schema["required"])
	assert.NotNil(t, stub.bodies[0]["systemInstruction"])
}

func TestGeminiGenerateTextFailures(t *testing.T) {
	t.Run("http error", func(t *testing.T) {
		stub := &geminiStub{respond: func(string) (int, any) {
			return http.StatusServiceUnavailable, map[string]any{
				"error": map[string]any{"code": 503, "message": "overloaded", "status": "UNAVAILABLE"},
			}
		}}
		_, err := newGeminiForTest(t, stub).GenerateText(context.Background(), TextRequest{Prompt: "p", Schema: ReportSchema})
		assert.Error(t, err)
	})

	t.Run("no text", func(t *testing.T) {
		stub := &geminiStub{respond: func(string) (int, any) {
			return http.StatusOK, map[string]any{"candidates": []any{}}
		}}
		_, err := newGeminiForTest(t, stub).GenerateText(context.Background(), TextRequest{Prompt: "p", Schema: ReportSchema})
		assert.Error(t, err)
	})
}

func TestGeminiGenerateImage(t *testing.T) {
	stub := &geminiStub{respond: func(string) (int, any) {
		return http.StatusOK, map[string]any{
			"candidates": []any{
				map[string]any{
					"content": map[string]any{
						"role": "model",
						"parts": []any{
							map[string]any{"text": "Here is your portrait."},
							map[string]any{"inlineData": map[string]any{"mimeType": "image/png", "data": "cG5nLWJ5dGVz"}},
						},
					},
				},
			},
		}
	}}
	backend := newGeminiForTest(t, stub)

	img, err := backend.GenerateImage(context.Background(), "a portrait")
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.MIMEType)
	assert.Equal(t, []byte("png-bytes"), img.Data)
	assert.True(t, strings.HasSuffix(stub.paths[0], "models/"+DefaultGeminiImageModel+":generateContent"), stub.paths[0])
}

func TestFirstInlineImage(t *testing.T) {
	_, err := firstInlineImage(nil)
	assert.ErrorIs(t, err, ErrNoImage)

	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "no image here"},
				{InlineData: &genai.Blob{MIMEType: "image/webp"}},
				{InlineData: &genai.Blob{MIMEType: "image/jpeg", Data: []byte{1, 2}}},
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{3}}},
			}},
		}},
	}
	img, err := firstInlineImage(resp)
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MIMEType)

	resp.Candidates[0].Content.Parts = resp.Candidates[0].Content.Parts[:1]
	_, err = firstInlineImage(resp)
	assert.ErrorIs(t, err, ErrNoImage)
}

func TestGeminiSchemaShape(t *testing.T) {
	schema := geminiSchema(ReportSchema)
	assert.Equal(t, genai.TypeObject, schema.Type)
	assert.Equal(t, RequiredFields(), schema.Required)
	assert.Equal(t, genai.TypeArray, schema.Properties["strengths"].Type)
	assert.Equal(t, genai.TypeString, schema.Properties["strengths"].Items.Type)
	assert.Equal(t, genai.TypeString, schema.Properties["title"].Type)
}
