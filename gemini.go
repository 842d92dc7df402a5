package psychescan

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const (
	DefaultGeminiTextModel  = "gemini-2.5-flash"
	DefaultGeminiImageModel = "gemini-2.5-flash-image"
)

// GeminiConfig configures the Gemini backend
type GeminiConfig struct {
	APIKey     string `mapstructure:"api_key"`
	TextModel  string `mapstructure:"text_model"`
	ImageModel string `mapstructure:"image_model"`
	// BaseURL overrides the API endpoint, mostly for tests
	BaseURL string `mapstructure:"base_url"`
}

// GeminiBackend generates reports and illustrations with Google's Gemini API
type GeminiBackend struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

// NewGeminiBackend creates a Gemini backend
func NewGeminiBackend(ctx context.Context, cfg GeminiConfig) (*GeminiBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultGeminiTextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultGeminiImageModel
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiBackend{
		client:     client,
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
	}, nil
}

func (g *GeminiBackend) String() string {
	return fmt.Sprintf("gemini:%s+%s", g.textModel, g.imageModel)
}

// GenerateText asks Gemini for a JSON object constrained to req.Schema
func (g *GeminiBackend) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   geminiSchema(req.Schema),
	}
	if req.SystemInstruction != "" {
		config.SystemInstruction = genai.NewContentFromText(req.SystemInstruction, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.textModel, genai.Text(req.Prompt), config)
	if err != nil {
		return "", fmt.Errorf("Gemini text generation failed: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text returned from Gemini")
	}
	return text, nil
}

// GenerateImage asks Gemini for an illustration and returns the first inline image
func (g *GeminiBackend) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.imageModel, genai.Text(prompt), nil)
	if err != nil {
		return nil, fmt.Errorf("Gemini image generation failed: %w", err)
	}
	return firstInlineImage(resp)
}

func firstInlineImage(resp *genai.GenerateContentResponse) (*Image, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrNoImage
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.InlineData == nil || len(part.InlineData.Data) == 0 {
			continue
		}
		return &Image{
			MIMEType: part.InlineData.MIMEType,
			Data:     part.InlineData.Data,
		}, nil
	}
	return nil, ErrNoImage
}

func geminiSchema(fields []SchemaField) *genai.Schema {
	schema := &genai.Schema{
		Type:       genai.TypeObject,
		Properties: make(map[string]*genai.Schema, len(fields)),
	}
	for _, f := range fields {
		prop := &genai.Schema{Description: f.Description}
		switch f.Type {
		case FieldStringList:
			prop.Type = genai.TypeArray
			prop.Items = &genai.Schema{Type: genai.TypeString}
		default:
			prop.Type = genai.TypeString
		}
		schema.Properties[f.Name] = prop
		schema.Required = append(schema.Required, f.Name)
		schema.PropertyOrdering = append(schema.PropertyOrdering, f.Name)
	}
	return schema
}
