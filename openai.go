package psychescan

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"github.com/sashabaranov/go-openai/jsonschema"
)

const (
	DefaultOpenAITextModel  = openai.GPT4o
	DefaultOpenAIImageModel = openai.CreateImageModelDallE3
)

// OpenAIConfig configures the OpenAI backend
type OpenAIConfig struct {
	APIKey     string `mapstructure:"api_key"`
	TextModel  string `mapstructure:"text_model"`
	ImageModel string `mapstructure:"image_model"`
	// BaseURL overrides the API endpoint, mostly for tests
	BaseURL string `mapstructure:"base_url"`
}

// OpenAIBackend generates reports with chat completions and illustrations with the image API
type OpenAIBackend struct {
	client     *openai.Client
	textModel  string
	imageModel string
}

// NewOpenAIBackend creates a new OpenAI backend
func NewOpenAIBackend(cfg OpenAIConfig) (*OpenAIBackend, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	if cfg.TextModel == "" {
		cfg.TextModel = DefaultOpenAITextModel
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = DefaultOpenAIImageModel
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = cfg.BaseURL
	}

	return &OpenAIBackend{
		client:     openai.NewClientWithConfig(clientConfig),
		textModel:  cfg.TextModel,
		imageModel: cfg.ImageModel,
	}, nil
}

func (o *OpenAIBackend) String() string {
	return fmt.Sprintf("openai:%s+%s", o.textModel, o.imageModel)
}

// GenerateText requests a strict json_schema response
func (o *OpenAIBackend) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	schema := openAISchema(req.Schema)

	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.SystemInstruction != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.SystemInstruction,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	resp, err := o.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model:    o.textModel,
			Messages: messages,
			ResponseFormat: &openai.ChatCompletionResponseFormat{
				Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
				JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
					Name:        "personality_report",
					Description: "Personality report built from the user's quiz answers",
					Schema:      &schema,
					Strict:      true,
				},
			},
		},
	)
	if err != nil {
		return "", fmt.Errorf("OpenAI text generation failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from %s", o.textModel)
	}
	content := resp.Choices[0].Message.Content
	if content == "" {
		return "", fmt.Errorf("no text returned from %s", o.textModel)
	}
	return content, nil
}

// GenerateImage requests a single base64 encoded image
func (o *OpenAIBackend) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	resp, err := o.client.CreateImage(ctx, openai.ImageRequest{
		Prompt:         prompt,
		Model:          o.imageModel,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI image generation failed: %w", err)
	}

	if len(resp.Data) == 0 || resp.Data[0].B64JSON == "" {
		return nil, ErrNoImage
	}
	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image payload: %w", err)
	}
	return &Image{MIMEType: "image/png", Data: data}, nil
}

func openAISchema(fields []SchemaField) jsonschema.Definition {
	def := jsonschema.Definition{
		Type:                 jsonschema.Object,
		Properties:           make(map[string]jsonschema.Definition, len(fields)),
		AdditionalProperties: false,
	}
	for _, f := range fields {
		prop := jsonschema.Definition{Description: f.Description}
		switch f.Type {
		case FieldStringList:
			prop.Type = jsonschema.Array
			prop.Items = &jsonschema.Definition{Type: jsonschema.String}
		default:
			prop.Type = jsonschema.String
		}
		def.Properties[f.Name] = prop
		def.Required = append(def.Required, f.Name)
	}
	return def
}
