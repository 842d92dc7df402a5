package psychescan

import (
	"context"
	"fmt"
	"time"
)

const (
	ProviderGemini = "gemini"
	ProviderOpenAI = "openai"
)

// Config holds the process-level settings, read once at startup
type Config struct {
	Provider string `mapstructure:"provider"`

	Gemini   GeminiConfig   `mapstructure:"gemini"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Firebase FirebaseConfig `mapstructure:"firebase"`

	TextTimeout  time.Duration `mapstructure:"text_timeout"`
	ImageTimeout time.Duration `mapstructure:"image_timeout"`
	Images       bool          `mapstructure:"images"`

	LogFile string `mapstructure:"log_file"`
	Verbose bool   `mapstructure:"verbose"`
	Style   string `mapstructure:"style"`
}

// DefaultConfig returns the configuration used when nothing is set
func DefaultConfig() Config {
	return Config{
		Provider: ProviderGemini,
		Gemini: GeminiConfig{
			TextModel:  DefaultGeminiTextModel,
			ImageModel: DefaultGeminiImageModel,
		},
		OpenAI: OpenAIConfig{
			TextModel:  DefaultOpenAITextModel,
			ImageModel: DefaultOpenAIImageModel,
		},
		Firebase: FirebaseConfig{
			BaseURL: DefaultFirebaseBaseURL,
		},
		Images: true,
		Style:  "dark",
	}
}

// Validate checks that the selected provider and the identity provider have
// credentials. Credentials are not verified beyond being present.
func (c Config) Validate() error {
	switch c.Provider {
	case ProviderGemini:
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("gemini.api_key is required (or set GEMINI_API_KEY)")
		}
	case ProviderOpenAI:
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("openai.api_key is required (or set OPENAI_API_KEY)")
		}
	default:
		return fmt.Errorf("unknown provider %q (want %s or %s)", c.Provider, ProviderGemini, ProviderOpenAI)
	}
	if c.Firebase.APIKey == "" {
		return fmt.Errorf("firebase.api_key is required (or set FIREBASE_API_KEY)")
	}
	if c.TextTimeout < 0 || c.ImageTimeout < 0 {
		return fmt.Errorf("timeouts cannot be negative")
	}
	return nil
}

// NewReportMaker builds the report maker for the configured provider
func (c Config) NewReportMaker(ctx context.Context) (*ReportMaker, error) {
	var (
		text  TextGenerator
		image ImageGenerator
	)
	switch c.Provider {
	case ProviderGemini:
		backend, err := NewGeminiBackend(ctx, c.Gemini)
		if err != nil {
			return nil, err
		}
		text, image = backend, backend
	case ProviderOpenAI:
		backend, err := NewOpenAIBackend(c.OpenAI)
		if err != nil {
			return nil, err
		}
		text, image = backend, backend
	default:
		return nil, fmt.Errorf("unknown provider %q", c.Provider)
	}

	return NewReportMaker(text, image, ReportMakerOptions{
		DisableImages: !c.Images,
		TextTimeout:   c.TextTimeout,
		ImageTimeout:  c.ImageTimeout,
		Logger:        Logger().Named("report"),
	}), nil
}

// NewGate builds the identity gate backed by Firebase Authentication
func (c Config) NewGate() (*Gate, error) {
	provider, err := NewFirebaseAuth(c.Firebase)
	if err != nil {
		return nil, err
	}
	return NewGate(provider), nil
}
