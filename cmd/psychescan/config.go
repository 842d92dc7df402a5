package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"psychescan"
)

const envPrefix = "PSYCHESCAN"

// fallbackEnv lists the conventional variable names checked when the
// prefixed one is unset, in order of preference.
var fallbackEnv = map[string][]string{
	"gemini.api_key":   {"GEMINI_API_KEY", "API_KEY"},
	"openai.api_key":   {"OPENAI_API_KEY"},
	"firebase.api_key": {"FIREBASE_API_KEY"},
}

func bindFlags(cmd *cobra.Command, v *viper.Viper) {
	flags := cmd.PersistentFlags()
	flags.String("config", "", "path to a YAML config file")
	flags.String("provider", psychescan.ProviderGemini, "report backend (gemini or openai)")
	flags.Bool("images", true, "generate an illustration of the matched character")
	flags.Duration("text-timeout", 0, "timeout for the report text request (0 = none)")
	flags.Duration("image-timeout", 0, "timeout for the illustration request (0 = none)")
	flags.String("log-file", "", "log file path (default: psychescan.log in the temp dir)")
	flags.String("style", "dark", "glamour style for the report (dark, light, notty, ...)")
	flags.BoolP("verbose", "v", false, "enable debug logging")

	for key, flag := range map[string]string{
		"provider":      "provider",
		"images":        "images",
		"text_timeout":  "text-timeout",
		"image_timeout": "image-timeout",
		"log_file":      "log-file",
		"style":         "style",
		"verbose":       "verbose",
	} {
		_ = v.BindPFlag(key, flags.Lookup(flag))
	}
}

// loadConfig resolves the configuration from, lowest to highest precedence:
// defaults, the config file, .env and the environment, then flags.
func loadConfig(cmd *cobra.Command, v *viper.Viper) (psychescan.Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return psychescan.Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	defaults := psychescan.DefaultConfig()
	v.SetDefault("provider", defaults.Provider)
	v.SetDefault("gemini.text_model", defaults.Gemini.TextModel)
	v.SetDefault("gemini.image_model", defaults.Gemini.ImageModel)
	v.SetDefault("openai.text_model", defaults.OpenAI.TextModel)
	v.SetDefault("openai.image_model", defaults.OpenAI.ImageModel)
	v.SetDefault("firebase.base_url", defaults.Firebase.BaseURL)
	v.SetDefault("images", defaults.Images)
	v.SetDefault("style", defaults.Style)
	v.SetDefault("log_file", filepath.Join(os.TempDir(), "psychescan.log"))

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Nested keys are only visible to Unmarshal once viper knows about them.
	for _, key := range []string{"gemini.api_key", "gemini.base_url", "openai.api_key", "openai.base_url", "firebase.api_key"} {
		_ = v.BindEnv(key)
	}

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return psychescan.Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	for key, names := range fallbackEnv {
		if v.GetString(key) != "" {
			continue
		}
		for _, name := range names {
			if val := os.Getenv(name); val != "" {
				v.Set(key, val)
				break
			}
		}
	}

	var cfg psychescan.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return psychescan.Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}
