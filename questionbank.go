package psychescan

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed questions.yaml
var defaultQuestionsYAML []byte

var (
	defaultBank     []Question
	defaultBankOnce sync.Once
)

// DefaultQuestionBank returns a copy of the built-in five question bank
func DefaultQuestionBank() []Question {
	defaultBankOnce.Do(func() {
		bank, err := LoadQuestionBank(defaultQuestionsYAML)
		if err != nil {
			panic(fmt.Sprintf("embedded question bank is invalid: %v", err))
		}
		defaultBank = bank
	})
	return cloneBank(defaultBank)
}

// LoadQuestionBank decodes and validates a question bank document
func LoadQuestionBank(data []byte) ([]Question, error) {
	var doc struct {
		Questions []Question `yaml:"questions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse question bank: %w", err)
	}
	if err := validateBank(doc.Questions); err != nil {
		return nil, err
	}
	return doc.Questions, nil
}

func validateBank(bank []Question) error {
	if len(bank) == 0 {
		return errors.New("question bank is empty")
	}

	seen := make(map[int]bool, len(bank))
	for i, q := range bank {
		if seen[q.ID] {
			return fmt.Errorf("question %d: duplicate id", q.ID)
		}
		seen[q.ID] = true

		if strings.TrimSpace(q.Text) == "" {
			return fmt.Errorf("question %d: text is empty", q.ID)
		}

		switch q.Kind {
		case KindChoice:
			if len(q.Options) == 0 {
				return fmt.Errorf("question %d: choice question has no options", q.ID)
			}
			optionIDs := make(map[string]bool, len(q.Options))
			for _, opt := range q.Options {
				if opt.ID == "" || strings.TrimSpace(opt.Label) == "" {
					return fmt.Errorf("question %d: option needs an id and a label", q.ID)
				}
				if optionIDs[opt.ID] {
					return fmt.Errorf("question %d: duplicate option id %q", q.ID, opt.ID)
				}
				optionIDs[opt.ID] = true
			}
		case KindFreeText:
			if len(q.Options) > 0 {
				return fmt.Errorf("question %d: free-text question cannot have options", q.ID)
			}
			if strings.TrimSpace(q.Placeholder) == "" {
				return fmt.Errorf("question %d: free-text question has no placeholder", q.ID)
			}
		default:
			return fmt.Errorf("question at position %d: unknown kind %q", i, q.Kind)
		}
	}
	return nil
}

func cloneBank(bank []Question) []Question {
	out := make([]Question, len(bank))
	for i, q := range bank {
		out[i] = q
		if q.Options != nil {
			out[i].Options = append([]Option(nil), q.Options...)
		}
	}
	return out
}
