package psychescan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultQuestionBank(t *testing.T) {
	bank := DefaultQuestionBank()
	require.Len(t, bank, 5)

	var choice, free int
	for i, q := range bank {
		assert.Equal(t, i+1, q.ID, "bank order must be fixed")
		switch q.Kind {
		case KindChoice:
			choice++
			assert.Len(t, q.Options, 4)
		case KindFreeText:
			free++
			assert.NotEmpty(t, q.Placeholder)
		}
	}
	assert.Equal(t, 3, choice)
	assert.Equal(t, 2, free)
}

func TestDefaultQuestionBankReturnsCopy(t *testing.T) {
	bank := DefaultQuestionBank()
	bank[0].Text = "changed"
	bank[0].Options[0].Label = "changed"

	again := DefaultQuestionBank()
	assert.NotEqual(t, "changed", again[0].Text)
	assert.NotEqual(t, "changed", again[0].Options[0].Label)
}

func TestLoadQuestionBankRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", `questions: []`},
		{"not yaml", `questions: [`},
		{"duplicate id", `
questions:
  - {id: 1, kind: free-text, text: a, placeholder: p}
  - {id: 1, kind: free-text, text: b, placeholder: p}`},
		{"choice without options", `
questions:
  - {id: 1, kind: choice, text: a}`},
		{"duplicate option id", `
questions:
  - id: 1
    kind: choice
    text: a
    options:
      - {id: a, label: one}
      - {id: a, label: two}`},
		{"free text without placeholder", `
questions:
  - {id: 1, kind: free-text, text: a}`},
		{"unknown kind", `
questions:
  - {id: 1, kind: slider, text: a}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadQuestionBank([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}
