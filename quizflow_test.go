package psychescan

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuizFlowCompletesInBankOrder(t *testing.T) {
	bank := DefaultQuestionBank()
	flow := NewQuizFlow(bank)

	var answers []Answer
	for i, q := range bank {
		require.Equal(t, i, flow.Index())
		require.Equal(t, q.ID, flow.Current().ID)

		var (
			out  []Answer
			done bool
			err  error
		)
		if q.Kind == KindChoice {
			out, done, err = flow.Choose(q.Options[1].ID)
		} else {
			out, done, err = flow.Submit("  Playing piano  ")
		}
		require.NoError(t, err)
		assert.Equal(t, i == len(bank)-1, done)
		if done {
			answers = out
		}
	}

	require.Len(t, answers, len(bank))
	for i := range bank {
		assert.Equal(t, bank[i].ID, answers[i].QuestionID)
		assert.Equal(t, bank[i].Text, answers[i].QuestionText)
	}
	assert.Equal(t, bank[1].Options[1].Label, answers[1].AnswerText)
	assert.Equal(t, "Playing piano", answers[4].AnswerText, "free text is trimmed")
	assert.NoError(t, ValidateAnswers(bank, answers))
	assert.Nil(t, flow.Current())
	assert.Equal(t, 1.0, flow.Progress())
}

func TestQuizFlowRejectsBlankFreeText(t *testing.T) {
	bank := DefaultQuestionBank()
	flow := NewQuizFlow(bank)
	for _, q := range bank[:3] {
		_, _, err := flow.Submit(q.Options[0].Label)
		require.NoError(t, err)
	}
	require.Equal(t, KindFreeText, flow.Current().Kind)

	for _, blank := range []string{"", "   ", "\t\n"} {
		_, done, err := flow.Submit(blank)
		assert.ErrorIs(t, err, ErrEmptyAnswer)
		assert.False(t, done)
	}
	assert.Equal(t, 3, flow.Index(), "blank answer must not advance")
	assert.Len(t, flow.Answers(), 3, "blank answer must not be appended")
}

func TestQuizFlowRejectsUnknownOption(t *testing.T) {
	flow := NewQuizFlow(DefaultQuestionBank())

	_, _, err := flow.Submit("Something that is not an option")
	assert.ErrorIs(t, err, ErrUnknownOption)

	_, _, err = flow.Choose("z")
	assert.ErrorIs(t, err, ErrUnknownOption)

	assert.Equal(t, 0, flow.Index())
	assert.Empty(t, flow.Answers())
}

func TestQuizFlowFinished(t *testing.T) {
	bank := DefaultQuestionBank()
	flow := NewQuizFlow(bank)
	completeAll := completeQuiz(bank)
	require.Len(t, completeAll, len(bank))

	for _, a := range completeAll {
		_, _, err := flow.Submit(a.AnswerText)
		require.NoError(t, err)
	}

	_, _, err := flow.Submit("again")
	assert.ErrorIs(t, err, ErrQuizFinished)
	_, _, err = flow.Choose("a")
	assert.ErrorIs(t, err, ErrQuizFinished)
}

func TestValidateAnswers(t *testing.T) {
	bank := DefaultQuestionBank()
	answers := completeQuiz(bank)

	assert.NoError(t, ValidateAnswers(bank, answers))
	assert.Error(t, ValidateAnswers(bank, answers[:4]))

	swapped := append([]Answer(nil), answers...)
	swapped[0], swapped[1] = swapped[1], swapped[0]
	assert.Error(t, ValidateAnswers(bank, swapped))
}
