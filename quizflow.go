package psychescan

import (
	"errors"
	"fmt"
	"strings"
	"sync"
)

var (
	// ErrEmptyAnswer is returned when a free-text answer is blank
	ErrEmptyAnswer = errors.New("answer is empty")
	// ErrUnknownOption is returned when a choice answer is not one of the question's options
	ErrUnknownOption = errors.New("answer is not one of the options")
	// ErrQuizFinished is returned when submitting after the last question
	ErrQuizFinished = errors.New("quiz is already finished")
)

// QuizFlow walks the user through the question bank, one question at a time
type QuizFlow struct {
	mu       sync.RWMutex
	bank     []Question
	index    int
	answers  []Answer
	finished bool
}

// NewQuizFlow creates a quiz flow positioned on the first question of bank
func NewQuizFlow(bank []Question) *QuizFlow {
	return &QuizFlow{
		bank:    bank,
		answers: make([]Answer, 0, len(bank)),
	}
}

// Current returns the question being asked, or nil once the quiz is finished
func (qf *QuizFlow) Current() *Question {
	qf.mu.RLock()
	defer qf.mu.RUnlock()

	if qf.finished || qf.index >= len(qf.bank) {
		return nil
	}
	q := qf.bank[qf.index]
	return &q
}

// Index returns the zero-based position of the current question
func (qf *QuizFlow) Index() int {
	qf.mu.RLock()
	defer qf.mu.RUnlock()
	return qf.index
}

// Len returns the number of questions in the flow
func (qf *QuizFlow) Len() int {
	return len(qf.bank)
}

// Progress returns the fraction of questions answered, between 0 and 1
func (qf *QuizFlow) Progress() float64 {
	qf.mu.RLock()
	defer qf.mu.RUnlock()

	if len(qf.bank) == 0 {
		return 0
	}
	return float64(len(qf.answers)) / float64(len(qf.bank))
}

// Answers returns a copy of the answers collected so far
func (qf *QuizFlow) Answers() []Answer {
	qf.mu.RLock()
	defer qf.mu.RUnlock()
	return append([]Answer(nil), qf.answers...)
}

// Submit records answerText for the current question. When the last question
// is answered it returns done=true together with the full answer sequence.
// A rejected answer leaves the flow unchanged.
func (qf *QuizFlow) Submit(answerText string) (answers []Answer, done bool, err error) {
	qf.mu.Lock()
	defer qf.mu.Unlock()

	if qf.finished || qf.index >= len(qf.bank) {
		return nil, false, ErrQuizFinished
	}

	question := qf.bank[qf.index]
	switch question.Kind {
	case KindFreeText:
		answerText = strings.TrimSpace(answerText)
		if answerText == "" {
			return nil, false, ErrEmptyAnswer
		}
	case KindChoice:
		if !question.HasLabel(answerText) {
			return nil, false, fmt.Errorf("question %d: %w", question.ID, ErrUnknownOption)
		}
	}

	qf.answers = append(qf.answers, Answer{
		QuestionID:   question.ID,
		QuestionText: question.Text,
		AnswerText:   answerText,
	})

	if qf.index == len(qf.bank)-1 {
		qf.finished = true
		return append([]Answer(nil), qf.answers...), true, nil
	}

	qf.index++
	return nil, false, nil
}

// Choose submits the label of the option with the given ID
func (qf *QuizFlow) Choose(optionID string) ([]Answer, bool, error) {
	question := qf.Current()
	if question == nil {
		return nil, false, ErrQuizFinished
	}
	opt, ok := question.Option(optionID)
	if !ok {
		return nil, false, fmt.Errorf("question %d option %q: %w", question.ID, optionID, ErrUnknownOption)
	}
	return qf.Submit(opt.Label)
}

// ValidateAnswers checks that answers map one to one, in order, onto bank
func ValidateAnswers(bank []Question, answers []Answer) error {
	if len(answers) != len(bank) {
		return fmt.Errorf("expected %d answers, got %d", len(bank), len(answers))
	}
	for i, a := range answers {
		if a.QuestionID != bank[i].ID {
			return fmt.Errorf("answer %d belongs to question %d, expected question %d", i, a.QuestionID, bank[i].ID)
		}
	}
	return nil
}
