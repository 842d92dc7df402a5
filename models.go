package psychescan

// QuestionKind tells the quiz how a question is answered
type QuestionKind string

const (
	KindChoice   QuestionKind = "choice"
	KindFreeText QuestionKind = "free-text"
)

// Option is one fixed answer to a choice question
type Option struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label" yaml:"label"`
	Glyph string `json:"glyph" yaml:"glyph"`
}

// Question represents a single quiz question, either multiple choice or free text
type Question struct {
	ID          int          `json:"id" yaml:"id"`
	Kind        QuestionKind `json:"kind" yaml:"kind"`
	Text        string       `json:"text" yaml:"text"`
	Options     []Option     `json:"options,omitempty" yaml:"options,omitempty"`
	Placeholder string       `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
}

// Option returns the option with the given ID
func (q Question) Option(id string) (Option, bool) {
	for _, opt := range q.Options {
		if opt.ID == id {
			return opt, true
		}
	}
	return Option{}, false
}

// HasLabel reports whether label is one of the question's option labels
func (q Question) HasLabel(label string) bool {
	for _, opt := range q.Options {
		if opt.Label == label {
			return true
		}
	}
	return false
}

// Answer pairs a question with the text the user gave for it
type Answer struct {
	QuestionID   int    `json:"questionId"`
	QuestionText string `json:"questionText"`
	AnswerText   string `json:"answerText"`
}

// PersonalityReport is the structured analysis returned by the generation backend
type PersonalityReport struct {
	Title              string   `json:"title"`
	Summary            string   `json:"summary"`
	Strengths          []string `json:"strengths"`
	Weaknesses         []string `json:"weaknesses"`
	CareerSuggestions  []string `json:"careerSuggestions"`
	FictionalCharacter string   `json:"fictionalCharacter"`
	ImageURL           string   `json:"imageUrl,omitempty"`
}

// HasImage reports whether an illustration was attached to the report
func (r *PersonalityReport) HasImage() bool {
	return r != nil && r.ImageURL != ""
}
