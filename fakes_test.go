package psychescan

import (
	"context"
	"errors"
	"sync"
)

const sampleReportJSON = `{
  "title": "The Overachieving Hermit",
  "summary": "You recharge alone and then overdeliver.",
  "strengths": ["Focus", "Loyalty"],
  "weaknesses": ["Avoids conflict"],
  "careerSuggestions": ["Lighthouse keeper", "Archivist", "Indie game dev"],
  "fictionalCharacter": "Sherlock Holmes"
}`

var errBackendDown = errors.New("backend down")

type fakeText struct {
	mu       sync.Mutex
	response string
	err      error
	requests []TextRequest
}

func (f *fakeText) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	return f.response, f.err
}

func (f *fakeText) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type fakeImage struct {
	mu      sync.Mutex
	image   *Image
	err     error
	prompts []string
}

func (f *fakeImage) GenerateImage(ctx context.Context, prompt string) (*Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, prompt)
	return f.image, f.err
}

// fakeGenerator stands in for ReportMaker at the App level
type fakeGenerator struct {
	mu      sync.Mutex
	report  *PersonalityReport
	err     error
	calls   int
	release chan struct{}
}

func (f *fakeGenerator) GenerateReport(ctx context.Context, answers []Answer, tone Tone) (*PersonalityReport, error) {
	f.mu.Lock()
	f.calls++
	release := f.release
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if f.err != nil {
		return nil, f.err
	}
	r := *f.report
	return &r, nil
}

func (f *fakeGenerator) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func sampleReport() *PersonalityReport {
	return &PersonalityReport{
		Title:              "The Overachieving Hermit",
		Summary:            "You recharge alone and then overdeliver.",
		Strengths:          []string{"Focus", "Loyalty"},
		Weaknesses:         []string{"Avoids conflict"},
		CareerSuggestions:  []string{"Lighthouse keeper", "Archivist", "Indie game dev"},
		FictionalCharacter: "Sherlock Holmes",
	}
}

// completeQuiz answers every question of bank and returns the answers
func completeQuiz(bank []Question) []Answer {
	flow := NewQuizFlow(bank)
	var answers []Answer
	for _, q := range bank {
		text := "Being forgotten"
		if q.Kind == KindChoice {
			text = q.Options[0].Label
		}
		out, done, err := flow.Submit(text)
		if err != nil {
			panic(err)
		}
		if done {
			answers = out
		}
	}
	return answers
}

// toneGenerator titles each report after the tone it was asked for and
// blocks until release is closed. Unless ignoreCancel is set it gives up
// when ctx is cancelled.
type toneGenerator struct {
	mu           sync.Mutex
	tones        []Tone
	release      chan struct{}
	ignoreCancel bool
}

func (g *toneGenerator) GenerateReport(ctx context.Context, answers []Answer, tone Tone) (*PersonalityReport, error) {
	g.mu.Lock()
	g.tones = append(g.tones, tone)
	g.mu.Unlock()

	if g.ignoreCancel {
		<-g.release
	} else {
		select {
		case <-g.release:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r := sampleReport()
	r.Title = "report for tone " + string(tone)
	return r, nil
}

func (g *toneGenerator) requested() []Tone {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]Tone(nil), g.tones...)
}
