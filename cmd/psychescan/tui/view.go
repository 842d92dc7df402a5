package tui

import (
	"fmt"
	"strings"

	"psychescan"
)

const appName = "PsycheScan AI"

func (m Model) View() string {
	var body string
	if !m.authenticated() {
		body = m.viewAuth()
	} else {
		s := m.app.Session()
		switch s.Screen {
		case psychescan.ScreenIntro:
			body = m.viewIntro()
		case psychescan.ScreenQuiz:
			body = m.viewQuiz()
		case psychescan.ScreenToneSelect:
			body = m.viewTones()
		case psychescan.ScreenLoading:
			body = m.viewLoading()
		case psychescan.ScreenResult:
			body = m.viewResult(s)
		case psychescan.ScreenError:
			body = m.viewError(s)
		}
	}
	return frameStyle.Render(body) + "\n"
}

func (m Model) viewAuth() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("🧠 " + appName))
	b.WriteString("\n")
	if m.signUp {
		b.WriteString("Create Account\n\n")
	} else {
		b.WriteString("Welcome Back\n\n")
	}
	b.WriteString(m.email.View() + "\n")
	b.WriteString(m.password.View() + "\n\n")

	switch {
	case m.authBusy:
		b.WriteString(subtleStyle.Render(m.spinner.View()+" Checking credentials...") + "\n")
	case m.authErr != "":
		b.WriteString(errorStyle.Render("⚠ "+m.authErr) + "\n")
	}

	toggle := "Don't have an account? ctrl+t to sign up"
	if m.signUp {
		toggle = "Already have an account? ctrl+t to log in"
	}
	b.WriteString("\n" + subtleStyle.Render(toggle))
	b.WriteString("\n" + subtleStyle.Render("enter submit • tab switch field • ctrl+c quit"))
	return b.String()
}

func (m Model) viewIntro() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Unlock Your Hidden Self"))
	b.WriteString("\n")
	b.WriteString("A 5-question deep dive into your psyche.\n")
	b.WriteString("Choose your narrator: from clinical professional to sarcastic roaster.\n\n")
	if m.user != nil {
		b.WriteString(subtleStyle.Render("Signed in as "+m.user.Email) + "\n")
	}
	b.WriteString(subtleStyle.Render("enter start analysis • ctrl+x sign out • q quit"))
	return b.String()
}

func (m Model) viewQuiz() string {
	if m.quiz == nil {
		return ""
	}
	q := m.quiz.Current()
	if q == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString(subtleStyle.Render(fmt.Sprintf("Question %d of %d", m.quiz.Index()+1, m.quiz.Len())))
	b.WriteString("  " + progressBar(questionProgress(m.quiz.Index(), m.quiz.Len()), 20) + "\n\n")
	b.WriteString(titleStyle.Render(q.Text))
	b.WriteString("\n")

	switch q.Kind {
	case psychescan.KindChoice:
		for i, opt := range q.Options {
			fmt.Fprintf(&b, "  %d. %s %s\n", i+1, opt.Glyph, opt.Label)
		}
		b.WriteString("\n" + subtleStyle.Render("1-4 choose • ctrl+x sign out"))
	case psychescan.KindFreeText:
		b.WriteString(m.freeText.View() + "\n\n")
		b.WriteString(subtleStyle.Render("enter next question • ctrl+x sign out"))
	}
	return b.String()
}

// questionProgress counts the question on screen as reached, so the first
// question shows one step and the last shows a full bar.
func questionProgress(index, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(index+1) / float64(total)
}

func progressBar(progress float64, width int) string {
	filled := int(progress * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return progressFull.Render(strings.Repeat("█", filled)) +
		progressEmpty.Render(strings.Repeat("░", width-filled))
}

func (m Model) viewTones() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Pick Your Analyst"))
	b.WriteString("\nWho should deliver your diagnosis?\n\n")
	for i, tone := range psychescan.Tones() {
		line := fmt.Sprintf("%d. %s %s", i+1, tone.Glyph(), tone)
		desc := subtleStyle.Render("     " + tone.Description())
		if i == m.toneIdx {
			b.WriteString(selectedStyle.Render("› "+line) + "\n" + desc + "\n")
		} else {
			b.WriteString("  " + line + "\n" + desc + "\n")
		}
	}
	b.WriteString("\n" + subtleStyle.Render("↑/↓ move • enter select • ctrl+x sign out"))
	return b.String()
}

func (m Model) viewLoading() string {
	return m.spinner.View() + " " + titleStyle.Render("Analyzing your psyche...") + "\n" +
		subtleStyle.Render("Generating your personality profile and visualization.")
}

func (m Model) viewResult(s psychescan.Session) string {
	if s.Report == nil {
		return ""
	}
	md := ReportMarkdown(s.Report, s.Tone)
	out := md
	if m.renderer != nil {
		if rendered, err := m.renderer.Render(md); err == nil {
			out = rendered
		}
	}
	return out + "\n" + subtleStyle.Render("r start over • ctrl+x sign out • q quit")
}

func (m Model) viewError(s psychescan.Session) string {
	return errorStyle.Bold(true).Render("System Overload") + "\n\n" +
		errorStyle.Render(s.ErrorMessage) + "\n\n" +
		subtleStyle.Render("r try again • ctrl+x sign out • q quit")
}

// ReportMarkdown lays the report out as markdown for glamour
func ReportMarkdown(r *psychescan.PersonalityReport, tone psychescan.Tone) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Title)
	if tone.Valid() {
		fmt.Fprintf(&b, "*Analyzed by the %s %s*\n\n", tone.Glyph(), tone)
	}
	b.WriteString(r.Summary + "\n\n")

	section := func(title string, items []string) {
		fmt.Fprintf(&b, "## %s\n\n", title)
		for _, item := range items {
			fmt.Fprintf(&b, "- %s\n", item)
		}
		b.WriteString("\n")
	}
	section("Superpowers", r.Strengths)
	section("Kryptonite", r.Weaknesses)
	section("Career Matches", r.CareerSuggestions)

	fmt.Fprintf(&b, "## Spirit Character\n\n**%s**\n", r.FictionalCharacter)
	if r.HasImage() {
		fmt.Fprintf(&b, "\n*Illustration attached (%d KB data URI)*\n", len(r.ImageURL)/1024)
	}
	return b.String()
}
