package psychescan

import (
	"fmt"
	"strings"
)

// SystemInstruction frames the model as the profiler for every report request
const SystemInstruction = "You are an expert psychologist and personality profiler with a talent for creative writing. You analyze quiz answers deeply to find hidden traits."

// FormatAnswers renders answers as one question/answer pair per entry, in order
func FormatAnswers(answers []Answer) string {
	lines := make([]string, 0, len(answers))
	for _, a := range answers {
		lines = append(lines, fmt.Sprintf("- Q: %s\n  A: %s", a.QuestionText, a.AnswerText))
	}
	return strings.Join(lines, "\n")
}

// BuildReportPrompt builds the text generation prompt for answers and tone
func BuildReportPrompt(answers []Answer, tone Tone) string {
	var sb strings.Builder

	sb.WriteString("Analyze the following user quiz responses and generate a personality report.\n\n")

	sb.WriteString("USER RESPONSES:\n")
	sb.WriteString(FormatAnswers(answers))
	sb.WriteString("\n\n")

	sb.WriteString("TONE REQUIREMENT:\n")
	sb.WriteString(fmt.Sprintf("The user has selected the %q tone.\n", string(tone)))
	sb.WriteString(tone.Instruction())
	sb.WriteString("\n\n")

	sb.WriteString("OUTPUT REQUIREMENT:\n")
	sb.WriteString("Return strictly JSON matching the schema provided.")

	return sb.String()
}

// BuildImagePrompt builds the illustration prompt for the matched character
func BuildImagePrompt(character string, tone Tone) string {
	return fmt.Sprintf(
		"A high-quality, artistic digital illustration of %s. Style: %s. The character should be the central focus.",
		character, tone.ImageStyle(),
	)
}
