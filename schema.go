package psychescan

import (
	"encoding/json"
	"fmt"
	"strings"
)

// FieldType is the JSON type of a report schema field
type FieldType string

const (
	FieldString     FieldType = "string"
	FieldStringList FieldType = "string-list"
)

// SchemaField describes one required field of the report object
type SchemaField struct {
	Name        string
	Type        FieldType
	Description string
}

// ReportSchema lists the fields the text backend must return, all required.
// Backends translate it into their own schema dialect.
var ReportSchema = []SchemaField{
	{Name: "title", Type: FieldString, Description: "A creative, catchy title for their personality type."},
	{Name: "summary", Type: FieldString, Description: "A 3-4 line summary of who they are."},
	{Name: "strengths", Type: FieldStringList, Description: "Top 3-4 strengths."},
	{Name: "weaknesses", Type: FieldStringList, Description: "Top 3-4 weaknesses/blind spots."},
	{Name: "careerSuggestions", Type: FieldStringList, Description: "3 unconventional but fitting career paths."},
	{Name: "fictionalCharacter", Type: FieldString, Description: "A specific fictional character they resemble."},
}

// RequiredFields returns the names of every schema field in order
func RequiredFields() []string {
	names := make([]string, len(ReportSchema))
	for i, f := range ReportSchema {
		names[i] = f.Name
	}
	return names
}

// ParseReport decodes backend text into a report. Every schema field must be
// present and non-empty.
func ParseReport(text string) (*PersonalityReport, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("no text returned")
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("failed to parse report JSON: %w", err)
	}
	for _, field := range ReportSchema {
		if _, ok := raw[field.Name]; !ok {
			return nil, fmt.Errorf("report is missing field %q", field.Name)
		}
	}

	var report PersonalityReport
	if err := json.Unmarshal([]byte(text), &report); err != nil {
		return nil, fmt.Errorf("failed to parse report JSON: %w", err)
	}
	// Image attachment is ours to make, never the model's.
	report.ImageURL = ""

	switch {
	case strings.TrimSpace(report.Title) == "":
		return nil, fmt.Errorf("report field %q is empty", "title")
	case strings.TrimSpace(report.Summary) == "":
		return nil, fmt.Errorf("report field %q is empty", "summary")
	case strings.TrimSpace(report.FictionalCharacter) == "":
		return nil, fmt.Errorf("report field %q is empty", "fictionalCharacter")
	case len(report.Strengths) == 0:
		return nil, fmt.Errorf("report field %q is empty", "strengths")
	case len(report.Weaknesses) == 0:
		return nil, fmt.Errorf("report field %q is empty", "weaknesses")
	case len(report.CareerSuggestions) == 0:
		return nil, fmt.Errorf("report field %q is empty", "careerSuggestions")
	}

	return &report, nil
}
