package formatters

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"resumescore/internal/ats"
	"resumescore/internal/types"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	// Register default formatters
	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", "AnalysisResult", &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", "AnalysisResult", &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("badge", "AnalysisResult", &AnalysisBadgeFormatter{})
	registry.RegisterFormatter("text", "RoleList", &RoleListTextFormatter{})
	registry.RegisterFormatter("markdown", "RoleList", &RoleListMarkdownFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	// Try specific formatter first
	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		// Fall back to generic formatter
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s' (registered formats: %s)",
		format, dataType, strings.Join(fr.RegisteredFormats(), ", "))
}

// RegisteredFormats lists every registered format name, sorted.
func (fr *FormatterRegistry) RegisteredFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	sort.Strings(formats)
	return formats
}

// RoleList carries the supported role identifiers for display
type RoleList struct {
	Roles []string `json:"roles"`
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisResult:
		return "AnalysisResult"
	case RoleList:
		return "RoleList"
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// strengthLabel maps a strength level to its display form
func strengthLabel(level string) string {
	switch level {
	case types.StrengthExcellent:
		return "Excellent"
	case types.StrengthGood:
		return "Good"
	case types.StrengthFair:
		return "Fair"
	default:
		return "Needs Work"
	}
}

// quantifiedResultsTip suggests power words when the quantifiable
// results rule failed. The wording lives here rather than in the
// engine so rule feedback stays stable across output formats.
func quantifiedResultsTip(result types.AnalysisResult) string {
	for _, rule := range result.Rules {
		if rule.ID == "quantifiable" && !rule.Passed {
			words := ats.PowerWords()
			if len(words) > 3 {
				words = words[:3]
			}
			return fmt.Sprintf("Tip: pair your metrics with power words such as %s.", strings.Join(words, ", "))
		}
	}
	return ""
}

// AnalysisBadgeFormatter renders the compact one-line badge: score
// plus strength level, suitable for shell prompts and CI summaries.
type AnalysisBadgeFormatter struct{}

func (abf *AnalysisBadgeFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	return fmt.Sprintf("ATS %d/100 | %s\n", result.OverallScore, strengthLabel(result.StrengthLevel)), nil
}

func (abf *AnalysisBadgeFormatter) SupportedType() string {
	return "AnalysisResult"
}

// AnalysisTextFormatter handles text formatting for analysis results
type AnalysisTextFormatter struct{}

func (atf *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("=== ATS COMPATIBILITY REPORT ===\n\n")
	output.WriteString(fmt.Sprintf("Overall Score: %d/100 (%s)\n\n", result.OverallScore, strengthLabel(result.StrengthLevel)))

	output.WriteString("=== RULE RESULTS ===\n")
	for _, rule := range result.Rules {
		status := "FAIL"
		if rule.Passed {
			status = "PASS"
		}
		output.WriteString(fmt.Sprintf("[%s] %s: %d/100 (weight %d)\n", status, rule.Name, rule.Score, rule.Weight))
		output.WriteString(fmt.Sprintf("       %s\n", rule.Feedback))
	}
	output.WriteString("\n")

	if len(result.Suggestions) > 0 {
		output.WriteString("=== TOP SUGGESTIONS ===\n")
		for i, suggestion := range result.Suggestions {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, suggestion))
		}
		if tip := quantifiedResultsTip(result); tip != "" {
			output.WriteString(tip + "\n")
		}
		output.WriteString("\n")
	}

	output.WriteString("=== KEYWORD COVERAGE ===\n")
	if len(result.KeywordsMatched) > 0 {
		output.WriteString("Matched:\n")
		for _, keyword := range result.KeywordsMatched {
			output.WriteString(fmt.Sprintf("- %s\n", keyword))
		}
		output.WriteString("\n")
	} else {
		output.WriteString("No role keywords matched.\n\n")
	}
	if len(result.KeywordsMissing) > 0 {
		output.WriteString("Missing:\n")
		for _, keyword := range result.KeywordsMissing {
			output.WriteString(fmt.Sprintf("- %s\n", keyword))
		}
	}

	return output.String(), nil
}

func (atf *AnalysisTextFormatter) SupportedType() string {
	return "AnalysisResult"
}

// AnalysisMarkdownFormatter handles markdown formatting for analysis results
type AnalysisMarkdownFormatter struct{}

func (amf *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	var output strings.Builder

	output.WriteString("# ATS Compatibility Report\n\n")
	output.WriteString(fmt.Sprintf("**Overall Score:** %d/100 (%s)\n\n", result.OverallScore, strengthLabel(result.StrengthLevel)))

	output.WriteString("## Rule Results\n\n")
	output.WriteString("| Rule | Status | Score | Weight | Feedback |\n")
	output.WriteString("|------|--------|-------|--------|----------|\n")
	for _, rule := range result.Rules {
		status := "❌"
		if rule.Passed {
			status = "✅"
		}
		output.WriteString(fmt.Sprintf("| %s | %s | %d/100 | %d | %s |\n", rule.Name, status, rule.Score, rule.Weight, rule.Feedback))
	}
	output.WriteString("\n")

	if len(result.Suggestions) > 0 {
		output.WriteString("## Top Suggestions\n\n")
		for i, suggestion := range result.Suggestions {
			output.WriteString(fmt.Sprintf("%d. %s\n", i+1, suggestion))
		}
		if tip := quantifiedResultsTip(result); tip != "" {
			output.WriteString(fmt.Sprintf("\n> %s\n", tip))
		}
		output.WriteString("\n")
	}

	output.WriteString("## Keyword Coverage\n\n")
	if len(result.KeywordsMatched) > 0 {
		output.WriteString("### Matched\n")
		for _, keyword := range result.KeywordsMatched {
			output.WriteString(fmt.Sprintf("- %s\n", keyword))
		}
		output.WriteString("\n")
	}
	if len(result.KeywordsMissing) > 0 {
		output.WriteString("### Missing\n")
		for _, keyword := range result.KeywordsMissing {
			output.WriteString(fmt.Sprintf("- %s\n", keyword))
		}
		output.WriteString("\n")
	}

	return output.String(), nil
}

func (amf *AnalysisMarkdownFormatter) SupportedType() string {
	return "AnalysisResult"
}

// RoleListTextFormatter handles text formatting for the role list
type RoleListTextFormatter struct{}

func (rtf *RoleListTextFormatter) Format(data any) (string, error) {
	result, ok := data.(RoleList)
	if !ok {
		return "", fmt.Errorf("expected RoleList, got %T", data)
	}

	var output strings.Builder
	output.WriteString("=== SUPPORTED ROLES ===\n")
	for _, role := range result.Roles {
		output.WriteString(fmt.Sprintf("- %s\n", role))
	}
	return output.String(), nil
}

func (rtf *RoleListTextFormatter) SupportedType() string {
	return "RoleList"
}

// RoleListMarkdownFormatter handles markdown formatting for the role list
type RoleListMarkdownFormatter struct{}

func (rmf *RoleListMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(RoleList)
	if !ok {
		return "", fmt.Errorf("expected RoleList, got %T", data)
	}

	var output strings.Builder
	output.WriteString("# Supported Roles\n\n")
	for _, role := range result.Roles {
		output.WriteString(fmt.Sprintf("- `%s`\n", role))
	}
	return output.String(), nil
}

func (rmf *RoleListMarkdownFormatter) SupportedType() string {
	return "RoleList"
}

// Global formatter registry
var GlobalRegistry = NewFormatterRegistry()
