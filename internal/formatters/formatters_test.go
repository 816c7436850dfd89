package formatters

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumescore/internal/types"
)

func sampleResult() types.AnalysisResult {
	return types.AnalysisResult{
		OverallScore: 82,
		Rules: []types.RuleResult{
			{ID: "contact-info", Name: "Contact Information", Passed: true, Score: 100, Feedback: "All contact information provided", Weight: 12},
			{ID: "skills", Name: "Skills Section", Passed: false, Score: 66, Feedback: "Add more skills (aim for 6-15)", Weight: 12},
		},
		Suggestions:     []string{"Add more skills (aim for 6-15)"},
		KeywordsMatched: []string{"go", "docker"},
		KeywordsMissing: []string{"kubernetes"},
		StrengthLevel:   types.StrengthGood,
	}
}

func TestJSONFormatterRoundTrip(t *testing.T) {
	registry := NewFormatterRegistry()
	out, err := registry.Format(sampleResult(), "json")
	require.NoError(t, err)

	var decoded types.AnalysisResult
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, sampleResult(), decoded)
}

func TestAnalysisTextFormatter(t *testing.T) {
	registry := NewFormatterRegistry()
	out, err := registry.Format(sampleResult(), "text")
	require.NoError(t, err)

	assert.Contains(t, out, "Overall Score: 82/100 (Good)")
	assert.Contains(t, out, "[PASS] Contact Information")
	assert.Contains(t, out, "[FAIL] Skills Section")
	assert.Contains(t, out, "kubernetes")
}

func TestAnalysisMarkdownFormatter(t *testing.T) {
	registry := NewFormatterRegistry()
	out, err := registry.Format(sampleResult(), "markdown")
	require.NoError(t, err)

	assert.Contains(t, out, "# ATS Compatibility Report")
	assert.Contains(t, out, "**Overall Score:** 82/100 (Good)")
	assert.Contains(t, out, "| Skills Section |")
}

func TestRoleListFormatters(t *testing.T) {
	registry := NewFormatterRegistry()
	roles := RoleList{Roles: []string{"general", "software-engineer"}}

	text, err := registry.Format(roles, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "- software-engineer")

	md, err := registry.Format(roles, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "`general`")
}

func TestAnalysisBadgeFormatter(t *testing.T) {
	registry := NewFormatterRegistry()
	out, err := registry.Format(sampleResult(), "badge")
	require.NoError(t, err)

	assert.Equal(t, "ATS 82/100 | Good\n", out)
}

func TestBadgeFormatterRejectsOtherTypes(t *testing.T) {
	badge := &AnalysisBadgeFormatter{}
	_, err := badge.Format(RoleList{Roles: []string{"general"}})
	assert.Error(t, err)
}

func TestQuantifiedResultsTip(t *testing.T) {
	result := sampleResult()
	result.Rules = append(result.Rules, types.RuleResult{
		ID: "quantifiable", Name: "Quantifiable Results", Passed: false, Score: 30,
		Feedback: "Add numbers and metrics to your achievements", Weight: 12,
	})
	result.Suggestions = append(result.Suggestions, "Add numbers and metrics to your achievements")

	registry := NewFormatterRegistry()

	text, err := registry.Format(result, "text")
	require.NoError(t, err)
	assert.Contains(t, text, "Tip: pair your metrics with power words such as successfully, significantly, dramatically.")

	md, err := registry.Format(result, "markdown")
	require.NoError(t, err)
	assert.Contains(t, md, "> Tip: pair your metrics with power words")

	// Passing rule keeps the reports tip-free.
	plain, err := registry.Format(sampleResult(), "text")
	require.NoError(t, err)
	assert.NotContains(t, plain, "power words")
}

func TestUnknownFormat(t *testing.T) {
	registry := NewFormatterRegistry()
	_, err := registry.Format(sampleResult(), "yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "registered formats: badge, json, markdown, text")
}

func TestRegisteredFormats(t *testing.T) {
	registry := NewFormatterRegistry()
	assert.Equal(t, []string{"badge", "json", "markdown", "text"}, registry.RegisteredFormats())
}
