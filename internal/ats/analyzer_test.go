package ats

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"resumescore/internal/types"
)

func TestAnalyzeEmptyResume(t *testing.T) {
	var resume types.Resume
	result := Analyze(&resume, "general")

	// the only non-zero contributions come from the weak-phrases,
	// certifications and projects floors
	assert.Equal(t, 12, result.OverallScore)
	assert.Equal(t, types.StrengthNeedsWork, result.StrengthLevel)
	assert.Len(t, result.Rules, 11)

	for _, r := range result.Rules {
		assert.GreaterOrEqual(t, r.Score, 0, "rule %s", r.ID)
		assert.LessOrEqual(t, r.Score, 100, "rule %s", r.ID)
	}

	require.Len(t, result.Suggestions, 4)
	assert.Equal(t, []string{
		"Add work experience",
		"Missing: name, email, phone, location",
		"Add relevant skills",
		"Add numbers and metrics to achievements (%, $, counts)",
	}, result.Suggestions)
}

func TestAnalyzeSampleResume(t *testing.T) {
	resume := types.SampleResume()
	result := Analyze(&resume, "software-engineer")

	assert.GreaterOrEqual(t, result.OverallScore, 85)
	assert.Equal(t, types.StrengthExcellent, result.StrengthLevel)
	for _, r := range result.Rules {
		assert.True(t, r.Passed, "rule %s should pass for the sample resume: %s", r.ID, r.Feedback)
	}
	assert.Empty(t, result.Suggestions)
	assert.Contains(t, result.KeywordsMatched, "kubernetes")
	assert.LessOrEqual(t, len(result.KeywordsMissing), 5)
}

func TestAnalyzeOverallScoreIsWeightedAverage(t *testing.T) {
	resume := types.SampleResume()
	result := Analyze(&resume, "general")

	weighted := 0
	totalWeight := 0
	for _, r := range result.Rules {
		weighted += r.Score * r.Weight
		totalWeight += r.Weight
	}
	expected := int(math.Round(float64(weighted) / float64(totalWeight)))
	assert.Equal(t, expected, result.OverallScore)
}

func TestAnalyzeIsIdempotent(t *testing.T) {
	resume := types.SampleResume()
	first := Analyze(&resume, "software-engineer")
	second := Analyze(&resume, "software-engineer")
	assert.Equal(t, first, second)
}

func TestAnalyzeUnknownRoleFallsBackToGeneral(t *testing.T) {
	resume := types.SampleResume()
	unknown := Analyze(&resume, "astronaut")
	general := Analyze(&resume, "general")

	assert.Equal(t, general.KeywordsMatched, unknown.KeywordsMatched)
	assert.Equal(t, general.KeywordsMissing, unknown.KeywordsMissing)
}

func TestAnalyzeKeywordSetsAreDisjoint(t *testing.T) {
	resume := types.SampleResume()
	result := Analyze(&resume, "software-engineer")

	matched := make(map[string]bool)
	for _, kw := range result.KeywordsMatched {
		matched[kw] = true
	}
	for _, kw := range result.KeywordsMissing {
		assert.False(t, matched[kw], "keyword %q both matched and missing", kw)
	}
}

func TestAnalyzeSuggestionsComeFromFailedRules(t *testing.T) {
	resume := types.Resume{
		PersonalInfo: types.PersonalInfo{FullName: "Pat Doe", Email: "pat@example.com"},
		Skills:       []string{"Go", "SQL", "Docker", "Linux"},
	}
	result := Analyze(&resume, "general")

	feedbackByFailed := make(map[string]int)
	for _, r := range result.Rules {
		if !r.Passed {
			feedbackByFailed[r.Feedback] = r.Weight
		}
	}
	require.NotEmpty(t, result.Suggestions)
	assert.LessOrEqual(t, len(result.Suggestions), MaxSuggestions)

	lastWeight := 1000
	for _, s := range result.Suggestions {
		weight, ok := feedbackByFailed[s]
		require.True(t, ok, "suggestion %q does not belong to a failed rule", s)
		assert.LessOrEqual(t, weight, lastWeight, "suggestions must be ordered by descending weight")
		lastWeight = weight
	}
}

func TestAnalyzeFourSkillsNoNumbers(t *testing.T) {
	resume := types.Resume{
		Skills: []string{"Go", "SQL", "Docker", "Linux"},
	}
	result := Analyze(&resume, "general")

	var skillsRule, quantifiableRule types.RuleResult
	for _, r := range result.Rules {
		switch r.ID {
		case "skills":
			skillsRule = r
		case "quantifiable":
			quantifiableRule = r
		}
	}

	assert.False(t, skillsRule.Passed)
	assert.Contains(t, skillsRule.Feedback, "Add more skills")
	assert.False(t, quantifiableRule.Passed)
	assert.Zero(t, quantifiableRule.Score)
}

func TestStrengthLevelBands(t *testing.T) {
	tests := []struct {
		score int
		level string
	}{
		{100, types.StrengthExcellent},
		{85, types.StrengthExcellent},
		{84, types.StrengthGood},
		{70, types.StrengthGood},
		{69, types.StrengthFair},
		{50, types.StrengthFair},
		{49, types.StrengthNeedsWork},
		{0, types.StrengthNeedsWork},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.level, strengthLevel(tt.score), "score %d", tt.score)
	}
}

func TestClampScore(t *testing.T) {
	assert.Equal(t, 0, clampScore(-10))
	assert.Equal(t, 100, clampScore(150))
	assert.Equal(t, 62, clampScore(62.5))
	assert.Equal(t, 100, clampScore(100))
}

func BenchmarkAnalyze(b *testing.B) {
	resume := types.SampleResume()
	for b.Loop() {
		Analyze(&resume, "software-engineer")
	}
}
