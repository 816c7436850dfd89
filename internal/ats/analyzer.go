package ats

import (
	"math"
	"sort"
	"strings"

	"resumescore/internal/types"
)

// MaxSuggestions and MaxMissingKeywords cap the actionable feedback
// lists in every AnalysisResult. They are part of the scoring contract
// and are not configurable.
const (
	MaxSuggestions     = 4
	MaxMissingKeywords = 5
)

// Analyze runs the full rule set against the resume and scores keyword
// coverage for the target role. Unknown roles fall back to the general
// taxonomy. The call is pure and safe for concurrent use.
func Analyze(resume *types.Resume, targetRole string) types.AnalysisResult {
	results := make([]types.RuleResult, 0, len(scoringRules))
	totalWeight := 0
	weightedScore := 0

	for _, r := range scoringRules {
		outcome := r.check(resume)
		score := clampScore(outcome.score)
		results = append(results, types.RuleResult{
			ID:       r.id,
			Name:     r.name,
			Passed:   outcome.passed,
			Score:    score,
			Feedback: outcome.feedback,
			Weight:   r.weight,
		})
		totalWeight += r.weight
		weightedScore += score * r.weight
	}

	overall := int(math.Round(float64(weightedScore) / float64(totalWeight)))
	matched, missing := matchKeywords(resume, targetRole)

	return types.AnalysisResult{
		OverallScore:    overall,
		Rules:           results,
		Suggestions:     buildSuggestions(results),
		KeywordsMatched: matched,
		KeywordsMissing: missing,
		StrengthLevel:   strengthLevel(overall),
	}
}

// clampScore bounds a raw rule score to [0,100] and truncates it to an
// integer.
func clampScore(score float64) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return int(score)
}

// buildSuggestions collects feedback from failing rules, highest
// weight first. The sort is stable so equal-weight rules keep their
// rule-set order.
func buildSuggestions(results []types.RuleResult) []string {
	var failed []types.RuleResult
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	sort.SliceStable(failed, func(i, j int) bool {
		return failed[i].Weight > failed[j].Weight
	})

	suggestions := make([]string, 0, MaxSuggestions)
	for _, r := range failed {
		if len(suggestions) == MaxSuggestions {
			break
		}
		suggestions = append(suggestions, r.Feedback)
	}
	return suggestions
}

// matchKeywords splits the role taxonomy into keywords found in the
// resume text and those absent from it, both in taxonomy order. The
// missing list is capped so feedback stays actionable.
func matchKeywords(resume *types.Resume, targetRole string) (matched, missing []string) {
	corpus := keywordText(resume)
	matched = []string{}
	missing = []string{}

	for _, keyword := range RoleKeywords(targetRole) {
		if strings.Contains(corpus, keyword) {
			matched = append(matched, keyword)
		} else if len(missing) < MaxMissingKeywords {
			missing = append(missing, keyword)
		}
	}
	return matched, missing
}

// keywordText builds the lowercase corpus keyword matching runs
// against. It is wider than the narrative text used by the verb rules;
// skills, positions and project technologies count toward keyword
// coverage.
func keywordText(resume *types.Resume) string {
	var parts []string
	parts = append(parts, resume.Summary)
	for _, exp := range resume.Experience {
		parts = append(parts, exp.Position, exp.Description)
		parts = append(parts, exp.Achievements...)
	}
	parts = append(parts, resume.Skills...)
	for _, project := range resume.Projects {
		parts = append(parts, project.Description)
		parts = append(parts, project.Technologies...)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// strengthLevel bands an overall score into a qualitative label
func strengthLevel(score int) string {
	switch {
	case score >= 85:
		return types.StrengthExcellent
	case score >= 70:
		return types.StrengthGood
	case score >= 50:
		return types.StrengthFair
	default:
		return types.StrengthNeedsWork
	}
}
