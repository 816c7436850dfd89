package ats

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"resumescore/internal/types"
)

func ruleByID(t *testing.T, id string) rule {
	t.Helper()
	for _, r := range scoringRules {
		if r.id == id {
			return r
		}
	}
	t.Fatalf("no rule with id %q", id)
	return rule{}
}

func TestRuleWeights(t *testing.T) {
	seen := make(map[string]bool)
	total := 0
	for _, r := range scoringRules {
		assert.False(t, seen[r.id], "duplicate rule id %q", r.id)
		seen[r.id] = true
		assert.Positive(t, r.weight, "rule %q must have a positive weight", r.id)
		total += r.weight
	}
	assert.Len(t, scoringRules, 11)
	assert.Equal(t, 110, total)
}

func TestContactInfoRule(t *testing.T) {
	check := ruleByID(t, "contact-info").check

	full := types.Resume{PersonalInfo: types.PersonalInfo{
		FullName: "Alex Johnson",
		Email:    "alex@example.com",
		Phone:    "555-0100",
		Location: "San Francisco, CA",
	}}
	result := check(&full)
	assert.True(t, result.passed)
	assert.Equal(t, 100.0, result.score)

	partial := full
	partial.PersonalInfo.Phone = ""
	result = check(&partial)
	assert.False(t, result.passed)
	assert.Equal(t, 75.0, result.score)
	assert.Contains(t, result.feedback, "phone")
	assert.NotContains(t, result.feedback, "email")

	// one more present field strictly raises the score
	assert.Greater(t, check(&full).score, check(&partial).score)
}

func TestProfessionalTitleRule(t *testing.T) {
	check := ruleByID(t, "professional-title").check

	tests := []struct {
		title  string
		passed bool
	}{
		{"Senior Software Engineer", true},
		{"PM", false},
		{"", false},
		{"   ", false},
	}
	for _, tt := range tests {
		resume := types.Resume{PersonalInfo: types.PersonalInfo{Title: tt.title}}
		result := check(&resume)
		assert.Equal(t, tt.passed, result.passed, "title %q", tt.title)
		if tt.passed {
			assert.Equal(t, 100.0, result.score)
		} else {
			assert.Zero(t, result.score)
		}
	}
}

func TestSummaryRule(t *testing.T) {
	check := ruleByID(t, "summary").check

	tests := []struct {
		name    string
		summary string
		passed  bool
		score   float64
	}{
		{"empty", "", false, 0},
		{"optimal with digit", strings.Repeat("x", 140) + " 8 years " + "y", true, 100},
		{"optimal without digit", strings.Repeat("x", 150), false, 80},
		{"too short", strings.Repeat("x", 50), false, 30},
		{"too long", strings.Repeat("x", 500) + "1", false, 60},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resume := types.Resume{Summary: tt.summary}
			result := check(&resume)
			assert.Equal(t, tt.passed, result.passed)
			assert.InDelta(t, tt.score, result.score, 0.001)
		})
	}
}

func TestSummaryRuleExactly150CharsWithDigit(t *testing.T) {
	summary := strings.Repeat("a", 149) + "7"
	assert.Len(t, summary, 150)

	result := ruleByID(t, "summary").check(&types.Resume{Summary: summary})
	assert.True(t, result.passed)
	assert.Equal(t, 100.0, result.score)
}

func TestSkillsRule(t *testing.T) {
	check := ruleByID(t, "skills").check

	makeSkills := func(n int) []string {
		skills := make([]string, n)
		for i := range skills {
			skills[i] = "skill"
		}
		return skills
	}

	tests := []struct {
		count  int
		passed bool
		score  float64
	}{
		{0, false, 0},
		{4, false, 400.0 / 6},
		{6, true, 100},
		{15, true, 100},
		{20, false, 85},
		{40, false, 60},
	}
	for _, tt := range tests {
		resume := types.Resume{Skills: makeSkills(tt.count)}
		result := check(&resume)
		assert.Equal(t, tt.passed, result.passed, "%d skills", tt.count)
		assert.InDelta(t, tt.score, result.score, 0.001, "%d skills", tt.count)
	}
}

func TestExperienceRule(t *testing.T) {
	check := ruleByID(t, "experience").check

	empty := types.Resume{}
	result := check(&empty)
	assert.False(t, result.passed)
	assert.Zero(t, result.score)
	assert.Equal(t, "Add work experience", result.feedback)

	strong := types.Resume{Experience: []types.Experience{
		{Company: "A", Achievements: []string{"one", "two", "three"}},
		{Company: "B", Achievements: []string{"one", "two", "three"}},
	}}
	result = check(&strong)
	assert.True(t, result.passed)
	assert.InDelta(t, 100.0, result.score, 0.001)

	thin := types.Resume{Experience: []types.Experience{{Company: "A"}}}
	result = check(&thin)
	assert.False(t, result.passed)
	assert.InDelta(t, 20.0, result.score, 0.001)
}

func TestEducationRule(t *testing.T) {
	check := ruleByID(t, "education").check

	assert.Zero(t, check(&types.Resume{}).score)

	complete := types.Resume{Education: []types.Education{
		{Institution: "UC Berkeley", Degree: "BS"},
	}}
	result := check(&complete)
	assert.True(t, result.passed)
	assert.Equal(t, 100.0, result.score)

	incomplete := types.Resume{Education: []types.Education{
		{Institution: "UC Berkeley"},
	}}
	result = check(&incomplete)
	assert.False(t, result.passed)
	assert.Equal(t, 70.0, result.score)
}

func TestActionVerbsRuleFiveDistinctVerbs(t *testing.T) {
	resume := types.Resume{Summary: "led developed achieved improved created"}
	result := ruleByID(t, "action-verbs").check(&resume)
	assert.True(t, result.passed)
	assert.InDelta(t, 62.5, result.score, 0.001)
}

func TestActionVerbsRuleSubstringMatch(t *testing.T) {
	// "led" inside "scheduled" counts; matching is plain substring
	// containment on purpose
	resume := types.Resume{Summary: "scheduled meetings"}
	result := ruleByID(t, "action-verbs").check(&resume)
	assert.InDelta(t, 12.5, result.score, 0.001)
	assert.False(t, result.passed)
}

func TestWeakPhrasesRule(t *testing.T) {
	check := ruleByID(t, "weak-phrases").check

	clean := types.Resume{Summary: "Led platform engineering for payments"}
	result := check(&clean)
	assert.True(t, result.passed)
	assert.Equal(t, 100.0, result.score)

	one := types.Resume{Summary: "Responsible for the payments platform"}
	result = check(&one)
	assert.False(t, result.passed)
	assert.Equal(t, 75.0, result.score)

	// every additional occurrence lowers the score until the floor
	two := types.Resume{Summary: "Responsible for payments. Responsible for billing."}
	assert.Equal(t, 50.0, check(&two).score)

	many := types.Resume{Summary: "responsible for x, worked on y, helped with z, assisted in w, tasked with v"}
	assert.Zero(t, check(&many).score)
}

func TestQuantifiableRule(t *testing.T) {
	check := ruleByID(t, "quantifiable").check

	resume := types.Resume{Experience: []types.Experience{{
		Achievements: []string{
			"Increased revenue by 40%",
			"Saved $50,000 annually",
			"Made deploys 3x faster",
			"Supported 10 users in pilot",
		},
	}}}
	result := check(&resume)
	assert.True(t, result.passed)
	assert.Equal(t, 100.0, result.score)

	// duplicate metric text counts once
	dup := types.Resume{Experience: []types.Experience{{
		Achievements: []string{"Grew traffic 40%", "Grew signups 40%"},
	}}}
	result = check(&dup)
	assert.False(t, result.passed)
	assert.InDelta(t, 25.0, result.score, 0.001)

	noNumbers := types.Resume{Experience: []types.Experience{{
		Achievements: []string{"Improved the deployment process"},
	}}}
	result = check(&noNumbers)
	assert.False(t, result.passed)
	assert.Zero(t, result.score)
}

func TestQuantifiableRulePatterns(t *testing.T) {
	check := ruleByID(t, "quantifiable").check

	tests := []struct {
		name string
		text string
		hits float64
	}{
		{"percentage", "cut latency 25%", 1},
		{"plus suffix", "served 500+ customers daily", 1},
		{"currency", "managed a $1,200,000 budget", 1},
		{"multiplier", "made builds 5x faster", 1},
		{"magnitude", "handles 10k requests", 1},
		{"counted noun", "onboarded 12 employees", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resume := types.Resume{Summary: tt.text}
			result := check(&resume)
			assert.InDelta(t, tt.hits/4*100, result.score, 0.001)
		})
	}
}

func TestCertificationsRule(t *testing.T) {
	check := ruleByID(t, "certifications").check

	none := check(&types.Resume{})
	assert.False(t, none.passed)
	assert.Equal(t, 50.0, none.score)

	some := check(&types.Resume{Certifications: []types.Certification{
		{Name: "AWS Certified Solutions Architect", Issuer: "AWS"},
	}})
	assert.True(t, some.passed)
	assert.Equal(t, 100.0, some.score)
}

func TestProjectsRule(t *testing.T) {
	check := ruleByID(t, "projects").check

	none := check(&types.Resume{})
	assert.False(t, none.passed)
	assert.Equal(t, 50.0, none.score)

	withTech := check(&types.Resume{Projects: []types.Project{
		{Name: "A", Technologies: []string{"Go"}},
		{Name: "B"},
	}})
	assert.True(t, withTech.passed)
	assert.Equal(t, 100.0, withTech.score)

	withoutTech := check(&types.Resume{Projects: []types.Project{
		{Name: "A"}, {Name: "B"}, {Name: "C"},
	}})
	assert.True(t, withoutTech.passed)
	assert.Equal(t, 80.0, withoutTech.score)
}
