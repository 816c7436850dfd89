package ats

import (
	"fmt"
	"regexp"
	"strings"

	"resumescore/internal/types"
)

// checkResult is the raw outcome of a single rule check. Scores are
// kept as floats until the runner clamps and truncates them.
type checkResult struct {
	passed   bool
	score    float64
	feedback string
}

// rule is one independent scoring check. Rules are pure functions of
// the resume and share no state with each other.
type rule struct {
	id          string
	name        string
	description string
	weight      int
	check       func(*types.Resume) checkResult
}

// metricPattern matches quantifiable results in achievement text:
// percentages, counts with a plus, dollar amounts, multipliers,
// magnitude suffixes and numbers followed by countable nouns.
var metricPattern = regexp.MustCompile(`\d+%|\d+\+|\$[\d,]+|\d+x\b|\d+[km]\b|\d+\s+(?:users|customers|clients|employees|team|projects|revenue)\b`)

// scoringRules is the full ordered rule set. Order is part of the
// output contract: per-rule results and suggestion tie-breaks follow
// this sequence.
var scoringRules = []rule{
	{
		id:          "contact-info",
		name:        "Contact Information",
		description: "Check if all contact information is provided",
		weight:      12,
		check:       checkContactInfo,
	},
	{
		id:          "professional-title",
		name:        "Professional Title",
		description: "Check if a professional title is provided",
		weight:      8,
		check:       checkProfessionalTitle,
	},
	{
		id:          "summary",
		name:        "Professional Summary",
		description: "Check if the summary has optimal length and measurable results",
		weight:      10,
		check:       checkSummary,
	},
	{
		id:          "skills",
		name:        "Skills Section",
		description: "Check if the skills section has 6-15 relevant skills",
		weight:      12,
		check:       checkSkills,
	},
	{
		id:          "experience",
		name:        "Work Experience",
		description: "Check work experience entries and their achievements",
		weight:      20,
		check:       checkExperience,
	},
	{
		id:          "education",
		name:        "Education",
		description: "Check if education entries are complete",
		weight:      8,
		check:       checkEducation,
	},
	{
		id:          "action-verbs",
		name:        "Action Verbs",
		description: "Check if descriptions use strong action verbs",
		weight:      10,
		check:       checkActionVerbs,
	},
	{
		id:          "weak-phrases",
		name:        "Weak Phrases",
		description: "Check for passive filler phrases",
		weight:      8,
		check:       checkWeakPhrases,
	},
	{
		id:          "quantifiable",
		name:        "Quantifiable Results",
		description: "Check if achievements include numbers and metrics",
		weight:      12,
		check:       checkQuantifiable,
	},
	{
		id:          "certifications",
		name:        "Certifications",
		description: "Check if certifications are listed",
		weight:      5,
		check:       checkCertifications,
	},
	{
		id:          "projects",
		name:        "Projects",
		description: "Check if projects are documented with technologies",
		weight:      5,
		check:       checkProjects,
	},
}

func checkContactInfo(resume *types.Resume) checkResult {
	info := resume.PersonalInfo
	fields := []struct {
		value string
		label string
	}{
		{info.FullName, "name"},
		{info.Email, "email"},
		{info.Phone, "phone"},
		{info.Location, "location"},
	}

	present := 0
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) != "" {
			present++
		} else {
			missing = append(missing, f.label)
		}
	}

	if present == len(fields) {
		return checkResult{passed: true, score: 100, feedback: "All contact information provided"}
	}
	return checkResult{
		score:    float64(present) / float64(len(fields)) * 100,
		feedback: "Missing: " + strings.Join(missing, ", "),
	}
}

func checkProfessionalTitle(resume *types.Resume) checkResult {
	title := strings.TrimSpace(resume.PersonalInfo.Title)
	if len(title) >= 3 {
		return checkResult{passed: true, score: 100, feedback: "Professional title provided"}
	}
	return checkResult{feedback: "Add a professional title below your name"}
}

func checkSummary(resume *types.Resume) checkResult {
	length := len(resume.Summary)
	if length == 0 {
		return checkResult{feedback: "Add a professional summary"}
	}

	goodLength := length >= 100 && length <= 400
	hasDigit := strings.ContainsAny(resume.Summary, "0123456789")

	switch {
	case goodLength && hasDigit:
		return checkResult{passed: true, score: 100, feedback: "Summary length is optimal and includes measurable results"}
	case goodLength:
		return checkResult{score: 80, feedback: "Include a number or measurable result in your summary"}
	case length < 100:
		return checkResult{score: float64(length) / 100 * 60, feedback: "Summary is too short (aim for 100-400 characters)"}
	default:
		return checkResult{score: 60, feedback: "Summary may be too long (aim for 100-400 characters)"}
	}
}

func checkSkills(resume *types.Resume) checkResult {
	count := len(resume.Skills)
	switch {
	case count == 0:
		return checkResult{feedback: "Add relevant skills"}
	case count >= 6 && count <= 15:
		return checkResult{passed: true, score: 100, feedback: fmt.Sprintf("Good number of skills (%d)", count)}
	case count < 6:
		return checkResult{
			score:    float64(count) / 6 * 100,
			feedback: "Add more skills (aim for 6-15)",
		}
	default:
		score := 100 - float64(count-15)*3
		if score < 60 {
			score = 60
		}
		return checkResult{score: score, feedback: "Consider reducing skills to highlight the most relevant"}
	}
}

func checkExperience(resume *types.Resume) checkResult {
	count := len(resume.Experience)
	if count == 0 {
		return checkResult{feedback: "Add work experience"}
	}

	covered := 0
	totalAchievements := 0
	for _, exp := range resume.Experience {
		if len(exp.Achievements) >= 2 {
			covered++
		}
		totalAchievements += len(exp.Achievements)
	}
	coverage := float64(covered) / float64(count)
	avgAchievements := float64(totalAchievements) / float64(count)

	countScore := min(float64(count), 2) / 2 * 40
	coverageScore := coverage * 40
	depthScore := min(avgAchievements, 3) / 3 * 20
	score := countScore + coverageScore + depthScore

	if count >= 2 && coverage >= 0.75 {
		return checkResult{passed: true, score: score, feedback: "Work experience is well documented"}
	}
	return checkResult{score: score, feedback: "Add at least two achievement bullet points to each role"}
}

func checkEducation(resume *types.Resume) checkResult {
	if len(resume.Education) == 0 {
		return checkResult{feedback: "Add education details"}
	}
	for _, edu := range resume.Education {
		if strings.TrimSpace(edu.Institution) != "" && strings.TrimSpace(edu.Degree) != "" {
			return checkResult{passed: true, score: 100, feedback: "Education information provided"}
		}
	}
	return checkResult{score: 70, feedback: "Complete education entries with institution and degree"}
}

func checkActionVerbs(resume *types.Resume) checkResult {
	text := narrativeText(resume)

	found := 0
	for _, verb := range allActionVerbs {
		if strings.Contains(text, verb) {
			found++
		}
	}

	score := min(100, float64(found)/8*100)
	if found >= 5 {
		return checkResult{passed: true, score: score, feedback: fmt.Sprintf("Using %d strong action verbs", found)}
	}
	return checkResult{score: score, feedback: "Use more action verbs (led, developed, achieved, etc.)"}
}

func checkWeakPhrases(resume *types.Resume) checkResult {
	text := narrativeText(resume)

	found := 0
	for _, phrase := range weakPhrases {
		found += strings.Count(text, phrase)
	}

	score := 100 - float64(found)*25
	if score < 0 {
		score = 0
	}
	if found == 0 {
		return checkResult{passed: true, score: score, feedback: "No weak phrases detected"}
	}
	return checkResult{score: score, feedback: `Replace weak phrases like "responsible for" with strong action verbs`}
}

func checkQuantifiable(resume *types.Resume) checkResult {
	var parts []string
	for _, exp := range resume.Experience {
		parts = append(parts, exp.Achievements...)
	}
	parts = append(parts, resume.Summary)
	text := strings.ToLower(strings.Join(parts, " "))

	seen := make(map[string]bool)
	for _, match := range metricPattern.FindAllString(text, -1) {
		seen[match] = true
	}
	unique := len(seen)

	score := min(100, float64(unique)/4*100)
	if unique >= 3 {
		return checkResult{passed: true, score: score, feedback: fmt.Sprintf("Found %d quantifiable results", unique)}
	}
	return checkResult{score: score, feedback: "Add numbers and metrics to achievements (%, $, counts)"}
}

func checkCertifications(resume *types.Resume) checkResult {
	if len(resume.Certifications) > 0 {
		return checkResult{passed: true, score: 100, feedback: "Certifications listed"}
	}
	return checkResult{score: 50, feedback: "Consider adding relevant certifications"}
}

func checkProjects(resume *types.Resume) checkResult {
	count := len(resume.Projects)
	if count == 0 {
		return checkResult{score: 50, feedback: "Consider adding projects to showcase your work"}
	}

	withTech := 0
	for _, project := range resume.Projects {
		if len(project.Technologies) > 0 {
			withTech++
		}
	}
	if float64(withTech)/float64(count) >= 0.5 {
		return checkResult{passed: true, score: 100, feedback: "Projects are well documented with technologies"}
	}
	return checkResult{passed: true, score: 80, feedback: "List the technologies used in your projects"}
}

// RuleDescriptions returns the name and description of each rule in
// evaluation order.
func RuleDescriptions() []string {
	descriptions := make([]string, 0, len(scoringRules))
	for _, r := range scoringRules {
		descriptions = append(descriptions, fmt.Sprintf("%s: %s", r.name, r.description))
	}
	return descriptions
}

// narrativeText joins the free-text sections used for verb and phrase
// matching into a single lowercase string.
func narrativeText(resume *types.Resume) string {
	var parts []string
	parts = append(parts, resume.Summary)
	for _, exp := range resume.Experience {
		parts = append(parts, exp.Description)
		parts = append(parts, exp.Achievements...)
	}
	for _, project := range resume.Projects {
		parts = append(parts, project.Description)
	}
	return strings.ToLower(strings.Join(parts, " "))
}
