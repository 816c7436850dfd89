// Package ats implements the rule-based resume scoring engine. It is
// pure computation: no I/O, no network calls, deterministic output for
// a given resume and role.
package ats

import "sort"

// roleKeywords maps a role identifier to the keywords recruiters and
// applicant tracking systems commonly screen for in that role.
var roleKeywords = map[string][]string{
	"software-engineer": {
		"javascript", "typescript", "python", "java", "react", "node.js",
		"aws", "docker", "kubernetes", "git", "agile", "scrum", "ci/cd",
		"api", "rest", "graphql", "sql", "nosql", "mongodb", "postgresql",
		"microservices", "testing", "unit testing", "integration testing",
		"cloud", "devops",
	},
	"product-manager": {
		"roadmap", "stakeholder", "user research", "agile", "scrum", "jira",
		"product strategy", "user stories", "kpi", "metrics", "a/b testing",
		"market research", "competitive analysis", "prioritization", "mvp",
		"customer feedback", "data-driven", "product lifecycle", "backlog",
	},
	"data-scientist": {
		"python", "r", "machine learning", "deep learning", "tensorflow",
		"pytorch", "sql", "pandas", "numpy", "scikit-learn", "statistics",
		"data visualization", "tableau", "power bi", "nlp", "computer vision",
		"big data", "spark", "aws",
	},
	"marketing": {
		"seo", "sem", "ppc", "google analytics", "content marketing",
		"social media", "email marketing", "hubspot", "salesforce",
		"campaign management", "branding", "conversion rate", "roi",
		"market research", "digital marketing", "copywriting",
		"lead generation", "marketing automation", "crm",
	},
	"designer": {
		"figma", "sketch", "adobe xd", "photoshop", "illustrator", "ui/ux",
		"user research", "wireframing", "prototyping", "design systems",
		"typography", "responsive design", "accessibility", "usability testing",
		"user-centered design", "interaction design", "visual design",
		"brand identity",
	},
	"project-manager": {
		"project planning", "risk management", "stakeholder management",
		"agile", "scrum", "waterfall", "jira", "asana", "gantt chart",
		"budget management", "resource allocation", "milestone tracking",
		"pmp", "prince2", "team leadership", "cross-functional",
		"scope management", "timeline", "deliverables",
	},
	"sales": {
		"salesforce", "crm", "pipeline management", "lead generation",
		"cold calling", "negotiation", "closing", "quota", "revenue",
		"client relationship", "b2b", "b2c", "account management",
		"prospecting", "sales strategy", "upselling", "cross-selling",
	},
	"human-resources": {
		"recruitment", "onboarding", "employee relations",
		"performance management", "hris", "workday", "benefits administration",
		"compliance", "training and development", "talent acquisition",
		"succession planning", "employee engagement", "labor law",
		"diversity and inclusion", "compensation", "payroll",
	},
	"general": {
		"leadership", "communication", "teamwork", "problem-solving",
		"analytical", "project management", "time management", "organization",
		"strategic planning", "collaboration", "innovation", "adaptability",
		"attention to detail",
	},
}

// actionVerbCategories groups strong action verbs by the kind of
// accomplishment they describe.
var actionVerbCategories = map[string][]string{
	"leadership": {
		"directed", "led", "managed", "supervised", "coordinated",
		"orchestrated", "spearheaded", "oversaw", "guided", "mentored",
		"championed", "established",
	},
	"achievement": {
		"achieved", "accomplished", "exceeded", "surpassed", "attained",
		"earned", "delivered", "completed", "succeeded", "won",
		"secured", "captured",
	},
	"improvement": {
		"improved", "enhanced", "optimized", "streamlined", "accelerated",
		"increased", "reduced", "decreased", "minimized", "eliminated",
		"transformed", "revamped",
	},
	"creation": {
		"created", "developed", "designed", "built", "launched",
		"initiated", "pioneered", "introduced", "invented", "formulated",
		"established", "founded",
	},
	"analysis": {
		"analyzed", "evaluated", "assessed", "researched", "investigated",
		"examined", "identified", "diagnosed", "audited", "reviewed",
		"measured", "quantified",
	},
	"collaboration": {
		"collaborated", "partnered", "negotiated", "facilitated", "liaised",
		"aligned", "unified", "integrated", "consolidated", "bridged",
		"connected", "engaged",
	},
}

// allActionVerbs is the deduplicated union of every category. Some
// verbs appear in more than one category, so membership is tracked in
// a set before flattening.
var allActionVerbs = flattenActionVerbs()

func flattenActionVerbs() []string {
	seen := make(map[string]bool)
	var verbs []string

	names := make([]string, 0, len(actionVerbCategories))
	for name := range actionVerbCategories {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, verb := range actionVerbCategories[name] {
			if !seen[verb] {
				seen[verb] = true
				verbs = append(verbs, verb)
			}
		}
	}
	return verbs
}

// weakPhrases are passive constructions that dilute impact statements
var weakPhrases = []string{
	"responsible for",
	"duties included",
	"worked on",
	"helped with",
	"assisted in",
	"was involved in",
	"participated in",
	"tasked with",
}

// powerWords strengthen achievement statements when paired with metrics
var powerWords = []string{
	"successfully", "significantly", "dramatically", "consistently",
	"effectively", "strategically", "proactively", "efficiently",
	"comprehensively", "innovatively",
}

// RoleKeywords returns the keyword list for the given role. Unknown
// roles fall back to the general list so analysis always has a
// taxonomy to match against.
func RoleKeywords(role string) []string {
	if keywords, ok := roleKeywords[role]; ok {
		return keywords
	}
	return roleKeywords["general"]
}

// KnownRole reports whether the role has a dedicated keyword list
func KnownRole(role string) bool {
	_, ok := roleKeywords[role]
	return ok
}

// Roles returns all supported role identifiers in sorted order
func Roles() []string {
	roles := make([]string, 0, len(roleKeywords))
	for role := range roleKeywords {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}

// ActionVerbs returns the deduplicated list of strong action verbs
func ActionVerbs() []string {
	return allActionVerbs
}

// WeakPhrases returns the phrases the scoring rules penalize
func WeakPhrases() []string {
	return weakPhrases
}

// PowerWords returns intensifiers that pair well with quantified results
func PowerWords() []string {
	return powerWords
}
