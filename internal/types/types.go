package types

// PersonalInfo holds the contact block of a resume
type PersonalInfo struct {
	FullName string `json:"fullName"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
	Title    string `json:"title"`
	LinkedIn string `json:"linkedIn,omitempty"`
	Website  string `json:"website,omitempty"`
}

// Experience represents a single work history entry
type Experience struct {
	Company      string   `json:"company"`
	Position     string   `json:"position"`
	Location     string   `json:"location"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	Current      bool     `json:"current"`
	Description  string   `json:"description"`
	Achievements []string `json:"achievements"`
}

// Education represents a single education entry
type Education struct {
	Institution  string   `json:"institution"`
	Degree       string   `json:"degree"`
	Field        string   `json:"field"`
	StartDate    string   `json:"startDate"`
	EndDate      string   `json:"endDate"`
	GPA          string   `json:"gpa,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// Project represents a personal or professional project
type Project struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Technologies []string `json:"technologies"`
	Link         string   `json:"link,omitempty"`
}

// Certification represents a professional certification
type Certification struct {
	Name         string `json:"name"`
	Issuer       string `json:"issuer"`
	Date         string `json:"date"`
	ExpiryDate   string `json:"expiryDate,omitempty"`
	CredentialID string `json:"credentialId,omitempty"`
	Link         string `json:"link,omitempty"`
}

// Resume is the structured document the scoring engine reads.
// The engine treats it as a read-only snapshot; it never mutates it.
type Resume struct {
	PersonalInfo   PersonalInfo    `json:"personalInfo"`
	Summary        string          `json:"summary"`
	Skills         []string        `json:"skills"`
	Experience     []Experience    `json:"experience"`
	Education      []Education     `json:"education"`
	Projects       []Project       `json:"projects"`
	Certifications []Certification `json:"certifications"`
}

// RuleResult is the outcome of a single scoring rule
type RuleResult struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Passed   bool   `json:"passed"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
	Weight   int    `json:"weight"`
}

// Strength levels derived from the overall score
const (
	StrengthExcellent = "excellent"
	StrengthGood      = "good"
	StrengthFair      = "fair"
	StrengthNeedsWork = "needs-work"
)

// AnalysisResult is the full output of an analysis run. It is built
// fresh on every invocation and never mutated afterwards.
type AnalysisResult struct {
	OverallScore    int          `json:"overallScore"`
	Rules           []RuleResult `json:"rules"`
	Suggestions     []string     `json:"suggestions"`
	KeywordsMatched []string     `json:"keywordsMatched"`
	KeywordsMissing []string     `json:"keywordsMissing"`
	StrengthLevel   string       `json:"strengthLevel"`
}
