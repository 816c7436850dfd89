package types

// SampleResume returns a fully populated resume useful for demos,
// health checks and as a starting template for the sample command.
func SampleResume() Resume {
	return Resume{
		PersonalInfo: PersonalInfo{
			FullName: "Alex Johnson",
			Email:    "alex.johnson@email.com",
			Phone:    "(555) 123-4567",
			Location: "San Francisco, CA",
			Title:    "Senior Software Engineer",
			LinkedIn: "linkedin.com/in/alexjohnson",
			Website:  "alexjohnson.dev",
		},
		Summary: "Results-driven software engineer with 8+ years of experience building scalable web applications. " +
			"Led teams of 5+ engineers and delivered products used by over 2 million users. " +
			"Specialized in cloud architecture and improved system performance by 40% across multiple projects.",
		Skills: []string{
			"JavaScript", "TypeScript", "React", "Node.js", "Python",
			"AWS", "Docker", "Kubernetes", "PostgreSQL", "MongoDB",
			"GraphQL", "CI/CD", "Agile",
		},
		Experience: []Experience{
			{
				Company:     "TechCorp Inc.",
				Position:    "Senior Software Engineer",
				Location:    "San Francisco, CA",
				StartDate:   "2021-03",
				EndDate:     "",
				Current:     true,
				Description: "Lead engineer for the core platform team, building microservices that handle 10M+ requests daily.",
				Achievements: []string{
					"Architected and launched a new payment processing system that reduced transaction failures by 35%",
					"Led migration to Kubernetes, decreasing deployment time from 2 hours to 15 minutes",
					"Mentored 4 junior engineers, with 3 receiving promotions within 18 months",
				},
			},
			{
				Company:     "StartupXYZ",
				Position:    "Software Engineer",
				Location:    "San Francisco, CA",
				StartDate:   "2018-06",
				EndDate:     "2021-02",
				Current:     false,
				Description: "Full-stack engineer on a team of 8, building a B2B SaaS analytics platform.",
				Achievements: []string{
					"Developed real-time analytics dashboard used by 500+ enterprise customers",
					"Improved API response times by 60% through query optimization and caching",
					"Established automated testing practices, increasing code coverage from 45% to 85%",
				},
			},
		},
		Education: []Education{
			{
				Institution: "University of California, Berkeley",
				Degree:      "Bachelor of Science",
				Field:       "Computer Science",
				StartDate:   "2012-08",
				EndDate:     "2016-05",
				GPA:         "3.8",
			},
		},
		Projects: []Project{
			{
				Name:         "OpenMetrics Dashboard",
				Description:  "Open-source monitoring dashboard with 2k+ GitHub stars, built for visualizing time-series data.",
				Technologies: []string{"TypeScript", "React", "D3.js", "Go"},
				Link:         "github.com/alexjohnson/openmetrics",
			},
			{
				Name:         "DevFlow CLI",
				Description:  "Command-line tool that automates common development workflows, downloaded 10k+ times.",
				Technologies: []string{"Go", "Cobra"},
				Link:         "github.com/alexjohnson/devflow",
			},
		},
		Certifications: []Certification{
			{
				Name:   "AWS Certified Solutions Architect - Associate",
				Issuer: "Amazon Web Services",
				Date:   "2022-09",
			},
			{
				Name:   "Professional Scrum Master I",
				Issuer: "Scrum.org",
				Date:   "2020-04",
			},
		},
	}
}
