package rules

import "resumescan/internal/types"

// DefaultVersion identifies the built-in rule set.
const DefaultVersion = "2024.1-builtin"

// Default returns a fresh copy of the built-in rule set.
func Default() *Table {
	t := &Table{
		Version: DefaultVersion,
		Headings: map[string][]string{
			types.SectionProfileSummary: {"summary", "profile", "objective"},
			types.SectionWorkExperience: {"experience", "work history", "professional experience", "experience details"},
			types.SectionEducation:      {"education", "academic background", "academic record", "professional qualification"},
			types.SectionSkills: {
				"skills", "technical skills", "technical proficiency", "tools", "skill set",
				"core competencies", "areas of expertise", "computer skills",
			},
		},
		Buzzwords: []string{
			"synergy", "go-getter", "team player", "results-oriented",
			"dynamic", "proactive", "thought leader", "self-starter",
		},
		ActionVerbs: []string{
			"achieved", "accelerated", "improved", "drove", "managed", "created",
			"launched", "led", "increased", "decreased", "optimized",
		},
		EducationTerms: []string{
			"b.s", "b.a", "m.s", "m.a", "ph.d", "bachelor", "master",
			"doctorate", "university", "college", "institute",
		},
		OutdatedTech: []string{
			"flash", "jquery", "svn", "subversion", "visual basic",
			"vb.net", "webforms", "soap", "angularjs",
		},
		Domains: []Domain{
			{
				Name:     "software",
				Keywords: []string{"engineer", "developer", "python", "java", "aws", "software", "api", "database", "git", "cloud"},
				JobDescription: "Senior Software Engineer: Skilled in Python, Java, Go, data structures, algorithms, " +
					"cloud computing (AWS/Azure/GCP), microservices architecture, Docker, Kubernetes, and SQL/NoSQL databases.",
			},
			{
				Name:     "marketing",
				Keywords: []string{"marketing", "campaign", "brand", "seo", "ppc", "content", "digital", "analytic", "social media"},
				JobDescription: "Marketing Manager: Expertise in B2B/B2C marketing, demand generation, campaign execution, " +
					"digital marketing (SEO, SEM, PPC), content strategy, and marketing analytics.",
			},
			{
				Name:     "graphic_designer",
				Keywords: []string{"graphic", "photoshop", "illustrator", "figma", "design", "visual", "assets", "branding"},
				JobDescription: "Graphic Designer: Proficiency in Adobe Creative Suite (Photoshop, Illustrator, InDesign), " +
					"Figma, and Sketch. Experience in UI/UX design, branding, and creating visual assets for digital and print media.",
			},
			{
				Name:     "scm",
				Keywords: []string{"supply chain", "scm", "logistics", "warehousing", "distribution", "procurement", "inventory", "freight"},
				JobDescription: "Supply Chain Manager: Experience in logistics, inventory management, procurement, vendor relations, " +
					"warehousing, and distribution. Focus on optimizing processes and reducing costs.",
			},
		},
		GenericJobDescription: "A general professional role with a focus on clear communication, quantifiable achievements, " +
			"leadership, project management, and problem-solving skills.",
		Scoring: Scoring{
			IssuePenalty:    10,
			OutdatedPenalty: 5,
			QualityWeight:   40,
			MatchWeight:     60,
			Grades: []GradeBand{
				{Min: 80, Grade: "A"},
				{Min: 70, Grade: "B"},
				{Min: 60, Grade: "C"},
				{Min: 40, Grade: "D"},
			},
			FallbackGrade: "F",
		},
		Thresholds: Thresholds{
			MinLineLength:      15,
			QuantifiedPercent:  30,
			JobFitTarget:       75,
			MaxMissingKeywords: 8,
			DomainMinHits:      3,
		},
	}
	t.normalize()
	return t
}
