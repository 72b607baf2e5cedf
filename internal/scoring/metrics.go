// Package scoring turns resume features into ATS scores and improvement
// suggestions.
package scoring

import "math"

// Weights are the core metric weights. They sum to 1.
type Weights struct {
	Skills         float64 `json:"skills"`
	ActionVerbs    float64 `json:"action_verbs"`
	Buzzwords      float64 `json:"buzzwords"`
	Projects       float64 `json:"projects"`
	Education      float64 `json:"education"`
	Certifications float64 `json:"certifications"`
	ResumeLength   float64 `json:"resume_length"`
	Summary        float64 `json:"summary"`
}

// DefaultWeights is the production weighting.
var DefaultWeights = Weights{
	Skills:         0.35,
	ActionVerbs:    0.15,
	Buzzwords:      0.10,
	Projects:       0.10,
	Education:      0.10,
	Certifications: 0.10,
	ResumeLength:   0.08,
	Summary:        0.02,
}

const (
	maxRepetitionPenalty = 0.15
	sectionBonus         = 0.05
	linksBonus           = 0.03
	contextualWeight     = 0.05
	recencyWeight        = 0.03
	seniorityWeight      = 0.03
	quantifiedWeight     = 0.04
	formattingWeight     = 0.02
	contactsWeight       = 0.02
)

// Metrics are the per job description inputs of the score. Scores are in [0,1].
type Metrics struct {
	SkillsScore         float64 `json:"skills_score"`
	ActionVerbsScore    float64 `json:"action_verbs_score"`
	BuzzwordsScore      float64 `json:"buzzwords_score"`
	ProjectsScore       float64 `json:"projects_score"`
	EducationScore      float64 `json:"education_score"`
	CertificationsScore float64 `json:"certifications_score"`
	RepetitionRatio     float64 `json:"repetition_ratio"`
	ResumeLengthScore   float64 `json:"resume_length_score"`
	SummaryScore        float64 `json:"summary_score"`
	ContextualScore     float64 `json:"contextual_score"`
	RecencyScore        float64 `json:"recency_score"`
	SeniorityScore      float64 `json:"seniority_score"`
	QuantifiedScore     float64 `json:"quantified_score"`
	FormattingScore     float64 `json:"formatting_score"`
	ContactsScore       float64 `json:"contacts_score"`

	ProjectsPresent     bool `json:"projects_present"`
	AchievementsPresent bool `json:"achievements_present"`
	SkillsPresent       bool `json:"skills_present"`
	ProjectLinksPresent bool `json:"project_links_present"`
}

// Calculate combines metrics into an integer score in [0,100]. The weighted core
// is damped by repetition, bonuses are added on top, and rounding happens once
// at the end, half to even.
func Calculate(m Metrics, w Weights) int {
	repetitionFactor := 1 - min(m.RepetitionRatio, maxRepetitionPenalty)

	core := (m.SkillsScore*w.Skills +
		m.ActionVerbsScore*w.ActionVerbs +
		m.BuzzwordsScore*w.Buzzwords +
		m.ProjectsScore*w.Projects +
		m.EducationScore*w.Education +
		m.CertificationsScore*w.Certifications +
		m.ResumeLengthScore*w.ResumeLength +
		m.SummaryScore*w.Summary) * repetitionFactor

	bonus := 0.0
	for _, present := range []bool{m.ProjectsPresent, m.AchievementsPresent, m.SkillsPresent} {
		if present {
			bonus += sectionBonus
		}
	}
	if m.ProjectLinksPresent {
		bonus += linksBonus
	}
	bonus += m.ContextualScore * contextualWeight
	bonus += m.RecencyScore * recencyWeight
	bonus += m.SeniorityScore * seniorityWeight
	bonus += m.QuantifiedScore * quantifiedWeight
	bonus += m.FormattingScore * formattingWeight
	bonus += m.ContactsScore * contactsWeight

	total := min((core+bonus)*100, 100)
	return int(math.RoundToEven(max(total, 0)))
}

// Aggregate returns the rounded mean, the best and the worst of scores.
func Aggregate(scores []int) (avg, best, worst int) {
	if len(scores) == 0 {
		return 0, 0, 0
	}

	sum := 0
	best, worst = scores[0], scores[0]
	for _, s := range scores {
		sum += s
		best = max(best, s)
		worst = min(worst, s)
	}
	avg = int(math.RoundToEven(float64(sum) / float64(len(scores))))
	return avg, best, worst
}
