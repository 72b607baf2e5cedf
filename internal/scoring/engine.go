package scoring

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/features"
	"github.com/spigell/ats-scorer/internal/refdata"
	"github.com/spigell/ats-scorer/internal/resume"
	"github.com/spigell/ats-scorer/internal/skills"
	"github.com/spigell/ats-scorer/internal/textnorm"
)

// ErrNoJobs is returned when Score is given nothing to score against.
var ErrNoJobs = errors.New("no job descriptions to score against")

// Options configures an Engine.
type Options struct {
	Extractor      *features.Extractor
	Canonicalizer  *skills.Canonicalizer
	Certifications []string
	Weights        *Weights
	RecencyWindow  int
	Rules          []Rule
	Clock          func() time.Time
	Logger         *zap.Logger
}

// Engine scores parsed resumes against job records. It holds no per-request
// state and is safe for concurrent use as long as its rules are not disabled
// concurrently.
type Engine struct {
	extractor      *features.Extractor
	canon          *skills.Canonicalizer
	certifications []string
	weights        Weights
	recencyWindow  int
	rules          []Rule
	now            func() time.Time
	logger         *zap.Logger
}

// NewEngine fills unset options with defaults.
func NewEngine(opts Options) *Engine {
	e := &Engine{
		extractor:      opts.Extractor,
		canon:          opts.Canonicalizer,
		certifications: opts.Certifications,
		weights:        DefaultWeights,
		recencyWindow:  opts.RecencyWindow,
		rules:          opts.Rules,
		now:            opts.Clock,
		logger:         opts.Logger,
	}
	if e.logger == nil {
		e.logger = zap.NewNop()
	}
	if e.canon == nil {
		e.canon = skills.NewCanonicalizer(nil)
	}
	if e.extractor == nil {
		e.extractor = features.New(features.Options{Canonicalizer: e.canon, Logger: e.logger})
	}
	if opts.Weights != nil {
		e.weights = *opts.Weights
	}
	if e.recencyWindow <= 0 {
		e.recencyWindow = features.DefaultRecencyWindow
	}
	if e.rules == nil {
		e.rules = DefaultRules()
	}
	if e.now == nil {
		e.now = time.Now
	}
	return e
}

// Rules exposes the suggestion chain, e.g. to disable rules by name.
func (e *Engine) Rules() []Rule {
	return e.rules
}

// Breakdown is the score of the resume against one job.
type Breakdown struct {
	Title           string  `json:"title"`
	ExperienceLevel string  `json:"experience_level"`
	Score           int     `json:"score"`
	Metrics         Metrics `json:"metrics"`
}

// Result is the outcome of scoring one resume.
type Result struct {
	ATSScore               int                        `json:"ats_score"`
	BestScore              int                        `json:"best_score"`
	WorstScore             int                        `json:"worst_score"`
	AllScores              []int                      `json:"all_scores"`
	Resume                 *resume.Record             `json:"resume"`
	SkillsMatched          []SkillMatch               `json:"skills_matched"`
	ActionVerbs            []string                   `json:"action_verbs"`
	Buzzwords              []string                   `json:"buzzwords"`
	Repetitions            []features.Repetition      `json:"repetitions"`
	ProjectAnalysis        []features.ProjectAnalysis `json:"project_analysis"`
	ValidCertifications    []string                   `json:"valid_certifications"`
	EducationPresent       bool                       `json:"education_present"`
	ImprovementSuggestions []string                   `json:"improvement_suggestions"`
	NumRelevantJDs         int                        `json:"num_relevant_jds"`
	Breakdown              []Breakdown                `json:"breakdown"`
}

// profile holds the job independent features of a resume.
type profile struct {
	verbs       []string
	buzzwords   []string
	projects    features.ProjectAnalysis
	repetitions []features.Repetition
	words       int
	base        Metrics
}

// Score evaluates rec against every job and aggregates the results. Any
// failure aborts the whole evaluation.
func (e *Engine) Score(ctx context.Context, rec *resume.Record, jobs []refdata.Job) (*Result, error) {
	if rec == nil {
		return nil, errors.New("resume record is required")
	}
	if len(jobs) == 0 {
		return nil, ErrNoJobs
	}

	p, err := e.profile(ctx, rec)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Resume:           rec,
		ActionVerbs:      p.verbs,
		Buzzwords:        p.buzzwords,
		Repetitions:      p.repetitions,
		EducationPresent: len(rec.Education) > 0,
		NumRelevantJDs:   len(jobs),
	}
	if res.Repetitions == nil {
		res.Repetitions = []features.Repetition{}
	}

	validCerts := map[string]struct{}{}
	var jobSkills []string

	for _, job := range jobs {
		match := MatchSkills(e.canon, rec.Skills, job.Skills)
		match.Title = job.Title

		m := p.base
		m.SkillsScore = match.Fraction()
		m.BuzzwordsScore = 1
		if len(job.Skills) > 0 {
			m.BuzzwordsScore = min(float64(len(p.buzzwords))/float64(len(job.Skills)), 1)
		}

		certScore, valid := EvaluateCertifications(rec.Certifications, job.Skills, e.certifications)
		m.CertificationsScore = certScore
		for _, c := range valid {
			validCerts[c] = struct{}{}
		}
		m.SeniorityScore = features.Seniority(job.Title, rec.RawText)

		score := Calculate(m, e.weights)

		e.logger.Debug("job scored",
			zap.String("job_title", job.Title),
			zap.String("experience_level", job.ExperienceLevel),
			zap.Int("score", score),
			zap.Float64("skills_score", m.SkillsScore),
		)

		res.AllScores = append(res.AllScores, score)
		res.SkillsMatched = append(res.SkillsMatched, match)
		res.ProjectAnalysis = append(res.ProjectAnalysis, p.projects)
		res.Breakdown = append(res.Breakdown, Breakdown{
			Title:           job.Title,
			ExperienceLevel: job.ExperienceLevel,
			Score:           score,
			Metrics:         m,
		})
		jobSkills = append(jobSkills, job.Skills...)
	}

	res.ATSScore, res.BestScore, res.WorstScore = Aggregate(res.AllScores)
	res.ValidCertifications = sortedKeys(validCerts)

	res.ImprovementSuggestions = Suggest(e.rules, &Evidence{
		Resume:         rec,
		JobSkills:      jobSkills,
		Verbs:          e.extractor.Verbs(),
		FoundVerbs:     p.verbs,
		Certifications: e.certifications,
		Projects:       p.projects,
		Words:          p.words,
		Repetitions:    p.repetitions,
	}, e.logger)

	return res, nil
}

func (e *Engine) profile(ctx context.Context, rec *resume.Record) (*profile, error) {
	combined := rec.ProjectsAndAchievements()

	verbs, err := e.extractor.ActionVerbs(ctx, combined)
	if err != nil {
		return nil, fmt.Errorf("extracting action verbs: %w", err)
	}

	projects, err := e.extractor.AnalyzeProjects(ctx, rec.ProjectsText)
	if err != nil {
		return nil, fmt.Errorf("analyzing projects: %w", err)
	}

	p := &profile{
		verbs:     verbs,
		buzzwords: e.extractor.Buzzwords(combined, rec.Skills),
		projects:  projects,
		words:     textnorm.WordCount(combined),
	}
	// Without detected verbs there is no vocabulary to restrict repetition to.
	if len(verbs) > 0 {
		p.repetitions = features.RepeatedWords(combined, verbs)
	}

	p.base = Metrics{
		ActionVerbsScore:  min(float64(len(verbs))/10, 1),
		ProjectsScore:     min(projects.AvgPointScore, 1),
		RepetitionRatio:   features.RepetitionRatio(p.repetitions, p.words),
		ResumeLengthScore: features.LengthScore(p.words),
		ContextualScore:   projects.ContextualScore(),
		RecencyScore:      features.Recency(projects.RawPoints, e.now(), e.recencyWindow),
		QuantifiedScore:   projects.QuantifiedScore(),
		FormattingScore:   features.Formatting(rec.ProjectsText, rec.RawText),
		ContactsScore:     features.DetectContacts(rec.RawText).Score(),

		ProjectsPresent:     strings.TrimSpace(rec.ProjectsText) != "",
		AchievementsPresent: len(rec.Achievements) > 0,
		SkillsPresent:       len(rec.Skills) > 0,
		ProjectLinksPresent: projects.ContainsLinks,
	}
	if len(rec.Education) > 0 {
		p.base.EducationScore = 1
	}
	if strings.TrimSpace(rec.Summary) != "" {
		p.base.SummaryScore = 1
	}

	return p, nil
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
