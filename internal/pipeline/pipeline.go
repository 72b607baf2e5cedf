// Package pipeline wires document ingestion, resume and job description parsing
// and the scoring engine behind the three entry points used by the CLI.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/features"
	"github.com/spigell/ats-scorer/internal/ingest"
	"github.com/spigell/ats-scorer/internal/jd"
	"github.com/spigell/ats-scorer/internal/logger"
	"github.com/spigell/ats-scorer/internal/nlp"
	"github.com/spigell/ats-scorer/internal/refdata"
	"github.com/spigell/ats-scorer/internal/resume"
	"github.com/spigell/ats-scorer/internal/scoring"
	"github.com/spigell/ats-scorer/internal/skills"
)

// Options configures a Service.
type Options struct {
	// Data holds the reference tables. It is shared read-only with every component.
	Data *refdata.Data
	// Lemmatizer backs action verb detection. Nil disables it.
	Lemmatizer  nlp.VerbLemmatizer
	StrictVerbs bool
	// RecencyWindow is the number of years a project counts as recent.
	RecencyWindow int
	// BulletChars splits project text into points. Empty uses the default set.
	BulletChars string
	// DisabledSuggestions names suggestion rules to skip.
	DisabledSuggestions []string
	Clock               func() time.Time
	Logger              *zap.Logger
}

// Service runs the resume pipeline. It keeps no per-request state.
type Service struct {
	data    *refdata.Data
	reader  *ingest.Reader
	resumes *resume.Parser
	jds     *jd.Parser
	engine  *scoring.Engine
	logger  *zap.Logger
}

// New builds a Service over the reference tables.
func New(opts Options) *Service {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	data := opts.Data
	if data == nil {
		data = &refdata.Data{}
	}

	canon := skills.NewCanonicalizer(data)
	extractor := features.New(features.Options{
		ActionVerbs:   data.ActionVerbs,
		Strict:        opts.StrictVerbs,
		BulletChars:   opts.BulletChars,
		Lemmatizer:    opts.Lemmatizer,
		Canonicalizer: canon,
		Logger:        log.Named("features"),
	})

	rules := scoring.DefaultRules()
	for _, name := range opts.DisabledSuggestions {
		if !scoring.DisableByName(rules, strings.TrimSpace(name), "disabled by configuration") {
			log.Warn("unknown suggestion rule", zap.String("name", name))
		}
	}

	return &Service{
		data:    data,
		reader:  ingest.New(log.Named("ingest")),
		resumes: resume.NewParser(canon, data.Certifications, log.Named("resume")),
		jds:     jd.NewParser(data, canon, log.Named("jd")),
		engine: scoring.NewEngine(scoring.Options{
			Extractor:      extractor,
			Canonicalizer:  canon,
			Certifications: data.Certifications,
			RecencyWindow:  opts.RecencyWindow,
			Rules:          rules,
			Clock:          opts.Clock,
			Logger:         log.Named("scoring"),
		}),
		logger: log,
	}
}

// ParseResume reads and parses the resume file at path.
func (s *Service) ParseResume(ctx context.Context, path string) (*resume.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc, err := s.reader.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading resume %q: %w", path, err)
	}

	return s.resumes.Parse(doc), nil
}

// Score parses the resume at path and scores it against every dataset job
// matching title and level. When none matches it scores against an empty
// synthetic job instead of failing.
func (s *Service) Score(ctx context.Context, path, title, level string) (*scoring.Result, error) {
	log := logger.WithFields(s.logger, logger.PipelineFields(path, title, level)...)

	jobs, err := jd.Select(s.data.Jobs, title, level)
	switch {
	case errors.Is(err, jd.ErrNoMatchingJobDescription):
		log.Warn("no matching job description, scoring against an empty one")
	case err != nil:
		return nil, fmt.Errorf("selecting job descriptions: %w", err)
	default:
		log.Info("job descriptions matched", zap.Int("count", len(jobs)))
	}

	return s.score(ctx, log, path, jobs)
}

// ScoreAgainst parses the free-text job description and scores the resume at
// path against it. The parsed description is returned alongside the result.
func (s *Service) ScoreAgainst(ctx context.Context, path, description string) (*scoring.Result, *jd.Record, error) {
	parsed := s.jds.Parse(description)
	job := parsed.Job()
	log := logger.WithFields(s.logger, logger.PipelineFields(path, job.Title, job.ExperienceLevel)...)

	res, err := s.score(ctx, log, path, []refdata.Job{job})
	if err != nil {
		return nil, nil, err
	}
	return res, parsed, nil
}

// ParseJobDescription parses a free-text job description.
func (s *Service) ParseJobDescription(text string) *jd.Record {
	return s.jds.Parse(text)
}

// JobTitles lists the distinct dataset titles.
func (s *Service) JobTitles() []string {
	return s.data.JobTitles()
}

// Suggestions reports which suggestion rules run.
func (s *Service) Suggestions() []scoring.RuleStatus {
	return scoring.Describe(s.engine.Rules())
}

func (s *Service) score(ctx context.Context, log *zap.Logger, path string, jobs []refdata.Job) (*scoring.Result, error) {
	rec, err := s.ParseResume(ctx, path)
	if err != nil {
		return nil, err
	}

	res, err := s.engine.Score(ctx, rec, jobs)
	if err != nil {
		return nil, fmt.Errorf("scoring resume: %w", err)
	}

	log.Info("resume scored",
		zap.Int("ats_score", res.ATSScore),
		zap.Int("best_score", res.BestScore),
		zap.Int("worst_score", res.WorstScore),
		zap.Int("jobs", res.NumRelevantJDs),
	)
	return res, nil
}
