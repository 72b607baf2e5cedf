// Package features holds the heuristic extractors that feed the scoring engine.
// Every ratio is defined as zero when its denominator is zero.
package features

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/nlp"
	"github.com/spigell/ats-scorer/internal/skills"
	"github.com/spigell/ats-scorer/internal/textnorm"
)

var (
	buzzwordToken = regexp.MustCompile(`\b\w[\w\+\.\#]*\b`)
	anyDigit      = regexp.MustCompile(`\d+%?|\d+\.\d+`)
	httpLink      = regexp.MustCompile(`https?://\S+`)
)

// Options configures an Extractor.
type Options struct {
	// ActionVerbs is the configured verb list, base forms.
	ActionVerbs []string
	// Strict requires a lemma to equal a configured verb instead of overlapping it.
	Strict bool
	// BulletChars are the glyphs that split project text into points. Empty
	// means textnorm.BulletChars.
	BulletChars   string
	Lemmatizer    nlp.VerbLemmatizer
	Canonicalizer *skills.Canonicalizer
	Logger        *zap.Logger
}

// Extractor runs the text features that need the lemmatizer or the skill tables.
type Extractor struct {
	verbs      []string
	strict     bool
	lemmatizer nlp.VerbLemmatizer
	canon      *skills.Canonicalizer
	splitter   *textnorm.Splitter
	logger     *zap.Logger
}

// New builds an Extractor. A nil lemmatizer disables action-verb detection.
func New(opts Options) *Extractor {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	canon := opts.Canonicalizer
	if canon == nil {
		canon = skills.NewCanonicalizer(nil)
	}

	verbs := make([]string, 0, len(opts.ActionVerbs))
	for _, v := range opts.ActionVerbs {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			verbs = append(verbs, v)
		}
	}

	return &Extractor{
		verbs:      verbs,
		strict:     opts.Strict,
		lemmatizer: nlp.NewTolerant(opts.Lemmatizer, logger),
		canon:      canon,
		splitter:   textnorm.NewSplitter(opts.BulletChars),
		logger:     logger,
	}
}

// Verbs returns the configured action verbs, lowercased, in configured order.
func (e *Extractor) Verbs() []string {
	return append([]string(nil), e.verbs...)
}

// ActionVerbs returns the sorted configured verbs matched by the verb lemmas of
// text. Lenient mode accepts a lemma that contains or is contained in a
// configured verb and reports the configured form.
func (e *Extractor) ActionVerbs(ctx context.Context, text string) ([]string, error) {
	lemmas, err := e.lemmatizer.LemmatizeVerbs(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("lemmatizing verbs: %w", err)
	}

	found := map[string]struct{}{}
	for _, lemma := range lemmas {
		lemma = strings.ToLower(lemma)
		if lemma == "" {
			continue
		}
		for _, v := range e.verbs {
			if e.strict {
				if lemma == v {
					found[v] = struct{}{}
				}
				continue
			}
			if strings.Contains(v, lemma) || strings.Contains(lemma, v) {
				found[v] = struct{}{}
			}
		}
	}
	return sortedSet(found), nil
}

// Buzzwords returns the sorted skills of list present in text, unique case
// insensitively. Single tokens are canonicalized before comparison; multi-word
// skills match as substrings.
func (e *Extractor) Buzzwords(text string, list []string) []string {
	wanted := make(map[string]struct{}, len(list))
	for _, s := range list {
		wanted[strings.ToLower(s)] = struct{}{}
	}

	// lowercased canonical to the first form seen
	found := map[string]string{}
	for _, w := range buzzwordToken.FindAllString(text, -1) {
		canonical := e.canon.Canonicalize(w)
		key := strings.ToLower(canonical)
		if _, ok := wanted[key]; !ok {
			continue
		}
		if _, seen := found[key]; !seen {
			found[key] = canonical
		}
	}

	lower := strings.ToLower(text)
	for _, s := range list {
		key := strings.ToLower(s)
		if _, seen := found[key]; seen {
			continue
		}
		if len(strings.Fields(s)) > 1 && strings.Contains(lower, key) {
			found[key] = s
		}
	}

	out := make([]string, 0, len(found))
	for _, v := range found {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// ProjectAnalysis summarizes the bullet points of a projects section.
type ProjectAnalysis struct {
	NumPoints         int      `json:"num_points"`
	AvgPointScore     float64  `json:"avg_point_score"`
	ContainsNumbers   bool     `json:"contains_numbers"`
	ContainsLinks     bool     `json:"contains_links"`
	ContextualMatches int      `json:"contextual_matches"`
	QuantifiedCounts  int      `json:"quantified_counts"`
	RawPoints         []string `json:"raw_points"`
}

// AnalyzeProjects scores every bullet with three equally weighted signals: an
// action verb, a known skill and a number.
func (e *Extractor) AnalyzeProjects(ctx context.Context, text string) (ProjectAnalysis, error) {
	points := e.splitter.Points(text)
	pa := ProjectAnalysis{NumPoints: len(points), RawPoints: points}
	if len(points) == 0 {
		pa.RawPoints = []string{}
		return pa, nil
	}

	known := e.canon.Canonicals()
	var total float64
	for _, p := range points {
		verbs, err := e.ActionVerbs(ctx, p)
		if err != nil {
			return ProjectAnalysis{}, err
		}
		hasVerb := len(verbs) > 0
		hasSkill := len(e.Buzzwords(p, known)) > 0
		hasNumber := anyDigit.MatchString(p)

		signals := 0
		for _, ok := range []bool{hasVerb, hasSkill, hasNumber} {
			if ok {
				signals++
			}
		}
		total += float64(signals) / 3

		if hasVerb && hasSkill {
			pa.ContextualMatches++
		}
		if hasNumber {
			pa.QuantifiedCounts++
			pa.ContainsNumbers = true
		}
		if httpLink.MatchString(p) {
			pa.ContainsLinks = true
		}
	}
	pa.AvgPointScore = total / float64(len(points))

	e.logger.Debug("projects analyzed",
		zap.Int("points", pa.NumPoints),
		zap.Float64("avg_point_score", pa.AvgPointScore),
	)
	return pa, nil
}

// ContextualScore is the share of bullets pairing a verb with a skill.
func (pa ProjectAnalysis) ContextualScore() float64 {
	if pa.NumPoints == 0 {
		return 0
	}
	return float64(pa.ContextualMatches) / float64(pa.NumPoints)
}

// QuantifiedScore is the share of bullets carrying a number, capped at 1.
func (pa ProjectAnalysis) QuantifiedScore() float64 {
	if pa.NumPoints == 0 {
		return 0
	}
	return min(1, float64(pa.QuantifiedCounts)/float64(pa.NumPoints))
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
