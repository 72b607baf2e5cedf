package scoring

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/features"
	"github.com/spigell/ats-scorer/internal/resume"
)

const (
	maxVerbHints       = 10
	maxCertHints       = 5
	minProjectPoints   = 3
	minPointQuality    = 0.5
	minDetailWordCount = 300
)

// Evidence is what the suggestion rules look at.
type Evidence struct {
	Resume *resume.Record
	// JobSkills lists the skills of every relevant job, first occurrence order.
	JobSkills []string
	// Verbs are the configured action verbs, FoundVerbs the ones detected.
	Verbs          []string
	FoundVerbs     []string
	Certifications []string
	Projects       features.ProjectAnalysis
	Words          int
	Repetitions    []features.Repetition
}

// Rule produces at most one suggestion.
type Rule interface {
	Name() string
	Disable(reason string)
	IsEnabled() bool

	Apply(ev *Evidence) (string, bool)
}

// RuleStatus reports whether a rule runs and why not.
type RuleStatus struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason,omitempty"`
}

type rule struct {
	name     string
	disabled string
	apply    func(ev *Evidence) (string, bool)
}

func (r *rule) Name() string { return r.name }

func (r *rule) Disable(reason string) {
	if reason == "" {
		reason = "disabled"
	}
	r.disabled = reason
}

func (r *rule) IsEnabled() bool { return r.disabled == "" }

func (r *rule) Apply(ev *Evidence) (string, bool) { return r.apply(ev) }

func (r *rule) Status() RuleStatus {
	return RuleStatus{Name: r.name, Enabled: r.IsEnabled(), Reason: r.disabled}
}

// DefaultRules returns a fresh rule chain in evaluation order.
func DefaultRules() []Rule {
	return []Rule{
		&rule{name: "missing_skills", apply: missingSkills},
		&rule{name: "action_verbs", apply: missingVerbs},
		&rule{name: "certifications", apply: missingCertifications},
		&rule{name: "project_points", apply: fewProjectPoints},
		&rule{name: "project_quality", apply: weakProjectPoints},
		&rule{name: "resume_length", apply: shortResume},
		&rule{name: "repeated_verbs", apply: repeatedVerbs},
		&rule{name: "project_links", apply: missingLinks},
	}
}

// DisableByName marks the rule with the provided name as disabled while
// keeping it in the chain. It reports whether a rule was found.
func DisableByName(rules []Rule, name, reason string) bool {
	found := false
	for _, r := range rules {
		if r.Name() == name {
			r.Disable(reason)
			found = true
		}
	}
	return found
}

// Describe returns status entries for the rules.
func Describe(rules []Rule) []RuleStatus {
	out := make([]RuleStatus, 0, len(rules))
	for _, r := range rules {
		if reporter, ok := r.(interface{ Status() RuleStatus }); ok {
			out = append(out, reporter.Status())
			continue
		}
		out = append(out, RuleStatus{Name: r.Name(), Enabled: r.IsEnabled()})
	}
	return out
}

// Suggest evaluates every enabled rule once, in order.
func Suggest(rules []Rule, ev *Evidence, logger *zap.Logger) []string {
	if logger == nil {
		logger = zap.NewNop()
	}

	out := []string{}
	for _, r := range rules {
		if !r.IsEnabled() {
			logger.Debug("suggestion rule disabled", zap.String("name", r.Name()))
			continue
		}
		if msg, ok := r.Apply(ev); ok {
			out = append(out, msg)
		}
	}
	return out
}

func missingSkills(ev *Evidence) (string, bool) {
	have := map[string]struct{}{}
	if ev.Resume != nil {
		for _, s := range ev.Resume.Skills {
			have[strings.ToLower(s)] = struct{}{}
		}
	}

	var missing []string
	for _, s := range dedupeFold(ev.JobSkills) {
		if _, ok := have[strings.ToLower(s)]; !ok {
			missing = append(missing, s)
		}
	}
	if len(missing) == 0 {
		return "", false
	}
	return "Consider adding missing skills from JD: " + strings.Join(missing, ", "), true
}

func missingVerbs(ev *Evidence) (string, bool) {
	missing := without(ev.Verbs, ev.FoundVerbs)
	if len(missing) == 0 {
		return "", false
	}
	return fmt.Sprintf("Use more varied action verbs like: %s...", strings.Join(head(missing, maxVerbHints), ", ")), true
}

func missingCertifications(ev *Evidence) (string, bool) {
	var have []string
	if ev.Resume != nil {
		have = ev.Resume.Certifications
	}
	missing := without(ev.Certifications, have)
	if len(missing) == 0 {
		return "", false
	}
	return fmt.Sprintf("Add relevant certifications: %s...", strings.Join(head(missing, maxCertHints), ", ")), true
}

func fewProjectPoints(ev *Evidence) (string, bool) {
	return "Add more points in projects section (less than 3 detected)", ev.Projects.NumPoints < minProjectPoints
}

func weakProjectPoints(ev *Evidence) (string, bool) {
	return "Enhance project bullets with numbers, skills, and action verbs", ev.Projects.AvgPointScore < minPointQuality
}

func shortResume(ev *Evidence) (string, bool) {
	return "Consider adding more details; resume is quite short (<300 words)", ev.Words < minDetailWordCount
}

func repeatedVerbs(ev *Evidence) (string, bool) {
	if len(ev.Repetitions) == 0 {
		return "", false
	}
	words := make([]string, 0, len(ev.Repetitions))
	for _, r := range ev.Repetitions {
		words = append(words, r.Word)
	}
	return fmt.Sprintf("Reduce repeated action verbs: %s...", strings.Join(head(words, maxVerbHints), ", ")), true
}

func missingLinks(ev *Evidence) (string, bool) {
	return "Add live demo / project links if available (GitHub, Vercel, Netlify) to increase credibility", !ev.Projects.ContainsLinks
}

// without returns the items of list absent from exclude, ignoring case.
func without(list, exclude []string) []string {
	skip := make(map[string]struct{}, len(exclude))
	for _, s := range exclude {
		skip[strings.ToLower(s)] = struct{}{}
	}
	var out []string
	for _, s := range list {
		if _, ok := skip[strings.ToLower(s)]; !ok {
			out = append(out, s)
		}
	}
	return out
}

func head(list []string, n int) []string {
	if len(list) > n {
		return list[:n]
	}
	return list
}
