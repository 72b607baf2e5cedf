package resume

import (
	"regexp"
	"strings"

	"github.com/spigell/ats-scorer/internal/textnorm"
)

// Section names.
const (
	Preamble       = "preamble"
	Summary        = "summary"
	Skills         = "skills"
	Experience     = "experience"
	Projects       = "projects"
	Education      = "education"
	Certifications = "certifications"
	Achievements   = "achievements"
	Publications   = "publications"
)

type heading struct {
	section string
	re      *regexp.Regexp
}

// Tested in order; the first pattern found anywhere in a line wins.
var headings = []heading{
	{Summary, regexp.MustCompile(`(?i)\b(summary|professional summary|profile|about me|overview)\b`)},
	{Skills, regexp.MustCompile(`(?i)\b(technical\W*skills|skills|core competencies|technical summary|technical expertise|key skills)\b`)},
	{Experience, regexp.MustCompile(`(?i)\b(experience|work experience|professional experience|employment history|employment)\b`)},
	{Projects, regexp.MustCompile(`(?i)\b(projects?|academic projects|key projects|personal projects|opensource projects|open-source projects|side projects)\b`)},
	{Education, regexp.MustCompile(`(?i)\b(education|academic background|qualifications|educational background|education & qualifications)\b`)},
	{Certifications, regexp.MustCompile(`(?i)\b(certifications?|licenses?|certificates|courses)\b`)},
	{Achievements, regexp.MustCompile(`(?i)\b(achievements?|awards|honors|accomplishments|notable achievements)\b`)},
	{Publications, regexp.MustCompile(`(?i)\b(publications)\b`)},
	{Experience, regexp.MustCompile(`(?i)\b(employment|professional profile|professional background)\b`)},
}

const headingTrim = " :\t-–—"

var (
	projectVerb = regexp.MustCompile(`(?i)\b(built|developed|implemented|designed|trained|deployed|created|engineer(?:ed)?|optimi[sz]ed|reduced|increased|achieved|evaluated|predicted|extracted|parsed|recognized|improved|constructed)\b`)
	projectTech = regexp.MustCompile(`(?i)\b(python|tensorflow|pytorch|keras|opencv|scikit|sklearn|dataset|accuracy|precision|recall|model|github|repo|api|docker|flask|django|react|node|aws|gcp|azure|sql|mongodb)\b`)
	anyNumber   = regexp.MustCompile(`\d+%?|\d+\.\d+`)
	repoURL     = regexp.MustCompile(`(?i)github\.com/[A-Za-z0-9\-_]+`)
)

// IsProjectLike reports whether a line reads like a project bullet: it mentions
// a project, pairs a build verb with a technology or a number, pairs a technology
// with a number, or links a source repository.
func IsProjectLike(line string) bool {
	if strings.Contains(strings.ToLower(line), "project") {
		return true
	}

	verb := projectVerb.MatchString(line)
	tech := projectTech.MatchString(line)
	num := anyNumber.MatchString(line)

	switch {
	case verb && (tech || num):
		return true
	case tech && num:
		return true
	default:
		return repoURL.MatchString(line)
	}
}

type line struct {
	idx  int
	text string
}

// Sections holds the segmented lines of a resume keyed by section name.
type Sections struct {
	order []string
	lines map[string][]line
	all   []line
}

// Segment splits normalized text into sections by heading keywords. Lines before
// the first heading land in the preamble.
func Segment(text string) *Sections {
	s := &Sections{lines: make(map[string][]line)}

	current := ""
	for idx, raw := range strings.Split(text, "\n") {
		stripped := strings.TrimSpace(raw)
		if stripped == "" {
			continue
		}
		s.all = append(s.all, line{idx: idx, text: stripped})

		if name, after, ok := matchHeading(stripped); ok {
			current = name
			s.ensure(name)
			if after != "" {
				s.add(name, line{idx: idx, text: after})
			}
			continue
		}

		if current == "" {
			s.add(Preamble, line{idx: idx, text: stripped})
			continue
		}
		s.add(current, line{idx: idx, text: stripped})
	}

	return s
}

func matchHeading(text string) (string, string, bool) {
	for _, h := range headings {
		loc := h.re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		return h.section, strings.Trim(text[loc[1]:], headingTrim), true
	}
	return "", "", false
}

func (s *Sections) ensure(name string) {
	if _, ok := s.lines[name]; !ok {
		s.lines[name] = nil
		s.order = append(s.order, name)
	}
}

func (s *Sections) add(name string, ln line) {
	s.ensure(name)
	s.lines[name] = append(s.lines[name], ln)
}

// Text returns the section's lines joined by newlines.
func (s *Sections) Text(name string) string {
	parts := make([]string, 0, len(s.lines[name]))
	for _, ln := range s.lines[name] {
		parts = append(parts, ln.text)
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// Names lists the detected sections in order of first appearance.
func (s *Sections) Names() []string {
	return append([]string(nil), s.order...)
}

// Map returns every detected section's text.
func (s *Sections) Map() map[string]string {
	out := make(map[string]string, len(s.order))
	for _, name := range s.order {
		out[name] = s.Text(name)
	}
	return out
}

// ReassignProjects moves project-like experience lines into projects. When that
// leaves projects empty it falls back to project-like lines of the preamble and
// achievements, and finally to the longest run of bulleted or project-like lines
// anywhere in the document. Every reassignment is a move.
func (s *Sections) ReassignProjects() {
	s.moveProjectLike(Experience)
	if len(s.lines[Projects]) > 0 {
		return
	}

	s.moveProjectLike(Preamble)
	s.moveProjectLike(Achievements)
	if len(s.lines[Projects]) > 0 {
		return
	}

	run := s.longestCandidateRun()
	if len(run) == 0 {
		return
	}

	wanted := make(map[int]struct{}, len(run))
	for _, ln := range run {
		wanted[ln.idx] = struct{}{}
	}
	for _, name := range s.order {
		if name == Projects {
			continue
		}
		s.moveWhere(name, func(ln line) bool {
			_, ok := wanted[ln.idx]
			return ok
		})
	}
}

func (s *Sections) moveProjectLike(from string) {
	s.moveWhere(from, func(ln line) bool { return IsProjectLike(ln.text) })
}

func (s *Sections) moveWhere(from string, pred func(line) bool) {
	src, ok := s.lines[from]
	if !ok || len(src) == 0 {
		return
	}

	kept := src[:0:0]
	var moved []line
	for _, ln := range src {
		if pred(ln) {
			moved = append(moved, ln)
			continue
		}
		kept = append(kept, ln)
	}
	if len(moved) == 0 {
		return
	}

	s.lines[from] = kept
	s.ensure(Projects)
	s.lines[Projects] = append(s.lines[Projects], moved...)
}

// longestCandidateRun returns the first longest run of consecutive bulleted or
// project-like lines, provided the run holds at least one project-like line.
func (s *Sections) longestCandidateRun() []line {
	var best, cur []line
	closeRun := func() {
		if len(cur) > len(best) {
			best = cur
		}
		cur = nil
	}

	for _, ln := range s.all {
		if IsProjectLike(ln.text) || textnorm.HasLeadingBullet(ln.text) {
			cur = append(cur, ln)
			continue
		}
		closeRun()
	}
	closeRun()

	for _, ln := range best {
		if IsProjectLike(ln.text) {
			return best
		}
	}
	return nil
}
