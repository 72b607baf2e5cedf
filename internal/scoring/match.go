package scoring

import (
	"math"
	"sort"
	"strings"

	"github.com/spigell/ats-scorer/internal/skills"
)

// SkillMatch reports which job skills a resume covers.
type SkillMatch struct {
	Title        string   `json:"title,omitempty"`
	Matched      []string `json:"matched"`
	Unmatched    []string `json:"unmatched"`
	ScorePercent float64  `json:"score_percent"`

	fraction float64
}

// Fraction is the share of job skills matched, unrounded.
func (m SkillMatch) Fraction() float64 {
	return m.fraction
}

// MatchSkills canonicalizes both sides and matches every job skill against the
// resume skills, exactly or fuzzily. Job skills are de-duplicated ignoring case.
func MatchSkills(canon *skills.Canonicalizer, resumeSkills, jobSkills []string) SkillMatch {
	have := make([]string, 0, len(resumeSkills))
	for _, s := range resumeSkills {
		have = append(have, canon.Canonicalize(s))
	}

	want := dedupeFold(canonicalizeAll(canon, jobSkills))

	out := SkillMatch{Matched: []string{}, Unmatched: []string{}}
	for _, js := range want {
		hit := false
		for _, rs := range have {
			if canon.Match(js, rs) {
				hit = true
				break
			}
		}
		if hit {
			out.Matched = append(out.Matched, js)
		} else {
			out.Unmatched = append(out.Unmatched, js)
		}
	}
	sort.Strings(out.Matched)
	sort.Strings(out.Unmatched)

	if len(want) > 0 {
		out.fraction = float64(len(out.Matched)) / float64(len(want))
		out.ScorePercent = math.RoundToEven(out.fraction*100*100) / 100
	}
	return out
}

// EvaluateCertifications scores the resume certifications against the job's
// list when it has one and against the global list otherwise. It returns the
// score, capped at 1, and the matching certifications lowercased.
func EvaluateCertifications(resumeCerts, jobList, global []string) (float64, []string) {
	if len(resumeCerts) == 0 {
		return 0, []string{}
	}

	reference := jobList
	if len(reference) == 0 {
		reference = global
	}
	if len(reference) == 0 {
		return 0, []string{}
	}

	known := make(map[string]struct{}, len(reference))
	for _, c := range reference {
		known[strings.ToLower(c)] = struct{}{}
	}

	present := []string{}
	for _, c := range resumeCerts {
		low := strings.ToLower(c)
		if _, ok := known[low]; ok {
			present = append(present, low)
		}
	}

	return min(float64(len(present))/float64(len(reference)), 1), present
}

func canonicalizeAll(canon *skills.Canonicalizer, in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, canon.Canonicalize(s))
	}
	return out
}

func dedupeFold(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		key := strings.ToLower(strings.TrimSpace(s))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, s)
	}
	return out
}
