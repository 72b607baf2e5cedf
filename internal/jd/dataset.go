package jd

import (
	"errors"
	"strings"
	"unicode"

	"github.com/spigell/ats-scorer/internal/refdata"
)

// ErrNoMatchingJobDescription is returned by Select, together with a synthetic
// record, when no dataset entry matches the query.
var ErrNoMatchingJobDescription = errors.New("no matching job description")

// NormalizeQuery lowercases s and drops everything but ASCII letters and digits.
func NormalizeQuery(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Select returns every job whose normalized title and experience level contain
// the normalized query. Without a match it returns a single synthetic job with
// no skills and ErrNoMatchingJobDescription, so callers always have one job to
// score against.
func Select(jobs []refdata.Job, title, level string) ([]refdata.Job, error) {
	qt, ql := NormalizeQuery(title), NormalizeQuery(level)

	var out []refdata.Job
	for _, job := range jobs {
		if strings.Contains(NormalizeQuery(job.Title), qt) && strings.Contains(NormalizeQuery(job.ExperienceLevel), ql) {
			out = append(out, job)
		}
	}
	if len(out) > 0 {
		return out, nil
	}

	return []refdata.Job{{Title: title, ExperienceLevel: level, Skills: []string{}}}, ErrNoMatchingJobDescription
}
