package resume

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/spigell/ats-scorer/internal/textnorm"
)

var yearsRe = regexp.MustCompile(`(\d+)\+?\s*years?`)

// ExperienceYears returns the largest "N years" mention, or 0.
func ExperienceYears(text string) int {
	best := 0
	for _, m := range yearsRe.FindAllStringSubmatch(strings.ToLower(text), -1) {
		if n, err := strconv.Atoi(m[1]); err == nil && n > best {
			best = n
		}
	}
	return best
}

// EducationPoints splits the education section into points. A section without
// recognizable points is returned whole.
func EducationPoints(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if pts := textnorm.Items(text); len(pts) > 0 {
		return pts
	}
	return []string{text}
}

// CertificationPoints resolves each certification point against the known list.
// A point containing, or contained in, a known certification is replaced by it.
func CertificationPoints(text string, known []string) []string {
	points := textnorm.Items(text)
	if len(points) == 0 {
		return nil
	}

	out := make([]string, 0, len(points))
	for _, p := range points {
		out = append(out, matchCertification(p, known))
	}
	return out
}

func matchCertification(point string, known []string) string {
	lower := strings.ToLower(point)
	for _, c := range known {
		lc := strings.ToLower(strings.TrimSpace(c))
		if lc == "" {
			continue
		}
		if strings.Contains(lower, lc) || strings.Contains(lc, lower) {
			return c
		}
	}
	return point
}
