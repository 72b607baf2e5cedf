package features

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	wordToken    = regexp.MustCompile(`\b\w+\b`)
	yearOnly     = regexp.MustCompile(`^\d{4}$`)
	dateLike     = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}$`)
	digitsOnly   = regexp.MustCompile(`^\d+$`)
	yearMention  = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
	bulletWord   = regexp.MustCompile(`[➢•\-*]\s+\w+`)
	pointDivider = regexp.MustCompile(`➢|[\n•\-*]`)

	seniorityKeywords = []string{"senior", "lead", "manager", "principal", "sr.", "staff"}
	leadershipVerbs   = regexp.MustCompile(`\b(?:lead|led|manage|managed|mentor|mentored|supervise|supervised|coach|coached)\b`)
	headerPatterns    = compileHeaders("project", "projects", "achievement", "achievements", "skill", "skills", "education")

	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	phoneRe    = regexp.MustCompile(`\+?\d[\d\s\-\(\)]{7,}\d`)
	linkedinRe = regexp.MustCompile(`(?i)linkedin\.com/in/[A-Za-z0-9\-_]+`)
	githubRe   = regexp.MustCompile(`(?i)github\.com/[A-Za-z0-9\-_]+`)
)

// DefaultRecencyWindow is the number of years a project stays recent.
const DefaultRecencyWindow = 2

func compileHeaders(names ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(names))
	for _, n := range names {
		out = append(out, regexp.MustCompile(`(?im)^\s*`+regexp.QuoteMeta(n)+`\b[:\-]?`))
	}
	return out
}

// Repetition is a word seen more than once.
type Repetition struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// RepeatedWords counts lowercased words occurring more than once, in order of
// first occurrence. Numbers, four-digit years and dates are ignored. When only
// is non-empty, words outside it are ignored too.
func RepeatedWords(text string, only []string) []Repetition {
	var allowed map[string]struct{}
	if len(only) > 0 {
		allowed = make(map[string]struct{}, len(only))
		for _, w := range only {
			allowed[strings.ToLower(w)] = struct{}{}
		}
	}

	counts := map[string]int{}
	var order []string
	for _, w := range wordToken.FindAllString(text, -1) {
		w = strings.ToLower(w)
		if yearOnly.MatchString(w) || dateLike.MatchString(w) || digitsOnly.MatchString(w) {
			continue
		}
		if allowed != nil {
			if _, ok := allowed[w]; !ok {
				continue
			}
		}
		if counts[w] == 0 {
			order = append(order, w)
		}
		counts[w]++
	}

	var out []Repetition
	for _, w := range order {
		if counts[w] > 1 {
			out = append(out, Repetition{Word: w, Count: counts[w]})
		}
	}
	return out
}

// RepetitionRatio is the summed excess count of reps over the number of words.
func RepetitionRatio(reps []Repetition, words int) float64 {
	if words == 0 {
		return 0
	}
	excess := 0
	for _, r := range reps {
		excess += r.Count - 1
	}
	return float64(excess) / float64(words)
}

// LengthScore rewards resumes between 300 and 700 words.
func LengthScore(words int) float64 {
	n := float64(words)
	switch {
	case words <= 300:
		return 0.6 + 0.4*n/300
	case words >= 700:
		return max(0, 1-(n-700)/300)
	default:
		return 1
	}
}

// Recency scores the most recent year mentioned in the points against now. A
// year within window of now decays from 1 to no less than 0.5.
func Recency(points []string, now time.Time, window int) float64 {
	latest := 0
	for _, p := range points {
		for _, m := range yearMention.FindAllString(p, -1) {
			if year, err := strconv.Atoi(m); err == nil {
				latest = max(latest, year)
			}
		}
	}
	if latest == 0 {
		return 0
	}

	delta := now.Year() - latest
	switch {
	case delta <= 0:
		return 1
	case delta <= window:
		return max(0.5, 1-float64(delta)/float64(2*window))
	default:
		return 0
	}
}

// Seniority rewards leadership verbs when the job title asks for seniority.
// Distinct verbs are counted: two or more give 1, one gives 0.5.
func Seniority(jobTitle, text string) float64 {
	title := strings.ToLower(jobTitle)
	senior := false
	for _, k := range seniorityKeywords {
		if strings.Contains(title, k) {
			senior = true
			break
		}
	}
	if !senior {
		return 0
	}

	seen := map[string]struct{}{}
	for _, m := range leadershipVerbs.FindAllString(strings.ToLower(text), -1) {
		seen[m] = struct{}{}
	}
	switch {
	case len(seen) >= 2:
		return 1
	case len(seen) == 1:
		return 0.5
	default:
		return 0
	}
}

// Formatting checks bulleted project lines, standalone section headers in the
// whole text and the number of project points. The result is capped at 1.
func Formatting(projectText, text string) float64 {
	score := 0.0
	if bulletWord.MatchString(projectText) {
		score += 0.4
	}

	headers := 0
	for _, re := range headerPatterns {
		if re.MatchString(text) {
			headers++
		}
	}
	if headers >= 2 {
		score += 0.06
	}

	points := 0
	for _, p := range pointDivider.Split(projectText, -1) {
		if strings.TrimSpace(p) != "" {
			points++
		}
	}
	if points >= 3 {
		score += 0.2
	}
	return min(1, score)
}

// ContactPresence flags the contact channels found in a text.
type ContactPresence struct {
	Email    bool `json:"email"`
	Phone    bool `json:"phone"`
	LinkedIn bool `json:"linkedin"`
	GitHub   bool `json:"github"`
}

// DetectContacts looks for each contact channel anywhere in text.
func DetectContacts(text string) ContactPresence {
	return ContactPresence{
		Email:    emailRe.MatchString(text),
		Phone:    phoneRe.MatchString(text),
		LinkedIn: linkedinRe.MatchString(text),
		GitHub:   githubRe.MatchString(text),
	}
}

// Score is the fraction of channels present.
func (c ContactPresence) Score() float64 {
	n := 0
	for _, ok := range []bool{c.Email, c.Phone, c.LinkedIn, c.GitHub} {
		if ok {
			n++
		}
	}
	return float64(n) / 4
}
