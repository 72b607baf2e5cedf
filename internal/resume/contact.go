package resume

import (
	"regexp"
	"strings"

	"github.com/spigell/ats-scorer/internal/textnorm"
)

// headerLines is how many leading lines are searched before the whole text.
const headerLines = 12

// Contact is the candidate's contact block. Absent fields are empty.
type Contact struct {
	Name      string `json:"name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	LinkedIn  string `json:"linkedin,omitempty"`
	GitHub    string `json:"github,omitempty"`
	Portfolio string `json:"portfolio,omitempty"`
}

var (
	emailRe     = regexp.MustCompile(`[\w\.-]+@[\w\.-]+\.\w+`)
	phoneRe     = regexp.MustCompile(`\+?\d[\d\s\-\(\)]{7,}\d`)
	linkedinRe  = regexp.MustCompile(`(?i)linkedin\.com/in/[A-Za-z0-9\-_]+`)
	githubRe    = regexp.MustCompile(`(?i)github\.com/[A-Za-z0-9\-_]+`)
	portfolioRe = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?[A-Za-z0-9\-]+\.(?:dev|me|io|tech)\b`)
	digitRe     = regexp.MustCompile(`\d`)
	notANameRe  = regexp.MustCompile(`(?i)resume|curriculum|cv`)
)

// ExtractContact finds contact details, preferring matches in the header lines.
func ExtractContact(text string) Contact {
	lines := textnorm.NonBlankLines(text)
	header := text
	if len(lines) > 0 {
		header = strings.Join(lines[:min(len(lines), headerLines)], "\n")
	}

	find := func(re *regexp.Regexp) string {
		if m := re.FindString(header); m != "" {
			return strings.TrimSpace(m)
		}
		return strings.TrimSpace(re.FindString(text))
	}

	c := Contact{
		Email:     find(emailRe),
		Phone:     find(phoneRe),
		LinkedIn:  find(linkedinRe),
		GitHub:    find(githubRe),
		Portfolio: find(portfolioRe),
	}

	if len(lines) > 0 {
		candidate := lines[0]
		if len(strings.Fields(candidate)) <= 4 && !digitRe.MatchString(candidate) && !notANameRe.MatchString(candidate) {
			c.Name = candidate
		}
	}

	return c
}
