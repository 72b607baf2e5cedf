package resume

import (
	"regexp"
	"strings"

	"github.com/spigell/ats-scorer/internal/textnorm"
)

const months = `(?:Jan(?:uary)?|Feb(?:ruary)?|Mar(?:ch)?|Apr(?:il)?|May|Jun(?:e)?|Jul(?:y)?|Aug(?:ust)?|Sep(?:t(?:ember)?)?|Oct(?:ober)?|Nov(?:ember)?|Dec(?:ember)?)`

var (
	dateRangeRe = regexp.MustCompile(`(?i)(?P<start>(?:` + months + `\s*\d{4}|\d{4}))\s*(?:-|–|—|to|until)\s*(?P<end>(?:Present|Current|Now|` + months + `\s*\d{4}|\d{4}))`)
	yearRangeRe = regexp.MustCompile(`(?i)(?P<start>\d{4})\s*[-–—]\s*(?P<end>\d{4}|Present|Current)`)
	headerSepRe = regexp.MustCompile(`—|-|@|\|`)
)

// maxHeaderWords bounds how long an undated line may be and still open an entry.
const maxHeaderWords = 8

// DateRange is one period found in the experience text.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
	Raw   string `json:"raw"`
}

// Entry groups one position: its header line, dates and detail lines.
type Entry struct {
	Header           string `json:"header"`
	Start            string `json:"start"`
	End              string `json:"end"`
	Details          string `json:"details"`
	TitleCompanyHint string `json:"title_company_hint"`
}

// Timeline returns month-year and year ranges in order of appearance,
// de-duplicated by their raw text.
func Timeline(text string) []DateRange {
	if text == "" {
		return nil
	}

	var out []DateRange
	seen := make(map[string]struct{})
	for _, re := range []*regexp.Regexp{dateRangeRe, yearRangeRe} {
		for _, m := range re.FindAllStringSubmatch(text, -1) {
			raw := m[0]
			if _, ok := seen[raw]; ok {
				continue
			}
			seen[raw] = struct{}{}
			out = append(out, DateRange{
				Start: m[re.SubexpIndex("start")],
				End:   m[re.SubexpIndex("end")],
				Raw:   raw,
			})
		}
	}
	return out
}

// Entries groups experience lines into positions. A dated line opens an entry,
// as does a short undated line shaped like "Title - Company".
func Entries(text string) []Entry {
	if text == "" {
		return nil
	}

	points := textnorm.Items(text)
	if len(points) == 0 {
		points = textnorm.NonBlankLines(text)
	}

	var (
		entries []Entry
		cur     *Entry
		details []string
	)
	flush := func() {
		if cur == nil {
			return
		}
		cur.Details = strings.TrimSpace(strings.Join(details, "\n"))
		entries = append(entries, *cur)
		cur, details = nil, nil
	}

	for _, ln := range points {
		if start, end, pos, ok := findRange(ln); ok {
			flush()
			cur = &Entry{
				Header:           ln,
				Start:            start,
				End:              end,
				TitleCompanyHint: strings.TrimSpace(ln[:pos]),
			}
			continue
		}

		if headerSepRe.MatchString(ln) && len(strings.Fields(ln)) <= maxHeaderWords {
			flush()
			cur = &Entry{Header: ln, TitleCompanyHint: ln}
			continue
		}

		if cur == nil {
			cur = &Entry{}
		}
		details = append(details, ln)
	}
	flush()

	return entries
}

func findRange(s string) (start, end string, pos int, ok bool) {
	for _, re := range []*regexp.Regexp{dateRangeRe, yearRangeRe} {
		m := re.FindStringSubmatchIndex(s)
		if m == nil {
			continue
		}
		si, ei := 2*re.SubexpIndex("start"), 2*re.SubexpIndex("end")
		return s[m[si]:m[si+1]], s[m[ei]:m[ei+1]], m[0], true
	}
	return "", "", 0, false
}
