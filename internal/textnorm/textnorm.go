// Package textnorm turns extracted document text into a stable, comparable form.
package textnorm

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// BulletChars lists the glyphs treated as list markers in resume text.
const BulletChars = "-•‣◦⁃∙·▸▶→➢*▪●»›"

var defaultSplitter = NewSplitter(BulletChars)

var (
	dashReplacer = strings.NewReplacer(
		"•", "-", "‣", "-", "◦", "-", "⁃", "-", "∙", "-",
		"▸", "-", "▶", "-", "➢", "-", "▪", "-", "●", "-",
		"–", "-", "—", "-", "‒", "-", "―", "-", "−", "-",
		"‐", "-", "‑", "-",
	)
	zeroWidth = strings.NewReplacer(
		"\u200b", "", "\u200c", "", "\u200d", "", "\u2060", "", "\ufeff", "",
	)

	horizontalSpace = regexp.MustCompile(`[ \t\f\v]+`)
	blankRuns       = regexp.MustCompile(`\n{3,}`)
)

// Normalize applies NFC composition, folds bullet and dash variants to an ASCII
// dash, drops zero-width characters, collapses horizontal whitespace, unifies line
// endings and squeezes runs of blank lines down to one.
func Normalize(text string) string {
	if text == "" {
		return ""
	}

	text = norm.NFC.String(text)
	text = zeroWidth.Replace(text)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = dashReplacer.Replace(text)
	text = horizontalSpace.ReplaceAllString(text, " ")

	lines := strings.Split(text, "\n")
	for i, ln := range lines {
		lines[i] = strings.TrimRight(ln, " ")
	}
	text = strings.Join(lines, "\n")
	text = blankRuns.ReplaceAllString(text, "\n\n")

	return strings.TrimSpace(text)
}

// HasLeadingBullet reports whether the line starts with a list marker or numbering.
func HasLeadingBullet(line string) bool {
	return defaultSplitter.HasLeadingBullet(line)
}

// StripBullet removes leading list markers, numbering and separators.
func StripBullet(line string) string {
	return defaultSplitter.StripBullet(line)
}

// Points splits a section into bullet points with the default marker set.
func Points(section string) []string {
	return defaultSplitter.Points(section)
}

// Items splits a section into list items with the default marker set.
func Items(section string) []string {
	return defaultSplitter.Items(section)
}

// Splitter breaks section text into bullet points on a fixed set of marker glyphs.
type Splitter struct {
	chars   string
	leading *regexp.Regexp
	inline  *regexp.Regexp
}

// NewSplitter builds a Splitter for the given marker glyphs. An empty set falls
// back to BulletChars.
func NewSplitter(chars string) *Splitter {
	chars = strings.Join(strings.Fields(chars), "")
	if chars == "" {
		chars = BulletChars
	}

	class := charClass(chars)
	return &Splitter{
		chars:   chars,
		leading: regexp.MustCompile(`^(?:[\s:` + class + `]|\d{1,2}[.)](?:\s|$))+`),
		inline:  regexp.MustCompile(`\s+[` + class + `]\s+`),
	}
}

// Chars returns the marker glyphs.
func (s *Splitter) Chars() string {
	return s.chars
}

// HasLeadingBullet reports whether the line starts with a list marker or numbering.
func (s *Splitter) HasLeadingBullet(line string) bool {
	return s.leading.MatchString(line)
}

// StripBullet removes leading list markers, numbering and separators.
func (s *Splitter) StripBullet(line string) string {
	return strings.TrimSpace(s.leading.ReplaceAllString(line, ""))
}

// Points splits a section into its bullet points. Leading markers are removed and
// a spaced marker splits any line, except between two digits so "2019 - 2021"
// stays whole.
func (s *Splitter) Points(section string) []string {
	return s.split(section, true)
}

// Items is Points for lists whose lines carry their own separators. A spaced
// marker only splits a line that itself started with one, so "Engineer - Acme"
// stays whole.
func (s *Splitter) Items(section string) []string {
	return s.split(section, false)
}

func (s *Splitter) split(section string, anyLine bool) []string {
	if strings.TrimSpace(section) == "" {
		return nil
	}

	var points []string
	for _, ln := range strings.Split(section, "\n") {
		ln = strings.TrimSpace(ln)
		if ln == "" {
			continue
		}

		bulleted := strings.ContainsRune(s.chars, firstRune(ln))
		ln = s.StripBullet(ln)

		parts := []string{ln}
		if anyLine || bulleted {
			parts = s.splitInline(ln)
		}
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				points = append(points, p)
			}
		}
	}

	return points
}

func (s *Splitter) splitInline(line string) []string {
	var (
		parts []string
		last  int
	)
	for _, loc := range s.inline.FindAllStringIndex(line, -1) {
		if digitBefore(line[:loc[0]]) && digitAfter(line[loc[1]:]) {
			continue
		}
		parts = append(parts, line[last:loc[0]])
		last = loc[1]
	}
	return append(parts, line[last:])
}

func digitBefore(s string) bool {
	r, _ := utf8.DecodeLastRuneInString(s)
	return r >= '0' && r <= '9'
}

func digitAfter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return r >= '0' && r <= '9'
}

// charClass escapes ASCII punctuation so the glyphs are literal inside [...].
func charClass(chars string) string {
	var b strings.Builder
	for _, r := range chars {
		if r < utf8.RuneSelf && !isAlnum(r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func isAlnum(r rune) bool {
	return r >= '0' && r <= '9' || r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}

// NonBlankLines returns the trimmed, non-empty lines of text.
func NonBlankLines(text string) []string {
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if s := strings.TrimSpace(ln); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// WordCount counts whitespace separated tokens.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

func firstRune(s string) rune {
	for _, r := range s {
		return r
	}
	return 0
}
