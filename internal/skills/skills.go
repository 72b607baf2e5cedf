// Package skills maps raw skill spellings to canonical names.
package skills

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/spigell/ats-scorer/internal/refdata"
)

// FuzzyThreshold is the similarity ratio a pair must exceed to count as a fuzzy match.
const FuzzyThreshold = 0.75

// SimilarityFunc scores two strings in [0,1].
type SimilarityFunc func(a, b string) float64

type term struct {
	needle    string
	canonical string
}

// Canonicalizer resolves skill variants with the synonym table, then the skill
// map, where the first entry in declaration order wins. It is safe for concurrent use.
type Canonicalizer struct {
	lookup     map[string]string
	canonicals []string
	terms      []term
	similarity SimilarityFunc
}

// Option customizes a Canonicalizer.
type Option func(*Canonicalizer)

// WithSimilarity replaces the default sequence-matcher ratio.
func WithSimilarity(fn SimilarityFunc) Option {
	return func(c *Canonicalizer) {
		if fn != nil {
			c.similarity = fn
		}
	}
}

// NewCanonicalizer builds the lookup tables from the reference data.
func NewCanonicalizer(data *refdata.Data, opts ...Option) *Canonicalizer {
	c := &Canonicalizer{
		lookup:     make(map[string]string),
		similarity: Ratio,
	}
	for _, opt := range opts {
		opt(c)
	}
	if data == nil {
		return c
	}

	for _, syn := range data.Synonyms {
		c.canonicals = append(c.canonicals, syn.Canonical)
		c.claim(syn.Canonical, syn.Canonical)
		for _, v := range syn.Variants {
			c.claim(v, syn.Canonical)
		}
	}
	for _, v := range data.SkillsMap {
		if v.Canonical == "" {
			continue
		}
		c.claim(v.Raw, v.Canonical)
		c.claim(v.Canonical, v.Canonical)
	}

	// A canonical listed as another entry's variant resolves to that entry.
	for key, target := range c.lookup {
		c.lookup[key] = c.resolve(target)
	}

	for _, syn := range data.Synonyms {
		for _, v := range syn.Variants {
			if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
				c.terms = append(c.terms, term{needle: v, canonical: syn.Canonical})
			}
		}
	}
	for _, v := range data.SkillsMap {
		if raw := strings.ToLower(strings.TrimSpace(v.Raw)); raw != "" && v.Canonical != "" {
			c.terms = append(c.terms, term{needle: raw, canonical: v.Canonical})
		}
	}

	return c
}

func (c *Canonicalizer) claim(variant, canonical string) {
	key := strings.ToLower(strings.TrimSpace(variant))
	if key == "" {
		return
	}
	if _, taken := c.lookup[key]; !taken {
		c.lookup[key] = canonical
	}
}

func (c *Canonicalizer) resolve(name string) string {
	seen := map[string]struct{}{}
	for {
		next, ok := c.lookup[strings.ToLower(name)]
		if !ok || next == name {
			return name
		}
		if _, loop := seen[next]; loop {
			return name
		}
		seen[next] = struct{}{}
		name = next
	}
}

// Canonicalize returns the canonical name for skill, or skill unchanged when
// neither table has an entry for it.
func (c *Canonicalizer) Canonicalize(skill string) string {
	if canonical, ok := c.lookup[strings.ToLower(strings.TrimSpace(skill))]; ok {
		return canonical
	}
	return skill
}

// Canonicals lists the synonym table keys in declaration order.
func (c *Canonicalizer) Canonicals() []string {
	return append([]string(nil), c.canonicals...)
}

// Match reports whether two skills are equal ignoring case or fuzzily similar.
func (c *Canonicalizer) Match(a, b string) bool {
	if strings.EqualFold(a, b) {
		return true
	}
	return c.similarity(strings.ToLower(a), strings.ToLower(b)) > FuzzyThreshold
}

// Extract finds every synonym variant and skill-map spelling in text and returns
// the sorted canonical names.
func (c *Canonicalizer) Extract(text string) []string {
	lower := strings.ToLower(text)
	found := map[string]struct{}{}
	for _, t := range c.terms {
		if len(FindBounded(lower, t.needle, IsWordRune)) > 0 {
			found[c.Canonicalize(t.canonical)] = struct{}{}
		}
	}
	return sortedKeys(found)
}

// Ratio is the longest-matching-blocks similarity of two strings compared rune by rune.
func Ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	m := difflib.NewMatcher(splitRunes(a), splitRunes(b))
	return m.Ratio()
}

// FuzzyMatch reports whether a and b are similar enough ignoring case.
func FuzzyMatch(a, b string) bool {
	return Ratio(strings.ToLower(a), strings.ToLower(b)) > FuzzyThreshold
}

// IsWordRune matches the characters of a word: letters, digits and underscore.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// FindBounded returns the byte offsets of every occurrence of needle in haystack
// not directly preceded or followed by a rune for which inner reports true.
func FindBounded(haystack, needle string, inner func(rune) bool) [][2]int {
	if needle == "" {
		return nil
	}

	var spans [][2]int
	for offset := 0; offset <= len(haystack)-len(needle); {
		idx := strings.Index(haystack[offset:], needle)
		if idx < 0 {
			break
		}
		start := offset + idx
		end := start + len(needle)

		if !inner(lastRune(haystack[:start])) && !inner(firstRune(haystack[end:])) {
			spans = append(spans, [2]int{start, end})
		}
		offset = start + 1
	}
	return spans
}

func splitRunes(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

func firstRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r
}

func lastRune(s string) rune {
	if s == "" {
		return 0
	}
	r, _ := utf8.DecodeLastRuneInString(s)
	return r
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
