package jd

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/spigell/ats-scorer/internal/skills"
)

// isSkillRune lists the characters that continue a skill token, so "c++" does
// not match inside "c++17" and "go" does not match inside "go/rust".
func isSkillRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune(".+#/-", r)
}

func isAlnum(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9'
}

// findBounded locates needle on skill-token boundaries. A trailing period that
// ends a sentence counts as a boundary.
func findBounded(haystack, needle string) [][2]int {
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
		offset = start + 1

		if before, _ := utf8.DecodeLastRuneInString(haystack[:start]); start > 0 && isSkillRune(before) {
			continue
		}
		if end < len(haystack) {
			after, size := utf8.DecodeRuneInString(haystack[end:])
			if after == '.' {
				next, _ := utf8.DecodeRuneInString(haystack[end+size:])
				if end+size < len(haystack) && isAlnum(next) {
					continue
				}
			} else if isSkillRune(after) {
				continue
			}
		}
		spans = append(spans, [2]int{start, end})
	}
	return spans
}

func overlaps(claimed [][2]int, span [2]int) bool {
	for _, c := range claimed {
		if span[0] < c[1] && c[0] < span[1] {
			return true
		}
	}
	return false
}

func containsWord(text, word string) bool {
	return len(skills.FindBounded(text, word, skills.IsWordRune)) > 0
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func lowerSet(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range lowerAll(in) {
		out[s] = struct{}{}
	}
	return out
}

func minInt(values []int) int {
	lowest := values[0]
	for _, v := range values[1:] {
		lowest = min(lowest, v)
	}
	return lowest
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
