// Package jd parses free-text job descriptions and selects job records from the
// reference dataset.
package jd

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/spigell/ats-scorer/internal/refdata"
	"github.com/spigell/ats-scorer/internal/skills"
	"github.com/spigell/ats-scorer/internal/textnorm"
	"github.com/spigell/ats-scorer/internal/utils"
)

// Requirement strengths.
const (
	Required  = "required"
	Preferred = "preferred"
	Neutral   = "neutral"
)

var (
	headerlessRe  = regexp.MustCompile(`(?i)(experience in|with (skills|experience) in|knowledge of)`)
	lineSplitRe   = regexp.MustCompile(`\n|[-•*]\s+`)
	yearsRe       = regexp.MustCompile(`(?i)(\d{1,2})(\+)?\s*(?:years|yrs)`)
	yearsSpanRe   = regexp.MustCompile(`(?i)(\d{1,2})\s*-\s*(\d{1,2})\s*(?:years|yrs)`)
	certMarkers   = []string{"certified", "foundation"}
	mlRoleMention = "ml engineer"
	mlRoleTitle   = "Machine Learning Engineer"
)

// Bucket partitions the skills found for one requirement strength.
type Bucket struct {
	Tech    []string `json:"tech"`
	Tools   []string `json:"tools"`
	Soft    []string `json:"soft"`
	Certs   []string `json:"certs"`
	Domains []string `json:"domains"`
}

// All returns every skill of the bucket.
func (b Bucket) All() []string {
	out := make([]string, 0, len(b.Tech)+len(b.Tools)+len(b.Soft)+len(b.Certs)+len(b.Domains))
	out = append(out, b.Tech...)
	out = append(out, b.Tools...)
	out = append(out, b.Soft...)
	out = append(out, b.Certs...)
	return append(out, b.Domains...)
}

// Skills holds one bucket per requirement strength.
type Skills struct {
	Required  Bucket `json:"required"`
	Preferred Bucket `json:"preferred"`
	Neutral   Bucket `json:"neutral"`
}

// Experience carries the year requirements found in the text.
type Experience struct {
	OverallMinYears *int           `json:"overall_min_years"`
	BySkill         map[string]int `json:"by_skill"`
}

// Record is a parsed job description.
type Record struct {
	Role       string     `json:"role"`
	Seniority  string     `json:"seniority"`
	Experience Experience `json:"experience"`
	Skills     Skills     `json:"skills"`
}

// Job converts the record into a dataset-shaped job whose skills are the
// required and preferred skills, required first. A record with neither falls
// back to its neutral skills.
func (r *Record) Job() refdata.Job {
	skills := append(r.Skills.Required.All(), r.Skills.Preferred.All()...)
	if len(skills) == 0 {
		skills = r.Skills.Neutral.All()
	}

	seen := map[string]struct{}{}
	var list []string
	for _, s := range skills {
		if _, ok := seen[strings.ToLower(s)]; ok {
			continue
		}
		seen[strings.ToLower(s)] = struct{}{}
		list = append(list, s)
	}
	return refdata.Job{Title: r.Role, ExperienceLevel: r.Seniority, Skills: list}
}

type variant struct {
	needle    string
	canonical string
}

type block struct {
	strength string
	text     string
}

// Parser turns job description text into a Record. It is safe for concurrent use.
type Parser struct {
	variants  []variant
	headings  []strengthKeys
	negations []string
	roles     refdata.Roles
	tools     map[string]struct{}
	soft      map[string]struct{}
	domains   map[string]struct{}
	certs     map[string]struct{}
	title     cases.Caser
	logger    *zap.Logger
}

type strengthKeys struct {
	strength string
	keys     []string
}

// NewParser builds a parser over the reference tables.
func NewParser(data *refdata.Data, canon *skills.Canonicalizer, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if data == nil {
		data = &refdata.Data{}
	}
	if canon == nil {
		canon = skills.NewCanonicalizer(data)
	}

	p := &Parser{
		headings: []strengthKeys{
			{Required, lowerAll(data.Headings.Required)},
			{Preferred, lowerAll(data.Headings.Preferred)},
			{Neutral, lowerAll(data.Headings.Neutral)},
		},
		negations: lowerAll(data.Negations),
		roles:     data.Roles,
		tools:     lowerSet(data.Tools),
		soft:      lowerSet(data.SoftSkills),
		domains:   lowerSet(data.Domains),
		certs:     lowerSet(data.Certifications),
		title:     cases.Title(language.English),
		logger:    logger,
	}

	seen := map[string]struct{}{}
	addVariant := func(raw, canonical string) {
		needle := strings.ToLower(strings.TrimSpace(raw))
		if needle == "" || canonical == "" {
			return
		}
		if _, ok := seen[needle]; ok {
			return
		}
		seen[needle] = struct{}{}
		p.variants = append(p.variants, variant{needle: needle, canonical: canon.Canonicalize(canonical)})
	}
	for _, v := range data.SkillsMap {
		addVariant(v.Raw, v.Canonical)
	}
	for _, syn := range data.Synonyms {
		addVariant(syn.Canonical, syn.Canonical)
		for _, v := range syn.Variants {
			addVariant(v, syn.Canonical)
		}
	}

	// Longest first so "machine learning engineer" wins over "machine learning".
	sort.SliceStable(p.variants, func(i, j int) bool {
		li, lj := len(p.variants[i].needle), len(p.variants[j].needle)
		if li != lj {
			return li > lj
		}
		return p.variants[i].needle < p.variants[j].needle
	})

	return p
}

// Parse extracts role, seniority, graded skills and year requirements.
func (p *Parser) Parse(text string) *Record {
	raw := textnorm.Normalize(text)

	rec := &Record{Experience: Experience{BySkill: map[string]int{}}}
	rec.Role, rec.Seniority = p.detectRole(raw)

	buckets := map[string]*bucketSets{
		Required:  newBucketSets(),
		Preferred: newBucketSets(),
		Neutral:   newBucketSets(),
	}

	var overall []int
	for _, b := range p.sectionize(raw) {
		for _, part := range lineSplitRe.Split(b.text, -1) {
			l := strings.TrimSpace(part)
			if l == "" {
				continue
			}

			strength := b.strength
			if strength == Required && p.negated(l) {
				strength = Preferred
			}

			hits := p.findSkills(l)
			target := buckets[strength]
			years := extractYears(l)
			overall = append(overall, years...)

			for _, hit := range hits {
				target.add(p.classify(hit), hit)
				if len(years) == 0 {
					continue
				}
				lowest := minInt(years)
				if prev, ok := rec.Experience.BySkill[hit]; !ok || lowest < prev {
					rec.Experience.BySkill[hit] = lowest
				}
			}
		}
	}

	if len(overall) > 0 {
		lowest := minInt(overall)
		rec.Experience.OverallMinYears = &lowest
	}

	rec.Skills = Skills{
		Required:  buckets[Required].bucket(),
		Preferred: buckets[Preferred].bucket(),
		Neutral:   buckets[Neutral].bucket(),
	}

	p.logger.Debug("job description parsed",
		zap.String("role", rec.Role),
		zap.String("seniority", rec.Seniority),
		zap.Int("required", len(rec.Skills.Required.All())),
		zap.Int("preferred", len(rec.Skills.Preferred.All())),
		zap.String("preview", utils.TruncateForLog(raw, 80)),
	)

	return rec
}

// sectionize splits text into blocks labeled by the closest preceding heading.
// A heading line opens its block and stays in it, so "Experience in Go" still
// contributes Go. When no heading is found the experience phrasing fallback
// promotes matching blocks to required.
func (p *Parser) sectionize(text string) []block {
	var (
		blocks  []block
		label   string
		current []string
	)
	flush := func() {
		if len(current) == 0 {
			return
		}
		strength := label
		if strength == "" {
			strength = Neutral
		}
		blocks = append(blocks, block{strength: strength, text: strings.TrimSpace(strings.Join(current, "\n"))})
		current = nil
	}

	for _, ln := range strings.Split(text, "\n") {
		if found := p.headingStrength(ln); found != "" {
			flush()
			label = found
		}
		current = append(current, ln)
	}
	flush()

	for _, b := range blocks {
		if b.strength != Neutral {
			return blocks
		}
	}
	for i := range blocks {
		if headerlessRe.MatchString(blocks[i].text) {
			blocks[i].strength = Required
		}
	}
	return blocks
}

func (p *Parser) headingStrength(line string) string {
	low := strings.ToLower(line)
	for _, h := range p.headings {
		for _, k := range h.keys {
			if k != "" && strings.Contains(low, k) {
				return h.strength
			}
		}
	}
	return ""
}

func (p *Parser) negated(line string) bool {
	low := strings.ToLower(line)
	for _, n := range p.negations {
		if n != "" && strings.Contains(low, n) {
			return true
		}
	}
	return false
}

// findSkills matches every variant on word boundaries, longest first; a span
// already claimed by a longer variant is not matched again.
func (p *Parser) findSkills(line string) []string {
	low := strings.ToLower(line)
	var (
		claimed [][2]int
		found   []string
		seen    = map[string]struct{}{}
	)

	for _, v := range p.variants {
		for _, span := range findBounded(low, v.needle) {
			if overlaps(claimed, span) {
				continue
			}
			claimed = append(claimed, span)
			if _, ok := seen[v.canonical]; !ok {
				seen[v.canonical] = struct{}{}
				found = append(found, v.canonical)
			}
		}
	}
	return found
}

const (
	kindTech = iota
	kindTools
	kindSoft
	kindCerts
	kindDomains
)

func (p *Parser) classify(skill string) int {
	low := strings.ToLower(skill)
	if _, ok := p.tools[low]; ok {
		return kindTools
	}
	if _, ok := p.soft[low]; ok {
		return kindSoft
	}
	if _, ok := p.certs[low]; ok {
		return kindCerts
	}
	for _, m := range certMarkers {
		if strings.Contains(low, m) {
			return kindCerts
		}
	}
	if _, ok := p.domains[low]; ok {
		return kindDomains
	}
	return kindTech
}

func (p *Parser) detectRole(text string) (role, seniority string) {
	low := strings.ToLower(text)

	for _, s := range p.roles.Seniority {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" && containsWord(low, s) {
			seniority = p.title.String(s)
			break
		}
	}
	for _, t := range p.roles.Titles {
		if t = strings.ToLower(strings.TrimSpace(t)); t != "" && containsWord(low, t) {
			role = p.title.String(t)
			break
		}
	}
	if role == "" && strings.Contains(low, mlRoleMention) {
		role = mlRoleTitle
	}
	return role, seniority
}

func extractYears(line string) []int {
	var out []int
	for _, m := range yearsRe.FindAllStringSubmatch(line, -1) {
		if n, err := strconv.Atoi(m[1]); err == nil {
			out = append(out, n)
		}
	}
	for _, m := range yearsSpanRe.FindAllStringSubmatch(line, -1) {
		for _, g := range m[1:3] {
			if n, err := strconv.Atoi(g); err == nil {
				out = append(out, n)
			}
		}
	}
	return out
}

type bucketSets struct {
	sets [5]map[string]struct{}
}

func newBucketSets() *bucketSets {
	b := &bucketSets{}
	for i := range b.sets {
		b.sets[i] = map[string]struct{}{}
	}
	return b
}

func (b *bucketSets) add(kind int, skill string) {
	b.sets[kind][skill] = struct{}{}
}

func (b *bucketSets) bucket() Bucket {
	return Bucket{
		Tech:    sortedKeys(b.sets[kindTech]),
		Tools:   sortedKeys(b.sets[kindTools]),
		Soft:    sortedKeys(b.sets[kindSoft]),
		Certs:   sortedKeys(b.sets[kindCerts]),
		Domains: sortedKeys(b.sets[kindDomains]),
	}
}
