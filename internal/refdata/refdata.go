// Package refdata loads the static reference tables used by the resume and job
// description pipeline: skill synonyms, certifications, action verbs, the job
// dataset and the job description keyword tables.
//
// Tables are loaded once and must be treated as read-only afterwards.
package refdata

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// ErrReferenceDataMissing marks a reference file that could not be found. It is
// never returned from Load; the affected table is left empty and a warning is logged.
var ErrReferenceDataMissing = errors.New("reference data missing")

//go:embed data/*.json
var embedded embed.FS

// Reference file base names. Load looks for .json, .yaml and .yml variants.
const (
	Certifications  = "certifications"
	ActionVerbs     = "action_verbs"
	SynonymSkills   = "synonym_skills"
	SkillsMap       = "skills_map"
	JobDataset      = "job_dataset"
	JDHeadings      = "jd_headings"
	NegationPhrases = "negation_phrases"
	RoleTitles      = "role_titles"
	SoftSkills      = "soft_skills"
	Domains         = "domains"
	Tools           = "tools"
)

var extensions = []string{".json", ".yaml", ".yml"}

// Synonym is one canonical skill with its textual variants.
type Synonym struct {
	Canonical string
	Variants  []string
}

// Variant maps a raw skill spelling to its canonical name.
type Variant struct {
	Raw       string
	Canonical string
}

// Job is one entry of the job dataset.
type Job struct {
	Title           string   `mapstructure:"Title" json:"Title"`
	ExperienceLevel string   `mapstructure:"ExperienceLevel" json:"ExperienceLevel"`
	Skills          []string `mapstructure:"Skills" json:"Skills"`
}

// Headings groups job description heading keywords by requirement strength.
type Headings struct {
	Required  []string `mapstructure:"required"`
	Preferred []string `mapstructure:"preferred"`
	Neutral   []string `mapstructure:"neutral"`
}

// Roles lists role titles and seniority keywords in detection order.
type Roles struct {
	Titles    []string `mapstructure:"titles"`
	Seniority []string `mapstructure:"seniority"`
}

// Data holds every reference table. Slices keep file declaration order.
type Data struct {
	Certifications []string
	ActionVerbs    []string
	Synonyms       []Synonym
	SkillsMap      []Variant
	Jobs           []Job
	Headings       Headings
	Negations      []string
	Roles          Roles
	SoftSkills     []string
	Domains        []string
	Tools          []string
}

// Options configures Load.
type Options struct {
	// Dir overrides the embedded defaults. Files absent from Dir yield empty tables.
	Dir    string
	Logger *zap.Logger
}

// Load reads every reference table. Missing files are logged and skipped, while
// malformed files fail the load.
func Load(opts Options) (*Data, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var fsys fs.FS
	if dir := strings.TrimSpace(opts.Dir); dir != "" {
		fsys = os.DirFS(dir)
		logger = logger.With(zap.String("reference_dir", dir))
	} else {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			return nil, fmt.Errorf("opening embedded reference data: %w", err)
		}
		fsys = sub
	}

	l := &loader{fsys: fsys, logger: logger}
	data := &Data{}

	steps := []struct {
		name   string
		decode func(*yaml.Node) error
	}{
		{Certifications, func(n *yaml.Node) error { return n.Decode(&data.Certifications) }},
		{ActionVerbs, func(n *yaml.Node) error { return n.Decode(&data.ActionVerbs) }},
		{SynonymSkills, func(n *yaml.Node) (err error) { data.Synonyms, err = decodeSynonyms(n); return err }},
		{SkillsMap, func(n *yaml.Node) (err error) { data.SkillsMap, err = decodeVariants(n); return err }},
		{JobDataset, func(n *yaml.Node) error { return decodeVia[[]map[string]any](n, &data.Jobs) }},
		{JDHeadings, func(n *yaml.Node) error { return decodeVia[map[string]any](n, &data.Headings) }},
		{NegationPhrases, func(n *yaml.Node) error { return n.Decode(&data.Negations) }},
		{RoleTitles, func(n *yaml.Node) error { return decodeVia[map[string]any](n, &data.Roles) }},
		{SoftSkills, func(n *yaml.Node) error { return n.Decode(&data.SoftSkills) }},
		{Domains, func(n *yaml.Node) error { return n.Decode(&data.Domains) }},
		{Tools, func(n *yaml.Node) error { return n.Decode(&data.Tools) }},
	}

	for _, step := range steps {
		node, err := l.read(step.name)
		if err != nil {
			return nil, err
		}
		if node == nil {
			continue
		}
		if err := step.decode(node); err != nil {
			return nil, fmt.Errorf("decoding %s: %w", step.name, err)
		}
	}

	logger.Debug("reference data loaded",
		zap.Int("certifications", len(data.Certifications)),
		zap.Int("action_verbs", len(data.ActionVerbs)),
		zap.Int("synonyms", len(data.Synonyms)),
		zap.Int("skill_variants", len(data.SkillsMap)),
		zap.Int("jobs", len(data.Jobs)),
	)

	return data, nil
}

// JobTitles returns the distinct dataset titles in dataset order.
func (d *Data) JobTitles() []string {
	seen := make(map[string]struct{}, len(d.Jobs))
	var titles []string
	for _, job := range d.Jobs {
		if _, ok := seen[job.Title]; ok || job.Title == "" {
			continue
		}
		seen[job.Title] = struct{}{}
		titles = append(titles, job.Title)
	}
	return titles
}

type loader struct {
	fsys   fs.FS
	logger *zap.Logger
}

// read returns the document node of the named table, or nil when no file exists.
func (l *loader) read(name string) (*yaml.Node, error) {
	for _, ext := range extensions {
		file := name + ext
		raw, err := fs.ReadFile(l.fsys, file)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", file, err)
		}

		var doc yaml.Node
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", file, err)
		}
		if doc.Kind == 0 {
			return nil, nil
		}
		if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
			return doc.Content[0], nil
		}
		return &doc, nil
	}

	l.logger.Warn("reference table falls back to empty",
		zap.String("table", name),
		zap.Strings("extensions", extensions),
		zap.Error(ErrReferenceDataMissing),
	)
	return nil, nil
}

func decodeSynonyms(n *yaml.Node) ([]Synonym, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of canonical names to variants at line %d", n.Line)
	}

	out := make([]Synonym, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		var variants []string
		if err := n.Content[i+1].Decode(&variants); err != nil {
			return nil, fmt.Errorf("variants of %q: %w", n.Content[i].Value, err)
		}
		out = append(out, Synonym{Canonical: n.Content[i].Value, Variants: variants})
	}
	return out, nil
}

func decodeVariants(n *yaml.Node) ([]Variant, error) {
	if n.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("expected a mapping of variants to canonical names at line %d", n.Line)
	}

	out := make([]Variant, 0, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		out = append(out, Variant{Raw: n.Content[i].Value, Canonical: n.Content[i+1].Value})
	}
	return out, nil
}

// decodeVia decodes the node into a generic intermediate and then into target.
func decodeVia[T any](n *yaml.Node, target any) error {
	var generic T
	if err := n.Decode(&generic); err != nil {
		return err
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(generic)
}
