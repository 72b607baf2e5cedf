// Package resume turns extracted document text into a structured resume record.
package resume

import (
	"strings"

	"go.uber.org/zap"

	"github.com/spigell/ats-scorer/internal/ingest"
	"github.com/spigell/ats-scorer/internal/skills"
	"github.com/spigell/ats-scorer/internal/textnorm"
)

// Warning tags recorded on a Record.
const (
	WarnManyImages    = "resume_contains_many_images"
	WarnScannedImage  = "low_extracted_text_might_be_scanned_image"
	WarnNoTextExtract = "no_text_extracted"
)

const (
	manyImages   = 6
	lowWordCount = 60
)

// Record is the structured view of one resume. It is read-only once built.
type Record struct {
	Contact         Contact           `json:"contact"`
	Sections        map[string]string `json:"sections"`
	Skills          []string          `json:"skills"`
	Education       []string          `json:"education"`
	Certifications  []string          `json:"certifications"`
	ExperienceText  string            `json:"experience"`
	ProjectsText    string            `json:"projects"`
	Summary         string            `json:"summary"`
	Achievements    []string          `json:"achievements"`
	YearsExperience int               `json:"years_experience"`
	Timeline        []DateRange       `json:"experience_timeline"`
	Entries         []Entry           `json:"experience_entries"`
	Layout          ingest.Layout     `json:"layout"`
	PageCount       int               `json:"page_count"`
	Images          []ingest.Image    `json:"graphics"`
	RawText         string            `json:"raw_text"`
	Warnings        []string          `json:"warnings"`
}

// AchievementsText joins the achievement points one per line.
func (r *Record) AchievementsText() string {
	return strings.Join(r.Achievements, "\n")
}

// ProjectsAndAchievements is the text most feature extractors read.
func (r *Record) ProjectsAndAchievements() string {
	return r.ProjectsText + "\n" + r.AchievementsText()
}

// Parser builds records from raw documents.
type Parser struct {
	canon          *skills.Canonicalizer
	certifications []string
	logger         *zap.Logger
}

// NewParser constructs a Parser. certifications is the known certification list.
func NewParser(canon *skills.Canonicalizer, certifications []string, logger *zap.Logger) *Parser {
	if logger == nil {
		logger = zap.NewNop()
	}
	if canon == nil {
		canon = skills.NewCanonicalizer(nil)
	}
	return &Parser{canon: canon, certifications: certifications, logger: logger}
}

// Parse segments the document and extracts every entity.
func (p *Parser) Parse(doc *ingest.RawDocument) *Record {
	if doc == nil {
		doc = &ingest.RawDocument{}
	}

	text := textnorm.Normalize(doc.Text)
	sections := Segment(text)
	experience := sections.Text(Experience)
	sections.ReassignProjects()

	rec := &Record{
		Sections:       sections.Map(),
		ExperienceText: sections.Text(Experience),
		ProjectsText:   sections.Text(Projects),
		Summary:        sections.Text(Summary),
		Achievements:   textnorm.Items(sections.Text(Achievements)),
		Education:      EducationPoints(sections.Text(Education)),
		Certifications: CertificationPoints(sections.Text(Certifications), p.certifications),
		Contact:        ExtractContact(text),
		Layout:         ingest.DetectLayout(doc.Blocks),
		PageCount:      doc.PageCount,
		Images:         doc.Images,
		RawText:        text,
	}

	skillSource := sections.Text(Skills)
	if skillSource == "" {
		skillSource = text
	}
	rec.Skills = p.canon.Extract(skillSource)

	experienceSource := experience
	if experienceSource == "" {
		experienceSource = text
	}
	rec.YearsExperience = ExperienceYears(experienceSource)
	rec.Timeline = Timeline(experienceSource)
	rec.Entries = Entries(experience)

	rec.Warnings = warnings(text, doc.Images)
	if len(rec.Warnings) > 0 {
		p.logger.Warn("resume extraction degraded", zap.Strings("warnings", rec.Warnings))
	}

	p.logger.Debug("resume parsed",
		zap.Strings("sections", sections.Names()),
		zap.Int("skills", len(rec.Skills)),
		zap.Int("entries", len(rec.Entries)),
	)

	return rec
}

func warnings(text string, images []ingest.Image) []string {
	var out []string
	if len(images) > manyImages {
		out = append(out, WarnManyImages)
	}
	if textnorm.WordCount(text) < lowWordCount && len(images) > 0 {
		out = append(out, WarnScannedImage)
	}
	if text == "" {
		out = append(out, WarnNoTextExtract)
	}
	return out
}
