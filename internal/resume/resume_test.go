package resume

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/ats-scorer/internal/ingest"
	"github.com/spigell/ats-scorer/internal/refdata"
	"github.com/spigell/ats-scorer/internal/skills"
)

const sampleResume = `Jane Doe
+1 555 123 4567
jane@example.com
Summary: Backend engineer
Technical Skills
Python, Docker
Work Experience
Backend Developer - Acme 2019 - 2021
- Built a payments API in Go
- Mentored two interns
Education
B.Sc. Computer Science`

func testParser(logger *zap.Logger) *Parser {
	data := &refdata.Data{
		Synonyms: []refdata.Synonym{
			{Canonical: "Python", Variants: []string{"python"}},
			{Canonical: "Docker", Variants: []string{"docker"}},
			{Canonical: "Go", Variants: []string{"golang"}},
		},
	}
	return NewParser(skills.NewCanonicalizer(data), []string{"AWS Certified Solutions Architect"}, logger)
}

func TestSegment(t *testing.T) {
	t.Parallel()

	s := Segment(sampleResume)

	assert.Equal(t, []string{Preamble, Summary, Skills, Experience, Education}, s.Names())
	assert.Equal(t, "Jane Doe\n+1 555 123 4567\njane@example.com", s.Text(Preamble))
	assert.Equal(t, "Backend engineer", s.Text(Summary))
	assert.Equal(t, "Python, Docker", s.Text(Skills))
	assert.Equal(t, "Backend Developer - Acme 2019 - 2021\n- Built a payments API in Go\n- Mentored two interns", s.Text(Experience))
	assert.Equal(t, "B.Sc. Computer Science", s.Text(Education))
}

func TestSegmentHeadingPriority(t *testing.T) {
	t.Parallel()

	// "skills" is tested before "projects", so the compound heading opens skills.
	s := Segment("Projects and Skills - Go")
	assert.Equal(t, []string{Skills}, s.Names())
	assert.Equal(t, "Go", s.Text(Skills))
}

func TestReassignProjectsMovesExperienceLines(t *testing.T) {
	t.Parallel()

	s := Segment(sampleResume)
	s.ReassignProjects()

	assert.Equal(t, "- Built a payments API in Go", s.Text(Projects))
	assert.Equal(t, "Backend Developer - Acme 2019 - 2021\n- Mentored two interns", s.Text(Experience))
	assertDisjoint(t, s)
}

func TestReassignProjectsAppendsAfterExistingProjects(t *testing.T) {
	t.Parallel()

	s := Segment("Projects\nChess engine\nExperience\nDeployed Docker images to AWS\nCashier")
	s.ReassignProjects()

	assert.Equal(t, "Chess engine\nDeployed Docker images to AWS", s.Text(Projects))
	assert.Equal(t, "Cashier", s.Text(Experience))
}

func TestReassignProjectsPreambleFallback(t *testing.T) {
	t.Parallel()

	s := Segment("Jane Doe\nDeveloped a chess engine in Python with 90% win rate\nExperience\nBarista at Cafe")
	s.ReassignProjects()

	assert.Equal(t, "Developed a chess engine in Python with 90% win rate", s.Text(Projects))
	assert.Equal(t, "Jane Doe", s.Text(Preamble))
	assert.Equal(t, "Barista at Cafe", s.Text(Experience))
}

func TestReassignProjectsLongestRunFallback(t *testing.T) {
	t.Parallel()

	s := Segment("Education\n- B.Tech 2020\n- Trained a CNN model on 10k images\nHobbies chess")
	s.ReassignProjects()

	assert.Equal(t, "- B.Tech 2020\n- Trained a CNN model on 10k images", s.Text(Projects))
	assert.Equal(t, "Hobbies chess", s.Text(Education))
}

func TestReassignProjectsIgnoresRunsWithoutProjectLines(t *testing.T) {
	t.Parallel()

	s := Segment("Interests\n- chess\n- hiking")
	s.ReassignProjects()

	assert.Empty(t, s.Text(Projects))
	assert.Equal(t, "Interests\n- chess\n- hiking", s.Text(Preamble))
}

func assertDisjoint(t *testing.T, s *Sections) {
	t.Helper()

	exp := map[string]struct{}{}
	for _, ln := range strings.Split(s.Text(Experience), "\n") {
		exp[ln] = struct{}{}
	}
	for _, ln := range strings.Split(s.Text(Projects), "\n") {
		if _, dup := exp[ln]; dup && ln != "" {
			t.Fatalf("line %q present in experience and projects", ln)
		}
	}
}

func TestIsProjectLike(t *testing.T) {
	t.Parallel()

	tests := map[string]bool{
		"Led the final year project":    true,
		"Deployed service to AWS":       true,
		"Reduced costs by 20%":          true,
		"Python 3 scripts":              true,
		"see github.com/jane":           true,
		"Managed a team of cooks":       false,
		"Modeling clay for fun":         false,
		"Backend Developer - Acme 2019": false,
	}

	for line, expect := range tests {
		assert.Equal(t, expect, IsProjectLike(line), "line %q", line)
	}
}

func TestExtractContact(t *testing.T) {
	t.Parallel()

	text := "JOHN SMITH\nSoftware Developer\n+1 (555) 123-4567 | john.smith@mail.com\nlinkedin.com/in/john-smith | github.com/jsmith | jsmith.dev"

	assert.Equal(t, Contact{
		Name:      "JOHN SMITH",
		Email:     "john.smith@mail.com",
		Phone:     "+1 (555) 123-4567",
		LinkedIn:  "linkedin.com/in/john-smith",
		GitHub:    "github.com/jsmith",
		Portfolio: "jsmith.dev",
	}, ExtractContact(text))

	assert.Empty(t, ExtractContact("Curriculum Vitae\nJane").Name)
	assert.Empty(t, ExtractContact("Jane Doe 2024").Name)
	assert.Empty(t, ExtractContact("Senior Staff Software Engineer Lead").Name)
}

func TestTimeline(t *testing.T) {
	t.Parallel()

	text := "Acme Corp Jan 2020 - Present\nBeta 2016 to 2019\nGamma Sept 2014 – Dec 2015"

	assert.Equal(t, []DateRange{
		{Start: "Jan 2020", End: "Present", Raw: "Jan 2020 - Present"},
		{Start: "2016", End: "2019", Raw: "2016 to 2019"},
		{Start: "Sept 2014", End: "Dec 2015", Raw: "Sept 2014 – Dec 2015"},
		{Start: "2020", End: "Present", Raw: "2020 - Present"},
	}, Timeline(text))

	assert.Empty(t, Timeline(""))
}

func TestEntries(t *testing.T) {
	t.Parallel()

	text := "Backend Developer | Acme\n- Built APIs\nFreelance work\n2015 - 2017 Intern at Beta\n- Fixed bugs"

	assert.Equal(t, []Entry{
		{
			Header:           "Backend Developer | Acme",
			Details:          "Built APIs\nFreelance work",
			TitleCompanyHint: "Backend Developer | Acme",
		},
		{
			Header:  "2015 - 2017 Intern at Beta",
			Start:   "2015",
			End:     "2017",
			Details: "Fixed bugs",
		},
	}, Entries(text))

	assert.Equal(t, []Entry{{Details: "Did things\nMore things"}}, Entries("Did things\nMore things"))
	assert.Empty(t, Entries(""))
}

func TestExperienceYears(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 5, ExperienceYears("5+ years of Go, 3 years Python, 10 yrs Java"))
	assert.Equal(t, 12, ExperienceYears("over 12 Year of work"))
	assert.Zero(t, ExperienceYears("no durations here"))
}

func TestEducationAndCertifications(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []string{"B.Sc. Computer Science", "M.Sc. Data"}, EducationPoints("- B.Sc. Computer Science\n- M.Sc. Data"))
	assert.Nil(t, EducationPoints("  "))

	known := []string{"AWS Certified Solutions Architect", "Certified ScrumMaster"}
	got := CertificationPoints("- aws certified solutions architect, 2022\n- Certified ScrumMaster\n- Udemy Go course", known)
	assert.Equal(t, []string{"AWS Certified Solutions Architect", "Certified ScrumMaster", "Udemy Go course"}, got)
}

func TestParse(t *testing.T) {
	t.Parallel()

	rec := testParser(nil).Parse(&ingest.RawDocument{Text: sampleResume, PageCount: 1})

	assert.Equal(t, "Jane Doe", rec.Contact.Name)
	assert.Equal(t, "+1 555 123 4567", rec.Contact.Phone)
	assert.Equal(t, "jane@example.com", rec.Contact.Email)
	assert.Equal(t, []string{"Docker", "Python"}, rec.Skills)
	assert.Equal(t, "- Built a payments API in Go", rec.ProjectsText)
	assert.Equal(t, "Backend Developer - Acme 2019 - 2021\n- Mentored two interns", rec.ExperienceText)
	assert.Equal(t, "Backend engineer", rec.Summary)
	assert.Equal(t, []string{"B.Sc. Computer Science"}, rec.Education)
	assert.Equal(t, []DateRange{{Start: "2019", End: "2021", Raw: "2019 - 2021"}}, rec.Timeline)

	require.Len(t, rec.Entries, 1)
	assert.Equal(t, "Backend Developer - Acme", rec.Entries[0].TitleCompanyHint)
	assert.Equal(t, "Built a payments API in Go\nMentored two interns", rec.Entries[0].Details)

	assert.Equal(t, rec.ProjectsText, rec.Sections[Projects])
	assert.Equal(t, 1, rec.PageCount)
	assert.Equal(t, ingest.Layout{NumColumnsEst: 1}, rec.Layout)
	assert.Empty(t, rec.Warnings)
}

func TestParseWarnings(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.WarnLevel)
	p := testParser(zap.New(core))

	images := make([]ingest.Image, 7)
	rec := p.Parse(&ingest.RawDocument{Text: "Jane Doe", Images: images})
	assert.Equal(t, []string{WarnManyImages, WarnScannedImage}, rec.Warnings)

	rec = p.Parse(&ingest.RawDocument{})
	assert.Equal(t, []string{WarnNoTextExtract}, rec.Warnings)
	assert.Empty(t, rec.Skills)

	assert.Equal(t, 2, logs.FilterMessage("resume extraction degraded").Len())
}
