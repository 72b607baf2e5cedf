package jd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/ats-scorer/internal/refdata"
)

func testData() *refdata.Data {
	return &refdata.Data{
		Synonyms: []refdata.Synonym{
			{Canonical: "Python", Variants: []string{"python", "py"}},
		},
		SkillsMap: []refdata.Variant{
			{Raw: "python", Canonical: "Python"},
			{Raw: "sql", Canonical: "SQL"},
			{Raw: "docker", Canonical: "Docker"},
			{Raw: "git", Canonical: "Git"},
			{Raw: "kubernetes", Canonical: "Kubernetes"},
			{Raw: "node.js", Canonical: "Node.js"},
			{Raw: "machine learning", Canonical: "Machine Learning"},
			{Raw: "learning", Canonical: "Learning"},
			{Raw: "communication", Canonical: "Communication"},
			{Raw: "fintech", Canonical: "Fintech"},
			{Raw: "aws certified solutions architect", Canonical: "AWS Certified Solutions Architect"},
		},
		Headings: refdata.Headings{
			Required:  []string{"requirements", "must have", "qualifications", "experience in", "skills in"},
			Preferred: []string{"preferred", "nice to have", "bonus", "good to have"},
			Neutral:   []string{"responsibilities", "what you'll do", "about", "benefits"},
		},
		Negations: []string{"not required", "no need", "optional", "nice to have"},
		Roles: refdata.Roles{
			Titles:    []string{"software engineer", "backend engineer", "data scientist"},
			Seniority: []string{"junior", "mid", "senior", "lead", "principal", "staff"},
		},
		Tools:          []string{"docker", "git", "kubernetes"},
		SoftSkills:     []string{"Communication"},
		Domains:        []string{"Fintech"},
		Certifications: []string{"AWS Certified Solutions Architect"},
	}
}

const sampleJD = `Senior Backend Engineer
About the team
We build payments for fintech customers.
Requirements:
- 5+ years of experience with Python and SQL
- Strong communication skills
- Kubernetes is not required
Nice to have:
- AWS Certified Solutions Architect
- Node.js`

func TestParse(t *testing.T) {
	t.Parallel()

	rec := NewParser(testData(), nil, nil).Parse(sampleJD)

	assert.Equal(t, "Backend Engineer", rec.Role)
	assert.Equal(t, "Senior", rec.Seniority)

	assert.Equal(t, []string{"Python", "SQL"}, rec.Skills.Required.Tech)
	assert.Equal(t, []string{"Communication"}, rec.Skills.Required.Soft)
	assert.Empty(t, rec.Skills.Required.Tools)

	assert.Equal(t, []string{"Node.js"}, rec.Skills.Preferred.Tech)
	assert.Equal(t, []string{"Kubernetes"}, rec.Skills.Preferred.Tools)
	assert.Equal(t, []string{"AWS Certified Solutions Architect"}, rec.Skills.Preferred.Certs)

	assert.Equal(t, []string{"Fintech"}, rec.Skills.Neutral.Domains)

	require.NotNil(t, rec.Experience.OverallMinYears)
	assert.Equal(t, 5, *rec.Experience.OverallMinYears)
	assert.Equal(t, map[string]int{"Python": 5, "SQL": 5}, rec.Experience.BySkill)
}

func TestParseYearsForEverySkillKind(t *testing.T) {
	t.Parallel()

	rec := NewParser(testData(), nil, nil).Parse("Requirements:\n- 3 years of communication in fintech using Docker\n- 2 yrs of Python")

	assert.Equal(t, map[string]int{"Communication": 3, "Fintech": 3, "Docker": 3, "Python": 2}, rec.Experience.BySkill)
}

func TestParseHeaderlessFallback(t *testing.T) {
	t.Parallel()

	rec := NewParser(testData(), nil, nil).Parse("Looking for knowledge of Docker.\nGreat office.")

	assert.Equal(t, []string{"Docker"}, rec.Skills.Required.Tools)
	assert.Empty(t, rec.Skills.Neutral.Tools)
	assert.Nil(t, rec.Experience.OverallMinYears)
	assert.Empty(t, rec.Role)
	assert.Empty(t, rec.Seniority)
}

func TestParseHeadingLineKeepsItsSkills(t *testing.T) {
	t.Parallel()

	rec := NewParser(testData(), nil, nil).Parse("Experience in Git and Docker")
	assert.Equal(t, []string{"Docker", "Git"}, rec.Skills.Required.Tools)
}

func TestFindSkillsLongestFirst(t *testing.T) {
	t.Parallel()

	p := NewParser(testData(), nil, nil)

	assert.Equal(t, []string{"Machine Learning"}, p.findSkills("machine learning pipelines"))
	assert.Equal(t, []string{"Learning", "Python"}, p.findSkills("Continuous learning, python"))
	assert.Empty(t, p.findSkills("pythonic gitops"))
	assert.Empty(t, p.findSkills("see docker.io"))
}

func TestDetectRoleFallback(t *testing.T) {
	t.Parallel()

	p := NewParser(testData(), nil, nil)
	role, seniority := p.detectRole("hiring an ml engineer (junior)")

	assert.Equal(t, "Machine Learning Engineer", role)
	assert.Equal(t, "Junior", seniority)
}

func TestExtractYears(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []int{5, 3, 5}, extractYears("3-5 years of Go"))
	assert.Equal(t, []int{2}, extractYears("2 yrs minimum"))
	assert.Empty(t, extractYears("many years"))
}

func TestRecordJob(t *testing.T) {
	t.Parallel()

	rec := NewParser(testData(), nil, nil).Parse(sampleJD)
	job := rec.Job()

	assert.Equal(t, "Backend Engineer", job.Title)
	assert.Equal(t, "Senior", job.ExperienceLevel)
	assert.Equal(t, []string{"Python", "SQL", "Communication", "Node.js", "Kubernetes", "AWS Certified Solutions Architect"}, job.Skills)
}

func TestNormalizeQuery(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "seniorengineerii", NormalizeQuery("Senior  Engineer-II!"))
	assert.Equal(t, "", NormalizeQuery("--"))
}

func TestSelect(t *testing.T) {
	t.Parallel()

	jobs := []refdata.Job{
		{Title: "Software Developer - Entry Level", ExperienceLevel: "Fresher"},
		{Title: "Senior Software Engineer", ExperienceLevel: "Senior"},
		{Title: "Software Engineer", ExperienceLevel: "Mid Level"},
	}

	got, err := Select(jobs, "software", "")
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = Select(jobs, "Software Engineer", "senior")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Senior Software Engineer", got[0].Title)

	got, err = Select(jobs, "Astronaut", "Lead")
	assert.True(t, errors.Is(err, ErrNoMatchingJobDescription))
	assert.Equal(t, []refdata.Job{{Title: "Astronaut", ExperienceLevel: "Lead", Skills: []string{}}}, got)
}

func TestRecordJobNeutralFallback(t *testing.T) {
	t.Parallel()

	rec := NewParser(testData(), nil, nil).Parse("About us\nWe run Docker and Python in fintech.")
	require.Empty(t, rec.Skills.Required.All())
	require.Empty(t, rec.Skills.Preferred.All())

	assert.Equal(t, []string{"Python", "Docker", "Fintech"}, rec.Job().Skills)
}
