package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/spigell/ats-scorer/internal/features"
	"github.com/spigell/ats-scorer/internal/resume"
)

func TestSuggest(t *testing.T) {
	t.Parallel()

	verbs := []string{"achieve", "analyze", "architect", "automate", "build", "collaborate", "create", "deliver", "deploy", "design", "develop", "engineer"}

	ev := &Evidence{
		Resume: &resume.Record{
			Skills:         []string{"python"},
			Certifications: []string{"CKA"},
		},
		JobSkills:      []string{"Python", "Go", "python", "SQL"},
		Verbs:          verbs,
		FoundVerbs:     []string{"build"},
		Certifications: []string{"CKA", "PMP", "CISSP", "CKAD", "CKS", "AWS SAA", "Terraform Associate"},
		Projects: features.ProjectAnalysis{
			NumPoints:     4,
			AvgPointScore: 0.4,
			ContainsLinks: true,
		},
		Words:       450,
		Repetitions: []features.Repetition{{Word: "build", Count: 3}},
	}

	assert.Equal(t, []string{
		"Consider adding missing skills from JD: Go, SQL",
		"Use more varied action verbs like: achieve, analyze, architect, automate, collaborate, create, deliver, deploy, design, develop...",
		"Add relevant certifications: PMP, CISSP, CKAD, CKS, AWS SAA...",
		"Enhance project bullets with numbers, skills, and action verbs",
		"Reduce repeated action verbs: build...",
	}, Suggest(DefaultRules(), ev, nil))
}

func TestSuggestNothingToImprove(t *testing.T) {
	t.Parallel()

	ev := &Evidence{
		Resume:         &resume.Record{Skills: []string{"Go"}, Certifications: []string{"CKA"}},
		JobSkills:      []string{"go"},
		Verbs:          []string{"build"},
		FoundVerbs:     []string{"build"},
		Certifications: []string{"cka"},
		Projects:       features.ProjectAnalysis{NumPoints: 3, AvgPointScore: 0.5, ContainsLinks: true},
		Words:          300,
	}

	assert.Empty(t, Suggest(DefaultRules(), ev, nil))
}

func TestDisableByName(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zapcore.DebugLevel)
	rules := DefaultRules()

	assert.True(t, DisableByName(rules, "project_links", "links are not relevant"))
	assert.False(t, DisableByName(rules, "unknown", ""))

	got := Suggest(rules, &Evidence{Words: 500, Projects: features.ProjectAnalysis{NumPoints: 5, AvgPointScore: 1}}, zap.New(core))
	assert.Empty(t, got)
	assert.Equal(t, 1, logs.FilterMessage("suggestion rule disabled").Len())

	statuses := Describe(rules)
	assert.Len(t, statuses, 8)
	assert.Equal(t, RuleStatus{Name: "project_links", Enabled: false, Reason: "links are not relevant"}, statuses[7])
	assert.True(t, statuses[0].Enabled)
}
