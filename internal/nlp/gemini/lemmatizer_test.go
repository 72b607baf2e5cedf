package gemini

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/spigell/ats-scorer/internal/nlp"
)

type stubGenerator struct {
	response    string
	err         error
	calls       int
	lastSystem  string
	lastMessage string
}

func (s *stubGenerator) GenerateContent(_ context.Context, system, message string) (string, error) {
	s.calls++
	s.lastSystem = system
	s.lastMessage = message
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func TestLemmatizeVerbs(t *testing.T) {
	stub := &stubGenerator{response: "```json\n[\"Build\", \" deploy \", \"\"]\n```"}
	l := NewLemmatizer(stub, nil, 0)

	got, err := l.LemmatizeVerbs(context.Background(), "  Built and deployed an API  ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if want := []string{"build", "deploy"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("LemmatizeVerbs() = %v, want %v", got, want)
	}
	if stub.lastMessage != "Built and deployed an API" {
		t.Fatalf("unexpected message: %q", stub.lastMessage)
	}
	if stub.lastSystem != systemPrompt || systemPrompt == "" {
		t.Fatalf("expected embedded system prompt to be sent")
	}
}

func TestLemmatizeVerbsCachesByText(t *testing.T) {
	stub := &stubGenerator{response: `["lead"]`}
	l := NewLemmatizer(stub, nil, 0)

	for i := 0; i < 3; i++ {
		got, err := l.LemmatizeVerbs(context.Background(), "Led a team")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		got[0] = "mutated"
	}

	if stub.calls != 1 {
		t.Fatalf("expected one backend call, got %d", stub.calls)
	}

	got, _ := l.LemmatizeVerbs(context.Background(), "Led a team")
	if got[0] != "lead" {
		t.Fatalf("cache entry was mutated by a caller: %v", got)
	}
}

func TestLemmatizeVerbsEmptyText(t *testing.T) {
	stub := &stubGenerator{}
	got, err := NewLemmatizer(stub, nil, 0).LemmatizeVerbs(context.Background(), " \n ")
	if err != nil || got != nil {
		t.Fatalf("expected no lemmas and no error, got %v, %v", got, err)
	}
	if stub.calls != 0 {
		t.Fatalf("expected no backend call")
	}
}

func TestLemmatizeVerbsFailuresMarkTaggerUnavailable(t *testing.T) {
	tests := map[string]*stubGenerator{
		"backend error":  {err: errors.New("connection refused")},
		"malformed json": {response: "build, deploy"},
	}

	for name, stub := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := NewLemmatizer(stub, nil, 0).LemmatizeVerbs(context.Background(), "Built it")
			if !errors.Is(err, nlp.ErrTaggerUnavailable) {
				t.Fatalf("expected ErrTaggerUnavailable, got %v", err)
			}
		})
	}
}
