// Package nlp provides verb lemmatization for action-verb and project analysis.
package nlp

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/aaaton/golem/v4"
	"github.com/aaaton/golem/v4/dicts/en"
	"github.com/jdkato/prose/v2"
	"go.uber.org/zap"
)

// ErrTaggerUnavailable marks a lemmatizer that cannot serve requests. Callers
// degrade to an empty verb list instead of failing.
var ErrTaggerUnavailable = errors.New("linguistic tagger unavailable")

// VerbLemmatizer returns the lowercased lemma of every verb token in text, in
// order of appearance.
type VerbLemmatizer interface {
	LemmatizeVerbs(ctx context.Context, text string) ([]string, error)
}

// LocalTagger tags tokens with prose and lemmatizes the verbs with golem's
// English dictionary.
type LocalTagger struct {
	lemmatizer *golem.Lemmatizer
	logger     *zap.Logger
}

// NewLocalTagger loads the English lemma dictionary.
func NewLocalTagger(logger *zap.Logger) (*LocalTagger, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	lemmatizer, err := golem.New(en.New())
	if err != nil {
		return nil, fmt.Errorf("loading english lemma dictionary: %w: %w", ErrTaggerUnavailable, err)
	}

	return &LocalTagger{lemmatizer: lemmatizer, logger: logger}, nil
}

// LemmatizeVerbs implements VerbLemmatizer.
func (t *LocalTagger) LemmatizeVerbs(_ context.Context, text string) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, nil
	}

	doc, err := prose.NewDocument(text,
		prose.WithExtraction(false),
		prose.WithSegmentation(false),
	)
	if err != nil {
		return nil, fmt.Errorf("tagging text: %w: %w", ErrTaggerUnavailable, err)
	}

	var lemmas []string
	for _, tok := range doc.Tokens() {
		if !strings.HasPrefix(tok.Tag, "VB") {
			continue
		}
		word := strings.ToLower(tok.Text)
		lemmas = append(lemmas, strings.ToLower(t.lemmatizer.Lemma(word)))
	}

	t.logger.Debug("verbs tagged", zap.Int("tokens", len(doc.Tokens())), zap.Int("verbs", len(lemmas)))
	return lemmas, nil
}

// Unavailable is the lemmatizer used when tagging is switched off.
type Unavailable struct{}

// LemmatizeVerbs always fails with ErrTaggerUnavailable.
func (Unavailable) LemmatizeVerbs(context.Context, string) ([]string, error) {
	return nil, ErrTaggerUnavailable
}

// Tolerant turns ErrTaggerUnavailable from the wrapped lemmatizer into an empty
// result. The first such failure is logged at warn level.
type Tolerant struct {
	next   VerbLemmatizer
	logger *zap.Logger
	warned atomic.Bool
}

// NewTolerant wraps next; a nil next behaves like Unavailable.
func NewTolerant(next VerbLemmatizer, logger *zap.Logger) *Tolerant {
	if logger == nil {
		logger = zap.NewNop()
	}
	if next == nil {
		next = Unavailable{}
	}
	return &Tolerant{next: next, logger: logger}
}

// LemmatizeVerbs implements VerbLemmatizer.
func (t *Tolerant) LemmatizeVerbs(ctx context.Context, text string) ([]string, error) {
	lemmas, err := t.next.LemmatizeVerbs(ctx, text)
	if err == nil {
		return lemmas, nil
	}
	if !errors.Is(err, ErrTaggerUnavailable) {
		return nil, err
	}

	if t.warned.CompareAndSwap(false, true) {
		t.logger.Warn("action verb extraction disabled", zap.Error(err))
	}
	return nil, nil
}
